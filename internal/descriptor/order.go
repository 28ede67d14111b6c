package descriptor

import (
	"gopkg.in/yaml.v3"
)

// fileOrder holds top-level section keys in the order they appear.
type fileOrder struct {
	services []string
	volumes  []string
	networks []string
}

// declarationOrder reads the raw document since compose projects keep
// services, volumes and networks in maps.
func declarationOrder(data []byte) (fileOrder, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fileOrder{}, err
	}
	var order fileOrder
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return order, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return order, nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		switch root.Content[i].Value {
		case "services":
			order.services = mappingKeys(root.Content[i+1])
		case "volumes":
			order.volumes = mappingKeys(root.Content[i+1])
		case "networks":
			order.networks = mappingKeys(root.Content[i+1])
		}
	}
	return order, nil
}

func mappingKeys(n *yaml.Node) []string {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	return keys
}
