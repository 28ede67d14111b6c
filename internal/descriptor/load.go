// Package descriptor builds a tmn.Topology from a Compose file.
package descriptor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"tmn"

	"github.com/compose-spec/compose-go/v2/loader"
	compose "github.com/compose-spec/compose-go/v2/types"
)

// DefaultProjectName names the compose project when the file has no name.
// It prefixes the runtime names of named volumes and networks.
const DefaultProjectName = "tmn"

// Load reads a Compose file and converts it to a Topology.
func Load(ctx context.Context, path string) (tmn.Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tmn.Topology{}, fmt.Errorf("read descriptor: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return tmn.Topology{}, fmt.Errorf("resolve descriptor path: %w", err)
	}
	return Parse(ctx, data, filepath.Dir(abs))
}

// Parse converts Compose YAML to a Topology. Relative bind sources resolve
// against workingDir. Containers follow the order services appear in the file.
func Parse(ctx context.Context, data []byte, workingDir string) (tmn.Topology, error) {
	project, err := loadProject(ctx, data, workingDir)
	if err != nil {
		return tmn.Topology{}, err
	}
	order, err := declarationOrder(data)
	if err != nil {
		return tmn.Topology{}, fmt.Errorf("parse compose spec: %w", err)
	}

	var topo tmn.Topology
	for _, key := range orderedKeys(project.Volumes, order.volumes) {
		topo.Volumes = append(topo.Volumes, tmn.VolumeSpec{Name: volumeName(project, key)})
	}

	usedNetworks := make(map[string]bool)
	for _, key := range orderedKeys(project.Services, order.services) {
		spec, network, err := containerSpec(project, project.Services[key])
		if err != nil {
			return tmn.Topology{}, err
		}
		if network != "" {
			usedNetworks[network] = true
		}
		topo.Containers = append(topo.Containers, spec)
	}

	// Compose adds an implicit default network; declare only networks in use.
	for _, key := range orderedKeys(project.Networks, order.networks) {
		if !usedNetworks[key] {
			continue
		}
		topo.Networks = append(topo.Networks, tmn.NetworkSpec{Name: networkName(project, key)})
	}

	if err := topo.Validate(); err != nil {
		return tmn.Topology{}, err
	}
	return topo, nil
}

func loadProject(ctx context.Context, data []byte, workingDir string) (*compose.Project, error) {
	configDetails := compose.ConfigDetails{
		WorkingDir: workingDir,
		ConfigFiles: []compose.ConfigFile{
			{Filename: filepath.Join(workingDir, "compose.yaml"), Content: data},
		},
	}

	project, err := loader.LoadWithContext(ctx, configDetails, func(o *loader.Options) {
		o.SetProjectName(DefaultProjectName, false)
		o.ResolvePaths = true
	})
	if err != nil {
		return nil, fmt.Errorf("parse compose spec: %w", err)
	}
	if len(project.Services) == 0 {
		return nil, fmt.Errorf("compose spec has no services")
	}
	return project, nil
}

// containerSpec converts one service. It also returns the compose key of the
// network the service joins, or "" when it joins none.
func containerSpec(project *compose.Project, svc compose.ServiceConfig) (tmn.ContainerSpec, string, error) {
	name := svc.ContainerName
	if name == "" {
		name = svc.Name
	}
	spec := tmn.ContainerSpec{
		Name:     name,
		Image:    svc.Image,
		Hostname: svc.Hostname,
		Env:      environment(svc.Environment),
		Detach:   true,
	}

	network, err := serviceNetwork(svc)
	if err != nil {
		return tmn.ContainerSpec{}, "", err
	}
	if network != "" {
		spec.Network = networkName(project, network)
	}

	for _, v := range svc.Volumes {
		m, err := mount(project, svc.Name, v)
		if err != nil {
			return tmn.ContainerSpec{}, "", err
		}
		spec.Mounts = append(spec.Mounts, m)
	}

	for _, p := range svc.Ports {
		binding, err := portBinding(svc.Name, p)
		if err != nil {
			return tmn.ContainerSpec{}, "", err
		}
		spec.Ports = append(spec.Ports, binding)
	}
	return spec, network, nil
}

func serviceNetwork(svc compose.ServiceConfig) (string, error) {
	if svc.NetworkMode != "" {
		return "", fmt.Errorf("service %q: network_mode is not supported", svc.Name)
	}
	switch len(svc.Networks) {
	case 0:
		return "", nil
	case 1:
		for key := range svc.Networks {
			return key, nil
		}
	}
	keys := make([]string, 0, len(svc.Networks))
	for key := range svc.Networks {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return "", fmt.Errorf("service %q joins %d networks (%s), at most one is supported",
		svc.Name, len(keys), strings.Join(keys, ", "))
}

func mount(project *compose.Project, service string, v compose.ServiceVolumeConfig) (tmn.Mount, error) {
	if strings.TrimSpace(v.Target) == "" {
		return tmn.Mount{}, fmt.Errorf("service %q: volume without target", service)
	}
	mode := tmn.ReadWrite
	if v.ReadOnly {
		mode = tmn.ReadOnly
	}

	switch v.Type {
	case compose.VolumeTypeBind:
		if !filepath.IsAbs(v.Source) {
			return tmn.Mount{}, fmt.Errorf("service %q: bind source %q is not an absolute path", service, v.Source)
		}
		return tmn.Mount{Source: v.Source, Target: v.Target, Mode: mode}, nil
	case compose.VolumeTypeVolume:
		if v.Source == "" {
			return tmn.Mount{}, fmt.Errorf("service %q: anonymous volume at %q is not supported", service, v.Target)
		}
		return tmn.Mount{Source: volumeName(project, v.Source), Target: v.Target, Mode: mode}, nil
	default:
		return tmn.Mount{}, fmt.Errorf("service %q: volume type %q is not supported", service, v.Type)
	}
}

func portBinding(service string, p compose.ServicePortConfig) (tmn.PortBinding, error) {
	if p.Target == 0 || p.Target > uint32(^uint16(0)) {
		return tmn.PortBinding{}, fmt.Errorf("service %q: invalid container port %d", service, p.Target)
	}
	binding := tmn.PortBinding{
		HostIP:        p.HostIP,
		ContainerPort: uint16(p.Target),
		Protocol:      strings.ToLower(strings.TrimSpace(p.Protocol)),
	}
	if published := strings.TrimSpace(p.Published); published != "" {
		n, err := strconv.ParseUint(published, 10, 16)
		if err != nil {
			return tmn.PortBinding{}, fmt.Errorf("service %q: published port %q: %w", service, published, err)
		}
		binding.HostPort = uint16(n)
	}
	return binding, nil
}

func environment(env compose.MappingWithEquals) []string {
	if len(env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, key := range keys {
		value := ""
		if p := env[key]; p != nil {
			value = *p
		}
		out = append(out, key+"="+value)
	}
	return out
}

func volumeName(project *compose.Project, key string) string {
	if v, ok := project.Volumes[key]; ok && v.Name != "" {
		return v.Name
	}
	return key
}

func networkName(project *compose.Project, key string) string {
	if n, ok := project.Networks[key]; ok && n.Name != "" {
		return n.Name
	}
	return key
}

// orderedKeys returns the keys of m in file order. Keys missing from the
// file, such as ones compose adds itself, follow in sorted order.
func orderedKeys[V any](m map[string]V, fileOrder []string) []string {
	out := make([]string, 0, len(m))
	for _, key := range fileOrder {
		if _, ok := m[key]; ok && !slices.Contains(out, key) {
			out = append(out, key)
		}
	}
	var rest []string
	for key := range m {
		if !slices.Contains(out, key) {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
