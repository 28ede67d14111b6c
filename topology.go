package tmn

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidTopology is returned by Topology.Validate.
var ErrInvalidTopology = errors.New("invalid topology")

// AccessMode is the access mode of a container mount.
type AccessMode string

const (
	ReadOnly  AccessMode = "ro"
	ReadWrite AccessMode = "rw"
)

// VolumeSpec declares a named storage volume.
type VolumeSpec struct {
	Name string `yaml:"name"`
}

// NetworkSpec declares a named container network.
type NetworkSpec struct {
	Name string `yaml:"name"`
}

// Mount attaches a host path or a named volume to a container.
// A Source that is an absolute path is a host bind, anything else names a volume.
type Mount struct {
	Source string     `yaml:"source"`
	Target string     `yaml:"target"`
	Mode   AccessMode `yaml:"mode"`
}

// IsBind reports whether the mount source is a host path.
func (m Mount) IsBind() bool {
	return filepath.IsAbs(m.Source)
}

// PortBinding publishes a container port on the host.
type PortBinding struct {
	HostIP        string `yaml:"host_ip,omitempty"`
	HostPort      uint16 `yaml:"host_port,omitempty"`
	ContainerPort uint16 `yaml:"container_port"`
	Protocol      string `yaml:"protocol,omitempty"`
}

// ContainerSpec declares one service container. Name is the only identity
// used to find the container on the runtime.
type ContainerSpec struct {
	Name     string        `yaml:"name"`
	Image    string        `yaml:"image"`
	Hostname string        `yaml:"hostname,omitempty"`
	Network  string        `yaml:"network,omitempty"`
	Mounts   []Mount       `yaml:"mounts,omitempty"`
	Ports    []PortBinding `yaml:"ports,omitempty"`
	Env      []string      `yaml:"env,omitempty"`
	Detach   bool          `yaml:"detach"`
}

// Topology is the full set of resources making up a masternode.
// Containers are processed in slice order.
type Topology struct {
	Volumes    []VolumeSpec    `yaml:"volumes"`
	Networks   []NetworkSpec   `yaml:"networks"`
	Containers []ContainerSpec `yaml:"containers"`
}

// ContainerNames returns the declared container names in declaration order.
func (t Topology) ContainerNames() []string {
	names := make([]string, 0, len(t.Containers))
	for _, c := range t.Containers {
		names = append(names, c.Name)
	}
	return names
}

// Validate checks name uniqueness per kind and that every reference
// points at a declared resource.
func (t Topology) Validate() error {
	var errs []error

	volumes := make(map[string]bool, len(t.Volumes))
	for i, v := range t.Volumes {
		name := v.Name
		switch {
		case badName(name):
			errs = append(errs, nameError("volume", i, name))
		case volumes[name]:
			errs = append(errs, fmt.Errorf("duplicate volume %q", name))
		}
		volumes[name] = true
	}

	networks := make(map[string]bool, len(t.Networks))
	for i, n := range t.Networks {
		name := n.Name
		switch {
		case badName(name):
			errs = append(errs, nameError("network", i, name))
		case networks[name]:
			errs = append(errs, fmt.Errorf("duplicate network %q", name))
		}
		networks[name] = true
	}

	containers := make(map[string]bool, len(t.Containers))
	for i, c := range t.Containers {
		name := c.Name
		if badName(name) {
			errs = append(errs, nameError("container", i, name))
			continue
		}
		if containers[name] {
			errs = append(errs, fmt.Errorf("duplicate container %q", name))
		}
		containers[name] = true

		if strings.TrimSpace(c.Image) == "" {
			errs = append(errs, fmt.Errorf("container %q: empty image", name))
		}
		if c.Network != "" && !networks[c.Network] {
			errs = append(errs, fmt.Errorf("container %q: undeclared network %q", name, c.Network))
		}

		sources := make(map[string]bool, len(c.Mounts))
		for _, m := range c.Mounts {
			if sources[m.Source] {
				errs = append(errs, fmt.Errorf("container %q: duplicate mount source %q", name, m.Source))
			}
			sources[m.Source] = true
			if m.Target == "" {
				errs = append(errs, fmt.Errorf("container %q: mount %q has no target", name, m.Source))
			}
			if m.Mode != ReadOnly && m.Mode != ReadWrite {
				errs = append(errs, fmt.Errorf("container %q: mount %q has invalid mode %q", name, m.Source, m.Mode))
			}
			if !m.IsBind() && !volumes[m.Source] {
				errs = append(errs, fmt.Errorf("container %q: undeclared volume %q", name, m.Source))
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidTopology, errors.Join(errs...))
}

// Names are passed to the runtime verbatim, so they must be non-empty and
// carry no surrounding whitespace.
func badName(name string) bool {
	return name == "" || strings.TrimSpace(name) != name
}

func nameError(kind string, i int, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s %d: empty name", kind, i)
	}
	return fmt.Errorf("%s %q: name has surrounding whitespace", kind, name)
}
