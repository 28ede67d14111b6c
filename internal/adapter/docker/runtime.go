// Package docker implements masternode.Runtime on the Docker Engine API.
package docker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"tmn"
	"tmn/internal/masternode"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	dockernetwork "github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/go-connections/nat"
)

var _ masternode.Runtime = (*Runtime)(nil)

// Runtime implements masternode.Runtime using the Docker Engine API.
type Runtime struct {
	cli client.APIClient
}

// NewRuntime creates a Runtime with a Docker client configured from the
// environment. A non-empty host (e.g. "unix:///var/run/docker.sock",
// "tcp://10.0.0.5:2376") overrides DOCKER_HOST.
func NewRuntime(host string) (*Runtime, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host = strings.TrimSpace(host); host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Runtime{cli: cli}, nil
}

// NewRuntimeFromClient wraps an existing Docker client.
func NewRuntimeFromClient(cli client.APIClient) *Runtime {
	return &Runtime{cli: cli}
}

// Host returns the daemon address the client talks to.
func (r *Runtime) Host() string {
	return r.cli.DaemonHost()
}

func (r *Runtime) Ping(ctx context.Context) error {
	return Ping(ctx, r.cli)
}

func (r *Runtime) WaitReady(ctx context.Context) error {
	return WaitReady(ctx, r.cli)
}

func (r *Runtime) VolumeInspect(ctx context.Context, name string) (masternode.ResourceInfo, error) {
	vol, err := r.cli.VolumeInspect(ctx, name)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return masternode.ResourceInfo{Exists: false}, nil
		}
		return masternode.ResourceInfo{}, err
	}
	return masternode.ResourceInfo{Exists: true, Name: vol.Name}, nil
}

func (r *Runtime) VolumeCreate(ctx context.Context, name string) error {
	_, err := r.cli.VolumeCreate(ctx, volume.CreateOptions{Name: name})
	return err
}

func (r *Runtime) NetworkInspect(ctx context.Context, name string) (masternode.ResourceInfo, error) {
	nw, err := r.cli.NetworkInspect(ctx, name, dockernetwork.InspectOptions{})
	if err != nil {
		if errdefs.IsNotFound(err) {
			return masternode.ResourceInfo{Exists: false}, nil
		}
		return masternode.ResourceInfo{}, err
	}
	// Docker also resolves networks by ID prefix; only an exact name match counts.
	if nw.Name != name {
		return masternode.ResourceInfo{Exists: false}, nil
	}
	return masternode.ResourceInfo{Exists: true, Name: nw.Name}, nil
}

func (r *Runtime) NetworkCreate(ctx context.Context, name string) error {
	_, err := r.cli.NetworkCreate(ctx, name, dockernetwork.CreateOptions{Driver: "bridge"})
	return err
}

func (r *Runtime) ContainerInspect(ctx context.Context, name string) (masternode.ContainerInfo, error) {
	info, err := r.cli.ContainerInspect(ctx, name)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return masternode.ContainerInfo{Exists: false}, nil
		}
		return masternode.ContainerInfo{}, err
	}
	// Inspect falls back to ID and ID prefix lookups. A container whose name
	// differs from the requested one is not the declared container.
	if info.ContainerJSONBase == nil || strings.TrimPrefix(info.Name, "/") != name {
		return masternode.ContainerInfo{Exists: false}, nil
	}
	out := masternode.ContainerInfo{Exists: true, ID: info.ID, Name: name}
	if info.State != nil {
		out.Status = tmn.ContainerStatus(info.State.Status)
	}
	return out, nil
}

func (r *Runtime) ContainerCreate(ctx context.Context, spec tmn.ContainerSpec) error {
	cc, hc, nc, err := createConfig(spec)
	if err != nil {
		return err
	}
	resp, err := r.cli.ContainerCreate(ctx, cc, hc, nc, nil, spec.Name)
	if err != nil {
		return err
	}
	for _, w := range resp.Warnings {
		slog.Warn("Docker create warning.", "container", spec.Name, "warning", w)
	}
	return nil
}

// ImagePull pulls ref and reads the progress stream to completion. Errors
// reported inside the stream are returned.
func (r *Runtime) ImagePull(ctx context.Context, ref string) error {
	pull, err := r.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return err
	}
	defer pull.Close()
	if err := jsonmessage.DisplayJSONMessagesStream(pull, io.Discard, 0, false, nil); err != nil {
		return fmt.Errorf("read pull progress: %w", err)
	}
	return nil
}

func (r *Runtime) ContainerStart(ctx context.Context, name string) error {
	return r.cli.ContainerStart(ctx, name, container.StartOptions{})
}

func (r *Runtime) ContainerStop(ctx context.Context, name string) error {
	return r.cli.ContainerStop(ctx, name, container.StopOptions{})
}

func (r *Runtime) ContainerUnpause(ctx context.Context, name string) error {
	return r.cli.ContainerUnpause(ctx, name)
}

func (r *Runtime) Close() error {
	return r.cli.Close()
}

func createConfig(spec tmn.ContainerSpec) (*container.Config, *container.HostConfig, *dockernetwork.NetworkingConfig, error) {
	cc := &container.Config{
		Image:        spec.Image,
		Hostname:     spec.Hostname,
		Env:          spec.Env,
		AttachStdout: !spec.Detach,
		AttachStderr: !spec.Detach,
	}
	hc := &container.HostConfig{}

	for _, m := range spec.Mounts {
		typ := mount.TypeVolume
		if m.IsBind() {
			typ = mount.TypeBind
		}
		hc.Mounts = append(hc.Mounts, mount.Mount{
			Type:     typ,
			Source:   m.Source,
			Target:   m.Target,
			ReadOnly: m.Mode == tmn.ReadOnly,
		})
	}

	if len(spec.Ports) > 0 {
		cc.ExposedPorts = make(nat.PortSet, len(spec.Ports))
		hc.PortBindings = make(nat.PortMap, len(spec.Ports))
		for _, p := range spec.Ports {
			proto := p.Protocol
			if proto == "" {
				proto = "tcp"
			}
			port, err := nat.NewPort(proto, strconv.Itoa(int(p.ContainerPort)))
			if err != nil {
				return nil, nil, nil, fmt.Errorf("container %q port %d: %w", spec.Name, p.ContainerPort, err)
			}
			cc.ExposedPorts[port] = struct{}{}
			binding := nat.PortBinding{HostIP: p.HostIP}
			if p.HostPort != 0 {
				binding.HostPort = strconv.Itoa(int(p.HostPort))
			}
			hc.PortBindings[port] = append(hc.PortBindings[port], binding)
		}
	}

	var nc *dockernetwork.NetworkingConfig
	if spec.Network != "" {
		hc.NetworkMode = container.NetworkMode(spec.Network)
		nc = &dockernetwork.NetworkingConfig{
			EndpointsConfig: map[string]*dockernetwork.EndpointSettings{
				spec.Network: {},
			},
		}
	}
	return cc, hc, nc, nil
}
