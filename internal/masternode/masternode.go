package masternode

import (
	"context"
	"fmt"

	"tmn"
	"tmn/internal/check"
)

// Masternode reconciles one topology against one runtime. It holds no
// state between calls besides its collaborators.
type Masternode struct {
	rt     Runtime
	topo   tmn.Topology
	notify Notifier
}

// Option configures a Masternode.
type Option func(*Masternode)

// WithNotifier sets the progress sink. Defaults to Discard.
func WithNotifier(n Notifier) Option {
	check.Assert(n != nil, "WithNotifier: notifier must not be nil")
	return func(m *Masternode) { m.notify = n }
}

// New validates topo and returns a Masternode driving rt.
func New(rt Runtime, topo tmn.Topology, opts ...Option) (*Masternode, error) {
	if rt == nil {
		return nil, ErrNoRuntime
	}
	if err := topo.Validate(); err != nil {
		return nil, err
	}
	m := &Masternode{rt: rt, topo: topo, notify: Discard}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

// Topology returns the declaration this Masternode converges to.
func (m *Masternode) Topology() tmn.Topology {
	return m.topo
}

// Start provisions volumes and networks, ensures every declared container
// exists and brings each of them to running.
func (m *Masternode) Start(ctx context.Context) error {
	return guard("start", m.start(ctx))
}

func (m *Masternode) start(ctx context.Context) error {
	if err := m.Provision(ctx); err != nil {
		return err
	}
	containers, err := m.EnsureContainers(ctx)
	if err != nil {
		return err
	}
	return m.StartContainers(ctx, containers)
}

// Stop brings every existing declared container to a stopped phase.
// Declared containers missing from the runtime are skipped.
func (m *Masternode) Stop(ctx context.Context) error {
	return guard("stop", m.stop(ctx))
}

func (m *Masternode) stop(ctx context.Context) error {
	containers, err := m.existingContainers(ctx)
	if err != nil {
		return err
	}
	return m.StopContainers(ctx, containers)
}

// Status returns one record per declared container, in declaration order.
func (m *Masternode) Status(ctx context.Context) ([]tmn.StatusRecord, error) {
	records, err := m.status(ctx)
	if err != nil {
		return nil, guard("status", err)
	}
	return records, nil
}

// existingContainers looks up every declared container and returns the
// ones present on the runtime, in declaration order.
func (m *Masternode) existingContainers(ctx context.Context) ([]ContainerInfo, error) {
	found := make([]ContainerInfo, 0, len(m.topo.Containers))
	for _, spec := range m.topo.Containers {
		info, err := m.inspect(ctx, spec.Name)
		if err != nil {
			return nil, err
		}
		if info.Exists {
			found = append(found, info)
		}
	}
	return found, nil
}

func (m *Masternode) inspect(ctx context.Context, name string) (ContainerInfo, error) {
	info, err := m.rt.ContainerInspect(ctx, name)
	if err != nil {
		return ContainerInfo{}, apiError("inspect container", name, err)
	}
	if !info.Exists {
		return info, nil
	}
	switch info.Name {
	case "":
		info.Name = name
	case name:
	default:
		return ContainerInfo{}, apiError("inspect container", name,
			fmt.Errorf("%w: runtime answered with %q", ErrNameMismatch, info.Name))
	}
	return info, nil
}

// refresh re-reads a container that is expected to exist.
func (m *Masternode) refresh(ctx context.Context, name string) (ContainerInfo, error) {
	info, err := m.inspect(ctx, name)
	if err != nil {
		return ContainerInfo{}, err
	}
	if !info.Exists {
		return ContainerInfo{}, apiError("refresh container", name, ErrContainerGone)
	}
	return info, nil
}
