package masternode

import (
	"context"
	"log/slog"
)

// Provision creates every declared volume and network that does not exist
// yet. Existing resources are left untouched.
func (m *Masternode) Provision(ctx context.Context) error {
	for _, v := range m.topo.Volumes {
		m.notify.ResourceStep(KindVolume, v.Name)
		result, err := m.ensureVolume(ctx, v.Name)
		if err != nil {
			return err
		}
		m.notify.StepResult(result)
	}
	m.notify.SectionBoundary()

	for _, n := range m.topo.Networks {
		m.notify.ResourceStep(KindNetwork, n.Name)
		result, err := m.ensureNetwork(ctx, n.Name)
		if err != nil {
			return err
		}
		m.notify.StepResult(result)
	}
	m.notify.SectionBoundary()
	return nil
}

func (m *Masternode) ensureVolume(ctx context.Context, name string) (StepResult, error) {
	info, err := m.rt.VolumeInspect(ctx, name)
	if err != nil {
		return "", apiError("inspect volume", name, err)
	}
	if info.Exists {
		slog.Debug("Volume already exists.", "name", name)
		return ResultExists, nil
	}
	if err := m.rt.VolumeCreate(ctx, name); err != nil {
		return "", apiError("create volume", name, err)
	}
	slog.Info("Created volume.", "name", name)
	return ResultCreated, nil
}

func (m *Masternode) ensureNetwork(ctx context.Context, name string) (StepResult, error) {
	info, err := m.rt.NetworkInspect(ctx, name)
	if err != nil {
		return "", apiError("inspect network", name, err)
	}
	if info.Exists {
		slog.Debug("Network already exists.", "name", name)
		return ResultExists, nil
	}
	if err := m.rt.NetworkCreate(ctx, name); err != nil {
		return "", apiError("create network", name, err)
	}
	slog.Info("Created network.", "name", name)
	return ResultCreated, nil
}
