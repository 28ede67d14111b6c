package masternode

import (
	"context"
	"log/slog"

	"tmn"
)

// EnsureContainers makes sure every declared container exists, pulling its
// image and creating it when missing. An existing container is reused as
// is, even if its configuration no longer matches the declaration.
// The result is in declaration order.
func (m *Masternode) EnsureContainers(ctx context.Context) ([]ContainerInfo, error) {
	out := make([]ContainerInfo, 0, len(m.topo.Containers))
	for _, spec := range m.topo.Containers {
		m.notify.ContainerStep(IntentCreate, spec.Name)
		info, result, err := m.ensureContainer(ctx, spec)
		if err != nil {
			return nil, err
		}
		m.notify.StepResult(result)
		out = append(out, info)
	}
	m.notify.SectionBoundary()
	return out, nil
}

func (m *Masternode) ensureContainer(ctx context.Context, spec tmn.ContainerSpec) (ContainerInfo, StepResult, error) {
	info, err := m.inspect(ctx, spec.Name)
	if err != nil {
		return ContainerInfo{}, "", err
	}
	if info.Exists {
		slog.Debug("Reusing existing container.", "name", spec.Name, "id", info.ID)
		return info, ResultExists, nil
	}

	// The image has to be local before the container can be created.
	slog.Info("Pulling image.", "image", spec.Image)
	if err := m.rt.ImagePull(ctx, spec.Image); err != nil {
		return ContainerInfo{}, "", apiError("pull image", spec.Image, err)
	}
	if err := m.rt.ContainerCreate(ctx, spec); err != nil {
		return ContainerInfo{}, "", apiError("create container", spec.Name, err)
	}
	slog.Info("Created container.", "name", spec.Name, "image", spec.Image)

	info, err = m.refresh(ctx, spec.Name)
	if err != nil {
		return ContainerInfo{}, "", err
	}
	return info, ResultCreated, nil
}

// StartContainers drives each container to running.
func (m *Masternode) StartContainers(ctx context.Context, containers []ContainerInfo) error {
	return m.converge(ctx, IntentStart, containers)
}

// StopContainers drives each container to a stopped phase.
func (m *Masternode) StopContainers(ctx context.Context, containers []ContainerInfo) error {
	return m.converge(ctx, IntentStop, containers)
}

func (m *Masternode) converge(ctx context.Context, intent Intent, containers []ContainerInfo) error {
	for _, c := range containers {
		m.notify.ContainerStep(intent, c.Name)

		info, err := m.refresh(ctx, c.Name)
		if err != nil {
			return err
		}

		action, handled := transition(intent, info.Status)
		if !handled {
			slog.Warn("Unhandled container status, leaving container as is.",
				"name", c.Name, "status", info.Status, "intent", intent)
		}
		if err := m.apply(ctx, action, c.Name); err != nil {
			return err
		}

		info, err = m.refresh(ctx, c.Name)
		if err != nil {
			return err
		}
		m.notify.StatusResult(info.Status)
	}
	m.notify.SectionBoundary()
	return nil
}

func (m *Masternode) apply(ctx context.Context, action Action, name string) error {
	var err error
	switch action {
	case ActionNone:
		return nil
	case ActionStart:
		err = m.rt.ContainerStart(ctx, name)
	case ActionStop:
		err = m.rt.ContainerStop(ctx, name)
	case ActionUnpause:
		err = m.rt.ContainerUnpause(ctx, name)
	}
	if err != nil {
		return apiError(action.String()+" container", name, err)
	}
	slog.Debug("Applied container action.", "name", name, "action", action)
	return nil
}
