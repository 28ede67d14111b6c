package masternode

import (
	"context"

	"tmn"
)

// Runtime is the container daemon as seen by the reconciler. Inspect
// methods report a missing resource with Exists=false rather than an error;
// any returned error is an API failure.
type Runtime interface {
	VolumeInspect(ctx context.Context, name string) (ResourceInfo, error)
	VolumeCreate(ctx context.Context, name string) error

	NetworkInspect(ctx context.Context, name string) (ResourceInfo, error)
	NetworkCreate(ctx context.Context, name string) error

	ContainerInspect(ctx context.Context, name string) (ContainerInfo, error)
	ContainerCreate(ctx context.Context, spec tmn.ContainerSpec) error
	ImagePull(ctx context.Context, ref string) error

	ContainerStart(ctx context.Context, name string) error
	ContainerStop(ctx context.Context, name string) error
	ContainerUnpause(ctx context.Context, name string) error
}

// ResourceInfo describes a volume or network.
type ResourceInfo struct {
	Exists bool
	Name   string
}

// ContainerInfo is a point-in-time view of a runtime container. It must be
// re-read before acting on Status.
type ContainerInfo struct {
	Exists bool
	ID     string
	Name   string
	Status tmn.ContainerStatus
}

// Notifier receives progress events in the order work happens.
type Notifier interface {
	ResourceStep(kind ResourceKind, name string)
	StepResult(result StepResult)
	ContainerStep(intent Intent, name string)
	StatusResult(status tmn.ContainerStatus)
	SectionBoundary()
}
