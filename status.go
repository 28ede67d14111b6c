package tmn

// ContainerStatus is the runtime-reported lifecycle phase of a container.
// The set of values is owned by the container daemon; values outside the
// constants below are kept verbatim.
type ContainerStatus string

const (
	StatusCreated    ContainerStatus = "created"
	StatusRestarting ContainerStatus = "restarting"
	StatusRunning    ContainerStatus = "running"
	StatusRemoving   ContainerStatus = "removing"
	StatusPaused     ContainerStatus = "paused"
	StatusExited     ContainerStatus = "exited"
	StatusDead       ContainerStatus = "dead"
)

func (s ContainerStatus) String() string {
	if s == "" {
		return "unknown"
	}
	return string(s)
}

// StatusRecord is one line of a masternode status snapshot. An absent
// container has an empty Status and ShortID.
type StatusRecord struct {
	Name    string          `json:"name"`
	Status  ContainerStatus `json:"status,omitempty"`
	ShortID string          `json:"id,omitempty"`
	Healthy bool            `json:"healthy"`
}

// Exists reports whether a runtime container was found for the record.
func (r StatusRecord) Exists() bool {
	return r.Status != ""
}
