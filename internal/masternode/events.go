package masternode

import "tmn"

// ResourceKind names the kind of a provisioned resource.
type ResourceKind string

const (
	KindVolume    ResourceKind = "volume"
	KindNetwork   ResourceKind = "network"
	KindContainer ResourceKind = "container"
)

// StepResult is the outcome of a create-if-missing step.
type StepResult string

const (
	ResultExists  StepResult = "exists"
	ResultCreated StepResult = "created"
)

// Intent is what a container step is trying to achieve.
type Intent string

const (
	IntentCreate Intent = "create"
	IntentStart  Intent = "start"
	IntentStop   Intent = "stop"
)

// Discard is a Notifier that drops every event.
var Discard Notifier = discard{}

type discard struct{}

func (discard) ResourceStep(ResourceKind, string) {}
func (discard) StepResult(StepResult)             {}
func (discard) ContainerStep(Intent, string)      {}
func (discard) StatusResult(tmn.ContainerStatus)  {}
func (discard) SectionBoundary()                  {}

// EventKind identifies a recorded notification.
type EventKind string

const (
	EventResourceStep  EventKind = "resource_step"
	EventStepResult    EventKind = "step_result"
	EventContainerStep EventKind = "container_step"
	EventStatusResult  EventKind = "status_result"
	EventSection       EventKind = "section"
)

// Event is one recorded notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind     EventKind           `json:"kind"`
	Resource ResourceKind        `json:"resource,omitempty"`
	Intent   Intent              `json:"intent,omitempty"`
	Name     string              `json:"name,omitempty"`
	Result   StepResult          `json:"result,omitempty"`
	Status   tmn.ContainerStatus `json:"status,omitempty"`
}

// Recorder is a Notifier that keeps every event in memory.
type Recorder struct {
	Events []Event
}

func (r *Recorder) ResourceStep(kind ResourceKind, name string) {
	r.Events = append(r.Events, Event{Kind: EventResourceStep, Resource: kind, Name: name})
}

func (r *Recorder) StepResult(result StepResult) {
	r.Events = append(r.Events, Event{Kind: EventStepResult, Result: result})
}

func (r *Recorder) ContainerStep(intent Intent, name string) {
	r.Events = append(r.Events, Event{Kind: EventContainerStep, Resource: KindContainer, Intent: intent, Name: name})
}

func (r *Recorder) StatusResult(status tmn.ContainerStatus) {
	r.Events = append(r.Events, Event{Kind: EventStatusResult, Status: status})
}

func (r *Recorder) SectionBoundary() {
	r.Events = append(r.Events, Event{Kind: EventSection})
}

// Multi fans every event out to each notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	return multi(notifiers)
}

type multi []Notifier

func (m multi) ResourceStep(kind ResourceKind, name string) {
	for _, n := range m {
		n.ResourceStep(kind, name)
	}
}

func (m multi) StepResult(result StepResult) {
	for _, n := range m {
		n.StepResult(result)
	}
}

func (m multi) ContainerStep(intent Intent, name string) {
	for _, n := range m {
		n.ContainerStep(intent, name)
	}
}

func (m multi) StatusResult(status tmn.ContainerStatus) {
	for _, n := range m {
		n.StatusResult(status)
	}
}

func (m multi) SectionBoundary() {
	for _, n := range m {
		n.SectionBoundary()
	}
}
