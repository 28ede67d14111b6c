// Package telemetry turns masternode progress events into OpenTelemetry
// spans: one root span per operation, one span per section and one per step.
package telemetry

import (
	"fmt"
	"strings"

	"tmn"
	"tmn/internal/masternode"
)

const (
	PlanEventName   = "tmn.plan"
	PlanJSONKey     = "tmn.plan.json"
	ResultKey       = "tmn.step.result"
	ResourceKindKey = "tmn.resource.kind"
	ResourceNameKey = "tmn.resource.name"
)

// Section ids. Step ids are "<section>/<name>".
const (
	SectionVolumes    = "volumes"
	SectionNetworks   = "networks"
	SectionContainers = "containers"
	SectionStart      = "start"
	SectionStop       = "stop"
)

type PlannedStep struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	Title    string `json:"title"`
}

type Plan struct {
	Steps []PlannedStep `json:"steps"`
}

// StartPlan lists every step Masternode.Start walks through for topo.
func StartPlan(topo tmn.Topology) Plan {
	var p Plan
	volumes := make([]string, 0, len(topo.Volumes))
	for _, v := range topo.Volumes {
		volumes = append(volumes, v.Name)
	}
	networks := make([]string, 0, len(topo.Networks))
	for _, n := range topo.Networks {
		networks = append(networks, n.Name)
	}
	p.add(SectionVolumes, "Volumes", volumes)
	p.add(SectionNetworks, "Networks", networks)
	p.add(SectionContainers, "Containers", topo.ContainerNames())
	p.add(SectionStart, "Starting", topo.ContainerNames())
	return p
}

// StopPlan lists the stop steps for topo. Containers missing from the
// runtime are skipped and their steps stay pending.
func StopPlan(topo tmn.Topology) Plan {
	var p Plan
	p.add(SectionStop, "Stopping", topo.ContainerNames())
	return p
}

func (p *Plan) add(section, title string, names []string) {
	if len(names) == 0 {
		return
	}
	p.Steps = append(p.Steps, PlannedStep{ID: section, Title: title})
	for _, name := range names {
		p.Steps = append(p.Steps, PlannedStep{ID: StepID(section, name), ParentID: section, Title: name})
	}
}

// StepID joins a section and a resource name.
func StepID(section, name string) string {
	return section + "/" + name
}

func resourceSection(kind masternode.ResourceKind) string {
	switch kind {
	case masternode.KindVolume:
		return SectionVolumes
	case masternode.KindNetwork:
		return SectionNetworks
	default:
		return SectionContainers
	}
}

func intentSection(intent masternode.Intent) string {
	switch intent {
	case masternode.IntentStart:
		return SectionStart
	case masternode.IntentStop:
		return SectionStop
	default:
		return SectionContainers
	}
}

func validatePlan(plan Plan) error {
	seen := make(map[string]struct{}, len(plan.Steps))
	for i, step := range plan.Steps {
		id := strings.TrimSpace(step.ID)
		if id == "" {
			return fmt.Errorf("step %d has empty id", i)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate step id %q", id)
		}
		seen[id] = struct{}{}
	}
	for i, step := range plan.Steps {
		parent := strings.TrimSpace(step.ParentID)
		if parent == "" {
			continue
		}
		if _, ok := seen[parent]; !ok {
			return fmt.Errorf("step %d parent %q not found in plan", i, parent)
		}
	}
	return nil
}
