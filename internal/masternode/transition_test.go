package masternode

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"tmn"
	"tmn/internal/logging"
)

var allStatuses = []tmn.ContainerStatus{
	tmn.StatusCreated,
	tmn.StatusRestarting,
	tmn.StatusRunning,
	tmn.StatusRemoving,
	tmn.StatusPaused,
	tmn.StatusExited,
	tmn.StatusDead,
}

func TestStartTransition(t *testing.T) {
	want := map[tmn.ContainerStatus]Action{
		tmn.StatusRunning:    ActionNone,
		tmn.StatusRestarting: ActionNone,
		tmn.StatusPaused:     ActionUnpause,
		tmn.StatusCreated:    ActionStart,
		tmn.StatusExited:     ActionStart,
		tmn.StatusDead:       ActionStart,
	}
	for _, s := range allStatuses {
		action, handled := StartTransition(s)
		wantAction, wantHandled := want[s]
		if handled != wantHandled || action != wantAction {
			t.Errorf("StartTransition(%s) = %s, %v; want %s, %v", s, action, handled, wantAction, wantHandled)
		}
	}

	if action, handled := StartTransition("hibernating"); action != ActionNone || handled {
		t.Errorf("StartTransition(hibernating) = %s, %v; want none, false", action, handled)
	}
}

func TestStopTransition(t *testing.T) {
	want := map[tmn.ContainerStatus]Action{
		tmn.StatusRestarting: ActionStop,
		tmn.StatusRunning:    ActionStop,
		tmn.StatusPaused:     ActionStop,
		tmn.StatusCreated:    ActionNone,
		tmn.StatusExited:     ActionNone,
		tmn.StatusDead:       ActionNone,
	}
	for _, s := range allStatuses {
		action, handled := StopTransition(s)
		wantAction, wantHandled := want[s]
		if handled != wantHandled || action != wantAction {
			t.Errorf("StopTransition(%s) = %s, %v; want %s, %v", s, action, handled, wantAction, wantHandled)
		}
	}
}

// Each observed status must lead to exactly the runtime call in the table
// and nothing else.
func TestConverge_IssuesOnlyTableActions(t *testing.T) {
	startCalls := map[tmn.ContainerStatus][]string{
		tmn.StatusPaused:  {"ContainerUnpause metrics"},
		tmn.StatusCreated: {"ContainerStart metrics"},
		tmn.StatusExited:  {"ContainerStart metrics"},
		tmn.StatusDead:    {"ContainerStart metrics"},
	}
	stopCalls := map[tmn.ContainerStatus][]string{
		tmn.StatusRestarting: {"ContainerStop metrics"},
		tmn.StatusRunning:    {"ContainerStop metrics"},
		tmn.StatusPaused:     {"ContainerStop metrics"},
	}

	for _, s := range allStatuses {
		t.Run("start/"+string(s), func(t *testing.T) {
			rt := newFakeRuntime()
			rt.addContainer("metrics", s)
			m := newTestMasternode(t, rt)

			err := m.StartContainers(context.Background(), []ContainerInfo{{Exists: true, Name: "metrics"}})
			if err != nil {
				t.Fatalf("StartContainers() error = %v", err)
			}
			if got := rt.mutating(); !slices.Equal(got, startCalls[s]) {
				t.Fatalf("calls = %v, want %v", got, startCalls[s])
			}
		})

		t.Run("stop/"+string(s), func(t *testing.T) {
			rt := newFakeRuntime()
			rt.addContainer("metrics", s)
			m := newTestMasternode(t, rt)

			err := m.StopContainers(context.Background(), []ContainerInfo{{Exists: true, Name: "metrics"}})
			if err != nil {
				t.Fatalf("StopContainers() error = %v", err)
			}
			if got := rt.mutating(); !slices.Equal(got, stopCalls[s]) {
				t.Fatalf("calls = %v, want %v", got, stopCalls[s])
			}
		})
	}
}

func TestConverge_ReportsPostActionStatus(t *testing.T) {
	rt := newFakeRuntime()
	rt.addContainer("metrics", tmn.StatusRemoving)
	rt.addContainer("tomochain", tmn.StatusDead)
	rec := &Recorder{}
	m := newTestMasternode(t, rt, WithNotifier(rec))

	containers := []ContainerInfo{{Exists: true, Name: "metrics"}, {Exists: true, Name: "tomochain"}}
	if err := m.StartContainers(context.Background(), containers); err != nil {
		t.Fatalf("StartContainers() error = %v", err)
	}

	want := []Event{
		{Kind: EventContainerStep, Resource: KindContainer, Intent: IntentStart, Name: "metrics"},
		{Kind: EventStatusResult, Status: tmn.StatusRemoving},
		{Kind: EventContainerStep, Resource: KindContainer, Intent: IntentStart, Name: "tomochain"},
		{Kind: EventStatusResult, Status: tmn.StatusRunning},
		{Kind: EventSection},
	}
	if !slices.Equal(rec.Events, want) {
		t.Fatalf("events = %+v, want %+v", rec.Events, want)
	}
}

func TestConverge_LogsUnhandledStatus(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv(logging.EnvLevel, "")

	var buf bytes.Buffer
	if err := logging.ConfigureWriter(&buf, logging.LevelWarn); err != nil {
		t.Fatalf("ConfigureWriter() error = %v", err)
	}

	rt := newFakeRuntime()
	rt.addContainer("metrics", tmn.StatusRemoving)
	rt.addContainer("tomochain", tmn.StatusRunning)
	m := newTestMasternode(t, rt)

	containers := []ContainerInfo{{Exists: true, Name: "metrics"}, {Exists: true, Name: "tomochain"}}
	if err := m.StartContainers(context.Background(), containers); err != nil {
		t.Fatalf("StartContainers() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Unhandled container status") {
		t.Fatalf("log output = %q, want unhandled status warning", out)
	}
	for _, want := range []string{"level=WARN", "name=metrics", "status=removing", "intent=start"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output = %q, missing %q", out, want)
		}
	}
	if strings.Contains(out, "name=tomochain") {
		t.Errorf("handled status logged as unhandled: %q", out)
	}
}

func TestActionString(t *testing.T) {
	for action, want := range map[Action]string{
		ActionNone:    "none",
		ActionStart:   "start",
		ActionStop:    "stop",
		ActionUnpause: "unpause",
		Action(42):    "unknown",
	} {
		if got := action.String(); got != want {
			t.Errorf("Action(%d).String() = %q, want %q", action, got, want)
		}
	}
}
