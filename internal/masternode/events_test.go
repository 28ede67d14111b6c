package masternode

import (
	"errors"
	"slices"
	"testing"

	"tmn"
)

func TestMultiFansOutInOrder(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	n := Multi(a, Discard, b)

	n.ResourceStep(KindVolume, "data")
	n.StepResult(ResultCreated)
	n.ContainerStep(IntentStart, "node")
	n.StatusResult(tmn.StatusRunning)
	n.SectionBoundary()

	if len(a.Events) != 5 {
		t.Fatalf("len(a.Events) = %d, want 5", len(a.Events))
	}
	if !slices.Equal(a.Events, b.Events) {
		t.Fatalf("recorders diverged: %+v vs %+v", a.Events, b.Events)
	}
}

func TestGuardWrapsOnce(t *testing.T) {
	if err := guard("start", nil); err != nil {
		t.Fatalf("guard(nil) = %v, want nil", err)
	}

	boom := errors.New("boom")
	err := guard("stop", apiError("stop container", "metrics", boom))
	if !errors.Is(err, boom) {
		t.Fatalf("guard() = %v, want wrapped boom", err)
	}
	if got, want := err.Error(), `masternode stop: stop container "metrics": boom`; got != want {
		t.Fatalf("guard() message = %q, want %q", got, want)
	}

	again := guard("start", err)
	if again != err {
		t.Fatalf("guard() re-wrapped an existing Failure: %v", again)
	}
}
