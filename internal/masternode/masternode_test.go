package masternode

import (
	"context"
	"errors"
	"slices"
	"testing"

	"tmn"
)

func newTestMasternode(t *testing.T, rt Runtime, opts ...Option) *Masternode {
	t.Helper()
	m, err := New(rt, tmn.DefaultTopology(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

func TestNew_RejectsInvalidTopology(t *testing.T) {
	topo := tmn.DefaultTopology()
	topo.Containers = append(topo.Containers, topo.Containers[1])

	_, err := New(newFakeRuntime(), topo)
	if !errors.Is(err, tmn.ErrInvalidTopology) {
		t.Fatalf("New() error = %v, want ErrInvalidTopology", err)
	}
}

func TestNew_RequiresRuntime(t *testing.T) {
	m, err := New(nil, tmn.DefaultTopology())
	if !errors.Is(err, ErrNoRuntime) {
		t.Fatalf("New(nil) error = %v, want ErrNoRuntime", err)
	}
	if m != nil {
		t.Fatal("New(nil) returned a Masternode")
	}
}

func TestStop_RefusesContainerAnsweringWithAnotherName(t *testing.T) {
	rt := newFakeRuntime()
	rt.addContainer("foreign", tmn.StatusRunning)
	rt.addContainer("tomochain", tmn.StatusRunning)
	rt.aliases["metrics"] = "foreign"
	m := newTestMasternode(t, rt)

	err := m.Stop(context.Background())
	if !errors.Is(err, ErrNameMismatch) {
		t.Fatalf("Stop() error = %v, want ErrNameMismatch", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Name != "metrics" {
		t.Fatalf("Stop() error = %v, want APIError for metrics", err)
	}
	if calls := rt.mutating(); len(calls) != 0 {
		t.Fatalf("mutating calls = %v, want none", calls)
	}
	if rt.containers["foreign"].status != tmn.StatusRunning {
		t.Fatal("undeclared container was touched")
	}
}

func TestProvision_ExistingVolumeIssuesNoCreate(t *testing.T) {
	rt := newFakeRuntime()
	rt.volumes[tmn.DefaultVolume] = true
	rec := &Recorder{}
	m := newTestMasternode(t, rt, WithNotifier(rec))

	if err := m.Provision(context.Background()); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}

	want := []string{"NetworkCreate masternode"}
	if got := rt.mutating(); !slices.Equal(got, want) {
		t.Fatalf("mutating calls = %v, want %v", got, want)
	}

	wantEvents := []Event{
		{Kind: EventResourceStep, Resource: KindVolume, Name: tmn.DefaultVolume},
		{Kind: EventStepResult, Result: ResultExists},
		{Kind: EventSection},
		{Kind: EventResourceStep, Resource: KindNetwork, Name: tmn.DefaultNetwork},
		{Kind: EventStepResult, Result: ResultCreated},
		{Kind: EventSection},
	}
	if !slices.Equal(rec.Events, wantEvents) {
		t.Fatalf("events = %+v, want %+v", rec.Events, wantEvents)
	}
}

func TestProvision_MissingVolumeCreatedExactlyOnce(t *testing.T) {
	rt := newFakeRuntime()
	rt.networks[tmn.DefaultNetwork] = true
	m := newTestMasternode(t, rt)

	if err := m.Provision(context.Background()); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}

	want := []string{"VolumeInspect blockchain_data", "VolumeCreate blockchain_data", "NetworkInspect masternode"}
	if !slices.Equal(rt.calls, want) {
		t.Fatalf("calls = %v, want %v", rt.calls, want)
	}
}

func TestProvision_InspectErrorPropagates(t *testing.T) {
	boom := errors.New("permission denied")
	rt := newFakeRuntime()
	rt.errs["VolumeInspect blockchain_data"] = boom
	m := newTestMasternode(t, rt)

	err := m.Provision(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Provision() error = %v, want %v", err, boom)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Op != "inspect volume" {
		t.Fatalf("Provision() error = %v, want APIError for inspect volume", err)
	}
	if got := rt.mutating(); len(got) != 0 {
		t.Fatalf("mutating calls = %v, want none", got)
	}
}

func TestEnsureContainers_PullsBeforeCreate(t *testing.T) {
	rt := newFakeRuntime()
	m := newTestMasternode(t, rt)

	got, err := m.EnsureContainers(context.Background())
	if err != nil {
		t.Fatalf("EnsureContainers() error = %v", err)
	}

	want := []string{
		"ImagePull " + tmn.MetricsImage,
		"ContainerCreate metrics",
		"ImagePull " + tmn.TomochainImage,
		"ContainerCreate tomochain",
	}
	if calls := rt.mutating(); !slices.Equal(calls, want) {
		t.Fatalf("mutating calls = %v, want %v", calls, want)
	}

	if len(got) != 2 || got[0].Name != "metrics" || got[1].Name != "tomochain" {
		t.Fatalf("EnsureContainers() = %+v, want metrics then tomochain", got)
	}
	for _, c := range got {
		if c.Status != tmn.StatusCreated {
			t.Errorf("%s status = %s, want created", c.Name, c.Status)
		}
	}
	if rt.containers["metrics"].spec.Hostname != "test" {
		t.Errorf("metrics created with hostname %q, want test", rt.containers["metrics"].spec.Hostname)
	}
}

func TestEnsureContainers_ReusesExistingWithoutReconfiguring(t *testing.T) {
	rt := newFakeRuntime()
	rt.addContainer("metrics", tmn.StatusExited)
	rt.addContainer("tomochain", tmn.StatusRunning)
	rec := &Recorder{}
	m := newTestMasternode(t, rt, WithNotifier(rec))

	if _, err := m.EnsureContainers(context.Background()); err != nil {
		t.Fatalf("EnsureContainers() error = %v", err)
	}

	if calls := rt.mutating(); len(calls) != 0 {
		t.Fatalf("mutating calls = %v, want none", calls)
	}
	if rt.containers["metrics"].spec.Image != "" {
		t.Fatal("existing container spec should not be touched")
	}

	wantEvents := []Event{
		{Kind: EventContainerStep, Resource: KindContainer, Intent: IntentCreate, Name: "metrics"},
		{Kind: EventStepResult, Result: ResultExists},
		{Kind: EventContainerStep, Resource: KindContainer, Intent: IntentCreate, Name: "tomochain"},
		{Kind: EventStepResult, Result: ResultExists},
		{Kind: EventSection},
	}
	if !slices.Equal(rec.Events, wantEvents) {
		t.Fatalf("events = %+v, want %+v", rec.Events, wantEvents)
	}
}

func TestEnsureContainers_PullFailureSkipsCreate(t *testing.T) {
	boom := errors.New("manifest unknown")
	rt := newFakeRuntime()
	rt.errs["ImagePull "+tmn.MetricsImage] = boom
	m := newTestMasternode(t, rt)

	_, err := m.EnsureContainers(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("EnsureContainers() error = %v, want %v", err, boom)
	}

	want := []string{"ImagePull " + tmn.MetricsImage}
	if calls := rt.mutating(); !slices.Equal(calls, want) {
		t.Fatalf("mutating calls = %v, want %v", calls, want)
	}
}

func TestStart_FromScratch(t *testing.T) {
	rt := newFakeRuntime()
	rec := &Recorder{}
	m := newTestMasternode(t, rt, WithNotifier(rec))

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	want := []string{
		"VolumeCreate blockchain_data",
		"NetworkCreate masternode",
		"ImagePull " + tmn.MetricsImage,
		"ContainerCreate metrics",
		"ImagePull " + tmn.TomochainImage,
		"ContainerCreate tomochain",
		"ContainerStart metrics",
		"ContainerStart tomochain",
	}
	if calls := rt.mutating(); !slices.Equal(calls, want) {
		t.Fatalf("mutating calls = %v, want %v", calls, want)
	}

	var statuses []tmn.ContainerStatus
	results := 0
	for _, e := range rec.Events {
		switch e.Kind {
		case EventStatusResult:
			statuses = append(statuses, e.Status)
		case EventStepResult:
			results++
		}
	}
	if !slices.Equal(statuses, []tmn.ContainerStatus{tmn.StatusRunning, tmn.StatusRunning}) {
		t.Fatalf("status results = %v, want running twice", statuses)
	}
	// One per volume, network and container.
	if results != 4 {
		t.Fatalf("step results = %d, want 4", results)
	}
}

func TestStart_IsIdempotent(t *testing.T) {
	rt := newFakeRuntime()
	m := newTestMasternode(t, rt)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	first := len(rt.calls)

	rec := &Recorder{}
	m.notify = rec
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}

	second := append([]string(nil), rt.calls[first:]...)
	for _, c := range second {
		if !isInspect(c) {
			t.Fatalf("second run issued %q, want inspections only (calls %v)", c, second)
		}
	}
	for _, e := range rec.Events {
		if e.Kind == EventStepResult && e.Result != ResultExists {
			t.Fatalf("second run reported %q, want exists for every resource", e.Result)
		}
	}
	for name, c := range rt.containers {
		if c.status != tmn.StatusRunning {
			t.Errorf("%s status = %s, want running", name, c.status)
		}
	}
}

func TestStartAndStop_ExitedAndPausedPair(t *testing.T) {
	rt := newFakeRuntime()
	rt.volumes[tmn.DefaultVolume] = true
	rt.networks[tmn.DefaultNetwork] = true
	rt.addContainer("metrics", tmn.StatusExited)
	rt.addContainer("tomochain", tmn.StatusPaused)
	rec := &Recorder{}
	m := newTestMasternode(t, rt, WithNotifier(rec))

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	want := []string{"ContainerStart metrics", "ContainerUnpause tomochain"}
	if calls := rt.mutating(); !slices.Equal(calls, want) {
		t.Fatalf("start calls = %v, want %v", calls, want)
	}
	assertStatusResults(t, rec, tmn.StatusRunning, tmn.StatusRunning)

	rt.calls = nil
	rec.Events = nil
	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	want = []string{"ContainerStop metrics", "ContainerStop tomochain"}
	if calls := rt.mutating(); !slices.Equal(calls, want) {
		t.Fatalf("stop calls = %v, want %v", calls, want)
	}
	assertStatusResults(t, rec, tmn.StatusExited, tmn.StatusExited)
}

func assertStatusResults(t *testing.T, rec *Recorder, want ...tmn.ContainerStatus) {
	t.Helper()
	var got []tmn.ContainerStatus
	for _, e := range rec.Events {
		if e.Kind == EventStatusResult {
			got = append(got, e.Status)
		}
	}
	if !slices.Equal(got, want) {
		t.Fatalf("status results = %v, want %v", got, want)
	}
}

func TestStop_SkipsMissingContainers(t *testing.T) {
	rt := newFakeRuntime()
	rt.addContainer("tomochain", tmn.StatusRunning)
	rec := &Recorder{}
	m := newTestMasternode(t, rt, WithNotifier(rec))

	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	want := []string{"ContainerStop tomochain"}
	if calls := rt.mutating(); !slices.Equal(calls, want) {
		t.Fatalf("mutating calls = %v, want %v", calls, want)
	}
	if _, ok := rt.containers["metrics"]; ok {
		t.Fatal("stop must not create missing containers")
	}
	wantEvents := []Event{
		{Kind: EventContainerStep, Resource: KindContainer, Intent: IntentStop, Name: "tomochain"},
		{Kind: EventStatusResult, Status: tmn.StatusExited},
		{Kind: EventSection},
	}
	if !slices.Equal(rec.Events, wantEvents) {
		t.Fatalf("events = %+v, want %+v", rec.Events, wantEvents)
	}
}

func TestStopAndStatus_NothingExists(t *testing.T) {
	rt := newFakeRuntime()
	m := newTestMasternode(t, rt)

	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	records, err := m.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}

	if calls := rt.mutating(); len(calls) != 0 {
		t.Fatalf("mutating calls = %v, want none", calls)
	}
	want := []tmn.StatusRecord{{Name: "metrics"}, {Name: "tomochain"}}
	if !slices.Equal(records, want) {
		t.Fatalf("Status() = %+v, want %+v", records, want)
	}
}

func TestStatus_OneRecordPerDeclaredContainerInOrder(t *testing.T) {
	rt := newFakeRuntime()
	rt.addContainer("tomochain", tmn.StatusRunning)
	rt.addContainer("metrics", tmn.StatusPaused)
	m := newTestMasternode(t, rt)

	records, err := m.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	metrics, tomochain := records[0], records[1]
	if metrics.Name != "metrics" || tomochain.Name != "tomochain" {
		t.Fatalf("record order = %s, %s, want metrics, tomochain", metrics.Name, tomochain.Name)
	}
	if metrics.Status != tmn.StatusPaused || metrics.Healthy {
		t.Errorf("metrics = %+v, want paused and unhealthy", metrics)
	}
	if tomochain.Status != tmn.StatusRunning || !tomochain.Healthy {
		t.Errorf("tomochain = %+v, want running and healthy", tomochain)
	}
	if len(tomochain.ShortID) != 12 || tomochain.ShortID != rt.containers["tomochain"].id[:12] {
		t.Errorf("tomochain short id = %q, want first 12 chars of %q", tomochain.ShortID, rt.containers["tomochain"].id)
	}
	if calls := rt.mutating(); len(calls) != 0 {
		t.Fatalf("status must not mutate, got %v", calls)
	}
}

func TestStart_FailureLeavesPartialStateAndRerunCompletes(t *testing.T) {
	boom := errors.New("network plugin not found")
	rt := newFakeRuntime()
	rt.errs["NetworkCreate masternode"] = boom
	m := newTestMasternode(t, rt)

	err := m.Start(context.Background())
	var failure *Failure
	if !errors.As(err, &failure) || failure.Op != "start" {
		t.Fatalf("Start() error = %v, want Failure for start", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Op != "create network" || apiErr.Name != "masternode" {
		t.Fatalf("Start() error = %v, want APIError create network", err)
	}
	if !rt.volumes[tmn.DefaultVolume] {
		t.Fatal("volume created before the failure should remain")
	}
	if len(rt.containers) != 0 {
		t.Fatal("no container work should happen after the failure")
	}

	delete(rt.errs, "NetworkCreate masternode")
	rt.calls = nil
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("re-run Start() error = %v", err)
	}
	for _, c := range rt.mutating() {
		if c == "VolumeCreate blockchain_data" {
			t.Fatal("re-run should reuse the volume")
		}
	}
	if len(rt.containers) != 2 {
		t.Fatalf("containers = %d, want 2", len(rt.containers))
	}
}

func TestStop_StaleStatusActionFailsSafely(t *testing.T) {
	rt := newFakeRuntime()
	rt.addContainer("metrics", tmn.StatusRunning)
	rt.addContainer("tomochain", tmn.StatusRunning)
	m := newTestMasternode(t, rt)

	// Another actor removes metrics right after it was observed running.
	rt.before = func(call string) {
		if call == "ContainerStop metrics" {
			delete(rt.containers, "metrics")
		}
	}

	err := m.Stop(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Op != "stop container" || apiErr.Name != "metrics" {
		t.Fatalf("Stop() error = %v, want APIError stop container metrics", err)
	}
	var failure *Failure
	if !errors.As(err, &failure) || failure.Op != "stop" {
		t.Fatalf("Stop() error = %v, want Failure for stop", err)
	}
	if rt.containers["tomochain"].status != tmn.StatusRunning {
		t.Fatal("containers after the failure should be untouched")
	}
}

func TestStop_ContainerRemovedBetweenLookupAndRefresh(t *testing.T) {
	rt := newFakeRuntime()
	rt.addContainer("metrics", tmn.StatusRunning)
	rt.addContainer("tomochain", tmn.StatusRunning)
	m := newTestMasternode(t, rt)

	inspects := 0
	rt.before = func(call string) {
		if call == "ContainerInspect tomochain" {
			inspects++
			if inspects == 1 {
				delete(rt.containers, "metrics")
			}
		}
	}

	err := m.Stop(context.Background())
	if !errors.Is(err, ErrContainerGone) {
		t.Fatalf("Stop() error = %v, want ErrContainerGone", err)
	}
	if calls := rt.mutating(); len(calls) != 0 {
		t.Fatalf("mutating calls = %v, want none", calls)
	}
}
