package masternode

import (
	"context"
	"fmt"
	"strings"

	"tmn"
)

// fakeRuntime is an in-memory container daemon. Every call is appended to
// calls as "Method name". Errors can be injected per call key.
type fakeRuntime struct {
	volumes    map[string]bool
	networks   map[string]bool
	containers map[string]*fakeContainer
	images     map[string]bool
	// aliases makes an inspect of the key answer with another container,
	// the way the daemon resolves ID prefixes.
	aliases map[string]string

	errs   map[string]error
	before func(call string)

	calls []string
	seq   int
}

type fakeContainer struct {
	id     string
	spec   tmn.ContainerSpec
	status tmn.ContainerStatus
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		volumes:    make(map[string]bool),
		networks:   make(map[string]bool),
		containers: make(map[string]*fakeContainer),
		images:     make(map[string]bool),
		aliases:    make(map[string]string),
		errs:       make(map[string]error),
	}
}

func (f *fakeRuntime) addContainer(name string, status tmn.ContainerStatus) {
	f.seq++
	f.containers[name] = &fakeContainer{
		id:     fmt.Sprintf("%064x", f.seq),
		spec:   tmn.ContainerSpec{Name: name},
		status: status,
	}
}

func (f *fakeRuntime) record(method, name string) error {
	call := method + " " + name
	f.calls = append(f.calls, call)
	if f.before != nil {
		f.before(call)
	}
	return f.errs[call]
}

// mutating returns the calls that change runtime state.
func (f *fakeRuntime) mutating() []string {
	var out []string
	for _, c := range f.calls {
		if !isInspect(c) {
			out = append(out, c)
		}
	}
	return out
}

func isInspect(call string) bool {
	method, _, _ := strings.Cut(call, " ")
	return strings.HasSuffix(method, "Inspect")
}

func (f *fakeRuntime) VolumeInspect(_ context.Context, name string) (ResourceInfo, error) {
	if err := f.record("VolumeInspect", name); err != nil {
		return ResourceInfo{}, err
	}
	return ResourceInfo{Exists: f.volumes[name], Name: name}, nil
}

func (f *fakeRuntime) VolumeCreate(_ context.Context, name string) error {
	if err := f.record("VolumeCreate", name); err != nil {
		return err
	}
	f.volumes[name] = true
	return nil
}

func (f *fakeRuntime) NetworkInspect(_ context.Context, name string) (ResourceInfo, error) {
	if err := f.record("NetworkInspect", name); err != nil {
		return ResourceInfo{}, err
	}
	return ResourceInfo{Exists: f.networks[name], Name: name}, nil
}

func (f *fakeRuntime) NetworkCreate(_ context.Context, name string) error {
	if err := f.record("NetworkCreate", name); err != nil {
		return err
	}
	f.networks[name] = true
	return nil
}

func (f *fakeRuntime) ContainerInspect(_ context.Context, name string) (ContainerInfo, error) {
	if err := f.record("ContainerInspect", name); err != nil {
		return ContainerInfo{}, err
	}
	resolved := name
	if alias, ok := f.aliases[name]; ok {
		resolved = alias
	}
	c, ok := f.containers[resolved]
	if !ok {
		return ContainerInfo{}, nil
	}
	return ContainerInfo{Exists: true, ID: c.id, Name: resolved, Status: c.status}, nil
}

func (f *fakeRuntime) ContainerCreate(_ context.Context, spec tmn.ContainerSpec) error {
	if err := f.record("ContainerCreate", spec.Name); err != nil {
		return err
	}
	if !f.images[spec.Image] {
		return fmt.Errorf("no such image: %s", spec.Image)
	}
	if _, ok := f.containers[spec.Name]; ok {
		return fmt.Errorf("conflict: container %s already exists", spec.Name)
	}
	f.addContainer(spec.Name, tmn.StatusCreated)
	f.containers[spec.Name].spec = spec
	return nil
}

func (f *fakeRuntime) ImagePull(_ context.Context, ref string) error {
	if err := f.record("ImagePull", ref); err != nil {
		return err
	}
	f.images[ref] = true
	return nil
}

func (f *fakeRuntime) ContainerStart(_ context.Context, name string) error {
	return f.setStatus("ContainerStart", name, tmn.StatusRunning, tmn.StatusCreated, tmn.StatusExited, tmn.StatusDead)
}

func (f *fakeRuntime) ContainerStop(_ context.Context, name string) error {
	return f.setStatus("ContainerStop", name, tmn.StatusExited, tmn.StatusRunning, tmn.StatusRestarting, tmn.StatusPaused)
}

func (f *fakeRuntime) ContainerUnpause(_ context.Context, name string) error {
	return f.setStatus("ContainerUnpause", name, tmn.StatusRunning, tmn.StatusPaused)
}

// setStatus moves a container to next, rejecting calls from statuses the
// real daemon would refuse.
func (f *fakeRuntime) setStatus(method, name string, next tmn.ContainerStatus, from ...tmn.ContainerStatus) error {
	if err := f.record(method, name); err != nil {
		return err
	}
	c, ok := f.containers[name]
	if !ok {
		return fmt.Errorf("no such container: %s", name)
	}
	for _, s := range from {
		if c.status == s {
			c.status = next
			return nil
		}
	}
	return fmt.Errorf("%s %s: invalid from status %s", method, name, c.status)
}
