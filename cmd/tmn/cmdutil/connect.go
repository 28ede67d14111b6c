package cmdutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"tmn"
	"tmn/config"
	"tmn/internal/adapter/docker"
	"tmn/internal/descriptor"
)

// Target is what a command runs against once flags, environment and config
// are resolved.
type Target struct {
	Context    string // empty when no context was used
	Host       string // empty means the docker environment decides
	Descriptor string // empty means the default topology
}

// Resolve picks the daemon host and descriptor. Host resolution order:
//
//  1. --host / TMN_DOCKER_HOST
//  2. --context / TMN_CONTEXT
//  3. current-context from the config file
//  4. DOCKER_HOST and friends, read by the docker client
//
// --descriptor always wins over a context's descriptor.
func Resolve(opts Options) (Target, error) {
	t := Target{Descriptor: opts.Descriptor}

	if host := firstNonEmpty(opts.Host, os.Getenv(envHost)); host != "" {
		t.Host = host
		return t, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return Target{}, fmt.Errorf("load config: %w", err)
	}
	name, c, ok, err := cfg.Resolve(firstNonEmpty(opts.Context, os.Getenv(envContext)))
	if err != nil {
		return Target{}, err
	}
	if ok {
		t.Context = name
		t.Host = c.Host
		t.Descriptor = firstNonEmpty(t.Descriptor, c.Descriptor)
	}
	return t, nil
}

// Connect opens a Docker runtime for t and checks the daemon answers,
// polling for up to opts.Wait when it is set.
func Connect(ctx context.Context, t Target, opts Options) (*docker.Runtime, error) {
	rt, err := docker.NewRuntime(t.Host)
	if err != nil {
		return nil, err
	}
	slog.Debug("Connecting to docker daemon.", "host", rt.Host(), "context", t.Context)

	if opts.Wait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, opts.Wait)
		defer cancel()
		err = rt.WaitReady(waitCtx)
	} else {
		err = rt.Ping(ctx)
	}
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

// Topology loads t's descriptor, or returns the default topology.
func Topology(ctx context.Context, t Target) (tmn.Topology, error) {
	if t.Descriptor == "" {
		return tmn.DefaultTopology(), nil
	}
	topo, err := descriptor.Load(ctx, t.Descriptor)
	if err != nil {
		return tmn.Topology{}, fmt.Errorf("load descriptor %s: %w", t.Descriptor, err)
	}
	return topo, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
