package cmdutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"tmn"
	"tmn/internal/adapter/docker"
)

// Session is a connected daemon plus the topology to converge it to.
type Session struct {
	Target   Target
	Runtime  *docker.Runtime
	Topology tmn.Topology
}

// Open resolves the target, loads its topology and connects. The
// descriptor is loaded first so a bad file fails without touching the daemon.
func Open(ctx context.Context, opts Options) (*Session, error) {
	target, err := Resolve(opts)
	if err != nil {
		return nil, err
	}
	topo, err := Topology(ctx, target)
	if err != nil {
		return nil, err
	}
	rt, err := Connect(ctx, target, opts)
	if err != nil {
		return nil, err
	}
	return &Session{Target: target, Runtime: rt, Topology: topo}, nil
}

func (s *Session) Close() error {
	if s == nil || s.Runtime == nil {
		return nil
	}
	return s.Runtime.Close()
}

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
)

func ValidateOutput(format string) error {
	switch format {
	case OutputText, OutputJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q, want %s or %s", format, OutputText, OutputJSON)
	}
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
