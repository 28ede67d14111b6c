package masternode

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrContainerGone is returned when a container found earlier in the same
// operation is no longer present on the runtime.
var ErrContainerGone = errors.New("container disappeared")

// ErrNameMismatch is returned when the runtime answers a lookup with a
// container of a different name.
var ErrNameMismatch = errors.New("container name mismatch")

// ErrNoRuntime is returned by New when no runtime is given.
var ErrNoRuntime = errors.New("masternode: runtime is required")

// APIError is an unexpected failure of a runtime call. It is never retried.
type APIError struct {
	Op   string
	Name string
	Err  error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

func apiError(op, name string, err error) error {
	return &APIError{Op: op, Name: name, Err: err}
}

// Failure is the single terminal error of a top-level operation. Work done
// before the failure is left in place.
type Failure struct {
	Op  string
	Err error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("masternode %s: %v", f.Op, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// guard turns the error of a top-level operation into a Failure.
func guard(op string, err error) error {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return err
	}
	slog.Error("Masternode operation failed.", "op", op, "err", err)
	return &Failure{Op: op, Err: err}
}
