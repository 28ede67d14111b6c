//go:build debug

// Package check holds programmer-error assertions that only fire in builds
// tagged "debug".
package check

// Assert panics when cond is false.
func Assert(cond bool, msg string) {
	if !cond {
		panic("tmn: assertion failed: " + msg)
	}
}
