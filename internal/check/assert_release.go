//go:build !debug

// Package check holds programmer-error assertions that only fire in builds
// tagged "debug".
package check

func Assert(bool, string) {}
