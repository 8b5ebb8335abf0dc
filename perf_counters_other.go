//go:build !linux
// +build !linux

// Package matprod provides the counter backend stub for non-Linux platforms
package matprod

// NewHostBackend returns a backend whose Init always fails on non-Linux
// platforms, so samples are reported without cache-miss counts.
func NewHostBackend(l2RawEvent uint64) Backend {
	return unsupportedBackend{}
}
