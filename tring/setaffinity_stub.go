//go:build !linux || tinygo

// setaffinity_stub.go
//
// No-op CPU pinning for platforms without sched_setaffinity(2).  Keeps
// the API identical so higher-level code needs no build tags of its own.

package tring

// setAffinity is a no-op on unsupported platforms.
func setAffinity(cpu int) {}
