//go:build (!amd64 && !arm64) || noasm

// relax_stub.go
//
// Portable fall-back for targets without a dedicated spin-wait hint, or
// when assembly stubs are disabled.  Declares cpuRelax as an empty
// function so callers compile unchanged on every architecture.

package tring

// cpuRelax is a no-op on unsupported targets.
func cpuRelax() {}
