//go:build arm64 && !noasm

// relax_arm64.go
//
// Go declaration for cpuRelax on arm64.  The implementation lives in
// relax_arm64.s and emits a YIELD hint, the aarch64 counterpart of the
// x86 PAUSE instruction.

package tring

// cpuRelax executes the aarch64 YIELD instruction.
//
//go:noescape
func cpuRelax()
