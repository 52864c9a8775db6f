//go:build !linux

// File: internal/noc/aio_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package noc

// chanSignaller is the non-Linux fallback: the per-token Go channel in
// CompletionEngine already does the real blocking, so this backend is a
// no-op bookkeeping shim, mirroring the teacher's affinity_stub.go pattern
// of a platform stub that satisfies the interface without touching the OS.
type chanSignaller struct{}

func newSignaller() signaller { return &chanSignaller{} }

func (*chanSignaller) signal() {}
func (*chanSignaller) drain()  {}
func (*chanSignaller) close()  {}
