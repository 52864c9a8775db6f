// File: runtime/runtime.go
// Package runtime implements the per-core bring-up bookkeeping a spawned
// process performs before it can talk to anything else: exactly-once
// initialization guarded by runtime_lock, a mandatory per-node input
// mailbox, and an optional portal receiver for processes that also accept
// bulk transfers (spec.md §4.9's runtime_init). Node affinity is pinned via
// the affinity package so each simulated node's goroutine tends to stay on
// one physical core the way the real many-core platform would schedule it.
// Author: momentics <momentics@gmail.com>

package runtime

import (
	stdruntime "runtime"
	"sync"

	"github.com/mfkiwl/multikernel/affinity"
	"github.com/mfkiwl/multikernel/internal/noc"
	"github.com/mfkiwl/multikernel/ipc/mailbox"
	"github.com/mfkiwl/multikernel/ipc/portal"
	"github.com/mfkiwl/multikernel/ipcerr"
)

// Handle is what runtime_init hands back to a newly initialized core.
type Handle struct {
	Core   int
	Inbox  *mailbox.Mailbox
	Portal *portal.Receiver // nil unless InitWithPortal was used
}

// Runtime tracks which cores have completed bring-up (runtime_lock guards
// concurrent calls to Init from racing on the same core).
type Runtime struct {
	mu          sync.Mutex
	initialized map[int]bool
	fabric      *noc.Fabric
}

// New creates a runtime bookkeeper over fabric.
func New(fabric *noc.Fabric) *Runtime {
	return &Runtime{initialized: make(map[int]bool), fabric: fabric}
}

// ErrAlreadyInitialized is returned by a second Init call for a core that
// has already completed bring-up.
var ErrAlreadyInitialized = ipcerr.New(ipcerr.AlreadyExists, "runtime: core already initialized")

// Init brings up core: pins affinity, opens its mandatory input mailbox,
// and marks it initialized. Calling Init twice for the same core is an
// error — bring-up happens exactly once per process lifetime.
func (r *Runtime) Init(core int) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized[core] {
		return nil, ErrAlreadyInitialized
	}

	stdruntime.LockOSThread()
	_ = affinity.SetAffinity(core)

	inbox := mailbox.Create(r.fabric, core)
	r.initialized[core] = true
	return &Handle{Core: core, Inbox: inbox}, nil
}

// InitWithPortal behaves like Init but also opens a portal receiver on
// core, for processes (like the SHM server's DMA-capable callers) that
// need bulk transfer in addition to the mandatory mailbox. ctrlNode is the
// control-sync node the portal's rendezvous handshake uses.
func (r *Runtime) InitWithPortal(core, ctrlNode int) (*Handle, error) {
	h, err := r.Init(core)
	if err != nil {
		return nil, err
	}
	h.Portal = portal.Create(r.fabric, core, ctrlNode)
	return h, nil
}

// IsInitialized reports whether core has completed bring-up.
func (r *Runtime) IsInitialized(core int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialized[core]
}
