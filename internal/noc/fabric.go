// File: internal/noc/fabric.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fabric is the process-wide registry of simulated NoC endpoints, keyed by
// (node, tag). Endpoints are lazily get-or-created: a portal reader's
// portal_allow and a sender's portal_open race in real hardware too, and the
// protocol relies on both sides finding the same underlying register no
// matter which one runs first (spec.md §4.4's rendezvous handshake). Node
// IDs are static and known topologically (no discovery), so a simple map
// keyed by Addr is sufficient.

package noc

import "sync"

// Addr names one simulated NoC endpoint.
type Addr struct {
	Node int
	Tag  int
}

// Fabric owns every live sync, mailbox, and portal register for one
// simulated platform instance.
type Fabric struct {
	mu      sync.Mutex
	syncs   map[Addr]*syncRegister
	mboxes  map[Addr]*mailboxRegister
	portals map[Addr]*portalRegister
	names   map[string]*mailboxRegister
}

// NewFabric creates an empty registry. Production code shares one Fabric
// (see Default); tests create private ones for isolation.
func NewFabric() *Fabric {
	return &Fabric{
		syncs:   make(map[Addr]*syncRegister),
		mboxes:  make(map[Addr]*mailboxRegister),
		portals: make(map[Addr]*portalRegister),
		names:   make(map[string]*mailboxRegister),
	}
}

// Default is the process-wide fabric the spawner and its servers share.
var Default = NewFabric()

func (f *Fabric) syncReg(addr Addr) *syncRegister {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.syncs[addr]
	if !ok {
		r = newSyncRegister()
		f.syncs[addr] = r
	}
	return r
}

func (f *Fabric) mailboxReg(addr Addr) *mailboxRegister {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.mboxes[addr]
	if !ok {
		r = newMailboxRegister()
		f.mboxes[addr] = r
	}
	return r
}

func (f *Fabric) portalReg(addr Addr) *portalRegister {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.portals[addr]
	if !ok {
		r = newPortalRegister()
		f.portals[addr] = r
	}
	return r
}

// CreateMailboxName binds a process-local name to a fresh mailbox register,
// independent of the node/tag fabric (spec.md §8 scenario 1's
// mailbox_create("cool-name") form, used by isolated lifecycle tests that
// never route through a real node address).
func (f *Fabric) CreateMailboxName(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.names[name]; exists {
		return ErrNameInUse
	}
	f.names[name] = newMailboxRegister()
	return nil
}

// OpenMailboxName verifies name is bound by CreateMailboxName.
func (f *Fabric) OpenMailboxName(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.names[name]; !ok {
		return ErrNameNotFound
	}
	return nil
}

// WriteNamedMailbox sends frame to the mailbox bound to name.
func (f *Fabric) WriteNamedMailbox(name string, frame [FrameSize]byte) error {
	f.mu.Lock()
	r, ok := f.names[name]
	f.mu.Unlock()
	if !ok {
		return ErrNameNotFound
	}
	return r.write(frame)
}

// ReadNamedMailbox receives the next frame from the mailbox bound to name,
// blocking until one arrives.
func (f *Fabric) ReadNamedMailbox(name string) ([FrameSize]byte, error) {
	f.mu.Lock()
	r, ok := f.names[name]
	f.mu.Unlock()
	if !ok {
		return [FrameSize]byte{}, ErrNameNotFound
	}
	return r.read()
}

// UnlinkMailboxName removes name from the local directory and closes the
// underlying register.
func (f *Fabric) UnlinkMailboxName(name string) error {
	f.mu.Lock()
	r, ok := f.names[name]
	if ok {
		delete(f.names, name)
	}
	f.mu.Unlock()
	if !ok {
		return ErrNameNotFound
	}
	r.close()
	return nil
}
