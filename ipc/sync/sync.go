// File: ipc/sync/sync.go
// Package sync implements the sync connector API from spec.md §4.2:
// a receiver accumulates signaled bits from one or more senders and wakes
// once its accumulated mask satisfies a caller-chosen match condition.
// Built directly on internal/noc's simulated register, this package adds
// only the topology-aware addressing and the create/open/close/unlink
// resource-lifecycle surface the raw noc API leaves to its callers.
// Author: momentics <momentics@gmail.com>

package sync

import (
	"github.com/mfkiwl/multikernel/internal/noc"
	"github.com/mfkiwl/multikernel/topology"
)

// MatchAny waits for any single signaled bit (one-of-N match).
const MatchAny = ^uint64(0)

// Receiver is the read side of a sync connector (sync_create/sync_wait).
type Receiver struct {
	fabric *noc.Fabric
	addr   noc.Addr
}

// Sender is the write side of a sync connector (sync_open/sync_signal).
type Sender struct {
	fabric *noc.Fabric
	addr   noc.Addr
}

// Create allocates the receiver for node's sync tag and configures match as
// the bitmask sync_wait will block for (sync_create).
func Create(fabric *noc.Fabric, node int, match uint64) *Receiver {
	addr := noc.Addr{Node: node, Tag: topology.NoctagFor(topology.PurposeSync, node)}
	fabric.SyncSetMatch(addr, match)
	return &Receiver{fabric: fabric, addr: addr}
}

// Open binds a sender to the receiver living at node's sync tag (sync_open).
func Open(fabric *noc.Fabric, node int) *Sender {
	addr := noc.Addr{Node: node, Tag: topology.NoctagFor(topology.PurposeSync, node)}
	return &Sender{fabric: fabric, addr: addr}
}

// Wait blocks until the receiver's mask satisfies its match condition, then
// resets the mask (sync_wait).
func (r *Receiver) Wait() error { return r.fabric.SyncWait(r.addr) }

// Close releases the receiver and its underlying register (sync_close).
func (r *Receiver) Close() { r.fabric.SyncUnlink(r.addr) }

// Unlink is an alias for Close kept for parity with spec.md's sync_unlink name.
func (r *Receiver) Unlink() { r.Close() }

// Signal ORs bit into the target receiver's mask (sync_signal).
func (s *Sender) Signal(bit uint64) { s.fabric.SyncSignal(s.addr, bit) }

// Close releases the sender's handle; the receiver's register outlives it
// until the receiver itself closes.
func (s *Sender) Close() {}
