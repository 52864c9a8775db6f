// File: ipc/portal/portal.go
// Package portal implements the bulk-transfer portal connector and its
// rendezvous handshake (spec.md §4.4): portal_create/open bind the two
// ends of a one-remote-at-a-time DMA channel; portal_allow narrows the
// receiver to a single sender and signals a control-sync "identification
// bit" so the sender knows it may proceed; portal_write/portal_read move
// the payload; the read half returns an async handle matching aio_wait.
//
// Endpoint state follows Created -> Allowed(remote) -> Reading(aio) ->
// Done|Error. The control-sync channel is always addressed by the caller's
// ctrlNode and that node's per-node sync tag; topology.CrossIOPortalTag is
// not used, so cross-I/O-cluster transfers get no distinguished tag.
// Author: momentics <momentics@gmail.com>

package portal

import (
	"github.com/mfkiwl/multikernel/internal/noc"
	"github.com/mfkiwl/multikernel/topology"
)

// Receiver is the read side of a portal connector.
type Receiver struct {
	fabric *noc.Fabric
	addr   noc.Addr
	node   int
	ctrl   noc.Addr // control-sync channel the receiver signals after allow
}

// Sender is the write side of a portal connector, created once the sender
// knows (via the control-sync channel) that it has been allowed.
type Sender struct {
	fabric *noc.Fabric
	addr   noc.Addr
	remote noc.Addr
}

// Pending is an armed, not-yet-complete asynchronous portal read.
type Pending struct {
	fabric *noc.Fabric
	addr   noc.Addr
	token  uint64
	buf    []byte
}

// Create opens the receive side of the portal at node's portal tag
// (portal_create). ctrlNode names the node whose control-sync channel this
// receiver signals once it allows a remote, on that node's per-node sync
// tag; the caller chooses it, and sender and receiver must pass the same one.
func Create(fabric *noc.Fabric, node, ctrlNode int) *Receiver {
	addr := noc.Addr{Node: node, Tag: topology.NoctagFor(topology.PurposePortal, node)}
	ctrl := noc.Addr{Node: ctrlNode, Tag: topology.NoctagFor(topology.PurposeSync, ctrlNode)}
	return &Receiver{fabric: fabric, addr: addr, node: node, ctrl: ctrl}
}

// Allow restricts the portal to accept transfers only from remoteNode, and
// signals the control-sync channel with remoteNode's identification bit so
// the matching sender's Open (which waits on that same channel) proceeds
// (portal_allow).
func (r *Receiver) Allow(remoteNode int) {
	remote := noc.Addr{Node: remoteNode, Tag: topology.NoctagFor(topology.PurposePortal, remoteNode)}
	r.fabric.PortalAllow(r.addr, remote)
	r.fabric.SyncSignal(r.ctrl, topology.IdentificationBit(remoteNode))
}

// ArmRead arms buf to receive the next allowed transfer and returns a
// Pending handle (the asynchronous half of portal_read).
func (r *Receiver) ArmRead(buf []byte) *Pending {
	token := r.fabric.PortalArmRead(r.addr, buf)
	return &Pending{fabric: r.fabric, addr: r.addr, token: token, buf: buf}
}

// Wait blocks until the armed read completes, returning the byte count
// transferred (aio_wait over portal_read's completion).
func (p *Pending) Wait() (int, error) {
	return p.fabric.PortalWait(p.addr, p.token)
}

// Close tears down the receiver and fails any outstanding armed read.
func (r *Receiver) Close() { r.fabric.PortalUnlink(r.addr) }

// Open performs portal_open's rendezvous wait: it blocks on the
// control-sync channel until the receiver's Allow has signaled this node's
// identification bit. It builds no handle (NewSender does that), and
// remoteNode is not used.
func Open(fabric *noc.Fabric, node, remoteNode, ctrlNode int) error {
	ctrl := noc.Addr{Node: ctrlNode, Tag: topology.NoctagFor(topology.PurposeSync, ctrlNode)}
	fabric.SyncSetMatch(ctrl, topology.IdentificationBit(node))
	return fabric.SyncWait(ctrl)
}

// NewSender constructs the write handle once Open's rendezvous wait has
// returned (portal_open's synchronous half).
func NewSender(fabric *noc.Fabric, node, remoteNode int) *Sender {
	addr := noc.Addr{Node: remoteNode, Tag: topology.NoctagFor(topology.PurposePortal, remoteNode)}
	remote := noc.Addr{Node: node, Tag: topology.NoctagFor(topology.PurposePortal, node)}
	return &Sender{fabric: fabric, addr: addr, remote: remote}
}

// Write transfers buf to the receiver's armed buffer (portal_write). It
// returns ErrNotAllowed if the receiver has not allowed this sender, and
// ErrSizeMismatch if buf does not match the armed buffer's length.
func (s *Sender) Write(buf []byte) (int, error) {
	return s.fabric.PortalWrite(s.addr, s.remote, buf)
}
