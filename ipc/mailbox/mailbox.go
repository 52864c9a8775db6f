// File: ipc/mailbox/mailbox.go
// Package mailbox implements the fixed-frame mailbox connector API from
// spec.md §4.3: mailbox_create/open bind a (node, tag) or a free-standing
// name to a bounded FIFO of MAILBOX_MSG_SIZE-byte frames, mailbox_write/
// read move one frame at a time, and mailbox_close/unlink tear it down.
// Author: momentics <momentics@gmail.com>

package mailbox

import (
	"github.com/mfkiwl/multikernel/internal/noc"
	"github.com/mfkiwl/multikernel/ipcerr"
	"github.com/mfkiwl/multikernel/topology"
)

// MsgSize is the fixed mailbox frame size (MAILBOX_MSG_SIZE).
const MsgSize = noc.FrameSize

// Mailbox is an open mailbox endpoint, either node-addressed or bound to a
// free-standing name.
type Mailbox struct {
	fabric *noc.Fabric
	addr   noc.Addr
	named  bool
	name   string
}

// Create opens the receive side of the mailbox at node's mailbox tag
// (mailbox_create).
func Create(fabric *noc.Fabric, node int) *Mailbox {
	addr := noc.Addr{Node: node, Tag: topology.NoctagFor(topology.PurposeMailbox, node)}
	return &Mailbox{fabric: fabric, addr: addr}
}

// Open binds the send side of the mailbox at node's mailbox tag
// (mailbox_open).
func Open(fabric *noc.Fabric, node int) *Mailbox {
	return Create(fabric, node)
}

// CreateNamed binds a free-standing name to a fresh mailbox, independent of
// node addressing (spec.md §8 scenario 1's mailbox_create("cool-name")).
func CreateNamed(fabric *noc.Fabric, name string) (*Mailbox, error) {
	if err := fabric.CreateMailboxName(name); err != nil {
		return nil, err
	}
	return &Mailbox{fabric: fabric, named: true, name: name}, nil
}

// OpenNamed opens the send side of a name bound by CreateNamed.
func OpenNamed(fabric *noc.Fabric, name string) (*Mailbox, error) {
	if err := fabric.OpenMailboxName(name); err != nil {
		return nil, err
	}
	return &Mailbox{fabric: fabric, named: true, name: name}, nil
}

// Write sends one MsgSize-byte frame (mailbox_write). msg longer than
// MsgSize is rejected with an InvalidArgument error; shorter is
// zero-padded to the fixed frame size.
func (m *Mailbox) Write(msg []byte) error {
	if len(msg) > MsgSize {
		return ipcerr.New(ipcerr.InvalidArgument, "mailbox: message exceeds frame size")
	}
	var frame [MsgSize]byte
	copy(frame[:], msg)
	if m.named {
		return m.fabric.WriteNamedMailbox(m.name, frame)
	}
	return m.fabric.MailboxWrite(m.addr, frame)
}

// TryWrite sends one frame without blocking, returning a Busy-coded error
// (noc.ErrNoRoom) immediately if the mailbox's FIFO is full rather than waiting for
// room (the EAGAIN a real mailbox_write gives a caller that polls).
func (m *Mailbox) TryWrite(msg []byte) error {
	if len(msg) > MsgSize {
		return ipcerr.New(ipcerr.InvalidArgument, "mailbox: message exceeds frame size")
	}
	var frame [MsgSize]byte
	copy(frame[:], msg)
	if m.named {
		return ipcerr.New(ipcerr.InvalidArgument, "mailbox: TryWrite not supported on named mailboxes")
	}
	return m.fabric.MailboxTryWrite(m.addr, frame)
}

// Read receives the next frame, blocking until one arrives (mailbox_read).
// The returned slice is always exactly MsgSize bytes.
func (m *Mailbox) Read() ([]byte, error) {
	var frame [MsgSize]byte
	var err error
	if m.named {
		frame, err = m.fabric.ReadNamedMailbox(m.name)
	} else {
		frame, err = m.fabric.MailboxRead(m.addr)
	}
	if err != nil {
		return nil, err
	}
	out := make([]byte, MsgSize)
	copy(out, frame[:])
	return out, nil
}

// Close releases this mailbox handle (mailbox_close). Unlink additionally
// tears down the shared register (mailbox_unlink).
func (m *Mailbox) Close() {}

func (m *Mailbox) Unlink() {
	if m.named {
		_ = m.fabric.UnlinkMailboxName(m.name)
		return
	}
	m.fabric.MailboxUnlink(m.addr)
}
