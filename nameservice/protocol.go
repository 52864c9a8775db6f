// File: nameservice/protocol.go
// Package nameservice implements the name/address registry described in
// spec.md §4.6: a single well-known server node maps process-chosen names
// to node IDs and back, over the fixed-frame mailbox wire protocol. Every
// request/reply pair fits in one MAILBOX_MSG_SIZE frame.
// Author: momentics <momentics@gmail.com>

package nameservice

import (
	"encoding/binary"

	"github.com/mfkiwl/multikernel/ipc/mailbox"
)

// NameMax is the longest name the wire format carries (NAME_MAX). Sized so
// the header (opcode + node + reply-node + port + length byte) plus the name
// bytes fit exactly one mailbox.MsgSize frame.
const NameMax = mailbox.MsgSize - 14

// Opcode identifies the request kind.
type Opcode byte

const (
	OpLink Opcode = iota + 1
	OpUnlink
	OpLookup
	OpRegister
	OpUnregister
	OpAddressLookup
)

// Status is the reply's outcome marker.
type Status byte

const (
	StatusSuccess Status = iota
	StatusFailure
)

// Request is the wire layout of one name-service call:
//
//	byte 0:      Opcode
//	bytes 1-4:   Node (big-endian int32), meaning depends on Opcode
//	bytes 5-8:   ReplyNode (big-endian int32), the caller's node, addressing
//	             where the server's Reply frame is delivered
//	bytes 9-12:  Port (big-endian int32), the port register/address_lookup
//	             binds or resolves; unused by link/unlink/lookup
//	byte 13:     name length
//	bytes 14-..: name bytes (NAME_MAX, zero-padded)
type Request struct {
	Op        Opcode
	Node      int32
	ReplyNode int32
	Port      int32
	Name      string
}

// Reply is the wire layout of one name-service response:
//
//	byte 0:     Status
//	bytes 1-4:  Node (big-endian int32), valid on success for
//	            Lookup/AddressLookup
//	bytes 5-8:  Port (big-endian int32), valid on success for AddressLookup
//	bytes 9-12: Errno (big-endian int32, negative POSIX code), valid on failure
type Reply struct {
	Status Status
	Node   int32
	Port   int32
	Errno  int32
}

// Encode serializes r into one mailbox.MsgSize frame.
func (r Request) Encode() []byte {
	frame := make([]byte, mailbox.MsgSize)
	frame[0] = byte(r.Op)
	binary.BigEndian.PutUint32(frame[1:5], uint32(r.Node))
	binary.BigEndian.PutUint32(frame[5:9], uint32(r.ReplyNode))
	binary.BigEndian.PutUint32(frame[9:13], uint32(r.Port))
	name := r.Name
	if len(name) > NameMax {
		name = name[:NameMax]
	}
	frame[13] = byte(len(name))
	copy(frame[14:14+len(name)], name)
	return frame
}

// DecodeRequest parses a wire frame back into a Request.
func DecodeRequest(frame []byte) Request {
	nameLen := int(frame[13])
	if nameLen > NameMax {
		nameLen = NameMax
	}
	return Request{
		Op:        Opcode(frame[0]),
		Node:      int32(binary.BigEndian.Uint32(frame[1:5])),
		ReplyNode: int32(binary.BigEndian.Uint32(frame[5:9])),
		Port:      int32(binary.BigEndian.Uint32(frame[9:13])),
		Name:      string(frame[14 : 14+nameLen]),
	}
}

// Encode serializes a Reply into one mailbox.MsgSize frame.
func (r Reply) Encode() []byte {
	frame := make([]byte, mailbox.MsgSize)
	frame[0] = byte(r.Status)
	binary.BigEndian.PutUint32(frame[1:5], uint32(r.Node))
	binary.BigEndian.PutUint32(frame[5:9], uint32(r.Port))
	binary.BigEndian.PutUint32(frame[9:13], uint32(r.Errno))
	return frame
}

// DecodeReply parses a wire frame back into a Reply.
func DecodeReply(frame []byte) Reply {
	return Reply{
		Status: Status(frame[0]),
		Node:   int32(binary.BigEndian.Uint32(frame[1:5])),
		Port:   int32(binary.BigEndian.Uint32(frame[5:9])),
		Errno:  int32(binary.BigEndian.Uint32(frame[9:13])),
	}
}
