// File: server/frame.go
// Package server implements the generic resource-server loop described in
// spec.md §4.7: a request demultiplexer that dispatches single-frame
// requests directly, and pairs up two-frame requests (e.g. SHM's
// create/open which carry a header frame and a data frame) per source node
// before dispatching, using a sequence-number convention rather than a
// full reassembly buffer.
// Author: momentics <momentics@gmail.com>

package server

// Frame is one raw mailbox payload as the generic server sees it: a
// sequence byte, an opcode byte, and the remaining bytes as payload.
type Frame struct {
	Seq     byte
	Opcode  byte
	Payload []byte
}

// IsSecondOf reports whether f is the second half of a two-frame request
// whose first frame carried seq first.Seq (spec.md §4.7's "first.seq|1"
// pairing rule: the second frame's sequence is the first's with its low
// bit set).
func (f Frame) IsSecondOf(first Frame) bool {
	return f.Seq == first.Seq|1
}

// DecodeFrame parses a raw mailbox frame into its Frame form. The first two
// bytes are Seq and Opcode; the rest is payload.
func DecodeFrame(raw []byte) Frame {
	if len(raw) < 2 {
		return Frame{}
	}
	payload := make([]byte, len(raw)-2)
	copy(payload, raw[2:])
	return Frame{Seq: raw[0], Opcode: raw[1], Payload: payload}
}

// Encode serializes f back into a raw mailbox frame of the given total
// size (MsgSize), zero-padding any remainder.
func (f Frame) Encode(size int) []byte {
	raw := make([]byte, size)
	raw[0] = f.Seq
	raw[1] = f.Opcode
	copy(raw[2:], f.Payload)
	return raw
}
