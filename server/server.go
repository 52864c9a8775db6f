// File: server/server.go
// Author: momentics <momentics@gmail.com>

package server

import (
	"sync"

	"github.com/mfkiwl/multikernel/internal/noc"
	"github.com/mfkiwl/multikernel/ipc/mailbox"
	"github.com/mfkiwl/multikernel/ipcerr"
	"github.com/mfkiwl/multikernel/topology"
)

func mailboxTagFor(node int) int { return topology.NoctagFor(topology.PurposeMailbox, node) }

// EncodeRequestFrame builds the raw wire frame a client sends to a Server:
// seq, opcode, the client's own node (so the server knows where to reply,
// standing in for what mailbox_read's sender ioctl would report on real
// hardware), then payload.
func EncodeRequestFrame(seq, opcode byte, sourceNode int, payload []byte, size int) []byte {
	raw := make([]byte, size)
	raw[0] = seq
	raw[1] = opcode
	raw[2] = byte(sourceNode)
	copy(raw[3:], payload)
	return raw
}

// Request is one fully assembled request handed to a Dispatcher: either a
// single frame, or a paired two-frame request with Data set from the
// second frame's payload.
type Request struct {
	Source  int
	Opcode  byte
	Header  []byte
	Data    []byte // nil for single-frame requests
}

// Response is what a Dispatcher returns; it is sent back as one frame to
// Source.
type Response struct {
	Opcode  byte
	Payload []byte
}

// Dispatcher handles one assembled Request and produces a Response.
type Dispatcher interface {
	Handle(req Request) Response
}

// TwoFrameOpcodes is the set of opcodes whose requests arrive as a header
// frame followed by a data frame from the same source (spec.md §4.7's SHM
// create/open case study).
type TwoFrameOpcodes map[byte]bool

// Server runs the generic demultiplex loop for one resource server: reads
// frames from its inbound mailbox, pairs up two-frame requests per source
// using the seq|1 convention, dispatches assembled requests, and writes
// each Response back to its source.
type Server struct {
	fabric    *noc.Fabric
	node      int
	twoFrame  TwoFrameOpcodes
	dispatch  Dispatcher

	mu      sync.Mutex
	pending map[int]Frame // source node -> awaited first frame
}

// New creates a server bound to node, dispatching assembled requests to d.
// twoFrame names the opcodes that require a second data frame before
// dispatch; pass nil if every request in this server's protocol is
// single-frame.
func New(fabric *noc.Fabric, node int, d Dispatcher, twoFrame TwoFrameOpcodes) *Server {
	if twoFrame == nil {
		twoFrame = TwoFrameOpcodes{}
	}
	return &Server{
		fabric:   fabric,
		node:     node,
		twoFrame: twoFrame,
		dispatch: d,
		pending:  make(map[int]Frame),
	}
}

// Serve runs until the inbound mailbox is unlinked (Close).
func (s *Server) Serve() error {
	inbox := mailbox.Create(s.fabric, s.node)
	for {
		raw, err := inbox.Read()
		if err != nil {
			return err
		}
		source := int(raw[2])
		frame := DecodeFrame(raw)
		frame.Payload = frame.Payload[1:]
		s.handleFrame(source, frame)
	}
}

func (s *Server) handleFrame(source int, frame Frame) {
	if s.twoFrame[frame.Opcode] {
		s.mu.Lock()
		first, waiting := s.pending[source]
		if !waiting {
			s.pending[source] = frame
			s.mu.Unlock()
			return
		}
		if !frame.IsSecondOf(first) {
			delete(s.pending, source)
			s.mu.Unlock()
			s.reply(source, Response{Opcode: frame.Opcode, Payload: []byte{byte(ipcerr.InvalidArgument)}})
			return
		}
		delete(s.pending, source)
		s.mu.Unlock()

		req := Request{Source: source, Opcode: first.Opcode, Header: first.Payload, Data: frame.Payload}
		s.reply(source, s.dispatch.Handle(req))
		return
	}

	req := Request{Source: source, Opcode: frame.Opcode, Header: frame.Payload}
	s.reply(source, s.dispatch.Handle(req))
}

func (s *Server) reply(source int, resp Response) {
	out := mailbox.Open(s.fabric, source)
	frame := Frame{Seq: 0, Opcode: resp.Opcode, Payload: resp.Payload}
	_ = out.Write(frame.Encode(mailbox.MsgSize))
}

// Close unlinks the server's inbound mailbox, ending Serve's loop.
func (s *Server) Close() {
	s.fabric.MailboxUnlink(noc.Addr{Node: s.node, Tag: mailboxTagFor(s.node)})
}
