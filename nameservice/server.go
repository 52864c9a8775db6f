// File: nameservice/server.go
// Author: momentics <momentics@gmail.com>

package nameservice

import (
	"sync"

	"github.com/mfkiwl/multikernel/internal/noc"
	"github.com/mfkiwl/multikernel/ipc/mailbox"
	"github.com/mfkiwl/multikernel/topology"
)

func mailboxTagFor(node int) int { return topology.NoctagFor(topology.PurposeMailbox, node) }

// ErrnoNotFound, ErrnoAlreadyExists, ErrnoInvalid, ErrnoPermissionDenied are
// the negative POSIX codes a Reply.Errno carries, matching ipcerr's table
// without importing it into the wire codec directly.
const (
	ErrnoNotFound         int32 = -2  // ENOENT
	ErrnoAlreadyExists    int32 = -17 // EEXIST
	ErrnoInvalid          int32 = -22 // EINVAL
	ErrnoPermissionDenied int32 = -13 // EACCES
)

// entry is one bound name: either a plain link(node, name) binding, or a
// register(name, port) binding that also carries a port and is therefore
// eligible for address_lookup. Both kinds share the same name keyspace —
// spec.md §4.6 requires register to fail EEXIST against a name already
// bound by link and vice versa — so link and register read/write the same
// table instead of two separate ones.
type entry struct {
	Node       int32
	Port       int32
	Registered bool
	Owner      int32 // caller (ReplyNode) that created this entry; only it may remove it
}

// Server is the single well-known name/address registry.
type Server struct {
	fabric *noc.Fabric
	node   int

	mu     sync.Mutex
	byName map[string]*entry
}

// NewServer starts no goroutine by itself; call Serve to run its loop.
func NewServer(fabric *noc.Fabric, node int) *Server {
	return &Server{
		fabric: fabric,
		node:   node,
		byName: make(map[string]*entry),
	}
}

func validName(name string) bool {
	return len(name) > 0 && len(name) <= NameMax
}

// Serve runs the request/reply loop until the server's mailbox is unlinked.
// Grounded on the generic resource-server demultiplex-then-reply shape
// (spec.md §4.7), specialized here to the name service's own tiny
// dispatch table instead of a pluggable handler registry.
func (s *Server) Serve() error {
	inbox := mailbox.Create(s.fabric, s.node)
	for {
		frame, err := inbox.Read()
		if err != nil {
			return err
		}
		req := DecodeRequest(frame)
		reply := s.handle(req)
		outbox := mailbox.Open(s.fabric, int(req.ReplyNode))
		_ = outbox.Write(reply.Encode())
	}
}

func (s *Server) handle(req Request) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Op != OpLink && req.Op != OpUnlink && req.Op != OpLookup &&
		req.Op != OpRegister && req.Op != OpUnregister && req.Op != OpAddressLookup {
		return Reply{Status: StatusFailure, Errno: ErrnoInvalid}
	}
	if !validName(req.Name) {
		return Reply{Status: StatusFailure, Errno: ErrnoInvalid}
	}

	switch req.Op {
	case OpLink:
		if _, exists := s.byName[req.Name]; exists {
			return Reply{Status: StatusFailure, Errno: ErrnoAlreadyExists}
		}
		s.byName[req.Name] = &entry{Node: req.Node, Owner: req.ReplyNode}
		return Reply{Status: StatusSuccess, Node: req.Node}

	case OpUnlink:
		e, exists := s.byName[req.Name]
		if !exists {
			return Reply{Status: StatusFailure, Errno: ErrnoNotFound}
		}
		if e.Owner != req.ReplyNode {
			return Reply{Status: StatusFailure, Errno: ErrnoPermissionDenied}
		}
		delete(s.byName, req.Name)
		return Reply{Status: StatusSuccess, Node: e.Node}

	case OpLookup:
		// Succeeds for both linked and registered names (spec.md §4.6).
		e, exists := s.byName[req.Name]
		if !exists {
			return Reply{Status: StatusFailure, Errno: ErrnoNotFound}
		}
		return Reply{Status: StatusSuccess, Node: e.Node}

	case OpRegister:
		// Binds the caller's own node and a port; fails EEXIST if the name
		// is already bound by either link or a prior register.
		if _, exists := s.byName[req.Name]; exists {
			return Reply{Status: StatusFailure, Errno: ErrnoAlreadyExists}
		}
		s.byName[req.Name] = &entry{
			Node:       req.ReplyNode,
			Port:       req.Port,
			Registered: true,
			Owner:      req.ReplyNode,
		}
		return Reply{Status: StatusSuccess, Node: req.ReplyNode, Port: req.Port}

	case OpUnregister:
		e, exists := s.byName[req.Name]
		if !exists || !e.Registered {
			return Reply{Status: StatusFailure, Errno: ErrnoNotFound}
		}
		if e.Owner != req.ReplyNode {
			return Reply{Status: StatusFailure, Errno: ErrnoPermissionDenied}
		}
		delete(s.byName, req.Name)
		return Reply{Status: StatusSuccess, Node: e.Node}

	case OpAddressLookup:
		// Succeeds only for register'd (not merely link'd) names.
		e, exists := s.byName[req.Name]
		if !exists || !e.Registered {
			return Reply{Status: StatusFailure, Errno: ErrnoNotFound}
		}
		return Reply{Status: StatusSuccess, Node: e.Node, Port: e.Port}

	default:
		return Reply{Status: StatusFailure, Errno: ErrnoInvalid}
	}
}

// Close unlinks the server's inbound mailbox, ending Serve's loop with an
// ErrClosed from the next Read.
func (s *Server) Close() {
	s.fabric.MailboxUnlink(noc.Addr{Node: s.node, Tag: mailboxTagFor(s.node)})
}
