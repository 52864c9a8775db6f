// File: spawner/spawner.go
// Package spawner implements server bring-up from spec.md §4.9: the
// spawner starts every declared server as its own goroutine via
// internal/concurrency's Executor, waits for one acknowledgement frame
// from each one over a dedicated ack mailbox, then barrier-syncs with its
// spawner1 counterpart before handing off to main2. Teardown runs the
// reverse of bring-up order.
// Author: momentics <momentics@gmail.com>

package spawner

import (
	"github.com/mfkiwl/multikernel/internal/concurrency"
	"github.com/mfkiwl/multikernel/internal/noc"
	"github.com/mfkiwl/multikernel/ipc/barrier"
	"github.com/mfkiwl/multikernel/ipc/mailbox"
	"github.com/mfkiwl/multikernel/ipcerr"
	"github.com/mfkiwl/multikernel/nameservice"
	"github.com/mfkiwl/multikernel/server"
	"github.com/mfkiwl/multikernel/shm"
)

// Role distinguishes the two bring-up processes spec.md §4.9 pairs via a
// barrier at the end of server start-up.
type Role int

const (
	Spawner0 Role = iota
	Spawner1
)

// serverHandle is whatever a started server's implementation returns so
// Teardown can close it; every implementation this package knows about
// exposes a Close method.
type serverHandle interface {
	Close()
}

// Spawner brings up Config's declared servers on fabric, then rendezvouses
// with its peer spawner over an IO-cluster-pair barrier.
type Spawner struct {
	fabric   *noc.Fabric
	cfg      *Config
	role     Role
	ackNode  int
	executor *concurrency.Executor

	handles []serverHandle // reverse teardown order
}

// New creates a spawner for role, listening for server ack frames at
// ackNode (spec.md §4.9's "N_SERVERS blocking mailbox_read").
func New(fabric *noc.Fabric, cfg *Config, role Role, ackNode int) *Spawner {
	return &Spawner{
		fabric:   fabric,
		cfg:      cfg,
		role:     role,
		ackNode:  ackNode,
		executor: concurrency.NewExecutor(len(cfg.Decls), 0),
	}
}

// ackFrame is the one-byte payload a started server writes to ackNode
// right before it enters its Serve loop.
var ackFrame = []byte{1}

// Run starts every declared server, blocks until all of them have
// acknowledged readiness, then barrier-syncs with pool's IO-pair partner
// before returning (main2's handoff point). pool is shared by both
// spawner0 and spawner1's calls to Run so they rendezvous on the same
// barrier instance.
func (s *Spawner) Run(pool *barrier.Pool, peerBarrier *barrier.Barrier) error {
	ackbox := mailbox.Create(s.fabric, s.ackNode)

	for _, decl := range s.cfg.Decls {
		decl := decl
		s.executor.Submit(func() { s.startServer(decl) })
	}

	for i := 0; i < len(s.cfg.Decls); i++ {
		if _, err := ackbox.Read(); err != nil {
			return err
		}
	}
	s.cfg.Metrics.Set("servers_acked", len(s.cfg.Decls))

	return peerBarrier.Wait()
}

func (s *Spawner) startServer(decl ServerDecl) {
	switch decl.Kind {
	case KindNameService:
		srv := nameservice.NewServer(s.fabric, decl.Node)
		s.handles = append(s.handles, srv)
		go func() {
			ack := mailbox.Open(s.fabric, s.ackNode)
			_ = ack.Write(ackFrame)
			_ = srv.Serve()
		}()
	case KindSHM:
		dispatcher := shm.NewServer()
		srv := server.New(s.fabric, decl.Node, dispatcher, shm.TwoFrameOps)
		s.handles = append(s.handles, srv)
		go func() {
			ack := mailbox.Open(s.fabric, s.ackNode)
			_ = ack.Write(ackFrame)
			_ = srv.Serve()
		}()
	}
}

// Teardown closes every started server in reverse bring-up order and stops
// the executor.
func (s *Spawner) Teardown() {
	for i := len(s.handles) - 1; i >= 0; i-- {
		s.handles[i].Close()
	}
	s.handles = nil
	s.executor.Close()
}

// ErrUnknownKind is returned by callers that fail to recognize a
// ServerDecl's Kind before wiring it into a generic server.Server.
var ErrUnknownKind = ipcerr.New(ipcerr.InvalidArgument, "spawner: unknown server kind")
