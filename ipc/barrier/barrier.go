// File: ipc/barrier/barrier.go
// Package barrier implements the barrier synchronization primitive from
// spec.md §4.5: a pool of NR_BARRIER reusable handles, each joined by a
// fixed set of participants in one of two topologies — an IO-cluster pair
// (2 participants) or a master-and-workers group (1 master, N workers).
// barrier_wait blocks every participant until the last one arrives, then
// releases the whole group for that round and rearms for the next.
//
// Unlike the sync connector's single-reader, consume-on-match rendezvous,
// a barrier must wake every participant on the same round without one of
// them silently "consuming" the arrival signal. Rather than force that
// shape onto the one-shot noc sync register, this uses a dedicated
// generational counting barrier — the same sync.Cond-driven
// wait-until-condition shape internal/concurrency's Executor already uses
// for its worker wakeups, applied here to barrier rounds instead of task
// backlog draining.
// Author: momentics <momentics@gmail.com>

package barrier

import (
	"sync"

	"github.com/mfkiwl/multikernel/ipcerr"
	"github.com/mfkiwl/multikernel/topology"
)

// Barrier is one allocated handle from the pool: n participants, all of
// whom must call Wait before any of them returns from it.
type Barrier struct {
	pool *Pool
	slot int

	mu         sync.Mutex
	cond       *sync.Cond
	n          int
	arrived    int
	generation int
	closed     bool
}

// Pool is the process-wide NR_BARRIER-sized set of barrier handles.
type Pool struct {
	mu   sync.Mutex
	used [topology.NRBarrier]bool
}

// NewPool creates an empty barrier pool.
func NewPool() *Pool { return &Pool{} }

// CreateIOPair allocates a barrier for the 2-participant IO-cluster-pair
// topology (barrier_create with the IO<->IO profile).
func (p *Pool) CreateIOPair() (*Barrier, error) {
	return p.create(2)
}

// CreateMasterWorkers allocates a barrier for a 1-master/numWorkers-worker
// group (barrier_create with the master-and-workers profile).
func (p *Pool) CreateMasterWorkers(numWorkers int) (*Barrier, error) {
	return p.create(1 + numWorkers)
}

func (p *Pool) create(n int) (*Barrier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.used {
		if !p.used[i] {
			p.used[i] = true
			b := &Barrier{pool: p, slot: i, n: n}
			b.cond = sync.NewCond(&b.mu)
			return b, nil
		}
	}
	return nil, ipcerr.New(ipcerr.Exhausted, "barrier: pool exhausted").WithContext("errno", ipcerr.ENOENTBarrier)
}

// Wait blocks until every one of the barrier's n participants has called
// Wait for the current round, then releases all of them together
// (barrier_wait).
func (b *Barrier) Wait() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ipcerr.ErrInvalidArgument
	}
	gen := b.generation
	b.arrived++
	if b.arrived == b.n {
		b.arrived = 0
		b.generation++
		b.cond.Broadcast()
		return nil
	}
	for gen == b.generation && !b.closed {
		b.cond.Wait()
	}
	return nil
}

// Close releases the barrier's slot back to the pool (barrier_close), and
// wakes any participant still waiting on a round that will never complete.
func (b *Barrier) Close() {
	b.mu.Lock()
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()

	b.pool.mu.Lock()
	b.pool.used[b.slot] = false
	b.pool.mu.Unlock()
}
