// File: internal/noc/aio.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CompletionEngine backs the aio_ctor/aio_wait/aio_rearm family from
// spec.md §6 (Arm, Wait, Rearm); it has no trigger-count setting. A portal
// reader arms a token, the writer side (PortalWrite in portal_endpoint.go)
// completes it once the matching portal_write lands, and the reader blocks
// in Wait until that happens.
// The authoritative wake-up is a per-token Go channel; the platform-specific
// signaller additionally pokes a real OS completion primitive (eventfd on
// Linux) the way a hardware interrupt would, mirroring the teacher's
// reactor/epoll_reactor.go register/poll/callback dispatch shape.

package noc

import "sync"

type completion struct {
	n   int
	err error
}

// signaller is the OS-backed wake primitive behind one CompletionEngine.
type signaller interface {
	signal()
	drain()
	close()
}

// CompletionEngine dispatches async portal completions to waiting readers.
type CompletionEngine struct {
	mu      sync.Mutex
	pending map[uint64]completion
	waitCh  map[uint64]chan struct{}
	nextTok uint64
	sig     signaller
}

// NewCompletionEngine creates a completion engine with the best available
// platform signaller.
func NewCompletionEngine() *CompletionEngine {
	return &CompletionEngine{
		pending: make(map[uint64]completion),
		waitCh:  make(map[uint64]chan struct{}),
		sig:     newSignaller(),
	}
}

// Arm registers a new pending operation (aio_ctor) and returns its token.
func (e *CompletionEngine) Arm() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextTok++
	tok := e.nextTok
	e.waitCh[tok] = make(chan struct{}, 1)
	return tok
}

// Complete marks token's operation done (aio's completion callback).
func (e *CompletionEngine) Complete(token uint64, n int, err error) {
	e.mu.Lock()
	e.pending[token] = completion{n: n, err: err}
	ch := e.waitCh[token]
	e.mu.Unlock()

	e.sig.signal()
	if ch != nil {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Wait blocks until token's operation completes (aio_wait), returning the
// byte count or error the completion carried.
func (e *CompletionEngine) Wait(token uint64) (int, error) {
	for {
		e.mu.Lock()
		c, ok := e.pending[token]
		if ok {
			delete(e.pending, token)
			delete(e.waitCh, token)
		}
		ch := e.waitCh[token]
		e.mu.Unlock()

		if ok {
			e.sig.drain()
			return c.n, c.err
		}
		<-ch
	}
}

// Rearm re-registers token for another round of use (aio_rearm): it simply
// arms a fresh token since each portal transfer is one-shot in this model.
func (e *CompletionEngine) Rearm() uint64 { return e.Arm() }

// Close releases the underlying OS signaller.
func (e *CompletionEngine) Close() { e.sig.close() }
