// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor drives the declared-server bring-up fan-out for the spawner
// (spec.md §4.9): each declared server's main function is submitted as a
// task and runs on its own worker goroutine. Task backlog is an
// eapache/queue FIFO guarded by a mutex; the queue itself offers O(1)
// push/pop-front but is not safe for unsynchronized concurrent access, so
// the mutex around it preserves MPMC semantics for the worker pool.

package concurrency

import (
	"sync"

	"github.com/eapache/queue"
)

// TaskFunc is one unit of work submitted to the Executor.
type TaskFunc func()

// Executor runs submitted tasks on a fixed pool of worker goroutines.
type Executor struct {
	mu      sync.Mutex
	cond    *sync.Cond
	backlog *queue.Queue
	workers []*worker
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NumWorkers returns the configured worker count.
func (e *Executor) NumWorkers() int {
	return len(e.workers)
}

type worker struct {
	exec *Executor
}

// NewExecutor starts numWorkers goroutines draining a shared task backlog.
// numaNode is accepted for call-site symmetry with affinity-aware callers;
// pinning itself is the caller's responsibility via the affinity package.
func NewExecutor(numWorkers, numaNode int) *Executor {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	e := &Executor{
		backlog: queue.New(),
		stop:    make(chan struct{}),
	}
	e.cond = sync.NewCond(&e.mu)
	for i := 0; i < numWorkers; i++ {
		w := &worker{exec: e}
		e.workers = append(e.workers, w)
		e.wg.Add(1)
		go w.run()
	}
	return e
}

// Submit enqueues a task for execution by the next free worker.
func (e *Executor) Submit(task TaskFunc) error {
	select {
	case <-e.stop:
		return ErrExecutorClosed
	default:
	}
	e.mu.Lock()
	e.backlog.Add(task)
	e.mu.Unlock()
	e.cond.Signal()
	return nil
}

// Close signals all workers to exit, then waits for them. A worker exits
// after its current task, so tasks still queued in the backlog may not run.
func (e *Executor) Close() {
	select {
	case <-e.stop:
		return
	default:
		close(e.stop)
	}
	e.cond.Broadcast()
	e.wg.Wait()
}

func (w *worker) run() {
	defer w.exec.wg.Done()
	e := w.exec
	for {
		e.mu.Lock()
		for e.backlog.Length() == 0 {
			select {
			case <-e.stop:
				e.mu.Unlock()
				return
			default:
			}
			e.cond.Wait()
		}
		item := e.backlog.Remove()
		e.mu.Unlock()

		if task, ok := item.(TaskFunc); ok {
			task()
		}

		select {
		case <-e.stop:
			return
		default:
		}
	}
}
