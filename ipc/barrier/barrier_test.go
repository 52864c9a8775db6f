// Author: momentics <momentics@gmail.com>

package barrier

import (
	"sync"
	"testing"
	"time"

	"github.com/mfkiwl/multikernel/ipcerr"
	"github.com/mfkiwl/multikernel/topology"
)

func TestIOPairBarrierReleasesBothSides(t *testing.T) {
	pool := NewPool()
	b, err := pool.CreateIOPair()
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			results <- b.Wait()
		}()
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("both sides of the IO pair never released")
	}
	close(results)
	for err := range results {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestMasterWorkersBarrierRearmsForNextRound(t *testing.T) {
	pool := NewPool()
	const workers = 3
	b, err := pool.CreateMasterWorkers(workers)
	if err != nil {
		t.Fatal(err)
	}

	runRound := func() {
		var wg sync.WaitGroup
		wg.Add(workers + 1)
		for i := 0; i < workers+1; i++ {
			go func() {
				defer wg.Done()
				if err := b.Wait(); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("round never completed")
		}
	}

	runRound()
	runRound()
}

func TestPoolExhaustion(t *testing.T) {
	pool := NewPool()
	var barriers []*Barrier
	for i := 0; i < topology.NRBarrier; i++ {
		b, err := pool.CreateIOPair()
		if err != nil {
			t.Fatalf("unexpected exhaustion at %d: %v", i, err)
		}
		barriers = append(barriers, b)
	}

	if _, err := pool.CreateIOPair(); ipcerr.CodeOf(err) != ipcerr.Exhausted {
		t.Fatalf("expected Exhausted, got %v", err)
	}

	barriers[0].Close()
	if _, err := pool.CreateIOPair(); err != nil {
		t.Fatalf("expected slot reuse after close, got %v", err)
	}
}
