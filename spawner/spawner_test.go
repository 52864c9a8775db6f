// Author: momentics <momentics@gmail.com>

package spawner

import (
	"testing"
	"time"

	"github.com/mfkiwl/multikernel/internal/noc"
	"github.com/mfkiwl/multikernel/ipc/barrier"
)

func TestSpawnerBringUpAndTeardown(t *testing.T) {
	fabric := noc.NewFabric()
	decls := []ServerDecl{
		{Name: "names", Kind: KindNameService, Node: 20},
		{Name: "shm", Kind: KindSHM, Node: 21},
	}
	cfg := NewConfig(decls)

	pool := barrier.NewPool()
	b, err := pool.CreateIOPair()
	if err != nil {
		t.Fatal(err)
	}

	sp := New(fabric, cfg, Spawner0, 99)

	done := make(chan error, 1)
	go func() { done <- sp.Run(pool, b) }()

	// Stand in for spawner1's matching Run call.
	go func() { _ = b.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("spawner never completed bring-up")
	}

	if snapshot := cfg.Store.GetSnapshot(); snapshot["names"] != 20 {
		t.Fatalf("expected names node 20 in config snapshot, got %v", snapshot["names"])
	}
	if metrics := cfg.Metrics.GetSnapshot(); metrics["servers_acked"] != len(decls) {
		t.Fatalf("expected servers_acked=%d, got %v", len(decls), metrics["servers_acked"])
	}

	sp.Teardown()
}
