// Author: momentics <momentics@gmail.com>

package sync

import (
	"testing"
	"time"

	"github.com/mfkiwl/multikernel/internal/noc"
)

func TestSyncSignalWakesMatchingReceiver(t *testing.T) {
	fabric := noc.NewFabric()
	recv := Create(fabric, 0, MatchAny)
	sender := Open(fabric, 0)

	done := make(chan error, 1)
	go func() { done <- recv.Wait() }()

	time.Sleep(10 * time.Millisecond)
	sender.Signal(1)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("receiver never woke")
	}
}

func TestSyncCloseUnblocksWaiter(t *testing.T) {
	fabric := noc.NewFabric()
	recv := Create(fabric, 1, MatchAny)

	done := make(chan error, 1)
	go func() { done <- recv.Wait() }()
	time.Sleep(10 * time.Millisecond)
	recv.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error after close")
		}
	case <-time.After(time.Second):
		t.Fatal("close never unblocked waiter")
	}
}
