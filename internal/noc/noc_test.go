// Author: momentics <momentics@gmail.com>

package noc

import (
	"testing"
	"time"
)

func TestSyncWaitBlocksUntilMatch(t *testing.T) {
	f := NewFabric()
	addr := Addr{Node: 1, Tag: 5}
	f.SyncSetMatch(addr, 0b11)

	done := make(chan error, 1)
	go func() { done <- f.SyncWait(addr) }()

	f.SyncSignal(addr, 0b01)
	select {
	case err := <-done:
		t.Fatalf("wait returned early with err=%v before match satisfied", err)
	case <-time.After(20 * time.Millisecond):
	}

	f.SyncSignal(addr, 0b10)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("sync wait never woke after match satisfied")
	}
}

func TestSyncUnlinkReleasesWaiter(t *testing.T) {
	f := NewFabric()
	addr := Addr{Node: 2, Tag: 1}
	f.SyncSetMatch(addr, 1)

	done := make(chan error, 1)
	go func() { done <- f.SyncWait(addr) }()
	time.Sleep(10 * time.Millisecond)
	f.SyncUnlink(addr)

	select {
	case err := <-done:
		if err != ErrClosed {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("unlink never released waiter")
	}
}

func TestMailboxFIFOOrdering(t *testing.T) {
	f := NewFabric()
	addr := Addr{Node: 3, Tag: 64}

	var a, b [FrameSize]byte
	a[0], b[0] = 'a', 'b'
	if err := f.MailboxWrite(addr, a); err != nil {
		t.Fatal(err)
	}
	if err := f.MailboxWrite(addr, b); err != nil {
		t.Fatal(err)
	}

	got1, err := f.MailboxRead(addr)
	if err != nil || got1[0] != 'a' {
		t.Fatalf("expected 'a' first, got %v err=%v", got1[0], err)
	}
	got2, err := f.MailboxRead(addr)
	if err != nil || got2[0] != 'b' {
		t.Fatalf("expected 'b' second, got %v err=%v", got2[0], err)
	}
}

func TestMailboxReadBlocksUntilWrite(t *testing.T) {
	f := NewFabric()
	addr := Addr{Node: 4, Tag: 64}

	result := make(chan [FrameSize]byte, 1)
	go func() {
		frame, err := f.MailboxRead(addr)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		result <- frame
	}()

	time.Sleep(10 * time.Millisecond)
	var frame [FrameSize]byte
	frame[0] = 'z'
	if err := f.MailboxWrite(addr, frame); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-result:
		if got[0] != 'z' {
			t.Fatalf("expected 'z', got %v", got[0])
		}
	case <-time.After(time.Second):
		t.Fatal("mailbox read never unblocked")
	}
}

func TestMailboxNameDirectory(t *testing.T) {
	f := NewFabric()
	if err := f.CreateMailboxName("cool-name"); err != nil {
		t.Fatal(err)
	}
	if err := f.CreateMailboxName("cool-name"); err != ErrNameInUse {
		t.Fatalf("expected ErrNameInUse, got %v", err)
	}
	if err := f.OpenMailboxName("cool-name"); err != nil {
		t.Fatal(err)
	}
	if err := f.UnlinkMailboxName("cool-name"); err != nil {
		t.Fatal(err)
	}
	if err := f.OpenMailboxName("cool-name"); err != ErrNameNotFound {
		t.Fatalf("expected ErrNameNotFound after unlink, got %v", err)
	}
}

func TestPortalRendezvous(t *testing.T) {
	f := NewFabric()
	reader := Addr{Node: 0, Tag: 128}
	sender := Addr{Node: 1, Tag: 128}

	f.PortalAllow(reader, sender)
	buf := make([]byte, 16)
	token := f.PortalArmRead(reader, buf)

	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte(i)
	}

	go func() {
		if _, err := f.PortalWrite(reader, sender, payload); err != nil {
			t.Errorf("portal write failed: %v", err)
		}
	}()

	n, err := f.PortalWait(reader, token)
	if err != nil {
		t.Fatalf("portal wait failed: %v", err)
	}
	if n != 16 {
		t.Fatalf("expected 16 bytes, got %d", n)
	}
	for i := range buf {
		if buf[i] != payload[i] {
			t.Fatalf("byte %d mismatch: got %d want %d", i, buf[i], payload[i])
		}
	}
}

func TestPortalWriteRejectsUnallowedRemote(t *testing.T) {
	f := NewFabric()
	reader := Addr{Node: 0, Tag: 129}
	allowed := Addr{Node: 1, Tag: 129}
	stranger := Addr{Node: 2, Tag: 129}

	f.PortalAllow(reader, allowed)
	f.PortalArmRead(reader, make([]byte, 8))

	if _, err := f.PortalWrite(reader, stranger, make([]byte, 8)); err != ErrNotAllowed {
		t.Fatalf("expected ErrNotAllowed, got %v", err)
	}
}

func TestPortalWriteSizeMismatch(t *testing.T) {
	f := NewFabric()
	reader := Addr{Node: 0, Tag: 130}
	sender := Addr{Node: 1, Tag: 130}

	f.PortalAllow(reader, sender)
	f.PortalArmRead(reader, make([]byte, 8))

	if _, err := f.PortalWrite(reader, sender, make([]byte, 4)); err != ErrSizeMismatch {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestParsePath(t *testing.T) {
	p, err := ParsePath("/noc/mailbox/5:64")
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind != KindMailbox || p.NodeLo != 5 || p.NodeHi != 5 || p.Tag != 64 {
		t.Fatalf("unexpected parse result: %+v", p)
	}

	rng, err := ParsePath("/noc/sync/0-3:3")
	if err != nil {
		t.Fatal(err)
	}
	if rng.NodeLo != 0 || rng.NodeHi != 3 {
		t.Fatalf("unexpected range parse: %+v", rng)
	}

	if _, err := ParsePath("garbage"); err == nil {
		t.Fatal("expected error for malformed path")
	}
}
