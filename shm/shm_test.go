// Author: momentics <momentics@gmail.com>

package shm

import (
	"testing"

	"github.com/mfkiwl/multikernel/ipcerr"
	"github.com/mfkiwl/multikernel/server"
)

func createReq(opcode Opcode, source, size int, name string) server.Request {
	return server.Request{
		Source: source,
		Opcode: byte(opcode),
		Header: encodeCreateHeader(size, 0644, true, len(name)),
		Data:   []byte(name),
	}
}

func openReq(source int, name string) server.Request {
	return server.Request{
		Source: source,
		Opcode: byte(OpOpen),
		Header: encodeNameHeader(len(name)),
		Data:   []byte(name),
	}
}

func unlinkReq(source int, name string) server.Request {
	return server.Request{
		Source: source,
		Opcode: byte(OpUnlink),
		Header: encodeNameHeader(len(name)),
		Data:   []byte(name),
	}
}

func TestCreateOpenClose(t *testing.T) {
	s := NewServer()

	resp := s.Handle(createReq(OpCreate, 1, 4096, "region-a"))
	ok, id, size := decodeResult(resp.Payload)
	if !ok || size != 4096 {
		t.Fatalf("create failed: ok=%v size=%d", ok, size)
	}

	openResp := s.Handle(openReq(2, "region-a"))
	ok2, id2, size2 := decodeResult(openResp.Payload)
	if !ok2 || id2 != id || size2 != 4096 {
		t.Fatalf("open mismatch: ok=%v id=%d size=%d", ok2, id2, size2)
	}

	closeResp := s.Handle(server.Request{Source: 2, Opcode: byte(OpClose), Header: encodeIDHeader(id2, 0)})
	if ok3, _, _ := decodeResult(closeResp.Payload); !ok3 {
		t.Fatal("close failed")
	}
}

func TestCreateExclDuplicateFails(t *testing.T) {
	s := NewServer()
	s.Handle(createReq(OpCreateExcl, 1, 1024, "dup"))
	resp := s.Handle(createReq(OpCreateExcl, 2, 1024, "dup"))
	if ok, _, _ := decodeResult(resp.Payload); ok {
		t.Fatal("expected failure on duplicate exclusive create")
	}
}

func TestOpenMaxEnforced(t *testing.T) {
	s := NewServer()
	for i := 0; i < OpenMax; i++ {
		name := string(rune('a' + i))
		resp := s.Handle(createReq(OpCreate, 1, 64, name))
		if ok, _, _ := decodeResult(resp.Payload); !ok {
			t.Fatalf("unexpected failure at %d", i)
		}
	}
	resp := s.Handle(createReq(OpCreate, 1, 64, "overflow"))
	if ok, _, _ := decodeResult(resp.Payload); ok {
		t.Fatal("expected OpenMax to be enforced")
	}
}

func TestUnlinkByNonOwnerFails(t *testing.T) {
	s := NewServer()
	resp := s.Handle(createReq(OpCreate, 1, 64, "owned"))
	_, id, _ := decodeResult(resp.Payload)
	_ = id

	unlinkResp := s.Handle(unlinkReq(2, "owned"))
	if ok, _, _ := decodeResult(unlinkResp.Payload); ok {
		t.Fatal("expected permission failure for non-owner unlink")
	}

	ownerUnlink := s.Handle(unlinkReq(1, "owned"))
	if ok, _, _ := decodeResult(ownerUnlink.Payload); !ok {
		t.Fatal("owner unlink should succeed")
	}
}

// TestUnlinkSetsRemovePending covers spec.md §3/§4.8/I6 and scenario 6: once
// the owner unlinks a still-referenced region, a fresh open must fail EAGAIN
// (Unavailable) rather than ENOENT, and the region is only reclaimed once
// every opener has closed it.
func TestUnlinkSetsRemovePending(t *testing.T) {
	s := NewServer()
	createResp := s.Handle(createReq(OpCreate, 1, 64, "pending"))
	_, id, _ := decodeResult(createResp.Payload)

	openResp := s.Handle(openReq(2, "pending"))
	if ok, id2, _ := decodeResult(openResp.Payload); !ok || id2 != id {
		t.Fatalf("second opener's open failed: ok=%v id=%d", ok, id2)
	}

	unlinkResp := s.Handle(unlinkReq(1, "pending"))
	if ok, _, _ := decodeResult(unlinkResp.Payload); !ok {
		t.Fatal("owner unlink should succeed")
	}

	if _, err := s.regions.Open("pending"); ipcerr.CodeOf(err) != ipcerr.Unavailable {
		t.Fatalf("expected Unavailable (EAGAIN) opening a removal-pending name, got %v", err)
	}

	closeResp := s.Handle(server.Request{Source: 2, Opcode: byte(OpClose), Header: encodeIDHeader(id, 0)})
	if ok, _, _ := decodeResult(closeResp.Payload); !ok {
		t.Fatal("second opener's close failed")
	}
	if _, ok := s.regions.ByID(id); ok {
		t.Fatal("region should be reclaimed once the last reference closes")
	}
}

func TestTruncateRejectsNonOpener(t *testing.T) {
	s := NewServer()
	resp := s.Handle(createReq(OpCreate, 1, 1024, "grow"))
	_, id, _ := decodeResult(resp.Payload)

	truncResp := s.Handle(server.Request{Source: 2, Opcode: byte(OpTruncate), Header: encodeIDHeader(id, 2048)})
	if ok, _, _ := decodeResult(truncResp.Payload); ok {
		t.Fatal("expected failure truncating a region the caller never opened")
	}
}

func TestMapUnmap(t *testing.T) {
	s := NewServer()
	resp := s.Handle(createReq(OpCreate, 1, 1024, "mapped"))
	_, id, _ := decodeResult(resp.Payload)

	mapResp := s.Handle(server.Request{Source: 1, Opcode: byte(OpMap), Header: encodeMapHeader(id, 0, 512, true, false)})
	ok, mapblk, _ := decodeResult(mapResp.Payload)
	if !ok {
		t.Fatal("map failed")
	}
	region, _ := s.regions.ByID(id)
	if mapblk != region.Base {
		t.Fatalf("expected mapblk == region.Base (%d), got %d", region.Base, mapblk)
	}

	unmapResp := s.Handle(server.Request{Source: 1, Opcode: byte(OpUnmap), Header: encodeIDHeader(id, 0)})
	if ok, _, _ := decodeResult(unmapResp.Payload); !ok {
		t.Fatal("unmap failed")
	}

	// unmapping an already-unmapped region fails EINVAL (shm_unmap).
	secondUnmap := s.Handle(server.Request{Source: 1, Opcode: byte(OpUnmap), Header: encodeIDHeader(id, 0)})
	if ok, _, _ := decodeResult(secondUnmap.Payload); ok {
		t.Fatal("expected failure unmapping a region that is not currently mapped")
	}
}

// TestMapOutOfRangeFails covers shm_map's ENXIO checks: offset or
// offset+size beyond the region's size must fail, not silently clamp.
func TestMapOutOfRangeFails(t *testing.T) {
	s := NewServer()
	resp := s.Handle(createReq(OpCreate, 1, 256, "small"))
	_, id, _ := decodeResult(resp.Payload)

	badOffset := s.Handle(server.Request{Source: 1, Opcode: byte(OpMap), Header: encodeMapHeader(id, 512, 16, false, false)})
	if ok, _, _ := decodeResult(badOffset.Payload); ok {
		t.Fatal("expected failure mapping past the region's end")
	}

	badSpan := s.Handle(server.Request{Source: 1, Opcode: byte(OpMap), Header: encodeMapHeader(id, 200, 100, false, false)})
	if ok, _, _ := decodeResult(badSpan.Payload); ok {
		t.Fatal("expected failure when offset+size exceeds the region's size")
	}
}

// TestMapWritableOverReadOnlyFails covers shm_map's EACCES check: a caller
// that opened the region read-only (handleOpen always grants write, so we
// go through handleCreate with writable=false) cannot request a writable
// mapping.
func TestMapWritableOverReadOnlyFails(t *testing.T) {
	s := NewServer()
	resp := s.Handle(server.Request{
		Source: 1,
		Opcode: byte(OpCreate),
		Header: encodeCreateHeader(1024, 0644, false, len("readonly")),
		Data:   []byte("readonly"),
	})
	_, id, _ := decodeResult(resp.Payload)

	mapResp := s.Handle(server.Request{Source: 1, Opcode: byte(OpMap), Header: encodeMapHeader(id, 0, 16, true, false)})
	if ok, _, _ := decodeResult(mapResp.Payload); ok {
		t.Fatal("expected failure requesting a writable map over a read-only open")
	}
}

// TestTruncateWhileMappedFails covers I8: truncating a region the caller
// currently has mapped must fail EBUSY.
func TestTruncateWhileMappedFails(t *testing.T) {
	s := NewServer()
	resp := s.Handle(createReq(OpCreate, 1, 1024, "busy"))
	_, id, _ := decodeResult(resp.Payload)

	mapResp := s.Handle(server.Request{Source: 1, Opcode: byte(OpMap), Header: encodeMapHeader(id, 0, 512, true, false)})
	if ok, _, _ := decodeResult(mapResp.Payload); !ok {
		t.Fatal("map failed")
	}

	truncResp := s.Handle(server.Request{Source: 1, Opcode: byte(OpTruncate), Header: encodeIDHeader(id, 2048)})
	if ok, _, _ := decodeResult(truncResp.Payload); ok {
		t.Fatal("expected EBUSY truncating a mapped region")
	}

	s.Handle(server.Request{Source: 1, Opcode: byte(OpUnmap), Header: encodeIDHeader(id, 0)})
	truncResp2 := s.Handle(server.Request{Source: 1, Opcode: byte(OpTruncate), Header: encodeIDHeader(id, 2048)})
	if ok, _, size := decodeResult(truncResp2.Payload); !ok || size != 2048 {
		t.Fatalf("truncate should succeed once unmapped: ok=%v size=%d", ok, size)
	}
}
