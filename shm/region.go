// File: shm/region.go
// Package shm implements the shared-memory region server case study from
// spec.md §4.8: a global region table backed by a fixed RMEM_SIZE byte
// arena, a per-node open-handle table bounded by SHM_OPEN_MAX, and
// reference-counted lifetime (the region's backing memory is released only
// once every opener has closed and the owner has unlinked it).
// Author: momentics <momentics@gmail.com>

package shm

import (
	"sync"

	"github.com/mfkiwl/multikernel/api"
	"github.com/mfkiwl/multikernel/ipcerr"
	"github.com/mfkiwl/multikernel/pool"
)

// RmemSize is the total backing-store capacity shared by every region
// (RMEM_SIZE).
const RmemSize = 64 * 1024 * 1024

// Region is one named shared-memory segment. Its backing memory comes from
// the owning node's buffer pool rather than a bare make([]byte, ...), so a
// region's storage is drawn from (and returned to) the same per-node
// allocator a portal transfer targeting that node would use.
//
// RemovePending marks a region whose owner has unlinked it but whose
// refcount has not yet reached zero (spec.md §3/§4.8, I6): the name stays
// bound only so a fresh open can observe EAGAIN instead of ENOENT, matching
// shm_unlink/shm_open's shm_set_remove/shm_is_remove handshake in
// original_source/src/servers/shm/shm-server.c.
type Region struct {
	ID            int
	Name          string
	Mode          int
	Base          int
	Size          int
	Owner         int
	RefCount      int
	RemovePending bool
	buf           api.Buffer
}

// Table is the global region registry plus the RMEM arena's bump allocator.
// A real RMEM allocator would reclaim freed ranges; this model only ever
// grows the high-water mark and reclaims on full unlink+close, matching
// the spec's Non-goal of not modeling general memory fragmentation.
type Table struct {
	mu       sync.Mutex
	byName   map[string]*Region
	byID     map[int]*Region
	nextID   int
	rmemUsed int
	pools    *pool.BufferPoolManager
}

// NewTable creates an empty region table backed by a fresh per-node buffer
// pool manager.
func NewTable() *Table {
	return &Table{
		byName: make(map[string]*Region),
		byID:   make(map[int]*Region),
		pools:  pool.NewBufferPoolManager(),
	}
}

// Create returns the named region, creating it with the given size, mode
// and owner if it does not already exist, otherwise opening it
// (shm_create's non-exclusive path, which delegates to shm_open when the
// name already exists).
func (t *Table) Create(name string, size, mode, owner int) (*Region, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.byName[name]; ok {
		return t.openLocked(r)
	}
	return t.allocate(name, size, mode, owner)
}

// CreateExcl creates name, failing with AlreadyExists if it is already
// bound — even to a region pending removal (shm_create_exclusive's O_EXCL
// path: it checks shm_get(name) regardless of remove-pending state).
func (t *Table) CreateExcl(name string, size, mode, owner int) (*Region, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byName[name]; ok {
		return nil, ipcerr.ErrAlreadyExists
	}
	return t.allocate(name, size, mode, owner)
}

func (t *Table) allocate(name string, size, mode, owner int) (*Region, error) {
	if t.rmemUsed+size > RmemSize {
		return nil, ipcerr.ErrNoMemory
	}
	t.nextID++
	buf := t.pools.GetPool(owner).Get(size, owner)
	r := &Region{
		ID:       t.nextID,
		Name:     name,
		Mode:     mode,
		Base:     t.rmemUsed,
		Size:     size,
		Owner:    owner,
		RefCount: 1, // the creator's own open, mirrored in the caller's OpenTable entry
		buf:      buf,
	}
	t.byName[name] = r
	t.byID[r.ID] = r
	t.rmemUsed += size
	return r, nil
}

// openLocked bumps r's refcount (shm_open without O_CREAT), unless it is
// pending removal, in which case a fresh open must fail EAGAIN rather than
// succeed or report ENOENT (spec.md §4.8/I6, scenario 6).
func (t *Table) openLocked(r *Region) (*Region, error) {
	if r.RemovePending {
		return nil, ipcerr.ErrUnavailable
	}
	r.RefCount++
	return r, nil
}

// Open looks up an existing region by name and bumps its refcount
// (shm_open without O_CREAT).
func (t *Table) Open(name string) (*Region, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.byName[name]
	if !ok {
		return nil, ipcerr.ErrNotFound
	}
	return t.openLocked(r)
}

// Release drops one reference; once it hits zero and the region has been
// unlinked, its backing memory is freed (shm_close's refcount discipline).
func (t *Table) Release(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.byID[id]
	if !ok {
		return
	}
	if r.RefCount > 0 {
		r.RefCount--
	}
	t.reclaimIfOrphaned(r)
}

// Unlink marks name pending removal and releases the caller's own
// reference to it (shm_unlink: shm_set_remove followed by shm_close on the
// caller's handle). Only the owning node may unlink (EPERM otherwise). The
// name stays bound — and any open will fail EAGAIN — until the last
// reference drops and the region is reclaimed. Returns the region's ID so
// the caller can also drop its own OpenTable entry.
func (t *Table) Unlink(name string, caller int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.byName[name]
	if !ok {
		return 0, ipcerr.ErrNotFound
	}
	if r.Owner != caller {
		return 0, ipcerr.New(ipcerr.PermissionDenied, "shm: unlink by non-owner").WithContext("errno", ipcerr.EPERM)
	}
	r.RemovePending = true
	if r.RefCount > 0 {
		r.RefCount--
	}
	t.reclaimIfOrphaned(r)
	return r.ID, nil
}

func (t *Table) reclaimIfOrphaned(r *Region) {
	if r.RefCount == 0 && r.RemovePending {
		delete(t.byName, r.Name)
		delete(t.byID, r.ID)
		t.rmemUsed -= r.Size
		r.buf.Release()
	}
}

// Truncate resizes an open region's backing buffer in place, drawing the
// replacement from the same node's pool the region was created on.
func (t *Table) Truncate(id, newSize int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.byID[id]
	if !ok {
		return ipcerr.ErrNotFound
	}
	delta := newSize - r.Size
	if t.rmemUsed+delta > RmemSize {
		return ipcerr.ErrNoMemory
	}
	newBuf := t.pools.GetPool(r.Owner).Get(newSize, r.Owner)
	copy(newBuf.Bytes(), r.buf.Bytes())
	r.buf.Release()
	r.buf = newBuf
	t.rmemUsed += delta
	r.Size = newSize
	return nil
}

// ByID looks up a region by its allocated ID (used by Map/Unmap).
func (t *Table) ByID(id int) (*Region, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.byID[id]
	return r, ok
}
