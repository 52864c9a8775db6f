// File: shm/opentable.go
// Author: momentics <momentics@gmail.com>

package shm

import (
	"sync"

	"github.com/mfkiwl/multikernel/ipcerr"
)

// OpenMax is the per-node cap on simultaneously open region handles
// (SHM_OPEN_MAX).
const OpenMax = 8

// openEntry is one node's per-open state on a region, mirroring the
// oregions[].flags bitmask (SHM_WRITE/SHM_SHARED/SHM_MAPPED) in
// original_source/src/servers/shm/shm-server.c.
type openEntry struct {
	Writable bool
	Shared   bool
	Mapped   bool
}

// OpenTable tracks which region IDs each node currently has open, plus the
// per-open flags map/unmap/truncate consult, enforcing OpenMax per node.
type OpenTable struct {
	mu   sync.Mutex
	open map[int]map[int]*openEntry // node -> region ID -> open state
}

// NewOpenTable creates an empty per-node open-handle table.
func NewOpenTable() *OpenTable {
	return &OpenTable{open: make(map[int]map[int]*openEntry)}
}

// Add records that node has opened region id with the given write
// permission, failing with Exhausted if node is already at OpenMax.
func (o *OpenTable) Add(node, id int, writable bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	set, ok := o.open[node]
	if !ok {
		set = make(map[int]*openEntry)
		o.open[node] = set
	}
	if _, exists := set[id]; exists {
		return nil
	}
	if len(set) >= OpenMax {
		return ipcerr.ErrExhausted
	}
	set[id] = &openEntry{Writable: writable}
	return nil
}

// Remove drops node's handle on region id.
func (o *OpenTable) Remove(node, id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if set, ok := o.open[node]; ok {
		delete(set, id)
	}
}

// Has reports whether node currently has id open.
func (o *OpenTable) Has(node, id int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.entry(node, id) != nil
}

// IsWritable reports whether node opened id for writing.
func (o *OpenTable) IsWritable(node, id int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	e := o.entry(node, id)
	return e != nil && e.Writable
}

// IsMapped reports whether node currently has id mapped.
func (o *OpenTable) IsMapped(node, id int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	e := o.entry(node, id)
	return e != nil && e.Mapped
}

// Map records that node has mapped id, optionally as a shared mapping
// (shm_map setting the SHM_MAPPED and, if shared, SHM_SHARED flags).
func (o *OpenTable) Map(node, id int, shared bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e := o.entry(node, id); e != nil {
		e.Mapped = true
		e.Shared = shared
	}
}

// Unmap clears node's mapped state for id (shm_unmap clearing SHM_MAPPED).
func (o *OpenTable) Unmap(node, id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e := o.entry(node, id); e != nil {
		e.Mapped = false
		e.Shared = false
	}
}

func (o *OpenTable) entry(node, id int) *openEntry {
	set, ok := o.open[node]
	if !ok {
		return nil
	}
	return set[id]
}
