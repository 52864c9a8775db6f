// File: pool/bufferpool.go
// Author: momentics <momentics@gmail.com>
//
// Per-node BufferPoolManager with transparent backend selection. Its one
// caller is shm.Table, which draws each region's backing storage from the
// pool of the region's owner node; portal payloads and mailbox frames do
// not go through it. Platform-specific allocators live in
// bufferpool_linux.go and bufferpool_windows.go.

package pool

import (
	"sync"

	"github.com/mfkiwl/multikernel/api"
)

// BufferPoolManager provides one BufferPool per simulated node.
type BufferPoolManager struct {
	mu    sync.RWMutex
	pools map[int]api.BufferPool // Key: node ID (-1 for an unaffiliated pool)
}

// NewBufferPoolManager creates and initializes a new manager.
func NewBufferPoolManager() *BufferPoolManager {
	return &BufferPoolManager{
		pools: make(map[int]api.BufferPool),
	}
}

// GetPool obtains or creates the BufferPool for a given node ID.
func (m *BufferPoolManager) GetPool(node int) api.BufferPool {
	m.mu.RLock()
	pool, ok := m.pools[node]
	m.mu.RUnlock()
	if ok {
		return pool
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if pool, ok := m.pools[node]; ok {
		return pool
	}
	pool = newBufferPool(node)
	m.pools[node] = pool
	return pool
}
