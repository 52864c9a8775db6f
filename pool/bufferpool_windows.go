//go:build windows

// Package pool
// Author: momentics <momentics@gmail.com>
//
// Windows-specific per-node buffer pool implementation.

package pool

import (
	"github.com/mfkiwl/multikernel/api"
)

// windowsBufferPool mirrors linuxBufferPool; Windows has no NUMA-affinity
// allocator available through stdlib, so it shares the generic base pool.
type windowsBufferPool struct {
	base *baseBufferPool
}

func (bp *windowsBufferPool) Get(size int, node int) api.Buffer {
	return bp.base.get(size, node)
}

func (bp *windowsBufferPool) Put(b api.Buffer) {
	bp.base.put(b)
}

func (bp *windowsBufferPool) Stats() api.BufferPoolStats {
	return bp.base.stats()
}

// newBufferPool (Windows) creates a buffer pool for the specified node.
func newBufferPool(node int) api.BufferPool {
	bp := &windowsBufferPool{base: newBaseBufferPool(node)}
	bp.base.owner = bp
	return bp
}
