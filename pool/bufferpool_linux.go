//go:build linux

// Package pool
// Author: momentics <momentics@gmail.com>
//
// Linux-specific per-node buffer pool implementation.

package pool

import (
	"github.com/mfkiwl/multikernel/api"
)

// linuxBufferPool is a sync.Pool-backed allocator for one node's buffers. Buffers released through api.Buffer.Release come back
// here and are not shared across nodes.
type linuxBufferPool struct {
	base *baseBufferPool
}

func (bp *linuxBufferPool) Get(size int, node int) api.Buffer {
	return bp.base.get(size, node)
}

func (bp *linuxBufferPool) Put(b api.Buffer) {
	bp.base.put(b)
}

func (bp *linuxBufferPool) Stats() api.BufferPoolStats {
	return bp.base.stats()
}

// newBufferPool (Linux) creates a buffer pool for the specified node.
func newBufferPool(node int) api.BufferPool {
	bp := &linuxBufferPool{base: newBaseBufferPool(node)}
	bp.base.owner = bp
	return bp
}
