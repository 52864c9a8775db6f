// File: pool/base_bufferpool.go
// Package pool
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-agnostic sync.Pool-backed allocator shared by the Linux and
// Windows BufferPool implementations. Kept separate from the platform files
// so the sizing/stats policy has one definition; one instance exists per
// node, and shm region storage is what flows through it.

package pool

import (
	"sync"
	"sync/atomic"

	"github.com/mfkiwl/multikernel/api"
)

const defaultBufSize = 64 * 1024

// baseBufferPool implements the allocate/recycle logic reused by every platform.
type baseBufferPool struct {
	node  int
	raw   sync.Pool
	owner api.Releaser

	alloc int64
	free  int64
	inUse int64
}

func newBaseBufferPool(node int) *baseBufferPool {
	return &baseBufferPool{node: node}
}

func (p *baseBufferPool) get(size int, node int) api.Buffer {
	if size <= 0 {
		size = defaultBufSize
	}
	var data []byte
	if v := p.raw.Get(); v != nil {
		data = v.([]byte)
	}
	if cap(data) < size {
		data = make([]byte, size)
		atomic.AddInt64(&p.alloc, 1)
	} else {
		data = data[:size]
	}
	atomic.AddInt64(&p.inUse, 1)
	return api.Buffer{Data: data, Node: node, Pool: p.owner}
}

func (p *baseBufferPool) put(b api.Buffer) {
	if b.Data == nil {
		return
	}
	p.raw.Put(b.Data[:cap(b.Data)])
	atomic.AddInt64(&p.free, 1)
	atomic.AddInt64(&p.inUse, -1)
}

func (p *baseBufferPool) stats() api.BufferPoolStats {
	return api.BufferPoolStats{
		TotalAlloc: atomic.LoadInt64(&p.alloc),
		TotalFree:  atomic.LoadInt64(&p.free),
		InUse:      atomic.LoadInt64(&p.inUse),
		PerNode:    map[int]int64{p.node: atomic.LoadInt64(&p.inUse)},
	}
}
