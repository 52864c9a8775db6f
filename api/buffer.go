// File: api/buffer.go
// Package api defines the buffer and pooling contracts shared by the pool
// package and the SHM server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Buffer represents a reusable memory slice; the SHM server uses it for
// region storage. Node carries the owning node ID so a buffer returned from
// one node's pool is never pooled back into another node's free list.
type Buffer struct {
	Data  []byte
	Node  int
	Pool  Releaser
	Class int
}

// Releaser decouples Buffer from its owning pool implementation.
type Releaser interface {
	Put(Buffer)
}

// Bytes returns the full byte slice backing this Buffer.
func (b Buffer) Bytes() []byte { return b.Data }

// NodeID returns the node this buffer was allocated for.
func (b Buffer) NodeID() int { return b.Node }

// Copy returns a copy of the buffer data.
func (b Buffer) Copy() []byte {
	dup := make([]byte, len(b.Data))
	copy(dup, b.Data)
	return dup
}

// Slice returns a new Buffer view sharing the same underlying memory.
func (b Buffer) Slice(from, to int) Buffer {
	if from < 0 || to > len(b.Data) || from > to {
		return Buffer{Node: b.Node, Class: b.Class, Pool: b.Pool}
	}
	return Buffer{
		Data:  b.Data[from:to],
		Node:  b.Node,
		Pool:  b.Pool,
		Class: b.Class,
	}
}

// Release returns the buffer to its pool.
func (b Buffer) Release() {
	if b.Pool != nil {
		b.Pool.Put(b)
	}
}

// Capacity returns the capacity of the underlying slice.
func (b Buffer) Capacity() int {
	return cap(b.Data)
}

// BufferPool provides per-node buffer allocation.
type BufferPool interface {
	Get(size int, node int) Buffer
	Put(b Buffer)
	Stats() BufferPoolStats
}

// BufferPoolStats summarizes pool usage.
type BufferPoolStats struct {
	TotalAlloc int64
	TotalFree  int64
	InUse      int64
	PerNode    map[int]int64
}
