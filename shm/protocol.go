// File: shm/protocol.go
// Author: momentics <momentics@gmail.com>

package shm

import "encoding/binary"

// Opcode identifies an SHM server request.
type Opcode byte

const (
	OpCreate Opcode = iota + 1
	OpCreateExcl
	OpOpen
	OpClose
	OpUnlink
	OpTruncate
	OpMap
	OpUnmap
)

// TwoFrameOps is the set of opcodes whose request carries a name in a
// second frame (create/create-excl/open/unlink).
var TwoFrameOps = map[byte]bool{
	byte(OpCreate):     true,
	byte(OpCreateExcl): true,
	byte(OpOpen):       true,
	byte(OpUnlink):     true,
}

// encodeCreateHeader is the header-frame payload for create/create-excl:
// bytes 0-3 size, bytes 4-7 mode (access permission bits, spec.md §3's
// per-region `mode` field), byte 8 writable (0/1), byte 9 the name's length
// (the name itself rides in the paired data frame).
func encodeCreateHeader(size, mode int, writable bool, nameLen int) []byte {
	b := make([]byte, 10)
	binary.BigEndian.PutUint32(b[0:4], uint32(size))
	binary.BigEndian.PutUint32(b[4:8], uint32(mode))
	if writable {
		b[8] = 1
	}
	b[9] = byte(nameLen)
	return b
}

func decodeCreateHeader(b []byte) (size, mode int, writable bool, nameLen int) {
	size = int(binary.BigEndian.Uint32(b[0:4]))
	mode = int(binary.BigEndian.Uint32(b[4:8]))
	writable = b[8] != 0
	nameLen = int(b[9])
	return
}

// encodeNameHeader is the header-frame payload for open/unlink: byte 0 the
// name's length (the name itself rides in the paired data frame).
func encodeNameHeader(nameLen int) []byte {
	return []byte{byte(nameLen)}
}

func decodeNameHeader(b []byte) (nameLen int) {
	return int(b[0])
}

// encodeIDHeader builds the header-frame payload for close/truncate/unmap:
// bytes 0-3 region ID, bytes 4-7 an opcode-specific extra value
// (truncate's new size; unused otherwise).
func encodeIDHeader(id, extra int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint32(b[0:4], uint32(id))
	binary.BigEndian.PutUint32(b[4:8], uint32(extra))
	return b
}

func decodeIDHeader(b []byte) (id, extra int) {
	return int(binary.BigEndian.Uint32(b[0:4])), int(binary.BigEndian.Uint32(b[4:8]))
}

// encodeMapHeader is the request payload for map: bytes 0-3 region ID,
// bytes 4-7 offset, bytes 8-11 size, byte 12 writable (0/1), byte 13 shared
// (0/1) — mirrors shm_map's (shmid, size, writable, shared, off) parameters.
func encodeMapHeader(id, off, size int, writable, shared bool) []byte {
	b := make([]byte, 14)
	binary.BigEndian.PutUint32(b[0:4], uint32(id))
	binary.BigEndian.PutUint32(b[4:8], uint32(off))
	binary.BigEndian.PutUint32(b[8:12], uint32(size))
	if writable {
		b[12] = 1
	}
	if shared {
		b[13] = 1
	}
	return b
}

func decodeMapHeader(b []byte) (id, off, size int, writable, shared bool) {
	id = int(binary.BigEndian.Uint32(b[0:4]))
	off = int(binary.BigEndian.Uint32(b[4:8]))
	size = int(binary.BigEndian.Uint32(b[8:12]))
	writable = b[12] != 0
	shared = b[13] != 0
	return
}

// StatusOK / StatusErr mark a Response's outcome in payload byte 0.
const (
	StatusOK byte = iota
	StatusErr
)

// encodeResult packs a region ID and size into a response payload,
// prefixed by a status byte. On error, id carries the negated errno.
func encodeResult(ok bool, id, size int) []byte {
	b := make([]byte, 9)
	if ok {
		b[0] = StatusOK
	} else {
		b[0] = StatusErr
	}
	binary.BigEndian.PutUint32(b[1:5], uint32(id))
	binary.BigEndian.PutUint32(b[5:9], uint32(size))
	return b
}

func decodeResult(b []byte) (ok bool, id, size int) {
	ok = b[0] == StatusOK
	id = int(int32(binaryBigEndianUint32(b[1:5])))
	size = int(int32(binaryBigEndianUint32(b[5:9])))
	return
}

func binaryBigEndianUint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
