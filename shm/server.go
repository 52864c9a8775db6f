// File: shm/server.go
// Author: momentics <momentics@gmail.com>

package shm

import (
	"github.com/mfkiwl/multikernel/ipcerr"
	"github.com/mfkiwl/multikernel/server"
)

// Server dispatches SHM requests (server.Dispatcher) against one region
// Table and one per-node OpenTable.
type Server struct {
	regions *Table
	opens   *OpenTable
}

// NewServer creates an SHM dispatcher with fresh region and open tables.
func NewServer() *Server {
	return &Server{regions: NewTable(), opens: NewOpenTable()}
}

// Handle implements server.Dispatcher.
func (s *Server) Handle(req server.Request) server.Response {
	switch Opcode(req.Opcode) {
	case OpCreate, OpCreateExcl:
		return s.handleCreate(req, Opcode(req.Opcode) == OpCreateExcl)
	case OpOpen:
		return s.handleOpen(req)
	case OpUnlink:
		return s.handleUnlink(req)
	case OpClose:
		return s.handleClose(req)
	case OpTruncate:
		return s.handleTruncate(req)
	case OpMap:
		return s.handleMap(req)
	case OpUnmap:
		return s.handleUnmap(req)
	default:
		return server.Response{Opcode: req.Opcode, Payload: encodeResult(false, int(ipcerr.InvalidArgument.ToErrno()), 0)}
	}
}

func (s *Server) handleCreate(req server.Request, excl bool) server.Response {
	size, mode, writable, nameLen := decodeCreateHeader(req.Header)
	name := string(req.Data[:nameLen])

	var region *Region
	var err error
	if excl {
		region, err = s.regions.CreateExcl(name, size, mode, req.Source)
	} else {
		region, err = s.regions.Create(name, size, mode, req.Source)
	}
	if err != nil {
		return errResponse(req.Opcode, err)
	}
	if err := s.opens.Add(req.Source, region.ID, writable); err != nil {
		return errResponse(req.Opcode, err)
	}
	return server.Response{Opcode: req.Opcode, Payload: encodeResult(true, region.ID, region.Size)}
}

func (s *Server) handleOpen(req server.Request) server.Response {
	nameLen := decodeNameHeader(req.Header)
	name := string(req.Data[:nameLen])

	region, err := s.regions.Open(name)
	if err != nil {
		return errResponse(req.Opcode, err)
	}
	// shm_open always grants write access on the caller's handle,
	// independent of how the region was originally created.
	if err := s.opens.Add(req.Source, region.ID, true); err != nil {
		s.regions.Release(region.ID)
		return errResponse(req.Opcode, err)
	}
	return server.Response{Opcode: req.Opcode, Payload: encodeResult(true, region.ID, region.Size)}
}

func (s *Server) handleUnlink(req server.Request) server.Response {
	nameLen := decodeNameHeader(req.Header)
	name := string(req.Data[:nameLen])
	id, err := s.regions.Unlink(name, req.Source)
	if err != nil {
		return errResponse(req.Opcode, err)
	}
	s.opens.Remove(req.Source, id)
	return server.Response{Opcode: req.Opcode, Payload: encodeResult(true, 0, 0)}
}

func (s *Server) handleClose(req server.Request) server.Response {
	id, _ := decodeIDHeader(req.Header)
	if !s.opens.Has(req.Source, id) {
		return errResponse(req.Opcode, ipcerr.ErrPermissionDenied)
	}
	s.opens.Remove(req.Source, id)
	s.regions.Release(id)
	return server.Response{Opcode: req.Opcode, Payload: encodeResult(true, id, 0)}
}

func (s *Server) handleTruncate(req server.Request) server.Response {
	id, newSize := decodeIDHeader(req.Header)
	if !s.opens.Has(req.Source, id) {
		return errResponse(req.Opcode, ipcerr.ErrPermissionDenied)
	}
	if !s.opens.IsWritable(req.Source, id) {
		return errResponse(req.Opcode, ipcerr.ErrInvalidArgument)
	}
	if s.opens.IsMapped(req.Source, id) {
		return errResponse(req.Opcode, ipcerr.ErrBusy)
	}
	if err := s.regions.Truncate(id, newSize); err != nil {
		return errResponse(req.Opcode, err)
	}
	return server.Response{Opcode: req.Opcode, Payload: encodeResult(true, id, newSize)}
}

func (s *Server) handleMap(req server.Request) server.Response {
	id, off, size, writable, shared := decodeMapHeader(req.Header)
	if !s.opens.Has(req.Source, id) {
		return errResponse(req.Opcode, ipcerr.ErrPermissionDenied)
	}
	region, ok := s.regions.ByID(id)
	if !ok {
		return errResponse(req.Opcode, ipcerr.ErrNotFound)
	}
	if size > region.Size {
		return errResponse(req.Opcode, ipcerr.ErrNoMemory)
	}
	if off > region.Size || off+size > region.Size {
		return errResponse(req.Opcode, ipcerr.ErrRange)
	}
	if writable && !s.opens.IsWritable(req.Source, id) {
		return errResponse(req.Opcode, ipcerr.ErrPermissionDenied)
	}
	s.opens.Map(req.Source, id, shared)
	mapblk := region.Base + off
	return server.Response{Opcode: req.Opcode, Payload: encodeResult(true, mapblk, region.Size)}
}

func (s *Server) handleUnmap(req server.Request) server.Response {
	id, _ := decodeIDHeader(req.Header)
	if !s.opens.Has(req.Source, id) {
		return errResponse(req.Opcode, ipcerr.ErrPermissionDenied)
	}
	if !s.opens.IsMapped(req.Source, id) {
		return errResponse(req.Opcode, ipcerr.ErrInvalidArgument)
	}
	s.opens.Unmap(req.Source, id)
	return server.Response{Opcode: req.Opcode, Payload: encodeResult(true, id, 0)}
}

func errResponse(opcode byte, err error) server.Response {
	errno := int(ipcerr.CodeOf(err).ToErrno())
	// An explicit errno in the error's context (EPERM for a non-owner
	// unlink) overrides the generic per-Code value.
	if e, ok := err.(*ipcerr.Error); ok {
		if v, ok := e.Context["errno"].(int32); ok {
			errno = -int(v)
		}
	}
	return server.Response{Opcode: opcode, Payload: encodeResult(false, errno, 0)}
}
