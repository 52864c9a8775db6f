// File: internal/noc/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package noc

import "github.com/mfkiwl/multikernel/ipcerr"

var (
	// ErrClosed is returned by any operation on an endpoint whose Close/Unlink
	// has already run.
	ErrClosed = ipcerr.New(ipcerr.InvalidArgument, "noc: endpoint closed")

	// ErrNotAllowed is returned when a portal_write arrives from a remote the
	// receiver has not allowed (spec.md §4.4 "single-remote allowlist").
	ErrNotAllowed = ipcerr.New(ipcerr.PermissionDenied, "noc: remote not allowed on this portal")

	// ErrSizeMismatch is returned when a portal_write's payload length differs
	// from the reader's armed buffer, or when no read is armed.
	ErrSizeMismatch = ipcerr.New(ipcerr.InvalidArgument, "noc: portal transfer size mismatch")

	// ErrNoRoom is returned by a non-blocking mailbox write (MailboxTryWrite)
	// against a full fixed-depth FIFO; the blocking write waits for room.
	ErrNoRoom = ipcerr.New(ipcerr.Busy, "noc: mailbox queue full")

	// ErrBadFrameSize is returned when a mailbox frame is not exactly
	// topology's fixed message size.
	ErrBadFrameSize = ipcerr.New(ipcerr.InvalidArgument, "noc: mailbox frame size mismatch")

	// ErrNameInUse is returned by the name-addressed mailbox directory when a
	// name is already bound (spec.md §8 scenario 1).
	ErrNameInUse = ipcerr.New(ipcerr.AlreadyExists, "noc: mailbox name already bound")

	// ErrNameNotFound is returned when opening an unbound mailbox name.
	ErrNameNotFound = ipcerr.New(ipcerr.NotFound, "noc: mailbox name not bound")
)
