// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package errors

// ErrCode is type for multiple reconizable errors.
type ErrCode int

// error codes
const (
	// if error is unknown
	Unknown ErrCode = 0

	// if the item not found in the space
	NotFound ErrCode = 1

	// if the item already present in the space
	AlreadyExists ErrCode = 2

	// if the argument is not valid
	InvalidArgument ErrCode = 3

	// if a dependency (connection, auth) is unreachable; fatal at the
	// manager, aborts the job before any collection starts
	Unavailable ErrCode = 4

	// if the caller's context was canceled; never treated as a fatal
	// replication error on its own
	Canceled ErrCode = 5

	// if a single document failed to decode against its declared shape
	DecodeError ErrCode = 6

	// if a write against a deployment (bulk insert, drop, index or view
	// creation) failed
	WriteFailed ErrCode = 7

	// if a collection (or the whole job) must be considered failed
	Fatal ErrCode = 8
)
