// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package errors

import "fmt"

// GetErrCode returns the error code if the error is
// associated to recognizable error types, Unknown otherwise
func GetErrCode(err error) ErrCode {
	val, ok := err.(*Error)
	if ok {
		return val.code
	}
	return Unknown
}

// base error structure
type Error struct {
	code  ErrCode
	msg   string
	cause error
}

// Error() prints out the error message string
func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

// Unwrap exposes the wrapped cause, if any, so that callers can use
// errors.Is / errors.As from the standard library against driver errors
func (e *Error) Unwrap() error {
	return e.cause
}

// Creates a new error msg without error code
func New(msg string) error {
	return &Error{
		msg: msg,
	}
}

// Wrap wraps the error msg with a recognized error code
func Wrap(code ErrCode, msg string) error {
	return &Error{
		code: code,
		msg:  msg,
	}
}

// Wrapf wraps a formatted error msg with a recognized error code
func Wrapf(code ErrCode, format string, args ...interface{}) error {
	return &Error{
		code: code,
		msg:  fmt.Sprintf(format, args...),
	}
}

// Cause wraps an existing error with a recognized error code, preserving
// the original error as the unwrap target
func Cause(code ErrCode, msg string, cause error) error {
	return &Error{
		code:  code,
		msg:   msg,
		cause: cause,
	}
}

// IsNotFound returns true if err
// item isn't found in the space
func IsNotFound(err error) bool {
	return GetErrCode(err) == NotFound
}

// IsAlreadyExists returns true if err
// item already exists in the space
func IsAlreadyExists(err error) bool {
	return GetErrCode(err) == AlreadyExists
}

// IsInvalidArgument returns true if err
// item is invalid argument
func IsInvalidArgument(err error) bool {
	return GetErrCode(err) == InvalidArgument
}

// IsUnavailable returns true if err represents an unreachable
// dependency (connection / authentication failure)
func IsUnavailable(err error) bool {
	return GetErrCode(err) == Unavailable
}

// IsCanceled returns true if err represents a caller-initiated
// cancellation rather than a genuine failure
func IsCanceled(err error) bool {
	return GetErrCode(err) == Canceled
}

// IsDecodeError returns true if err represents a single document that
// failed to decode against its declared shape
func IsDecodeError(err error) bool {
	return GetErrCode(err) == DecodeError
}

// IsWriteFailed returns true if err represents a failed write against a
// deployment (bulk insert, drop, index or view creation)
func IsWriteFailed(err error) bool {
	return GetErrCode(err) == WriteFailed
}

// IsFatal returns true if err should be treated as fatal to the
// collection (or job) it is attached to
func IsFatal(err error) bool {
	return GetErrCode(err) == Fatal
}
