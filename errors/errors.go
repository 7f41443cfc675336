// Package errors provides the error types used throughout the FAT16
// simulator: a DriverError wrapping a syscall.Errno plus an optional
// human-readable message, and a table of sentinel errors for conditions
// the standard errno set doesn't name precisely enough.
package errors

import (
	"fmt"
	"syscall"
)

// DriverError is a wrapper around a system errno code with a customizable
// message. It implements the `error` interface, unwraps to the wrapped
// cause (for Wrap) or else to its errno, and matches any sentinel with the
// same errno through Is, so callers can use errors.Is.
type DriverError struct {
	ErrnoCode syscall.Errno
	message   string
	wrapped   error
}

func (e *DriverError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.ErrnoCode.Error()
}

func (e *DriverError) Unwrap() error {
	if e.wrapped != nil {
		return e.wrapped
	}
	return e.ErrnoCode
}

// Is reports whether target is a DriverError backed by the same errno, so
// errors.Is can match any constructed error against the package sentinels
// without requiring pointer identity.
func (e *DriverError) Is(target error) bool {
	other, ok := target.(*DriverError)
	return ok && other.ErrnoCode == e.ErrnoCode
}

// New creates a DriverError with a default message derived from the errno.
func New(errnoCode syscall.Errno) *DriverError {
	return &DriverError{ErrnoCode: errnoCode, message: errnoCode.Error()}
}

// NewWithMessage creates a DriverError from an errno with a custom message.
func NewWithMessage(errnoCode syscall.Errno, message string) *DriverError {
	return &DriverError{
		ErrnoCode: errnoCode,
		message:   fmt.Sprintf("%s: %s", errnoCode.Error(), message),
	}
}

// Wrap creates a DriverError from an errno that also unwraps to `err`.
func Wrap(errnoCode syscall.Errno, err error) *DriverError {
	return &DriverError{
		ErrnoCode: errnoCode,
		message:   fmt.Sprintf("%s: %s", errnoCode.Error(), err.Error()),
		wrapped:   err,
	}
}
