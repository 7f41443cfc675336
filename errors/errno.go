package errors

import "syscall"

// Sentinel errors for every failure class the file system reports: path
// errors, lookup errors, capacity errors, semantic errors, state errors,
// and I/O errors. Each is backed by the closest POSIX errno
// so callers that only care about the errno class can still use it, while
// callers that want the precise condition can compare with errors.Is.
var (
	// ErrInvalidPath covers an empty path, a path that isn't absolute, or a
	// path missing a required separator (e.g. unlinking "/").
	ErrInvalidPath = New(syscall.EINVAL)

	// ErrNotFound is returned when a path component doesn't resolve to an
	// existing directory entry.
	ErrNotFound = New(syscall.ENOENT)

	// ErrNotADirectory is returned by mkdir/create when the parent of the
	// new entry resolves to a regular file instead of a directory.
	ErrNotADirectory = New(syscall.ENOTDIR)

	// ErrNotAFile is returned when an operation that requires a regular
	// file (read, write, append) is given a directory instead.
	ErrNotAFile = New(syscall.EISDIR)

	// ErrDirectoryFull is returned when all 32 slots in a directory cluster
	// are occupied. Backed by EMLINK (what POSIX mkdir reports when a
	// directory cannot take another entry) rather than ENOSPC, so it stays
	// distinguishable from ErrNoSpace through errors.Is.
	ErrDirectoryFull = New(syscall.EMLINK)

	// ErrNoSpace is returned when no free data cluster remains.
	ErrNoSpace = New(syscall.ENOSPC)

	// ErrDirectoryNotEmpty is returned by unlink when a directory still has
	// occupied slots.
	ErrDirectoryNotEmpty = New(syscall.ENOTEMPTY)

	// ErrNotLoaded is returned by every operation other than Format/Load
	// when the file system isn't in the Loaded state.
	ErrNotLoaded = New(syscall.EBADF)

	// ErrCorrupt is returned when an on-disk structure violates an
	// invariant the format never produces (reserved sentinel reused,
	// chain visits a system cluster, etc).
	ErrCorrupt = New(syscall.EUCLEAN)

	// ErrIO wraps unexpected errors from the underlying backing store.
	ErrIO = New(syscall.EIO)
)
