package errors_test

import (
	stderrors "errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fserrors "github.com/FromCaio/fat16-fs-simulator/errors"
)

func TestDriverError_Is(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		target  error
		matches bool
	}{
		{
			name:    "sentinel matches itself",
			err:     fserrors.ErrNotFound,
			target:  fserrors.ErrNotFound,
			matches: true,
		},
		{
			name:    "constructed error matches its sentinel",
			err:     fserrors.NewWithMessage(fserrors.ErrNotFound.ErrnoCode, "/docs/missing"),
			target:  fserrors.ErrNotFound,
			matches: true,
		},
		{
			name:    "wrapped error matches its sentinel",
			err:     fserrors.Wrap(fserrors.ErrIO.ErrnoCode, stderrors.New("short read")),
			target:  fserrors.ErrIO,
			matches: true,
		},
		{
			name:    "different errnos do not match",
			err:     fserrors.NewWithMessage(fserrors.ErrNotFound.ErrnoCode, "/docs/missing"),
			target:  fserrors.ErrNoSpace,
			matches: false,
		},
		{
			name:    "directory-full and no-space are distinct kinds",
			err:     fserrors.ErrDirectoryFull,
			target:  fserrors.ErrNoSpace,
			matches: false,
		},
		{
			name:    "no-space does not match directory-full either",
			err:     fserrors.NewWithMessage(fserrors.ErrNoSpace.ErrnoCode, "data area exhausted"),
			target:  fserrors.ErrDirectoryFull,
			matches: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.matches, stderrors.Is(test.err, test.target))
		})
	}
}

func TestDriverError_UnwrapToErrno(t *testing.T) {
	err := fserrors.NewWithMessage(syscall.ENOENT, "/gone")
	assert.True(t, stderrors.Is(err, syscall.ENOENT))
}

func TestDriverError_WrapChainsToCause(t *testing.T) {
	cause := stderrors.New("backing store exploded")
	err := fserrors.Wrap(syscall.EIO, cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), cause.Error())
}

func TestDriverError_MessageIncludesErrnoText(t *testing.T) {
	err := fserrors.NewWithMessage(syscall.ENOENT, "no entry for /x")
	require.Contains(t, err.Error(), syscall.ENOENT.Error())
	require.Contains(t, err.Error(), "no entry for /x")
}
