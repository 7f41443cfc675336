package fat16_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/FromCaio/fat16-fs-simulator/drivers/fat16"
)

// newFormattedFS returns a Loaded FS backed by an in-memory buffer, already
// formatted and loaded, ready for operations.
func newFormattedFS(t *testing.T) *fat16.FS {
	t.Helper()
	fs, _ := newFormattedFSWithBuffer(t)
	return fs
}

// newFormattedFSWithBuffer additionally returns the raw backing byte slice,
// for tests that assert on-disk byte layout directly.
func newFormattedFSWithBuffer(t *testing.T) (*fat16.FS, []byte) {
	t.Helper()
	buf := make([]byte, fat16.PartitionSize)
	stream := bytesextra.NewReadWriteSeeker(buf)

	fs := fat16.New(stream)
	require.NoError(t, fs.Format())
	require.NoError(t, fs.Load())
	return fs, buf
}
