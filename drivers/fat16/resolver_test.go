package fat16_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FromCaio/fat16-fs-simulator/drivers/fat16"
)

func TestResolve_Root(t *testing.T) {
	fs := newFormattedFS(t)

	result, err := fat16.Resolve(fs, "/")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, uint16(fat16.RootDirCluster), result.Entry.FirstCluster)
	assert.True(t, result.Entry.IsDir())
}

func TestResolve_NestedPath(t *testing.T) {
	fs := newFormattedFS(t)
	require.NoError(t, fs.Mkdir("/docs"))
	require.NoError(t, fs.Create("/docs/hello.txt"))

	result, err := fat16.Resolve(fs, "/docs/hello.txt")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, "hello.txt", result.Entry.Name)
	assert.False(t, result.Entry.IsDir())
}

func TestResolve_MissingComponentReportsParent(t *testing.T) {
	fs := newFormattedFS(t)
	require.NoError(t, fs.Mkdir("/docs"))

	result, err := fat16.Resolve(fs, "/docs/missing.txt")
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Equal(t, "missing.txt", result.Name)
}

// TestResolve_IntermediateFileTraversedAsDirectory covers walking through
// a regular file mid-path: its data cluster (all zero for a fresh empty
// file) decodes as 32 empty directory slots, so the walk reports the next
// component as missing rather than failing hard.
func TestResolve_IntermediateFileTraversedAsDirectory(t *testing.T) {
	fs := newFormattedFS(t)
	require.NoError(t, fs.Create("/f"))

	result, err := fat16.Resolve(fs, "/f/child")
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Equal(t, "child", result.Name)
}
