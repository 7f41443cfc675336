package fat16_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FromCaio/fat16-fs-simulator/drivers/fat16"
)

// TestScenario1_MkdirThenLs covers: mkdir /docs -> ls / lists a single
// directory entry named docs with size 0 and kind directory.
func TestScenario1_MkdirThenLs(t *testing.T) {
	fs := newFormattedFS(t)
	require.NoError(t, fs.Mkdir("/docs"))

	var out bytes.Buffer
	require.NoError(t, fs.Ls("/", &out))

	listing := out.String()
	assert.Contains(t, listing, "[D]")
	assert.Contains(t, listing, "docs")
	assert.Contains(t, listing, "       0 docs")
}

// TestScenario2_CreateWriteRead covers: create /docs/hello.txt, write
// "Hello, world!", read emits it back plus a trailing newline, size 13.
func TestScenario2_CreateWriteRead(t *testing.T) {
	fs := newFormattedFS(t)
	require.NoError(t, fs.Mkdir("/docs"))
	require.NoError(t, fs.Create("/docs/hello.txt"))
	require.NoError(t, fs.Write("/docs/hello.txt", []byte("Hello, world!")))

	var out bytes.Buffer
	require.NoError(t, fs.Read("/docs/hello.txt", &out))
	assert.Equal(t, "Hello, world!\n", out.String())

	result, err := fat16.Resolve(fs, "/docs/hello.txt")
	require.NoError(t, err)
	assert.EqualValues(t, 13, result.Entry.Size)
}

// TestScenario3_WriteThenAppendAcrossClusterBoundary covers: write 1024 A's
// to /a, append a single B, read emits 1024 A's followed by B; the file
// occupies exactly two clusters whose second entry is end-of-chain.
func TestScenario3_WriteThenAppendAcrossClusterBoundary(t *testing.T) {
	fs := newFormattedFS(t)
	require.NoError(t, fs.Create("/a"))

	require.NoError(t, fs.Write("/a", bytes.Repeat([]byte("A"), fat16.ClusterSize)))
	require.NoError(t, fs.Append("/a", []byte("B")))

	var out bytes.Buffer
	require.NoError(t, fs.Read("/a", &out))
	assert.Equal(t, strings.Repeat("A", fat16.ClusterSize)+"B\n", out.String())

	result, err := fat16.Resolve(fs, "/a")
	require.NoError(t, err)
	assert.EqualValues(t, fat16.ClusterSize+1, result.Entry.Size)

	length, err := fs.ChainLength("/a")
	require.NoError(t, err)
	assert.Equal(t, 2, length)

	second := fs.FATEntry(result.Entry.FirstCluster)
	assert.Equal(t, fat16.EntryEndOfChain, fs.FATEntry(second))
}

// TestScenario4_CreateThenUnlink covers: create /f, unlink /f, ls / is
// empty, and the cluster that was allocated is marked free again.
func TestScenario4_CreateThenUnlink(t *testing.T) {
	fs := newFormattedFS(t)
	require.NoError(t, fs.Create("/f"))
	before, err := fs.Statfs()
	require.NoError(t, err)

	created, err := fat16.Resolve(fs, "/f")
	require.NoError(t, err)

	require.NoError(t, fs.Unlink("/f"))
	assert.Equal(t, fat16.EntryFree, fs.FATEntry(created.Entry.FirstCluster))

	var out bytes.Buffer
	require.NoError(t, fs.Ls("/", &out))
	assert.NotContains(t, out.String(), "f")

	after, err := fs.Statfs()
	require.NoError(t, err)
	assert.Equal(t, before.FreeClusters+1, after.FreeClusters)
}

// TestScenario5_DirectoryFullRejectsMkdir covers: filling a directory's 32
// slots, then a further mkdir fails with directory-full and the directory
// retains exactly 32 occupied slots.
func TestScenario5_DirectoryFullRejectsMkdir(t *testing.T) {
	fs := newFormattedFS(t)
	for i := 0; i < 32; i++ {
		require.NoError(t, fs.Create("/f"+pad(i)))
	}

	err := fs.Mkdir("/x")
	assert.Error(t, err)

	var out bytes.Buffer
	require.NoError(t, fs.Ls("/", &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// one header line + 32 entry lines.
	assert.Equal(t, 33, len(lines))
}

// TestScenario6_WriteRollsBackOnNoSpace covers: filling the partition, then
// a write that would exceed capacity leaves the target's size unchanged
// and does not leak clusters.
func TestScenario6_WriteRollsBackOnNoSpace(t *testing.T) {
	fs := newFormattedFS(t)
	require.NoError(t, fs.Create("/big"))
	require.NoError(t, fs.Create("/victim"))
	require.NoError(t, fs.Write("/victim", []byte("original")))

	before, err := fs.Statfs()
	require.NoError(t, err)

	// Consume almost all remaining space with /big, leaving too little for
	// the oversized write to /victim below to succeed.
	// Write frees /big's one pre-allocated cluster before allocating, so a
	// payload of FreeClusters-1 clusters leaves exactly 2 free afterwards.
	require.NoError(t, fs.Write("/big", make([]byte, int(before.FreeClusters-1)*fat16.ClusterSize)))

	afterBig, err := fs.Statfs()
	require.NoError(t, err)
	require.True(t, afterBig.FreeClusters < 3)

	victimChainBefore, err := fs.ChainLength("/victim")
	require.NoError(t, err)

	err = fs.Write("/victim", make([]byte, int(afterBig.FreeClusters+5)*fat16.ClusterSize))
	assert.Error(t, err)

	result, err := fat16.Resolve(fs, "/victim")
	require.NoError(t, err)
	assert.EqualValues(t, len("original"), result.Entry.Size)

	// The failing write's own allocation attempt must leak nothing: the
	// only clusters freed are the ones /victim's previous content already
	// occupied, not any partially built replacement chain.
	afterFailedWrite, err := fs.Statfs()
	require.NoError(t, err)
	assert.Equal(t, afterBig.FreeClusters+uint(victimChainBefore), afterFailedWrite.FreeClusters)
}
