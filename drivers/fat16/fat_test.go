package fat16_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/FromCaio/fat16-fs-simulator/drivers/common"
	"github.com/FromCaio/fat16-fs-simulator/drivers/fat16"
)

func TestFAT_SetUpdatesAllocatorBitmap(t *testing.T) {
	fat := fat16.NewFAT()
	assert.False(t, fat.Allocator().Get(fat16.FirstDataCluster))

	fat.Set(fat16.FirstDataCluster, fat16.EntryEndOfChain)
	assert.True(t, fat.Allocator().Get(fat16.FirstDataCluster))

	fat.Set(fat16.FirstDataCluster, fat16.EntryFree)
	assert.False(t, fat.Allocator().Get(fat16.FirstDataCluster))
}

func TestFAT_PersistAndLoadRoundTrip(t *testing.T) {
	buf := make([]byte, fat16.PartitionSize)
	stream := bytesextra.NewReadWriteSeeker(buf)
	device := common.NewBlockDevice(stream, fat16.ClusterSize, fat16.TotalClusters)

	fat := fat16.NewFAT()
	fat.Set(fat16.BootCluster, fat16.EntryBoot)
	fat.Set(20, 21)
	fat.Set(21, fat16.EntryEndOfChain)

	require.NoError(t, fat.Persist(device))

	loaded := fat16.NewFAT()
	require.NoError(t, loaded.Load(device))

	assert.Equal(t, fat16.EntryBoot, loaded.Get(fat16.BootCluster))
	assert.Equal(t, uint16(21), loaded.Get(20))
	assert.Equal(t, fat16.EntryEndOfChain, loaded.Get(21))
	assert.True(t, loaded.Allocator().Get(20))
	assert.True(t, loaded.Allocator().Get(21))
	assert.False(t, loaded.Allocator().Get(22))
}

func TestFAT_ChainLength(t *testing.T) {
	fat := fat16.NewFAT()
	fat.Set(10, 11)
	fat.Set(11, 12)
	fat.Set(12, fat16.EntryEndOfChain)

	length, err := fat.ChainLength(10)
	require.NoError(t, err)
	assert.Equal(t, 3, length)
}
