package fat16

import (
	"encoding/binary"
	"fmt"

	"github.com/FromCaio/fat16-fs-simulator/drivers/common"
)

// entriesPerFATCluster is how many 2-byte FAT entries fit in one cluster.
const entriesPerFATCluster = ClusterSize / 2 // 512

// FAT is the in-memory mirror of the on-disk File Allocation Table: 4096
// 16-bit cluster pointers, plus a bitmap cache (drivers/common.Allocator)
// of which clusters are in use, kept in lockstep by Set (the only
// mutator) so the two representations can never drift apart.
type FAT struct {
	entries   [TotalClusters]uint16
	allocator common.Allocator
}

// NewFAT returns a FAT mirror with every cluster marked free. Callers
// normally get a populated FAT from Load or Format rather than this.
func NewFAT() *FAT {
	return &FAT{allocator: common.NewAllocator(TotalClusters)}
}

// Get returns the raw FAT entry for `cluster`.
func (f *FAT) Get(cluster uint16) uint16 {
	return f.entries[cluster]
}

// Set assigns the FAT entry for `cluster` and updates the allocator bitmap
// to match: any value other than EntryFree marks the cluster in use.
func (f *FAT) Set(cluster uint16, value uint16) {
	f.entries[cluster] = value
	f.allocator.Set(uint(cluster), value != EntryFree)
}

// Allocator exposes the bitmap-backed allocator for callers (such as the
// invariant checker) that need direct access to allocation state.
func (f *FAT) Allocator() *common.Allocator {
	return &f.allocator
}

// Load reads the 8 FAT clusters sequentially from `device` into the
// mirror, then rebuilds the allocator bitmap from what was read.
func (f *FAT) Load(device *common.BlockDevice) error {
	buf := make([]byte, ClusterSize)

	index := 0
	for c := 0; c < FATClusterCount; c++ {
		if err := device.ReadCluster(common.ClusterID(FATStartCluster+c), buf); err != nil {
			return fmt.Errorf("reading FAT cluster %d: %w", c, err)
		}
		for i := 0; i < entriesPerFATCluster && index < TotalClusters; i++ {
			f.entries[index] = binary.LittleEndian.Uint16(buf[i*2:])
			index++
		}
	}

	f.allocator = common.NewAllocator(TotalClusters)
	for i := 0; i < TotalClusters; i++ {
		f.allocator.Set(uint(i), f.entries[i] != EntryFree)
	}
	return nil
}

// Persist writes the entire mirror back to the 8 FAT clusters sequentially.
// The whole FAT is rewritten rather than only the dirtied range; it is
// only 8 KiB, and rewriting it wholesale keeps one source of truth for
// chain state.
func (f *FAT) Persist(device *common.BlockDevice) error {
	buf := make([]byte, ClusterSize)

	index := 0
	for c := 0; c < FATClusterCount; c++ {
		for i := 0; i < entriesPerFATCluster; i++ {
			binary.LittleEndian.PutUint16(buf[i*2:], f.entries[index])
			index++
		}
		if err := device.WriteCluster(common.ClusterID(FATStartCluster+c), buf); err != nil {
			return fmt.Errorf("writing FAT cluster %d: %w", c, err)
		}
	}
	return nil
}

// ChainLength walks the chain starting at `head` and returns the number of
// clusters visited before hitting a sentinel, or an error if the chain
// exceeds the maximum possible length (a sign of a cycle).
func (f *FAT) ChainLength(head uint16) (int, error) {
	count := 0
	current := head
	for !IsSentinel(current) {
		count++
		if count > TotalClusters {
			return count, fmt.Errorf("chain starting at cluster %d does not terminate", head)
		}
		current = f.entries[current]
	}
	return count, nil
}
