package fat16

import (
	"fmt"

	fserrors "github.com/FromCaio/fat16-fs-simulator/errors"
)

// FindFreeCluster claims and returns the lowest-numbered free data cluster
// (at or above FirstDataCluster) via the FAT's bitmap allocator cache. It
// returns ErrNoSpace if the data area is full. The returned cluster is
// already marked used in the bitmap cache, but its FAT entry itself is
// still EntryFree; callers must fat.Set it once they know what value (a
// pointer or EntryEndOfChain) to store there.
func FindFreeCluster(fat *FAT) (uint16, error) {
	cluster, err := fat.Allocator().AllocateBlockFrom(FirstDataCluster)
	if err != nil {
		return 0, err
	}
	return uint16(cluster), nil
}

// FindFreeDirEntry returns the first unoccupied slot index in `cluster`, or
// ErrDirectoryFull if all 32 slots are occupied.
func FindFreeDirEntry(cluster DirectoryCluster) (int, error) {
	slot := cluster.FindFreeSlot()
	if slot < 0 {
		return -1, fserrors.ErrDirectoryFull
	}
	return slot, nil
}

// FreeChain walks the cluster chain starting at `head`, marking every
// cluster in it free in `fat`. It refuses to touch any cluster below
// FirstDataCluster, since those indices are permanently reserved for the
// boot block, the FAT region, and the root directory.
func FreeChain(fat *FAT, head uint16) error {
	current := head
	visited := 0

	for !IsSentinel(current) {
		if current < FirstDataCluster {
			return fserrors.NewWithMessage(fserrors.ErrCorrupt.ErrnoCode,
				fmt.Sprintf("chain points at reserved cluster %d", current))
		}
		visited++
		if visited > TotalClusters {
			return fserrors.NewWithMessage(fserrors.ErrCorrupt.ErrnoCode, "cluster chain does not terminate")
		}

		next := fat.Get(current)
		fat.Set(current, EntryFree)
		current = next
	}
	return nil
}
