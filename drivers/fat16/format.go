package fat16

import (
	"github.com/FromCaio/fat16-fs-simulator/drivers/common"
)

// Format lays out a fresh, empty FAT16 partition onto `device` and
// populates `fat` to match: the backing stream is resized to exactly
// PartitionSize bytes, the boot cluster is filled with BootFillByte, the
// FAT region is written with the reserved sentinels for clusters 0-8 and
// an end-of-chain marker for the root directory at cluster 9, every other
// entry is free, and the root directory cluster is written out as 32
// empty slots.
func Format(device *common.BlockDevice, fat *FAT) error {
	if err := device.Resize(TotalClusters); err != nil {
		return err
	}

	// Resize only truncates to the target size; if the backing stream was
	// already that size (the normal reformat case), that's a no-op and
	// leaves whatever stale content a previous partition wrote in the data
	// area. Zero every data-area cluster explicitly so a reformat always
	// starts clean.
	var zeroCluster [ClusterSize]byte
	for c := FirstDataCluster; c < TotalClusters; c++ {
		if err := device.WriteCluster(common.ClusterID(c), zeroCluster[:]); err != nil {
			return err
		}
	}

	*fat = *NewFAT()
	fat.Set(BootCluster, EntryBoot)
	for c := FATStartCluster; c < FATStartCluster+FATClusterCount; c++ {
		fat.Set(uint16(c), EntryReserved)
	}
	fat.Set(RootDirCluster, EntryEndOfChain)

	var bootBlock [ClusterSize]byte
	for i := range bootBlock {
		bootBlock[i] = BootFillByte
	}
	if err := device.WriteCluster(common.ClusterID(BootCluster), bootBlock[:]); err != nil {
		return err
	}

	if err := fat.Persist(device); err != nil {
		return err
	}

	var emptyRoot DirectoryCluster
	rootBytes, err := emptyRoot.Encode()
	if err != nil {
		return err
	}
	if err := device.WriteCluster(common.ClusterID(RootDirCluster), rootBytes[:]); err != nil {
		return err
	}

	return nil
}
