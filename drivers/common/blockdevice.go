// Package common provides the block-level and allocation building blocks
// shared by the FAT16 simulator: a cluster-granular abstraction over a
// random-access byte stream, and a bitmap-backed allocator.
package common

import (
	"fmt"
	"io"
)

// ClusterID identifies a cluster by its absolute index within the
// partition. It is a 16-bit quantity on disk, but kept as uint here so
// arithmetic doesn't need constant truncation.
type ClusterID uint

// BlockDevice is a cluster-granular abstraction over a fixed-size
// random-access byte stream. It works over any io.ReadWriteSeeker rather
// than only *os.File, so the exact same code path serves the real backing
// file and an in-memory buffer in tests.
//
// The exposed fields are informational only and must never be changed
// directly; use Resize to change TotalClusters.
type BlockDevice struct {
	// ClusterSize gives the size of a cluster on this device, in bytes. All
	// reads and writes must be done in whole clusters.
	ClusterSize uint
	// TotalClusters is the total number of clusters in the partition.
	TotalClusters uint

	stream io.ReadWriteSeeker
}

// NewBlockDevice wraps `stream` as a cluster device with the given
// geometry. The stream must already be at least ClusterSize*TotalClusters
// bytes long; use Format to create one from scratch.
func NewBlockDevice(stream io.ReadWriteSeeker, clusterSize, totalClusters uint) *BlockDevice {
	return &BlockDevice{
		ClusterSize:   clusterSize,
		TotalClusters: totalClusters,
		stream:        stream,
	}
}

// ClusterIDToOffset converts a cluster index into a byte offset into the
// backing stream.
func (device *BlockDevice) ClusterIDToOffset(id ClusterID) (int64, error) {
	if uint(id) >= device.TotalClusters {
		return -1, fmt.Errorf(
			"invalid cluster id %d: not in range [0, %d)", id, device.TotalClusters)
	}
	return int64(id) * int64(device.ClusterSize), nil
}

func (device *BlockDevice) seekToCluster(id ClusterID) error {
	offset, err := device.ClusterIDToOffset(id)
	if err != nil {
		return err
	}
	_, err = device.stream.Seek(offset, io.SeekStart)
	return err
}

// ReadCluster fills `out` (which must be exactly ClusterSize bytes) with
// the contents of cluster `id`.
func (device *BlockDevice) ReadCluster(id ClusterID, out []byte) error {
	if uint(len(out)) != device.ClusterSize {
		return fmt.Errorf(
			"read buffer is the wrong size: expected %d, got %d",
			device.ClusterSize, len(out))
	}
	if err := device.seekToCluster(id); err != nil {
		return err
	}

	n, err := io.ReadFull(device.stream, out)
	if err != nil {
		return err
	}
	if uint(n) != device.ClusterSize {
		return fmt.Errorf(
			"short read on cluster %d: got %d of %d bytes", id, n, device.ClusterSize)
	}
	return nil
}

// WriteCluster writes `data` (which must be exactly ClusterSize bytes) to
// cluster `id`, then flushes the stream to durable storage if it supports
// it.
func (device *BlockDevice) WriteCluster(id ClusterID, data []byte) error {
	if uint(len(data)) != device.ClusterSize {
		return fmt.Errorf(
			"data to write is the wrong size: expected %d, got %d",
			device.ClusterSize, len(data))
	}
	if err := device.seekToCluster(id); err != nil {
		return err
	}

	n, err := device.stream.Write(data)
	if err != nil {
		return err
	}
	if uint(n) != device.ClusterSize {
		return fmt.Errorf(
			"short write on cluster %d: wrote %d of %d bytes", id, n, device.ClusterSize)
	}
	return device.flush()
}

// flush asks the backing stream to commit to durable storage if it knows
// how to. Streams that don't support syncing (e.g. an in-memory buffer)
// are left alone.
func (device *BlockDevice) flush() error {
	syncer, ok := device.stream.(interface{ Sync() error })
	if !ok {
		return nil
	}
	return syncer.Sync()
}

// Resize grows the backing stream to hold exactly `totalClusters` clusters,
// truncating it first if it supports truncation. Used only by Format. A
// stream that doesn't support truncation (such as a fixed-size in-memory
// buffer used in tests) is left alone as long as it is already the right
// size.
func (device *BlockDevice) Resize(totalClusters uint) error {
	size := int64(totalClusters) * int64(device.ClusterSize)

	truncator, ok := device.stream.(interface{ Truncate(size int64) error })
	if !ok {
		current, err := device.stream.Seek(0, io.SeekEnd)
		if err != nil {
			return err
		}
		if current != size {
			return fmt.Errorf(
				"backing stream does not support resizing and is not already %d bytes (is %d)",
				size, current)
		}
		device.TotalClusters = totalClusters
		return nil
	}

	if err := truncator.Truncate(size); err != nil {
		return err
	}
	device.TotalClusters = totalClusters
	return nil
}

// Size returns the total size of the partition, in bytes.
func (device *BlockDevice) Size() int64 {
	return int64(device.TotalClusters) * int64(device.ClusterSize)
}
