package fat16

import "fmt"

// DirectoryCluster is the decoded form of one 1024-byte directory cluster:
// exactly 32 directory entry slots, in on-disk order.
type DirectoryCluster struct {
	Entries [direntsPerCluster]DirectoryEntry
}

// DecodeDirectoryCluster parses a full 1024-byte cluster into 32 entries.
func DecodeDirectoryCluster(raw []byte) (DirectoryCluster, error) {
	if len(raw) != ClusterSize {
		return DirectoryCluster{}, fmt.Errorf(
			"directory cluster must be exactly %d bytes, got %d", ClusterSize, len(raw))
	}

	var cluster DirectoryCluster
	for i := 0; i < direntsPerCluster; i++ {
		offset := i * direntSize
		entry, err := DecodeDirectoryEntry(raw[offset : offset+direntSize])
		if err != nil {
			return DirectoryCluster{}, err
		}
		cluster.Entries[i] = entry
	}
	return cluster, nil
}

// Encode serializes the 32 entries back into a 1024-byte cluster.
func (c DirectoryCluster) Encode() ([ClusterSize]byte, error) {
	var out [ClusterSize]byte

	for i, entry := range c.Entries {
		raw, err := EncodeDirectoryEntry(entry)
		if err != nil {
			return out, fmt.Errorf("slot %d: %w", i, err)
		}
		copy(out[i*direntSize:(i+1)*direntSize], raw[:])
	}
	return out, nil
}

// FindFreeSlot returns the index of the first empty slot, or -1 if the
// cluster's 32 slots are all occupied.
func (c DirectoryCluster) FindFreeSlot() int {
	for i, entry := range c.Entries {
		if entry.IsEmpty() {
			return i
		}
	}
	return -1
}

// FindByName returns the slot index of the first occupied entry whose name
// matches exactly, or -1 if none does. Comparison is byte-exact, no case
// folding.
func (c DirectoryCluster) FindByName(name string) int {
	for i, entry := range c.Entries {
		if !entry.IsEmpty() && entry.Name == name {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether every slot in the cluster is unoccupied, used by
// unlink to check that a directory has no remaining children.
func (c DirectoryCluster) IsEmpty() bool {
	for _, entry := range c.Entries {
		if !entry.IsEmpty() {
			return false
		}
	}
	return true
}
