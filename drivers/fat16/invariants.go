package fat16

import (
	"fmt"

	"github.com/boljen/go-bitmap"
)

// InvariantReport summarizes a successful CheckInvariants run:
// FreeClusters is the number of FAT entries marked free, and
// ReachableCount is the number of clusters reached from the root
// directory (the root cluster included). An in-use cluster that no chain
// reaches is not reported as a violation.
type InvariantReport struct {
	FreeClusters   uint
	ReachableCount uint
}

// CheckInvariants walks the whole directory tree from the root, verifying
// the no-dangling and no-aliasing properties, and returns a report of what
// it found. It returns an error as soon as a violation is detected, naming
// the offending cluster or chain.
func CheckInvariants(fs *FS) (InvariantReport, error) {
	if fs.fat.Get(BootCluster) != EntryBoot {
		return InvariantReport{}, fmt.Errorf("cluster 0 is not the boot sentinel")
	}
	for c := FATStartCluster; c < FATStartCluster+FATClusterCount; c++ {
		if fs.fat.Get(uint16(c)) != EntryReserved {
			return InvariantReport{}, fmt.Errorf("FAT cluster %d is not marked reserved", c)
		}
	}
	if fs.fat.Get(RootDirCluster) != EntryEndOfChain {
		return InvariantReport{}, fmt.Errorf("root directory cluster is not end-of-chain")
	}

	visited := bitmap.New(TotalClusters)
	visited.Set(RootDirCluster, true)

	var walk func(dirCluster uint16) error
	walk = func(dirCluster uint16) error {
		dir, err := fs.readDirectoryCluster(dirCluster)
		if err != nil {
			return err
		}
		for _, entry := range dir.Entries {
			if entry.IsEmpty() {
				continue
			}
			if err := walkChain(fs.fat, visited, entry.FirstCluster); err != nil {
				return fmt.Errorf("entry %q: %w", entry.Name, err)
			}
			if entry.IsDir() {
				if err := walk(entry.FirstCluster); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(RootDirCluster); err != nil {
		return InvariantReport{}, err
	}

	var reachable uint
	for i := 0; i < TotalClusters; i++ {
		if visited.Get(i) {
			reachable++
		}
	}

	return InvariantReport{
		FreeClusters:   TotalClusters - fs.fat.Allocator().CountUsed(),
		ReachableCount: reachable,
	}, nil
}

// walkChain follows the chain starting at `head`, marking each visited
// cluster in `visited`. It fails if the chain revisits a cluster already
// marked (aliasing - the no-aliasing property), strays below
// FirstDataCluster, or fails to terminate within TotalClusters -
// FirstDataCluster steps, the size of the data area (the no-dangling
// property).
func walkChain(fat *FAT, visited bitmap.Bitmap, head uint16) error {
	current := head
	steps := 0

	for !IsSentinel(current) {
		if current < FirstDataCluster {
			return fmt.Errorf("chain visits reserved cluster %d", current)
		}
		if visited.Get(int(current)) {
			return fmt.Errorf("cluster %d appears in more than one chain", current)
		}
		visited.Set(int(current), true)

		steps++
		if steps > TotalClusters-FirstDataCluster {
			return fmt.Errorf("chain starting at %d does not terminate", head)
		}
		current = fat.Get(current)
	}

	if current != EntryEndOfChain {
		return fmt.Errorf("chain starting at %d ends on %s instead of end-of-chain", head, DescribeSentinel(current))
	}
	return nil
}
