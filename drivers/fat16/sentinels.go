// Package fat16 implements the core of the simulated FAT16 file system: the
// on-disk layout, the FAT mirror, the directory/path machinery, and the
// mkdir/create/unlink/read/write/append operations engine.
package fat16

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// Partition geometry. There is exactly one supported layout: a 4 MiB
// partition of 4096 clusters, each 1024 bytes.
const (
	ClusterSize   = 1024
	TotalClusters = 4096
	PartitionSize = ClusterSize * TotalClusters

	BootCluster      = 0
	FATStartCluster  = 1
	FATClusterCount  = 8
	RootDirCluster   = 9
	FirstDataCluster = 10

	// BootFillByte is what the boot block is filled with at format time.
	BootFillByte = 0xBB
)

// FAT entry sentinel values. Anything at or above EntryBoot marks a
// cluster with a special role rather than pointing at a successor.
const (
	EntryFree        uint16 = 0x0000
	EntryBoot        uint16 = 0xFFFD
	EntryReserved    uint16 = 0xFFFE
	EntryEndOfChain  uint16 = 0xFFFF
	firstReservedVal uint16 = 0xFFFD // anything >= this is a sentinel, not a pointer
)

// IsSentinel reports whether a raw FAT entry value is one of the reserved
// markers (boot, reserved, end-of-chain) rather than a pointer to another
// cluster.
func IsSentinel(value uint16) bool {
	return value >= firstReservedVal
}

// sentinelRow is one row of the embedded sentinel description table, used
// only to build diagnostic messages; it plays no role in on-disk encoding.
type sentinelRow struct {
	RawValue    string `csv:"value"`
	Name        string `csv:"name"`
	Description string `csv:"description"`
}

//go:embed sentinels.csv
var sentinelsCSV string

var sentinelDescriptions map[uint16]sentinelRow

func init() {
	sentinelDescriptions = make(map[uint16]sentinelRow)

	err := gocsv.UnmarshalToCallback(strings.NewReader(sentinelsCSV), func(row sentinelRow) error {
		parsed, err := strconv.ParseUint(strings.TrimPrefix(row.RawValue, "0x"), 16, 16)
		if err != nil {
			return fmt.Errorf("bad sentinel table row %q: %w", row.RawValue, err)
		}
		sentinelDescriptions[uint16(parsed)] = row
		return nil
	})
	if err != nil {
		panic(fmt.Sprintf("fat16: malformed embedded sentinel table: %s", err))
	}
}

// DescribeSentinel returns a human-readable name for a FAT entry value,
// used when building corruption diagnostics. Pointers to ordinary clusters
// (values below the reserved range) are described generically.
func DescribeSentinel(value uint16) string {
	row, ok := sentinelDescriptions[value]
	if !ok {
		return fmt.Sprintf("pointer to cluster %d", value)
	}
	return fmt.Sprintf("%s (%s)", row.Name, row.Description)
}
