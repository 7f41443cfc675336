package fat16

import (
	"github.com/noxer/bytewriter"
)

// padToCluster copies `data` (which must be no longer than ClusterSize)
// into a zero-padded, cluster-sized buffer, using bytewriter to bound the
// write to the destination slice. Any bytes beyond len(data) are left at
// their zero value.
func padToCluster(data []byte) ([ClusterSize]byte, error) {
	var out [ClusterSize]byte
	writer := bytewriter.New(out[:])
	_, err := writer.Write(data)
	if err != nil {
		return out, err
	}
	return out, nil
}
