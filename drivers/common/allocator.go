package common

import (
	"github.com/boljen/go-bitmap"

	fserrors "github.com/FromCaio/fat16-fs-simulator/errors"
)

// Allocator is a bitmap-backed mirror of which clusters in a fixed-size
// universe are in use. It never owns the truth about allocation state,
// which lives in the FAT; it only accelerates "find the first free slot"
// queries and backs the no-aliasing invariant check. The scan can start
// at any index, since the data area begins partway into the cluster space
// and the system region must never be handed out.
type Allocator struct {
	bitmap     bitmap.Bitmap
	TotalUnits uint
}

// NewAllocator creates an allocator over `totalUnits` indices, all
// initially marked free.
func NewAllocator(totalUnits uint) Allocator {
	return Allocator{
		bitmap:     bitmap.New(int(totalUnits)),
		TotalUnits: totalUnits,
	}
}

// Get reports whether `index` is currently marked in use.
func (alloc *Allocator) Get(index uint) bool {
	return alloc.bitmap.Get(int(index))
}

// Set marks `index` as in use (true) or free (false).
func (alloc *Allocator) Set(index uint, used bool) {
	alloc.bitmap.Set(int(index), used)
}

// AllocateBlockFrom finds and claims the first free index at or above
// `start`, returning it. It returns ErrNoSpace if every remaining index is
// in use.
func (alloc *Allocator) AllocateBlockFrom(start uint) (uint, error) {
	for i := start; i < alloc.TotalUnits; i++ {
		if !alloc.bitmap.Get(int(i)) {
			alloc.bitmap.Set(int(i), true)
			return i, nil
		}
	}
	return 0, fserrors.ErrNoSpace
}

// CountUsed returns how many indices are currently marked in use.
func (alloc *Allocator) CountUsed() uint {
	var count uint
	for i := uint(0); i < alloc.TotalUnits; i++ {
		if alloc.bitmap.Get(int(i)) {
			count++
		}
	}
	return count
}
