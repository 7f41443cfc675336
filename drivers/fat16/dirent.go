package fat16

import (
	"bytes"
	"encoding/binary"
	"fmt"

	fserrors "github.com/FromCaio/fat16-fs-simulator/errors"
)

// Directory entry field layout. Explicit fixed-offset byte copies and
// little-endian integer encode/decode are used instead of struct punning,
// so there are no alignment or padding assumptions.
const (
	direntSize         = 32
	direntNameSize     = 18
	direntNameMaxBytes = direntNameSize - 1 // last byte is always the NUL terminator

	direntOffsetName         = 0
	direntOffsetAttribute    = 18
	direntOffsetReserved     = 19
	direntOffsetReservedSize = 7
	direntOffsetFirstCluster = 26
	direntOffsetSize         = 28

	direntsPerCluster = ClusterSize / direntSize
)

// Attribute values for the directory entry's attribute byte.
const (
	AttrFile      uint8 = 0
	AttrDirectory uint8 = 1
)

// DirectoryEntry is the decoded form of a 32-byte on-disk directory record.
type DirectoryEntry struct {
	Name         string
	Attribute    uint8
	FirstCluster uint16
	Size         uint32
}

// IsEmpty reports whether this entry represents an empty (unused) slot.
func (e DirectoryEntry) IsEmpty() bool {
	return len(e.Name) == 0
}

// IsDir reports whether this entry is a directory.
func (e DirectoryEntry) IsDir() bool {
	return e.Attribute == AttrDirectory
}

// EncodeName truncates `name` to the 17-byte usable budget and returns the
// fixed 18-byte, NUL-terminated on-disk field. It fails if `name` is empty
// or contains a NUL byte (which would truncate the name on decode).
func EncodeName(name string) ([direntNameSize]byte, error) {
	var out [direntNameSize]byte

	if len(name) == 0 {
		return out, fserrors.NewWithMessage(fserrors.ErrInvalidPath.ErrnoCode, "name must not be empty")
	}
	if bytes.IndexByte([]byte(name), 0) >= 0 {
		return out, fserrors.NewWithMessage(fserrors.ErrInvalidPath.ErrnoCode, "name must not contain a NUL byte")
	}

	truncated := name
	if len(truncated) > direntNameMaxBytes {
		truncated = truncated[:direntNameMaxBytes]
	}
	copy(out[:], truncated)
	// out[len(truncated)] is already 0 (NUL terminator) because the array
	// is zero-valued; nothing further to do.
	return out, nil
}

// decodeName reads the NUL-terminated name field back into a string. An
// empty byte 0 at index 0 means the slot is unoccupied and decodeName
// returns "".
func decodeName(raw []byte) string {
	if raw[0] == 0 {
		return ""
	}
	end := bytes.IndexByte(raw, 0)
	if end < 0 {
		end = len(raw)
	}
	return string(raw[:end])
}

// EncodeDirectoryEntry serializes a DirectoryEntry into its 32-byte
// on-disk form. An empty entry (Name == "") serializes to all zero bytes.
func EncodeDirectoryEntry(entry DirectoryEntry) ([direntSize]byte, error) {
	var out [direntSize]byte

	if entry.IsEmpty() {
		return out, nil
	}

	nameField, err := EncodeName(entry.Name)
	if err != nil {
		return out, err
	}

	copy(out[direntOffsetName:direntOffsetName+direntNameSize], nameField[:])
	out[direntOffsetAttribute] = entry.Attribute
	// out[direntOffsetReserved:+7] is left zero.
	binary.LittleEndian.PutUint16(out[direntOffsetFirstCluster:], entry.FirstCluster)
	binary.LittleEndian.PutUint32(out[direntOffsetSize:], entry.Size)
	return out, nil
}

// DecodeDirectoryEntry parses a 32-byte record into a DirectoryEntry. An
// all-zero name field decodes to an empty DirectoryEntry (IsEmpty() true);
// all other fields are still decoded for callers that want to inspect a
// stale/freed slot.
func DecodeDirectoryEntry(raw []byte) (DirectoryEntry, error) {
	if len(raw) != direntSize {
		return DirectoryEntry{}, fmt.Errorf(
			"directory entry must be exactly %d bytes, got %d", direntSize, len(raw))
	}

	return DirectoryEntry{
		Name:         decodeName(raw[direntOffsetName : direntOffsetName+direntNameSize]),
		Attribute:    raw[direntOffsetAttribute],
		FirstCluster: binary.LittleEndian.Uint16(raw[direntOffsetFirstCluster:]),
		Size:         binary.LittleEndian.Uint32(raw[direntOffsetSize:]),
	}, nil
}
