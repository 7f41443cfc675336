package fat16

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/FromCaio/fat16-fs-simulator/drivers/common"
	fserrors "github.com/FromCaio/fat16-fs-simulator/errors"
)

// State is the FS service's lifecycle stage.
type State int

const (
	Uninitialized State = iota
	Formatted
	Loaded
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Formatted:
		return "formatted"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// FSInfo is a read-only snapshot of partition-wide accounting, returned by
// Statfs.
type FSInfo struct {
	TotalClusters uint
	FreeClusters  uint
	UsedClusters  uint
}

// FS is the FAT16 service: a single backing device plus its in-memory FAT
// mirror and lifecycle state, bound into an explicit value with scoped
// construction rather than process-wide singletons.
type FS struct {
	device *common.BlockDevice
	fat    *FAT
	state  State
}

// New wraps `stream` (a backing file or, in tests, an in-memory buffer) as
// an FS service in the Uninitialized state. The stream is not touched
// until Format or Load is called.
func New(stream io.ReadWriteSeeker) *FS {
	return &FS{
		device: common.NewBlockDevice(stream, ClusterSize, TotalClusters),
		fat:    NewFAT(),
		state:  Uninitialized,
	}
}

// State returns the service's current lifecycle state.
func (fs *FS) State() State {
	return fs.state
}

func (fs *FS) requireLoaded() error {
	if fs.state != Loaded {
		return fserrors.NewWithMessage(fserrors.ErrNotLoaded.ErrnoCode,
			fmt.Sprintf("operation requires the Loaded state, got %s", fs.state))
	}
	return nil
}

// Format initializes a fresh, empty partition and transitions to Formatted.
func (fs *FS) Format() error {
	if err := Format(fs.device, fs.fat); err != nil {
		return err
	}
	fs.state = Formatted
	return nil
}

// Load reads the FAT region from disk into the mirror and transitions to
// Loaded. Valid from any state, including Uninitialized: the in-memory
// state machine only reflects what this FS value has done itself, but
// fat16fmt runs one operation per process and exits, so the common case
// is a brand-new FS value whose backing file was already formatted by an
// earlier process. Whether loading is actually valid is decided by the
// on-disk reality the read uncovers, not by this value's own history.
func (fs *FS) Load() error {
	if err := fs.fat.Load(fs.device); err != nil {
		return err
	}
	fs.state = Loaded
	return nil
}

// readDirectoryCluster reads and decodes the directory cluster at
// `clusterID`. Implements the clusterReader interface resolver.go needs.
func (fs *FS) readDirectoryCluster(clusterID uint16) (DirectoryCluster, error) {
	var raw [ClusterSize]byte
	if err := fs.device.ReadCluster(common.ClusterID(clusterID), raw[:]); err != nil {
		return DirectoryCluster{}, fserrors.Wrap(fserrors.ErrIO.ErrnoCode, err)
	}
	return DecodeDirectoryCluster(raw[:])
}

func (fs *FS) writeDirectoryCluster(clusterID uint16, cluster DirectoryCluster) error {
	raw, err := cluster.Encode()
	if err != nil {
		return err
	}
	if err := fs.device.WriteCluster(common.ClusterID(clusterID), raw[:]); err != nil {
		return fserrors.Wrap(fserrors.ErrIO.ErrnoCode, err)
	}
	return nil
}

// splitParentAndName splits an absolute path into its parent directory
// path and final component name, failing if the path is not absolute, is
// "/" itself, or has no final component.
func splitParentAndName(path string) (parentPath string, name string, err error) {
	if !strings.HasPrefix(path, "/") {
		return "", "", fserrors.NewWithMessage(fserrors.ErrInvalidPath.ErrnoCode,
			fmt.Sprintf("path %q is not absolute", path))
	}
	components := splitPath(path)
	if len(components) == 0 {
		return "", "", fserrors.NewWithMessage(fserrors.ErrInvalidPath.ErrnoCode, "path must not be the root")
	}
	name = components[len(components)-1]

	parentComponents := components[:len(components)-1]
	parentPath = "/"
	for _, c := range parentComponents {
		parentPath += c + "/"
	}
	return parentPath, name, nil
}

// insertEntry resolves `parentPath`, finds a free slot in it, and writes a
// new entry named `name` with `attribute` there, persisting the parent cluster and the FAT. Shared by
// Mkdir and Create, which differ only in the entry's attribute.
func (fs *FS) insertEntry(parentPath, name string, attribute uint8) error {
	result, err := Resolve(fs, parentPath)
	if err != nil {
		return err
	}
	if !result.Found {
		return fserrors.NewWithMessage(fserrors.ErrNotFound.ErrnoCode,
			fmt.Sprintf("parent directory %q does not exist", parentPath))
	}
	if !result.Entry.IsDir() {
		return fserrors.NewWithMessage(fserrors.ErrNotADirectory.ErrnoCode,
			fmt.Sprintf("parent %q is not a directory", parentPath))
	}

	parentCluster := result.Entry.FirstCluster
	dir, err := fs.readDirectoryCluster(parentCluster)
	if err != nil {
		return err
	}

	slot, err := FindFreeDirEntry(dir)
	if err != nil {
		return err
	}

	newCluster, err := FindFreeCluster(fs.fat)
	if err != nil {
		return err
	}

	dir.Entries[slot] = DirectoryEntry{
		Name:         name,
		Attribute:    attribute,
		FirstCluster: newCluster,
		Size:         0,
	}
	fs.fat.Set(newCluster, EntryEndOfChain)

	if attribute == AttrDirectory {
		var empty DirectoryCluster
		emptyBytes, err := empty.Encode()
		if err != nil {
			return err
		}
		if err := fs.device.WriteCluster(common.ClusterID(newCluster), emptyBytes[:]); err != nil {
			return fserrors.Wrap(fserrors.ErrIO.ErrnoCode, err)
		}
	}

	if err := fs.writeDirectoryCluster(parentCluster, dir); err != nil {
		return err
	}
	return fs.fat.Persist(fs.device)
}

// Mkdir creates an empty directory at `path`.
func (fs *FS) Mkdir(path string) error {
	if err := fs.requireLoaded(); err != nil {
		return err
	}
	parentPath, name, err := splitParentAndName(path)
	if err != nil {
		return err
	}
	return fs.insertEntry(parentPath, name, AttrDirectory)
}

// Create creates an empty regular file at `path`.
func (fs *FS) Create(path string) error {
	if err := fs.requireLoaded(); err != nil {
		return err
	}
	parentPath, name, err := splitParentAndName(path)
	if err != nil {
		return err
	}
	return fs.insertEntry(parentPath, name, AttrFile)
}

// Unlink removes the file or empty directory at `path`.
func (fs *FS) Unlink(path string) error {
	if err := fs.requireLoaded(); err != nil {
		return err
	}

	result, err := Resolve(fs, path)
	if err != nil {
		return err
	}
	if !result.Found {
		return fserrors.NewWithMessage(fserrors.ErrNotFound.ErrnoCode,
			fmt.Sprintf("%q does not exist", path))
	}
	if result.EntrySlot < 0 {
		return fserrors.NewWithMessage(fserrors.ErrInvalidPath.ErrnoCode, "cannot unlink the root directory")
	}

	if result.Entry.IsDir() {
		childDir, err := fs.readDirectoryCluster(result.Entry.FirstCluster)
		if err != nil {
			return err
		}
		if !childDir.IsEmpty() {
			return fserrors.ErrDirectoryNotEmpty
		}
	}

	if err := FreeChain(fs.fat, result.Entry.FirstCluster); err != nil {
		return err
	}

	parentDir, err := fs.readDirectoryCluster(result.ParentCluster)
	if err != nil {
		return err
	}
	parentDir.Entries[result.EntrySlot] = DirectoryEntry{}

	if err := fs.writeDirectoryCluster(result.ParentCluster, parentDir); err != nil {
		return err
	}
	return fs.fat.Persist(fs.device)
}

// Read resolves `path` as a regular file and emits its bytes to `out`,
// followed by a trailing newline.
func (fs *FS) Read(path string, out io.Writer) error {
	if err := fs.requireLoaded(); err != nil {
		return err
	}

	result, err := Resolve(fs, path)
	if err != nil {
		return err
	}
	if !result.Found {
		return fserrors.NewWithMessage(fserrors.ErrNotFound.ErrnoCode,
			fmt.Sprintf("%q does not exist", path))
	}
	if result.Entry.IsDir() {
		return fserrors.ErrNotAFile
	}

	remaining := int(result.Entry.Size)
	current := result.Entry.FirstCluster
	var buf [ClusterSize]byte

	for remaining > 0 && !IsSentinel(current) {
		if err := fs.device.ReadCluster(common.ClusterID(current), buf[:]); err != nil {
			return fserrors.Wrap(fserrors.ErrIO.ErrnoCode, err)
		}
		n := remaining
		if n > ClusterSize {
			n = ClusterSize
		}
		if _, err := out.Write(buf[:n]); err != nil {
			return err
		}
		remaining -= n
		current = fs.fat.Get(current)
	}

	_, err = out.Write([]byte("\n"))
	return err
}

// Write overwrites the content of the regular file at `path` with `data`.
// On allocator failure partway through building the new chain, the
// partially built chain is rolled back (freed) and the triggering error is
// returned wrapped in a multierror, and the original content is left
// untouched on the directory entry (which is updated only after the new
// chain is fully built).
func (fs *FS) Write(path string, data []byte) error {
	if err := fs.requireLoaded(); err != nil {
		return err
	}

	result, err := Resolve(fs, path)
	if err != nil {
		return err
	}
	if !result.Found {
		return fserrors.NewWithMessage(fserrors.ErrNotFound.ErrnoCode,
			fmt.Sprintf("%q does not exist", path))
	}
	if result.Entry.IsDir() {
		return fserrors.ErrNotAFile
	}

	if err := FreeChain(fs.fat, result.Entry.FirstCluster); err != nil {
		return err
	}

	newFirstCluster, err := fs.buildChain(data)
	if err != nil {
		return err
	}

	parentDir, err := fs.readDirectoryCluster(result.ParentCluster)
	if err != nil {
		return err
	}
	entry := parentDir.Entries[result.EntrySlot]
	entry.FirstCluster = newFirstCluster
	entry.Size = uint32(len(data))
	parentDir.Entries[result.EntrySlot] = entry

	if err := fs.writeDirectoryCluster(result.ParentCluster, parentDir); err != nil {
		return err
	}
	return fs.fat.Persist(fs.device)
}

// buildChain allocates and writes a new cluster chain holding `data`,
// returning its head cluster. An empty `data` still allocates one cluster
// (marked end-of-chain, content untouched) so the entry always owns a
// chain for unlink to free. On out-of-space partway through, every
// cluster allocated so far in this call is freed before returning
// ErrNoSpace.
func (fs *FS) buildChain(data []byte) (uint16, error) {
	if len(data) == 0 {
		cluster, err := FindFreeCluster(fs.fat)
		if err != nil {
			return 0, err
		}
		fs.fat.Set(cluster, EntryEndOfChain)
		return cluster, nil
	}

	var allocated []uint16
	rollback := func(cause error) error {
		var result *multierror.Error
		result = multierror.Append(result, cause)
		for _, c := range allocated {
			fs.fat.Set(c, EntryFree)
		}
		return result.ErrorOrNil()
	}

	var firstCluster uint16
	var previous uint16
	hasPrevious := false

	for offset := 0; offset < len(data); offset += ClusterSize {
		end := offset + ClusterSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[offset:end]

		cluster, err := FindFreeCluster(fs.fat)
		if err != nil {
			return 0, rollback(err)
		}
		allocated = append(allocated, cluster)

		buf, err := padToCluster(chunk)
		if err != nil {
			return 0, rollback(err)
		}
		if err := fs.device.WriteCluster(common.ClusterID(cluster), buf[:]); err != nil {
			return 0, rollback(fserrors.Wrap(fserrors.ErrIO.ErrnoCode, err))
		}

		fs.fat.Set(cluster, EntryEndOfChain)
		if hasPrevious {
			fs.fat.Set(previous, cluster)
		} else {
			firstCluster = cluster
		}
		previous = cluster
		hasPrevious = true
	}

	return firstCluster, nil
}

// Append extends the content of the regular file at `path` with `data`.
// Unlike Write, there is no rollback on allocator failure mid-loop: bytes
// already written to newly allocated clusters remain written, but the
// entry's size is left at its pre-append value. The extra clusters stay
// linked onto the file's chain past its recorded size until the file is
// overwritten or unlinked.
func (fs *FS) Append(path string, data []byte) error {
	if err := fs.requireLoaded(); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	result, err := Resolve(fs, path)
	if err != nil {
		return err
	}
	if !result.Found {
		return fserrors.NewWithMessage(fserrors.ErrNotFound.ErrnoCode,
			fmt.Sprintf("%q does not exist", path))
	}
	if result.Entry.IsDir() {
		return fserrors.ErrNotAFile
	}

	size := result.Entry.Size
	current := result.Entry.FirstCluster
	var buf [ClusterSize]byte
	var offset int

	if size > 0 && size%ClusterSize == 0 {
		tail, err := fs.chainTail(current)
		if err != nil {
			return err
		}
		next, err := FindFreeCluster(fs.fat)
		if err != nil {
			return err
		}
		fs.fat.Set(tail, next)
		fs.fat.Set(next, EntryEndOfChain)
		current = next
		offset = 0
	} else {
		tail, err := fs.chainTail(current)
		if err != nil {
			return err
		}
		if err := fs.device.ReadCluster(common.ClusterID(tail), buf[:]); err != nil {
			return fserrors.Wrap(fserrors.ErrIO.ErrnoCode, err)
		}
		current = tail
		offset = int(size % ClusterSize)
	}

	remaining := data
	for len(remaining) > 0 {
		n := ClusterSize - offset
		if n > len(remaining) {
			n = len(remaining)
		}
		copy(buf[offset:offset+n], remaining[:n])
		remaining = remaining[n:]

		if err := fs.device.WriteCluster(common.ClusterID(current), buf[:]); err != nil {
			return fserrors.Wrap(fserrors.ErrIO.ErrnoCode, err)
		}

		if len(remaining) == 0 {
			break
		}

		next, err := FindFreeCluster(fs.fat)
		if err != nil {
			return err
		}
		fs.fat.Set(current, next)
		fs.fat.Set(next, EntryEndOfChain)
		current = next
		offset = 0
		buf = [ClusterSize]byte{}
	}

	parentDir, err := fs.readDirectoryCluster(result.ParentCluster)
	if err != nil {
		return err
	}
	entry := parentDir.Entries[result.EntrySlot]
	entry.Size = size + uint32(len(data))
	parentDir.Entries[result.EntrySlot] = entry

	if err := fs.writeDirectoryCluster(result.ParentCluster, parentDir); err != nil {
		return err
	}
	return fs.fat.Persist(fs.device)
}

// chainTail walks the chain from `head` to its last cluster (the one
// whose FAT entry is EntryEndOfChain). O(chain-length), recomputed on
// every call rather than cached.
func (fs *FS) chainTail(head uint16) (uint16, error) {
	current := head
	visited := 0
	for {
		next := fs.fat.Get(current)
		if next == EntryEndOfChain {
			return current, nil
		}
		if IsSentinel(next) {
			return 0, fserrors.NewWithMessage(fserrors.ErrCorrupt.ErrnoCode,
				"chain ends on "+DescribeSentinel(next)+" instead of end-of-chain")
		}
		current = next
		visited++
		if visited > TotalClusters {
			return 0, fserrors.NewWithMessage(fserrors.ErrCorrupt.ErrnoCode, "cluster chain does not terminate")
		}
	}
}

// Ls resolves `path` and writes a listing to `out`: for a directory, a
// header line followed by one line per occupied slot tagged [D] or [F]
// with its size and name; for a file, a single line naming it.
func (fs *FS) Ls(path string, out io.Writer) error {
	if err := fs.requireLoaded(); err != nil {
		return err
	}

	result, err := Resolve(fs, path)
	if err != nil {
		return err
	}
	if !result.Found {
		return fserrors.NewWithMessage(fserrors.ErrNotFound.ErrnoCode,
			fmt.Sprintf("%q does not exist", path))
	}

	if !result.Entry.IsDir() {
		_, err := fmt.Fprintf(out, "[F] %8d %s\n", result.Entry.Size, result.Entry.Name)
		return err
	}

	dir, err := fs.readDirectoryCluster(result.Entry.FirstCluster)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(out, "%s:\n", path); err != nil {
		return err
	}
	for _, entry := range dir.Entries {
		if entry.IsEmpty() {
			continue
		}
		tag := "[F]"
		if entry.IsDir() {
			tag = "[D]"
		}
		if _, err := fmt.Fprintf(out, "%s %8d %s\n", tag, entry.Size, entry.Name); err != nil {
			return err
		}
	}
	return nil
}

// ChainLength resolves `path` and returns how many clusters its chain
// occupies. Used by tests that want to assert a file's on-disk cluster
// footprint without reaching into package internals.
func (fs *FS) ChainLength(path string) (int, error) {
	if err := fs.requireLoaded(); err != nil {
		return 0, err
	}
	result, err := Resolve(fs, path)
	if err != nil {
		return 0, err
	}
	if !result.Found {
		return 0, fserrors.NewWithMessage(fserrors.ErrNotFound.ErrnoCode,
			fmt.Sprintf("%q does not exist", path))
	}
	return fs.fat.ChainLength(result.Entry.FirstCluster)
}

// FATEntry returns the raw FAT entry for `cluster`, for diagnostics and
// tests that assert chain state directly.
func (fs *FS) FATEntry(cluster uint16) uint16 {
	return fs.fat.Get(cluster)
}

// Statfs returns a snapshot of partition-wide cluster accounting.
func (fs *FS) Statfs() (FSInfo, error) {
	if err := fs.requireLoaded(); err != nil {
		return FSInfo{}, err
	}
	used := fs.fat.Allocator().CountUsed()
	return FSInfo{
		TotalClusters: TotalClusters,
		UsedClusters:  used,
		FreeClusters:  TotalClusters - used,
	}, nil
}
