package fat16

import (
	"strings"

	fserrors "github.com/FromCaio/fat16-fs-simulator/errors"
)

// ResolveResult is the outcome of walking a path down the directory tree.
// When Found is false, ParentCluster still identifies the last directory
// that was successfully walked into, and Name holds the path component
// that could not be located there.
type ResolveResult struct {
	Found         bool
	Name          string
	ParentCluster uint16
	EntrySlot     int
	Entry         DirectoryEntry
}

// clusterReader is the subset of FS needed to resolve a path: read any
// cluster by ID and decode it as a directory. Declared here rather than
// imported from fs.go so resolver.go has no forward dependency on FS.
type clusterReader interface {
	readDirectoryCluster(clusterID uint16) (DirectoryCluster, error)
}

// splitPath breaks a slash-separated path into non-empty components,
// tolerating repeated and trailing slashes.
func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	components := make([]string, 0, len(raw))
	for _, c := range raw {
		if c != "" {
			components = append(components, c)
		}
	}
	return components
}

// Resolve walks `path` from the root directory, one component at a time.
// The root ("/" or "") always resolves to the synthesized root directory
// at RootDirCluster. A path that resolves successfully all the way
// through returns Found == true with Entry/EntrySlot/ParentCluster set to
// the final component's own slot. A path whose last component does not
// exist in its parent returns Found == false with ParentCluster set to
// that parent and Name set to the missing component. An I/O or corruption failure
// while walking an intermediate directory is returned as an error
// distinct from "not found". Intermediate components are not
// type-checked: a regular file in the middle of a path has its data
// cluster decoded as a directory cluster, which for an empty file yields
// 32 empty slots and therefore a not-found result. Callers that need the
// final parent to be a directory check the resolved entry themselves.
func Resolve(reader clusterReader, path string) (ResolveResult, error) {
	components := splitPath(path)

	if len(components) == 0 {
		return ResolveResult{
			Found:         true,
			ParentCluster: RootDirCluster,
			EntrySlot:     -1,
			Entry: DirectoryEntry{
				Name:         "/",
				Attribute:    AttrDirectory,
				FirstCluster: RootDirCluster,
			},
		}, nil
	}

	currentCluster := uint16(RootDirCluster)

	for i, name := range components {
		dir, err := reader.readDirectoryCluster(currentCluster)
		if err != nil {
			return ResolveResult{}, err
		}

		slot := dir.FindByName(name)
		if slot < 0 {
			return ResolveResult{
				Found:         false,
				Name:          name,
				ParentCluster: currentCluster,
				EntrySlot:     -1,
			}, nil
		}

		entry := dir.Entries[slot]
		isLast := i == len(components)-1

		if isLast {
			return ResolveResult{
				Found:         true,
				Name:          name,
				ParentCluster: currentCluster,
				EntrySlot:     slot,
				Entry:         entry,
			}, nil
		}

		currentCluster = entry.FirstCluster
	}

	// unreachable: the loop always returns on its last iteration.
	return ResolveResult{}, fserrors.ErrInvalidPath
}
