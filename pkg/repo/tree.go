package repo

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/odvcencio/gitcore/pkg/hash"
	"github.com/odvcencio/gitcore/pkg/index"
	"github.com/odvcencio/gitcore/pkg/object"
)

// dirBuild is one directory's in-progress tree: its leaves (files and
// placeholder subdirectory entries) plus the hash it was written under,
// once known.
type dirBuild struct {
	leaves []object.TreeLeaf
	hash   hash.Hash
}

// WriteTree runs the §4.7 tree-builder algorithm over idx's entries and
// returns the hash of the root tree. Directories are built bottom-up: the
// working set of directories is sorted deepest-first so every child's hash
// is known before its parent is serialized.
func (r *Repo) WriteTree(idx *index.Index) (hash.Hash, error) {
	dirs := map[string]*dirBuild{"": {}}

	var ensureDir func(dir string)
	ensureDir = func(dir string) {
		if _, ok := dirs[dir]; ok {
			return
		}
		dirs[dir] = &dirBuild{}
		parent := parentPath(dir)
		ensureDir(parent)
		name := path.Base(dir)
		if !hasLeaf(dirs[parent].leaves, name) {
			dirs[parent].leaves = append(dirs[parent].leaves, object.TreeLeaf{
				Mode: object.ModeDir,
				Name: name,
			})
		}
	}

	for _, e := range idx.Entries {
		if e.Stage != 0 {
			continue
		}
		dir := parentPath(e.Path)
		ensureDir(dir)
		dirs[dir].leaves = append(dirs[dir].leaves, object.TreeLeaf{
			Mode: leafMode(e.Mode),
			Name: path.Base(e.Path),
			Hash: e.Hash,
		})
	}

	order := make([]string, 0, len(dirs))
	for d := range dirs {
		order = append(order, d)
	}
	sort.Slice(order, func(i, j int) bool {
		di, dj := depth(order[i]), depth(order[j])
		if di != dj {
			return di > dj
		}
		return order[i] < order[j]
	})

	for _, d := range order {
		build := dirs[d]
		for i, leaf := range build.leaves {
			if leaf.Mode != object.ModeDir {
				continue
			}
			childPath := joinPath(d, leaf.Name)
			child, ok := dirs[childPath]
			if !ok {
				return hash.Hash{}, fmt.Errorf("write tree: missing child directory %q", childPath)
			}
			build.leaves[i].Hash = child.hash
		}

		object.SortLeaves(build.leaves)
		h, err := r.Store.WriteTree(&object.Tree{Leaves: build.leaves})
		if err != nil {
			return hash.Hash{}, fmt.Errorf("write tree: directory %q: %w", d, err)
		}
		build.hash = h
	}

	return dirs[""].hash, nil
}

func hasLeaf(leaves []object.TreeLeaf, name string) bool {
	for _, l := range leaves {
		if l.Name == name && l.Mode == object.ModeDir {
			return true
		}
	}
	return false
}

func parentPath(p string) string {
	idx := strings.LastIndexByte(p, '/')
	if idx < 0 {
		return ""
	}
	return p[:idx]
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func depth(p string) int {
	if p == "" {
		return 0
	}
	return strings.Count(p, "/") + 1
}

// leafMode maps an index entry's packed-mode field to the tree leaf mode
// string for regular, executable, and symlink files. Directories never
// appear as index entries; that leaf kind is synthesized by the builder.
func leafMode(mode uint32) string {
	switch mode & 0o170000 {
	case 0o120000:
		return object.ModeSymlink
	case 0o160000:
		return object.ModeGitlink
	default:
		if mode&0o111 != 0 {
			return object.ModeExecutable
		}
		return object.ModeFile
	}
}
