package repo

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/odvcencio/gitcore/pkg/errs"
	"github.com/odvcencio/gitcore/pkg/index"
	"github.com/odvcencio/gitcore/pkg/object"
)

// relPath converts an absolute or work-tree-relative path to a forward-
// slash path relative to the work-tree root, rejecting anything that
// escapes it or carries "." / ".." components.
func (r *Repo) relPath(p string) (string, error) {
	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.RootDir, p)
	}
	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errs.ErrPathOutsideWorkTree, p)
	}
	if rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s", errs.ErrPathOutsideWorkTree, p)
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part == "." || part == ".." {
			return "", fmt.Errorf("%w: %s", errs.ErrPathOutsideWorkTree, p)
		}
	}
	return filepath.ToSlash(rel), nil
}

// AddFile reads path's contents, writes a blob, and upserts the
// corresponding entry into idx, per spec §4.9.
func (r *Repo) AddFile(idx *index.Index, path string) error {
	relSlash, err := r.relPath(path)
	if err != nil {
		return fmt.Errorf("add file: %w", err)
	}

	absPath := filepath.Join(r.RootDir, filepath.FromSlash(relSlash))
	info, err := r.FS.Stat(absPath)
	if err != nil {
		return fmt.Errorf("add file %q: stat: %w", relSlash, err)
	}

	var data []byte
	if info.IsSymlink() {
		target, err := r.FS.Readlink(absPath)
		if err != nil {
			return fmt.Errorf("add file %q: readlink: %w", relSlash, err)
		}
		data = []byte(target)
	} else {
		data, err = r.FS.ReadFile(absPath)
		if err != nil {
			return fmt.Errorf("add file %q: %w", relSlash, err)
		}
	}

	h, err := r.Store.WriteBlob(&object.Blob{Data: data})
	if err != nil {
		return fmt.Errorf("add file %q: %w", relSlash, err)
	}

	entry, existed := idx.Get(relSlash, 0)
	entry.Path = relSlash
	entry.Hash = h
	entry.Size = uint32(info.Size())
	entry.MTimeSec = uint32(info.ModTime())
	entry.MTimeNano = info.ModTimeNano()
	entry.Mode = info.Mode()
	entry.Dev = info.Dev()
	entry.Ino = info.Ino()
	entry.UID = info.UID()
	entry.GID = info.GID()
	if !existed {
		entry.CTimeSec = entry.MTimeSec
		entry.CTimeNano = entry.MTimeNano
	}
	idx.Upsert(entry)
	return nil
}

// AddDirectory enumerates regular files under dir (recursively when
// recursive is true), skipping the metadata directory, and stages each
// with AddFile.
func (r *Repo) AddDirectory(idx *index.Index, dir string, recursive bool) error {
	relSlash, err := r.relPath(dir)
	if err != nil {
		if dir == "." || dir == "" {
			relSlash = ""
		} else {
			return fmt.Errorf("add directory: %w", err)
		}
	}
	return r.walkDir(idx, relSlash, recursive)
}

func (r *Repo) walkDir(idx *index.Index, relDir string, recursive bool) error {
	absDir := r.RootDir
	if relDir != "" {
		absDir = filepath.Join(r.RootDir, filepath.FromSlash(relDir))
	}
	entries, err := r.FS.ReadDir(absDir)
	if err != nil {
		return fmt.Errorf("add directory %q: %w", relDir, err)
	}
	for _, e := range entries {
		childRel := e.Name
		if relDir != "" {
			childRel = relDir + "/" + e.Name
		}
		if childRel == MetaDirName || strings.HasPrefix(childRel, MetaDirName+"/") {
			continue
		}
		if e.IsDir {
			if !recursive {
				continue
			}
			if err := r.walkDir(idx, childRel, recursive); err != nil {
				return err
			}
			continue
		}
		if err := r.AddFile(idx, childRel); err != nil {
			return err
		}
	}
	return nil
}

// RemoveFile drops every entry in idx whose path equals the normalized
// relative form of path, returning how many entries were removed. It is
// silent when nothing matches, per spec §9's note on rmFileFromIndex.
func (r *Repo) RemoveFile(idx *index.Index, path string) (int, error) {
	relSlash, err := r.relPath(path)
	if err != nil {
		return 0, fmt.Errorf("remove file: %w", err)
	}
	return idx.Remove(relSlash), nil
}
