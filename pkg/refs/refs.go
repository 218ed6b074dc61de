// Package refs implements the reference store: named pointers, either
// direct (to a hash) or symbolic (to another reference name), persisted as
// small text files under a fixed directory layout plus an optional
// packed-refs file.
package refs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/odvcencio/gitcore/pkg/errs"
	"github.com/odvcencio/gitcore/pkg/hash"
)

const maxResolveDepth = 10

const (
	lockRetryDelay = 5 * time.Millisecond
	lockWaitLimit  = 2 * time.Second
)

// acquireLock creates lockPath exclusively, retrying while it is held by
// another writer until lockWaitLimit elapses. Mirrors the teacher's
// acquireRefLock: O_EXCL create, short poll, timeout.
func acquireLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(lockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(lockRetryDelay)
			continue
		}
		return nil, err
	}
}

// Reference is a tagged variant: exactly one of Hash or Symbolic is set.
type Reference struct {
	Name     string
	Hash     hash.Hash
	Symbolic string // target reference name; empty when this is a hash ref
}

// IsSymbolic reports whether r points at another reference name rather
// than a hash directly.
func (r Reference) IsSymbolic() bool {
	return r.Symbolic != ""
}

// Store is the reference store rooted at a repository's metadata directory.
type Store struct {
	root string // the metadata directory, e.g. .git
}

// NewStore returns a Store rooted at the given metadata directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Get looks up name, first as a loose ref file and then in packed-refs.
func (s *Store) Get(name string) (Reference, error) {
	ref, err := s.readLoose(name)
	if err == nil {
		return ref, nil
	}
	if !os.IsNotExist(err) {
		return Reference{}, err
	}

	packed, err := s.readPackedRefs()
	if err != nil {
		return Reference{}, err
	}
	if h, ok := packed[name]; ok {
		return Reference{Name: name, Hash: h}, nil
	}

	return Reference{}, fmt.Errorf("ref %q: %w", name, errs.ErrMissing)
}

func (s *Store) readLoose(name string) (Reference, error) {
	data, rerr := os.ReadFile(s.path(name))
	if rerr != nil {
		return Reference{}, rerr
	}
	content := strings.TrimRight(string(data), "\n")
	if target, ok := strings.CutPrefix(content, "ref: "); ok {
		return Reference{Name: name, Symbolic: strings.TrimSpace(target)}, nil
	}
	h, err := hash.ParseHex(content)
	if err != nil {
		return Reference{}, fmt.Errorf("ref %q: %w: %v", name, errs.ErrCorrupt, err)
	}
	return Reference{Name: name, Hash: h}, nil
}

// Put always writes a loose ref file, overriding any packed entry of the
// same name, via the teacher's lockfile pattern: a "<ref>.lock" file opened
// with O_EXCL, written and synced, then renamed onto the ref path.
func (s *Store) Put(ref Reference) error {
	var content string
	if ref.IsSymbolic() {
		content = "ref: " + ref.Symbolic + "\n"
	} else {
		content = ref.Hash.String() + "\n"
	}

	target := s.path(ref.Name)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("put ref %q: mkdir: %w", ref.Name, err)
	}

	lockPath := target + ".lock"
	lockFile, err := acquireLock(lockPath)
	if err != nil {
		return fmt.Errorf("put ref %q: lock: %w", ref.Name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			lockFile.Close()
		}
		if cleanupLock {
			os.Remove(lockPath)
		}
	}()

	if _, err := lockFile.WriteString(content); err != nil {
		return fmt.Errorf("put ref %q: %w", ref.Name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("put ref %q: sync: %w", ref.Name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("put ref %q: close: %w", ref.Name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, target); err != nil {
		return fmt.Errorf("put ref %q: rename: %w", ref.Name, err)
	}
	cleanupLock = false
	return nil
}

// Delete removes the loose ref file for name, holding the same "<ref>.lock"
// lockfile a concurrent Put would use, so the two never race. Any
// packed-refs entry is left untouched.
func (s *Store) Delete(name string) error {
	target := s.path(name)
	lockPath := target + ".lock"
	lockFile, err := acquireLock(lockPath)
	if err != nil {
		return fmt.Errorf("delete ref %q: lock: %w", name, err)
	}
	defer func() {
		lockFile.Close()
		os.Remove(lockPath)
	}()

	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete ref %q: %w", name, errs.ErrMissing)
		}
		return fmt.Errorf("delete ref %q: %w", name, err)
	}
	return nil
}

// List enumerates refs under prefix: loose refs unioned with packed refs
// matching prefix, loose winning on name conflicts.
func (s *Store) List(prefix string) ([]Reference, error) {
	out := make(map[string]Reference)

	packed, err := s.readPackedRefs()
	if err != nil {
		return nil, err
	}
	for name, h := range packed {
		if strings.HasPrefix(name, prefix) {
			out[name] = Reference{Name: name, Hash: h}
		}
	}

	dir := s.path(prefix)
	walkErr := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == dir {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		ref, err := s.readLoose(name)
		if err != nil {
			return err
		}
		out[name] = ref
		return nil
	})
	if walkErr != nil && !os.IsNotExist(walkErr) {
		return nil, fmt.Errorf("list refs %q: %w", prefix, walkErr)
	}

	result := make([]Reference, 0, len(out))
	for _, ref := range out {
		result = append(result, ref)
	}
	return result, nil
}

// Resolve follows name through the symbolic chain to a direct (hash)
// reference. Cycles are detected via a visited set; chains longer than
// maxResolveDepth hops fail with ErrTooDeep.
func (s *Store) Resolve(name string) (Reference, error) {
	visited := make(map[string]bool)
	cur := name
	for depth := 0; ; depth++ {
		if depth >= maxResolveDepth {
			return Reference{}, fmt.Errorf("resolve %q: %w", name, errs.ErrTooDeep)
		}
		if visited[cur] {
			return Reference{}, fmt.Errorf("resolve %q: %w: revisited %q", name, errs.ErrCycleDetected, cur)
		}
		visited[cur] = true

		ref, err := s.Get(cur)
		if err != nil {
			return Reference{}, err
		}
		if !ref.IsSymbolic() {
			return ref, nil
		}
		cur = ref.Symbolic
	}
}

// ---------------------------------------------------------------------------
// packed-refs
// ---------------------------------------------------------------------------

// readPackedRefs parses the packed-refs file, ignoring peeled (^hash)
// continuation lines and comments. A missing file yields an empty map.
func (s *Store) readPackedRefs() (map[string]hash.Hash, error) {
	out := make(map[string]hash.Hash)

	f, err := os.Open(filepath.Join(s.root, "packed-refs"))
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("read packed-refs: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "^") {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("read packed-refs: %w: malformed line %q", errs.ErrCorrupt, line)
		}
		h, err := hash.ParseHex(parts[0])
		if err != nil {
			return nil, fmt.Errorf("read packed-refs: %w: %v", errs.ErrCorrupt, err)
		}
		out[parts[1]] = h
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read packed-refs: %w", err)
	}
	return out, nil
}

// WritePackedRefs rewrites the packed-refs file from scratch with the given
// name -> hash entries, sorted by name, with the standard header comment,
// guarded by a "packed-refs.lock" lockfile.
func (s *Store) WritePackedRefs(entries map[string]hash.Hash) error {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf strings.Builder
	buf.WriteString("# pack-refs with: peeled fully-peeled\n")
	for _, name := range names {
		fmt.Fprintf(&buf, "%s %s\n", entries[name], name)
	}

	path := filepath.Join(s.root, "packed-refs")
	lockPath := path + ".lock"
	lockFile, err := acquireLock(lockPath)
	if err != nil {
		return fmt.Errorf("write packed-refs: lock: %w", err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			lockFile.Close()
		}
		if cleanupLock {
			os.Remove(lockPath)
		}
	}()

	if _, err := lockFile.WriteString(buf.String()); err != nil {
		return fmt.Errorf("write packed-refs: %w", err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("write packed-refs: sync: %w", err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("write packed-refs: close: %w", err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, path); err != nil {
		return fmt.Errorf("write packed-refs: rename: %w", err)
	}
	cleanupLock = false
	return nil
}
