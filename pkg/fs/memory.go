package fs

import (
	"io/fs"
	"path"
	"sort"
	"strings"

	"os"
)

// Memory is an in-memory FS implementation for tests.
type Memory struct {
	files map[string][]byte
	dirs  map[string]bool
	times map[string]int64
	modes map[string]uint32
}

// NewMemory returns an empty in-memory filesystem rooted at "/".
func NewMemory() *Memory {
	return &Memory{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"": true, "/": true},
		times: make(map[string]int64),
		modes: make(map[string]uint32),
	}
}

func clean(p string) string {
	return strings.TrimSuffix(path.Clean(p), "/")
}

func (m *Memory) Stat(p string) (FileInfo, error) {
	p = clean(p)
	if data, ok := m.files[p]; ok {
		return memInfo{name: path.Base(p), size: int64(len(data)), modTime: m.times[p], mode: m.modeFor(p)}, nil
	}
	if m.dirs[p] {
		return memInfo{name: path.Base(p), isDir: true, mode: 0o040000}, nil
	}
	return nil, &os.PathError{Op: "stat", Path: p, Err: os.ErrNotExist}
}

func (m *Memory) modeFor(p string) uint32 {
	if mode, ok := m.modes[p]; ok {
		return mode
	}
	return 0o100644
}

// Readlink implements FS. A symlink's recorded content is its target text,
// the same convention WriteFile uses after SetMode marks it as one.
func (m *Memory) Readlink(p string) (string, error) {
	data, err := m.ReadFile(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SetMode records an explicit POSIX mode for path (e.g. 0o100755 for an
// executable, 0o120000 for a symlink), overriding the default 0o100644
// Stat reports for any plain file.
func (m *Memory) SetMode(p string, mode uint32) {
	m.modes[clean(p)] = mode
}

func (m *Memory) ReadFile(p string) ([]byte, error) {
	p = clean(p)
	data, ok := m.files[p]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: p, Err: os.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) WriteFile(p string, data []byte, _ fs.FileMode) error {
	p = clean(p)
	out := make([]byte, len(data))
	copy(out, data)
	m.files[p] = out
	m.MkdirAll(path.Dir(p), 0o755)
	return nil
}

func (m *Memory) Rename(oldPath, newPath string) error {
	oldPath, newPath = clean(oldPath), clean(newPath)
	data, ok := m.files[oldPath]
	if !ok {
		return &os.PathError{Op: "rename", Path: oldPath, Err: os.ErrNotExist}
	}
	m.files[newPath] = data
	delete(m.files, oldPath)
	return nil
}

func (m *Memory) MkdirAll(p string, _ fs.FileMode) error {
	p = clean(p)
	for p != "" && p != "." && p != "/" {
		m.dirs[p] = true
		p = path.Dir(p)
	}
	return nil
}

func (m *Memory) ReadDir(p string) ([]DirEntry, error) {
	p = clean(p)
	seen := make(map[string]bool)
	var out []DirEntry
	prefix := p + "/"
	if p == "" {
		prefix = ""
	}
	for f := range m.files {
		if !strings.HasPrefix(f, prefix) || f == p {
			continue
		}
		rest := strings.TrimPrefix(f, prefix)
		name := rest
		isDir := false
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			name = rest[:idx]
			isDir = true
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, DirEntry{Name: name, IsDir: isDir})
		}
	}
	for d := range m.dirs {
		if !strings.HasPrefix(d, prefix) || d == p || d == "" {
			continue
		}
		rest := strings.TrimPrefix(d, prefix)
		if strings.Contains(rest, "/") {
			continue
		}
		if !seen[rest] {
			seen[rest] = true
			out = append(out, DirEntry{Name: rest, IsDir: true})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SetModTime sets the modification time recorded for path, for tests that
// care about stat-based metadata.
func (m *Memory) SetModTime(p string, unixSec int64) {
	m.times[clean(p)] = unixSec
}

type memInfo struct {
	name    string
	size    int64
	isDir   bool
	modTime int64
	mode    uint32
}

func (i memInfo) Name() string    { return i.name }
func (i memInfo) Size() int64     { return i.size }
func (i memInfo) IsDir() bool     { return i.isDir }
func (i memInfo) ModTime() int64      { return i.modTime }
func (i memInfo) ModTimeNano() uint32 { return 0 }
func (i memInfo) Mode() uint32    { return i.mode }
func (i memInfo) IsSymlink() bool { return i.mode&0o170000 == 0o120000 }

// Dev, Ino, UID, and GID are always zero: an in-memory filesystem has no
// underlying device or inode, and runs as no particular user.
func (i memInfo) Dev() uint32 { return 0 }
func (i memInfo) Ino() uint32 { return 0 }
func (i memInfo) UID() uint32 { return 0 }
func (i memInfo) GID() uint32 { return 0 }
