// Package index implements the binary staging index file (version 2):
// header, sorted entries, optional extensions, and a trailing checksum.
package index

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/gitcore/pkg/errs"
	"github.com/odvcencio/gitcore/pkg/hash"
)

const (
	magic         = "DIRC"
	version       = 2
	entryBaseSize = 4*10 + 20 + 2 // ten uint32 fields + hash + flags, before path+padding
)

// Flags bit layout within the 16-bit entry flags field.
const (
	flagAssumeValid = 1 << 15
	flagExtended    = 1 << 14
	stageShift      = 12
	stageMask       = 0x3
	nameLenMask     = 0x0FFF
	maxNameLen      = 0x0FFF
)

// Entry is one staged file's metadata and content hash.
type Entry struct {
	Path string

	CTimeSec  uint32
	CTimeNano uint32
	MTimeSec  uint32
	MTimeNano uint32
	Dev       uint32
	Ino       uint32
	Mode      uint32
	UID       uint32
	GID       uint32
	Size      uint32

	Hash hash.Hash

	AssumeValid bool
	Stage       uint8
}

// Index is the in-memory staging area: a flat, ordered list of entries.
type Index struct {
	Entries []Entry
}

// New returns an empty version-2 index, the value ReadFile yields for a
// repository with no index file yet.
func New() *Index {
	return &Index{}
}

// sortEntries orders entries ascending by (path, stage), the order the
// writer must emit them in.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Path != entries[j].Path {
			return entries[i].Path < entries[j].Path
		}
		return entries[i].Stage < entries[j].Stage
	})
}

// Encode serializes idx to the version-2 binary format: header, sorted
// entries with NUL padding to an 8-byte boundary, no extensions, and a
// trailing SHA-1 checksum over everything that precedes it.
func Encode(idx *Index) ([]byte, error) {
	entries := make([]Entry, len(idx.Entries))
	copy(entries, idx.Entries)
	sortEntries(entries)

	var buf bytes.Buffer
	buf.WriteString(magic)
	writeUint32(&buf, version)
	writeUint32(&buf, uint32(len(entries)))

	for _, e := range entries {
		start := buf.Len()

		writeUint32(&buf, e.CTimeSec)
		writeUint32(&buf, e.CTimeNano)
		writeUint32(&buf, e.MTimeSec)
		writeUint32(&buf, e.MTimeNano)
		writeUint32(&buf, e.Dev)
		writeUint32(&buf, e.Ino)
		writeUint32(&buf, e.Mode)
		writeUint32(&buf, e.UID)
		writeUint32(&buf, e.GID)
		writeUint32(&buf, e.Size)
		buf.Write(e.Hash[:])

		// The name-length field caps at 0xFFF; paths at or beyond that are
		// marked with the all-ones value and their real length recovered
		// on decode from the NUL terminator instead.
		nameLen := uint16(len(e.Path))
		if nameLen > maxNameLen {
			nameLen = maxNameLen
		}
		flags := nameLen & nameLenMask
		flags |= uint16(e.Stage&stageMask) << stageShift
		if e.AssumeValid {
			flags |= flagAssumeValid
		}
		writeUint16(&buf, flags)

		buf.WriteString(e.Path)
		buf.WriteByte(0)

		// Pad with NULs so the entry's total size (from `start`) is a
		// multiple of 8.
		written := buf.Len() - start
		pad := (8 - written%8) % 8
		for i := 0; i < pad; i++ {
			buf.WriteByte(0)
		}
	}

	sum := sha1.Sum(buf.Bytes())
	buf.Write(sum[:])

	return buf.Bytes(), nil
}

// Decode parses the version-2 binary format, validating the magic, version,
// entry count, and trailing checksum.
func Decode(data []byte) (*Index, error) {
	if len(data) < 12+sha1.Size {
		return nil, fmt.Errorf("index decode: %w: too short", errs.ErrCorrupt)
	}

	body := data[:len(data)-sha1.Size]
	trailer := data[len(data)-sha1.Size:]

	sum := sha1.Sum(body)
	if !bytes.Equal(sum[:], trailer) {
		return nil, fmt.Errorf("index decode: %w: checksum mismatch", errs.ErrCorrupt)
	}

	if string(body[:4]) != magic {
		return nil, fmt.Errorf("index decode: %w: bad magic %q", errs.ErrCorrupt, body[:4])
	}
	ver := binary.BigEndian.Uint32(body[4:8])
	if ver != version {
		return nil, fmt.Errorf("index decode: %w: unsupported version %d", errs.ErrCorrupt, ver)
	}
	count := binary.BigEndian.Uint32(body[8:12])

	offset := 12
	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		e, n, err := decodeEntry(body[offset:])
		if err != nil {
			return nil, fmt.Errorf("index decode: entry %d: %w", i, err)
		}
		offset += n
		entries = append(entries, e)
	}

	for offset < len(body) {
		if offset+8 > len(body) {
			return nil, fmt.Errorf("index decode: %w: truncated extension header", errs.ErrCorrupt)
		}
		tag := body[offset : offset+4]
		length := binary.BigEndian.Uint32(body[offset+4 : offset+8])
		offset += 8
		if offset+int(length) > len(body) {
			return nil, fmt.Errorf("index decode: %w: truncated extension payload", errs.ErrCorrupt)
		}
		if tag[0] >= 'A' && tag[0] <= 'Z' {
			return nil, fmt.Errorf("index decode: %w: %q", errs.ErrUnknownExtension, tag)
		}
		offset += int(length)
	}

	return &Index{Entries: entries}, nil
}

func decodeEntry(data []byte) (Entry, int, error) {
	if len(data) < entryBaseSize {
		return Entry{}, 0, fmt.Errorf("%w: truncated entry", errs.ErrCorrupt)
	}
	var e Entry
	off := 0
	e.CTimeSec = binary.BigEndian.Uint32(data[off:])
	off += 4
	e.CTimeNano = binary.BigEndian.Uint32(data[off:])
	off += 4
	e.MTimeSec = binary.BigEndian.Uint32(data[off:])
	off += 4
	e.MTimeNano = binary.BigEndian.Uint32(data[off:])
	off += 4
	e.Dev = binary.BigEndian.Uint32(data[off:])
	off += 4
	e.Ino = binary.BigEndian.Uint32(data[off:])
	off += 4
	e.Mode = binary.BigEndian.Uint32(data[off:])
	off += 4
	e.UID = binary.BigEndian.Uint32(data[off:])
	off += 4
	e.GID = binary.BigEndian.Uint32(data[off:])
	off += 4
	e.Size = binary.BigEndian.Uint32(data[off:])
	off += 4
	copy(e.Hash[:], data[off:off+hash.Size])
	off += hash.Size

	flags := binary.BigEndian.Uint16(data[off:])
	off += 2
	if flags&flagExtended != 0 {
		return Entry{}, 0, fmt.Errorf("%w: extended flag set in version 2 entry", errs.ErrCorrupt)
	}
	e.AssumeValid = flags&flagAssumeValid != 0
	e.Stage = uint8((flags >> stageShift) & stageMask)
	nameLen := int(flags & nameLenMask)

	var consumedInEntry int
	if nameLen == maxNameLen {
		// Length field saturated; the real length is whatever precedes
		// the NUL terminator.
		nulOffset := bytes.IndexByte(data[off:], 0)
		if nulOffset < 0 {
			return Entry{}, 0, fmt.Errorf("%w: unterminated long path", errs.ErrCorrupt)
		}
		e.Path = string(data[off : off+nulOffset])
		consumedInEntry = off + nulOffset + 1
	} else {
		if off+nameLen > len(data) {
			return Entry{}, 0, fmt.Errorf("%w: truncated path", errs.ErrCorrupt)
		}
		e.Path = string(data[off : off+nameLen])
		consumedInEntry = off + nameLen + 1
	}

	// Advance past the path and its NUL terminator, then to the next
	// 8-byte boundary measured from the start of the entry.
	pad := (8 - consumedInEntry%8) % 8
	total := consumedInEntry + pad
	if total > len(data) {
		return Entry{}, 0, fmt.Errorf("%w: truncated entry padding", errs.ErrCorrupt)
	}

	return e, total, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}

// ReadFile loads the index at path. A missing file yields a fresh empty
// index rather than an error.
func ReadFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("index read %s: %w", path, err)
	}
	idx, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("index read %s: %w", path, err)
	}
	return idx, nil
}

// WriteFile atomically writes idx to path via a temp file in the same
// directory followed by a rename.
func WriteFile(path string, idx *Index) error {
	data, err := Encode(idx)
	if err != nil {
		return fmt.Errorf("index write %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("index write %s: tmpfile: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("index write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("index write %s: close: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("index write %s: rename: %w", path, err)
	}
	return nil
}

// Get returns the entry for path at the given stage, if present.
func (idx *Index) Get(path string, stage uint8) (Entry, bool) {
	for _, e := range idx.Entries {
		if e.Path == path && e.Stage == stage {
			return e, true
		}
	}
	return Entry{}, false
}

// Upsert replaces the entry matching (Path, Stage) or appends it.
func (idx *Index) Upsert(e Entry) {
	for i := range idx.Entries {
		if idx.Entries[i].Path == e.Path && idx.Entries[i].Stage == e.Stage {
			idx.Entries[i] = e
			return
		}
	}
	idx.Entries = append(idx.Entries, e)
}

// Remove drops every entry whose path equals path, returning how many were
// removed. It is silent (returns 0, nil error path) when nothing matches,
// per spec §9's note on rmFileFromIndex.
func (idx *Index) Remove(path string) int {
	out := idx.Entries[:0]
	removed := 0
	for _, e := range idx.Entries {
		if e.Path == path {
			removed++
			continue
		}
		out = append(out, e)
	}
	idx.Entries = out
	return removed
}
