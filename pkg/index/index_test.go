package index

import (
	"crypto/sha1"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/gitcore/pkg/hash"
)

func mkHash(b byte) hash.Hash {
	var h hash.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func TestEmptyIndexRoundTrip(t *testing.T) {
	idx := New()
	data, err := Encode(idx)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out.Entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(out.Entries))
	}
}

func TestRoundTripSortsByPathThenStage(t *testing.T) {
	idx := &Index{Entries: []Entry{
		{Path: "sub/b.txt", Hash: mkHash(2), Mode: 0o100644},
		{Path: "a.txt", Hash: mkHash(1), Mode: 0o100644},
		{Path: "a.txt", Hash: mkHash(3), Mode: 0o100644, Stage: 1},
	}}
	data, err := Encode(idx)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(out.Entries))
	}
	want := []struct {
		path  string
		stage uint8
	}{
		{"a.txt", 0}, {"a.txt", 1}, {"sub/b.txt", 0},
	}
	for i, w := range want {
		if out.Entries[i].Path != w.path || out.Entries[i].Stage != w.stage {
			t.Errorf("entry %d = (%s, %d), want (%s, %d)", i, out.Entries[i].Path, out.Entries[i].Stage, w.path, w.stage)
		}
	}
}

func TestEntryFieldsPreserved(t *testing.T) {
	e := Entry{
		Path:      "file.go",
		CTimeSec:  111, CTimeNano: 222,
		MTimeSec: 333, MTimeNano: 444,
		Dev: 5, Ino: 6, Mode: 0o100644, UID: 7, GID: 8, Size: 9000,
		Hash:        mkHash(0xAB),
		AssumeValid: true,
		Stage:       2,
	}
	idx := &Index{Entries: []Entry{e}}
	data, err := Encode(idx)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := out.Entries[0]
	if got != e {
		t.Errorf("entry round trip mismatch:\ngot  %+v\nwant %+v", got, e)
	}
}

func TestEncodeEntrySizeIsEightByteAligned(t *testing.T) {
	for _, name := range []string{"a", "ab", "abc", "abcdefg", "abcdefgh", "a/b/longer/path.txt"} {
		idx := &Index{Entries: []Entry{{Path: name, Hash: mkHash(1)}}}
		data, err := Encode(idx)
		if err != nil {
			t.Fatalf("Encode(%q): %v", name, err)
		}
		entryBytes := len(data) - 12 - 20 // minus header minus trailer
		if entryBytes%8 != 0 {
			t.Errorf("path %q: entry size %d not 8-byte aligned", name, entryBytes)
		}
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	idx := New()
	data, _ := Encode(idx)
	corrupt := append([]byte{}, data...)
	corrupt[0] = 'X'
	if _, err := Decode(corrupt); err == nil {
		t.Error("expected error for bad magic")
	}
}

func TestDecodeRejectsBadChecksum(t *testing.T) {
	idx := &Index{Entries: []Entry{{Path: "a.txt", Hash: mkHash(1)}}}
	data, _ := Encode(idx)
	corrupt := append([]byte{}, data...)
	corrupt[len(corrupt)-1] ^= 0xFF
	if _, err := Decode(corrupt); err == nil {
		t.Error("expected error for bad checksum")
	}
}

func TestDecodeRejectsUnknownMandatoryExtension(t *testing.T) {
	idx := New()
	data, _ := Encode(idx)
	body := data[:len(data)-20]
	// Append a mandatory (uppercase tag) extension with zero-length payload.
	ext := append([]byte("TEST"), 0, 0, 0, 0)
	body = append(body, ext...)
	sum := sha1Sum(body)
	full := append(body, sum...)
	if _, err := Decode(full); err == nil {
		t.Error("expected error for unknown mandatory extension")
	}
}

func TestReadFileMissingYieldsEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	idx, err := ReadFile(filepath.Join(dir, "index"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(idx.Entries) != 0 {
		t.Errorf("expected empty index, got %d entries", len(idx.Entries))
	}
}

func TestWriteFileThenReadFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index")
	idx := &Index{Entries: []Entry{
		{Path: "a.txt", Hash: mkHash(1)},
		{Path: "sub/b.txt", Hash: mkHash(2)},
	}}
	if err := WriteFile(path, idx); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	out, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(out.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(out.Entries))
	}
}

func TestRoundTripLongPathBeyondNameLenMask(t *testing.T) {
	long := "a/" + strings.Repeat("x", maxNameLen+50) + ".txt"
	idx := &Index{Entries: []Entry{{Path: long, Hash: mkHash(9)}}}
	data, err := Encode(idx)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(out.Entries))
	}
	if out.Entries[0].Path != long {
		t.Errorf("path round trip mismatch: got len %d, want len %d", len(out.Entries[0].Path), len(long))
	}
}

func TestUpsertAndRemove(t *testing.T) {
	idx := New()
	idx.Upsert(Entry{Path: "a.txt", Hash: mkHash(1)})
	idx.Upsert(Entry{Path: "a.txt", Hash: mkHash(2)})
	if len(idx.Entries) != 1 {
		t.Fatalf("expected upsert to replace, got %d entries", len(idx.Entries))
	}
	got, ok := idx.Get("a.txt", 0)
	if !ok || got.Hash != mkHash(2) {
		t.Errorf("Get after upsert = %+v, ok=%v", got, ok)
	}

	n := idx.Remove("a.txt")
	if n != 1 {
		t.Errorf("Remove returned %d, want 1", n)
	}
	if n := idx.Remove("a.txt"); n != 0 {
		t.Errorf("second Remove returned %d, want 0", n)
	}
}

func sha1Sum(b []byte) []byte {
	sum := sha1.Sum(b)
	return sum[:]
}
