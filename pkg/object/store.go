package object

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/odvcencio/gitcore/pkg/errs"
	"github.com/odvcencio/gitcore/pkg/hash"
)

// Store is a content-addressed store for loose objects, fanned out two hex
// characters deep under <root>/objects/.
type Store struct {
	root string
}

// NewStore returns a Store rooted at the given metadata directory (the
// directory that itself contains objects/, refs/, HEAD, ...).
func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) objectPath(h hash.Hash) string {
	hex := h.String()
	return filepath.Join(s.root, "objects", hex[:2], hex[2:])
}

// Exists reports whether the store already holds an object under h.
func (s *Store) Exists(h hash.Hash) bool {
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write serializes kind/payload to the canonical framed form, zlib-
// compresses it, and stores it under its content hash. If an object with
// that hash already exists, the write is a no-op (content addressing makes
// it idempotent).
func (s *Store) Write(kind Kind, payload []byte) (hash.Hash, error) {
	framed := Frame(kind, payload)
	h := hash.Compute(framed)

	if s.Exists(h) {
		return h, nil
	}

	dir := filepath.Join(s.root, "objects", h.String()[:2])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return hash.Hash{}, fmt.Errorf("object write: mkdir %s: %w", dir, err)
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(framed); err != nil {
		zw.Close()
		return hash.Hash{}, fmt.Errorf("object write: compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return hash.Hash{}, fmt.Errorf("object write: close compressor: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return hash.Hash{}, fmt.Errorf("object write: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return hash.Hash{}, fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return hash.Hash{}, fmt.Errorf("object write: close: %w", err)
	}

	dest := s.objectPath(h)
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return hash.Hash{}, fmt.Errorf("object write: rename: %w", err)
	}
	return h, nil
}

// Object is a decoded loose object: its kind plus the canonical payload
// bytes (not the framed or compressed form).
type Object struct {
	Kind    Kind
	Payload []byte
}

// Read loads and decodes the object stored under h, verifying that the
// recomputed hash of its framed bytes matches h.
func (s *Store) Read(h hash.Hash) (*Object, error) {
	path := s.objectPath(h)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object read %s: %w", h, errs.ErrMissing)
		}
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w: zlib: %v", h, errs.ErrCorrupt, err)
	}
	defer zr.Close()

	framed, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w: decompress: %v", h, errs.ErrCorrupt, err)
	}

	kind, payload, err := Unframe(framed)
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}

	if got := hash.Compute(framed); got != h {
		return nil, fmt.Errorf("object read %s: %w: computed hash %s", h, errs.ErrCorrupt, got)
	}

	return &Object{Kind: kind, Payload: payload}, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (hash.Hash, error) {
	return s.Write(KindBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h hash.Hash) (*Blob, error) {
	obj, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if obj.Kind != KindBlob {
		return nil, fmt.Errorf("object %s: expected blob, got %s", h, obj.Kind)
	}
	return UnmarshalBlob(obj.Payload)
}

// WriteTree serializes and stores a Tree. Leaves must already be in
// collation order; WriteTree does not re-sort them.
func (s *Store) WriteTree(t *Tree) (hash.Hash, error) {
	return s.Write(KindTree, MarshalTree(t))
}

// ReadTree reads and deserializes a Tree.
func (s *Store) ReadTree(h hash.Hash) (*Tree, error) {
	obj, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if obj.Kind != KindTree {
		return nil, fmt.Errorf("object %s: expected tree, got %s", h, obj.Kind)
	}
	return UnmarshalTree(obj.Payload)
}

// WriteCommit serializes and stores a Commit.
func (s *Store) WriteCommit(c *Commit) (hash.Hash, error) {
	return s.Write(KindCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a Commit.
func (s *Store) ReadCommit(h hash.Hash) (*Commit, error) {
	obj, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if obj.Kind != KindCommit {
		return nil, fmt.Errorf("object %s: expected commit, got %s", h, obj.Kind)
	}
	return UnmarshalCommit(obj.Payload)
}

// WriteTag serializes and stores a Tag.
func (s *Store) WriteTag(t *Tag) (hash.Hash, error) {
	return s.Write(KindTag, MarshalTag(t))
}

// ReadTag reads and deserializes a Tag.
func (s *Store) ReadTag(h hash.Hash) (*Tag, error) {
	obj, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if obj.Kind != KindTag {
		return nil, fmt.Errorf("object %s: expected tag, got %s", h, obj.Kind)
	}
	return UnmarshalTag(obj.Payload)
}
