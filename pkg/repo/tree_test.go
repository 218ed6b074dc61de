package repo

import (
	"testing"

	"github.com/odvcencio/gitcore/pkg/hash"
	"github.com/odvcencio/gitcore/pkg/index"
	"github.com/odvcencio/gitcore/pkg/object"
)

func TestWriteTree_ThreeEntryShape(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	idx := index.New()
	idx.Upsert(index.Entry{Path: "a.txt", Hash: hash.Compute([]byte("a")), Mode: 0o100644})
	idx.Upsert(index.Entry{Path: "sub/b.txt", Hash: hash.Compute([]byte("b")), Mode: 0o100644})
	idx.Upsert(index.Entry{Path: "sub/deep/c.txt", Hash: hash.Compute([]byte("c")), Mode: 0o100644})

	rootHash, err := r.WriteTree(idx)
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}

	root, err := r.Store.ReadTree(rootHash)
	if err != nil {
		t.Fatalf("ReadTree(root): %v", err)
	}
	wantRoot := map[string]string{"a.txt": object.ModeFile, "sub": object.ModeDir}
	assertLeafSet(t, root.Leaves, wantRoot)

	var subHash hash.Hash
	for _, l := range root.Leaves {
		if l.Name == "sub" {
			subHash = l.Hash
		}
	}
	sub, err := r.Store.ReadTree(subHash)
	if err != nil {
		t.Fatalf("ReadTree(sub): %v", err)
	}
	assertLeafSet(t, sub.Leaves, map[string]string{"b.txt": object.ModeFile, "deep": object.ModeDir})

	var deepHash hash.Hash
	for _, l := range sub.Leaves {
		if l.Name == "deep" {
			deepHash = l.Hash
		}
	}
	deep, err := r.Store.ReadTree(deepHash)
	if err != nil {
		t.Fatalf("ReadTree(deep): %v", err)
	}
	assertLeafSet(t, deep.Leaves, map[string]string{"c.txt": object.ModeFile})
}

func TestWriteTree_StableAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	build := func() hash.Hash {
		idx := index.New()
		idx.Upsert(index.Entry{Path: "a.txt", Hash: hash.Compute([]byte("a")), Mode: 0o100644})
		idx.Upsert(index.Entry{Path: "sub/b.txt", Hash: hash.Compute([]byte("b")), Mode: 0o100644})
		h, err := r.WriteTree(idx)
		if err != nil {
			t.Fatalf("WriteTree: %v", err)
		}
		return h
	}

	first := build()
	second := build()
	if first != second {
		t.Errorf("WriteTree not stable: %s != %s", first, second)
	}
}

func TestWriteTree_Empty(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	h, err := r.WriteTree(index.New())
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	want, _ := hash.ParseHex("4b825dc642cb6eb9a060e54bf8d69288fbee4904")
	if h != want {
		t.Errorf("empty tree hash = %s, want %s", h, want)
	}
}

func assertLeafSet(t *testing.T, leaves []object.TreeLeaf, want map[string]string) {
	t.Helper()
	if len(leaves) != len(want) {
		t.Fatalf("leaf count = %d, want %d (%+v)", len(leaves), len(want), leaves)
	}
	for _, l := range leaves {
		mode, ok := want[l.Name]
		if !ok {
			t.Errorf("unexpected leaf %q", l.Name)
			continue
		}
		if l.Mode != mode {
			t.Errorf("leaf %q mode = %q, want %q", l.Name, l.Mode, mode)
		}
	}
}
