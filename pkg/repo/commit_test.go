package repo

import (
	"testing"

	"github.com/odvcencio/gitcore/pkg/hash"
	"github.com/odvcencio/gitcore/pkg/index"
	"github.com/odvcencio/gitcore/pkg/object"
)

func TestWriteBlob_HelloHash(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	h, err := r.Store.WriteBlob(&object.Blob{Data: []byte("hello")})
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}
	want, _ := hash.ParseHex("b6fc4c620b67d95f953a5c1c1230aaab5db5a1b0")
	if h != want {
		t.Fatalf("hash = %s, want %s", h, want)
	}

	blob, err := r.Store.ReadBlob(h)
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	if string(blob.Data) != "hello" {
		t.Errorf("blob data = %q, want %q", blob.Data, "hello")
	}
}

func TestCommit_RootCommit(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	idx, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	idx.Upsert(blobEntry(r, "a.txt", "hello"))
	if err := r.WriteIndex(idx); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}

	sig := object.Signature{Name: "tester", Email: "t@example.com", Timestamp: 1000, TZOffset: "+0000"}
	h, err := r.Commit(CommitOptions{Message: "root", Author: sig})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	c, err := r.Store.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c.Parents) != 0 {
		t.Errorf("root commit parents = %v, want none", c.Parents)
	}

	branchHash, err := r.ResolveRef("master")
	if err != nil {
		t.Fatalf("ResolveRef(master): %v", err)
	}
	if branchHash != h {
		t.Errorf("branch ref = %s, want %s", branchHash, h)
	}
}

func TestCommit_SecondCommitHasParent(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	sig := object.Signature{Name: "tester", Email: "t@example.com", Timestamp: 1000, TZOffset: "+0000"}

	idx, _ := r.ReadIndex()
	idx.Upsert(blobEntry(r, "a.txt", "one"))
	r.WriteIndex(idx)
	c1, err := r.Commit(CommitOptions{Message: "first", Author: sig})
	if err != nil {
		t.Fatalf("Commit 1: %v", err)
	}

	idx2, _ := r.ReadIndex()
	idx2.Upsert(blobEntry(r, "b.txt", "two"))
	r.WriteIndex(idx2)
	c2, err := r.Commit(CommitOptions{Message: "second", Author: sig})
	if err != nil {
		t.Fatalf("Commit 2: %v", err)
	}

	commit2, err := r.Store.ReadCommit(c2)
	if err != nil {
		t.Fatalf("ReadCommit(c2): %v", err)
	}
	if len(commit2.Parents) != 1 || commit2.Parents[0] != c1 {
		t.Errorf("c2 parents = %v, want [%s]", commit2.Parents, c1)
	}
}

func blobEntry(r *Repo, path, content string) index.Entry {
	h, err := r.Store.WriteBlob(&object.Blob{Data: []byte(content)})
	if err != nil {
		panic(err)
	}
	return index.Entry{Path: path, Hash: h, Mode: 0o100644}
}
