package object

import (
	"bytes"
	"testing"

	"github.com/odvcencio/gitcore/pkg/hash"
)

func TestBlobRoundTrip(t *testing.T) {
	b := &Blob{Data: []byte("hello")}
	out, err := UnmarshalBlob(MarshalBlob(b))
	if err != nil {
		t.Fatalf("UnmarshalBlob: %v", err)
	}
	if !bytes.Equal(out.Data, b.Data) {
		t.Errorf("round trip mismatch: got %q, want %q", out.Data, b.Data)
	}
}

func TestTreeRoundTripPreservesOrder(t *testing.T) {
	h1 := hash.Compute([]byte("a"))
	h2 := hash.Compute([]byte("b"))
	tr := &Tree{Leaves: []TreeLeaf{
		{Mode: ModeDir, Name: "zdir", Hash: h1},
		{Mode: ModeFile, Name: "afile", Hash: h2},
	}}
	encoded := MarshalTree(tr)
	out, err := UnmarshalTree(encoded)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(out.Leaves) != 2 {
		t.Fatalf("got %d leaves, want 2", len(out.Leaves))
	}
	if out.Leaves[0].Name != "zdir" || out.Leaves[1].Name != "afile" {
		t.Errorf("order not preserved: %+v", out.Leaves)
	}
	if !bytes.Equal(MarshalTree(out), encoded) {
		t.Error("re-encoding did not reproduce identical bytes")
	}
}

func TestEmptyTreeHash(t *testing.T) {
	tr := &Tree{}
	framed := Frame(KindTree, MarshalTree(tr))
	got := hash.Compute(framed)
	want := "4b825dc642cb6eb9a060e54bf8d69288fbee4904"
	if got.String() != want {
		t.Errorf("empty tree hash = %s, want %s", got, want)
	}
}

func TestCommitRoundTrip(t *testing.T) {
	c := &Commit{
		Tree:    hash.Compute([]byte("tree")),
		Parents: []hash.Hash{hash.Compute([]byte("p1")), hash.Compute([]byte("p2"))},
		Author: Signature{
			Name: "Ada Lovelace", Email: "ada@example.com",
			Timestamp: 1700000000, TZOffset: "+0000",
		},
		Committer: Signature{
			Name: "Ada Lovelace", Email: "ada@example.com",
			Timestamp: 1700000001, TZOffset: "-0500",
		},
		Message: "initial commit\n",
	}
	encoded := MarshalCommit(c)
	out, err := UnmarshalCommit(encoded)
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if out.Tree != c.Tree {
		t.Errorf("tree = %s, want %s", out.Tree, c.Tree)
	}
	if len(out.Parents) != 2 || out.Parents[0] != c.Parents[0] || out.Parents[1] != c.Parents[1] {
		t.Errorf("parents not preserved: %+v", out.Parents)
	}
	if out.Author != c.Author {
		t.Errorf("author = %+v, want %+v", out.Author, c.Author)
	}
	if out.Committer != c.Committer {
		t.Errorf("committer = %+v, want %+v", out.Committer, c.Committer)
	}
	if out.Message != c.Message {
		t.Errorf("message = %q, want %q", out.Message, c.Message)
	}
	if !bytes.Equal(MarshalCommit(out), encoded) {
		t.Error("re-encoding did not reproduce identical bytes")
	}
}

func TestCommitRootHasNoParents(t *testing.T) {
	c := &Commit{
		Tree:      hash.Compute([]byte("tree")),
		Author:    Signature{Name: "A", Email: "a@example.com", Timestamp: 1, TZOffset: "+0000"},
		Committer: Signature{Name: "A", Email: "a@example.com", Timestamp: 1, TZOffset: "+0000"},
		Message:   "root\n",
	}
	out, err := UnmarshalCommit(MarshalCommit(c))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if len(out.Parents) != 0 {
		t.Errorf("expected no parents, got %v", out.Parents)
	}
}

func TestCommitWithGPGSignatureRoundTrip(t *testing.T) {
	c := &Commit{
		Tree:      hash.Compute([]byte("tree")),
		Author:    Signature{Name: "A", Email: "a@example.com", Timestamp: 1, TZOffset: "+0000"},
		Committer: Signature{Name: "A", Email: "a@example.com", Timestamp: 1, TZOffset: "+0000"},
		GPGSig:    "-----BEGIN SSH SIGNATURE-----\nline one\nline two\n-----END SSH SIGNATURE-----",
		Message:   "signed\n",
	}
	encoded := MarshalCommit(c)
	out, err := UnmarshalCommit(encoded)
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if out.GPGSig != c.GPGSig {
		t.Errorf("gpgsig = %q, want %q", out.GPGSig, c.GPGSig)
	}
	if !bytes.Equal(MarshalCommit(out), encoded) {
		t.Error("re-encoding did not reproduce identical bytes")
	}
}

func TestTagRoundTrip(t *testing.T) {
	tag := &Tag{
		Object: hash.Compute([]byte("target")),
		Kind:   KindCommit,
		Name:   "v1.0.0",
		Tagger: Signature{Name: "Ada", Email: "ada@example.com", Timestamp: 100, TZOffset: "+0000"},
		Message: "release\n",
	}
	encoded := MarshalTag(tag)
	out, err := UnmarshalTag(encoded)
	if err != nil {
		t.Fatalf("UnmarshalTag: %v", err)
	}
	if out.Object != tag.Object || out.Kind != tag.Kind || out.Name != tag.Name || out.Tagger != tag.Tagger || out.Message != tag.Message {
		t.Errorf("tag round trip mismatch: got %+v, want %+v", out, tag)
	}
}

func TestUnframeRejectsMissingNUL(t *testing.T) {
	if _, _, err := Unframe([]byte("blob 5 hello")); err == nil {
		t.Error("expected error for missing NUL")
	}
}

func TestUnframeRejectsSizeMismatch(t *testing.T) {
	bad := Frame(KindBlob, []byte("hello"))
	bad = bad[:len(bad)-1] // drop the last payload byte: header still declares 5, payload is 4
	if _, _, err := Unframe(bad); err == nil {
		t.Error("expected error for size mismatch")
	}
}

func TestUnframeRejectsUnknownKind(t *testing.T) {
	bad := []byte("widget 5\x00hello")
	if _, _, err := Unframe(bad); err == nil {
		t.Error("expected error for unknown kind")
	}
}
