// Package object implements the four Git object kinds (blob, tree, commit,
// tag), their canonical framed encoding, and a content-addressed store for
// loose objects.
package object

import "github.com/odvcencio/gitcore/pkg/hash"

// Kind identifies the kind of object stored.
type Kind string

const (
	KindBlob   Kind = "blob"
	KindTree   Kind = "tree"
	KindCommit Kind = "commit"
	KindTag    Kind = "tag"
)

// Tree leaf modes, octal without leading zero in their canonical form.
const (
	ModeDir        = "40000"
	ModeFile       = "100644"
	ModeExecutable = "100755"
	ModeSymlink    = "120000"
	ModeGitlink    = "160000"
)

// Blob holds raw file data, stored verbatim.
type Blob struct {
	Data []byte
}

// TreeLeaf is one entry in a tree object: (mode, name, hash).
type TreeLeaf struct {
	Mode string
	Name string
	Hash hash.Hash
}

// Tree holds an ordered sequence of leaves. The order is significant and is
// not re-derived by the codec; callers are responsible for sorting leaves
// with SortLeaves (see collation.go) before constructing a Tree meant for
// storage.
type Tree struct {
	Leaves []TreeLeaf
}

// Signature is an author/committer/tagger identity: name, email, a
// seconds-since-epoch timestamp, and a timezone offset like "+0000".
type Signature struct {
	Name      string
	Email     string
	Timestamp int64
	TZOffset  string
}

// Commit points at a tree snapshot plus its ancestry and authorship.
type Commit struct {
	Tree      hash.Hash
	Parents   []hash.Hash
	Author    Signature
	Committer Signature
	GPGSig    string
	Message   string
}

// Tag is an annotated tag object pointing at another object.
type Tag struct {
	Object  hash.Hash
	Kind    Kind
	Name    string
	Tagger  Signature
	Message string
}
