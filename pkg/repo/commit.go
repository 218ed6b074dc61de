package repo

import (
	"fmt"

	"github.com/odvcencio/gitcore/pkg/hash"
	"github.com/odvcencio/gitcore/pkg/object"
	"github.com/odvcencio/gitcore/pkg/refs"
	"github.com/odvcencio/gitcore/pkg/sign"
)

// CommitOptions configures a single Commit call.
type CommitOptions struct {
	Message   string
	Author    object.Signature
	Committer *object.Signature // defaults to Author when nil
	AutoStage bool              // stage every work-tree file before committing
	Signer    sign.Signer       // optional; nil omits GPGSig
}

// Commit runs the §4.8 commit operation: optionally auto-staging the
// working tree, building the root tree from the index, resolving the
// current HEAD for the parent commit, and updating the branch ref (or
// HEAD directly, when detached).
func (r *Repo) Commit(opts CommitOptions) (hash.Hash, error) {
	idx, err := r.ReadIndex()
	if err != nil {
		return hash.Hash{}, fmt.Errorf("commit: %w", err)
	}

	if opts.AutoStage {
		if err := r.AddDirectory(idx, "", true); err != nil {
			return hash.Hash{}, fmt.Errorf("commit: auto-stage: %w", err)
		}
		if err := r.WriteIndex(idx); err != nil {
			return hash.Hash{}, fmt.Errorf("commit: auto-stage: %w", err)
		}
	}

	treeHash, err := r.WriteTree(idx)
	if err != nil {
		return hash.Hash{}, fmt.Errorf("commit: %w", err)
	}

	var parents []hash.Hash
	headRef, err := r.ResolveHead()
	if err == nil {
		parents = []hash.Hash{headRef.Hash}
	}

	committer := opts.Author
	if opts.Committer != nil {
		committer = *opts.Committer
	}

	c := &object.Commit{
		Tree:      treeHash,
		Parents:   parents,
		Author:    opts.Author,
		Committer: committer,
		Message:   opts.Message,
	}
	if opts.Signer != nil {
		sig, err := opts.Signer(object.MarshalCommit(c))
		if err != nil {
			return hash.Hash{}, fmt.Errorf("commit: sign: %w", err)
		}
		c.GPGSig = sig
	}

	commitHash, err := r.Store.WriteCommit(c)
	if err != nil {
		return hash.Hash{}, fmt.Errorf("commit: %w", err)
	}

	if err := r.updateAfterCommit(commitHash); err != nil {
		return hash.Hash{}, fmt.Errorf("commit: %w", err)
	}

	return commitHash, nil
}

// updateAfterCommit points the current branch at h, or overwrites HEAD
// itself when detached, per spec §9's resolved ambiguity.
func (r *Repo) updateAfterCommit(h hash.Hash) error {
	head, err := r.Head()
	if err != nil {
		return r.Refs.Put(refs.Reference{Name: "HEAD", Hash: h})
	}
	if head.IsSymbolic() {
		return r.Refs.Put(refs.Reference{Name: head.Symbolic, Hash: h})
	}
	return r.Refs.Put(refs.Reference{Name: "HEAD", Hash: h})
}
