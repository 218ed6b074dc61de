package repo

import (
	"fmt"

	"github.com/odvcencio/gitcore/pkg/hash"
	"github.com/odvcencio/gitcore/pkg/refs"
)

// Head returns HEAD as stored, without following it (symbolic or direct).
func (r *Repo) Head() (refs.Reference, error) {
	return r.Refs.Get("HEAD")
}

// ResolveHead follows HEAD through the symbolic chain to a direct (hash)
// reference.
func (r *Repo) ResolveHead() (refs.Reference, error) {
	return r.Refs.Resolve("HEAD")
}

// ResolveRef resolves name the way the repository façade understands
// branch-ish names: "HEAD" and anything already under "refs/" is looked up
// directly, everything else is tried as a branch under refs/heads/.
func (r *Repo) ResolveRef(name string) (hash.Hash, error) {
	full := r.expandRefName(name)
	ref, err := r.Refs.Resolve(full)
	if err != nil {
		return hash.Hash{}, err
	}
	return ref.Hash, nil
}

func (r *Repo) expandRefName(name string) string {
	if name == "HEAD" {
		return name
	}
	if hasRefsPrefix(name) {
		return name
	}
	return "refs/heads/" + name
}

func hasRefsPrefix(name string) bool {
	return len(name) >= 5 && name[:5] == "refs/"
}

// UpdateRef writes name to point directly at h.
func (r *Repo) UpdateRef(name string, h hash.Hash) error {
	return r.Refs.Put(refs.Reference{Name: name, Hash: h})
}

// CurrentBranch reports the short name of the branch HEAD points at, and
// false if HEAD is detached (a direct hash reference).
func (r *Repo) CurrentBranch() (string, bool, error) {
	head, err := r.Head()
	if err != nil {
		return "", false, fmt.Errorf("current branch: %w", err)
	}
	if !head.IsSymbolic() {
		return "", false, nil
	}
	const prefix = "refs/heads/"
	if len(head.Symbolic) <= len(prefix) || head.Symbolic[:len(prefix)] != prefix {
		return head.Symbolic, false, nil
	}
	return head.Symbolic[len(prefix):], true, nil
}
