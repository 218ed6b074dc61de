package repo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/gitcore/pkg/errs"
	"github.com/odvcencio/gitcore/pkg/hash"
	"github.com/odvcencio/gitcore/pkg/refs"
)

// CreateBranch creates refs/heads/<name> pointing at target. Fails with
// Conflict if the branch already exists.
func (r *Repo) CreateBranch(name string, target hash.Hash) error {
	refName := "refs/heads/" + name
	if _, err := r.Refs.Get(refName); err == nil {
		return fmt.Errorf("create branch %q: %w", name, errs.ErrConflict)
	}
	if err := r.Refs.Put(refs.Reference{Name: refName, Hash: target}); err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// DeleteBranch removes refs/heads/<name>. Fails if name is the current
// branch or does not exist.
func (r *Repo) DeleteBranch(name string) error {
	current, onBranch, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if onBranch && current == name {
		return fmt.Errorf("delete branch %q: cannot delete current branch", name)
	}
	if err := r.Refs.Delete("refs/heads/" + name); err != nil {
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	return nil
}

// ListBranches returns every refs/heads/<name> short name, sorted.
func (r *Repo) ListBranches() ([]string, error) {
	list, err := r.Refs.List("refs/heads/")
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	names := make([]string, 0, len(list))
	for _, ref := range list {
		names = append(names, strings.TrimPrefix(ref.Name, "refs/heads/"))
	}
	sort.Strings(names)
	return names, nil
}
