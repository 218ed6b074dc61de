package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/gitcore/pkg/config"
	"github.com/odvcencio/gitcore/pkg/errs"
	"github.com/odvcencio/gitcore/pkg/refs"
)

const defaultDescription = "Unnamed repository; edit this file 'description' to name the repository.\n"

// Init creates a new repository at path: the metadata directory with
// branches/, objects/pack/, refs/heads/, refs/tags/, a default
// description, HEAD pointing at refs/heads/master, and a minimal config.
// Fails with ErrConflict if a metadata directory already exists.
func Init(path string) (*Repo, error) {
	gitDir := filepath.Join(path, MetaDirName)

	if _, err := os.Stat(gitDir); err == nil {
		return nil, fmt.Errorf("init %q: %w: repository already exists", gitDir, errs.ErrConflict)
	}

	dirs := []string{
		filepath.Join(gitDir, "branches"),
		filepath.Join(gitDir, "objects", "pack"),
		filepath.Join(gitDir, "refs", "heads"),
		filepath.Join(gitDir, "refs", "tags"),
		filepath.Join(gitDir, "refs", "remotes"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	if err := os.WriteFile(filepath.Join(gitDir, "description"), []byte(defaultDescription), 0o644); err != nil {
		return nil, fmt.Errorf("init: write description: %w", err)
	}

	r := open(path, gitDir)

	if err := r.Refs.Put(refs.Reference{Name: "HEAD", Symbolic: "refs/heads/master"}); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	if err := r.WriteConfig(config.New()); err != nil {
		return nil, fmt.Errorf("init: write config: %w", err)
	}

	return r, nil
}
