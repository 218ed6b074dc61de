// Package repo implements the repository façade: binding an object store
// and a reference store to a working-tree path, and the high-level
// plumbing operations (add, write-tree, commit, resolve-reference,
// ahead-count) built as pure transformations over them.
package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/gitcore/pkg/config"
	"github.com/odvcencio/gitcore/pkg/errs"
	"github.com/odvcencio/gitcore/pkg/fs"
	"github.com/odvcencio/gitcore/pkg/index"
	"github.com/odvcencio/gitcore/pkg/object"
	"github.com/odvcencio/gitcore/pkg/refs"
)

// MetaDirName is the name of the repository metadata directory within the
// work-tree, ".git" by convention.
const MetaDirName = ".git"

// Repo represents an opened gitcore repository.
type Repo struct {
	RootDir string // working-tree root
	GitDir  string // metadata directory, RootDir/.git

	Store *object.Store
	Refs  *refs.Store

	FS fs.FS
}

func open(rootDir, gitDir string) *Repo {
	return &Repo{
		RootDir: rootDir,
		GitDir:  gitDir,
		Store:   object.NewStore(gitDir),
		Refs:    refs.NewStore(gitDir),
		FS:      fs.OS{},
	}
}

func (r *Repo) configPath() string {
	return filepath.Join(r.GitDir, "config")
}

func (r *Repo) indexPath() string {
	return filepath.Join(r.GitDir, "index")
}

// ReadConfig loads the repository's typed configuration.
func (r *Repo) ReadConfig() (*config.Config, error) {
	return config.Load(r.configPath())
}

// WriteConfig atomically persists cfg as the repository's configuration.
func (r *Repo) WriteConfig(cfg *config.Config) error {
	return config.Save(r.configPath(), cfg)
}

// ReadIndex loads the repository's staging index. A missing index file
// yields a fresh empty one.
func (r *Repo) ReadIndex() (*index.Index, error) {
	return index.ReadFile(r.indexPath())
}

// WriteIndex atomically persists idx as the repository's staging index.
func (r *Repo) WriteIndex(idx *index.Index) error {
	return index.WriteFile(r.indexPath(), idx)
}

// Open searches upward from startPath for a metadata directory and opens
// the repository it finds, per spec §6's root-discovery rule.
func Open(startPath string) (*Repo, error) {
	root, err := FindRoot(startPath)
	if err != nil {
		return nil, err
	}
	return open(root, filepath.Join(root, MetaDirName)), nil
}

// FindRoot walks upward from startPath until it finds a directory
// containing a metadata subdirectory, returning that containing directory.
func FindRoot(startPath string) (string, error) {
	abs, err := filepath.Abs(startPath)
	if err != nil {
		return "", fmt.Errorf("find root: %w", err)
	}

	cur := abs
	for {
		gitDir := filepath.Join(cur, MetaDirName)
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("find root %q: %w", startPath, errs.ErrInvalidRepository)
		}
		cur = parent
	}
}
