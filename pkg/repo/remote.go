package repo

import (
	"fmt"

	"github.com/odvcencio/gitcore/pkg/config"
	"github.com/odvcencio/gitcore/pkg/errs"
)

const defaultFetchRefspec = "+refs/heads/*:refs/remotes/%s/*"

// AddRemote adds a remote named name with the given URL to the
// repository's config, persisting it immediately. Fails with Conflict if
// a remote with that name already exists. The fetch refspec defaults to
// the standard "+refs/heads/*:refs/remotes/<name>/*" form.
func (r *Repo) AddRemote(name, url string) error {
	cfg, err := r.ReadConfig()
	if err != nil {
		return fmt.Errorf("add remote: %w", err)
	}
	if _, ok := cfg.Remote(name); ok {
		return fmt.Errorf("add remote %q: %w", name, errs.ErrConflict)
	}
	cfg.SetRemote(name, url, fmt.Sprintf(defaultFetchRefspec, name))
	if err := r.WriteConfig(cfg); err != nil {
		return fmt.Errorf("add remote %q: %w", name, err)
	}
	return nil
}

// RemoveRemote deletes the named remote from the repository's config.
// Fails with Missing if it does not exist.
func (r *Repo) RemoveRemote(name string) error {
	cfg, err := r.ReadConfig()
	if err != nil {
		return fmt.Errorf("remove remote: %w", err)
	}
	if _, ok := cfg.Remote(name); !ok {
		return fmt.Errorf("remove remote %q: %w", name, errs.ErrMissing)
	}
	cfg.RemoveRemote(name)
	if err := r.WriteConfig(cfg); err != nil {
		return fmt.Errorf("remove remote %q: %w", name, err)
	}
	return nil
}

// ListRemotes returns every configured remote.
func (r *Repo) ListRemotes() (map[string]config.RemoteConfig, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}
	out := make(map[string]config.RemoteConfig, len(cfg.Remotes))
	for name, rc := range cfg.Remotes {
		out[name] = *rc
	}
	return out, nil
}
