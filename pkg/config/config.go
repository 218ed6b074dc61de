// Package config implements the typed repository configuration model: a
// small INI-style reader/writer for the `config` file under a repository's
// metadata directory, with typed accessors for the sections the core cares
// about (core, remote, branch) plus a generic (section, subsection, key)
// escape hatch for everything else.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// RemoteConfig holds a named remote's URL and fetch refspec.
type RemoteConfig struct {
	URL   string
	Fetch string
}

// BranchConfig holds a local branch's upstream wiring.
type BranchConfig struct {
	Remote string
	Merge  string // full reference name, e.g. refs/heads/main
}

// CoreConfig holds the well-known [core] section fields.
type CoreConfig struct {
	RepositoryFormatVersion int
	FileMode                bool
	Bare                    bool

	// SigningKey names the default SSH private key path pkg/sign resolves
	// a commit or tag signer against when no explicit key is given. Empty
	// means fall back to the usual ~/.ssh candidates.
	SigningKey string
}

type configKey struct {
	section    string
	subsection string
	key        string
}

// Config is the typed repository configuration model.
type Config struct {
	Core     CoreConfig
	Remotes  map[string]*RemoteConfig
	Branches map[string]*BranchConfig

	raw map[configKey]string
}

// New returns a Config with the default [core] section written by Init.
func New() *Config {
	return &Config{
		Core:     CoreConfig{RepositoryFormatVersion: 0, FileMode: false, Bare: false},
		Remotes:  make(map[string]*RemoteConfig),
		Branches: make(map[string]*BranchConfig),
		raw:      make(map[configKey]string),
	}
}

// Get is the generic (section, subsection, key) escape hatch described in
// spec §9. subsection is empty for unsectioned entries like core.*.
func (c *Config) Get(section, subsection, key string) (string, bool) {
	v, ok := c.raw[configKey{section, subsection, key}]
	return v, ok
}

func (c *Config) set(section, subsection, key, value string) {
	if c.raw == nil {
		c.raw = make(map[configKey]string)
	}
	c.raw[configKey{section, subsection, key}] = value
}

// Remote returns the named remote's config, if present.
func (c *Config) Remote(name string) (RemoteConfig, bool) {
	r, ok := c.Remotes[name]
	if !ok {
		return RemoteConfig{}, false
	}
	return *r, true
}

// Branch returns the named branch's upstream config, if present.
func (c *Config) Branch(name string) (BranchConfig, bool) {
	b, ok := c.Branches[name]
	if !ok {
		return BranchConfig{}, false
	}
	return *b, true
}

// SetRemote adds or overwrites a remote's URL and fetch refspec.
func (c *Config) SetRemote(name, url, fetch string) {
	if c.Remotes == nil {
		c.Remotes = make(map[string]*RemoteConfig)
	}
	c.Remotes[name] = &RemoteConfig{URL: url, Fetch: fetch}
	c.set("remote", name, "url", url)
	c.set("remote", name, "fetch", fetch)
}

// SetBranch adds or overwrites a branch's upstream wiring.
func (c *Config) SetBranch(name, remote, merge string) {
	if c.Branches == nil {
		c.Branches = make(map[string]*BranchConfig)
	}
	c.Branches[name] = &BranchConfig{Remote: remote, Merge: merge}
	c.set("branch", name, "remote", remote)
	c.set("branch", name, "merge", merge)
}

// RemoveRemote deletes a remote from the config.
func (c *Config) RemoveRemote(name string) {
	delete(c.Remotes, name)
	delete(c.raw, configKey{"remote", name, "url"})
	delete(c.raw, configKey{"remote", name, "fetch"})
}

// Load parses the INI-style config file at path. A missing file yields a
// fresh default Config (as Init would write), not an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("config load %s: %w", path, err)
	}
	defer f.Close()

	cfg := New()
	var section, subsection string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section, subsection = parseSectionHeader(line[1 : len(line)-1])
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("config load %s: malformed line %q", path, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		cfg.set(section, subsection, key, value)
		applyTyped(cfg, section, subsection, key, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config load %s: %w", path, err)
	}
	return cfg, nil
}

func parseSectionHeader(header string) (section, subsection string) {
	sp := strings.IndexByte(header, ' ')
	if sp < 0 {
		return header, ""
	}
	section = header[:sp]
	subsection = strings.Trim(header[sp+1:], `"`)
	return section, subsection
}

func applyTyped(cfg *Config, section, subsection, key, value string) {
	switch section {
	case "core":
		switch key {
		case "repositoryformatversion":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.Core.RepositoryFormatVersion = n
			}
		case "filemode":
			cfg.Core.FileMode = value == "true"
		case "bare":
			cfg.Core.Bare = value == "true"
		case "signingkey":
			cfg.Core.SigningKey = value
		}
	case "remote":
		r, ok := cfg.Remotes[subsection]
		if !ok {
			r = &RemoteConfig{}
			cfg.Remotes[subsection] = r
		}
		switch key {
		case "url":
			r.URL = value
		case "fetch":
			r.Fetch = value
		}
	case "branch":
		b, ok := cfg.Branches[subsection]
		if !ok {
			b = &BranchConfig{}
			cfg.Branches[subsection] = b
		}
		switch key {
		case "remote":
			b.Remote = value
		case "merge":
			b.Merge = value
		}
	}
}

// Save atomically writes cfg to path in INI format: [core] first, then
// remotes and branches sorted by name for deterministic output.
func Save(path string, cfg *Config) error {
	var buf strings.Builder
	fmt.Fprintf(&buf, "[core]\n")
	fmt.Fprintf(&buf, "\trepositoryformatversion = %d\n", cfg.Core.RepositoryFormatVersion)
	fmt.Fprintf(&buf, "\tfilemode = %t\n", cfg.Core.FileMode)
	fmt.Fprintf(&buf, "\tbare = %t\n", cfg.Core.Bare)
	if cfg.Core.SigningKey != "" {
		fmt.Fprintf(&buf, "\tsigningkey = %s\n", cfg.Core.SigningKey)
	}

	remoteNames := make([]string, 0, len(cfg.Remotes))
	for name := range cfg.Remotes {
		remoteNames = append(remoteNames, name)
	}
	sort.Strings(remoteNames)
	for _, name := range remoteNames {
		r := cfg.Remotes[name]
		fmt.Fprintf(&buf, "[remote %q]\n", name)
		fmt.Fprintf(&buf, "\turl = %s\n", r.URL)
		fmt.Fprintf(&buf, "\tfetch = %s\n", r.Fetch)
	}

	branchNames := make([]string, 0, len(cfg.Branches))
	for name := range cfg.Branches {
		branchNames = append(branchNames, name)
	}
	sort.Strings(branchNames)
	for _, name := range branchNames {
		b := cfg.Branches[name]
		fmt.Fprintf(&buf, "[branch %q]\n", name)
		fmt.Fprintf(&buf, "\tremote = %s\n", b.Remote)
		fmt.Fprintf(&buf, "\tmerge = %s\n", b.Merge)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("config save %s: tmpfile: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(buf.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("config save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("config save %s: close: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("config save %s: rename: %w", path, err)
	}
	return nil
}
