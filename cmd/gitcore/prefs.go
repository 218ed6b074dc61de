package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// prefs holds CLI-only defaults read from ~/.gitcoreconfig.toml. These are
// outside the repository's own config format (pkg/config, an INI-style
// file) entirely; they only set fallbacks for flags like --author.
type prefs struct {
	Author string `toml:"author"`
}

func loadPrefs() prefs {
	home, err := os.UserHomeDir()
	if err != nil {
		return prefs{}
	}
	var p prefs
	path := filepath.Join(home, ".gitcoreconfig.toml")
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return prefs{}
	}
	return p
}
