// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xdg resolves the XDG Base Directory locations used by sfkit: the
// config directory for config.toml and the state directory for the log file.
package xdg

import (
	"os"
	"path/filepath"
)

// App is the directory name created under each XDG base.
const App = "sfkit"

// ConfigDir returns $XDG_CONFIG_HOME/sfkit, falling back to ~/.config/sfkit.
// The directory is created with private permissions (0700) if missing.
func ConfigDir() (string, error) {
	return ensure("XDG_CONFIG_HOME", ".config")
}

// StateDir returns $XDG_STATE_HOME/sfkit, falling back to ~/.local/state/sfkit.
// The directory is created with private permissions (0700) if missing.
func StateDir() (string, error) {
	return ensure("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func ensure(env, homeRel string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeRel)
	}
	dir := filepath.Join(base, App)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
