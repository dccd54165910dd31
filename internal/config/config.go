// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets go to the OS keychain.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sfkit/cli/internal/xdg"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Config holds non-sensitive CLI settings.
type Config struct {
	Warehouse WarehouseConfig `toml:"warehouse"`
	Download  DownloadConfig  `toml:"download"`
	Notify    NotifyConfig    `toml:"notify"`
}

// WarehouseConfig selects how sessions are opened.
type WarehouseConfig struct {
	Account       string `toml:"account"`
	Authenticator string `toml:"authenticator"`
	User          string `toml:"user"`
	TechLogin     string `toml:"tech_login"`
	Warehouse     string `toml:"warehouse"`
	Role          string `toml:"role"`
	DSN           string `toml:"dsn"`
}

// DownloadConfig holds paginated download defaults.
type DownloadConfig struct {
	Depth    int    `toml:"depth"`
	Batch    int    `toml:"batch"`
	RawDir   string `toml:"raw_dir"`
	FullDir  string `toml:"full_dir"`
	FileName string `toml:"file_name"`
}

// NotifyConfig holds webhook delivery settings. The webhook URL itself is a
// secret and only read from the environment or keychain.
type NotifyConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Defaults returns the settings used when no file exists.
func Defaults() Config {
	return Config{
		Warehouse: WarehouseConfig{Account: "prod", Authenticator: "externalbrowser"},
		Download: DownloadConfig{
			Depth:    10,
			Batch:    1_000_000,
			RawDir:   "data/raw",
			FullDir:  "data/",
			FileName: "data",
		},
		Notify: NotifyConfig{TimeoutSeconds: 10},
	}
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads configuration from p, or from Path when p is empty, and applies
// environment overrides. A missing file yields defaults.
func Load(p string) (Config, error) {
	c := Defaults()
	if p == "" {
		var err error
		if p, err = Path(); err != nil {
			return c, err
		}
	}
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := toml.Unmarshal(data, &c); err != nil {
			return c, err
		}
	}
	applyEnv(&c)
	return c, nil
}

// Env variable names read by Load.
const (
	EnvAccount   = "SFKIT_ACCOUNT"
	EnvUser      = "SFKIT_USER"
	EnvDSN       = "SFKIT_DSN"
	EnvTechLogin = "SFKIT_TECH_LOGIN"
	EnvDepth     = "SFKIT_DOWNLOAD_DEPTH"
	EnvBatch     = "SFKIT_DOWNLOAD_BATCH"
)

func applyEnv(c *Config) {
	for env, dst := range map[string]*string{
		EnvAccount:   &c.Warehouse.Account,
		EnvUser:      &c.Warehouse.User,
		EnvDSN:       &c.Warehouse.DSN,
		EnvTechLogin: &c.Warehouse.TechLogin,
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = v
		}
	}
	for env, dst := range map[string]*int{
		EnvDepth: &c.Download.Depth,
		EnvBatch: &c.Download.Batch,
	} {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(env))); err == nil && n > 0 {
			*dst = n
		}
	}
}

// Save writes configuration to p, or to Path when p is empty, with 0600 permissions.
func Save(p string, c Config) error {
	if p == "" {
		var err error
		if p, err = Path(); err != nil {
			return err
		}
	}
	b, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
