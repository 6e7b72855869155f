// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for pony-tui.
//
// Supports TOML configuration with sensible defaults and environment
// variable overrides.
//
// Configuration file location:
//   - ~/.pony/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete pony-tui configuration.
type Config struct {
	// API configuration
	API APIConfig `toml:"api"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`
}

// APIConfig contains the remote API settings.
type APIConfig struct {
	// BaseURL is the base endpoint of the Pony Express API.
	// Overridable with the PONY_API_URL environment variable.
	BaseURL string `toml:"base_url"`
}

// UIConfig contains display settings.
type UIConfig struct {
	// RenderMarkdown renders message text through a markdown renderer.
	RenderMarkdown bool `toml:"render_markdown"`
	// CaseSensitiveFilter makes the chat list filter case-sensitive.
	CaseSensitiveFilter bool `toml:"case_sensitive_filter"`
	// PlaceholderChats is how many "loading..." entries to show before
	// the chat list resolves.
	PlaceholderChats int `toml:"placeholder_chats"`
}

// StorageConfig contains local persistence settings.
type StorageConfig struct {
	// DataDir holds the token file and the offline snapshot database.
	// Default: ~/.pony
	DataDir string `toml:"data_dir"`
	// OfflineSnapshot enables the local snapshot of chats and messages.
	OfflineSnapshot bool `toml:"offline_snapshot"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultBaseURL is the local development address of the API.
const DefaultBaseURL = "http://127.0.0.1:8000"

// EnvBaseURL is the environment variable that overrides the API base URL.
const EnvBaseURL = "PONY_API_URL"

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
		},
		UI: UIConfig{
			RenderMarkdown:      false,
			CaseSensitiveFilter: true,
			PlaceholderChats:    3,
		},
		Storage: StorageConfig{
			DataDir:         defaultDataDir(),
			OfflineSnapshot: true,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pony"
	}
	return filepath.Join(home, ".pony")
}

// =============================================================================
// LOADING
// =============================================================================

var loadMu sync.Mutex

// Path returns the config file location under the data dir.
func Path() string {
	return filepath.Join(defaultDataDir(), "config.toml")
}

// Load reads the configuration file, fills defaults for zero values, and
// applies environment overrides. A missing file is not an error; the
// defaults are returned.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads a configuration file from an explicit path.
func LoadFrom(path string) (*Config, error) {
	loadMu.Lock()
	defer loadMu.Unlock()

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to defaults.
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.fillDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults restores defaults for fields the file left zero.
func (c *Config) fillDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = defaultDataDir()
	}
	if c.UI.PlaceholderChats <= 0 {
		c.UI.PlaceholderChats = 3
	}
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.API.BaseURL = v
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api.base_url %q: %w", c.API.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api.base_url %q: scheme must be http or https", c.API.BaseURL)
	}
	return nil
}

// =============================================================================
// DERIVED PATHS
// =============================================================================

// TokenPath is where the session token is persisted across restarts.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Storage.DataDir, "token")
}

// SnapshotPath is the offline snapshot database location.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.Storage.DataDir, "snapshot.db")
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration back to the given path in TOML form.
func (c *Config) Save(path string) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
