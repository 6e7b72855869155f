// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// DEFAULTS TESTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.UI.PlaceholderChats != 3 {
		t.Errorf("PlaceholderChats = %d, want 3", cfg.UI.PlaceholderChats)
	}
	if !cfg.Storage.OfflineSnapshot {
		t.Error("OfflineSnapshot should default to true")
	}
	if cfg.Storage.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
}

// =============================================================================
// LOADING TESTS
// =============================================================================

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.API.BaseURL)
	}
}

func TestLoadFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base_url = "https://chat.example.com"

[ui]
render_markdown = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.API.BaseURL != "https://chat.example.com" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if !cfg.UI.RenderMarkdown {
		t.Error("RenderMarkdown should be true")
	}
	// Unset fields keep their defaults.
	if cfg.UI.PlaceholderChats != 3 {
		t.Errorf("PlaceholderChats = %d, want 3", cfg.UI.PlaceholderChats)
	}
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	t.Setenv(EnvBaseURL, "http://10.0.0.5:9000")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.API.BaseURL != "http://10.0.0.5:9000" {
		t.Errorf("BaseURL = %q, want env override", cfg.API.BaseURL)
	}
}

func TestLoadFrom_InvalidURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[api]\nbase_url = \"ftp://nope\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("non-http scheme should fail validation")
	}
}

// =============================================================================
// ROUND TRIP TESTS
// =============================================================================

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "https://ponyexpress.example.com"
	cfg.UI.CaseSensitiveFilter = false

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if got.API.BaseURL != cfg.API.BaseURL {
		t.Errorf("BaseURL = %q, want %q", got.API.BaseURL, cfg.API.BaseURL)
	}
	if got.UI.CaseSensitiveFilter {
		t.Error("CaseSensitiveFilter should round-trip false")
	}
}

func TestTokenAndSnapshotPaths(t *testing.T) {
	cfg := Default()
	cfg.Storage.DataDir = "/tmp/pony-test"

	if cfg.TokenPath() != filepath.Join("/tmp/pony-test", "token") {
		t.Errorf("TokenPath = %q", cfg.TokenPath())
	}
	if cfg.SnapshotPath() != filepath.Join("/tmp/pony-test", "snapshot.db") {
		t.Errorf("SnapshotPath = %q", cfg.SnapshotPath())
	}
}
