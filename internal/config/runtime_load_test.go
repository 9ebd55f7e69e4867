package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadRuntimeConfig_MissingFile(t *testing.T) {
	cfg, err := LoadRuntimeConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error for missing file: %v", err)
	}
	if !reflect.DeepEqual(cfg, NewDefaultRuntimeConfig()) {
		t.Errorf("got %+v, want NewDefaultRuntimeConfig()", cfg)
	}
}

func TestLoadRuntimeConfig_ParsesAndFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "max_workers: 8\nurl_http: \"http://example.com/check\"\npassword: \"hunter2\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg, err := LoadRuntimeConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MaxWorkers != 8 {
		t.Errorf("MaxWorkers: got %d, want 8", cfg.MaxWorkers)
	}
	if cfg.URLHTTP != "http://example.com/check" {
		t.Errorf("URLHTTP: got %q", cfg.URLHTTP)
	}
	// Fields not present in the file retain their NewDefaultRuntimeConfig values.
	if cfg.MinChecksLevelUp != 5 {
		t.Errorf("MinChecksLevelUp: got %d, want default 5", cfg.MinChecksLevelUp)
	}
}

func TestLoadRuntimeConfig_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("max_workers: [this is not an int"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err := LoadRuntimeConfig(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
}
