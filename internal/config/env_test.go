package config

import (
	"strings"
	"testing"
)

func TestLoadEnvConfig_Defaults(t *testing.T) {
	cfg, err := LoadEnvConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertEqual(t, "DataDir", cfg.DataDir, "/var/lib/proxypool")
	assertEqual(t, "ListenAddress", cfg.ListenAddress, "0.0.0.0:8765")
	assertEqual(t, "RuntimeConfigPath", cfg.RuntimeConfigPath, "/etc/proxypool/config.yaml")
}

func TestLoadEnvConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PROXYPOOL_DATA_DIR", "/tmp/proxypool-data")
	t.Setenv("PROXYPOOL_LISTEN_ADDRESS", "127.0.0.1:9000")
	t.Setenv("PROXYPOOL_CONFIG_FILE", "/tmp/config.yaml")

	cfg, err := LoadEnvConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertEqual(t, "DataDir", cfg.DataDir, "/tmp/proxypool-data")
	assertEqual(t, "ListenAddress", cfg.ListenAddress, "127.0.0.1:9000")
	assertEqual(t, "RuntimeConfigPath", cfg.RuntimeConfigPath, "/tmp/config.yaml")
}

func TestLoadEnvConfig_EmptyListenAddress(t *testing.T) {
	t.Setenv("PROXYPOOL_LISTEN_ADDRESS", "   ")

	_, err := LoadEnvConfig()
	if err == nil {
		t.Fatal("expected error for empty listen address")
	}
	assertContains(t, err.Error(), "PROXYPOOL_LISTEN_ADDRESS")
}

func TestLoadEnvConfig_EmptyDataDir(t *testing.T) {
	t.Setenv("PROXYPOOL_DATA_DIR", "")

	_, err := LoadEnvConfig()
	if err == nil {
		t.Fatal("expected error for empty data dir")
	}
	assertContains(t, err.Error(), "PROXYPOOL_DATA_DIR")
}

// --- test helpers ---

func assertEqual[T comparable](t *testing.T, name string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", name, got, want)
	}
}

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected %q to contain %q", s, substr)
	}
}
