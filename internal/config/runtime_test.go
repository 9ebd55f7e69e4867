package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestNewDefaultRuntimeConfig(t *testing.T) {
	cfg := NewDefaultRuntimeConfig()

	if cfg.MaxWorkers != 64 {
		t.Errorf("MaxWorkers: got %d, want 64", cfg.MaxWorkers)
	}
	if cfg.MinChecksLevelUp != 5 {
		t.Errorf("MinChecksLevelUp: got %d, want 5", cfg.MinChecksLevelUp)
	}
	if cfg.LevelUpStability != 0.7 {
		t.Errorf("LevelUpStability: got %v, want 0.7", cfg.LevelUpStability)
	}
	if cfg.MaxChecksRemove != 20 {
		t.Errorf("MaxChecksRemove: got %d, want 20", cfg.MaxChecksRemove)
	}
}

func TestRuntimeConfig_YAMLRoundTrip(t *testing.T) {
	original := NewDefaultRuntimeConfig()
	original.Sources = []SourceConfig{
		{Name: "listing-a", Kind: "regex", URLs: []string{"https://example.com/list"}},
	}

	data, err := yaml.Marshal(original)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var decoded RuntimeConfig
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	if decoded.MaxWorkers != original.MaxWorkers {
		t.Errorf("MaxWorkers: got %d, want %d", decoded.MaxWorkers, original.MaxWorkers)
	}
	if decoded.CheckTimeout.Std() != original.CheckTimeout.Std() {
		t.Errorf("CheckTimeout: got %v, want %v", decoded.CheckTimeout.Std(), original.CheckTimeout.Std())
	}
	if len(decoded.Sources) != 1 || decoded.Sources[0].Name != "listing-a" {
		t.Errorf("Sources did not round-trip: %+v", decoded.Sources)
	}
}

func TestDuration_YAML(t *testing.T) {
	d := Duration(5 * time.Minute)

	data, err := yaml.Marshal(d)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var decoded Duration
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if decoded.Std() != 5*time.Minute {
		t.Errorf("unmarshal: got %v, want 5m", decoded.Std())
	}
}

func TestDuration_YAMLInvalid(t *testing.T) {
	var d Duration
	err := yaml.Unmarshal([]byte(`"not-a-duration"`), &d)
	if err == nil {
		t.Fatal("expected error for invalid duration string")
	}
}

func TestRuntimeConfig_YAMLFieldNames(t *testing.T) {
	cfg := NewDefaultRuntimeConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal to map error: %v", err)
	}

	expectedKeys := []string{
		"max_workers",
		"checker_interval",
		"spider_interval",
		"check_timeout",
		"url_http",
		"url_https",
		"level_up_stability",
		"level_down_stability",
		"remove_stability",
		"level_down_fail_times",
		"remove_fail_times",
		"min_checks_level_up",
		"min_checks_remove",
		"max_checks_remove",
		"password",
		"sources",
	}

	for _, key := range expectedKeys {
		if _, ok := m[key]; !ok {
			t.Errorf("missing YAML key: %q", key)
		}
	}
}
