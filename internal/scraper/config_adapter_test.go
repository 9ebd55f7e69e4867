package scraper

import (
	"testing"

	"github.com/greywire/proxypool/internal/config"
)

func TestBuildSource_Regex(t *testing.T) {
	sc := config.SourceConfig{
		Name: "example",
		Kind: "regex",
		URLs: []string{"http://example.com/list"},
		Options: map[string]any{
			optionIPPattern:   `IP:(\d+\.\d+\.\d+\.\d+)`,
			optionPortPattern: `PORT:(\d+)`,
		},
	}

	src, err := BuildSource(sc, nil)
	if err != nil {
		t.Fatalf("BuildSource: %v", err)
	}
	if src.Name() != "example" {
		t.Fatalf("Name: got %q, want %q", src.Name(), "example")
	}
}

func TestBuildSource_UnknownKind(t *testing.T) {
	sc := config.SourceConfig{Name: "mystery", Kind: "carrier-pigeon"}

	_, err := BuildSource(sc, nil)
	if err == nil {
		t.Fatal("expected error for unknown source kind")
	}
}

func TestBuildSource_InvalidRegexOption(t *testing.T) {
	sc := config.SourceConfig{
		Name: "broken",
		Kind: "regex",
		Options: map[string]any{
			optionIPPattern: "(unclosed",
		},
	}

	_, err := BuildSource(sc, nil)
	if err == nil {
		t.Fatal("expected error for invalid regex pattern")
	}
}
