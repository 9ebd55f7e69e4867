package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRuntimeConfig reads and parses the YAML runtime config file at path.
// The file is optional (spec.md §4.5 step 1): a missing file yields
// NewDefaultRuntimeConfig(), not an error. Callers decide what counts as
// fatal for a genuine read/parse failure: at startup it should abort the
// process; during reload it should be logged and the previous
// configuration kept in use (ConfigLoadFailure in the error taxonomy).
func LoadRuntimeConfig(path string) (*RuntimeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefaultRuntimeConfig(), nil
		}
		return nil, fmt.Errorf("read runtime config %s: %w", path, err)
	}

	cfg := NewDefaultRuntimeConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse runtime config %s: %w", path, err)
	}

	if IsWeakToken(cfg.Password) {
		log.Printf("config: reload password is weak; consider a stronger secret")
	}

	return cfg, nil
}
