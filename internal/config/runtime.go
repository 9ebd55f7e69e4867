package config

import "time"

// SourceConfig describes one enabled Source. Kind selects the
// implementation (currently only "regex" is built in); Options carries
// kind-specific settings verbatim for that Source's constructor to parse.
type SourceConfig struct {
	Name    string         `yaml:"name"`
	Kind    string         `yaml:"kind"`
	URLs    []string       `yaml:"urls"`
	Options map[string]any `yaml:"options"`
}

// RuntimeConfig holds all hot-reloadable settings: validator thresholds,
// scheduler intervals, probe targets, the reload password, and Source
// definitions. It is reread from disk on every reload-flag observation.
type RuntimeConfig struct {
	MaxWorkers int `yaml:"max_workers"`

	CheckerInterval Duration `yaml:"checker_interval"`
	SpiderInterval  Duration `yaml:"spider_interval"`
	CheckTimeout    Duration `yaml:"check_timeout"`

	URLHTTP  string `yaml:"url_http"`
	URLHTTPS string `yaml:"url_https"`

	LevelUpStability   float64 `yaml:"level_up_stability"`
	LevelDownStability float64 `yaml:"level_down_stability"`
	RemoveStability    float64 `yaml:"remove_stability"`

	LevelDownFailTimes int `yaml:"level_down_fail_times"`
	RemoveFailTimes    int `yaml:"remove_fail_times"`

	MinChecksLevelUp int `yaml:"min_checks_level_up"`
	MinChecksRemove  int `yaml:"min_checks_remove"`
	MaxChecksRemove  int `yaml:"max_checks_remove"`

	// Password gates the GET /reload endpoint. A weak password is logged
	// as a warning at load time (see IsWeakToken) but never rejected —
	// a fatally strict check here would turn a warning into an outage.
	Password string `yaml:"password"`

	Sources []SourceConfig `yaml:"sources"`
}

// NewDefaultRuntimeConfig returns a RuntimeConfig populated with the
// thresholds exercised by the testable properties: minChecksLevelUp=5,
// levelUpStability=0.7, levelDownStability=0.5, levelDownFailTimes=3,
// removeFailTimes=6, maxChecksRemove=20.
func NewDefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		MaxWorkers: 64,

		CheckerInterval: Duration(5 * time.Minute),
		SpiderInterval:  Duration(15 * time.Minute),
		CheckTimeout:    Duration(10 * time.Second),

		URLHTTP:  "http://www.gstatic.com/generate_204",
		URLHTTPS: "https://www.gstatic.com/generate_204",

		LevelUpStability:   0.7,
		LevelDownStability: 0.5,
		RemoveStability:    0.4,

		LevelDownFailTimes: 3,
		RemoveFailTimes:    6,

		MinChecksLevelUp: 5,
		MinChecksRemove:  10,
		MaxChecksRemove:  20,

		Password: "",
		Sources:  []SourceConfig{},
	}
}
