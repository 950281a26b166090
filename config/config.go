package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/planops/rosterd/core/metrics"
)

// Config is the run configuration passed into each builder call. Penalty
// weights, time budgets and multipliers are explicit values here, never
// ambient state.
type Config struct {
	Schedule ScheduleConfig `json:"schedule"`
	Overtime OvertimeConfig `json:"overtime"`
	Solver   SolverConfig   `json:"solver"`
	Metrics  metrics.Config `json:"metrics"`
}

// Default returns the documented default configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Schedule.SetDefaults()
	cfg.Overtime.SetDefaults()
	cfg.Solver.SetDefaults()
	cfg.Metrics.SetDefaults()
	return cfg
}

// Load reads the configuration file at path and applies environment
// overrides (prefix R_, __ as section separator). An empty path yields
// the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides. The callback rewrites R_A__B to
	// the dot-delimited key a.b, so the provider splits on ".".
	if err := k.Load(env.Provider("R_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "r_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Schedule.SetDefaults()
	cfg.Overtime.SetDefaults()
	cfg.Solver.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Overtime.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Solver.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
