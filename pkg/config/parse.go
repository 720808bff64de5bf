package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML parses a Config from YAML bytes, applies defaults and validates it.
// This is used when config is provided as payload (not via filesystem).
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// ParseYAMLString parses a Config from a YAML string, applies defaults and validates it.
func ParseYAMLString(yamlText string) (*Config, error) {
	return ParseYAML([]byte(yamlText))
}

// applyDefaults fills in omitted tuning values before validation
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Model.UtilityScalingConstant == 0 {
		cfg.Model.UtilityScalingConstant = 1.0
	}
	if cfg.Solver.RelativeTolerance == 0 {
		cfg.Solver.RelativeTolerance = 1e-4
	}
	if cfg.Solver.MaxEvaluations == 0 {
		cfg.Solver.MaxEvaluations = 20000
	}
	if cfg.Solver.OuterIterations == 0 {
		cfg.Solver.OuterIterations = 20
	}
	if cfg.Solver.InitialPenalty == 0 {
		cfg.Solver.InitialPenalty = 10.0
	}
	if cfg.Sweep != nil && cfg.Sweep.Parallelism == 0 {
		cfg.Sweep.Parallelism = 1
	}
}
