package config

import (
	"fmt"
	"math"
	"os"
)

// Load loads, defaults and validates a configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if err := validateModel(&cfg.Model); err != nil {
		return fmt.Errorf("model validation failed: %w", err)
	}
	if err := validateSolver(&cfg.Solver); err != nil {
		return fmt.Errorf("solver validation failed: %w", err)
	}
	if cfg.Sweep != nil {
		if err := validateSweep(cfg.Sweep); err != nil {
			return fmt.Errorf("sweep validation failed: %w", err)
		}
	}

	return nil
}

// validateModel checks the biological and economic parameters
func validateModel(m *Model) error {
	for name, v := range map[string]float64{
		"initial_stock":            m.InitialStock,
		"carrying_capacity":        m.CarryingCapacity,
		"growth_rate":              m.GrowthRate,
		"harvest_constant":         m.HarvestConstant,
		"migration_constant":       m.MigrationConstant,
		"effort_cap":               m.EffortCap,
		"discount_rate":            m.DiscountRate,
		"utility_scaling_constant": m.UtilityScalingConstant,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite, got %f", name, v)
		}
	}

	if m.CarryingCapacity <= 0 {
		return fmt.Errorf("carrying_capacity must be positive, got %f", m.CarryingCapacity)
	}
	if m.Periods <= 0 {
		return fmt.Errorf("periods must be positive, got %d", m.Periods)
	}
	// Effort bounds are [0, effort_cap]; a negative cap makes the range empty.
	if m.EffortCap < 0 {
		return fmt.Errorf("effort_cap cannot be negative, got %f", m.EffortCap)
	}
	if m.HarvestConstant < 0 {
		return fmt.Errorf("harvest_constant cannot be negative, got %f", m.HarvestConstant)
	}
	if m.DiscountRate <= 0 {
		return fmt.Errorf("discount_rate must be positive, got %f", m.DiscountRate)
	}
	if m.UtilityScalingConstant <= 0 {
		return fmt.Errorf("utility_scaling_constant must be positive, got %f", m.UtilityScalingConstant)
	}
	return nil
}

// validateSolver checks optimizer tuning
func validateSolver(s *Solver) error {
	if s.RelativeTolerance <= 0 {
		return fmt.Errorf("relative_tolerance must be positive, got %f", s.RelativeTolerance)
	}
	if s.MaxEvaluations <= 0 {
		return fmt.Errorf("max_evaluations must be positive, got %d", s.MaxEvaluations)
	}
	if s.OuterIterations <= 0 {
		return fmt.Errorf("outer_iterations must be positive, got %d", s.OuterIterations)
	}
	if s.InitialPenalty <= 0 {
		return fmt.Errorf("initial_penalty must be positive, got %f", s.InitialPenalty)
	}
	return nil
}

// validateSweep checks the Monte Carlo sweep configuration
func validateSweep(s *Sweep) error {
	if s.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", s.Trials)
	}
	if s.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive, got %d", s.Parallelism)
	}

	drawable := make(map[string]bool, len(DrawableParams))
	for _, name := range DrawableParams {
		drawable[name] = true
	}

	for name, draw := range s.Draws {
		if !drawable[name] {
			return fmt.Errorf("draw refers to unknown or non-drawable parameter: %s", name)
		}
		switch draw.Dist {
		case DistNormal, DistLogNormal:
			if draw.Stddev < 0 {
				return fmt.Errorf("draw %s: stddev cannot be negative, got %f", name, draw.Stddev)
			}
		case DistUniform:
			if draw.Min > draw.Max {
				return fmt.Errorf("draw %s: min %f exceeds max %f", name, draw.Min, draw.Max)
			}
		default:
			return fmt.Errorf("draw %s: invalid dist %q (must be normal, lognormal, or uniform)", name, draw.Dist)
		}
	}
	return nil
}
