package config

import (
	"fmt"
	"time"
)

// SolverConfig bounds the external engines.
type SolverConfig struct {
	// TimeLimitSeconds is the per-solve budget handed to each engine.
	// Default 60.
	TimeLimitSeconds int `json:"time_limit_seconds"`
	// RunTimeLimitSeconds bounds the whole run (both solves). 0 disables
	// the run-level timeout.
	RunTimeLimitSeconds int `json:"run_time_limit_seconds"`
	// Workers is the number of parallel search workers for the
	// constraint engine. 0 lets the engine decide.
	Workers int `json:"workers"`
}

// SetDefaults applies the documented defaults.
func (c *SolverConfig) SetDefaults() {
	if c.TimeLimitSeconds == 0 {
		c.TimeLimitSeconds = 60
	}
}

// Validate checks budget values.
func (c SolverConfig) Validate() error {
	if c.TimeLimitSeconds < 1 {
		return fmt.Errorf("solver time limit must be positive")
	}
	if c.RunTimeLimitSeconds < 0 || c.Workers < 0 {
		return fmt.Errorf("invalid solver limits")
	}
	return nil
}

// TimeLimit returns the per-solve budget as a duration.
func (c SolverConfig) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitSeconds) * time.Second
}

// RunTimeLimit returns the run budget, or zero when disabled.
func (c SolverConfig) RunTimeLimit() time.Duration {
	return time.Duration(c.RunTimeLimitSeconds) * time.Second
}
