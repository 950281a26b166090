package config

import "fmt"

// Overtime fulfillment modes.
const (
	FulfillExact   = "exact"   // Σ hours must equal the demand
	FulfillMinimum = "minimum" // Σ hours must cover at least the demand
)

// Overtime demand sources.
const (
	SourceInput    = "input"    // scalar target from the input document
	SourceResidual = "residual" // unmet demand left by the schedule solve
)

// OvertimeConfig holds the overtime allocation parameters.
type OvertimeConfig struct {
	// Multiplier scales each employee's hourly cost for overtime hours.
	// Default 1.0 (overtime costs the base rate).
	Multiplier float64 `json:"multiplier"`
	// Fulfillment is "exact" (default) or "minimum".
	Fulfillment string `json:"fulfillment"`
	// Source is "input" (default) or "residual". Residual mode makes the
	// overtime solve wait for the schedule solve.
	Source string `json:"source"`
}

// SetDefaults applies the documented defaults.
func (c *OvertimeConfig) SetDefaults() {
	if c.Multiplier == 0 {
		c.Multiplier = 1.0
	}
	if c.Fulfillment == "" {
		c.Fulfillment = FulfillExact
	}
	if c.Source == "" {
		c.Source = SourceInput
	}
}

// Validate checks mode values.
func (c OvertimeConfig) Validate() error {
	if c.Multiplier <= 0 {
		return fmt.Errorf("overtime multiplier must be positive")
	}
	if c.Fulfillment != FulfillExact && c.Fulfillment != FulfillMinimum {
		return fmt.Errorf("unknown overtime fulfillment %q", c.Fulfillment)
	}
	if c.Source != SourceInput && c.Source != SourceResidual {
		return fmt.Errorf("unknown overtime source %q", c.Source)
	}
	return nil
}
