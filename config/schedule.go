package config

import "fmt"

// ScheduleConfig holds the soft-constraint weights and thresholds of the
// shift scheduling model. Weights are per unit of violation and must
// stay positive; the shortfall weight is meant to dominate the others so
// the solver prefers covering demand over every other soft preference.
type ScheduleConfig struct {
	// ConsecutiveDaysPenalty applies per working day beyond
	// MaxConsecutiveDays in any run of days.
	ConsecutiveDaysPenalty float64 `json:"consecutive_days_penalty"`
	// WeeklyDaysPenalty applies per working day beyond MaxDaysPerWeek
	// within a 7-day window.
	WeeklyDaysPenalty float64 `json:"weekly_days_penalty"`
	// DailyHoursPenalty applies per assigned hour beyond MaxHoursPerDay
	// on a single day.
	DailyHoursPenalty float64 `json:"daily_hours_penalty"`
	// ShortfallPenalty applies per uncovered task when coverage is
	// relaxed to a soft floor.
	ShortfallPenalty float64 `json:"shortfall_penalty"`
	// PreferenceBonus is subtracted per hour worked at a preferred
	// facility. Keep it below the lowest hourly cost so it only breaks
	// ties and never overrides cost-minimality.
	PreferenceBonus float64 `json:"preference_bonus"`

	MaxConsecutiveDays int `json:"max_consecutive_days"`
	MaxDaysPerWeek     int `json:"max_days_per_week"`
	MaxHoursPerDay     int `json:"max_hours_per_day"`

	// MaxWeeklyHours is a hard cap on assigned hours per employee in
	// each 7-day block of the horizon.
	MaxWeeklyHours int `json:"max_weekly_hours"`
	// MinRestHours is the hard minimum gap, in hours, between the end
	// of one shift and the start of the next for the same employee.
	MinRestHours int `json:"min_rest_hours"`

	// RelaxCoverage turns the demand coverage hard constraint into a
	// soft floor penalized by ShortfallPenalty.
	RelaxCoverage bool `json:"relax_coverage"`
}

// SetDefaults applies the documented defaults.
func (c *ScheduleConfig) SetDefaults() {
	if c.ConsecutiveDaysPenalty == 0 {
		c.ConsecutiveDaysPenalty = 20000
	}
	if c.WeeklyDaysPenalty == 0 {
		c.WeeklyDaysPenalty = 10000
	}
	if c.DailyHoursPenalty == 0 {
		c.DailyHoursPenalty = 30000
	}
	if c.ShortfallPenalty == 0 {
		c.ShortfallPenalty = 50000
	}
	if c.PreferenceBonus == 0 {
		c.PreferenceBonus = 1
	}
	if c.MaxConsecutiveDays == 0 {
		c.MaxConsecutiveDays = 5
	}
	if c.MaxDaysPerWeek == 0 {
		c.MaxDaysPerWeek = 5
	}
	if c.MaxHoursPerDay == 0 {
		c.MaxHoursPerDay = 8
	}
	if c.MaxWeeklyHours == 0 {
		c.MaxWeeklyHours = 40
	}
	if c.MinRestHours == 0 {
		c.MinRestHours = 8
	}
}

// Validate checks the weights and thresholds.
func (c ScheduleConfig) Validate() error {
	if c.ConsecutiveDaysPenalty < 0 || c.WeeklyDaysPenalty < 0 || c.DailyHoursPenalty < 0 || c.ShortfallPenalty < 0 {
		return fmt.Errorf("penalty weights must be non-negative")
	}
	if c.PreferenceBonus < 0 {
		return fmt.Errorf("preference bonus must be non-negative")
	}
	if c.MaxConsecutiveDays < 1 || c.MaxDaysPerWeek < 1 || c.MaxDaysPerWeek > 7 || c.MaxHoursPerDay < 1 || c.MaxHoursPerDay > 24 {
		return fmt.Errorf("invalid soft-constraint thresholds")
	}
	if c.MaxWeeklyHours < 1 || c.MaxWeeklyHours > 168 {
		return fmt.Errorf("max weekly hours must be between 1 and 168")
	}
	if c.MinRestHours < 1 || c.MinRestHours > 24 {
		return fmt.Errorf("min rest hours must be between 1 and 24")
	}
	return nil
}
