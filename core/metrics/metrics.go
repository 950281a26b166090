package metrics

import "time"

// SolveRun captures one solve pipeline execution for observability.
type SolveRun struct {
	RunID     string
	Pipeline  string // "schedule" or "overtime"
	Status    string
	Objective float64
	WallTime  time.Duration
	Variables int
	Time      time.Time
}

// RunSink records solve runs. Implementations live in infra/metrics.
type RunSink interface {
	RecordSolveRun(run SolveRun) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordSolveRun implements RunSink.
func (NopSink) RecordSolveRun(SolveRun) error { return nil }

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":2112"
	}
}
