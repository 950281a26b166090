package metrics

import coremetrics "github.com/planops/rosterd/core/metrics"

// MultiSink fans solve runs out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.RunSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.RunSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolveRun forwards the run to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordSolveRun(run coremetrics.SolveRun) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolveRun(run); err != nil {
			return err
		}
	}
	return nil
}
