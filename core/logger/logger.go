package logger

// Logger is the logging interface used across the planner. Implementations
// live in infra/logger so core packages stay free of logging backends.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
