package loader

import "fmt"

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// ReferenceError reports a dangling id reference between entities.
type ReferenceError struct {
	Field string
	Ref   string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("unknown reference: %s: %q", e.Field, e.Ref)
}

// RangeError reports an inverted or out-of-domain time window.
type RangeError struct {
	Field string
	Start int
	End   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range: %s: [%d, %d)", e.Field, e.Start, e.End)
}
