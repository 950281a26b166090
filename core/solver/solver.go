// Package solver defines the narrow seam between the model builders and
// the external optimization engines. Builders construct a model, hand it
// to a solver through one of the interfaces below and read the outcome
// back as a Result. Engine internals, tie-breaks and numerical tolerance
// stay behind this boundary.
package solver

import (
	"context"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
)

// Status classifies the outcome of a solve call.
type Status string

const (
	// StatusOK means the engine proved the solution optimal.
	StatusOK Status = "OK"
	// StatusBestEffort means the engine hit its time budget and returned
	// its best incumbent. It is never silently substituted for OK.
	StatusBestEffort Status = "BEST_EFFORT"
	// StatusInfeasible means no solution satisfies the hard constraints.
	// This is a legitimate business outcome, not an error.
	StatusInfeasible Status = "INFEASIBLE"
	// StatusError means the engine failed internally or exceeded its
	// resources without producing a usable answer.
	StatusError Status = "ERROR"
)

// Determinate reports whether the status is a normal planning outcome.
// ERROR is the only indeterminate status.
func (s Status) Determinate() bool { return s != StatusError }

// Result is the uniform outcome of a solve call. Values maps variable
// names to their assigned values; it is nil unless the status carries a
// solution.
type Result struct {
	Status    Status
	Objective float64
	Values    map[string]float64
	WallTime  time.Duration
	// Message carries engine detail for ERROR and INFEASIBLE outcomes.
	Message string
}

// ConstraintSolver solves a CP model assembled with the or-tools builder.
// Implementations enforce the configured time budget, map a time-limited
// incumbent to BEST_EFFORT and never let an engine failure escape as
// anything but StatusError.
type ConstraintSolver interface {
	Solve(ctx context.Context, b *cpmodel.Builder) Result
}

// LinearVariable is one bounded, costed decision variable of a
// LinearProgram.
type LinearVariable struct {
	Name  string
	Cost  float64
	Upper float64
}

// LinearProgram describes the overtime allocation problem: minimize
// Σ Cost·x subject to 0 ≤ x ≤ Upper per variable and a total-demand row.
type LinearProgram struct {
	Variables []LinearVariable
	// Demand is the required total over all variables.
	Demand float64
	// Exact selects Σx = Demand; otherwise Σx ≥ Demand.
	Exact bool
}

// LinearSolver solves a LinearProgram.
type LinearSolver interface {
	Solve(ctx context.Context, p LinearProgram) Result
}
