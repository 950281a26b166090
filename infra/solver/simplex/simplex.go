// Package simplex adapts the gonum LP solver to the planner's linear
// solver contract. Infeasibility surfaces as a status; any other engine
// failure maps to StatusError.
package simplex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/planops/rosterd/core/logger"
	"github.com/planops/rosterd/core/solver"
)

const tol = 1e-7

// Solver solves the overtime allocation LPs.
type Solver struct {
	log logger.Logger
}

// New returns a gonum-backed LinearSolver.
func New(log logger.Logger) *Solver {
	return &Solver{log: log}
}

// lpSolve points to the function used to run the simplex. It can be
// overridden in tests to simulate solver failures.
var lpSolve = lp.Simplex

// Solve builds the standard-form program and runs the simplex.
// Variable bounds and, in minimum-fulfillment mode, the demand floor
// go into the inequality block; exact mode keeps the demand row as an
// equality. lp.Convert treats every column as free, so the 0 <= x_i
// rows are load-bearing, not decorative.
func (s *Solver) Solve(ctx context.Context, p solver.LinearProgram) (res solver.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = solver.Result{Status: solver.StatusError, Message: fmt.Sprintf("simplex panic: %v", r)}
		}
	}()
	if err := ctx.Err(); err != nil {
		return solver.Result{Status: solver.StatusError, Message: "run budget exhausted before solve"}
	}

	n := len(p.Variables)
	c := make([]float64, n)
	for i, v := range p.Variables {
		c[i] = v.Cost
	}

	// Bounds as G·x ≤ h: x_i <= upper and -x_i <= 0 per variable,
	// plus -Σx <= -demand in minimum mode.
	rows := 2 * n
	if !p.Exact {
		rows++
	}
	g := mat.NewDense(rows, n, nil)
	h := make([]float64, rows)
	for i, v := range p.Variables {
		g.Set(2*i, i, 1)
		h[2*i] = v.Upper
		g.Set(2*i+1, i, -1)
	}

	var a mat.Matrix
	var b []float64
	if p.Exact {
		eq := mat.NewDense(1, n, nil)
		for i := 0; i < n; i++ {
			eq.Set(0, i, 1)
		}
		a = eq
		b = []float64{p.Demand}
	} else {
		last := rows - 1
		for i := 0; i < n; i++ {
			g.Set(last, i, -1)
		}
		h[last] = -p.Demand
	}

	start := time.Now()
	cStd, aStd, bStd := lp.Convert(c, g, h, a, b)
	opt, sol, err := lpSolve(cStd, aStd, bStd, tol, nil)
	wall := time.Since(start)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return solver.Result{Status: solver.StatusInfeasible, WallTime: wall}
		}
		return solver.Result{Status: solver.StatusError, WallTime: wall, Message: fmt.Sprintf("simplex: %v", err)}
	}

	values := make(map[string]float64, n)
	var sum float64
	for i, v := range p.Variables {
		x := sol[i]
		if x < 0 {
			x = 0
		}
		if x > v.Upper {
			x = v.Upper
		}
		values[v.Name] = x
		sum += x
	}
	if sum < p.Demand-1e-3 {
		// Numerical guard: never report a silently under-served demand.
		return solver.Result{Status: solver.StatusInfeasible, WallTime: wall}
	}
	if math.IsNaN(opt) || math.IsInf(opt, 0) {
		return solver.Result{Status: solver.StatusError, WallTime: wall, Message: "simplex: non-finite objective"}
	}
	return solver.Result{Status: solver.StatusOK, Objective: opt, Values: values, WallTime: wall}
}
