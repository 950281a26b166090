package simplex

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/planops/rosterd/core/solver"
	"github.com/planops/rosterd/infra/logger"
)

func program(exact bool, demand float64, vars ...solver.LinearVariable) solver.LinearProgram {
	return solver.LinearProgram{Variables: vars, Demand: demand, Exact: exact}
}

func TestSolveExact(t *testing.T) {
	s := New(logger.NopLogger{})
	res := s.Solve(context.Background(), program(true, 15,
		solver.LinearVariable{Name: "a", Cost: 1, Upper: 10},
		solver.LinearVariable{Name: "b", Cost: 2, Upper: 10},
	))
	if res.Status != solver.StatusOK {
		t.Fatalf("want OK got %s (%s)", res.Status, res.Message)
	}
	if math.Abs(res.Values["a"]-10) > 1e-6 || math.Abs(res.Values["b"]-5) > 1e-6 {
		t.Fatalf("unexpected solution %v", res.Values)
	}
	if math.Abs(res.Objective-20) > 1e-6 {
		t.Fatalf("want objective 20 got %v", res.Objective)
	}
}

func TestSolveInfeasible(t *testing.T) {
	s := New(logger.NopLogger{})
	res := s.Solve(context.Background(), program(true, 25,
		solver.LinearVariable{Name: "a", Cost: 1, Upper: 10},
		solver.LinearVariable{Name: "b", Cost: 2, Upper: 10},
	))
	if res.Status != solver.StatusInfeasible {
		t.Fatalf("want INFEASIBLE got %s (%s)", res.Status, res.Message)
	}
	if res.Values != nil {
		t.Fatalf("infeasible result must carry no values")
	}
}

func TestSolveMinimum(t *testing.T) {
	s := New(logger.NopLogger{})
	res := s.Solve(context.Background(), program(false, 5,
		solver.LinearVariable{Name: "a", Cost: 3, Upper: 10},
	))
	if res.Status != solver.StatusOK {
		t.Fatalf("want OK got %s (%s)", res.Status, res.Message)
	}
	if math.Abs(res.Values["a"]-5) > 1e-6 {
		t.Fatalf("want a=5 got %v", res.Values["a"])
	}
	if math.Abs(res.Objective-15) > 1e-6 {
		t.Fatalf("want objective 15 got %v", res.Objective)
	}
}

func TestSolveMinimumDemandExceedsCapacity(t *testing.T) {
	s := New(logger.NopLogger{})
	res := s.Solve(context.Background(), program(false, 5,
		solver.LinearVariable{Name: "a", Cost: 3, Upper: 4},
	))
	if res.Status != solver.StatusInfeasible {
		t.Fatalf("want INFEASIBLE got %s (%s)", res.Status, res.Message)
	}
}

func TestSolveExactSlackCapacity(t *testing.T) {
	// Demand below total capacity with uneven costs: the cheap variable
	// must absorb the demand and the expensive one stay at zero, never
	// below it.
	s := New(logger.NopLogger{})
	res := s.Solve(context.Background(), program(true, 5,
		solver.LinearVariable{Name: "a", Cost: 1, Upper: 10},
		solver.LinearVariable{Name: "b", Cost: 2, Upper: 10},
	))
	if res.Status != solver.StatusOK {
		t.Fatalf("want OK got %s (%s)", res.Status, res.Message)
	}
	if math.Abs(res.Values["a"]-5) > 1e-6 || math.Abs(res.Values["b"]) > 1e-6 {
		t.Fatalf("unexpected solution %v", res.Values)
	}
	if math.Abs(res.Objective-5) > 1e-6 {
		t.Fatalf("want objective 5 got %v", res.Objective)
	}
}

func TestSolveSingleVariable(t *testing.T) {
	s := New(logger.NopLogger{})
	res := s.Solve(context.Background(), program(true, 8,
		solver.LinearVariable{Name: "a", Cost: 12.5, Upper: 8},
	))
	if res.Status != solver.StatusOK {
		t.Fatalf("want OK got %s (%s)", res.Status, res.Message)
	}
	if math.Abs(res.Objective-100) > 1e-6 {
		t.Fatalf("want objective 100 got %v", res.Objective)
	}
}

func TestSolveEngineError(t *testing.T) {
	old := lpSolve
	lpSolve = func(_ []float64, _ mat.Matrix, _ []float64, _ float64, _ []int) (float64, []float64, error) {
		return 0, nil, errors.New("numerical breakdown")
	}
	defer func() { lpSolve = old }()

	s := New(logger.NopLogger{})
	res := s.Solve(context.Background(), program(true, 5,
		solver.LinearVariable{Name: "a", Cost: 1, Upper: 10},
	))
	if res.Status != solver.StatusError {
		t.Fatalf("want ERROR got %s", res.Status)
	}
	if res.Message == "" {
		t.Fatalf("expected engine detail in message")
	}
}

func TestSolveEnginePanic(t *testing.T) {
	old := lpSolve
	lpSolve = func(_ []float64, _ mat.Matrix, _ []float64, _ float64, _ []int) (float64, []float64, error) {
		panic("index out of range")
	}
	defer func() { lpSolve = old }()

	s := New(logger.NopLogger{})
	res := s.Solve(context.Background(), program(true, 5,
		solver.LinearVariable{Name: "a", Cost: 1, Upper: 10},
	))
	if res.Status != solver.StatusError {
		t.Fatalf("want ERROR got %s", res.Status)
	}
}

func TestSolveExpiredContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(logger.NopLogger{})
	res := s.Solve(ctx, program(true, 5, solver.LinearVariable{Name: "a", Cost: 1, Upper: 10}))
	if res.Status != solver.StatusError {
		t.Fatalf("want ERROR got %s", res.Status)
	}
}
