package cpsat

import (
	"context"
	"testing"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"

	"github.com/planops/rosterd/config"
	"github.com/planops/rosterd/core/solver"
	"github.com/planops/rosterd/infra/logger"
)

func modelWithVars(names ...string) *cmpb.CpModelProto {
	m := &cmpb.CpModelProto{}
	for _, n := range names {
		m.Variables = append(m.Variables, &cmpb.IntegerVariableProto{Name: n, Domain: []int64{0, 1}})
	}
	return m
}

func TestInterpretOptimal(t *testing.T) {
	m := modelWithVars("x|E1|F1|0|9", "x|E1|F1|0|10")
	resp := &cmpb.CpSolverResponse{
		Status:         cmpb.CpSolverStatus_OPTIMAL,
		ObjectiveValue: 2_000_000,
		Solution:       []int64{1, 0},
	}
	res := interpret(m, resp, 30*time.Millisecond)
	if res.Status != solver.StatusOK {
		t.Fatalf("want OK got %s", res.Status)
	}
	if res.Objective != 2_000_000 {
		t.Fatalf("want objective 2000000 got %v", res.Objective)
	}
	if res.Values["x|E1|F1|0|9"] != 1 || res.Values["x|E1|F1|0|10"] != 0 {
		t.Fatalf("unexpected values %v", res.Values)
	}
	if res.WallTime != 30*time.Millisecond {
		t.Fatalf("wall time lost")
	}
}

func TestInterpretFeasibleIsBestEffort(t *testing.T) {
	m := modelWithVars("x")
	resp := &cmpb.CpSolverResponse{
		Status:         cmpb.CpSolverStatus_FEASIBLE,
		ObjectiveValue: 7,
		Solution:       []int64{1},
	}
	res := interpret(m, resp, 0)
	if res.Status != solver.StatusBestEffort {
		t.Fatalf("want BEST_EFFORT got %s", res.Status)
	}
	if res.Values["x"] != 1 {
		t.Fatalf("incumbent solution lost: %v", res.Values)
	}
}

func TestInterpretInfeasible(t *testing.T) {
	res := interpret(modelWithVars("x"), &cmpb.CpSolverResponse{Status: cmpb.CpSolverStatus_INFEASIBLE}, 0)
	if res.Status != solver.StatusInfeasible {
		t.Fatalf("want INFEASIBLE got %s", res.Status)
	}
	if res.Values != nil {
		t.Fatalf("infeasible result must carry no values")
	}
}

func TestInterpretModelInvalid(t *testing.T) {
	res := interpret(modelWithVars("x"), &cmpb.CpSolverResponse{Status: cmpb.CpSolverStatus_MODEL_INVALID}, 0)
	if res.Status != solver.StatusError {
		t.Fatalf("want ERROR got %s", res.Status)
	}
	if res.Message == "" {
		t.Fatalf("expected engine status in message")
	}
}

func TestInterpretUnnamedVariablesSkipped(t *testing.T) {
	m := modelWithVars("x", "")
	resp := &cmpb.CpSolverResponse{
		Status:   cmpb.CpSolverStatus_OPTIMAL,
		Solution: []int64{1, 1},
	}
	res := interpret(m, resp, 0)
	if len(res.Values) != 1 {
		t.Fatalf("anonymous engine variables must not appear: %v", res.Values)
	}
}

func TestSolveExhaustedBudget(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	var cfg config.SolverConfig
	cfg.SetDefaults()
	s := New(cfg, logger.NopLogger{})
	res := s.Solve(ctx, cpmodel.NewCpModelBuilder())
	if res.Status != solver.StatusError {
		t.Fatalf("want ERROR got %s", res.Status)
	}
}
