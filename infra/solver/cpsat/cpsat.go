// Package cpsat adapts the or-tools CP-SAT engine to the planner's
// solver contract. All engine failures are mapped to StatusError at this
// boundary; no engine error or panic escapes to the builders.
package cpsat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"google.golang.org/protobuf/proto"

	"github.com/planops/rosterd/config"
	"github.com/planops/rosterd/core/logger"
	"github.com/planops/rosterd/core/solver"
)

// Solver solves CP models within a configured time budget.
type Solver struct {
	cfg config.SolverConfig
	log logger.Logger
}

// New returns a CP-SAT backed ConstraintSolver.
func New(cfg config.SolverConfig, log logger.Logger) *Solver {
	return &Solver{cfg: cfg, log: log}
}

// Solve submits the model to CP-SAT. A proven optimum maps to OK, a
// time-limited incumbent to BEST_EFFORT, a proven empty feasible region
// to INFEASIBLE and everything else to ERROR.
func (s *Solver) Solve(ctx context.Context, b *cpmodel.Builder) (res solver.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = solver.Result{Status: solver.StatusError, Message: fmt.Sprintf("cp-sat panic: %v", r)}
		}
	}()

	budget := s.cfg.TimeLimit()
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return solver.Result{Status: solver.StatusError, Message: "run budget exhausted before solve"}
		}
		if remaining < budget {
			budget = remaining
		}
	}

	m, err := b.Model()
	if err != nil {
		return solver.Result{Status: solver.StatusError, Message: fmt.Sprintf("model build: %v", err)}
	}
	params := &sppb.SatParameters{
		MaxTimeInSeconds: proto.Float64(budget.Seconds()),
	}
	if s.cfg.Workers > 0 {
		params.NumSearchWorkers = proto.Int32(int32(s.cfg.Workers))
	}

	start := time.Now()
	resp, err := cpmodel.SolveCpModelWithParameters(m, params)
	wall := time.Since(start)
	if err != nil {
		return solver.Result{Status: solver.StatusError, WallTime: wall, Message: fmt.Sprintf("cp-sat solve: %v", err)}
	}
	s.log.Debugw("cp-sat finished", map[string]any{
		"status":    resp.GetStatus().String(),
		"wall_time": wall.Seconds(),
	})
	return interpret(m, resp, wall)
}

func interpret(m *cmpb.CpModelProto, resp *cmpb.CpSolverResponse, wall time.Duration) solver.Result {
	res := solver.Result{WallTime: wall}
	switch resp.GetStatus() {
	case cmpb.CpSolverStatus_OPTIMAL:
		res.Status = solver.StatusOK
	case cmpb.CpSolverStatus_FEASIBLE:
		// The engine hit its budget with an incumbent in hand.
		res.Status = solver.StatusBestEffort
	case cmpb.CpSolverStatus_INFEASIBLE:
		res.Status = solver.StatusInfeasible
		return res
	default:
		res.Status = solver.StatusError
		res.Message = fmt.Sprintf("cp-sat status %s", resp.GetStatus())
		return res
	}
	res.Objective = resp.GetObjectiveValue()
	res.Values = make(map[string]float64)
	solution := resp.GetSolution()
	for i, v := range m.GetVariables() {
		if v.GetName() == "" || i >= len(solution) {
			continue
		}
		res.Values[v.GetName()] = float64(solution[i])
	}
	return res
}
