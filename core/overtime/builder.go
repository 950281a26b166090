// Package overtime builds the linear overtime allocation model: one
// bounded continuous variable per eligible employee, a total-demand row
// and a cost-minimizing objective.
package overtime

import (
	"context"
	"strings"

	"github.com/planops/rosterd/config"
	"github.com/planops/rosterd/core/logger"
	"github.com/planops/rosterd/core/model"
	"github.com/planops/rosterd/core/solver"
)

func varName(employeeID string) string { return "ot|" + employeeID }

func employeeID(name string) string { return strings.TrimPrefix(name, "ot|") }

// Builder constructs and solves the overtime allocation problem.
type Builder struct {
	cfg config.OvertimeConfig
	log logger.Logger
}

// NewBuilder returns a Builder using the given configuration.
func NewBuilder(cfg config.OvertimeConfig, log logger.Logger) *Builder {
	return &Builder{cfg: cfg, log: log}
}

// Stats describes the built model for observability.
type Stats struct {
	Variables int
}

// candidates returns the employees eligible for overtime. The input
// document's overtime section wins; otherwise the schedule employees'
// caps and hourly costs are used.
func (b *Builder) candidates(plan *model.Plan) []model.OvertimeCandidate {
	if plan.Overtime != nil && len(plan.Overtime.Employees) > 0 {
		return plan.Overtime.Employees
	}
	var out []model.OvertimeCandidate
	for _, e := range plan.Employees {
		out = append(out, model.OvertimeCandidate{ID: e.ID, MaxOvertime: e.MaxOvertime, CostPerHour: e.CostPerHour})
	}
	return out
}

// Solve distributes demand hours among employees, minimizing the total
// overtime cost subject to per-employee caps. When total caps cannot
// meet the demand the result is INFEASIBLE with no allocation, never a
// capped partial one.
func (b *Builder) Solve(ctx context.Context, plan *model.Plan, demand float64, ls solver.LinearSolver) (*model.OvertimeResult, Stats) {
	if demand <= 0 {
		zero := 0.0
		return &model.OvertimeResult{
			Status:     string(solver.StatusOK),
			Objective:  &zero,
			Allocation: []model.Allocation{},
			Message:    "no overtime demand",
		}, Stats{}
	}

	p := solver.LinearProgram{Demand: demand, Exact: b.cfg.Fulfillment == config.FulfillExact}
	for _, c := range b.candidates(plan) {
		if c.MaxOvertime <= 0 {
			continue
		}
		p.Variables = append(p.Variables, solver.LinearVariable{
			Name:  varName(c.ID),
			Cost:  c.CostPerHour * b.cfg.Multiplier,
			Upper: c.MaxOvertime,
		})
	}
	if len(p.Variables) == 0 {
		return &model.OvertimeResult{
			Status:     string(solver.StatusInfeasible),
			Allocation: []model.Allocation{},
			Message:    "overtime demanded but no employee has a positive cap",
		}, Stats{}
	}

	res := ls.Solve(ctx, p)
	out := &model.OvertimeResult{
		Status:      string(res.Status),
		WallTimeSec: res.WallTime.Seconds(),
		Message:     res.Message,
		Allocation:  []model.Allocation{},
	}
	if res.Status != solver.StatusOK && res.Status != solver.StatusBestEffort {
		return out, Stats{Variables: len(p.Variables)}
	}
	objective := res.Objective
	out.Objective = &objective
	for _, v := range p.Variables {
		out.Allocation = append(out.Allocation, model.Allocation{
			ID:            employeeID(v.Name),
			OvertimeHours: res.Values[v.Name],
		})
	}
	return out, Stats{Variables: len(p.Variables)}
}
