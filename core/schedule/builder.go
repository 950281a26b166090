// Package schedule builds the hour-granular shift assignment model and
// interprets the constraint solver's answer. One Boolean variable exists
// per feasible (employee, facility, date, hour) tuple; infeasible tuples
// are never instantiated.
package schedule

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/planops/rosterd/config"
	"github.com/planops/rosterd/core/logger"
	"github.com/planops/rosterd/core/model"
	"github.com/planops/rosterd/core/solver"
)

// scale converts fractional costs and capacities to the integer domain
// the constraint engine works in. Three decimal places of precision.
const scale = 1000

// Key identifies one assignment variable.
type Key struct {
	Employee string
	Facility string
	Day      int
	Hour     int
}

func (k Key) name() string {
	return fmt.Sprintf("x|%s|%s|%d|%d", k.Employee, k.Facility, k.Day, k.Hour)
}

func shortName(facility string, day int) string {
	return fmt.Sprintf("short|%s|%d", facility, day)
}

// Stats describes the built model for observability.
type Stats struct {
	Variables int
}

// Builder constructs and solves the shift scheduling problem.
type Builder struct {
	cfg config.ScheduleConfig
	log logger.Logger
}

// NewBuilder returns a Builder using the given configuration.
func NewBuilder(cfg config.ScheduleConfig, log logger.Logger) *Builder {
	return &Builder{cfg: cfg, log: log}
}

// Solve builds the assignment model for the plan, submits it to the
// constraint solver and interprets the outcome. Infeasibility is
// reported as a status, never as an error.
func (b *Builder) Solve(ctx context.Context, plan *model.Plan, cs solver.ConstraintSolver) (*model.ScheduleResult, Stats) {
	horizon := plan.Horizon()
	if len(horizon) == 0 {
		zero := 0.0
		return &model.ScheduleResult{
			Status:      string(solver.StatusOK),
			Objective:   &zero,
			Assignments: []model.Assignment{},
		}, Stats{}
	}

	m := cpmodel.NewCpModelBuilder()

	keys, vars := b.buildVariables(m, plan, horizon)
	b.log.Debugw("assignment variables created", map[string]any{"count": len(keys)})

	b.addNoDoubleBooking(m, plan, horizon, vars)
	shortVars := b.addCoverage(m, plan, horizon, keys, vars)
	works := b.addWorksOnDay(m, plan, horizon, keys, vars)
	b.addWeeklyHoursCap(m, plan, horizon, keys, vars)
	b.addRestInterval(m, plan, horizon, keys, vars)

	obj := cpmodel.NewLinearExpr()
	b.addAssignmentCosts(obj, plan, keys, vars)
	b.addShortfallPenalties(obj, shortVars)
	b.addConsecutiveDaysPenalty(m, obj, plan, horizon, works)
	b.addWeeklyDaysPenalty(m, obj, plan, horizon, works)
	b.addDailyHoursPenalty(m, obj, plan, horizon, keys, vars)
	m.Minimize(obj)

	res := cs.Solve(ctx, m)
	return b.interpret(plan, horizon, keys, res), Stats{Variables: len(keys)}
}

// buildVariables instantiates one Boolean per tuple where the hour lies
// within both the employee's weekday availability and the facility's
// cleaning shift. Availability is structural: excluded tuples have no
// variable at all.
func (b *Builder) buildVariables(m *cpmodel.Builder, plan *model.Plan, horizon []time.Time) ([]Key, map[Key]cpmodel.BoolVar) {
	var keys []Key
	vars := make(map[Key]cpmodel.BoolVar)
	for _, e := range plan.Employees {
		for di, date := range horizon {
			avail, ok := e.AvailableOn(date)
			if !ok {
				continue
			}
			win, ok := avail.Intersect(plan.Settings.CleaningShift)
			if !ok {
				continue
			}
			for h := win.Start; h < win.End; h++ {
				for _, f := range plan.Facilities {
					k := Key{Employee: e.ID, Facility: f.ID, Day: di, Hour: h}
					vars[k] = m.NewBoolVar().WithName(k.name())
					keys = append(keys, k)
				}
			}
		}
	}
	return keys, vars
}

// addNoDoubleBooking forbids an employee from working two facilities in
// the same hour.
func (b *Builder) addNoDoubleBooking(m *cpmodel.Builder, plan *model.Plan, horizon []time.Time, vars map[Key]cpmodel.BoolVar) {
	for _, e := range plan.Employees {
		for di := range horizon {
			for h := 0; h < model.HoursInDay; h++ {
				var vs []cpmodel.BoolVar
				for _, f := range plan.Facilities {
					if v, ok := vars[Key{Employee: e.ID, Facility: f.ID, Day: di, Hour: h}]; ok {
						vs = append(vs, v)
					}
				}
				if len(vs) > 1 {
					m.AddAtMostOne(vs...)
				}
			}
		}
	}
}

// addCoverage bounds the weighted assigned hours per (facility, date)
// from below by the required task count. With RelaxCoverage set, a
// shortage variable absorbs the gap and is penalized in the objective.
func (b *Builder) addCoverage(m *cpmodel.Builder, plan *model.Plan, horizon []time.Time, keys []Key, vars map[Key]cpmodel.BoolVar) map[string]cpmodel.IntVar {
	shortVars := make(map[string]cpmodel.IntVar)
	for _, f := range plan.Facilities {
		weight := int64(math.Round(f.CapacityPerHour * scale))
		for di, date := range horizon {
			demand := int64(plan.Demand(f.ID, date)) * scale
			if demand == 0 {
				// Zero demand requires zero coverage; assignments stay
				// allowed and are priced by the objective alone.
				continue
			}
			coverage := cpmodel.NewLinearExpr()
			for _, k := range keys {
				if k.Facility == f.ID && k.Day == di {
					coverage.AddTerm(vars[k], weight)
				}
			}
			if b.cfg.RelaxCoverage {
				name := shortName(f.ID, di)
				short := m.NewIntVarFromDomain(cpmodel.NewDomain(0, demand)).WithName(name)
				shortVars[name] = short
				coverage.Add(short)
			}
			m.AddGreaterOrEqual(coverage, cpmodel.NewConstant(demand))
		}
	}
	return shortVars
}

// addWorksOnDay creates the per-(employee, day) indicator booleans used
// by the day-count penalties. worked ≤ hours and hours ≤ 24·worked tie
// the indicator to the assignment variables.
func (b *Builder) addWorksOnDay(m *cpmodel.Builder, plan *model.Plan, horizon []time.Time, keys []Key, vars map[Key]cpmodel.BoolVar) map[string]map[int]cpmodel.BoolVar {
	works := make(map[string]map[int]cpmodel.BoolVar, len(plan.Employees))
	for _, e := range plan.Employees {
		works[e.ID] = make(map[int]cpmodel.BoolVar)
		for di := range horizon {
			hours := cpmodel.NewLinearExpr()
			n := 0
			for _, k := range keys {
				if k.Employee == e.ID && k.Day == di {
					hours.Add(vars[k])
					n++
				}
			}
			if n == 0 {
				continue
			}
			w := m.NewBoolVar().WithName(fmt.Sprintf("works|%s|%d", e.ID, di))
			m.AddLessOrEqual(w, hours)
			ub := cpmodel.NewLinearExpr()
			ub.AddTerm(w, int64(model.HoursInDay))
			m.AddLessOrEqual(hours, ub)
			works[e.ID][di] = w
		}
	}
	return works
}

// addWeeklyHoursCap hard-limits the assigned hours per employee in each
// 7-day block of the horizon.
func (b *Builder) addWeeklyHoursCap(m *cpmodel.Builder, plan *model.Plan, horizon []time.Time, keys []Key, vars map[Key]cpmodel.BoolVar) {
	limit := b.cfg.MaxWeeklyHours
	for _, e := range plan.Employees {
		for start := 0; start < len(horizon); start += 7 {
			hours := cpmodel.NewLinearExpr()
			n := 0
			for _, k := range keys {
				if k.Employee == e.ID && k.Day >= start && k.Day < start+7 {
					hours.Add(vars[k])
					n++
				}
			}
			if n <= limit {
				// The block cannot exceed the cap structurally.
				continue
			}
			m.AddLessOrEqual(hours, cpmodel.NewConstant(int64(limit)))
		}
	}
}

// addRestInterval forbids an employee from starting a new shift within
// MinRestHours of ending the previous one. works(g) is the sum of the
// facility variables at global hour g; the no-double-booking constraint
// keeps it in {0, 1}. A shift ending at hour g leaves hour g+1 off, so
// for every gap length r in [2, MinRestHours] the constraint
// works(g) - works(g+1) + works(g+r) <= 1 binds exactly at shift ends
// and stays slack while the shift runs on through g+1.
func (b *Builder) addRestInterval(m *cpmodel.Builder, plan *model.Plan, horizon []time.Time, keys []Key, vars map[Key]cpmodel.BoolVar) {
	rest := b.cfg.MinRestHours
	if rest < 2 {
		return
	}
	total := len(horizon) * model.HoursInDay
	for _, e := range plan.Employees {
		at := make(map[int][]cpmodel.BoolVar)
		for _, k := range keys {
			if k.Employee == e.ID {
				g := k.Day*model.HoursInDay + k.Hour
				at[g] = append(at[g], vars[k])
			}
		}
		for g := 0; g < total; g++ {
			if len(at[g]) == 0 {
				continue
			}
			for r := 2; r <= rest; r++ {
				if g+r >= total || len(at[g+r]) == 0 {
					continue
				}
				expr := cpmodel.NewLinearExpr()
				for _, v := range at[g] {
					expr.Add(v)
				}
				for _, v := range at[g+1] {
					expr.AddTerm(v, -1)
				}
				for _, v := range at[g+r] {
					expr.Add(v)
				}
				m.AddLessOrEqual(expr, cpmodel.NewConstant(1))
			}
		}
	}
}

// addAssignmentCosts prices every assigned hour at the employee's hourly
// cost, less the preference bonus for preferred facilities. The bonus is
// clipped so an assignment never becomes free or profitable: it breaks
// ties, it never overrides cost-minimality.
func (b *Builder) addAssignmentCosts(obj *cpmodel.LinearExpr, plan *model.Plan, keys []Key, vars map[Key]cpmodel.BoolVar) {
	costs := make(map[string]float64, len(plan.Employees))
	preferred := make(map[string]map[string]bool, len(plan.Employees))
	for _, e := range plan.Employees {
		costs[e.ID] = e.CostPerHour
		preferred[e.ID] = e.Preferred
	}
	for _, k := range keys {
		cost := costs[k.Employee]
		if preferred[k.Employee][k.Facility] {
			cost = math.Max(0, cost-b.cfg.PreferenceBonus)
		}
		obj.AddTerm(vars[k], int64(math.Round(cost*scale)))
	}
}

// addShortfallPenalties charges each uncovered (scaled) task at the
// shortfall weight. The weight is configured to dominate all the other
// soft terms so demand coverage wins over every other preference.
func (b *Builder) addShortfallPenalties(obj *cpmodel.LinearExpr, shortVars map[string]cpmodel.IntVar) {
	for _, v := range shortVars {
		obj.AddTerm(v, int64(math.Round(b.cfg.ShortfallPenalty)))
	}
}

// addConsecutiveDaysPenalty charges each working day beyond the
// configured run length, over every sliding window of that length plus
// one.
func (b *Builder) addConsecutiveDaysPenalty(m *cpmodel.Builder, obj *cpmodel.LinearExpr, plan *model.Plan, horizon []time.Time, works map[string]map[int]cpmodel.BoolVar) {
	limit := b.cfg.MaxConsecutiveDays
	if len(horizon) <= limit {
		return
	}
	weight := int64(math.Round(b.cfg.ConsecutiveDaysPenalty * scale))
	for _, e := range plan.Employees {
		for start := 0; start+limit < len(horizon); start++ {
			days := cpmodel.NewLinearExpr()
			n := 0
			for di := start; di <= start+limit; di++ {
				if w, ok := works[e.ID][di]; ok {
					days.Add(w)
					n++
				}
			}
			if n <= limit {
				continue
			}
			excess := m.NewIntVarFromDomain(cpmodel.NewDomain(0, 1)).
				WithName(fmt.Sprintf("exconsec|%s|%d", e.ID, start))
			bound := cpmodel.NewLinearExpr()
			bound.Add(excess)
			bound.AddConstant(int64(limit))
			m.AddLessOrEqual(days, bound)
			obj.AddTerm(excess, weight)
		}
	}
}

// addWeeklyDaysPenalty charges working days beyond the weekly maximum in
// each 7-day block of the horizon.
func (b *Builder) addWeeklyDaysPenalty(m *cpmodel.Builder, obj *cpmodel.LinearExpr, plan *model.Plan, horizon []time.Time, works map[string]map[int]cpmodel.BoolVar) {
	weight := int64(math.Round(b.cfg.WeeklyDaysPenalty * scale))
	for _, e := range plan.Employees {
		for start := 0; start < len(horizon); start += 7 {
			days := cpmodel.NewLinearExpr()
			n := 0
			for di := start; di < start+7 && di < len(horizon); di++ {
				if w, ok := works[e.ID][di]; ok {
					days.Add(w)
					n++
				}
			}
			if n <= b.cfg.MaxDaysPerWeek {
				continue
			}
			excess := m.NewIntVarFromDomain(cpmodel.NewDomain(0, 7)).
				WithName(fmt.Sprintf("exweek|%s|%d", e.ID, start))
			bound := cpmodel.NewLinearExpr()
			bound.Add(excess)
			bound.AddConstant(int64(b.cfg.MaxDaysPerWeek))
			m.AddLessOrEqual(days, bound)
			obj.AddTerm(excess, weight)
		}
	}
}

// addDailyHoursPenalty charges each assigned hour beyond the daily
// maximum, scaled by the excess.
func (b *Builder) addDailyHoursPenalty(m *cpmodel.Builder, obj *cpmodel.LinearExpr, plan *model.Plan, horizon []time.Time, keys []Key, vars map[Key]cpmodel.BoolVar) {
	weight := int64(math.Round(b.cfg.DailyHoursPenalty * scale))
	for _, e := range plan.Employees {
		for di := range horizon {
			hours := cpmodel.NewLinearExpr()
			n := 0
			for _, k := range keys {
				if k.Employee == e.ID && k.Day == di {
					hours.Add(vars[k])
					n++
				}
			}
			if n <= b.cfg.MaxHoursPerDay {
				continue
			}
			excess := m.NewIntVarFromDomain(cpmodel.NewDomain(0, model.HoursInDay)).
				WithName(fmt.Sprintf("exday|%s|%d", e.ID, di))
			bound := cpmodel.NewLinearExpr()
			bound.Add(excess)
			bound.AddConstant(int64(b.cfg.MaxHoursPerDay))
			m.AddLessOrEqual(hours, bound)
			obj.AddTerm(excess, weight)
		}
	}
}

// interpret turns the solver result into assignments grouped by
// (employee, facility, date) with ordered hour lists.
func (b *Builder) interpret(plan *model.Plan, horizon []time.Time, keys []Key, res solver.Result) *model.ScheduleResult {
	out := &model.ScheduleResult{
		Status:      string(res.Status),
		WallTimeSec: res.WallTime.Seconds(),
		Message:     res.Message,
		Assignments: []model.Assignment{},
	}
	if res.Status != solver.StatusOK && res.Status != solver.StatusBestEffort {
		return out
	}

	objective := res.Objective / scale
	out.Objective = &objective

	type group struct {
		employee, facility string
		day                int
	}
	hoursBy := make(map[group][]int)
	hoursPerEmployee := make(map[string]int)
	daysPerEmployee := make(map[string]map[int]bool)
	for _, k := range keys {
		if res.Values[k.name()] < 0.5 {
			continue
		}
		g := group{employee: k.Employee, facility: k.Facility, day: k.Day}
		hoursBy[g] = append(hoursBy[g], k.Hour)
		hoursPerEmployee[k.Employee]++
		if daysPerEmployee[k.Employee] == nil {
			daysPerEmployee[k.Employee] = make(map[int]bool)
		}
		daysPerEmployee[k.Employee][k.Day] = true
	}
	for g, hours := range hoursBy {
		// Hours were appended in ascending order per key enumeration.
		out.Assignments = append(out.Assignments, model.Assignment{
			EmployeeID: g.employee,
			FacilityID: g.facility,
			Date:       horizon[g.day].Format(model.DateLayout),
			Hours:      hours,
		})
	}
	model.SortAssignments(out.Assignments)

	days := make(map[string]int, len(daysPerEmployee))
	for id, set := range daysPerEmployee {
		days[id] = len(set)
	}
	out.Diagnostics = &model.Diagnostics{HoursPerEmployee: hoursPerEmployee, DaysPerEmployee: days}

	if b.cfg.RelaxCoverage {
		for _, f := range plan.Facilities {
			for di, date := range horizon {
				if v, ok := res.Values[shortName(f.ID, di)]; ok && v > 0 {
					out.Shortages = append(out.Shortages, model.Shortage{
						FacilityID: f.ID,
						Date:       date.Format(model.DateLayout),
						Tasks:      v / scale,
					})
				}
			}
		}
	}
	return out
}
