package model

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the wire format for all calendar dates.
const DateLayout = "2006-01-02"

// HoursInDay bounds every hour index handled by the planner.
const HoursInDay = 24

// Window is a half-open hour range [Start, End) within a single day.
type Window struct {
	Start int
	End   int
}

// Contains reports whether the hour falls inside the window.
func (w Window) Contains(hour int) bool {
	return hour >= w.Start && hour < w.End
}

// Intersect returns the overlap of two windows and whether it is non-empty.
func (w Window) Intersect(o Window) (Window, bool) {
	r := Window{Start: max(w.Start, o.Start), End: min(w.End, o.End)}
	if r.Start >= r.End {
		return Window{}, false
	}
	return r, true
}

// PlanningSettings carries the run-wide scheduling parameters.
type PlanningSettings struct {
	PlanningStartDate time.Time
	CleaningShift     Window
}

// Facility is a site where cleaning tasks accrue.
type Facility struct {
	ID   string
	Name string
	// CapacityPerHour is the number of tasks one employee completes in
	// one hour at this facility.
	CapacityPerHour float64
}

// Employee is a worker available for shift assignments.
type Employee struct {
	ID          string
	Name        string
	CostPerHour float64
	// Preferred holds facility IDs the employee favours. Empty means
	// indifferent: no bonus and no restriction for any facility.
	Preferred map[string]bool
	// Availability maps a weekday to the hours the employee may work.
	// Weekdays with no entry contribute zero assignable hours.
	Availability map[time.Weekday]Window
	// MaxOvertime is the employee's overtime cap in hours. Zero means
	// the employee takes no overtime.
	MaxOvertime float64
}

// AvailableOn returns the employee's window for the weekday of the
// given date, if any.
func (e Employee) AvailableOn(date time.Time) (Window, bool) {
	w, ok := e.Availability[date.Weekday()]
	return w, ok
}

// TaskDemand is the number of cleaning tasks required at a facility on
// a date.
type TaskDemand struct {
	FacilityID string
	Date       time.Time
	NumTasks   int
}

// OvertimeDemand describes the overtime allocation sub-problem as
// provided in the input document.
type OvertimeDemand struct {
	TotalHours float64
	Employees  []OvertimeCandidate
}

// OvertimeCandidate is one employee eligible for overtime hours.
type OvertimeCandidate struct {
	ID          string
	MaxOvertime float64
	CostPerHour float64
}

// Plan is the validated, immutable input of one planning run.
type Plan struct {
	Settings   PlanningSettings
	Facilities []Facility
	Employees  []Employee
	Tasks      []TaskDemand
	Overtime   *OvertimeDemand

	horizon []time.Time
}

// NewPlan derives the planning horizon and returns the assembled plan.
// The horizon spans every date between the earliest and latest task
// demand record, inclusive.
func NewPlan(settings PlanningSettings, facilities []Facility, employees []Employee, tasks []TaskDemand, overtime *OvertimeDemand) *Plan {
	p := &Plan{Settings: settings, Facilities: facilities, Employees: employees, Tasks: tasks, Overtime: overtime}
	if len(tasks) == 0 {
		return p
	}
	lo, hi := tasks[0].Date, tasks[0].Date
	for _, t := range tasks[1:] {
		if t.Date.Before(lo) {
			lo = t.Date
		}
		if t.Date.After(hi) {
			hi = t.Date
		}
	}
	for d := lo; !d.After(hi); d = d.AddDate(0, 0, 1) {
		p.horizon = append(p.horizon, d)
	}
	return p
}

// Horizon returns the ordered dates of the planning period.
func (p *Plan) Horizon() []time.Time { return p.horizon }

// Demand returns the required task count for a facility and date.
func (p *Plan) Demand(facilityID string, date time.Time) int {
	for _, t := range p.Tasks {
		if t.FacilityID == facilityID && t.Date.Equal(date) {
			return t.NumTasks
		}
	}
	return 0
}

// Facility looks up a facility by ID.
func (p *Plan) Facility(id string) (Facility, bool) {
	for _, f := range p.Facilities {
		if f.ID == id {
			return f, true
		}
	}
	return Facility{}, false
}

// Assignment is one employee's worked hours at a facility on a date.
type Assignment struct {
	EmployeeID string `json:"employee_id"`
	FacilityID string `json:"facility_id"`
	Date       string `json:"date"`
	Hours      []int  `json:"hours"`
}

// Allocation is the overtime hours granted to one employee.
type Allocation struct {
	ID            string  `json:"id"`
	OvertimeHours float64 `json:"overtime_hours"`
}

// Shortage records unmet demand at a facility/date after a relaxed
// coverage solve.
type Shortage struct {
	FacilityID string  `json:"facility_id"`
	Date       string  `json:"date"`
	Tasks      float64 `json:"tasks"`
}

// Diagnostics summarizes per-employee load in a schedule solution.
type Diagnostics struct {
	HoursPerEmployee map[string]int `json:"hours_worked_per_employee"`
	DaysPerEmployee  map[string]int `json:"days_worked_per_employee"`
}

// ScheduleResult is the outcome of the shift scheduling solve.
type ScheduleResult struct {
	Status      string       `json:"status"`
	Objective   *float64     `json:"objective,omitempty"`
	Assignments []Assignment `json:"assignments"`
	Shortages   []Shortage   `json:"shortages,omitempty"`
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
	WallTimeSec float64      `json:"wall_time_sec"`
	Message     string       `json:"message,omitempty"`
}

// OvertimeResult is the outcome of the overtime allocation solve.
type OvertimeResult struct {
	Status      string       `json:"status"`
	Objective   *float64     `json:"objective,omitempty"`
	Allocation  []Allocation `json:"allocation"`
	WallTimeSec float64      `json:"wall_time_sec"`
	Message     string       `json:"message,omitempty"`
}

// SortAssignments orders assignments by employee, date and facility so
// output documents are stable for a given solution.
func SortAssignments(as []Assignment) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].EmployeeID != as[j].EmployeeID {
			return as[i].EmployeeID < as[j].EmployeeID
		}
		if as[i].Date != as[j].Date {
			return as[i].Date < as[j].Date
		}
		return as[i].FacilityID < as[j].FacilityID
	})
}

// ParseWeekday converts the input document's weekday token.
func ParseWeekday(s string) (time.Weekday, error) {
	switch s {
	case "Mon":
		return time.Monday, nil
	case "Tue":
		return time.Tuesday, nil
	case "Wed":
		return time.Wednesday, nil
	case "Thu":
		return time.Thursday, nil
	case "Fri":
		return time.Friday, nil
	case "Sat":
		return time.Saturday, nil
	case "Sun":
		return time.Sunday, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
