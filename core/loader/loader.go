// Package loader validates and normalizes the two raw input documents
// into the immutable entities of one planning run. All data faults are
// detected here, before any solver resource is allocated.
package loader

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/planops/rosterd/core/model"
)

type scheduleDocument struct {
	Settings *struct {
		PlanningStartDate      string `json:"planning_start_date"`
		CleaningShiftStartHour *int   `json:"cleaning_shift_start_hour"`
		CleaningShiftEndHour   *int   `json:"cleaning_shift_end_hour"`
	} `json:"settings"`
	Facilities []struct {
		ID              string   `json:"id"`
		Name            string   `json:"name"`
		CapacityPerHour *float64 `json:"cleaning_capacity_tasks_per_hour_per_employee"`
	} `json:"facilities"`
	Employees []struct {
		ID                  string              `json:"id"`
		Name                string              `json:"name"`
		CostPerHour         *float64            `json:"cost_per_hour"`
		PreferredFacilities []string            `json:"preferred_facilities"`
		Availability        map[string]struct { // weekday -> window
			Start *int `json:"start"`
			End   *int `json:"end"`
		} `json:"availability"`
		MaxOvertime float64 `json:"max_overtime"`
	} `json:"employees"`
	Overtime *struct {
		TotalOvertimeHours float64 `json:"total_overtime_hours"`
		Employees          []struct {
			ID           string  `json:"id"`
			MaxOvertime  float64 `json:"max_overtime"`
			OvertimeCost float64 `json:"overtime_cost"`
		} `json:"employees"`
	} `json:"overtime"`
}

type taskDocument struct {
	Tasks []struct {
		FacilityID string `json:"facility_id"`
		Date       string `json:"date"`
		NumTasks   *int   `json:"num_tasks"`
	} `json:"tasks"`
}

// Load decodes and validates the schedule and task-demand documents and
// returns the assembled plan. The error is one of *ValidationError,
// *ReferenceError or *RangeError.
func Load(scheduleDoc, taskDoc []byte) (*model.Plan, error) {
	var sd scheduleDocument
	if err := json.Unmarshal(scheduleDoc, &sd); err != nil {
		return nil, &ValidationError{Field: "schedule_input", Reason: err.Error()}
	}
	var td taskDocument
	if err := json.Unmarshal(taskDoc, &td); err != nil {
		return nil, &ValidationError{Field: "cleaning_tasks_input", Reason: err.Error()}
	}

	settings, err := loadSettings(&sd)
	if err != nil {
		return nil, err
	}

	facilities := make([]model.Facility, 0, len(sd.Facilities))
	facilityIDs := make(map[string]bool, len(sd.Facilities))
	for i, f := range sd.Facilities {
		field := fmt.Sprintf("facilities[%d]", i)
		if f.ID == "" {
			return nil, &ValidationError{Field: field + ".id", Reason: "required"}
		}
		if facilityIDs[f.ID] {
			return nil, &ValidationError{Field: field + ".id", Reason: "duplicate id " + f.ID}
		}
		if f.CapacityPerHour == nil || *f.CapacityPerHour <= 0 {
			return nil, &ValidationError{Field: field + ".cleaning_capacity_tasks_per_hour_per_employee", Reason: "must be positive"}
		}
		facilityIDs[f.ID] = true
		facilities = append(facilities, model.Facility{ID: f.ID, Name: f.Name, CapacityPerHour: *f.CapacityPerHour})
	}

	employees := make([]model.Employee, 0, len(sd.Employees))
	employeeIDs := make(map[string]bool, len(sd.Employees))
	for i, e := range sd.Employees {
		field := fmt.Sprintf("employees[%d]", i)
		if e.ID == "" {
			return nil, &ValidationError{Field: field + ".id", Reason: "required"}
		}
		if employeeIDs[e.ID] {
			return nil, &ValidationError{Field: field + ".id", Reason: "duplicate id " + e.ID}
		}
		if e.CostPerHour == nil || *e.CostPerHour < 0 {
			return nil, &ValidationError{Field: field + ".cost_per_hour", Reason: "must be present and non-negative"}
		}
		if e.MaxOvertime < 0 {
			return nil, &ValidationError{Field: field + ".max_overtime", Reason: "must be non-negative"}
		}
		preferred := make(map[string]bool, len(e.PreferredFacilities))
		for _, fid := range e.PreferredFacilities {
			if !facilityIDs[fid] {
				return nil, &ReferenceError{Field: field + ".preferred_facilities", Ref: fid}
			}
			preferred[fid] = true
		}
		availability := make(map[time.Weekday]model.Window, len(e.Availability))
		for day, w := range e.Availability {
			wd, err := model.ParseWeekday(day)
			if err != nil {
				return nil, &ValidationError{Field: field + ".availability", Reason: err.Error()}
			}
			if w.Start == nil || w.End == nil {
				return nil, &ValidationError{Field: field + ".availability." + day, Reason: "start and end are required"}
			}
			if err := checkWindow(field+".availability."+day, *w.Start, *w.End); err != nil {
				return nil, err
			}
			availability[wd] = model.Window{Start: *w.Start, End: *w.End}
		}
		employeeIDs[e.ID] = true
		employees = append(employees, model.Employee{
			ID:           e.ID,
			Name:         e.Name,
			CostPerHour:  *e.CostPerHour,
			Preferred:    preferred,
			Availability: availability,
			MaxOvertime:  e.MaxOvertime,
		})
	}

	tasks := make([]model.TaskDemand, 0, len(td.Tasks))
	taskKeys := make(map[string]bool, len(td.Tasks))
	for i, t := range td.Tasks {
		field := fmt.Sprintf("tasks[%d]", i)
		if !facilityIDs[t.FacilityID] {
			return nil, &ReferenceError{Field: field + ".facility_id", Ref: t.FacilityID}
		}
		date, err := time.Parse(model.DateLayout, t.Date)
		if err != nil {
			return nil, &ValidationError{Field: field + ".date", Reason: "want YYYY-MM-DD"}
		}
		if t.NumTasks == nil || *t.NumTasks < 0 {
			return nil, &ValidationError{Field: field + ".num_tasks", Reason: "must be present and non-negative"}
		}
		key := t.FacilityID + "|" + t.Date
		if taskKeys[key] {
			return nil, &ValidationError{Field: field, Reason: "duplicate facility_id and date pair"}
		}
		taskKeys[key] = true
		tasks = append(tasks, model.TaskDemand{FacilityID: t.FacilityID, Date: date, NumTasks: *t.NumTasks})
	}

	var overtime *model.OvertimeDemand
	if sd.Overtime != nil {
		if sd.Overtime.TotalOvertimeHours < 0 {
			return nil, &ValidationError{Field: "overtime.total_overtime_hours", Reason: "must be non-negative"}
		}
		ot := &model.OvertimeDemand{TotalHours: sd.Overtime.TotalOvertimeHours}
		for i, e := range sd.Overtime.Employees {
			field := fmt.Sprintf("overtime.employees[%d]", i)
			if !employeeIDs[e.ID] {
				return nil, &ReferenceError{Field: field + ".id", Ref: e.ID}
			}
			if e.MaxOvertime < 0 || e.OvertimeCost < 0 {
				return nil, &ValidationError{Field: field, Reason: "max_overtime and overtime_cost must be non-negative"}
			}
			ot.Employees = append(ot.Employees, model.OvertimeCandidate{ID: e.ID, MaxOvertime: e.MaxOvertime, CostPerHour: e.OvertimeCost})
		}
		overtime = ot
	}

	return model.NewPlan(settings, facilities, employees, tasks, overtime), nil
}

func loadSettings(sd *scheduleDocument) (model.PlanningSettings, error) {
	var out model.PlanningSettings
	if sd.Settings == nil {
		return out, &ValidationError{Field: "settings", Reason: "required"}
	}
	start, err := time.Parse(model.DateLayout, sd.Settings.PlanningStartDate)
	if err != nil {
		return out, &ValidationError{Field: "settings.planning_start_date", Reason: "want YYYY-MM-DD"}
	}
	if sd.Settings.CleaningShiftStartHour == nil || sd.Settings.CleaningShiftEndHour == nil {
		return out, &ValidationError{Field: "settings", Reason: "cleaning shift hours are required"}
	}
	sh, eh := *sd.Settings.CleaningShiftStartHour, *sd.Settings.CleaningShiftEndHour
	if err := checkWindow("settings.cleaning_shift", sh, eh); err != nil {
		return out, err
	}
	out.PlanningStartDate = start
	out.CleaningShift = model.Window{Start: sh, End: eh}
	return out, nil
}

func checkWindow(field string, start, end int) error {
	if start < 0 || start > 23 || end < 0 || end > 23 || start >= end {
		return &RangeError{Field: field, Start: start, End: end}
	}
	return nil
}
