package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/planops/rosterd/core/model"
	"github.com/planops/rosterd/core/solver"
)

func TestComposeSubstitutesMissingResults(t *testing.T) {
	doc := Compose("run-1", nil, nil)
	if doc.Schedule == nil || doc.Overtime == nil {
		t.Fatalf("compose must fill both sections")
	}
	if doc.Schedule.Status != string(solver.StatusError) || doc.Overtime.Status != string(solver.StatusError) {
		t.Fatalf("missing results must surface as errors: %+v", doc)
	}
	if !doc.Errored() {
		t.Fatalf("expected errored document")
	}
}

func TestComposeIndependence(t *testing.T) {
	ok := 5000.0
	doc := Compose("run-2",
		&model.ScheduleResult{Status: string(solver.StatusOK), Objective: &ok, Assignments: []model.Assignment{}},
		&model.OvertimeResult{Status: string(solver.StatusInfeasible), Allocation: []model.Allocation{}},
	)
	// Infeasibility is determinate; the document as a whole is sound.
	if doc.Errored() {
		t.Fatalf("infeasible sub-result must not error the document")
	}
}

func TestWrite(t *testing.T) {
	obj := 120.0
	doc := Compose("run-3",
		&model.ScheduleResult{Status: string(solver.StatusOK), Objective: &obj, Assignments: []model.Assignment{
			{EmployeeID: "E1", FacilityID: "F1", Date: "2026-03-02", Hours: []int{9, 10}},
		}},
		&model.OvertimeResult{Status: string(solver.StatusOK), Objective: &obj, Allocation: []model.Allocation{
			{ID: "E1", OvertimeHours: 2},
		}},
	)
	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	var decoded struct {
		RunID    string `json:"run_id"`
		Schedule struct {
			Status      string `json:"status"`
			Assignments []struct {
				EmployeeID string `json:"employee_id"`
				Hours      []int  `json:"hours"`
			} `json:"assignments"`
		} `json:"schedule_result"`
		Overtime struct {
			Status     string `json:"status"`
			Allocation []struct {
				ID            string  `json:"id"`
				OvertimeHours float64 `json:"overtime_hours"`
			} `json:"allocation"`
		} `json:"overtime_result"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.RunID != "run-3" {
		t.Fatalf("run id lost")
	}
	if len(decoded.Schedule.Assignments) != 1 || decoded.Schedule.Assignments[0].EmployeeID != "E1" {
		t.Fatalf("assignments lost: %+v", decoded.Schedule)
	}
	if len(decoded.Overtime.Allocation) != 1 || decoded.Overtime.Allocation[0].OvertimeHours != 2 {
		t.Fatalf("allocation lost: %+v", decoded.Overtime)
	}
}
