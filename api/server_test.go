package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/planops/rosterd/app"
	"github.com/planops/rosterd/config"
	"github.com/planops/rosterd/core/solver"
	"github.com/planops/rosterd/infra/logger"
	"github.com/planops/rosterd/infra/solver/simplex"
)

const scheduleDoc = `{
  "settings": {"planning_start_date": "2026-03-02", "cleaning_shift_start_hour": 9, "cleaning_shift_end_hour": 17},
  "facilities": [{"id": "F1", "cleaning_capacity_tasks_per_hour_per_employee": 2}],
  "employees": [{"id": "E1", "cost_per_hour": 1000, "availability": {"Mon": {"start": 9, "end": 17}}, "max_overtime": 8}]
}`

const taskDoc = `{"tasks": [{"facility_id": "F1", "date": "2026-03-02", "num_tasks": 10}]}`

type fakeCP struct {
	res solver.Result
}

func (f *fakeCP) Solve(context.Context, *cpmodel.Builder) solver.Result { return f.res }

func testServer() *Server {
	values := map[string]float64{
		"x|E1|F1|0|9":  1,
		"x|E1|F1|0|10": 1,
		"x|E1|F1|0|11": 1,
		"x|E1|F1|0|12": 1,
		"x|E1|F1|0|13": 1,
	}
	cp := &fakeCP{res: solver.Result{Status: solver.StatusOK, Objective: 5_000_000, Values: values}}
	svc := app.NewWithSolvers(config.Default(), cp, simplex.New(logger.NopLogger{}), nil, logger.NopLogger{})
	return NewServer(svc, logger.NopLogger{})
}

func solveBody() string {
	return `{"schedule_input": ` + scheduleDoc + `, "cleaning_tasks_input": ` + taskDoc + `}`
}

func TestHandleSolve(t *testing.T) {
	srv := httptest.NewServer(testServer().Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/solve", "application/json", strings.NewReader(solveBody()))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200 got %d", resp.StatusCode)
	}
	var doc struct {
		RunID    string `json:"run_id"`
		Schedule struct {
			Status    string  `json:"status"`
			Objective float64 `json:"objective"`
		} `json:"schedule_result"`
		Overtime struct {
			Status string `json:"status"`
		} `json:"overtime_result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.RunID == "" || doc.Schedule.Status != "OK" || doc.Schedule.Objective != 5000 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.Overtime.Status != "OK" {
		t.Fatalf("unexpected overtime status %q", doc.Overtime.Status)
	}
}

func TestHandleSolveMalformedBody(t *testing.T) {
	srv := httptest.NewServer(testServer().Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/solve", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 got %d", resp.StatusCode)
	}
}

func TestHandleSolveMissingInputs(t *testing.T) {
	srv := httptest.NewServer(testServer().Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/solve", "application/json", strings.NewReader(`{"schedule_input": {}}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 got %d", resp.StatusCode)
	}
}

func TestHandleSolveInvalidInput(t *testing.T) {
	srv := httptest.NewServer(testServer().Handler())
	defer srv.Close()

	body := `{"schedule_input": {"settings": null}, "cleaning_tasks_input": {"tasks": []}}`
	resp, err := http.Post(srv.URL+"/solve", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 got %d", resp.StatusCode)
	}
}

func TestHandleSolveBadTimeLimit(t *testing.T) {
	srv := httptest.NewServer(testServer().Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/solve?time_limit_sec=abc", "application/json", strings.NewReader(solveBody()))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 got %d", resp.StatusCode)
	}
}

func TestHandleSolveMethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(testServer().Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/solve")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("want 405 got %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(testServer().Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200 got %d", resp.StatusCode)
	}
}
