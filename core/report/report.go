// Package report composes the two solve outcomes into the single output
// document. The sub-results stay independent: one pipeline failing never
// forces the other into failure, so callers can act on whichever
// succeeded.
package report

import (
	"encoding/json"
	"io"

	"github.com/planops/rosterd/core/model"
	"github.com/planops/rosterd/core/solver"
)

// Document is the unified output of one planning run.
type Document struct {
	RunID    string                `json:"run_id"`
	Schedule *model.ScheduleResult `json:"schedule_result"`
	Overtime *model.OvertimeResult `json:"overtime_result"`
}

// Compose merges the two solution records, substituting an ERROR record
// for any pipeline that produced none, so the document is always
// complete and parseable.
func Compose(runID string, schedule *model.ScheduleResult, overtime *model.OvertimeResult) *Document {
	if schedule == nil {
		schedule = &model.ScheduleResult{
			Status:      string(solver.StatusError),
			Assignments: []model.Assignment{},
			Message:     "schedule solve produced no result",
		}
	}
	if overtime == nil {
		overtime = &model.OvertimeResult{
			Status:     string(solver.StatusError),
			Allocation: []model.Allocation{},
			Message:    "overtime solve produced no result",
		}
	}
	return &Document{RunID: runID, Schedule: schedule, Overtime: overtime}
}

// Errored reports whether either pipeline ended in an adapter-level
// error. Infeasibility is a determinate outcome and does not count.
func (d *Document) Errored() bool {
	return d.Schedule.Status == string(solver.StatusError) ||
		d.Overtime.Status == string(solver.StatusError)
}

// Write encodes the document as indented JSON.
func (d *Document) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
