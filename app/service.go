// Package app wires the planning pipeline: loader → schedule solve →
// overtime solve → composed report. The two solves are independent and
// run concurrently unless the overtime demand derives from the schedule
// solution's residuals.
package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/planops/rosterd/config"
	"github.com/planops/rosterd/core/loader"
	corelogger "github.com/planops/rosterd/core/logger"
	coremetrics "github.com/planops/rosterd/core/metrics"
	"github.com/planops/rosterd/core/model"
	"github.com/planops/rosterd/core/overtime"
	"github.com/planops/rosterd/core/report"
	"github.com/planops/rosterd/core/schedule"
	"github.com/planops/rosterd/core/solver"
	"github.com/planops/rosterd/infra/logger"
	"github.com/planops/rosterd/infra/metrics"
	"github.com/planops/rosterd/infra/solver/cpsat"
	"github.com/planops/rosterd/infra/solver/simplex"
)

// Service runs planning requests against the configured engines.
type Service struct {
	cfg  *config.Config
	log  corelogger.Logger
	cp   solver.ConstraintSolver
	lp   solver.LinearSolver
	sink coremetrics.RunSink
}

// New creates a Service from the configuration, wiring the metrics
// sinks and both solver engines.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.RunSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.RunSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	return &Service{
		cfg:  cfg,
		log:  logg,
		cp:   cpsat.New(cfg.Solver, logger.New("cpsat")),
		lp:   simplex.New(logger.New("simplex")),
		sink: sink,
	}, nil
}

// NewWithSolvers creates a Service with explicit collaborators. Used by
// tests and embedding callers.
func NewWithSolvers(cfg *config.Config, cp solver.ConstraintSolver, lp solver.LinearSolver, sink coremetrics.RunSink, log corelogger.Logger) *Service {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{cfg: cfg, log: log, cp: cp, lp: lp, sink: sink}
}

// Run loads the two input documents and executes both solves. A loader
// error aborts before any solver resource is allocated. Solver-level
// failures never abort: the composed document always carries both
// statuses.
func (s *Service) Run(ctx context.Context, scheduleDoc, taskDoc []byte) (*report.Document, error) {
	runID := uuid.NewString()
	plan, err := loader.Load(scheduleDoc, taskDoc)
	if err != nil {
		s.log.Errorf("input rejected: %v", err)
		return nil, err
	}
	s.log.Infof("run %s: %d facilities, %d employees, %d task records, horizon %d days",
		runID, len(plan.Facilities), len(plan.Employees), len(plan.Tasks), len(plan.Horizon()))

	if limit := s.cfg.Solver.RunTimeLimit(); limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	type schedOut struct {
		res   *model.ScheduleResult
		stats schedule.Stats
	}
	schedCh := make(chan schedOut, 1)
	go func() {
		res, stats := schedule.NewBuilder(s.cfg.Schedule, s.log).Solve(ctx, plan, s.cp)
		schedCh <- schedOut{res: res, stats: stats}
	}()

	otBuilder := overtime.NewBuilder(s.cfg.Overtime, s.log)

	var sched schedOut
	var otRes *model.OvertimeResult
	var otStats overtime.Stats
	if s.cfg.Overtime.Source == config.SourceResidual {
		// The overtime model consumes the schedule solution's residual
		// demand, so it blocks on that solve completing.
		sched = <-schedCh
		demand := residualHours(plan, sched.res)
		otRes, otStats = otBuilder.Solve(ctx, plan, demand, s.lp)
	} else {
		type otOut struct {
			res   *model.OvertimeResult
			stats overtime.Stats
		}
		otCh := make(chan otOut, 1)
		go func() {
			res, stats := otBuilder.Solve(ctx, plan, inputDemand(plan), s.lp)
			otCh <- otOut{res: res, stats: stats}
		}()
		sched = <-schedCh
		oo := <-otCh
		otRes, otStats = oo.res, oo.stats
	}

	s.record(runID, "schedule", sched.res.Status, sched.res.Objective, sched.res.WallTimeSec, sched.stats.Variables)
	s.record(runID, "overtime", otRes.Status, otRes.Objective, otRes.WallTimeSec, otStats.Variables)

	return report.Compose(runID, sched.res, otRes), nil
}

func (s *Service) record(runID, pipeline, status string, objective *float64, wallSec float64, variables int) {
	run := coremetrics.SolveRun{
		RunID:     runID,
		Pipeline:  pipeline,
		Status:    status,
		WallTime:  time.Duration(wallSec * float64(time.Second)),
		Variables: variables,
		Time:      time.Now(),
	}
	if objective != nil {
		run.Objective = *objective
	}
	if err := s.sink.RecordSolveRun(run); err != nil {
		s.log.Warnf("metrics sink: %v", err)
	}
}

// inputDemand reads the scalar overtime target from the input document.
func inputDemand(plan *model.Plan) float64 {
	if plan.Overtime == nil {
		return 0
	}
	return plan.Overtime.TotalHours
}

// residualHours converts the schedule solve's uncovered tasks into
// overtime hours using each facility's completion rate. Without a
// schedule solution there are no residual figures and the demand is
// zero.
func residualHours(plan *model.Plan, res *model.ScheduleResult) float64 {
	if res == nil || res.Objective == nil {
		return 0
	}
	var hours float64
	for _, sh := range res.Shortages {
		if f, ok := plan.Facility(sh.FacilityID); ok && f.CapacityPerHour > 0 {
			hours += sh.Tasks / f.CapacityPerHour
		}
	}
	return hours
}
