package metrics

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/planops/rosterd/core/metrics"
)

// PromSink records solve runs in Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	wallTime  *prometheus.HistogramVec
	variables *prometheus.GaugeVec
}

// NewPromSink registers solve metrics on the default Prometheus
// registerer. The Prometheus server is started separately.
func NewPromSink(cfg coremetrics.Config) (coremetrics.RunSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.RunSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solve_runs_total",
		Help: "Total number of solve runs",
	}, []string{"pipeline", "status"})
	wallTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solve_wall_time_seconds",
		Help:    "Wall time spent inside the solver engines",
		Buckets: prometheus.DefBuckets,
	}, []string{"pipeline"})
	variables := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solve_model_variables",
		Help: "Decision variable count of the last solved model",
	}, []string{"pipeline"})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(wallTime); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			wallTime = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(variables); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			variables = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{runs: runs, wallTime: wallTime, variables: variables}, nil
}

// RecordSolveRun updates the counters for one solve run.
func (s *PromSink) RecordSolveRun(run coremetrics.SolveRun) error {
	s.runs.WithLabelValues(run.Pipeline, run.Status).Inc()
	s.wallTime.WithLabelValues(run.Pipeline).Observe(run.WallTime.Seconds())
	s.variables.WithLabelValues(run.Pipeline).Set(float64(run.Variables))
	return nil
}

// StartPromServer serves /metrics on addr until the context is canceled.
func StartPromServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("prom server shutdown: %v", err)
		}
		cancel()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
