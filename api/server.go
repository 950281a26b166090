// Package api exposes the planning pipeline over HTTP for deployments
// where runs are triggered remotely instead of via the CLI.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/planops/rosterd/app"
	corelogger "github.com/planops/rosterd/core/logger"
	"github.com/planops/rosterd/infra/logger"
)

// Server handles solve requests over HTTP.
type Server struct {
	svc *app.Service
	log corelogger.Logger
}

// NewServer creates a Server backed by the given service.
func NewServer(svc *app.Service, log corelogger.Logger) *Server {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Server{svc: svc, log: log}
}

type solveRequest struct {
	ScheduleInput      json.RawMessage `json:"schedule_input"`
	CleaningTasksInput json.RawMessage `json:"cleaning_tasks_input"`
}

// Handler returns the HTTP mux: POST /solve runs the pipeline,
// /metrics exposes Prometheus metrics, /healthz answers liveness
// probes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/solve", s.handleSolve)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.ScheduleInput) == 0 || len(req.CleaningTasksInput) == 0 {
		http.Error(w, "schedule_input and cleaning_tasks_input are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	// The query parameter caps the configured solver budget for this
	// request. It cannot extend it.
	if v := r.URL.Query().Get("time_limit_sec"); v != "" {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil || secs <= 0 {
			http.Error(w, "invalid time_limit_sec", http.StatusBadRequest)
			return
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(secs*float64(time.Second)))
		defer cancel()
	}

	doc, err := s.svc.Run(ctx, req.ScheduleInput, req.CleaningTasksInput)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := doc.Write(w); err != nil {
		s.log.Errorf("write response: %v", err)
	}
}

// Start serves the API on addr until the context is canceled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api server shutdown: %v", err)
		}
	}()
	s.log.Infof("api server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
