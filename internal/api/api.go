// Package api implements the spherepack HTTP API.
//
// The API exposes the packing pipeline over REST:
//   - POST /v1/pack   packs synchronously and returns the result document
//   - POST /v1/runs   submits an asynchronous run, returns 202 with the run ID
//   - GET  /v1/runs   lists runs, newest first
//   - GET  /v1/runs/{id}  returns run status and, once finished, the result
//   - GET  /healthz   liveness probe
//   - GET  /version   build information
//
// Asynchronous runs are executed by a fixed pool of worker goroutines and
// their records live in a runstore.Store, so a Redis or Mongo store lets
// any instance answer for a run submitted to another.
package api

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/granulab/spherepack/pkg/pipeline"
	"github.com/granulab/spherepack/pkg/runstore"
)

// Defaults for server configuration.
const (
	// DefaultWorkers is the size of the asynchronous run worker pool.
	DefaultWorkers = 2

	// DefaultTimeout bounds synchronous pack requests.
	DefaultTimeout = 60 * time.Second

	// DefaultQueueSize is the asynchronous run backlog. Submissions
	// beyond it are rejected with 503 rather than blocking the handler.
	DefaultQueueSize = 64
)

// Server handles API requests.
type Server struct {
	runner  *pipeline.Runner
	runs    runstore.Store
	logger  *log.Logger
	timeout time.Duration
	workers int

	jobs chan string
	wg   sync.WaitGroup
}

// Config configures the API server.
type Config struct {
	// Runner executes pack pipelines. If nil, an uncached runner is used.
	Runner *pipeline.Runner

	// Runs stores run records. If nil, an in-memory store is used.
	Runs runstore.Store

	// Logger receives request and worker logs. If nil, the default
	// logger is used.
	Logger *log.Logger

	// Workers is the asynchronous worker pool size. Zero means
	// DefaultWorkers.
	Workers int

	// Timeout bounds synchronous pack requests. Zero means
	// DefaultTimeout.
	Timeout time.Duration
}

// New creates a server. Call Start to launch the worker pool before
// serving requests that submit asynchronous runs.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Runs == nil {
		cfg.Runs = runstore.NewMemoryStore()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Server{
		runner:  cfg.Runner,
		runs:    cfg.Runs,
		logger:  cfg.Logger,
		timeout: cfg.Timeout,
		workers: cfg.Workers,
		jobs:    make(chan string, DefaultQueueSize),
	}
}

// Router builds the HTTP handler with all routes and middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1", func(r chi.Router) {
		r.With(middleware.Timeout(s.timeout)).Post("/pack", s.handlePack)
		r.Post("/runs", s.handleSubmitRun)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})

	return r
}

// Start launches the worker pool. Workers exit when ctx is cancelled;
// Wait blocks until they have drained.
func (s *Server) Start(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}
}

// Wait blocks until all workers have exited.
func (s *Server) Wait() {
	s.wg.Wait()
}

// worker executes queued runs until ctx is cancelled.
func (s *Server) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-s.jobs:
			s.executeRun(ctx, id)
		}
	}
}

// executeRun drives one queued run through its lifecycle.
func (s *Server) executeRun(ctx context.Context, id string) {
	run, err := s.runs.Get(ctx, id)
	if err != nil || run == nil {
		s.logger.Error("load queued run", "run_id", id, "err", err)
		return
	}

	if err := run.Transition(runstore.StatusRunning); err != nil {
		s.logger.Error("start run", "run_id", id, "err", err)
		return
	}
	if err := s.runs.Put(ctx, run); err != nil {
		s.logger.Error("store run", "run_id", id, "err", err)
	}

	res, execErr := s.runner.Execute(ctx, run.Options)
	finishRun(run, res, execErr)
	if err := s.runs.Put(ctx, run); err != nil {
		s.logger.Error("store run", "run_id", id, "err", err)
		return
	}
	s.logger.Info("run finished", "run_id", id, "status", run.Status)
}

// finishRun records the pipeline outcome on the run. A non-converged run
// fails but keeps its best-effort result and residual.
func finishRun(run *runstore.Run, res *pipeline.Result, err error) {
	if err == nil {
		run.Result = res.Report
		run.Transition(runstore.StatusCompleted)
		return
	}
	run.Error = err.Error()
	if res != nil && res.Report != nil {
		run.Result = res.Report
		if res.Packing != nil {
			run.Residual = res.Packing.Residual
		}
	}
	run.Transition(runstore.StatusFailed)
}

// Close releases the server's stores and caches.
func (s *Server) Close() error {
	err := s.runs.Close()
	if cerr := s.runner.Close(); err == nil {
		err = cerr
	}
	return err
}
