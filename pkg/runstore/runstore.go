// Package runstore persists packing-run records for the API server.
//
// This package defines the run lifecycle and a storage interface with
// implementations for different backends:
//   - memory: In-process storage for development/testing
//   - redis: Redis-backed storage for multi-instance deployments
//   - mongo: MongoDB-backed storage for durable run history
//
// # Architecture
//
// A Run is created in status "pending" when a request is accepted, moves
// to "running" when a worker picks it up, and ends as "completed" or
// "failed". A run that did not converge ends as "failed" but still
// carries the best-effort result and its residual overlap, mirroring how
// the pipeline reports recoverable failures.
//
// Stores persist finished result documents and run metadata, never
// intermediate sphere configurations. The Store interface supports:
//   - Get/Put/Delete by run ID
//   - List sorted by creation time, newest first
//
// # Usage
//
// Create a store:
//
//	// Development
//	store := runstore.NewMemoryStore()
//
//	// Multi-instance
//	store, err := runstore.NewRedisStore(ctx, runstore.RedisConfig{
//	    Addr: "localhost:6379",
//	})
//
//	// Durable history
//	store, err := runstore.NewMongoStore(ctx, runstore.MongoConfig{
//	    URI: "mongodb://localhost:27017",
//	})
//
// Manage runs:
//
//	run := runstore.New(opts)
//	store.Put(ctx, run)
//
//	run.Transition(runstore.StatusRunning)
//	store.Put(ctx, run)
package runstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/granulab/spherepack/pkg/pipeline"
	"github.com/granulab/spherepack/pkg/report"
)

// Sentinel errors for run operations.
var (
	// ErrInvalidTransition is returned for a status change the lifecycle
	// does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Status is the lifecycle state of a run.
type Status string

// Run lifecycle states.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Default durations.
const (
	// DefaultTTL bounds how long finished runs are retained in stores
	// with server-side expiration. Matches the result cache retention.
	DefaultTTL = 7 * 24 * time.Hour
)

// Run is a packing-run record.
type Run struct {
	ID     string `json:"id"`
	Status Status `json:"status"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Options is the request the run was created with.
	Options pipeline.Options `json:"options"`

	// Result is the measured outcome. Present on completed runs and on
	// failed runs that did not converge (best-effort, Approximate=true).
	Result *report.Result `json:"result,omitempty"`

	// Error describes why a failed run failed.
	Error string `json:"error,omitempty"`

	// Residual is the worst remaining overlap of a non-converged run.
	Residual float64 `json:"residual,omitempty"`
}

// New creates a pending run for the given options.
func New(opts pipeline.Options) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
		Options:   opts,
	}
}

// Transition moves the run to a new status, stamping StartedAt or
// FinishedAt as appropriate. Allowed moves: pending→running,
// pending→failed, running→completed, running→failed.
func (r *Run) Transition(to Status) error {
	if !validTransition(r.Status, to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, r.Status, to)
	}
	now := time.Now().UTC()
	switch to {
	case StatusRunning:
		r.StartedAt = &now
	case StatusCompleted, StatusFailed:
		r.FinishedAt = &now
	}
	r.Status = to
	return nil
}

func validTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusRunning || to == StatusFailed
	case StatusRunning:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}

// Finished reports whether the run has reached a terminal status.
func (r *Run) Finished() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// Store is the interface for run storage backends.
type Store interface {
	// Get retrieves a run by ID.
	// Returns nil, nil if the run doesn't exist.
	Get(ctx context.Context, id string) (*Run, error)

	// Put stores or replaces a run.
	Put(ctx context.Context, run *Run) error

	// List returns all runs sorted by creation time, newest first.
	List(ctx context.Context) ([]*Run, error)

	// Delete removes a run.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}
