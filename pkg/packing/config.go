package packing

import (
	"math"

	"github.com/granulab/spherepack/pkg/errors"
)

const (
	// DefaultAlpha is the default under-relaxation factor. Displacements
	// are scaled by this fraction of the full separating move; values
	// near 1 separate faster but oscillate in dense packings.
	DefaultAlpha = 0.4

	// DefaultToleranceScale sets the convergence tolerance relative to
	// the mean sphere radius when Config.Tolerance is zero.
	DefaultToleranceScale = 1e-7

	// DefaultMaxPasses is the default iteration cap.
	DefaultMaxPasses = 20000

	// DefaultStallWindow is the default width of the stagnation window.
	DefaultStallWindow = 50

	// DefaultMinProgress is the default relative improvement the max
	// overlap must make across the stall window.
	DefaultMinProgress = 1e-3

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// MaxSpheres caps generation in target-fraction mode so a tiny mean
	// radius cannot request unbounded memory.
	MaxSpheres = 1_000_000
)

// Config controls generation and relaxation of a packing run.
type Config struct {
	// Count is the number of spheres to generate. Ignored when
	// TargetFraction is set.
	Count int `json:"count,omitempty"`

	// TargetFraction, when positive, generates spheres until their total
	// volume reaches this fraction of the container volume.
	TargetFraction float64 `json:"target_fraction,omitempty"`

	// Seed seeds the radius sampler and placement generator. Zero means
	// DefaultSeed.
	Seed uint64 `json:"seed,omitempty"`

	// Alpha is the under-relaxation factor in (0, 1]. Zero means
	// DefaultAlpha.
	Alpha float64 `json:"alpha,omitempty"`

	// Tolerance is the absolute convergence tolerance on the maximum
	// overlap depth. Zero derives it from the mean radius.
	Tolerance float64 `json:"tolerance,omitempty"`

	// MaxPasses caps the number of relaxation passes.
	MaxPasses int `json:"max_passes,omitempty"`

	// StallWindow is the number of recent passes examined for stagnation.
	StallWindow int `json:"stall_window,omitempty"`

	// MinProgress is the relative improvement the max overlap must make
	// across the stall window before the run is declared stalled.
	MinProgress float64 `json:"min_progress,omitempty"`

	// Workers sets the parallelism of the overlap sweep. Values below 2
	// run the sweep serially.
	Workers int `json:"workers,omitempty"`

	// ProgressEvery invokes Progress every N passes (default 100).
	ProgressEvery int `json:"-"`

	// Progress receives periodic convergence updates (optional).
	Progress func(pass int, maxOverlap float64) `json:"-"`
}

// WithDefaults returns a copy of Config with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	cfg := c
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	if cfg.Alpha == 0 {
		cfg.Alpha = DefaultAlpha
	}
	if cfg.MaxPasses <= 0 {
		cfg.MaxPasses = DefaultMaxPasses
	}
	if cfg.StallWindow <= 0 {
		cfg.StallWindow = DefaultStallWindow
	}
	if cfg.MinProgress <= 0 {
		cfg.MinProgress = DefaultMinProgress
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 100
	}
	return cfg
}

// Validate checks configuration ranges. Call after WithDefaults.
func (c Config) Validate() error {
	if c.Count <= 0 && !(c.TargetFraction > 0) {
		return errors.New(errors.ErrCodeConfiguration,
			"either count or target_fraction must be positive")
	}
	if c.TargetFraction < 0 || c.TargetFraction > 1 || math.IsNaN(c.TargetFraction) {
		return errors.New(errors.ErrCodeConfiguration,
			"target_fraction must be in (0, 1], got %g", c.TargetFraction)
	}
	return c.validateDynamics()
}

// validateDynamics checks the fields the relaxation loop depends on.
// Relax validates only these, so a Packing built outside Generate can
// still be relaxed.
func (c Config) validateDynamics() error {
	if !(c.Alpha > 0) || c.Alpha > 1 {
		return errors.New(errors.ErrCodeConfiguration,
			"alpha must be in (0, 1], got %g", c.Alpha)
	}
	if c.Tolerance < 0 || math.IsNaN(c.Tolerance) {
		return errors.New(errors.ErrCodeConfiguration,
			"tolerance must be non-negative, got %g", c.Tolerance)
	}
	return nil
}
