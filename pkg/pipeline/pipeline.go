// Package pipeline provides the core packing pipeline for Spherepack.
//
// This package implements the complete parse → pack → measure pipeline that
// can be used by CLI, API, and worker components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Resolve the mixture from an inline document, a local file,
//     or a remote URL
//  2. Pack: Generate the initial configuration and relax it until no two
//     spheres overlap
//  3. Measure: Reduce the final configuration to its result document
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    MixturePath: "glass.toml",
//	    Shape:       "cylinder",
//	    Count:       1000,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil && !errors.IsRecoverable(err) {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report.VolumeFraction)
//
// Run individual stages:
//
//	// Resolve the mixture only
//	mix, hash, err := runner.Parse(ctx, opts)
//
//	// Pack and measure an already resolved mixture
//	rep, p, err := runner.Pack(ctx, opts, mix, hash)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/granulab/spherepack/pkg/cache"
	"github.com/granulab/spherepack/pkg/errors"
	"github.com/granulab/spherepack/pkg/mixture"
	"github.com/granulab/spherepack/pkg/packing"
	"github.com/granulab/spherepack/pkg/report"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Worker
// =============================================================================

const (
	// DefaultFill is the fraction of the container volume the generated
	// spheres occupy. Half-full vessels leave the rearrangement room to
	// separate overlaps without fighting the walls.
	DefaultFill = 0.5

	// DefaultCount is the default number of spheres per run. In
	// target-fraction mode the count only scales the container.
	DefaultCount = 1000
)

// Shape constants for container shapes.
const (
	ShapeBox      = "box"
	ShapeCylinder = "cylinder"
	ShapeBall     = "ball"
)

// DefaultShape is the default container shape. Granular samples are
// usually packed into cylindrical vessels, so the cylinder is the default.
const DefaultShape = ShapeCylinder

// ValidShapes is the set of supported container shapes.
var ValidShapes = map[string]bool{
	ShapeBox:      true,
	ShapeCylinder: true,
	ShapeBall:     true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the packing pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Mixture source. Exactly one of Mixture (an inline document) or
	// MixturePath (a local file or http(s) URL) must be set.
	Mixture     mixture.Mixture `json:"mixture,omitempty"`
	MixturePath string          `json:"mixture_path,omitempty"`

	// Container options
	Shape string  `json:"shape,omitempty"`
	Fill  float64 `json:"fill,omitempty"` // fraction of the container volume the spheres occupy

	// Generation options
	Count          int     `json:"count,omitempty"`
	TargetFraction float64 `json:"target_fraction,omitempty"`
	Seed           uint64  `json:"seed,omitempty"`

	// Relaxation options
	Alpha     float64 `json:"alpha,omitempty"`
	Tolerance float64 `json:"tolerance,omitempty"`
	MaxPasses int     `json:"max_passes,omitempty"`
	Workers   int     `json:"workers,omitempty"`

	// Cache behavior
	Refresh bool `json:"refresh,omitempty"`  // recompute and overwrite cached entries
	NoCache bool `json:"no_cache,omitempty"` // bypass the cache entirely

	// Runtime options (not serialized)
	Logger   *log.Logger                        `json:"-"`
	Progress func(pass int, maxOverlap float64) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this execution.
	RunID string

	// Mixture is the validated mixture the run packed.
	Mixture mixture.Mixture

	// MixtureHash is the content hash of the mixture document.
	MixtureHash string

	// Packing is the final sphere configuration. Nil when the result
	// document came from the cache.
	Packing *packing.Packing

	// Report is the measured result document.
	Report *report.Result

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SphereCount int
	Passes      int
	Converged   bool
	ParseTime   time.Duration
	PackTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	MixtureHit bool // Whether the mixture came from cache
	PackHit    bool // Whether the result document came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateShape checks that a container shape is valid.
func ValidateShape(shape string) error {
	if !ValidShapes[shape] {
		return errors.New(errors.ErrCodeConfiguration,
			"invalid shape: %q (must be one of: box, cylinder, ball)", shape)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
//
// Zero-valued knobs are canonicalized to their defaults, so equivalent
// configurations produce identical cache keys.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForPack(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks that exactly one mixture source is configured.
func (o *Options) ValidateForParse() error {
	if len(o.Mixture) == 0 && o.MixturePath == "" {
		return errors.New(errors.ErrCodeConfiguration, "mixture or mixture_path is required")
	}
	if len(o.Mixture) > 0 && o.MixturePath != "" {
		return errors.New(errors.ErrCodeConfiguration, "mixture and mixture_path are mutually exclusive")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetPackDefaults canonicalizes the packing knobs. Every field that feeds
// the cache key is pinned to its effective value here, so a zero and an
// explicit default hash identically.
func (o *Options) SetPackDefaults() {
	if o.Shape == "" {
		o.Shape = DefaultShape
	}
	if o.Fill == 0 {
		o.Fill = DefaultFill
	}
	if o.Count == 0 {
		o.Count = DefaultCount
	}
	if o.Seed == 0 {
		o.Seed = packing.DefaultSeed
	}
	if o.Alpha == 0 {
		o.Alpha = packing.DefaultAlpha
	}
	if o.MaxPasses <= 0 {
		o.MaxPasses = packing.DefaultMaxPasses
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForPack validates and sets defaults for the pack stage.
func (o *Options) ValidateForPack() error {
	o.SetPackDefaults()
	if err := ValidateShape(o.Shape); err != nil {
		return err
	}
	if !(o.Fill > 0) || o.Fill > 1 {
		return errors.New(errors.ErrCodeConfiguration,
			"fill must be in (0, 1], got %g", o.Fill)
	}
	if o.Count < 0 {
		return errors.New(errors.ErrCodeConfiguration,
			"count must not be negative, got %d", o.Count)
	}
	return o.PackingConfig().Validate()
}

// IsRemote reports whether the mixture source is an http(s) URL.
func (o *Options) IsRemote() bool {
	return isURL(o.MixturePath)
}

// PackingConfig returns the engine configuration for these options.
func (o *Options) PackingConfig() packing.Config {
	return packing.Config{
		Count:          o.Count,
		TargetFraction: o.TargetFraction,
		Seed:           o.Seed,
		Alpha:          o.Alpha,
		Tolerance:      o.Tolerance,
		MaxPasses:      o.MaxPasses,
		Workers:        o.Workers,
		Progress:       o.Progress,
	}
}

// PackKeyOpts returns cache key options for the packing result.
func (o *Options) PackKeyOpts() cache.PackKeyOpts {
	return cache.PackKeyOpts{
		Shape:          o.Shape,
		Fill:           o.Fill,
		Count:          o.Count,
		TargetFraction: o.TargetFraction,
		Seed:           o.Seed,
		Alpha:          o.Alpha,
		Tolerance:      o.Tolerance,
		MaxPasses:      o.MaxPasses,
		Workers:        o.Workers,
	}
}
