package pipeline

import (
	"context"

	"github.com/granulab/spherepack/pkg/errors"
	"github.com/granulab/spherepack/pkg/geom"
	"github.com/granulab/spherepack/pkg/mixture"
	"github.com/granulab/spherepack/pkg/packing"
)

// =============================================================================
// Container Sizing
// =============================================================================

// BuildContainer sizes a container for the run: large enough that Count
// spheres drawn from the mixture occupy the Fill fraction of its volume.
// The same formula applies in target-fraction mode, where Count scales the
// vessel and TargetFraction decides how many spheres the generator draws.
func BuildContainer(opts Options, mix mixture.Mixture) (geom.Container, error) {
	sphereVolume := float64(opts.Count) * mix.MeanVolume()

	var (
		c   geom.Container
		err error
	)
	switch opts.Shape {
	case ShapeBox:
		c, err = geom.FitBox(sphereVolume, opts.Fill)
	case ShapeCylinder:
		c, err = geom.FitCylinder(sphereVolume, opts.Fill)
	case ShapeBall:
		c, err = geom.FitBall(sphereVolume, opts.Fill)
	default:
		return nil, ValidateShape(opts.Shape)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err,
			"size %s container for %d spheres at fill %g", opts.Shape, opts.Count, opts.Fill)
	}
	return c, nil
}

// =============================================================================
// Pack Stage
// =============================================================================

// Pack generates the initial configuration inside container and relaxes it
// until no two spheres overlap.
//
// On DID_NOT_CONVERGE the returned packing holds the best-effort
// configuration alongside the error; every other failure returns a nil
// packing.
func Pack(ctx context.Context, opts Options, container geom.Container, mix mixture.Mixture) (*packing.Packing, error) {
	cfg := opts.PackingConfig()
	if cfg.Progress == nil && opts.Logger != nil {
		logger := opts.Logger
		cfg.Progress = func(pass int, maxOverlap float64) {
			logger.Debug("relaxing", "pass", pass, "max_overlap", maxOverlap)
		}
	}

	p, err := packing.Generate(ctx, cfg, container, mix)
	if err != nil {
		return nil, err
	}
	if err := packing.Relax(ctx, cfg, p); err != nil {
		if errors.IsRecoverable(err) {
			return p, err
		}
		return nil, err
	}
	return p, nil
}
