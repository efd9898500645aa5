package packing

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/granulab/spherepack/pkg/errors"
	"github.com/granulab/spherepack/pkg/geom"
	"github.com/granulab/spherepack/pkg/mixture"
	"github.com/granulab/spherepack/pkg/observability"
)

// placementAttempts bounds rejection sampling per sphere before falling
// back to clamping the last candidate inside the container. Radii close
// to the container's largest fittable sphere leave an admissible region
// too thin to hit by rejection.
const placementAttempts = 64

// Generate draws the initial configuration: radii sampled from the
// mixture's proportions, centers uniform inside the container shrunk
// inward by each sphere's radius. The result may contain overlaps; Relax
// resolves them.
//
// Count mode draws exactly cfg.Count spheres. When cfg.TargetFraction is
// positive, spheres are drawn until their total volume reaches that
// fraction of the container volume instead.
//
// Fails with a CONFIGURATION_INVALID error when the mixture cannot
// generate spheres and with GEOMETRY_UNFITTABLE when a drawable radius
// exceeds the largest sphere the container can hold.
func Generate(ctx context.Context, cfg Config, container geom.Container, mix mixture.Mixture) (*Packing, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := mix.Validate(); err != nil {
		return nil, err
	}
	if r, fit := mix.MaxRadius(), container.MaxFit(); r > fit {
		return nil, errors.New(errors.ErrCodeGeometry,
			"component radius %g exceeds the largest radius the container can hold (%g)", r, fit)
	}

	requested := cfg.Count
	if cfg.TargetFraction > 0 {
		if mv := mix.MeanVolume(); mv > 0 {
			requested = int(math.Ceil(cfg.TargetFraction * container.Volume() / mv))
		}
	}

	start := time.Now()
	observability.Engine().OnGenerateStart(ctx, requested)

	rng := rand.New(rand.NewSource(int64(cfg.Seed)))
	sampler, err := mixture.NewSampler(mix, rng)
	if err != nil {
		return nil, err
	}

	var spheres []geom.Sphere
	if cfg.TargetFraction > 0 {
		target := cfg.TargetFraction * container.Volume()
		total := 0.0
		for total < target {
			if len(spheres) >= MaxSpheres {
				err := errors.New(errors.ErrCodeConfiguration,
					"target fraction %g needs more than %d spheres", cfg.TargetFraction, MaxSpheres)
				observability.Engine().OnGenerateComplete(ctx, len(spheres), time.Since(start), err)
				return nil, err
			}
			c := sampler.Next()
			s := geom.Sphere{Name: c.Name, Radius: c.Radius}
			total += s.Volume()
			spheres = append(spheres, s)
		}
	} else {
		spheres = make([]geom.Sphere, 0, cfg.Count)
		for i := 0; i < cfg.Count; i++ {
			c := sampler.Next()
			spheres = append(spheres, geom.Sphere{Name: c.Name, Radius: c.Radius})
		}
	}

	lo, hi := container.Bounds()
	for i := range spheres {
		spheres[i].Center = place(rng, container, lo, hi, spheres[i].Radius)
	}

	p := New(container, spheres)
	observability.Engine().OnGenerateComplete(ctx, len(spheres), time.Since(start), nil)
	return p, nil
}

// place draws a center uniformly from the container shrunk inward by the
// sphere radius. Box-shaped regions are sampled directly; curved
// containers reject candidates from the shrunk bounding box until one
// lands inside.
func place(rng *rand.Rand, c geom.Container, lo, hi geom.Vec3, radius float64) geom.Vec3 {
	var cand geom.Vec3
	for attempt := 0; attempt < placementAttempts; attempt++ {
		for k := 0; k < 3; k++ {
			span := (hi[k] - radius) - (lo[k] + radius)
			if span <= 0 {
				cand[k] = (lo[k] + hi[k]) / 2
				continue
			}
			cand[k] = lo[k] + radius + rng.Float64()*span
		}
		if c.Contains(cand, radius) {
			return cand
		}
	}
	return c.Clamp(cand, radius)
}
