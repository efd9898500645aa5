package packing

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/granulab/spherepack/pkg/errors"
	"github.com/granulab/spherepack/pkg/geom"
	"github.com/granulab/spherepack/pkg/report"
)

// fractionSlack absorbs floating-point accumulation when checking the
// physical upper bound on the volume fraction.
const fractionSlack = 1e-9

// Measure reduces the packing to its result document. It is a pure
// function of the final sphere set: repeated calls return the same
// metrics and nothing is mutated.
//
// Fails with EMPTY_PACKING on zero spheres. A computed volume fraction
// above 1 means the sphere volume cannot fit the container at all; that
// is reported as an INVARIANT_VIOLATION error, never as a result. Results
// from a run that did not converge are marked Approximate.
func Measure(p *Packing) (*report.Result, error) {
	if p.Len() == 0 {
		return nil, errors.New(errors.ErrCodeEmptyPacking, "no spheres to measure")
	}

	sphereVol := geom.TotalVolume(p.Spheres)
	containerVol := p.Container.Volume()
	fraction := sphereVol / containerVol
	if fraction > 1+fractionSlack {
		return nil, errors.New(errors.ErrCodeInvariantViolation,
			"volume fraction %g exceeds 1: sphere volume %g in container volume %g",
			fraction, sphereVol, containerVol)
	}

	radii := make([]float64, p.Len())
	for i, s := range p.Spheres {
		radii[i] = s.Radius
	}
	sort.Float64s(radii)

	return &report.Result{
		VolumeFraction:       fraction,
		SurfaceToVolumeRatio: geom.TotalSurfaceArea(p.Spheres) / sphereVol,
		SphereCount:          p.Len(),
		Approximate:          !p.Converged,
		Stats: &report.Stats{
			MeanRadius: stat.Mean(radii, nil),
			MaxRadius:  radii[len(radii)-1],
			RadiusQuantiles: report.Quantiles{
				P25: stat.Quantile(0.25, stat.Empirical, radii, nil),
				P50: stat.Quantile(0.50, stat.Empirical, radii, nil),
				P75: stat.Quantile(0.75, stat.Empirical, radii, nil),
			},
			ResidualOverlap: p.Residual,
			Passes:          p.Passes,
			Converged:       p.Converged,
		},
	}, nil
}
