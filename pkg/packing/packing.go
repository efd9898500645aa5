package packing

import (
	"github.com/granulab/spherepack/pkg/geom"
	"github.com/granulab/spherepack/pkg/grid"
)

// Packing is the mutable state of one packing run: the sphere population,
// its container, and the convergence bookkeeping maintained by Relax.
//
// A Packing is confined to a single run. Concurrent runs use separate
// instances and need no synchronization.
type Packing struct {
	Spheres   []geom.Sphere
	Container geom.Container

	// Residual is the maximum overlap depth of the current configuration,
	// measured by the last completed sweep.
	Residual float64

	// Passes counts completed relaxation passes.
	Passes int

	// Converged reports whether Residual met the tolerance.
	Converged bool

	index *grid.Index
}

// New creates a packing over an existing sphere population and indexes it
// for neighbor queries. Generate is the usual entry point; New exists for
// callers that build configurations directly.
func New(container geom.Container, spheres []geom.Sphere) *Packing {
	p := &Packing{
		Spheres:   spheres,
		Container: container,
	}
	lo, hi := container.Bounds()
	p.index = grid.New(lo, hi, grid.CellSizeFor(geom.MaxRadius(spheres)))
	for i, s := range spheres {
		p.index.Insert(i, s.Center)
	}
	return p
}

// Len returns the number of spheres.
func (p *Packing) Len() int { return len(p.Spheres) }

// MaxOverlap sweeps the current configuration and returns the deepest
// pairwise overlap, or 0 when no pair overlaps.
func (p *Packing) MaxOverlap() float64 {
	deepest := 0.0
	var near []int
	for i := range p.Spheres {
		near = p.index.NeighborsAppend(near[:0], p.Spheres[i].Center)
		for _, j := range near {
			if j <= i {
				continue
			}
			if d := p.Spheres[i].OverlapDepth(p.Spheres[j]); d > deepest {
				deepest = d
			}
		}
	}
	return deepest
}
