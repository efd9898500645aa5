package packing

import (
	"context"
	"sync"
	"time"

	"github.com/granulab/spherepack/pkg/errors"
	"github.com/granulab/spherepack/pkg/geom"
	"github.com/granulab/spherepack/pkg/observability"
)

// coincidentScale classifies a pair as coincident when the center
// distance is below this fraction of the combined radii. Such pairs have
// no meaningful separation direction.
const coincidentScale = 1e-12

// Relax separates overlapping spheres by fixed-point iteration. Each pass
// sweeps all pairs within neighbor range, accumulates symmetric
// displacements of (depth/2)·alpha along the pair's center line, and
// applies them simultaneously, clamping every sphere back into the
// container.
//
// The maximum overlap depth is measured by the sweep before any movement;
// when it is at or below the tolerance the pass is not applied and the
// run has converged, so the recorded residual certifies the returned
// configuration.
//
// Relax returns an error with code DID_NOT_CONVERGE when the pass cap is
// reached, the stagnation window shows no progress, or ctx is cancelled
// (checked between passes). The Packing keeps the best-effort state and
// its exact residual in all three cases.
func Relax(ctx context.Context, cfg Config, p *Packing) error {
	cfg = cfg.WithDefaults()
	if err := cfg.validateDynamics(); err != nil {
		return err
	}

	n := len(p.Spheres)
	if n == 0 {
		p.Residual = 0
		p.Converged = true
		return nil
	}

	eps := cfg.Tolerance
	if eps == 0 {
		eps = DefaultToleranceScale * geom.MeanRadius(p.Spheres)
	}

	start := time.Now()
	observability.Engine().OnRelaxStart(ctx, n)

	moves := make([]geom.Vec3, n)
	serial := sweeper{scratch: make([]int, 0, 256)}
	window := newStallWindow(cfg.StallWindow, cfg.MinProgress)

	var pool *sweepPool
	if cfg.Workers > 1 {
		pool = newSweepPool(cfg.Workers, n)
	}

	for sweepCount := 1; sweepCount <= cfg.MaxPasses; sweepCount++ {
		if cerr := ctx.Err(); cerr != nil {
			p.Residual = p.MaxOverlap()
			err := errors.Wrap(errors.ErrCodeDidNotConverge, cerr,
				"cancelled after %d passes, residual overlap %g", p.Passes, p.Residual)
			observability.Engine().OnRelaxComplete(ctx, p.Passes, p.Residual, false, time.Since(start), err)
			return err
		}

		var maxDepth float64
		if pool != nil {
			maxDepth = pool.sweep(p, cfg.Alpha, moves)
		} else {
			serial.moves = moves
			maxDepth = serial.sweepRange(p, cfg.Alpha, 0, n)
		}
		p.Residual = maxDepth

		if maxDepth <= eps {
			p.Converged = true
			observability.Engine().OnRelaxComplete(ctx, p.Passes, maxDepth, true, time.Since(start), nil)
			return nil
		}

		moved := 0
		for i := range p.Spheres {
			if moves[i] == (geom.Vec3{}) {
				continue
			}
			s := &p.Spheres[i]
			s.Center = p.Container.Clamp(s.Center.Add(moves[i]), s.Radius)
			p.index.Move(i, s.Center)
			moves[i] = geom.Vec3{}
			moved++
		}
		p.Passes++

		observability.Engine().OnPass(ctx, p.Passes, maxDepth, moved)
		if cfg.Progress != nil && p.Passes%cfg.ProgressEvery == 0 {
			cfg.Progress(p.Passes, maxDepth)
		}

		if improvement, stalled := window.push(maxDepth); stalled {
			observability.Engine().OnStall(ctx, p.Passes, improvement)
			p.Residual = p.MaxOverlap()
			err := errors.New(errors.ErrCodeDidNotConverge,
				"stalled after %d passes: improvement %.3g over the last %d passes, residual overlap %g",
				p.Passes, improvement, cfg.StallWindow, p.Residual)
			observability.Engine().OnRelaxComplete(ctx, p.Passes, p.Residual, false, time.Since(start), err)
			return err
		}
	}

	p.Residual = p.MaxOverlap()
	err := errors.New(errors.ErrCodeDidNotConverge,
		"no convergence after %d passes, residual overlap %g (tolerance %g)", p.Passes, p.Residual, eps)
	observability.Engine().OnRelaxComplete(ctx, p.Passes, p.Residual, false, time.Since(start), err)
	return err
}

// =============================================================================
// Pass sweep
// =============================================================================

// sweeper accumulates pair displacements for a contiguous index range.
// Each pair is handled once, by the lower index, and contributes equal and
// opposite displacements to both spheres.
type sweeper struct {
	moves   []geom.Vec3
	scratch []int
}

func (s *sweeper) sweepRange(p *Packing, alpha float64, lo, hi int) float64 {
	maxDepth := 0.0
	for i := lo; i < hi; i++ {
		si := p.Spheres[i]
		s.scratch = p.index.NeighborsAppend(s.scratch[:0], si.Center)
		for _, j := range s.scratch {
			if j <= i {
				continue
			}
			sj := p.Spheres[j]
			delta := si.Center.Sub(sj.Center)
			dist := delta.Len()
			depth := si.Radius + sj.Radius - dist
			if depth <= 0 {
				continue
			}
			if depth > maxDepth {
				maxDepth = depth
			}

			var dir geom.Vec3
			if dist > coincidentScale*(si.Radius+sj.Radius) {
				dir = delta.Mul(1 / dist)
			} else {
				dir = separationAxis(i, j)
			}
			step := dir.Mul(depth / 2 * alpha)
			s.moves[i] = s.moves[i].Add(step)
			s.moves[j] = s.moves[j].Sub(step)
		}
	}
	return maxDepth
}

// separationAxis picks the push direction for a pair with coincident
// centers. Deriving it from the indices keeps repeated runs identical.
func separationAxis(i, j int) geom.Vec3 {
	var dir geom.Vec3
	dir[(i+j)%3] = 1
	return dir
}

// =============================================================================
// Parallel sweep
// =============================================================================

// sweepPool splits the sweep across workers over disjoint index ranges.
// Every worker accumulates into its own full-length buffer; buffers are
// merged in worker order before the apply phase, so results are
// reproducible for a fixed worker count.
type sweepPool struct {
	workers []sweeper
	depths  []float64
}

func newSweepPool(workers, n int) *sweepPool {
	workers = min(workers, n)
	pool := &sweepPool{
		workers: make([]sweeper, workers),
		depths:  make([]float64, workers),
	}
	for w := range pool.workers {
		pool.workers[w] = sweeper{
			moves:   make([]geom.Vec3, n),
			scratch: make([]int, 0, 256),
		}
	}
	return pool
}

func (sp *sweepPool) sweep(p *Packing, alpha float64, dst []geom.Vec3) float64 {
	n := len(p.Spheres)
	chunk := (n + len(sp.workers) - 1) / len(sp.workers)

	var wg sync.WaitGroup
	for w := range sp.workers {
		lo := w * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			sp.depths[w] = 0
			continue
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			sp.depths[w] = sp.workers[w].sweepRange(p, alpha, lo, hi)
		}(w, lo, hi)
	}
	wg.Wait()

	maxDepth := 0.0
	for w := range sp.workers {
		if sp.depths[w] > maxDepth {
			maxDepth = sp.depths[w]
		}
		buf := sp.workers[w].moves
		for i := range buf {
			if buf[i] != (geom.Vec3{}) {
				dst[i] = dst[i].Add(buf[i])
				buf[i] = geom.Vec3{}
			}
		}
	}
	return maxDepth
}

// =============================================================================
// Stagnation detection
// =============================================================================

// stallWindow tracks the recent history of max overlap depths. Once the
// window is full, every push compares the newest value against the one
// from a full window ago; improvement below minProgress (including
// regressions) counts as a stall.
type stallWindow struct {
	vals        []float64
	pos         int
	full        bool
	minProgress float64
}

func newStallWindow(size int, minProgress float64) *stallWindow {
	return &stallWindow{
		vals:        make([]float64, size),
		minProgress: minProgress,
	}
}

func (w *stallWindow) push(depth float64) (improvement float64, stalled bool) {
	if w.full {
		oldest := w.vals[w.pos]
		if oldest > 0 {
			improvement = (oldest - depth) / oldest
			stalled = improvement < w.minProgress
		}
	}
	w.vals[w.pos] = depth
	w.pos++
	if w.pos == len(w.vals) {
		w.pos = 0
		w.full = true
	}
	return improvement, stalled
}
