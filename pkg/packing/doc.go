// Package packing implements sphere packing by collective rearrangement:
// generate an overlapping random configuration, then iteratively push
// overlapping pairs apart until no overlap deeper than a tolerance remains.
//
// # Overview
//
// Spherepack models granular mixtures as hard spheres inside a convex
// container. Rather than placing spheres one at a time without overlap
// (which jams far below realistic densities), the engine drops the whole
// population in at random and relaxes it: every pass finds all overlapping
// pairs and displaces both spheres of each pair symmetrically along their
// center line, scaled by an under-relaxation factor. The configuration
// drifts toward a fixed point where the deepest remaining overlap falls
// under the convergence tolerance.
//
// # Basic Usage
//
// Configure a run with [Config], generate the initial state with
// [Generate], relax it with [Relax], and reduce the final configuration to
// metrics with [Measure]:
//
//	cfg := packing.Config{Count: 500, Seed: 42}.WithDefaults()
//	p, err := packing.Generate(ctx, cfg, container, mix)
//	if err != nil {
//	    return err
//	}
//	err = packing.Relax(ctx, cfg, p)       // may return DID_NOT_CONVERGE
//	result, merr := packing.Measure(p)
//
// # Convergence
//
// Each pass computes the maximum overlap depth before moving anything.
// When that statistic is at or below the tolerance the engine stops
// without applying the pass, so the reported residual certifies the
// configuration that is actually returned. The tolerance defaults to
// 1e-7 times the mean sphere radius.
//
// Three outcomes end a run early without reaching the tolerance: the pass
// cap, a stagnation window whose relative improvement falls under
// Config.MinProgress, and context cancellation (checked between passes
// only). All three return an error with code DID_NOT_CONVERGE while
// leaving the best-effort configuration and its residual on the Packing;
// callers may accept the approximate result or retry with different
// parameters.
//
// # Neighbor Queries
//
// Overlap detection uses a uniform cell index (package grid) whose cell
// edge is at least twice the largest sphere radius, so each sphere only
// examines the 27 cells around it. The index is rebuilt incrementally:
// after each pass only spheres that changed cell are relocated.
//
// # Concurrency
//
// A Packing is confined to one run; concurrent runs use separate Packing
// values and need no synchronization. Within a run, Config.Workers > 1
// splits the overlap sweep of each pass across goroutines with per-worker
// displacement buffers, merged before the simultaneous apply. Positions
// are never read and written concurrently: the sweep is read-only and the
// apply phase is serial. Runs are reproducible for a fixed seed and
// worker count.
package packing
