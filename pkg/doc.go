// Package pkg provides the core libraries for spherepack sphere packing.
//
// # Overview
//
// Spherepack generates random close packings of polydisperse sphere
// mixtures inside convex containers and measures the geometry of the
// result. The pkg directory is organized into three main areas:
//
//  1. [geometry] - Vectors, spheres, containers, and the spatial grid
//  2. [packing] - Sphere generation and collective rearrangement
//  3. [infra] - Caching, run records, HTTP fetching, errors, observability
//
// # Architecture
//
// The typical data flow through spherepack:
//
//	Mixture descriptor (TOML/JSON/YAML, local file or URL)
//	         ↓
//	    [mixture] package (parse + validate)
//	         ↓
//	    [packing] package (generate, scale, relax over a [grid] index)
//	         ↓
//	    [report] package (volume fraction, surface metrics, quantiles)
//	         ↓
//	    JSON result document
//
// # Quick Start
//
// Pack a mixture and print the volume fraction:
//
//	import (
//	    "context"
//	    "github.com/granulab/spherepack/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(context.Background(), pipeline.Options{
//	    MixturePath: "examples/mixtures/glass.toml",
//	    Shape:       pipeline.ShapeBox,
//	    Count:       500,
//	})
//	if err != nil {
//	    // DID_NOT_CONVERGE still carries the approximate report
//	}
//	fmt.Println(res.Report.VolumeFraction)
//
// # Main Packages
//
// ## Geometry
//
// [geom] - Euclidean primitives: Vec3, Sphere, and the Container interface
// with box, cylinder, and ball implementations. Containers answer
// inside/outside queries and wall projections.
//
// [grid] - Uniform spatial hash over sphere centers. Neighbor queries
// during relaxation are restricted to adjacent cells, keeping each sweep
// near linear in the number of spheres.
//
// ## Packing Domain
//
// [mixture] - Size distribution descriptors: weighted radius components
// parsed from TOML, JSON, or YAML, with validation and moment helpers.
//
// [packing] - The packing engine. Generates spheres from a mixture,
// scales the container to a target fill, and relaxes overlaps by
// collective rearrangement until the deepest overlap falls below the
// tolerance.
//
// [report] - Result documents: volume fraction, surface-to-volume ratio,
// radius quantiles, and convergence statistics, serialized as JSON.
//
// [pipeline] - Orchestration of parse → pack → measure with per-stage
// caching and structured logging. The Runner is shared by the CLI and
// the HTTP API.
//
// ## Infrastructure
//
// [cache] - Content-addressed result cache with memory, file, null, and
// Redis backends plus deterministic key derivation.
//
// [runstore] - Asynchronous run records with memory, Redis, and MongoDB
// stores. Runs move through pending → running → completed/failed.
//
// [httputil] - HTTP fetching with retry, backoff, and an on-disk body
// cache for remote mixture descriptors.
//
// [errors] - Structured error codes (CONFIGURATION, GEOMETRY,
// DID_NOT_CONVERGE, ...) shared by every layer; codes survive wrapping
// and map onto HTTP statuses in the API.
//
// [observability] - Hooks for cache and relaxation instrumentation.
package pkg
