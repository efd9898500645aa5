// Package geom provides the geometric primitives for sphere packing:
// spheres, containers, and the vector math they share.
//
// # Overview
//
// Spherepack fills a convex container with spheres of heterogeneous radii.
// This package defines the [Sphere] value type and the [Container] interface
// that the generator and rearrangement engine build on. Positions are
// double-precision 3D vectors ([Vec3], backed by mgl64).
//
// # Containers
//
// A container is any convex region that can report whether a whole sphere
// fits inside it, pull a protruding sphere back in, and describe its own
// volume and axis-aligned bounds:
//
//	box, _ := geom.NewCube(10)              // side-10 cube centered at origin
//	cyl, _ := geom.NewCylinder(2, 16)       // radius 2, height 16, z-axis
//	ball, _ := geom.NewBall(5)              // radius-5 spherical shell
//
// The [FitBox], [FitCylinder], and [FitBall] constructors size a container so
// that an expected population of spheres occupies a chosen fraction of its
// volume, which is how packing runs are provisioned when the caller supplies
// a target count instead of explicit extents.
//
// # Concurrency
//
// All types in this package are immutable value types and safe to share
// across goroutines.
package geom
