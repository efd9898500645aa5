package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a 3D double-precision vector. It aliases mgl64.Vec3 so callers can
// use the full mathgl method set (Add, Sub, Mul, Len, Normalize, ...) without
// importing mgl64 themselves.
type Vec3 = mgl64.Vec3

// Sphere is a single particle in a packing: a name identifying the component
// it was drawn from, a positive radius, and a center position. Spheres are
// plain values owned by the packing's sphere set; the generation-time
// proportion weight is deliberately not stored here.
type Sphere struct {
	Name   string  // component name this sphere was drawn from
	Radius float64 // positive radius
	Center Vec3    // center position inside the container
}

// Volume returns the sphere volume (4/3)·π·r³.
func (s Sphere) Volume() float64 {
	return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
}

// SurfaceArea returns the sphere surface area 4·π·r².
func (s Sphere) SurfaceArea() float64 {
	return 4.0 * math.Pi * s.Radius * s.Radius
}

// OverlapDepth returns the interpenetration depth between s and o along the
// line connecting their centers: (r_s + r_o) − |c_s − c_o|. The result is
// positive when the spheres overlap, zero at exact contact, and negative
// when they are separated.
func (s Sphere) OverlapDepth(o Sphere) float64 {
	return s.Radius + o.Radius - s.Center.Sub(o.Center).Len()
}

// TotalVolume sums the volumes of all spheres in the set.
func TotalVolume(spheres []Sphere) float64 {
	var v float64
	for i := range spheres {
		v += spheres[i].Volume()
	}
	return v
}

// TotalSurfaceArea sums the surface areas of all spheres in the set.
func TotalSurfaceArea(spheres []Sphere) float64 {
	var a float64
	for i := range spheres {
		a += spheres[i].SurfaceArea()
	}
	return a
}

// MaxRadius returns the largest radius in the set, or 0 for an empty set.
func MaxRadius(spheres []Sphere) float64 {
	var r float64
	for i := range spheres {
		r = math.Max(r, spheres[i].Radius)
	}
	return r
}

// MeanRadius returns the arithmetic mean radius, or 0 for an empty set.
func MeanRadius(spheres []Sphere) float64 {
	if len(spheres) == 0 {
		return 0
	}
	var sum float64
	for i := range spheres {
		sum += spheres[i].Radius
	}
	return sum / float64(len(spheres))
}
