package geom

import (
	"errors"
	"math"
)

var (
	// ErrInvalidExtent is returned by container constructors when a radius,
	// height, or side length is not a positive finite number.
	ErrInvalidExtent = errors.New("container extents must be positive and finite")
)

// Container is a convex region that spheres are packed into. Implementations
// must be immutable after construction; the engine calls them concurrently
// from worker goroutines.
type Container interface {
	// Contains reports whether a sphere of the given radius centered at
	// center lies entirely inside the container.
	Contains(center Vec3, radius float64) bool

	// Clamp returns the nearest center position at which a sphere of the
	// given radius lies entirely inside the container. Positions already
	// inside are returned unchanged.
	Clamp(center Vec3, radius float64) Vec3

	// Volume returns the container volume.
	Volume() float64

	// Bounds returns the axis-aligned bounding box of the container,
	// used to dimension the spatial index.
	Bounds() (min, max Vec3)

	// MaxFit returns the radius of the largest sphere that can be placed
	// anywhere inside the container.
	MaxFit() float64

	// Kind returns a short identifier ("box", "cylinder", "ball") used in
	// cache keys and logs.
	Kind() string
}

// =============================================================================
// Box
// =============================================================================

// Box is an axis-aligned rectangular container.
type Box struct {
	min, max Vec3
}

// NewBox creates a box spanning min to max. Every extent must be positive.
func NewBox(min, max Vec3) (Box, error) {
	for i := 0; i < 3; i++ {
		d := max[i] - min[i]
		if !(d > 0) || math.IsInf(d, 0) {
			return Box{}, ErrInvalidExtent
		}
	}
	return Box{min: min, max: max}, nil
}

// NewCube creates a cube of the given side length centered at the origin.
func NewCube(side float64) (Box, error) {
	h := side / 2
	return NewBox(Vec3{-h, -h, -h}, Vec3{h, h, h})
}

// Contains reports whether the sphere stays inside the box on every axis.
func (b Box) Contains(center Vec3, radius float64) bool {
	for i := 0; i < 3; i++ {
		if center[i]-radius < b.min[i] || center[i]+radius > b.max[i] {
			return false
		}
	}
	return true
}

// Clamp pulls the center onto the inner box shrunk by radius on every axis.
func (b Box) Clamp(center Vec3, radius float64) Vec3 {
	out := center
	for i := 0; i < 3; i++ {
		lo, hi := b.min[i]+radius, b.max[i]-radius
		if lo > hi {
			// Sphere larger than the axis extent: center it.
			out[i] = (b.min[i] + b.max[i]) / 2
			continue
		}
		out[i] = math.Min(math.Max(out[i], lo), hi)
	}
	return out
}

// Volume returns the box volume.
func (b Box) Volume() float64 {
	return (b.max[0] - b.min[0]) * (b.max[1] - b.min[1]) * (b.max[2] - b.min[2])
}

// Bounds returns the box corners.
func (b Box) Bounds() (Vec3, Vec3) { return b.min, b.max }

// MaxFit returns half the smallest edge length.
func (b Box) MaxFit() float64 {
	fit := math.Inf(1)
	for i := 0; i < 3; i++ {
		fit = math.Min(fit, (b.max[i]-b.min[i])/2)
	}
	return fit
}

// Kind returns "box".
func (b Box) Kind() string { return "box" }

// =============================================================================
// Cylinder
// =============================================================================

// Cylinder is a z-axis-aligned cylindrical container centered at the origin.
type Cylinder struct {
	radius, height float64
}

// NewCylinder creates a cylinder with the given radius and height.
func NewCylinder(radius, height float64) (Cylinder, error) {
	if !(radius > 0) || !(height > 0) || math.IsInf(radius, 0) || math.IsInf(height, 0) {
		return Cylinder{}, ErrInvalidExtent
	}
	return Cylinder{radius: radius, height: height}, nil
}

// Contains reports whether the sphere fits axially and radially.
func (c Cylinder) Contains(center Vec3, radius float64) bool {
	if math.Abs(center[2])+radius > c.height/2 {
		return false
	}
	rho := math.Hypot(center[0], center[1])
	return rho+radius <= c.radius
}

// Clamp pulls the center inside the shrunk cylinder: axially into
// [−h/2+r, h/2−r] and radially onto the disc of radius R−r.
func (c Cylinder) Clamp(center Vec3, radius float64) Vec3 {
	out := center
	zLim := c.height/2 - radius
	if zLim < 0 {
		zLim = 0
	}
	out[2] = math.Min(math.Max(out[2], -zLim), zLim)

	rhoLim := c.radius - radius
	if rhoLim < 0 {
		rhoLim = 0
	}
	rho := math.Hypot(out[0], out[1])
	if rho > rhoLim {
		if rho == 0 {
			return out
		}
		scale := rhoLim / rho
		out[0] *= scale
		out[1] *= scale
	}
	return out
}

// Volume returns π·R²·h.
func (c Cylinder) Volume() float64 {
	return math.Pi * c.radius * c.radius * c.height
}

// Bounds returns the axis-aligned box enclosing the cylinder.
func (c Cylinder) Bounds() (Vec3, Vec3) {
	h := c.height / 2
	return Vec3{-c.radius, -c.radius, -h}, Vec3{c.radius, c.radius, h}
}

// MaxFit returns the radius of the largest inscribable sphere.
func (c Cylinder) MaxFit() float64 {
	return math.Min(c.radius, c.height/2)
}

// Kind returns "cylinder".
func (c Cylinder) Kind() string { return "cylinder" }

// Radius returns the cylinder radius.
func (c Cylinder) Radius() float64 { return c.radius }

// Height returns the cylinder height.
func (c Cylinder) Height() float64 { return c.height }

// =============================================================================
// Ball
// =============================================================================

// Ball is a spherical container centered at the origin.
type Ball struct {
	radius float64
}

// NewBall creates a spherical container with the given radius.
func NewBall(radius float64) (Ball, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return Ball{}, ErrInvalidExtent
	}
	return Ball{radius: radius}, nil
}

// Contains reports whether the sphere lies within the shell.
func (b Ball) Contains(center Vec3, radius float64) bool {
	return center.Len()+radius <= b.radius
}

// Clamp pulls the center onto the ball of radius R−r.
func (b Ball) Clamp(center Vec3, radius float64) Vec3 {
	lim := b.radius - radius
	if lim < 0 {
		lim = 0
	}
	d := center.Len()
	if d <= lim || d == 0 {
		return center
	}
	return center.Mul(lim / d)
}

// Volume returns (4/3)·π·R³.
func (b Ball) Volume() float64 {
	return 4.0 / 3.0 * math.Pi * b.radius * b.radius * b.radius
}

// Bounds returns the enclosing axis-aligned box.
func (b Ball) Bounds() (Vec3, Vec3) {
	return Vec3{-b.radius, -b.radius, -b.radius}, Vec3{b.radius, b.radius, b.radius}
}

// MaxFit returns the container radius.
func (b Ball) MaxFit() float64 { return b.radius }

// Kind returns "ball".
func (b Ball) Kind() string { return "ball" }

// =============================================================================
// Fit constructors
// =============================================================================

// cylinderAspect is the height/radius ratio used by FitCylinder. Tall, narrow
// columns pack measurably better than squat ones for polydisperse mixtures.
const cylinderAspect = 8.0

// FitVolume returns the container volume needed for spheres totalling
// sphereVolume to occupy the given fraction of it. Fraction must be in (0,1].
func FitVolume(sphereVolume, fraction float64) (float64, error) {
	if !(sphereVolume > 0) || !(fraction > 0) || fraction > 1 {
		return 0, ErrInvalidExtent
	}
	return sphereVolume / fraction, nil
}

// FitBox creates a cube sized so spheres totalling sphereVolume occupy the
// given fraction of it.
func FitBox(sphereVolume, fraction float64) (Box, error) {
	v, err := FitVolume(sphereVolume, fraction)
	if err != nil {
		return Box{}, err
	}
	return NewCube(math.Cbrt(v))
}

// FitCylinder creates a cylinder with aspect ratio (height/radius) 8 sized so
// spheres totalling sphereVolume occupy the given fraction of it.
func FitCylinder(sphereVolume, fraction float64) (Cylinder, error) {
	v, err := FitVolume(sphereVolume, fraction)
	if err != nil {
		return Cylinder{}, err
	}
	r := math.Cbrt(v / (math.Pi * cylinderAspect))
	return NewCylinder(r, r*cylinderAspect)
}

// FitBall creates a spherical container sized so spheres totalling
// sphereVolume occupy the given fraction of it.
func FitBall(sphereVolume, fraction float64) (Ball, error) {
	v, err := FitVolume(sphereVolume, fraction)
	if err != nil {
		return Ball{}, err
	}
	return NewBall(math.Cbrt(v * 3 / (4 * math.Pi)))
}
