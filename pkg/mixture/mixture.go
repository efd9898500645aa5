// Package mixture describes sphere populations: named components with a
// radius and a relative abundance, plus parsers for the descriptor files
// that define them.
//
// A mixture is a discrete size distribution. Each component carries a
// proportion weight in [0,255]; a component with proportion p is drawn
// with probability p over the sum of all proportions. Proportions are
// generation-time weights only and are never attached to the spheres
// drawn from them.
package mixture

import (
	"math"

	"github.com/granulab/spherepack/pkg/errors"
	"github.com/granulab/spherepack/pkg/geom"
)

// Component is one entry of a size distribution.
type Component struct {
	Name       string  `json:"name" toml:"name" yaml:"name"`
	Radius     float64 `json:"radius" toml:"radius" yaml:"radius"`
	Proportion uint8   `json:"proportion" toml:"proportion" yaml:"proportion"`
}

// Mixture is an ordered list of components describing a size distribution.
type Mixture []Component

// Validate checks that the mixture can generate spheres: the list is
// non-empty, every radius is positive and finite, every name passes
// basic safety checks, and at least one proportion is positive.
func (m Mixture) Validate() error {
	if len(m) == 0 {
		return errors.New(errors.ErrCodeConfiguration, "mixture has no components")
	}

	total := 0
	for i, c := range m {
		if err := errors.ValidateComponentName(c.Name); err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, err, "component %d", i)
		}
		if !(c.Radius > 0) || math.IsInf(c.Radius, 0) {
			return errors.New(errors.ErrCodeConfiguration,
				"component %q: radius must be positive and finite, got %g", c.Name, c.Radius)
		}
		total += int(c.Proportion)
	}
	if total == 0 {
		return errors.New(errors.ErrCodeConfiguration,
			"mixture proportions sum to zero, no spheres can be generated")
	}
	return nil
}

// TotalWeight returns the sum of all proportion weights.
func (m Mixture) TotalWeight() int {
	total := 0
	for _, c := range m {
		total += int(c.Proportion)
	}
	return total
}

// MeanVolume returns the proportion-weighted expected volume of a single
// drawn sphere. Returns 0 for mixtures with zero total weight.
func (m Mixture) MeanVolume() float64 {
	total := m.TotalWeight()
	if total == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range m {
		sum += float64(c.Proportion) * geom.Sphere{Radius: c.Radius}.Volume()
	}
	return sum / float64(total)
}

// MeanSurfaceArea returns the proportion-weighted expected surface area of
// a single drawn sphere. Returns 0 for mixtures with zero total weight.
func (m Mixture) MeanSurfaceArea() float64 {
	total := m.TotalWeight()
	if total == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range m {
		sum += float64(c.Proportion) * geom.Sphere{Radius: c.Radius}.SurfaceArea()
	}
	return sum / float64(total)
}

// MeanRadius returns the proportion-weighted expected radius of a single
// drawn sphere. Returns 0 for mixtures with zero total weight.
func (m Mixture) MeanRadius() float64 {
	total := m.TotalWeight()
	if total == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range m {
		sum += float64(c.Proportion) * c.Radius
	}
	return sum / float64(total)
}

// MaxRadius returns the largest component radius, ignoring components
// that can never be drawn (proportion zero).
func (m Mixture) MaxRadius() float64 {
	r := 0.0
	for _, c := range m {
		if c.Proportion > 0 && c.Radius > r {
			r = c.Radius
		}
	}
	return r
}
