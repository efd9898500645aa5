package mixture

import (
	"math/rand"
	"sort"

	"github.com/granulab/spherepack/pkg/errors"
)

// Sampler draws components from a mixture according to their proportion
// weights. Draws are deterministic for a fixed source, so a seeded
// generator reproduces the same sequence of radii.
//
// Sampler is not safe for concurrent use; give each goroutine its own.
type Sampler struct {
	components []Component
	cumulative []int // running weight sums, strictly increasing
	total      int
	rng        *rand.Rand
}

// NewSampler builds a sampler over the mixture using the given random
// source. Components with zero proportion are skipped; a mixture whose
// weights sum to zero cannot be sampled.
func NewSampler(m Mixture, rng *rand.Rand) (*Sampler, error) {
	s := &Sampler{rng: rng}
	for _, c := range m {
		if c.Proportion == 0 {
			continue
		}
		s.total += int(c.Proportion)
		s.components = append(s.components, c)
		s.cumulative = append(s.cumulative, s.total)
	}
	if s.total == 0 {
		return nil, errors.New(errors.ErrCodeConfiguration,
			"mixture proportions sum to zero, nothing to sample")
	}
	return s, nil
}

// Next draws one component. A component with proportion p is returned
// with probability p over the total weight.
func (s *Sampler) Next() Component {
	// Inversion on the cumulative weights: pick the first bucket whose
	// running sum exceeds the draw.
	draw := s.rng.Intn(s.total)
	i := sort.SearchInts(s.cumulative, draw+1)
	return s.components[i]
}
