package cache

import "fmt"

// Keyer generates cache keys for pipeline artifacts.
// Centralizing key construction keeps the key schema in one place and
// guarantees that every parameter that changes an artifact is part of
// its key.
type Keyer interface {
	// HTTPKey generates a key for a cached HTTP response body.
	HTTPKey(namespace, key string) string

	// MixtureKey generates a key for a parsed mixture document.
	// The source is the path or URL the document was loaded from.
	MixtureKey(source string) string

	// PackKey generates a key for a finished packing result. The mixture
	// hash covers the input document; opts covers every knob that changes
	// the resulting configuration.
	PackKey(mixtureHash string, opts PackKeyOpts) string
}

// PackKeyOpts carries the run parameters that determine a packing result.
// Two runs with the same mixture hash and the same opts produce identical
// sphere configurations, so their results share a cache entry. Workers is
// included because the parallel sweep merges displacements in worker
// order, which ties the exact configuration to the worker count.
type PackKeyOpts struct {
	Shape          string  `json:"shape"`
	Fill           float64 `json:"fill"`
	Count          int     `json:"count"`
	TargetFraction float64 `json:"target_fraction"`
	Seed           uint64  `json:"seed"`
	Alpha          float64 `json:"alpha"`
	Tolerance      float64 `json:"tolerance"`
	MaxPasses      int     `json:"max_passes"`
	Workers        int     `json:"workers"`
}

// DefaultKeyer implements Keyer with SHA-256 hashed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
// The key format is: http:{namespace}:{key}
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return fmt.Sprintf("http:%s:%s", namespace, key)
}

// MixtureKey generates a key for a parsed mixture document.
func (k *DefaultKeyer) MixtureKey(source string) string {
	return hashKey("mixture", source)
}

// PackKey generates a key for a packing result.
func (k *DefaultKeyer) PackKey(mixtureHash string, opts PackKeyOpts) string {
	return hashKey("pack", mixtureHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
