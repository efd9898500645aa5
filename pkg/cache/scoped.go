package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// Server deployments use it to give each tenant a separate namespace on
// a shared backend such as Redis.
//
// Example usage:
//
//	// Tenant-specific keys on the shared cache
//	tenantKeyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
//
//	// Global keys for anonymous runs
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// MixtureKey generates a prefixed key for a parsed mixture document.
func (k *ScopedKeyer) MixtureKey(source string) string {
	return k.prefix + k.inner.MixtureKey(source)
}

// PackKey generates a prefixed key for a packing result.
func (k *ScopedKeyer) PackKey(mixtureHash string, opts PackKeyOpts) string {
	return k.prefix + k.inner.PackKey(mixtureHash, opts)
}
