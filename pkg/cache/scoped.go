package cache

// ScopedKeyer wraps a Keyer with a prefix, isolating the key space of
// different compose runs or origins that share one cache backend.
//
// Example usage:
//
//	// keys for one repository origin
//	originKeyer := NewScopedKeyer(NewDefaultKeyer(), "origin:debian-sid:")
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

// MediaKey generates a prefixed key for media download caching.
func (k *ScopedKeyer) MediaKey(url string, opts MediaKeyOpts) string {
	return k.prefix + k.inner.MediaKey(url, opts)
}

// SpecimenKey generates a prefixed key for font specimen caching.
func (k *ScopedKeyer) SpecimenKey(fontID string, opts SpecimenKeyOpts) string {
	return k.prefix + k.inner.SpecimenKey(fontID, opts)
}
