// Package cache provides caching for downloaded media and other expensive
// intermediate data.
//
// The Cache interface abstracts the storage backend (files, Redis, or a
// no-op null cache), while Keyer implementations generate stable,
// collision-free keys for the different data categories.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented cache with per-entry TTLs.
//
// Implementations must be safe for concurrent use; compose processes
// units in parallel.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was found; expired entries count as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A TTL of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// MediaKeyOpts are the parameters that make a media download distinct.
// The size limit is part of the key: a screenshot rejected at 1 MiB may
// be acceptable at 10 MiB.
type MediaKeyOpts struct {
	MaxBytes int64
}

// SpecimenKeyOpts identify one rendered font specimen image.
type SpecimenKeyOpts struct {
	Width  int
	Height int
}

// Keyer generates cache keys for the data categories compose handles.
type Keyer interface {
	// HTTPKey generates a key for a raw HTTP response.
	HTTPKey(namespace, key string) string

	// MediaKey generates a key for downloaded screenshot/video media.
	MediaKey(url string, opts MediaKeyOpts) string

	// SpecimenKey generates a key for a rendered font specimen.
	SpecimenKey(fontID string, opts SpecimenKeyOpts) string
}

// DefaultKeyer hashes all key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for a raw HTTP response. Namespace and key are
// kept readable for debugging, only the structured keys are hashed.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// MediaKey generates a key for downloaded screenshot/video media.
func (k *DefaultKeyer) MediaKey(url string, opts MediaKeyOpts) string {
	return hashKey("media", url, opts)
}

// SpecimenKey generates a key for a rendered font specimen.
func (k *DefaultKeyer) SpecimenKey(fontID string, opts SpecimenKeyOpts) string {
	return hashKey("specimen", fontID, opts)
}
