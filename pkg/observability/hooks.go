// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about compose runs, cache operations, and media downloads.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetComposeHooks(&myComposeHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Compose().OnUnitStart(ctx, unitID)
//	// ... process the unit ...
//	observability.Compose().OnUnitComplete(ctx, unitID, cptCount, hintCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Compose Hooks
// =============================================================================

// ComposeHooks receives events from the metadata composition pipeline.
type ComposeHooks interface {
	// Unit processing events
	OnUnitStart(ctx context.Context, unitID string)
	OnUnitComplete(ctx context.Context, unitID string, components, hints int, duration time.Duration, err error)

	// Media export events
	OnMediaExportStart(ctx context.Context, gcid, kind string)
	OnMediaExportComplete(ctx context.Context, gcid, kind string, duration time.Duration, err error)

	// Catalog output events
	OnCatalogWriteStart(ctx context.Context, format string, components int)
	OnCatalogWriteComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopComposeHooks is a no-op implementation of ComposeHooks.
type NoopComposeHooks struct{}

func (NoopComposeHooks) OnUnitStart(context.Context, string) {}
func (NoopComposeHooks) OnUnitComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopComposeHooks) OnMediaExportStart(context.Context, string, string) {}
func (NoopComposeHooks) OnMediaExportComplete(context.Context, string, string, time.Duration, error) {
}
func (NoopComposeHooks) OnCatalogWriteStart(context.Context, string, int)                     {}
func (NoopComposeHooks) OnCatalogWriteComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	composeHooks ComposeHooks = NoopComposeHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetComposeHooks registers custom compose hooks.
// This should be called once at application startup before any compose runs.
func SetComposeHooks(h ComposeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		composeHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Compose returns the registered compose hooks.
func Compose() ComposeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return composeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	composeHooks = NoopComposeHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
