// Package observability provides hooks for metrics, tracing, and logging.
//
// The package keeps the core libraries free of any observability backend.
// Consumers register hook implementations at startup and the pipeline,
// cache, and cloud client emit events through them. The defaults are
// no-ops.
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetMapHooks(&myMapHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Map Pipeline Hooks
// =============================================================================

// MapHooks receives events from the concept map pipeline.
type MapHooks interface {
	// Generation events
	OnGenerateStart(ctx context.Context, topic string)
	OnGenerateComplete(ctx context.Context, topic string, nodeCount int, duration time.Duration, err error)

	// Node drill-down events
	OnExploreStart(ctx context.Context, topic, node string)
	OnExploreComplete(ctx context.Context, topic, node string, duration time.Duration, err error)

	// Explanation events
	OnExplainStart(ctx context.Context, topic, node string)
	OnExplainComplete(ctx context.Context, topic, node string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from response cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Cloud Hooks
// =============================================================================

// CloudHooks receives events from cloud store requests.
type CloudHooks interface {
	// OnRequest records an outgoing request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnError records a transport error (network failure, timeout).
	OnError(ctx context.Context, method, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopMapHooks is a no-op implementation of MapHooks.
type NoopMapHooks struct{}

func (NoopMapHooks) OnGenerateStart(context.Context, string)                                  {}
func (NoopMapHooks) OnGenerateComplete(context.Context, string, int, time.Duration, error)    {}
func (NoopMapHooks) OnExploreStart(context.Context, string, string)                           {}
func (NoopMapHooks) OnExploreComplete(context.Context, string, string, time.Duration, error)  {}
func (NoopMapHooks) OnExplainStart(context.Context, string, string)                           {}
func (NoopMapHooks) OnExplainComplete(context.Context, string, string, time.Duration, error)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopCloudHooks is a no-op implementation of CloudHooks.
type NoopCloudHooks struct{}

func (NoopCloudHooks) OnRequest(context.Context, string, string)                      {}
func (NoopCloudHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopCloudHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	mapHooks   MapHooks   = NoopMapHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	cloudHooks CloudHooks = NoopCloudHooks{}
	hooksMu    sync.RWMutex
)

// SetMapHooks registers custom pipeline hooks.
// This should be called once at application startup before any map operations.
func SetMapHooks(h MapHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		mapHooks = h
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

// SetCloudHooks registers custom cloud hooks.
// This should be called once at application startup before any cloud requests.
func SetCloudHooks(h CloudHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cloudHooks = h
	}
}

// Map returns the registered pipeline hooks.
func Map() MapHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return mapHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Cloud returns the registered cloud hooks.
func Cloud() CloudHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cloudHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	mapHooks = NoopMapHooks{}
	cacheHooks = NoopCacheHooks{}
	cloudHooks = NoopCloudHooks{}
}
