// Package observability provides hooks for metrics and tracing of learning runs.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends to the learning packages.
// Consumers register hooks at startup to receive events about structure
// searches, learning runs and model cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [PrometheusHooks] is the bundled backend; it implements every interface.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    h := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	    observability.SetSearchHooks(h)
//	    observability.SetLearnHooks(h)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Search().OnSearchStart(ctx, "Tabu search", nodes)
//	// ... search ...
//	observability.Search().OnSearchComplete(ctx, "Tabu search", iterations, score, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Search Hooks
// =============================================================================

// SearchHooks receives events from structure searches.
type SearchHooks interface {
	// OnSearchStart is called once before the first iteration.
	OnSearchStart(ctx context.Context, algorithm string, nodes int)

	// OnIteration is called after every committed move with the new score.
	OnIteration(ctx context.Context, algorithm string, iteration int, score float64)

	// OnSearchComplete is called when the search reaches its terminal state.
	OnSearchComplete(ctx context.Context, algorithm string, iterations int, score float64, duration time.Duration)
}

// =============================================================================
// Learn Hooks
// =============================================================================

// LearnHooks receives events from whole learning runs.
type LearnHooks interface {
	// OnLearnStart records the start of a run over the given number of variables.
	OnLearnStart(ctx context.Context, model string, variables int)

	// OnLearnComplete records the end of a run.
	OnLearnComplete(ctx context.Context, model string, duration time.Duration, err error)
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
// No-op Implementations
// =============================================================================

// NoopSearchHooks is a no-op implementation of SearchHooks.
type NoopSearchHooks struct{}

func (NoopSearchHooks) OnSearchStart(context.Context, string, int)                             {}
func (NoopSearchHooks) OnIteration(context.Context, string, int, float64)                      {}
func (NoopSearchHooks) OnSearchComplete(context.Context, string, int, float64, time.Duration) {}

// NoopLearnHooks is a no-op implementation of LearnHooks.
type NoopLearnHooks struct{}

func (NoopLearnHooks) OnLearnStart(context.Context, string, int)                     {}
func (NoopLearnHooks) OnLearnComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	searchHooks SearchHooks = NoopSearchHooks{}
	learnHooks  LearnHooks  = NoopLearnHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetSearchHooks registers custom search hooks.
// This should be called once at application startup before any search runs.
func SetSearchHooks(h SearchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		searchHooks = h
	}
}

// SetLearnHooks registers custom learning hooks.
func SetLearnHooks(h LearnHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		learnHooks = h
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

// Search returns the registered search hooks.
func Search() SearchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return searchHooks
}

// Learn returns the registered learning hooks.
func Learn() LearnHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return learnHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	searchHooks = NoopSearchHooks{}
	learnHooks = NoopLearnHooks{}
	cacheHooks = NoopCacheHooks{}
}
