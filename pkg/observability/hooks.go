// Package observability provides hooks for metrics, tracing, and logging.
//
// The analyzer never depends on a specific metrics backend. Consumers register
// hooks at startup and receive events about archive scans, tree builds, and
// cache operations.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetAnalysisHooks(&myAnalysisHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Analysis().OnBuildStart(ctx, len(top))
//	t := tree.Build(idx, top, obs)
//	observability.Analysis().OnBuildComplete(ctx, t.Len(), t.MaxDepth(), time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Analysis Hooks
// =============================================================================

// AnalysisHooks receives events from the scan → build → analyze sequence.
type AnalysisHooks interface {
	// Scan events
	OnScanStart(ctx context.Context, dir string)
	OnScanComplete(ctx context.Context, dir string, archives, failures int, duration time.Duration, err error)

	// Build events
	OnBuildStart(ctx context.Context, topLevel int)
	OnBuildComplete(ctx context.Context, nodes, maxDepth int, duration time.Duration)

	// OnAnalyzeComplete fires once the deepest nodes are selected. err is
	// tree.ErrNoData for an empty registry.
	OnAnalyzeComplete(ctx context.Context, maxDepth, deepest int, err error)
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

// NoopAnalysisHooks is a no-op implementation of AnalysisHooks.
type NoopAnalysisHooks struct{}

func (NoopAnalysisHooks) OnScanStart(context.Context, string) {}
func (NoopAnalysisHooks) OnScanComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopAnalysisHooks) OnBuildStart(context.Context, int)                        {}
func (NoopAnalysisHooks) OnBuildComplete(context.Context, int, int, time.Duration) {}
func (NoopAnalysisHooks) OnAnalyzeComplete(context.Context, int, int, error)       {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	analysisHooks AnalysisHooks = NoopAnalysisHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetAnalysisHooks registers custom analysis hooks.
// This should be called once at application startup before any run starts.
func SetAnalysisHooks(h AnalysisHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		analysisHooks = h
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

// Analysis returns the registered analysis hooks.
func Analysis() AnalysisHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return analysisHooks
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
	analysisHooks = NoopAnalysisHooks{}
	cacheHooks = NoopCacheHooks{}
}
