// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about engine execution, store operations, and export calls.
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
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Engine().OnReduceStart(ctx, nodeCount, edgeCount)
//	// ... run the reduction ...
//	observability.Engine().OnReduceComplete(ctx, removed, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from graph optimization and analysis runs.
type EngineHooks interface {
	// Reduction events
	OnReduceStart(ctx context.Context, nodeCount, edgeCount int)
	OnReduceComplete(ctx context.Context, edgesRemoved int, duration time.Duration, err error)

	// Merge events
	OnMergeStart(ctx context.Context, nodeCount int)
	OnMergeComplete(ctx context.Context, nodesMerged int, duration time.Duration, err error)

	// Metric evaluation events
	OnEvaluateStart(ctx context.Context, nodeCount, edgeCount int)
	OnEvaluateComplete(ctx context.Context, metricCount int, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from snapshot store operations.
type StoreHooks interface {
	// OnStoreHit records a successful lookup.
	OnStoreHit(ctx context.Context, keyType string)

	// OnStoreMiss records a failed lookup.
	OnStoreMiss(ctx context.Context, keyType string)

	// OnStoreSet records a write.
	OnStoreSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Export Hooks
// =============================================================================

// ExportHooks receives events from graph export operations.
type ExportHooks interface {
	// OnExportStart records the beginning of an export run.
	OnExportStart(ctx context.Context, target string, nodeCount, edgeCount int)

	// OnExportComplete records the outcome of an export run.
	OnExportComplete(ctx context.Context, target string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnReduceStart(context.Context, int, int)                       {}
func (NoopEngineHooks) OnReduceComplete(context.Context, int, time.Duration, error)   {}
func (NoopEngineHooks) OnMergeStart(context.Context, int)                             {}
func (NoopEngineHooks) OnMergeComplete(context.Context, int, time.Duration, error)    {}
func (NoopEngineHooks) OnEvaluateStart(context.Context, int, int)                     {}
func (NoopEngineHooks) OnEvaluateComplete(context.Context, int, time.Duration, error) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreHit(context.Context, string)      {}
func (NoopStoreHooks) OnStoreMiss(context.Context, string)     {}
func (NoopStoreHooks) OnStoreSet(context.Context, string, int) {}

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnExportStart(context.Context, string, int, int)                {}
func (NoopExportHooks) OnExportComplete(context.Context, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks EngineHooks = NoopEngineHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	exportHooks ExportHooks = NoopExportHooks{}
	hooksMu     sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any engine runs.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetExportHooks registers custom export hooks.
// This should be called once at application startup before any export operations.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	storeHooks = NoopStoreHooks{}
	exportHooks = NoopExportHooks{}
}
