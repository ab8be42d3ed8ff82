// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Recipe lifecycle
	IncRecipeCreated()
	IncRecipeUpdated()
	IncRecipeDeleted()

	// Toggle operations; kind is favorite, cart or follow.
	IncRelationAdded(kind string)
	IncRelationRemoved(kind string)
	IncRelationConflict(kind string)

	// Shopping list aggregation
	ObserveShoppingListBuild(duration time.Duration, items int)

	// Composition validation; reason is the error code.
	IncValidationRejected(reason string)

	// Tag list cache
	IncTagCacheHit()
	IncTagCacheMiss()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
