package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncRecipeCreated() {}
func (n *NoopRecorder) IncRecipeUpdated() {}
func (n *NoopRecorder) IncRecipeDeleted() {}
func (n *NoopRecorder) IncRelationAdded(kind string) {}
func (n *NoopRecorder) IncRelationRemoved(kind string) {}
func (n *NoopRecorder) IncRelationConflict(kind string) {}
func (n *NoopRecorder) ObserveShoppingListBuild(d time.Duration, items int) {}
func (n *NoopRecorder) IncValidationRejected(reason string) {}
func (n *NoopRecorder) IncTagCacheHit() {}
func (n *NoopRecorder) IncTagCacheMiss() {}
