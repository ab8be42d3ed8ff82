package metrics

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RecipesCreated       uint64
	RecipesUpdated       uint64
	RecipesDeleted       uint64
	RelationsAdded       map[string]uint64
	RelationsRemoved     map[string]uint64
	RelationConflicts    map[string]uint64
	ShoppingListBuilds   uint64
	ShoppingListItems    uint64
	ShoppingListTotalNs  int64
	ValidationRejections map[string]uint64
	TagCacheHits         uint64
	TagCacheMisses       uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	recipesCreated      uint64
	recipesUpdated      uint64
	recipesDeleted      uint64
	shoppingListBuilds  uint64
	shoppingListItems   uint64
	shoppingListTotalNs int64
	tagCacheHits        uint64
	tagCacheMisses      uint64

	mu          sync.Mutex
	added       map[string]uint64
	removed     map[string]uint64
	conflicts   map[string]uint64
	validations map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		added:       make(map[string]uint64),
		removed:     make(map[string]uint64),
		conflicts:   make(map[string]uint64),
		validations: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		RecipesCreated:       atomic.LoadUint64(&m.recipesCreated),
		RecipesUpdated:       atomic.LoadUint64(&m.recipesUpdated),
		RecipesDeleted:       atomic.LoadUint64(&m.recipesDeleted),
		RelationsAdded:       maps.Clone(m.added),
		RelationsRemoved:     maps.Clone(m.removed),
		RelationConflicts:    maps.Clone(m.conflicts),
		ShoppingListBuilds:   atomic.LoadUint64(&m.shoppingListBuilds),
		ShoppingListItems:    atomic.LoadUint64(&m.shoppingListItems),
		ShoppingListTotalNs:  atomic.LoadInt64(&m.shoppingListTotalNs),
		ValidationRejections: maps.Clone(m.validations),
		TagCacheHits:         atomic.LoadUint64(&m.tagCacheHits),
		TagCacheMisses:       atomic.LoadUint64(&m.tagCacheMisses),
	}
}

func (m *InMemoryRecorder) IncRecipeCreated() { atomic.AddUint64(&m.recipesCreated, 1) }
func (m *InMemoryRecorder) IncRecipeUpdated() { atomic.AddUint64(&m.recipesUpdated, 1) }
func (m *InMemoryRecorder) IncRecipeDeleted() { atomic.AddUint64(&m.recipesDeleted, 1) }

func (m *InMemoryRecorder) IncRelationAdded(kind string) { m.inc(m.added, kind) }
func (m *InMemoryRecorder) IncRelationRemoved(kind string) { m.inc(m.removed, kind) }
func (m *InMemoryRecorder) IncRelationConflict(kind string) { m.inc(m.conflicts, kind) }

// ObserveShoppingListBuild records one aggregation run.
func (m *InMemoryRecorder) ObserveShoppingListBuild(duration time.Duration, items int) {
	atomic.AddUint64(&m.shoppingListBuilds, 1)
	atomic.AddUint64(&m.shoppingListItems, uint64(items))
	atomic.AddInt64(&m.shoppingListTotalNs, duration.Nanoseconds())
}

func (m *InMemoryRecorder) IncValidationRejected(reason string) { m.inc(m.validations, reason) }

func (m *InMemoryRecorder) IncTagCacheHit() { atomic.AddUint64(&m.tagCacheHits, 1) }
func (m *InMemoryRecorder) IncTagCacheMiss() { atomic.AddUint64(&m.tagCacheMisses, 1) }

func (m *InMemoryRecorder) inc(counter map[string]uint64, label string) {
	m.mu.Lock()
	counter[label]++
	m.mu.Unlock()
}
