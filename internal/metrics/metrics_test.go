package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInMemoryRecorder(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncRecipeCreated()
	m.IncRecipeCreated()
	m.IncRecipeDeleted()
	m.IncRelationAdded("favorite")
	m.IncRelationConflict("favorite")
	m.IncRelationConflict("cart")
	m.ObserveShoppingListBuild(2*time.Millisecond, 3)
	m.IncValidationRejected("DUPLICATE_TAG")

	snap := m.Snapshot()
	if snap.RecipesCreated != 2 || snap.RecipesDeleted != 1 {
		t.Errorf("recipe counters = %+v", snap)
	}
	if snap.RelationsAdded["favorite"] != 1 || snap.RelationConflicts["cart"] != 1 {
		t.Errorf("relation counters = %+v", snap)
	}
	if snap.ShoppingListBuilds != 1 || snap.ShoppingListItems != 3 {
		t.Errorf("shopping counters = %+v", snap)
	}
	if snap.ValidationRejections["DUPLICATE_TAG"] != 1 {
		t.Errorf("validation counters = %+v", snap)
	}

	// Snapshot maps are copies.
	snap.RelationsAdded["favorite"] = 100
	if m.Snapshot().RelationsAdded["favorite"] != 1 {
		t.Error("mutating a snapshot changed the recorder")
	}
}

func TestPrometheusRecorder(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.IncRelationAdded("follow")
	p.IncRelationAdded("follow")
	p.IncRelationConflict("follow")
	p.IncTagCacheMiss()

	if got := testutil.ToFloat64(p.relations.WithLabelValues("follow", "added")); got != 2 {
		t.Errorf("follow added = %v, want 2", got)
	}

	expected := `
# HELP foodgram_tag_cache_requests_total Tag list cache lookups by result
# TYPE foodgram_tag_cache_requests_total counter
foodgram_tag_cache_requests_total{result="miss"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "foodgram_tag_cache_requests_total"); err != nil {
		t.Error(err)
	}
}

func TestMulti(t *testing.T) {
	t.Parallel()

	a, b := NewInMemory(), NewInMemory()
	m := Multi{a, b, NewNoop()}
	m.IncRecipeUpdated()
	m.IncTagCacheHit()

	for _, r := range []*InMemoryRecorder{a, b} {
		snap := r.Snapshot()
		if snap.RecipesUpdated != 1 || snap.TagCacheHits != 1 {
			t.Errorf("fan-out missed a recorder: %+v", snap)
		}
	}
}
