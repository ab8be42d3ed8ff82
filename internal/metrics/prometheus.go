package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder exports Recorder events as Prometheus collectors.
type PrometheusRecorder struct {
	recipes         *prometheus.CounterVec
	relations       *prometheus.CounterVec
	shoppingBuild   prometheus.Histogram
	shoppingItems   prometheus.Histogram
	validationFails *prometheus.CounterVec
	tagCache        *prometheus.CounterVec
}

// NewPrometheus registers the application collectors on reg.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		recipes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "foodgram",
				Name:      "recipes_total",
				Help:      "Recipe writes by operation",
			},
			[]string{"op"},
		),
		relations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "foodgram",
				Name:      "relations_total",
				Help:      "Favorite, cart and follow toggles by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		shoppingBuild: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "foodgram",
			Name:      "shopping_list_build_duration_seconds",
			Help:      "Time spent aggregating a shopping list",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		shoppingItems: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "foodgram",
			Name:      "shopping_list_items",
			Help:      "Number of aggregated lines per shopping list",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		validationFails: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "foodgram",
				Name:      "validation_rejected_total",
				Help:      "Recipe compositions rejected by validation",
			},
			[]string{"reason"},
		),
		tagCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "foodgram",
				Name:      "tag_cache_requests_total",
				Help:      "Tag list cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

func (p *PrometheusRecorder) IncRecipeCreated() { p.recipes.WithLabelValues("create").Inc() }
func (p *PrometheusRecorder) IncRecipeUpdated() { p.recipes.WithLabelValues("update").Inc() }
func (p *PrometheusRecorder) IncRecipeDeleted() { p.recipes.WithLabelValues("delete").Inc() }

func (p *PrometheusRecorder) IncRelationAdded(kind string) {
	p.relations.WithLabelValues(kind, "added").Inc()
}

func (p *PrometheusRecorder) IncRelationRemoved(kind string) {
	p.relations.WithLabelValues(kind, "removed").Inc()
}

func (p *PrometheusRecorder) IncRelationConflict(kind string) {
	p.relations.WithLabelValues(kind, "conflict").Inc()
}

// ObserveShoppingListBuild records duration and size of one aggregation.
func (p *PrometheusRecorder) ObserveShoppingListBuild(duration time.Duration, items int) {
	p.shoppingBuild.Observe(duration.Seconds())
	p.shoppingItems.Observe(float64(items))
}

func (p *PrometheusRecorder) IncValidationRejected(reason string) {
	p.validationFails.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) IncTagCacheHit() { p.tagCache.WithLabelValues("hit").Inc() }
func (p *PrometheusRecorder) IncTagCacheMiss() { p.tagCache.WithLabelValues("miss").Inc() }

// Multi fans every event out to several recorders.
type Multi []Recorder

func (m Multi) IncRecipeCreated() {
	for _, r := range m {
		r.IncRecipeCreated()
	}
}

func (m Multi) IncRecipeUpdated() {
	for _, r := range m {
		r.IncRecipeUpdated()
	}
}

func (m Multi) IncRecipeDeleted() {
	for _, r := range m {
		r.IncRecipeDeleted()
	}
}

func (m Multi) IncRelationAdded(kind string) {
	for _, r := range m {
		r.IncRelationAdded(kind)
	}
}

func (m Multi) IncRelationRemoved(kind string) {
	for _, r := range m {
		r.IncRelationRemoved(kind)
	}
}

func (m Multi) IncRelationConflict(kind string) {
	for _, r := range m {
		r.IncRelationConflict(kind)
	}
}

func (m Multi) ObserveShoppingListBuild(duration time.Duration, items int) {
	for _, r := range m {
		r.ObserveShoppingListBuild(duration, items)
	}
}

func (m Multi) IncValidationRejected(reason string) {
	for _, r := range m {
		r.IncValidationRejected(reason)
	}
}

func (m Multi) IncTagCacheHit() {
	for _, r := range m {
		r.IncTagCacheHit()
	}
}

func (m Multi) IncTagCacheMiss() {
	for _, r := range m {
		r.IncTagCacheMiss()
	}
}
