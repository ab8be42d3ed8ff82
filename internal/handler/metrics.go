package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes Prometheus metrics.
type MetricsHandler struct {
	handler http.Handler
}

// NewMetricsHandler serves the metrics gathered by g. A nil gatherer
// serves 503.
func NewMetricsHandler(g prometheus.Gatherer) *MetricsHandler {
	if g == nil {
		return &MetricsHandler{}
	}
	return &MetricsHandler{handler: promhttp.HandlerFor(g, promhttp.HandlerOpts{})}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.handler == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	h.handler.ServeHTTP(w, r)
}
