// Package metrics exposes Prometheus metrics for the decision engine:
// decision outcomes, enrichment cache performance, and failure tracking.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// namespace prefixes every saturn metric.
const namespace = "saturn"

// Collector owns the registry and the per-concern metric groups.
type Collector struct {
	registry *prometheus.Registry

	Decisions  *DecisionMetrics
	Cache      *CacheMetrics
	Enrichment *EnrichmentMetrics
}

// NewCollector creates a collector with its own registry. Passing nil uses
// a fresh registry, which keeps tests isolated from the global one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return &Collector{
		registry:   registry,
		Decisions:  NewDecisionMetrics(registry),
		Cache:      NewCacheMetrics(registry),
		Enrichment: NewEnrichmentMetrics(registry),
	}
}

// Handler returns the HTTP handler for the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
