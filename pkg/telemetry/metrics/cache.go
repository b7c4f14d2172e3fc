package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/saturn/pkg/enrichment"
)

// CacheMetrics exposes the enrichment cache's counters. The cache keeps its
// own tallies; these metrics read a stats snapshot at scrape time instead
// of double-counting at each access.
//
// Metrics:
//   - saturn_context_cache_entries: current cache size
//   - saturn_context_cache_hits_total: total cache hits
//   - saturn_context_cache_misses_total: total cache misses
//   - saturn_context_cache_evictions_total: total evictions
type CacheMetrics struct {
	mu    sync.RWMutex
	stats func() enrichment.CacheStats

	entries   *prometheus.Desc
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
}

// NewCacheMetrics creates and registers cache metrics. Call Watch to attach
// the cache; until then scrapes report nothing.
func NewCacheMetrics(registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		entries: prometheus.NewDesc(
			namespace+"_context_cache_entries",
			"Current number of cached temporal contexts", nil, nil),
		hits: prometheus.NewDesc(
			namespace+"_context_cache_hits_total",
			"Total number of context cache hits", nil, nil),
		misses: prometheus.NewDesc(
			namespace+"_context_cache_misses_total",
			"Total number of context cache misses", nil, nil),
		evictions: prometheus.NewDesc(
			namespace+"_context_cache_evictions_total",
			"Total number of context cache evictions", nil, nil),
	}
	registry.MustRegister(cm)
	return cm
}

// Watch attaches the cache whose stats are reported.
func (cm *CacheMetrics) Watch(cache *enrichment.ContextCache) {
	cm.mu.Lock()
	cm.stats = cache.Stats
	cm.mu.Unlock()
}

// Describe implements prometheus.Collector.
func (cm *CacheMetrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- cm.entries
	ch <- cm.hits
	ch <- cm.misses
	ch <- cm.evictions
}

// Collect implements prometheus.Collector.
func (cm *CacheMetrics) Collect(ch chan<- prometheus.Metric) {
	cm.mu.RLock()
	stats := cm.stats
	cm.mu.RUnlock()
	if stats == nil {
		return
	}

	s := stats()
	ch <- prometheus.MustNewConstMetric(cm.entries, prometheus.GaugeValue, float64(s.Entries))
	ch <- prometheus.MustNewConstMetric(cm.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(cm.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(cm.evictions, prometheus.CounterValue, float64(s.Evictions))
}
