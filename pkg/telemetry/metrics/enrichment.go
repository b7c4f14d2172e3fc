package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/saturn/pkg/enrichment"
)

// EnrichmentMetrics exposes the failure tracker's sliding-window state at
// scrape time.
//
// Metrics:
//   - saturn_enrichment_failures_in_window: failures in the trailing window
//   - saturn_enrichment_successes_in_window: successes in the trailing window
//   - saturn_enrichment_failure_rate_pct: windowed failure rate
//   - saturn_enrichment_alert_active: 1 while the failure rate exceeds the threshold
type EnrichmentMetrics struct {
	mu    sync.RWMutex
	stats func() enrichment.TrackerStats

	failures    *prometheus.Desc
	successes   *prometheus.Desc
	failureRate *prometheus.Desc
	alertActive *prometheus.Desc
}

// NewEnrichmentMetrics creates and registers tracker metrics. Call Watch to
// attach the tracker; until then scrapes report nothing.
func NewEnrichmentMetrics(registry *prometheus.Registry) *EnrichmentMetrics {
	em := &EnrichmentMetrics{
		failures: prometheus.NewDesc(
			namespace+"_enrichment_failures_in_window",
			"Enrichment query failures within the tracker window", nil, nil),
		successes: prometheus.NewDesc(
			namespace+"_enrichment_successes_in_window",
			"Enrichment successes within the tracker window", nil, nil),
		failureRate: prometheus.NewDesc(
			namespace+"_enrichment_failure_rate_pct",
			"Windowed enrichment failure rate in percent", nil, nil),
		alertActive: prometheus.NewDesc(
			namespace+"_enrichment_alert_active",
			"Whether the failure rate currently exceeds the alert threshold", nil, nil),
	}
	registry.MustRegister(em)
	return em
}

// Watch attaches the tracker whose stats are reported.
func (em *EnrichmentMetrics) Watch(tracker *enrichment.FailureTracker) {
	em.mu.Lock()
	em.stats = tracker.Stats
	em.mu.Unlock()
}

// Describe implements prometheus.Collector.
func (em *EnrichmentMetrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- em.failures
	ch <- em.successes
	ch <- em.failureRate
	ch <- em.alertActive
}

// Collect implements prometheus.Collector.
func (em *EnrichmentMetrics) Collect(ch chan<- prometheus.Metric) {
	em.mu.RLock()
	stats := em.stats
	em.mu.RUnlock()
	if stats == nil {
		return
	}

	s := stats()
	alert := 0.0
	if s.AlertActive {
		alert = 1.0
	}
	ch <- prometheus.MustNewConstMetric(em.failures, prometheus.GaugeValue, float64(s.Failures))
	ch <- prometheus.MustNewConstMetric(em.successes, prometheus.GaugeValue, float64(s.Successes))
	ch <- prometheus.MustNewConstMetric(em.failureRate, prometheus.GaugeValue, s.FailureRatePct)
	ch <- prometheus.MustNewConstMetric(em.alertActive, prometheus.GaugeValue, alert)
}
