package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DecisionMetrics tracks composed-decision outcomes.
//
// Metrics:
//   - saturn_decisions_total: decisions by action and risk level
//   - saturn_decision_duration_seconds: composition latency by action
type DecisionMetrics struct {
	decisionsTotal   *prometheus.CounterVec
	decisionDuration *prometheus.HistogramVec
}

// NewDecisionMetrics creates and registers decision metrics.
func NewDecisionMetrics(registry *prometheus.Registry) *DecisionMetrics {
	dm := &DecisionMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Total number of composed decisions",
			},
			[]string{"action", "risk_level"},
		),
		decisionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "decision_duration_seconds",
				Help:      "Decision composition latency",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"action"},
		),
	}

	registry.MustRegister(dm.decisionsTotal, dm.decisionDuration)
	return dm
}

// ObserveDecision records one composed decision.
func (dm *DecisionMetrics) ObserveDecision(action string, risk string, elapsed time.Duration) {
	dm.decisionsTotal.WithLabelValues(action, risk).Inc()
	dm.decisionDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}
