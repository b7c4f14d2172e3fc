package enrichment

import (
	"log/slog"
	"sync"
	"time"
)

// AlertFunc is the notification hook invoked when the failure rate crosses
// the threshold. It runs while the tracker lock is held, so it must be
// fast; typical implementations log or push a metric.
type AlertFunc func(stats TrackerStats)

// FailureTracker is a sliding-window success/failure counter over
// enrichment queries. It detects upstream outages without any side effect
// on evaluation: raising an alert only invokes the notification hook. The
// enricher decides to fall back based on aggregate failures within one
// enrichment call, independent of the alert latch.
//
// The alert is latched: once raised it will not fire again until the next
// recorded success resets the latch. This prevents alert storms while an
// outage persists.
type FailureTracker struct {
	window    time.Duration
	threshold float64
	onAlert   AlertFunc
	logger    *slog.Logger

	mu        sync.Mutex
	failures  []failureEvent
	successes []time.Time
	latched   bool
}

type failureEvent struct {
	at     time.Time
	reason string
}

// TrackerStats is a snapshot of the tracker's windowed counters.
type TrackerStats struct {
	// WindowSeconds is the trailing window length.
	WindowSeconds int `json:"window_seconds"`

	// Failures is the failure count within the window.
	Failures int `json:"failures"`

	// Successes is the success count within the window.
	Successes int `json:"successes"`

	// Total is failures + successes.
	Total int `json:"total"`

	// FailureRatePct is failures / total * 100, or 0 when the window is
	// empty.
	FailureRatePct float64 `json:"failure_rate_pct"`

	// ThresholdPct is the configured alert threshold.
	ThresholdPct float64 `json:"threshold_pct"`

	// AlertActive reports whether the current rate exceeds the threshold.
	AlertActive bool `json:"alert_active"`
}

// Defaults for the failure tracker.
const (
	DefaultTrackerWindow    = 300 * time.Second
	DefaultTrackerThreshold = 5.0
)

// NewFailureTracker creates a tracker over the given trailing window with
// the given alert threshold percentage. Zero values use the defaults
// (300s window, 5% threshold).
func NewFailureTracker(window time.Duration, thresholdPct float64, onAlert AlertFunc, logger *slog.Logger) *FailureTracker {
	if window <= 0 {
		window = DefaultTrackerWindow
	}
	if thresholdPct <= 0 {
		thresholdPct = DefaultTrackerThreshold
	}
	if logger == nil {
		logger = slog.Default().With("component", "enrichment.tracker")
	}
	return &FailureTracker{
		window:    window,
		threshold: thresholdPct,
		onAlert:   onAlert,
		logger:    logger,
	}
}

// RecordFailure records one failed query with its reason and checks the
// alert condition.
func (t *FailureTracker) RecordFailure(reason string) {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.failures = append(t.failures, failureEvent{at: now, reason: reason})
	t.pruneLocked(now)
	t.checkAlertLocked()
}

// RecordSuccess records one successful query and resets the alert latch.
func (t *FailureTracker) RecordSuccess() {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.successes = append(t.successes, now)
	t.pruneLocked(now)
	t.latched = false
}

// Reset clears all recorded events and the alert latch.
func (t *FailureTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.logger.Info("failure tracker reset",
		"failures", len(t.failures),
		"successes", len(t.successes),
	)
	t.failures = nil
	t.successes = nil
	t.latched = false
}

// Stats prunes expired events and returns a snapshot of the window.
func (t *FailureTracker) Stats() TrackerStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked(time.Now())
	return t.statsLocked()
}

// pruneLocked drops events older than now - window from both sequences.
// Caller must hold the lock.
func (t *FailureTracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-t.window)

	i := 0
	for i < len(t.failures) && t.failures[i].at.Before(cutoff) {
		i++
	}
	t.failures = t.failures[i:]

	j := 0
	for j < len(t.successes) && t.successes[j].Before(cutoff) {
		j++
	}
	t.successes = t.successes[j:]
}

// statsLocked builds a stats snapshot. Caller must hold the lock.
func (t *FailureTracker) statsLocked() TrackerStats {
	total := len(t.failures) + len(t.successes)
	rate := 0.0
	if total > 0 {
		rate = float64(len(t.failures)) / float64(total) * 100
	}
	return TrackerStats{
		WindowSeconds:  int(t.window.Seconds()),
		Failures:       len(t.failures),
		Successes:      len(t.successes),
		Total:          total,
		FailureRatePct: rate,
		ThresholdPct:   t.threshold,
		AlertActive:    rate > t.threshold,
	}
}

// checkAlertLocked raises the one-shot alert if the windowed failure rate
// exceeds the threshold. Caller must hold the lock.
func (t *FailureTracker) checkAlertLocked() {
	stats := t.statsLocked()
	if stats.Total == 0 || !stats.AlertActive || t.latched {
		return
	}

	t.latched = true
	t.logger.Error("enrichment failure rate exceeds threshold",
		"failure_rate_pct", stats.FailureRatePct,
		"threshold_pct", stats.ThresholdPct,
		"failures", stats.Failures,
		"successes", stats.Successes,
		"window_seconds", stats.WindowSeconds,
	)
	if t.onAlert != nil {
		t.onAlert(stats)
	}
}
