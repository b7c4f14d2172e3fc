package enrichment

import (
	"testing"
	"time"
)

func TestTrackerFailureRate(t *testing.T) {
	tracker := NewFailureTracker(time.Minute, 5.0, nil, nil)

	tracker.RecordFailure("timeout")
	tracker.RecordSuccess()
	tracker.RecordSuccess()
	tracker.RecordSuccess()

	stats := tracker.Stats()
	if stats.Failures != 1 || stats.Successes != 3 {
		t.Fatalf("counts = %d/%d, want 1/3", stats.Failures, stats.Successes)
	}
	if stats.FailureRatePct != 25.0 {
		t.Errorf("rate = %v, want 25.0", stats.FailureRatePct)
	}
	if !stats.AlertActive {
		t.Error("alert should be active above threshold")
	}
}

func TestTrackerEmptyWindowRateZero(t *testing.T) {
	tracker := NewFailureTracker(time.Minute, 5.0, nil, nil)

	stats := tracker.Stats()
	if stats.FailureRatePct != 0 {
		t.Errorf("rate = %v, want 0 for empty window", stats.FailureRatePct)
	}
	if stats.AlertActive {
		t.Error("no alert on empty window")
	}
}

func TestTrackerWindowPruning(t *testing.T) {
	tracker := NewFailureTracker(30*time.Millisecond, 5.0, nil, nil)

	tracker.RecordFailure("old failure")
	time.Sleep(60 * time.Millisecond)
	tracker.RecordSuccess()

	stats := tracker.Stats()
	if stats.Failures != 0 {
		t.Errorf("failures = %d, want 0 after window elapsed", stats.Failures)
	}
	if stats.Successes != 1 {
		t.Errorf("successes = %d, want 1", stats.Successes)
	}
}

func TestTrackerAlertFiresOnce(t *testing.T) {
	fired := 0
	tracker := NewFailureTracker(time.Minute, 5.0, func(stats TrackerStats) {
		fired++
	}, nil)

	// Every failure keeps the rate at 100%, but the latch holds the alert
	// to a single invocation.
	tracker.RecordFailure("connection refused")
	tracker.RecordFailure("connection refused")
	tracker.RecordFailure("connection refused")

	if fired != 1 {
		t.Fatalf("alert fired %d times, want 1", fired)
	}

	// A success resets the latch; the next threshold crossing fires again.
	tracker.RecordSuccess()
	tracker.RecordFailure("connection refused")

	if fired != 2 {
		t.Errorf("alert fired %d times after reset, want 2", fired)
	}
}

func TestTrackerReset(t *testing.T) {
	tracker := NewFailureTracker(time.Minute, 5.0, nil, nil)
	tracker.RecordFailure("x")
	tracker.RecordSuccess()
	tracker.Reset()

	stats := tracker.Stats()
	if stats.Total != 0 {
		t.Errorf("total = %d, want 0 after reset", stats.Total)
	}
}
