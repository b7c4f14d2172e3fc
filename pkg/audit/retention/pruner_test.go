package retention

import (
	"context"
	"testing"
	"time"

	"mercator-hq/saturn/pkg/audit"
	"mercator-hq/saturn/pkg/audit/storage"
)

func TestPrunerRemovesAgedRecords(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStorage()
	now := time.Now().UTC()

	records := []audit.Record{
		{ID: "old", RecordedAt: now.Add(-48 * time.Hour)},
		{ID: "recent", RecordedAt: now.Add(-time.Hour)},
		{ID: "fresh", RecordedAt: now},
	}
	for i := range records {
		if err := backend.Store(ctx, &records[i]); err != nil {
			t.Fatalf("store: %v", err)
		}
	}

	pruner := NewPruner(backend, Policy{MaxAge: 24 * time.Hour})
	removed, err := pruner.PruneOnce(ctx)
	if err != nil {
		t.Fatalf("PruneOnce: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	count, _ := backend.Count(ctx)
	if count != 2 {
		t.Errorf("count = %d, want 2 survivors", count)
	}
}

func TestPrunerNothingToRemove(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStorage()

	rec := audit.Record{ID: "fresh", RecordedAt: time.Now().UTC()}
	if err := backend.Store(ctx, &rec); err != nil {
		t.Fatalf("store: %v", err)
	}

	pruner := NewPruner(backend, Policy{})
	removed, err := pruner.PruneOnce(ctx)
	if err != nil {
		t.Fatalf("PruneOnce: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0 under the default 90-day policy", removed)
	}
}
