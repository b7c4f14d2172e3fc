package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mercator-hq/saturn/pkg/audit"
)

func seedRecords(t *testing.T, s *MemoryStorage, base time.Time) {
	t.Helper()
	records := []audit.Record{
		{ID: "r1", RecordedAt: base, DataSubject: "emp-1", Decision: audit.Decision{Action: "ALLOW"}},
		{ID: "r2", RecordedAt: base.Add(time.Minute), DataSubject: "emp-2", Decision: audit.Decision{Action: "DENY"}},
		{ID: "r3", RecordedAt: base.Add(2 * time.Minute), DataSubject: "emp-1", Decision: audit.Decision{Action: "DENY"}},
	}
	for i := range records {
		if err := s.Store(context.Background(), &records[i]); err != nil {
			t.Fatalf("store: %v", err)
		}
	}
}

func TestMemoryStorageQueryFilters(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   []string
	}{
		{"all newest first", audit.QueryFilter{}, []string{"r3", "r2", "r1"}},
		{"by subject", audit.QueryFilter{DataSubject: "emp-1"}, []string{"r3", "r1"}},
		{"by action", audit.QueryFilter{Action: "DENY"}, []string{"r3", "r2"}},
		{"since", audit.QueryFilter{Since: base.Add(time.Minute)}, []string{"r3", "r2"}},
		{"limit", audit.QueryFilter{Limit: 2}, []string{"r3", "r2"}},
		{"combined", audit.QueryFilter{DataSubject: "emp-1", Action: "DENY"}, []string{"r3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStorage()
			seedRecords(t, s, base)

			got, err := s.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d records, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("records[%d] = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestMemoryStorageCountAndDelete(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	s := NewMemoryStorage()
	seedRecords(t, s, base)

	count, err := s.Count(ctx)
	if err != nil || count != 3 {
		t.Fatalf("count = %d, %v; want 3", count, err)
	}

	removed, err := s.DeleteOlderThan(ctx, base.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2 (cutoff is exclusive of records at it)", removed)
	}

	count, _ = s.Count(ctx)
	if count != 1 {
		t.Errorf("count after delete = %d, want 1", count)
	}

	left, _ := s.Query(ctx, audit.QueryFilter{})
	if len(left) != 1 || left[0].ID != "r3" {
		t.Errorf("surviving record = %v, want r3", left)
	}
}

func TestMemoryStorageCopiesOnStoreAndQuery(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	rec := audit.Record{ID: "r1", RecordedAt: time.Now()}
	if err := s.Store(ctx, &rec); err != nil {
		t.Fatalf("store: %v", err)
	}
	rec.ID = "mutated-after-store"

	got, _ := s.Query(ctx, audit.QueryFilter{})
	if got[0].ID != "r1" {
		t.Error("caller mutation after Store leaked into storage")
	}

	got[0].ID = "mutated-after-query"
	again, _ := s.Query(ctx, audit.QueryFilter{})
	if again[0].ID != "r1" {
		t.Error("caller mutation of query result leaked into storage")
	}
}

func TestMemoryStorageManyRecords(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		rec := audit.Record{ID: fmt.Sprintf("r%02d", i), RecordedAt: base.Add(time.Duration(i) * time.Second)}
		if err := s.Store(ctx, &rec); err != nil {
			t.Fatalf("store: %v", err)
		}
	}

	got, _ := s.Query(ctx, audit.QueryFilter{Limit: 5})
	if len(got) != 5 || got[0].ID != "r49" {
		t.Errorf("limited query = %d records starting %q, want 5 starting r49", len(got), got[0].ID)
	}
}
