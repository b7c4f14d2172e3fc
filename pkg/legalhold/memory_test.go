package legalhold

import (
	"context"
	"testing"
)

func TestMemoryStorePlaceAndRelease(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	held, err := store.IsOnHold(ctx, KindDataSubject, "emp-2109")
	if err != nil || held {
		t.Fatalf("IsOnHold on empty store = %v, %v; want false, nil", held, err)
	}

	store.Place(KindDataSubject, "emp-2109")
	held, _ = store.IsOnHold(ctx, KindDataSubject, "emp-2109")
	if !held {
		t.Error("placed hold not found")
	}

	// Same id under a different kind is a different hold.
	held, _ = store.IsOnHold(ctx, KindService, "emp-2109")
	if held {
		t.Error("hold leaked across kinds")
	}

	store.Release(KindDataSubject, "emp-2109")
	held, _ = store.IsOnHold(ctx, KindDataSubject, "emp-2109")
	if held {
		t.Error("released hold still reported")
	}

	// Releasing a hold that does not exist is a no-op.
	store.Release(KindService, "nobody")
}
