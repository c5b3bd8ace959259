package records

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreSaveAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := CallRecord{
		CallID:      "call-1",
		PhoneNumber: "+911234567890",
		Status:      StatusInitiating,
	}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Get(ctx, "call-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusInitiating {
		t.Fatalf("status %q, want %q", got.Status, StatusInitiating)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set on insert")
	}
}

func TestMemoryStoreUpsertKeepsCreatedAt(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)
	tick := 0
	s.clock = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	if err := s.Save(ctx, CallRecord{CallID: "call-1", PhoneNumber: "+91", Status: StatusInitiating}); err != nil {
		t.Fatalf("save: %v", err)
	}
	first, _ := s.Get(ctx, "call-1")

	update := CallRecord{CallID: "call-1", PhoneNumber: "+91", Status: StatusCompleted, Transcript: "hello"}
	if err := s.Save(ctx, update); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, _ := s.Get(ctx, "call-1")
	if got.Status != StatusCompleted || got.Transcript != "hello" {
		t.Fatalf("overlay not applied: %+v", got)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at changed on upsert: %v -> %v", first.CreatedAt, got.CreatedAt)
	}
	if !got.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("updated_at not advanced: %v -> %v", first.UpdatedAt, got.UpdatedAt)
	}
}

func TestMemoryStoreMissingCallID(t *testing.T) {
	s := NewMemoryStore()

	if err := s.Save(context.Background(), CallRecord{Status: StatusFailed}); err == nil {
		t.Fatal("expected an error for a record without call_id")
	}
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreListRangeAndOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"call-a", "call-b", "call-c"} {
		rec := CallRecord{
			CallID:      id,
			PhoneNumber: "+91",
			Status:      StatusCompleted,
			CreatedAt:   base.AddDate(0, 0, i),
		}
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	got, err := s.List(ctx, base, base.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].CallID != "call-b" || got[1].CallID != "call-a" {
		t.Fatalf("wrong order: %s, %s", got[0].CallID, got[1].CallID)
	}

	all, err := s.List(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d records, want 3", len(all))
	}
}
