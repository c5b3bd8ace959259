package records

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrNotFound = errors.New("records: call not found")

// Store is the persistence contract for call records. Save upserts by
// CallID so the pipeline can write an initiating row first and overlay
// the final outcome later.
type Store interface {
	Save(ctx context.Context, rec CallRecord) error
	Get(ctx context.Context, callID string) (CallRecord, error)
	List(ctx context.Context, from, to time.Time) ([]CallRecord, error)
}

// MemoryStore keeps records in process memory. It backs local runs with
// no database configured, and tests.
type MemoryStore struct {
	mu   sync.Mutex
	byID map[string]CallRecord

	clock func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: map[string]CallRecord{}, clock: time.Now}
}

func (s *MemoryStore) Save(ctx context.Context, rec CallRecord) error {
	if rec.CallID == "" {
		return errors.New("records: call_id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().UTC()
	if prev, ok := s.byID[rec.CallID]; ok {
		rec.CreatedAt = prev.CreatedAt
	} else if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	s.byID[rec.CallID] = rec
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, callID string) (CallRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[callID]
	if !ok {
		return CallRecord{}, ErrNotFound
	}
	return rec, nil
}

// List returns records created inside [from, to), newest first. Zero
// bounds are open-ended.
func (s *MemoryStore) List(ctx context.Context, from, to time.Time) ([]CallRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]CallRecord, 0, len(s.byID))
	for _, rec := range s.byID {
		if !from.IsZero() && rec.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !rec.CreatedAt.Before(to) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
