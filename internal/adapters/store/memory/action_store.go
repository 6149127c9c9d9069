package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/domain/action"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// Compile-time check that ActionStore implements ports.ActionStore.
var _ ports.ActionStore = (*ActionStore)(nil)

// ActionStore keeps action records in memory. Status transitions take the
// store lock, so the Pending-to-Executed check and write are atomic: exactly
// one concurrent MarkExecuted call wins.
type ActionStore struct {
	mu      sync.RWMutex
	records map[string]*action.Record
}

// NewActionStore creates an empty action store.
func NewActionStore() *ActionStore {
	return &ActionStore{records: map[string]*action.Record{}}
}

// Put inserts or replaces a record. Used by seeding and tests; the engine
// itself only transitions existing records.
func (s *ActionStore) Put(ctx context.Context, r *action.Record) error {
	clone, err := cloneRecord(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[shopKey(r.Shop, r.ID)] = clone
	return nil
}

// Get returns the record with the given id within the shop.
func (s *ActionStore) Get(ctx context.Context, shop, id string) (*action.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[shopKey(shop, id)]
	if !ok {
		return nil, fmt.Errorf("%w: action %s", domain.ErrNotFound, id)
	}
	return cloneRecord(r)
}

// List returns the shop's records, most recently created first.
func (s *ActionStore) List(ctx context.Context, shop string) ([]*action.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*action.Record, 0)
	for _, r := range s.records {
		if r.Shop != shop {
			continue
		}
		clone, err := cloneRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, clone)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// MarkExecuted transitions the record from Pending to Executed. The
// transition is conditional; a record in any other state is left untouched
// and the caller gets domain.ErrAlreadyExecuted.
func (s *ActionStore) MarkExecuted(ctx context.Context, shop, id string, snapshot map[string]any, executedAt, approvedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[shopKey(shop, id)]
	if !ok {
		return fmt.Errorf("%w: action %s", domain.ErrNotFound, id)
	}
	if r.Status != action.StatusPending {
		return fmt.Errorf("%w: action %s is %s", domain.ErrAlreadyExecuted, id, r.Status)
	}

	var snapshotCopy map[string]any
	if snapshot != nil {
		if err := deepCopy(snapshot, &snapshotCopy); err != nil {
			return err
		}
	}

	r.Status = action.StatusExecuted
	r.Snapshot = snapshotCopy
	r.ExecutedAt = &executedAt
	r.ApprovedAt = &approvedAt
	return nil
}

// MarkRolledBack transitions the record from Executed to RolledBack.
func (s *ActionStore) MarkRolledBack(ctx context.Context, shop, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[shopKey(shop, id)]
	if !ok {
		return fmt.Errorf("%w: action %s", domain.ErrNotFound, id)
	}
	if r.Status != action.StatusExecuted {
		return fmt.Errorf("%w: action %s is %s", domain.ErrInvalidState, id, r.Status)
	}

	r.Status = action.StatusRolledBack
	return nil
}

func cloneRecord(r *action.Record) (*action.Record, error) {
	clone := *r
	if r.Payload != nil {
		clone.Payload = nil
		if err := deepCopy(r.Payload, &clone.Payload); err != nil {
			return nil, err
		}
	}
	if r.Snapshot != nil {
		clone.Snapshot = nil
		if err := deepCopy(r.Snapshot, &clone.Snapshot); err != nil {
			return nil, err
		}
	}
	if r.ExecutedAt != nil {
		t := *r.ExecutedAt
		clone.ExecutedAt = &t
	}
	if r.ApprovedAt != nil {
		t := *r.ApprovedAt
		clone.ApprovedAt = &t
	}
	return &clone, nil
}
