package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/domain/design"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// Compile-time check that DesignStore implements ports.DesignStore.
var _ ports.DesignStore = (*DesignStore)(nil)

// DesignStore keeps saved designs in memory, keyed by (shop, targetID).
// One design per target: Upsert replaces whatever was stored.
type DesignStore struct {
	mu      sync.RWMutex
	designs map[string]*design.Design
}

// NewDesignStore creates an empty design store.
func NewDesignStore() *DesignStore {
	return &DesignStore{designs: map[string]*design.Design{}}
}

// Get returns the latest design for the target.
func (s *DesignStore) Get(ctx context.Context, shop, targetID string) (*design.Design, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.designs[shopKey(shop, targetID)]
	if !ok {
		return nil, fmt.Errorf("%w: design %s/%s", domain.ErrNotFound, shop, targetID)
	}

	var clone design.Design
	if err := deepCopy(d, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

// Upsert writes the design, creating it if absent.
func (s *DesignStore) Upsert(ctx context.Context, d *design.Design) error {
	var clone design.Design
	if err := deepCopy(d, &clone); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.designs[shopKey(d.Shop, d.TargetID)] = &clone
	return nil
}

// Delete removes the target's design.
func (s *DesignStore) Delete(ctx context.Context, shop, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := shopKey(shop, targetID)
	if _, ok := s.designs[key]; !ok {
		return fmt.Errorf("%w: design %s/%s", domain.ErrNotFound, shop, targetID)
	}
	delete(s.designs, key)
	return nil
}
