package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/domain/merchant"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// Compile-time check that ConfigStore implements ports.ConfigStore.
var _ ports.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps merchant configurations in memory, keyed by
// (shop, targetID).
type ConfigStore struct {
	mu      sync.RWMutex
	configs map[string]*merchant.Config
}

// NewConfigStore creates an empty config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{configs: map[string]*merchant.Config{}}
}

// Get returns the configuration for the target.
func (s *ConfigStore) Get(ctx context.Context, shop, targetID string) (*merchant.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[shopKey(shop, targetID)]
	if !ok {
		return nil, fmt.Errorf("%w: config %s/%s", domain.ErrNotFound, shop, targetID)
	}

	var clone merchant.Config
	if err := deepCopy(cfg, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

// Upsert writes the configuration, creating the target if absent.
func (s *ConfigStore) Upsert(ctx context.Context, cfg *merchant.Config) error {
	var clone merchant.Config
	if err := deepCopy(cfg, &clone); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[shopKey(cfg.Shop, cfg.TargetID)] = &clone
	return nil
}
