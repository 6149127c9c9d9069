package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/domain/asset"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// Compile-time check that AssetStore implements ports.AssetStore.
var _ ports.AssetStore = (*AssetStore)(nil)

// AssetStore keeps shop assets in memory, keyed by (shop, id) with a linear
// secondary lookup by name. Asset names are not unique; name lookup returns
// the lexicographically first match so results are deterministic.
type AssetStore struct {
	mu     sync.RWMutex
	assets map[string]*asset.Asset
}

// NewAssetStore creates an empty asset store.
func NewAssetStore() *AssetStore {
	return &AssetStore{assets: map[string]*asset.Asset{}}
}

// Get returns the asset by id within the shop.
func (s *AssetStore) Get(ctx context.Context, shop, id string) (*asset.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assets[shopKey(shop, id)]
	if !ok {
		return nil, fmt.Errorf("%w: asset %s", domain.ErrNotFound, id)
	}
	return a.Clone(), nil
}

// GetByName returns the asset whose name matches case-insensitively within
// the shop.
func (s *AssetStore) GetByName(ctx context.Context, shop, name string) (*asset.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *asset.Asset
	for _, a := range s.assets {
		if a.Shop != shop || !strings.EqualFold(a.Name, name) {
			continue
		}
		if found == nil || a.Name < found.Name || (a.Name == found.Name && a.ID < found.ID) {
			found = a
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: asset named %q", domain.ErrNotFound, name)
	}
	return found.Clone(), nil
}

// List returns all of the shop's assets ordered by name.
func (s *AssetStore) List(ctx context.Context, shop string) ([]*asset.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*asset.Asset, 0)
	for _, a := range s.assets {
		if a.Shop == shop {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Create persists a new asset, assigning an id when the caller left it empty.
func (s *AssetStore) Create(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
	clone := a.Clone()
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[shopKey(clone.Shop, clone.ID)] = clone
	return clone.Clone(), nil
}

// Update overwrites the asset's mutable fields.
func (s *AssetStore) Update(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := shopKey(a.Shop, a.ID)
	current, ok := s.assets[key]
	if !ok {
		return nil, fmt.Errorf("%w: asset %s", domain.ErrNotFound, a.ID)
	}

	clone := a.Clone()
	clone.CreatedAt = current.CreatedAt
	s.assets[key] = clone
	return clone.Clone(), nil
}

// Delete removes the asset.
func (s *AssetStore) Delete(ctx context.Context, shop, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := shopKey(shop, id)
	if _, ok := s.assets[key]; !ok {
		return fmt.Errorf("%w: asset %s", domain.ErrNotFound, id)
	}
	delete(s.assets, key)
	return nil
}
