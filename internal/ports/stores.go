package ports

import (
	"context"
	"time"

	"github.com/printcraft/customizer-engine/internal/domain/action"
	"github.com/printcraft/customizer-engine/internal/domain/asset"
	"github.com/printcraft/customizer-engine/internal/domain/design"
	"github.com/printcraft/customizer-engine/internal/domain/merchant"
)

// ActionStore persists action records. Every read and write is scoped by
// shop: a record id that exists under another shop behaves as not found.
type ActionStore interface {
	// Get returns the record with the given id within the shop.
	// Returns domain.ErrNotFound if no such record exists for the shop.
	Get(ctx context.Context, shop, id string) (*action.Record, error)

	// List returns the shop's records, most recently created first.
	List(ctx context.Context, shop string) ([]*action.Record, error)

	// MarkExecuted transitions the record from Pending to Executed, storing
	// the snapshot and timestamps. The transition is conditional: when the
	// record is no longer Pending (a concurrent execution won), it returns
	// domain.ErrAlreadyExecuted and writes nothing.
	MarkExecuted(ctx context.Context, shop, id string, snapshot map[string]any, executedAt, approvedAt time.Time) error

	// MarkRolledBack transitions the record from Executed to RolledBack.
	// Returns domain.ErrInvalidState when the record is not Executed.
	MarkRolledBack(ctx context.Context, shop, id string) error
}

// ConfigStore persists merchant configuration targets keyed by
// (shop, targetID).
type ConfigStore interface {
	// Get returns the configuration for the target.
	// Returns domain.ErrNotFound if the target has never been written.
	Get(ctx context.Context, shop, targetID string) (*merchant.Config, error)

	// Upsert writes the configuration, creating the target if absent.
	Upsert(ctx context.Context, cfg *merchant.Config) error
}

// DesignStore persists saved designs keyed by (shop, targetID). Latest wins:
// Get returns the most recently updated design for the target.
type DesignStore interface {
	// Get returns the latest design for the target.
	// Returns domain.ErrNotFound if none exists.
	Get(ctx context.Context, shop, targetID string) (*design.Design, error)

	// Upsert writes the design, creating it if absent.
	Upsert(ctx context.Context, d *design.Design) error

	// Delete removes the target's design. Used only to invert an execution
	// that synthesized the design in the first place.
	Delete(ctx context.Context, shop, targetID string) error
}

// AssetStore persists shop assets with a primary id key and a secondary
// lookup by (type-insensitive) name.
type AssetStore interface {
	// Get returns the asset by id within the shop.
	// Returns domain.ErrNotFound if no such asset exists for the shop.
	Get(ctx context.Context, shop, id string) (*asset.Asset, error)

	// GetByName returns the first asset whose name matches case-insensitively
	// within the shop. Returns domain.ErrNotFound when none matches.
	GetByName(ctx context.Context, shop, name string) (*asset.Asset, error)

	// List returns all of the shop's assets.
	List(ctx context.Context, shop string) ([]*asset.Asset, error)

	// Create persists a new asset and returns it with server-assigned fields.
	Create(ctx context.Context, a *asset.Asset) (*asset.Asset, error)

	// Update overwrites the asset's mutable fields.
	// Returns domain.ErrNotFound if the asset does not exist for the shop.
	Update(ctx context.Context, a *asset.Asset) (*asset.Asset, error)

	// Delete removes the asset.
	// Returns domain.ErrNotFound if the asset does not exist for the shop.
	Delete(ctx context.Context, shop, id string) error
}
