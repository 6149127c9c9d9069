package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/domain/merchant"
	"github.com/printcraft/customizer-engine/internal/platform/clock"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// Config applies whitelisted field changes to merchant configuration targets.
// It backs UPDATE_CONFIG and is reused by the bulk fan-out and by rollback
// paths of the settings family (field overwrite is naturally self-inverting).
type Config struct {
	configs ports.ConfigStore
	cache   ports.CacheInvalidator
	clock   clock.Clock
	logger  *slog.Logger
}

// NewConfig creates the config executor.
func NewConfig(configs ports.ConfigStore, cache ports.CacheInvalidator, clk clock.Clock, logger *slog.Logger) *Config {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Config{configs: configs, cache: cache, clock: clk, logger: logger}
}

// Bindings returns the action types served by this executor.
//
// UPDATE_CONFIG payload: {"productId": string?, "changes": map}.
func (e *Config) Bindings() map[string]Binding {
	return map[string]Binding{
		TypeUpdateConfig: {
			Execute: func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error) {
				changes, err := requireMap(payload, "changes")
				if err != nil {
					return nil, err
				}
				return e.Apply(ctx, shop, targetID(payload), changes)
			},
			Rollback: func(ctx context.Context, shop string, payload, snapshot map[string]any) (*Outcome, error) {
				return e.Apply(ctx, shop, targetID(payload), snapshot)
			},
		},
	}
}

// Apply filters changes down to the general-config allow-list, snapshots the
// previous values at exactly the surviving keys, and upserts the target.
// A target that has never been written is created with structural defaults.
func (e *Config) Apply(ctx context.Context, shop, target string, changes map[string]any) (*Outcome, error) {
	return e.applyAllowed(ctx, shop, target, changes, merchant.ConfigFields)
}

// ApplySettings is Apply with the wider designer/canvas allow-list.
func (e *Config) ApplySettings(ctx context.Context, shop, target string, changes map[string]any) (*Outcome, error) {
	return e.applyAllowed(ctx, shop, target, changes, merchant.SettingsFields)
}

func (e *Config) applyAllowed(ctx context.Context, shop, target string, changes map[string]any, allowed map[string]bool) (*Outcome, error) {
	clean := merchant.FilterFields(changes, allowed)
	if len(clean) == 0 {
		return nil, &domain.ValidationError{
			Fields: map[string]string{"changes": "no valid configuration fields provided"},
		}
	}

	cfg, err := e.configs.Get(ctx, shop, target)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("loading config %s/%s: %w", shop, target, err)
	}

	previous := cfg.SnapshotFields(clean)

	if cfg == nil {
		cfg = merchant.NewConfig(shop, target)
	}
	cfg.MergeFields(clean)
	cfg.UpdatedAt = e.clock.Now()

	if err := e.configs.Upsert(ctx, cfg); err != nil {
		return nil, fmt.Errorf("upserting config %s/%s: %w", shop, target, err)
	}

	e.logger.InfoContext(ctx, "config fields applied",
		slog.String("operation", "Config.Apply"),
		slog.String("shop", shop),
		slog.String("target_id", target),
		slog.Int("fields", len(clean)),
	)

	e.cache.Invalidate(ctx, configCacheKeys(shop, target)...)

	return &Outcome{Result: cfg, Snapshot: previous}, nil
}
