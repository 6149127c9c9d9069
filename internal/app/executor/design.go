package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/domain/design"
	"github.com/printcraft/customizer-engine/internal/platform/clock"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// DesignPages mutates the side (page) list of a product's saved design.
// When no design exists yet, adding a side synthesizes one whose first side
// mirrors the product's current print area, so merchants always land on a
// design that matches what the customizer shows.
type DesignPages struct {
	designs ports.DesignStore
	configs ports.ConfigStore
	cache   ports.CacheInvalidator
	clock   clock.Clock
	logger  *slog.Logger
}

// NewDesignPages creates the design executor.
func NewDesignPages(designs ports.DesignStore, configs ports.ConfigStore, cache ports.CacheInvalidator, clk clock.Clock, logger *slog.Logger) *DesignPages {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DesignPages{designs: designs, configs: configs, cache: cache, clock: clk, logger: logger}
}

// Bindings returns the action types served by this executor.
//
// ADD_SIDE payload: {"productId": string, "side": map?}.
// REMOVE_SIDE payload: {"productId": string, "sideId": string}.
func (e *DesignPages) Bindings() map[string]Binding {
	return map[string]Binding{
		TypeAddSide: {
			Execute: func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error) {
				return e.AddSide(ctx, shop, targetID(payload), mapField(payload, "side"))
			},
			Rollback: e.rollbackAddSide,
		},
		TypeRemoveSide: {
			Execute: func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error) {
				sideID, err := requireString(payload, "sideId")
				if err != nil {
					return nil, err
				}
				return e.RemoveSide(ctx, shop, targetID(payload), sideID)
			},
			Rollback: e.rollbackRemoveSide,
		},
	}
}

// AddSide appends a side to the target's latest design. Absent designs are
// synthesized from the current config first; the snapshot records whether the
// design itself was created so rollback can delete rather than restore.
func (e *DesignPages) AddSide(ctx context.Context, shop, target string, sideData map[string]any) (*Outcome, error) {
	d, err := e.designs.Get(ctx, shop, target)
	created := false
	var snapshot map[string]any

	switch {
	case err == nil:
		snapshot = map[string]any{"sides": d.CloneSides()}
	case errors.Is(err, domain.ErrNotFound):
		d, err = e.synthesizeDesign(ctx, shop, target)
		if err != nil {
			return nil, err
		}
		created = true
		snapshot = map[string]any{"designCreated": true}
	default:
		return nil, fmt.Errorf("loading design %s/%s: %w", shop, target, err)
	}

	side := e.buildSide(sideData, len(d.Sides)+1)
	d.AppendSide(side)
	d.UpdatedAt = e.clock.Now()

	if err := e.designs.Upsert(ctx, d); err != nil {
		return nil, fmt.Errorf("upserting design %s/%s: %w", shop, target, err)
	}

	e.logger.InfoContext(ctx, "side added",
		slog.String("operation", "DesignPages.AddSide"),
		slog.String("shop", shop),
		slog.String("target_id", target),
		slog.String("side_id", side.ID),
		slog.Int("total_sides", len(d.Sides)),
		slog.Bool("design_created", created),
	)

	e.cache.Invalidate(ctx, configCacheKeys(shop, target)...)

	return &Outcome{
		Result:   map[string]any{"design": d, "newSide": side},
		Snapshot: snapshot,
	}, nil
}

// RemoveSide drops the named side from the target's latest design. Removing
// the last remaining side is refused, and a failed removal leaves the design
// untouched.
func (e *DesignPages) RemoveSide(ctx context.Context, shop, target, sideID string) (*Outcome, error) {
	d, err := e.designs.Get(ctx, shop, target)
	if err != nil {
		return nil, fmt.Errorf("loading design %s/%s: %w", shop, target, err)
	}

	snapshot := map[string]any{"sides": d.CloneSides()}

	if err := d.RemoveSide(sideID); err != nil {
		return nil, err
	}
	d.UpdatedAt = e.clock.Now()

	if err := e.designs.Upsert(ctx, d); err != nil {
		return nil, fmt.Errorf("upserting design %s/%s: %w", shop, target, err)
	}

	e.logger.InfoContext(ctx, "side removed",
		slog.String("operation", "DesignPages.RemoveSide"),
		slog.String("shop", shop),
		slog.String("target_id", target),
		slog.String("side_id", sideID),
		slog.Int("remaining_sides", len(d.Sides)),
	)

	e.cache.Invalidate(ctx, configCacheKeys(shop, target)...)

	return &Outcome{Result: d, Snapshot: snapshot}, nil
}

func (e *DesignPages) rollbackAddSide(ctx context.Context, shop string, payload, snapshot map[string]any) (*Outcome, error) {
	target := targetID(payload)

	if boolField(snapshot, "designCreated") {
		if err := e.designs.Delete(ctx, shop, target); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("deleting design %s/%s: %w", shop, target, err)
		}
		e.cache.Invalidate(ctx, configCacheKeys(shop, target)...)
		return &Outcome{Result: map[string]any{"designDeleted": true}}, nil
	}

	return e.restoreSides(ctx, shop, target, snapshot)
}

func (e *DesignPages) rollbackRemoveSide(ctx context.Context, shop string, payload, snapshot map[string]any) (*Outcome, error) {
	return e.restoreSides(ctx, shop, targetID(payload), snapshot)
}

func (e *DesignPages) restoreSides(ctx context.Context, shop, target string, snapshot map[string]any) (*Outcome, error) {
	d, err := e.designs.Get(ctx, shop, target)
	if err != nil {
		return nil, fmt.Errorf("loading design %s/%s: %w", shop, target, err)
	}

	var sides []design.Side
	if err := reencode(snapshot["sides"], &sides); err != nil {
		return nil, err
	}
	d.Sides = sides
	d.UpdatedAt = e.clock.Now()

	if err := e.designs.Upsert(ctx, d); err != nil {
		return nil, fmt.Errorf("upserting design %s/%s: %w", shop, target, err)
	}

	e.cache.Invalidate(ctx, configCacheKeys(shop, target)...)

	return &Outcome{Result: d}, nil
}

// synthesizeDesign builds a fresh design whose first side mirrors the
// target's print area. A missing config yields an empty first side.
func (e *DesignPages) synthesizeDesign(ctx context.Context, shop, target string) (*design.Design, error) {
	first := design.Side{
		ID:                  "default",
		Name:                "Side 1",
		Elements:            []map[string]any{},
		BaseImageScale:      100,
		BaseImageProperties: design.DefaultBaseImageProperties(),
	}

	cfg, err := e.configs.Get(ctx, shop, target)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("loading config %s/%s: %w", shop, target, err)
	}
	if cfg != nil {
		if err := reencode(cfg.PrintArea.Layers, &first.Elements); err != nil {
			return nil, err
		}
		first.BaseImage = stringField(cfg.Fields, "baseImage")
	}

	return &design.Design{
		ID:       uuid.NewString(),
		Shop:     shop,
		TargetID: target,
		Name:     "Design for Product " + target,
		Sides:    []design.Side{first},
	}, nil
}

// buildSide fills a side payload with defaults. The ordinal names sides that
// arrive without one.
func (e *DesignPages) buildSide(sideData map[string]any, ordinal int) design.Side {
	side := design.Side{
		ID:                   stringField(sideData, "id"),
		Name:                 stringField(sideData, "name"),
		Elements:             mapSliceField(sideData, "elements"),
		BaseImage:            stringField(sideData, "baseImage"),
		BaseImageScale:       float64(intOrDefault(sideData, "baseImageScale", 100)),
		BaseImageAsMask:      boolField(sideData, "baseImageAsMask"),
		BaseImageMaskInvert:  boolField(sideData, "baseImageMaskInvert"),
		BaseImageColorEnable: boolField(sideData, "baseImageColorEnabled"),
		BaseImageProperties:  design.DefaultBaseImageProperties(),
	}
	if side.ID == "" {
		side.ID = "side_" + uuid.NewString()
	}
	if side.Name == "" {
		side.Name = fmt.Sprintf("Side %d", ordinal)
	}
	if side.Elements == nil {
		side.Elements = []map[string]any{}
	}
	if props := mapField(sideData, "baseImageProperties"); props != nil {
		var decoded design.BaseImageProperties
		if err := reencode(props, &decoded); err == nil {
			side.BaseImageProperties = decoded
		}
	}
	return side
}
