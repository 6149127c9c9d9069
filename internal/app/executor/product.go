package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/domain/asset"
	"github.com/printcraft/customizer-engine/internal/domain/merchant"
	"github.com/printcraft/customizer-engine/internal/platform/clock"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// Product mutates the customization surface of a single product config:
// adding element layers to the print area and pruning unused ones. Adding an
// element also creates the option asset merchants manage it through and wires
// its id back onto the config.
type Product struct {
	configs ports.ConfigStore
	assets  ports.AssetStore
	cache   ports.CacheInvalidator
	clock   clock.Clock
	logger  *slog.Logger
}

// NewProduct creates the product executor.
func NewProduct(configs ports.ConfigStore, assets ports.AssetStore, cache ports.CacheInvalidator, clk clock.Clock, logger *slog.Logger) *Product {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Product{configs: configs, assets: assets, cache: cache, clock: clk, logger: logger}
}

// Bindings returns the action types served by this executor.
//
// ADD_ELEMENT payload: {"productId": string, "element": {"type": string, ...}}.
// REMOVE_UNUSED payload: {"productId": string, "layerIds": [string]}.
func (e *Product) Bindings() map[string]Binding {
	return map[string]Binding{
		TypeAddElement: {
			Execute: func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error) {
				element, err := requireMap(payload, "element")
				if err != nil {
					return nil, err
				}
				return e.AddElement(ctx, shop, targetID(payload), element)
			},
			Rollback: e.rollbackAddElement,
		},
		TypeRemoveUnused: {
			Execute: func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error) {
				layerIDs := stringSliceField(payload, "layerIds")
				if len(layerIDs) == 0 {
					return nil, &domain.ValidationError{Fields: map[string]string{"layerIds": "required"}}
				}
				return e.RemoveUnusedElements(ctx, shop, targetID(payload), layerIDs)
			},
			Rollback: e.rollbackRemoveUnused,
		},
	}
}

// AddElement appends a new layer to the target's print area, creates the
// matching option asset, and enables the element's tool. A missing config is
// created with structural defaults first, so the operation never fails on a
// product that has not been customized yet.
func (e *Product) AddElement(ctx context.Context, shop, target string, element map[string]any) (*Outcome, error) {
	elementType, err := requireString(element, "type")
	if err != nil {
		return nil, err
	}

	cfg, err := e.configs.Get(ctx, shop, target)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("loading config %s/%s: %w", shop, target, err)
		}
		cfg = merchant.NewConfig(shop, target)
	}

	snapshot := map[string]any{
		"printArea":     cfg.PrintArea,
		"enabledTools":  cfg.EnabledTools,
		"optionAssetId": cfg.OptionAssetID,
	}

	label := stringField(element, "label")
	if label == "" {
		label = "New " + elementType
	}

	layer := merchant.Layer{
		ID:      "layer_" + uuid.NewString(),
		Type:    elementType,
		Label:   label,
		Visible: true,
		Locked:  false,
		Opacity: 1,
		Props:   defaultLayerProps(elementType, element),
	}
	cfg.PrintArea.Layers = append(cloneLayers(cfg.PrintArea.Layers), layer)

	option, err := e.assets.Create(ctx, e.buildOptionAsset(shop, elementType, label, element))
	if err != nil {
		return nil, fmt.Errorf("creating option asset: %w", err)
	}
	snapshot["createdAssetId"] = option.ID

	if !cfg.HasTool(elementType) {
		cfg.EnabledTools = append(cfg.EnabledTools, elementType)
	}
	cfg.OptionAssetID = option.ID
	cfg.UpdatedAt = e.clock.Now()

	if err := e.configs.Upsert(ctx, cfg); err != nil {
		return nil, fmt.Errorf("upserting config %s/%s: %w", shop, target, err)
	}

	e.logger.InfoContext(ctx, "element added",
		slog.String("operation", "Product.AddElement"),
		slog.String("shop", shop),
		slog.String("target_id", target),
		slog.String("element_type", elementType),
		slog.String("layer_id", layer.ID),
		slog.String("asset_id", option.ID),
	)

	e.cache.Invalidate(ctx, configCacheKeys(shop, target)...)
	e.cache.Invalidate(ctx, assetCacheKeys(shop, asset.TypeOption)...)

	return &Outcome{
		Result:   map[string]any{"config": cfg, "createdAsset": option, "layerId": layer.ID},
		Snapshot: snapshot,
	}, nil
}

// RemoveUnusedElements drops the named layers from the target's print area.
// Unknown layer ids are ignored.
func (e *Product) RemoveUnusedElements(ctx context.Context, shop, target string, layerIDs []string) (*Outcome, error) {
	cfg, err := e.configs.Get(ctx, shop, target)
	if err != nil {
		return nil, fmt.Errorf("loading config %s/%s: %w", shop, target, err)
	}

	snapshot := map[string]any{"printArea": cfg.PrintArea}

	remove := make(map[string]bool, len(layerIDs))
	for _, id := range layerIDs {
		remove[id] = true
	}

	kept := make([]merchant.Layer, 0, len(cfg.PrintArea.Layers))
	for _, layer := range cfg.PrintArea.Layers {
		if !remove[layer.ID] {
			kept = append(kept, layer)
		}
	}
	removed := len(cfg.PrintArea.Layers) - len(kept)
	cfg.PrintArea.Layers = kept
	cfg.UpdatedAt = e.clock.Now()

	if err := e.configs.Upsert(ctx, cfg); err != nil {
		return nil, fmt.Errorf("upserting config %s/%s: %w", shop, target, err)
	}

	e.logger.InfoContext(ctx, "layers removed",
		slog.String("operation", "Product.RemoveUnusedElements"),
		slog.String("shop", shop),
		slog.String("target_id", target),
		slog.Int("removed", removed),
	)

	e.cache.Invalidate(ctx, configCacheKeys(shop, target)...)

	return &Outcome{Result: cfg, Snapshot: snapshot}, nil
}

func (e *Product) rollbackAddElement(ctx context.Context, shop string, payload, snapshot map[string]any) (*Outcome, error) {
	target := targetID(payload)

	cfg, err := e.configs.Get(ctx, shop, target)
	if err != nil {
		return nil, fmt.Errorf("loading config %s/%s: %w", shop, target, err)
	}

	if err := reencode(snapshot["printArea"], &cfg.PrintArea); err != nil {
		return nil, err
	}
	cfg.EnabledTools = stringSliceField(snapshot, "enabledTools")
	cfg.OptionAssetID = stringField(snapshot, "optionAssetId")
	cfg.UpdatedAt = e.clock.Now()

	if err := e.configs.Upsert(ctx, cfg); err != nil {
		return nil, fmt.Errorf("upserting config %s/%s: %w", shop, target, err)
	}

	if createdID := stringField(snapshot, "createdAssetId"); createdID != "" {
		if err := e.assets.Delete(ctx, shop, createdID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("deleting option asset %s: %w", createdID, err)
		}
		e.cache.Invalidate(ctx, assetCacheKeys(shop, asset.TypeOption)...)
	}

	e.cache.Invalidate(ctx, configCacheKeys(shop, target)...)

	return &Outcome{Result: cfg}, nil
}

func (e *Product) rollbackRemoveUnused(ctx context.Context, shop string, payload, snapshot map[string]any) (*Outcome, error) {
	target := targetID(payload)

	cfg, err := e.configs.Get(ctx, shop, target)
	if err != nil {
		return nil, fmt.Errorf("loading config %s/%s: %w", shop, target, err)
	}

	if err := reencode(snapshot["printArea"], &cfg.PrintArea); err != nil {
		return nil, err
	}
	cfg.UpdatedAt = e.clock.Now()

	if err := e.configs.Upsert(ctx, cfg); err != nil {
		return nil, fmt.Errorf("upserting config %s/%s: %w", shop, target, err)
	}

	e.cache.Invalidate(ctx, configCacheKeys(shop, target)...)

	return &Outcome{Result: cfg}, nil
}

// buildOptionAsset constructs the admin-facing option asset for a new
// element. All elements become type "option" so the admin surface can list
// them uniformly; the concrete element type travels in the asset config.
func (e *Product) buildOptionAsset(shop, elementType, label string, element map[string]any) *asset.Asset {
	config := map[string]any{"type": elementType, "elementType": elementType, "label": label}
	switch elementType {
	case "text":
		config["placeholder"] = "Enter your text"
		config["maxLength"] = intOrDefault(element, "maxLength", 100)
		config["font"] = stringOrDefault(element, "font", "Arial")
		config["color"] = stringOrDefault(element, "color", "#000000")
		config["fontSize"] = intOrDefault(element, "fontSize", 24)
	case "image":
		config["allowedFormats"] = []string{"jpg", "png", "svg"}
		config["maxSize"] = 5 * 1024 * 1024
	case "gallery":
		config["images"] = element["images"]
	case "monogram":
		config["style"] = stringOrDefault(element, "style", "classic")
		config["maxChars"] = 3
		config["color"] = stringOrDefault(element, "color", "#000000")
	}

	now := e.clock.Now()
	return &asset.Asset{
		ID:        uuid.NewString(),
		Shop:      shop,
		Type:      asset.TypeOption,
		Name:      label,
		Value:     label,
		Label:     label,
		Config:    config,
		IsDefault: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// defaultLayerProps supplies the starting geometry and type-specific props
// for a freshly added layer.
func defaultLayerProps(elementType string, element map[string]any) map[string]any {
	props := map[string]any{
		"x":        50,
		"y":        50,
		"width":    200,
		"height":   100,
		"rotation": 0,
		"scale":    1,
	}

	switch elementType {
	case "text":
		props["text"] = "Your Text Here"
		props["fontSize"] = 24
		props["fontFamily"] = stringOrDefault(element, "font", "Arial")
		props["fill"] = stringOrDefault(element, "color", "#000000")
		props["textAlign"] = "center"
	case "image":
		props["url"] = stringField(element, "url")
		props["keepAspectRatio"] = true
	case "gallery":
		props["images"] = []any{}
		props["columns"] = 3
		props["gap"] = 10
	case "monogram":
		props["text"] = "ABC"
		props["monogramType"] = stringOrDefault(element, "style", "classic")
		props["fill"] = stringOrDefault(element, "color", "#000000")
	}

	return props
}

func cloneLayers(layers []merchant.Layer) []merchant.Layer {
	out := make([]merchant.Layer, len(layers))
	copy(out, layers)
	return out
}

func stringOrDefault(m map[string]any, key, fallback string) string {
	if s := stringField(m, key); s != "" {
		return s
	}
	return fallback
}

func intOrDefault(m map[string]any, key string, fallback int) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}
