package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/printcraft/customizer-engine/internal/app/fanout"
	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/domain/asset"
	"github.com/printcraft/customizer-engine/internal/platform/clock"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// Library manages the shop asset library: raw asset CRUD plus the composite
// creators (color palettes, font groups, galleries) that format structured
// payloads into stored value strings. Gallery creation re-hosts remote images
// in managed storage before the asset is written.
type Library struct {
	assets         ports.AssetStore
	fetcher        ports.ImageFetcher
	images         ports.ImageStore
	cache          ports.CacheInvalidator
	clock          clock.Clock
	logger         *slog.Logger
	galleryWorkers int
}

// NewLibrary creates the asset executor. galleryWorkers bounds concurrent
// image downloads during gallery creation; values below 1 are raised to 1.
func NewLibrary(assets ports.AssetStore, fetcher ports.ImageFetcher, images ports.ImageStore, cache ports.CacheInvalidator, clk clock.Clock, logger *slog.Logger, galleryWorkers int) *Library {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if galleryWorkers < 1 {
		galleryWorkers = 1
	}
	return &Library{
		assets:         assets,
		fetcher:        fetcher,
		images:         images,
		cache:          cache,
		clock:          clk,
		logger:         logger,
		galleryWorkers: galleryWorkers,
	}
}

// Bindings returns the action types served by this executor.
//
// CREATE_ASSET payload: {"asset": {"type", "name", "value", ...}}.
// UPDATE_ASSET payload: {"assetId": string, "updates": map}.
// DELETE_ASSET payload: {"assetId": string} where assetId may be an id, an
// exact name, or a free-text term resolved by fuzzy matching.
// CREATE_COLOR_PALETTE payload: {"palette": {"name", "colors": [{name,hex}]}}.
// CREATE_FONT_GROUP payload: {"fontGroup": {"name", "fontType", "fonts"}}.
// CREATE_GALLERY payload: {"gallery": {"name", "images": [{name,url}]}}.
func (e *Library) Bindings() map[string]Binding {
	return map[string]Binding{
		TypeCreateAsset: {
			Execute: func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error) {
				data, err := requireMap(payload, "asset")
				if err != nil {
					return nil, err
				}
				return e.CreateAsset(ctx, shop, data)
			},
			Rollback: e.rollbackCreate,
		},
		TypeUpdateAsset: {
			Execute: func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error) {
				ref, err := requireString(payload, "assetId")
				if err != nil {
					return nil, err
				}
				updates, err := requireMap(payload, "updates")
				if err != nil {
					return nil, err
				}
				return e.UpdateAsset(ctx, shop, ref, updates)
			},
			Rollback: e.rollbackUpdate,
		},
		TypeDeleteAsset: {
			Execute: func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error) {
				ref, err := requireString(payload, "assetId")
				if err != nil {
					return nil, err
				}
				return e.DeleteAsset(ctx, shop, ref)
			},
			Rollback: e.rollbackDelete,
		},
		TypeCreateColorPalette: {
			Execute: func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error) {
				data, err := requireMap(payload, "palette")
				if err != nil {
					return nil, err
				}
				return e.CreateColorPalette(ctx, shop, data)
			},
			Rollback: e.rollbackCreate,
		},
		TypeCreateFontGroup: {
			Execute: func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error) {
				data, err := requireMap(payload, "fontGroup")
				if err != nil {
					return nil, err
				}
				return e.CreateFontGroup(ctx, shop, data)
			},
			Rollback: e.rollbackCreate,
		},
		TypeCreateGallery: {
			Execute: func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error) {
				data, err := requireMap(payload, "gallery")
				if err != nil {
					return nil, err
				}
				return e.CreateGallery(ctx, shop, data)
			},
			Rollback: e.rollbackCreate,
		},
	}
}

// CreateAsset persists a raw asset. Type, name, and value are required; the
// rest defaults. The snapshot records the created id so rollback can delete.
func (e *Library) CreateAsset(ctx context.Context, shop string, data map[string]any) (*Outcome, error) {
	fields := map[string]string{}
	for _, key := range []string{"type", "name", "value"} {
		if stringField(data, key) == "" {
			fields[key] = "required"
		}
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	now := e.clock.Now()
	a := &asset.Asset{
		ID:        stringField(data, "id"),
		Shop:      shop,
		Type:      stringField(data, "type"),
		Name:      stringField(data, "name"),
		Value:     stringField(data, "value"),
		Label:     stringField(data, "label"),
		Config:    mapField(data, "config"),
		IsDefault: boolField(data, "isDefault"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Config == nil {
		a.Config = map[string]any{}
	}

	created, err := e.assets.Create(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("creating asset %q: %w", a.Name, err)
	}

	e.logger.InfoContext(ctx, "asset created",
		slog.String("operation", "Library.CreateAsset"),
		slog.String("shop", shop),
		slog.String("asset_id", created.ID),
		slog.String("asset_type", created.Type),
	)

	e.cache.Invalidate(ctx, assetCacheKeys(shop, created.Type)...)

	return &Outcome{
		Result:   map[string]any{"message": fmt.Sprintf("Created %s %q", created.Type, created.Name), "asset": created},
		Snapshot: map[string]any{"createdAssetId": created.ID},
	}, nil
}

// UpdateAsset overwrites the mutable fields of an existing asset. The
// reference may be an id or a name. A "colors" list in updates is converted to
// the palette value string before applying.
func (e *Library) UpdateAsset(ctx context.Context, shop, ref string, updates map[string]any) (*Outcome, error) {
	current, err := e.resolve(ctx, shop, ref, false)
	if err != nil {
		return nil, err
	}

	previous := current.Clone()

	// A "colors" list takes precedence over a literal "value". The derived
	// value stays local; the caller's updates map is never written to.
	value, hasValue := updates["value"]
	if colors := mapSliceField(updates, "colors"); len(colors) > 0 {
		var parsed []asset.Color
		if err := reencode(colors, &parsed); err != nil {
			return nil, err
		}
		value, hasValue = asset.PaletteValue(parsed), true
	}

	if v, ok := updates["name"]; ok {
		current.Name = coerceString(v)
	}
	if hasValue {
		current.Value = coerceString(value)
	}
	if v, ok := updates["label"]; ok {
		current.Label = coerceString(v)
	}
	if v, ok := updates["type"]; ok {
		current.Type = coerceString(v)
	}
	if v, ok := updates["config"].(map[string]any); ok {
		current.Config = v
	}
	if v, ok := updates["isDefault"].(bool); ok {
		current.IsDefault = v
	}
	current.UpdatedAt = e.clock.Now()

	updated, err := e.assets.Update(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("updating asset %s: %w", current.ID, err)
	}

	e.logger.InfoContext(ctx, "asset updated",
		slog.String("operation", "Library.UpdateAsset"),
		slog.String("shop", shop),
		slog.String("asset_id", updated.ID),
	)

	e.cache.Invalidate(ctx, assetCacheKeys(shop, previous.Type)...)

	return &Outcome{
		Result:   map[string]any{"message": fmt.Sprintf("Updated %s %q", previous.Type, previous.Name), "asset": updated},
		Snapshot: map[string]any{"assetId": previous.ID, "asset": previous},
	}, nil
}

// DeleteAsset removes an asset. The reference resolves by id, then exact
// name, then fuzzy match so conversational references like "the arctic
// palette" still land. The full record is snapshotted for recreation.
func (e *Library) DeleteAsset(ctx context.Context, shop, ref string) (*Outcome, error) {
	a, err := e.resolve(ctx, shop, ref, true)
	if err != nil {
		return nil, err
	}

	if err := e.assets.Delete(ctx, shop, a.ID); err != nil {
		return nil, fmt.Errorf("deleting asset %s: %w", a.ID, err)
	}

	e.logger.InfoContext(ctx, "asset deleted",
		slog.String("operation", "Library.DeleteAsset"),
		slog.String("shop", shop),
		slog.String("asset_id", a.ID),
		slog.String("asset_name", a.Name),
	)

	e.cache.Invalidate(ctx, assetCacheKeys(shop, a.Type)...)

	return &Outcome{
		Result:   map[string]any{"message": fmt.Sprintf("Deleted %s %q", a.Type, a.Name)},
		Snapshot: map[string]any{"asset": a.Clone()},
	}, nil
}

// CreateColorPalette formats a structured color list into a palette asset.
func (e *Library) CreateColorPalette(ctx context.Context, shop string, data map[string]any) (*Outcome, error) {
	var colors []asset.Color
	if err := reencode(mapSliceField(data, "colors"), &colors); err != nil {
		return nil, err
	}
	if len(colors) == 0 {
		return nil, &domain.ValidationError{Fields: map[string]string{"colors": "required"}}
	}

	category := stringOrDefault(data, "category", "Custom")
	return e.CreateAsset(ctx, shop, map[string]any{
		"type":  asset.TypeColor,
		"name":  stringField(data, "name"),
		"value": asset.PaletteValue(colors),
		"label": stringOrDefault(data, "label", category),
		"config": map[string]any{
			"group":         category,
			"category":      category,
			"enablePricing": boolField(data, "enablePricing"),
			"colorCount":    len(colors),
			"colors":        colors,
		},
	})
}

// CreateFontGroup formats a font list into a font asset. Hosted (google)
// groups store a comma-separated name list; uploaded groups store "URL|Name"
// pairs, one per line.
func (e *Library) CreateFontGroup(ctx context.Context, shop string, data map[string]any) (*Outcome, error) {
	hosted := stringOrDefault(data, "fontType", "google") == "google"

	var fonts []asset.Font
	if hosted {
		for _, name := range stringSliceField(data, "fonts") {
			fonts = append(fonts, asset.Font{Name: name})
		}
	} else {
		if err := reencode(mapSliceField(data, "fonts"), &fonts); err != nil {
			return nil, err
		}
	}
	if len(fonts) == 0 {
		return nil, &domain.ValidationError{Fields: map[string]string{"fonts": "required"}}
	}

	value := asset.FontGroupValue(fonts, hosted)
	names := make([]string, len(fonts))
	for i, f := range fonts {
		names[i] = f.Name
	}

	category := stringOrDefault(data, "category", "Custom")
	config := map[string]any{
		"group":     category,
		"category":  category,
		"fontType":  stringOrDefault(data, "fontType", "google"),
		"fontCount": len(fonts),
		"fonts":     names,
	}
	if hosted {
		config["googleConfig"] = "specific"
		config["specificFonts"] = value
	}

	return e.CreateAsset(ctx, shop, map[string]any{
		"type":   asset.TypeFont,
		"name":   stringField(data, "name"),
		"value":  value,
		"label":  stringOrDefault(data, "label", category),
		"config": config,
	})
}

// CreateGallery downloads each referenced image, re-hosts it in managed
// storage, and writes a gallery asset pointing at the stored copies. A single
// failed download drops that image and keeps going; only when every download
// fails is the action an error.
func (e *Library) CreateGallery(ctx context.Context, shop string, data map[string]any) (*Outcome, error) {
	var images []asset.Image
	if err := reencode(mapSliceField(data, "images"), &images); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, &domain.ValidationError{Fields: map[string]string{"images": "required"}}
	}

	results := fanout.Run(ctx, e.galleryWorkers, images, func(ctx context.Context, img asset.Image) (asset.Image, error) {
		data, contentType, err := e.fetcher.Fetch(ctx, img.URL)
		if err != nil {
			return asset.Image{}, fmt.Errorf("fetching %s: %w", img.URL, err)
		}
		hosted, err := e.images.Put(ctx, shop, img.Name, data, contentType)
		if err != nil {
			return asset.Image{}, fmt.Errorf("storing %s: %w", img.Name, err)
		}
		return asset.Image{Name: img.Name, URL: hosted}, nil
	})

	uploaded := make([]asset.Image, 0, len(images))
	for i, res := range results {
		if res.Err != nil {
			e.logger.WarnContext(ctx, "gallery image skipped",
				slog.String("operation", "Library.CreateGallery"),
				slog.String("shop", shop),
				slog.String("image_name", images[i].Name),
				slog.String("error", res.Err.Error()),
			)
			continue
		}
		uploaded = append(uploaded, res.Value)
	}

	if len(uploaded) == 0 {
		return nil, fmt.Errorf("%w: failed to download any gallery images", domain.ErrUnavailable)
	}

	category := stringOrDefault(data, "category", "General")
	return e.CreateAsset(ctx, shop, map[string]any{
		"type":  asset.TypeGallery,
		"name":  stringField(data, "name"),
		"value": asset.GalleryValue(uploaded),
		"label": stringField(data, "label"),
		"config": map[string]any{
			"group":      category,
			"category":   category,
			"imageCount": len(uploaded),
			"source":     "downloaded",
		},
	})
}

func (e *Library) rollbackCreate(ctx context.Context, shop string, payload, snapshot map[string]any) (*Outcome, error) {
	createdID := stringField(snapshot, "createdAssetId")
	if createdID == "" {
		return nil, fmt.Errorf("%w: snapshot missing created asset id", domain.ErrRollbackUnavailable)
	}

	a, err := e.assets.Get(ctx, shop, createdID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &Outcome{Result: map[string]any{"message": "Asset already removed"}}, nil
		}
		return nil, fmt.Errorf("loading asset %s: %w", createdID, err)
	}

	if err := e.assets.Delete(ctx, shop, a.ID); err != nil {
		return nil, fmt.Errorf("deleting asset %s: %w", a.ID, err)
	}
	e.cache.Invalidate(ctx, assetCacheKeys(shop, a.Type)...)

	return &Outcome{Result: map[string]any{"message": fmt.Sprintf("Deleted %s %q", a.Type, a.Name)}}, nil
}

func (e *Library) rollbackUpdate(ctx context.Context, shop string, payload, snapshot map[string]any) (*Outcome, error) {
	var previous asset.Asset
	if err := reencode(snapshot["asset"], &previous); err != nil {
		return nil, err
	}
	previous.Shop = shop
	previous.UpdatedAt = e.clock.Now()

	restored, err := e.assets.Update(ctx, &previous)
	if err != nil {
		return nil, fmt.Errorf("restoring asset %s: %w", previous.ID, err)
	}
	e.cache.Invalidate(ctx, assetCacheKeys(shop, restored.Type)...)

	return &Outcome{Result: map[string]any{"asset": restored}}, nil
}

func (e *Library) rollbackDelete(ctx context.Context, shop string, payload, snapshot map[string]any) (*Outcome, error) {
	var previous asset.Asset
	if err := reencode(snapshot["asset"], &previous); err != nil {
		return nil, err
	}
	previous.Shop = shop

	recreated, err := e.assets.Create(ctx, &previous)
	if err != nil {
		return nil, fmt.Errorf("recreating asset %s: %w", previous.ID, err)
	}
	e.cache.Invalidate(ctx, assetCacheKeys(shop, recreated.Type)...)

	return &Outcome{Result: map[string]any{"asset": recreated}}, nil
}

// resolve finds an asset by id, then exact name, then (when fuzzy is set)
// best fuzzy match over the shop's library. Failed fuzzy resolution names the
// closest candidates in the error to aid correction.
func (e *Library) resolve(ctx context.Context, shop, ref string, fuzzy bool) (*asset.Asset, error) {
	if _, err := uuid.Parse(ref); err == nil {
		a, err := e.assets.Get(ctx, shop, ref)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("loading asset %s: %w", ref, err)
		}
	}

	a, err := e.assets.GetByName(ctx, shop, ref)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("looking up asset %q: %w", ref, err)
	}

	if !fuzzy {
		return nil, fmt.Errorf("%w: asset %q", domain.ErrNotFound, ref)
	}

	all, err := e.assets.List(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	if best := asset.BestMatch(all, ref); best != nil {
		e.logger.InfoContext(ctx, "asset resolved by fuzzy match",
			slog.String("operation", "Library.resolve"),
			slog.String("shop", shop),
			slog.String("term", ref),
			slog.String("matched", best.Name),
		)
		return best, nil
	}

	near := asset.RankMatches(all, ref)
	if len(near) == 0 {
		near = all
	}
	names := make([]string, 0, len(near))
	for _, candidate := range near {
		names = append(names, candidate.Name)
	}
	return nil, fmt.Errorf("%w: asset %q, available: %s", domain.ErrNotFound, ref, strings.Join(names, ", "))
}
