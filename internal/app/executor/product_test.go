package executor_test

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printcraft/customizer-engine/internal/adapters/store/memory"
	"github.com/printcraft/customizer-engine/internal/app/executor"
	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/domain/asset"
	"github.com/printcraft/customizer-engine/internal/domain/merchant"
)

func newProductExec(t *testing.T) (*executor.Product, *memory.ConfigStore, *memory.AssetStore) {
	t.Helper()
	configs := memory.NewConfigStore()
	assets := memory.NewAssetStore()
	exec := executor.NewProduct(configs, assets, &spyCache{}, testClock, slog.New(slog.DiscardHandler))
	return exec, configs, assets
}

func TestAddElement_RequiresElementType(t *testing.T) {
	t.Parallel()

	exec, _, _ := newProductExec(t)

	_, err := exec.AddElement(t.Context(), testShop, "prod-1", map[string]any{"label": "No type"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddElement_AppendsLayerAndCreatesOptionAsset(t *testing.T) {
	t.Parallel()

	exec, configs, assets := newProductExec(t)
	ctx := t.Context()

	outcome, err := exec.AddElement(ctx, testShop, "prod-1", map[string]any{
		"type":  "text",
		"label": "Name line",
		"font":  "Georgia",
	})
	require.NoError(t, err)

	cfg, err := configs.Get(ctx, testShop, "prod-1")
	require.NoError(t, err)
	require.Len(t, cfg.PrintArea.Layers, 1)

	layer := cfg.PrintArea.Layers[0]
	assert.True(t, strings.HasPrefix(layer.ID, "layer_"))
	assert.Equal(t, "text", layer.Type)
	assert.Equal(t, "Name line", layer.Label)
	assert.True(t, layer.Visible)
	assert.Equal(t, "Georgia", layer.Props["fontFamily"])
	assert.EqualValues(t, 50, layer.Props["x"])
	assert.EqualValues(t, 200, layer.Props["width"])

	assert.Contains(t, cfg.EnabledTools, "text")

	option, err := assets.Get(ctx, testShop, cfg.OptionAssetID)
	require.NoError(t, err)
	assert.Equal(t, asset.TypeOption, option.Type)
	assert.Equal(t, "text", option.Config["elementType"])
	assert.Equal(t, "Name line", option.Name)

	// Snapshot captures state needed to undo, plus the created asset.
	assert.Equal(t, option.ID, outcome.Snapshot["createdAssetId"])
	assert.Contains(t, outcome.Snapshot, "printArea")
	assert.Contains(t, outcome.Snapshot, "enabledTools")
	assert.Contains(t, outcome.Snapshot, "optionAssetId")
}

func TestAddElement_EnablesToolOnce(t *testing.T) {
	t.Parallel()

	exec, configs, _ := newProductExec(t)
	ctx := t.Context()

	_, err := exec.AddElement(ctx, testShop, "prod-1", map[string]any{"type": "image"})
	require.NoError(t, err)
	_, err = exec.AddElement(ctx, testShop, "prod-1", map[string]any{"type": "image"})
	require.NoError(t, err)

	cfg, err := configs.Get(ctx, testShop, "prod-1")
	require.NoError(t, err)
	require.Len(t, cfg.PrintArea.Layers, 2)

	count := 0
	for _, tool := range cfg.EnabledTools {
		if tool == "image" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAddElement_RollbackRestoresConfigAndDeletesAsset(t *testing.T) {
	t.Parallel()

	exec, configs, assets := newProductExec(t)
	ctx := t.Context()
	binding := exec.Bindings()[executor.TypeAddElement]

	payload := map[string]any{
		"productId": "prod-1",
		"element":   map[string]any{"type": "monogram", "style": "script"},
	}
	outcome, err := binding.Execute(ctx, testShop, payload)
	require.NoError(t, err)

	createdID := outcome.Snapshot["createdAssetId"].(string)
	_, err = assets.Get(ctx, testShop, createdID)
	require.NoError(t, err)

	_, err = binding.Rollback(ctx, testShop, payload, outcome.Snapshot)
	require.NoError(t, err)

	cfg, err := configs.Get(ctx, testShop, "prod-1")
	require.NoError(t, err)
	assert.Empty(t, cfg.PrintArea.Layers)
	assert.Empty(t, cfg.EnabledTools)
	assert.Empty(t, cfg.OptionAssetID)

	_, err = assets.Get(ctx, testShop, createdID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddElement_RollbackToleratesMissingAsset(t *testing.T) {
	t.Parallel()

	exec, _, assets := newProductExec(t)
	ctx := t.Context()
	binding := exec.Bindings()[executor.TypeAddElement]

	payload := map[string]any{
		"productId": "prod-1",
		"element":   map[string]any{"type": "text"},
	}
	outcome, err := binding.Execute(ctx, testShop, payload)
	require.NoError(t, err)

	createdID := outcome.Snapshot["createdAssetId"].(string)
	require.NoError(t, assets.Delete(ctx, testShop, createdID))

	_, err = binding.Rollback(ctx, testShop, payload, outcome.Snapshot)
	require.NoError(t, err)
}

func TestRemoveUnused_DropsNamedLayers(t *testing.T) {
	t.Parallel()

	exec, configs, _ := newProductExec(t)
	ctx := t.Context()

	cfg := merchant.NewConfig(testShop, "prod-1")
	cfg.PrintArea.Layers = []merchant.Layer{
		{ID: "layer-keep", Type: "text"},
		{ID: "layer-drop", Type: "image"},
	}
	require.NoError(t, configs.Upsert(ctx, cfg))

	_, err := exec.RemoveUnusedElements(ctx, testShop, "prod-1", []string{"layer-drop", "layer-unknown"})
	require.NoError(t, err)

	got, err := configs.Get(ctx, testShop, "prod-1")
	require.NoError(t, err)
	require.Len(t, got.PrintArea.Layers, 1)
	assert.Equal(t, "layer-keep", got.PrintArea.Layers[0].ID)
}

func TestRemoveUnused_BindingRequiresLayerIDs(t *testing.T) {
	t.Parallel()

	exec, _, _ := newProductExec(t)
	binding := exec.Bindings()[executor.TypeRemoveUnused]

	_, err := binding.Execute(t.Context(), testShop, map[string]any{"productId": "prod-1"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestRemoveUnused_RollbackRestoresLayers(t *testing.T) {
	t.Parallel()

	exec, configs, _ := newProductExec(t)
	ctx := t.Context()
	binding := exec.Bindings()[executor.TypeRemoveUnused]

	cfg := merchant.NewConfig(testShop, "prod-1")
	cfg.PrintArea.Layers = []merchant.Layer{
		{ID: "layer-1", Type: "text", Label: "First"},
		{ID: "layer-2", Type: "image", Label: "Second"},
	}
	require.NoError(t, configs.Upsert(ctx, cfg))

	payload := map[string]any{"productId": "prod-1", "layerIds": []any{"layer-2"}}
	outcome, err := binding.Execute(ctx, testShop, payload)
	require.NoError(t, err)

	_, err = binding.Rollback(ctx, testShop, payload, outcome.Snapshot)
	require.NoError(t, err)

	got, err := configs.Get(ctx, testShop, "prod-1")
	require.NoError(t, err)
	require.Len(t, got.PrintArea.Layers, 2)
	assert.Equal(t, "layer-1", got.PrintArea.Layers[0].ID)
	assert.Equal(t, "layer-2", got.PrintArea.Layers[1].ID)
	assert.Equal(t, "Second", got.PrintArea.Layers[1].Label)
}
