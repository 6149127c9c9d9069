package executor

import (
	"context"
	"log/slog"

	"github.com/printcraft/customizer-engine/internal/domain/merchant"
)

// Settings translates friendly settings payloads into configuration field
// writes. It owns no storage of its own: after mapping, it delegates to the
// config executor with the wider settings allow-list, so snapshots and cache
// invalidation behave identically to direct config updates.
type Settings struct {
	config *Config
	logger *slog.Logger
}

// NewSettings creates the settings executor on top of the config executor.
func NewSettings(config *Config, logger *slog.Logger) *Settings {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Settings{config: config, logger: logger}
}

// designerFieldMap translates designer UI payload keys to config fields.
// Keys absent from the payload are left untouched on the target.
var designerFieldMap = map[string]string{
	"layout":          "designerLayout",
	"buttonText":      "buttonText",
	"headerTitle":     "headerTitle",
	"showGrid":        "showGrid",
	"showRulers":      "showRulers",
	"showSafeArea":    "showSafeArea",
	"enabledTools":    "enabledTools",
	"enabledDownload": "enabledDownload",
	"enabledReset":    "enabledReset",
	"enabledUndoRedo": "enabledUndoRedo",
}

// canvasFieldMap translates canvas payload keys to config fields.
var canvasFieldMap = map[string]string{
	"paperSize":        "paperSize",
	"customDimensions": "customPaperDimensions",
	"unit":             "unit",
	"safeAreaPadding":  "safeAreaPadding",
	"safeAreaRadius":   "safeAreaRadius",
	"safeAreaWidth":    "safeAreaWidth",
	"safeAreaHeight":   "safeAreaHeight",
	"safeAreaOffset":   "safeAreaOffset",
}

// Bindings returns the action types served by this executor.
//
// UPDATE_SETTINGS payload: {"settings": map} and always addresses the
// shop-wide target. UPDATE_DESIGNER_SETTINGS and UPDATE_CANVAS_SETTINGS
// payload: {"productId": string?, "settings": map}, translated through their
// field maps before applying. Field overwrite is self-inverting, so all three
// roll back by reapplying the snapshot.
func (e *Settings) Bindings() map[string]Binding {
	rollback := func(ctx context.Context, shop string, payload, snapshot map[string]any) (*Outcome, error) {
		return e.config.ApplySettings(ctx, shop, targetID(payload), snapshot)
	}
	globalRollback := func(ctx context.Context, shop string, payload, snapshot map[string]any) (*Outcome, error) {
		return e.config.ApplySettings(ctx, shop, merchant.GlobalTargetID, snapshot)
	}

	return map[string]Binding{
		TypeUpdateSettings: {
			Execute: func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error) {
				settings, err := requireMap(payload, "settings")
				if err != nil {
					return nil, err
				}
				return e.config.ApplySettings(ctx, shop, merchant.GlobalTargetID, settings)
			},
			Rollback: globalRollback,
		},
		TypeUpdateDesignerSettings: {
			Execute: func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error) {
				return e.applyMapped(ctx, shop, payload, designerFieldMap)
			},
			Rollback: rollback,
		},
		TypeUpdateCanvasSettings: {
			Execute: func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error) {
				return e.applyMapped(ctx, shop, payload, canvasFieldMap)
			},
			Rollback: rollback,
		},
	}
}

func (e *Settings) applyMapped(ctx context.Context, shop string, payload map[string]any, fieldMap map[string]string) (*Outcome, error) {
	settings, err := requireMap(payload, "settings")
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any, len(settings))
	for key, value := range settings {
		if field, ok := fieldMap[key]; ok {
			changes[field] = value
		}
	}

	target := targetID(payload)
	e.logger.DebugContext(ctx, "settings mapped",
		slog.String("operation", "Settings.applyMapped"),
		slog.String("shop", shop),
		slog.String("target_id", target),
		slog.Int("mapped", len(changes)),
		slog.Int("received", len(settings)),
	)

	return e.config.ApplySettings(ctx, shop, target, changes)
}
