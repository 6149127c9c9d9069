// Package merchant models the per-product customizer configuration target:
// a flat field map plus the print-area layer list and the enabled-tool set.
package merchant

import "time"

// GlobalTargetID addresses the shop-wide default configuration row. Settings
// actions that omit a product target fall back to it.
const GlobalTargetID = "GLOBAL"

// ConfigFields is the static allow-list of field names the engine may write
// on a general configuration target. Changes outside this set are silently
// dropped before the mutation, never written.
var ConfigFields = map[string]bool{
	"paperSize":             true,
	"unit":                  true,
	"customPaperDimensions": true,
	"buttonText":            true,
	"headerTitle":           true,
	"designerLayout":        true,
	"showRulers":            true,
	"showSafeArea":          true,
	"safeAreaPadding":       true,
	"printArea":             true,
	"views":                 true,
}

// SettingsFields is the allow-list for designer/canvas settings writes. It is
// wider than ConfigFields because settings actions address UI toggles and
// safe-area geometry that plain config updates must not touch.
var SettingsFields = map[string]bool{
	"paperSize":             true,
	"unit":                  true,
	"customPaperDimensions": true,
	"buttonText":            true,
	"headerTitle":           true,
	"designerLayout":        true,
	"showGrid":              true,
	"showRulers":            true,
	"showSafeArea":          true,
	"safeAreaPadding":       true,
	"safeAreaRadius":        true,
	"safeAreaWidth":         true,
	"safeAreaHeight":        true,
	"safeAreaOffset":        true,
	"enabledTools":          true,
	"enabledDownload":       true,
	"enabledReset":          true,
	"enabledUndoRedo":       true,
}

// Layer is one element inside a print area. Properties beyond the identity
// fields are type-specific and stored in Props (geometry, text content, image
// URL, and so on).
type Layer struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Label   string         `json:"label"`
	Visible bool           `json:"visible"`
	Locked  bool           `json:"locked"`
	Opacity float64        `json:"opacity"`
	Props   map[string]any `json:"props,omitempty"`
}

// PrintArea holds the ordered layer list for a configuration target.
type PrintArea struct {
	Layers []Layer `json:"layers"`
}

// Config is the customizer configuration for one (shop, target) pair.
// Fields carries the whitelisted flat values; PrintArea and EnabledTools are
// structural and always present (possibly empty).
type Config struct {
	Shop          string
	TargetID      string
	Fields        map[string]any
	PrintArea     PrintArea
	EnabledTools  []string
	OptionAssetID string
	UpdatedAt     time.Time
}

// NewConfig returns a configuration skeleton with the required structural
// defaults for a target that has never been written before.
func NewConfig(shop, targetID string) *Config {
	return &Config{
		Shop:         shop,
		TargetID:     targetID,
		Fields:       map[string]any{},
		PrintArea:    PrintArea{Layers: []Layer{}},
		EnabledTools: []string{},
	}
}

// FilterFields returns the subset of changes whose keys appear in allowed.
// Unknown keys are dropped, not errored; the caller decides whether an empty
// result is a validation failure.
func FilterFields(changes map[string]any, allowed map[string]bool) map[string]any {
	clean := make(map[string]any, len(changes))
	for key, value := range changes {
		if allowed[key] {
			clean[key] = value
		}
	}
	return clean
}

// SnapshotFields captures the current values of the given keys. Keys absent
// from the config map to nil, which on rollback means "unset".
func (c *Config) SnapshotFields(keys map[string]any) map[string]any {
	prev := make(map[string]any, len(keys))
	for key := range keys {
		if c == nil {
			prev[key] = nil
			continue
		}
		prev[key] = c.Fields[key]
	}
	return prev
}

// MergeFields writes the given values into the config's field map, removing
// keys whose value is nil so snapshot round-trips restore "absent" exactly.
func (c *Config) MergeFields(values map[string]any) {
	if c.Fields == nil {
		c.Fields = map[string]any{}
	}
	for key, value := range values {
		if value == nil {
			delete(c.Fields, key)
			continue
		}
		c.Fields[key] = value
	}
}

// HasTool reports whether the given element type is already enabled.
func (c *Config) HasTool(tool string) bool {
	for _, t := range c.EnabledTools {
		if t == tool {
			return true
		}
	}
	return false
}
