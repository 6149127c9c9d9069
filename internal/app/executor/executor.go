// Package executor implements the domain-specific mutation units behind the
// action dispatcher. Each executor family (config, settings, product element,
// design page, asset library, bulk fan-out) registers one Binding per action
// type it handles; the dispatcher routes by type string and passes payloads
// and snapshots through opaquely.
package executor

import (
	"context"
	"fmt"

	"github.com/printcraft/customizer-engine/internal/domain"
)

// Action type tags accepted by the engine. The payload shape each type
// expects is documented on the executor that binds it.
const (
	TypeUpdateConfig           = "UPDATE_CONFIG"
	TypeBulkUpdateConfig       = "BULK_UPDATE_CONFIG"
	TypeAddElement             = "ADD_ELEMENT"
	TypeRemoveUnused           = "REMOVE_UNUSED"
	TypeAddSide                = "ADD_SIDE"
	TypeRemoveSide             = "REMOVE_SIDE"
	TypeCreateAsset            = "CREATE_ASSET"
	TypeUpdateAsset            = "UPDATE_ASSET"
	TypeDeleteAsset            = "DELETE_ASSET"
	TypeCreateColorPalette     = "CREATE_COLOR_PALETTE"
	TypeCreateFontGroup        = "CREATE_FONT_GROUP"
	TypeCreateGallery          = "CREATE_GALLERY"
	TypeUpdateSettings         = "UPDATE_SETTINGS"
	TypeUpdateDesignerSettings = "UPDATE_DESIGNER_SETTINGS"
	TypeUpdateCanvasSettings   = "UPDATE_CANVAS_SETTINGS"
)

// Outcome is what an executor returns on success: the caller-facing result
// and the snapshot the dispatcher persists for rollback. Snapshot shapes are
// executor-defined and only ever handed back to the same executor.
type Outcome struct {
	Result   any
	Snapshot map[string]any
}

// Binding pairs the execute and rollback paths for one action type.
// Rollback receives both the original payload (for target addressing) and the
// snapshot captured at execution time.
type Binding struct {
	Execute  func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error)
	Rollback func(ctx context.Context, shop string, payload, snapshot map[string]any) (*Outcome, error)
}

// Registry maps action type strings to bindings. New action types are added
// by registering, not by editing a central conditional.
type Registry struct {
	bindings map[string]Binding
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: map[string]Binding{}}
}

// Register adds all of the given bindings, overwriting any existing entry for
// the same action type.
func (r *Registry) Register(bindings map[string]Binding) {
	for actionType, b := range bindings {
		r.bindings[actionType] = b
	}
}

// Lookup returns the binding for the action type.
// Returns domain.ErrUnsupportedAction naming the type when none is registered.
func (r *Registry) Lookup(actionType string) (Binding, error) {
	b, ok := r.bindings[actionType]
	if !ok {
		return Binding{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedAction, actionType)
	}
	return b, nil
}

// Types returns the registered action type tags, unordered.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.bindings))
	for t := range r.bindings {
		types = append(types, t)
	}
	return types
}
