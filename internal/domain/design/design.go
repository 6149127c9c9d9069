// Package design models the saved design target: an ordered sequence of
// sides (pages), each with its own element list and base-image properties.
package design

import (
	"fmt"
	"time"

	"github.com/printcraft/customizer-engine/internal/domain"
)

// BaseImageProperties positions and scales a side's base image on the canvas.
type BaseImageProperties struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Scale  float64 `json:"scale"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultBaseImageProperties returns the canvas defaults used when a side is
// synthesized without explicit geometry.
func DefaultBaseImageProperties() BaseImageProperties {
	return BaseImageProperties{X: 0, Y: 0, Scale: 1, Width: 1000, Height: 1000}
}

// Side is one page of a design.
type Side struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name"`
	Elements             []map[string]any    `json:"elements"`
	BaseImage            string              `json:"baseImage"`
	BaseImageScale       float64             `json:"baseImageScale"`
	BaseImageAsMask      bool                `json:"baseImageAsMask"`
	BaseImageMaskInvert  bool                `json:"baseImageMaskInvert"`
	BaseImageProperties  BaseImageProperties `json:"baseImageProperties"`
	BaseImageColorEnable bool                `json:"baseImageColorEnabled"`
}

// Design is the saved design for one (shop, target) pair. Sides always holds
// at least one entry once the design exists.
type Design struct {
	ID        string
	Shop      string
	TargetID  string
	Name      string
	Sides     []Side
	UpdatedAt time.Time
}

// AppendSide adds a side to the end of the sequence.
func (d *Design) AppendSide(s Side) {
	d.Sides = append(d.Sides, s)
}

// RemoveSide filters out the side with the given id. It fails with
// domain.ErrInvariant when the design holds a single side, and with
// domain.ErrNotFound when no side matches; the sequence is left untouched in
// both cases.
func (d *Design) RemoveSide(sideID string) error {
	if len(d.Sides) <= 1 {
		return fmt.Errorf("%w: cannot remove the last side", domain.ErrInvariant)
	}

	remaining := make([]Side, 0, len(d.Sides)-1)
	found := false
	for _, s := range d.Sides {
		if s.ID == sideID {
			found = true
			continue
		}
		remaining = append(remaining, s)
	}
	if !found {
		return fmt.Errorf("%w: side %q", domain.ErrNotFound, sideID)
	}

	d.Sides = remaining
	return nil
}

// CloneSides deep-copies the side sequence for use as a rollback snapshot.
func (d *Design) CloneSides() []Side {
	clone := make([]Side, len(d.Sides))
	for i, s := range d.Sides {
		clone[i] = s
		clone[i].Elements = cloneElements(s.Elements)
	}
	return clone
}

func cloneElements(elements []map[string]any) []map[string]any {
	if elements == nil {
		return nil
	}
	out := make([]map[string]any, len(elements))
	for i, el := range elements {
		copied := make(map[string]any, len(el))
		for k, v := range el {
			copied[k] = v
		}
		out[i] = copied
	}
	return out
}
