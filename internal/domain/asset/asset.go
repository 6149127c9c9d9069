// Package asset models the shop asset library: fonts, color palettes,
// galleries, shapes, and the "option" assets that surface customization
// elements to merchants. Names are not unique per shop, so lookups fall back
// to fuzzy matching (see match.go).
package asset

import (
	"fmt"
	"strings"
	"time"
)

// Well-known asset types. Type is an open string set; these constants cover
// the types this engine creates itself.
const (
	TypeColor   = "color"
	TypeFont    = "font"
	TypeGallery = "gallery"
	TypeOption  = "option"
)

// Asset is a single library entry scoped to a shop.
type Asset struct {
	ID        string
	Shop      string
	Type      string
	Name      string
	Value     string
	Label     string
	Config    map[string]any
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy suitable for a rollback snapshot.
func (a *Asset) Clone() *Asset {
	clone := *a
	if a.Config != nil {
		clone.Config = make(map[string]any, len(a.Config))
		for k, v := range a.Config {
			clone.Config[k] = v
		}
	}
	return &clone
}

// Color is one named swatch in a palette.
type Color struct {
	Name string
	Hex  string
}

// PaletteValue formats a color list as the delimited "Name|#HEX, Name|#HEX"
// string stored in a palette asset's value field.
func PaletteValue(colors []Color) string {
	parts := make([]string, len(colors))
	for i, c := range colors {
		parts[i] = c.Name + "|" + c.Hex
	}
	return strings.Join(parts, ", ")
}

// Font is one entry in a font group. URL is empty for hosted (Google) fonts.
type Font struct {
	Name string
	URL  string
}

// FontGroupValue formats a font list as the stored value string: hosted fonts
// are a comma-separated name list, uploaded fonts are newline-separated
// "URL|Name" pairs.
func FontGroupValue(fonts []Font, hosted bool) string {
	if hosted {
		names := make([]string, len(fonts))
		for i, f := range fonts {
			names[i] = f.Name
		}
		return strings.Join(names, ", ")
	}

	pairs := make([]string, len(fonts))
	for i, f := range fonts {
		pairs[i] = f.URL + "|" + f.Name
	}
	return strings.Join(pairs, "\n")
}

// Image is one named gallery entry.
type Image struct {
	Name string
	URL  string
}

// GalleryValue formats an image list as the stored "Name|URL, Name|URL" string.
func GalleryValue(images []Image) string {
	parts := make([]string, len(images))
	for i, img := range images {
		parts[i] = fmt.Sprintf("%s|%s", img.Name, img.URL)
	}
	return strings.Join(parts, ", ")
}
