package models

import (
	"time"

	"github.com/google/uuid"
)

// PageSize is the certificate page format.
type PageSize string

const (
	SizeA4      PageSize = "A4"
	SizeLetter  PageSize = "Letter"
	SizeLegal   PageSize = "Legal"
	SizeTabloid PageSize = "Tabloid"
)

// Valid reports whether the page size is a known format.
func (s PageSize) Valid() bool {
	switch s {
	case SizeA4, SizeLetter, SizeLegal, SizeTabloid:
		return true
	}
	return false
}

// Orientation is the certificate page orientation.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// Valid reports whether the orientation is known.
func (o Orientation) Valid() bool {
	return o == OrientationLandscape || o == OrientationPortrait
}

// TemplateElement is one placed text/image/shape item on a template.
// X/Y/Width/Height are percentages of the page (0-100). Text content may
// contain merge tags (e.g. [[AttendeeName]]) resolved against a certificate's
// data snapshot at render time.
type TemplateElement struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"` // "text", "image", "shape"
	Content    string  `json:"content"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	FontSize   float64 `json:"font_size,omitempty"`
	FontFamily string  `json:"font_family,omitempty"`
	FontWeight string  `json:"font_weight,omitempty"` // "normal" or "bold"
	Color      string  `json:"color,omitempty"`       // hex, e.g. "#2563eb"
	TextAlign  string  `json:"text_align,omitempty"`  // "left", "center", "right"
}

// Template is a reusable certificate layout definition.
type Template struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Size            PageSize          `json:"size"`
	Orientation     Orientation       `json:"orientation"`
	BackgroundColor string            `json:"background_color"`
	BackgroundImage string            `json:"background_image,omitempty"` // opaque URI (e.g. S3 object URL)
	Elements        []TemplateElement `json:"elements"`
	CustomFields    map[string]string `json:"custom_fields,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
