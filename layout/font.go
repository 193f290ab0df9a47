package layout

import "unicode/utf8"

// Font selects a face and size. Size is in points.
type Font struct {
	Family string  `json:"family"`
	Style  string  `json:"style,omitempty"` // "", "B", "I", "BI"
	Size   float64 `json:"size"`
	// Leading is the distance between consecutive baselines in millimeters.
	// Zero derives it from Size.
	Leading float64 `json:"leading,omitempty"`
}

// LineHeight returns the fixed per-line height for the font in millimeters.
func (f Font) LineHeight() float64 {
	if f.Leading > 0 {
		return f.Leading
	}
	return f.Size * PtToMm * 1.5
}

// WithStyle returns a copy of f using the given style.
func (f Font) WithStyle(style string) Font {
	f.Style = style
	return f
}

// WithLeading returns a copy of f using the given leading.
func (f Font) WithLeading(leading float64) Font {
	f.Leading = leading
	return f
}

// Color is an RGB color with 0-255 components. The zero value is black.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Gray returns the gray color with all components set to v.
func Gray(v int) Color { return Color{R: v, G: v, B: v} }

// Stroke describes an outline.
type Stroke struct {
	Color Color   `json:"color"`
	Width float64 `json:"width"`
}

// Metrics reports the rendered width of a string in millimeters.
//
// Implementations must be deterministic and additive over concatenation
// (no kerning), which keeps wrapping stable across repeated measurements.
type Metrics interface {
	StringWidth(f Font, s string) float64
}

// FixedAdvance is a Metrics where every rune has the same width in
// millimeters, regardless of font. It suits monospaced output and tests.
type FixedAdvance float64

// StringWidth implements Metrics.
func (a FixedAdvance) StringWidth(_ Font, s string) float64 {
	return float64(utf8.RuneCountInString(s)) * float64(a)
}
