// Package table lays out column tables on a layout.Flow.
//
// It supports fixed and auto-width columns, header rows repeated after
// every page break, alternating row colors, colspan, wrapping columns and
// cells stacked beneath their left neighbour. Rows never split across
// pages.
package table

import "github.com/lvillar/docrender/layout"

// BorderStyle defines the appearance of cell borders.
type BorderStyle struct {
	Width float64
	Color layout.Color
}

// CellStyle defines the visual appearance of a cell. Nil fields inherit.
type CellStyle struct {
	FillColor *layout.Color
	TextColor *layout.Color
	Font      *layout.Font
	Align     layout.Align
}

// AlternateStyle defines alternating row colors.
type AlternateStyle struct {
	Even CellStyle
	Odd  CellStyle
}

// TableStyle defines the overall appearance of a table.
type TableStyle struct {
	Border        *BorderStyle // nil draws no borders
	AlternateRows *AlternateStyle
	HeaderStyle   *CellStyle
	CellFont      *layout.Font
}

// DefaultFont is used when neither the table nor any cell sets a font.
var DefaultFont = layout.Font{Family: "Helvetica", Size: 10}

// mergeStyle copies non-nil fields from src to dst.
func mergeStyle(dst, src *CellStyle) {
	if src.FillColor != nil {
		dst.FillColor = src.FillColor
	}
	if src.TextColor != nil {
		dst.TextColor = src.TextColor
	}
	if src.Font != nil {
		dst.Font = src.Font
	}
	if src.Align != "" {
		dst.Align = src.Align
	}
}
