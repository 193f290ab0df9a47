package table

import (
	"fmt"

	"github.com/lvillar/docrender/layout"
)

// Cell represents a single cell in a table row.
type Cell struct {
	text    string
	colspan int
	style   *CellStyle
	wrap    *bool
	stack   bool
}

// SetColspan sets the number of columns this cell spans.
func (c *Cell) SetColspan(n int) *Cell {
	if n > 0 {
		c.colspan = n
	}
	return c
}

// SetStyle sets the style for this cell, overriding table/row defaults.
func (c *Cell) SetStyle(s CellStyle) *Cell {
	c.style = &s
	return c
}

// SetAlign sets the horizontal alignment for this cell.
func (c *Cell) SetAlign(align layout.Align) *Cell {
	if c.style == nil {
		c.style = &CellStyle{}
	}
	c.style.Align = align
	return c
}

// SetFillColor sets the background color for this cell.
func (c *Cell) SetFillColor(r, g, b int) *Cell {
	if c.style == nil {
		c.style = &CellStyle{}
	}
	c.style.FillColor = &layout.Color{R: r, G: g, B: b}
	return c
}

// SetWrap overrides the wrapping mode of the cell's column.
func (c *Cell) SetWrap(wrap bool) *Cell {
	c.wrap = &wrap
	return c
}

// SetStack draws the cell beneath the text block of the previous cell of
// the row instead of at the row top.
func (c *Cell) SetStack(stack bool) *Cell {
	c.stack = stack
	return c
}

// Text returns the cell text.
func (c *Cell) Text() string { return c.text }

// Row represents a single row in a table.
type Row struct {
	cells    []*Cell
	style    *CellStyle
	isHeader bool
	minH     float64 // minimum row height
}

// AddCell adds a text cell to the row and returns the cell for chaining.
func (r *Row) AddCell(text string) *Cell {
	c := &Cell{text: text, colspan: 1}
	r.cells = append(r.cells, c)
	return c
}

// AddCellf adds a formatted text cell to the row.
func (r *Row) AddCellf(format string, args ...any) *Cell {
	return r.AddCell(fmt.Sprintf(format, args...))
}

// SetStyle sets the style for all cells in this row.
func (r *Row) SetStyle(s CellStyle) *Row {
	r.style = &s
	return r
}

// SetMinHeight sets the minimum height for this row.
func (r *Row) SetMinHeight(h float64) *Row {
	r.minH = h
	return r
}

// Cells returns the cells of the row.
func (r *Row) Cells() []*Cell { return r.cells }
