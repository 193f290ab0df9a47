package table

import (
	"errors"

	"github.com/lvillar/docrender/layout"
)

// ErrNoColumns is returned when a table has neither column definitions nor
// cells to infer them from.
var ErrNoColumns = errors.New("table: no columns")

// ColumnDef defines the properties of a table column.
type ColumnDef struct {
	Width    float64      // Fixed width. 0 means auto/fill.
	MinWidth float64      // Minimum width for auto columns.
	MaxWidth float64      // Maximum width for auto columns. 0 means unlimited.
	Align    layout.Align // Default alignment for this column.
	Wrap     bool         // Break cell text at the column width.
}

// Table is a high-level table builder laid out on a flow.
type Table struct {
	flow         *layout.Flow
	columns      []ColumnDef
	rows         []*Row
	headerRows   int
	style        TableStyle
	x, y         float64 // starting position (0,0 means current)
	tableWidth   float64 // total table width (0 means page width minus margins)
	minRowHeight float64
	rowGap       float64
	repeatHeader bool
}

// New creates a new Table laid out on the given flow.
func New(f *layout.Flow) *Table {
	return &Table{flow: f, repeatHeader: true}
}

// SetColumns sets column definitions for the table.
func (t *Table) SetColumns(cols ...ColumnDef) *Table {
	t.columns = cols
	return t
}

// SetColumnWidths is a convenience method to set column widths directly.
// A width of 0 means the column will auto-fill remaining space.
func (t *Table) SetColumnWidths(widths ...float64) *Table {
	t.columns = make([]ColumnDef, len(widths))
	for i, w := range widths {
		t.columns[i] = ColumnDef{Width: w}
	}
	return t
}

// SetStyle sets the table-wide style.
func (t *Table) SetStyle(s TableStyle) *Table {
	t.style = s
	return t
}

// SetPosition sets the starting position for the table.
// If not called, the table starts at the current flow cursor.
func (t *Table) SetPosition(x, y float64) *Table {
	t.x = x
	t.y = y
	return t
}

// SetWidth sets the total table width. If not called, uses page width minus margins.
func (t *Table) SetWidth(w float64) *Table {
	t.tableWidth = w
	return t
}

// SetMinRowHeight sets the minimum height of every row.
func (t *Table) SetMinRowHeight(h float64) *Table {
	t.minRowHeight = h
	return t
}

// SetRowGap sets the vertical space left after each body row.
func (t *Table) SetRowGap(g float64) *Table {
	t.rowGap = g
	return t
}

// SetRepeatHeader controls whether header rows are drawn again at the top
// of each page the table continues on. It defaults to true.
func (t *Table) SetRepeatHeader(repeat bool) *Table {
	t.repeatHeader = repeat
	return t
}

// AddRow adds a new data row to the table and returns it for chaining.
func (t *Table) AddRow() *Row {
	r := &Row{}
	t.rows = append(t.rows, r)
	return r
}

// AddHeaderRow adds a new header row and returns it for chaining.
func (t *Table) AddHeaderRow() *Row {
	r := &Row{isHeader: true}
	// Insert header row before data rows
	insertIdx := 0
	for i, existing := range t.rows {
		if !existing.isHeader {
			insertIdx = i
			break
		}
		insertIdx = i + 1
	}
	t.rows = append(t.rows, nil)
	copy(t.rows[insertIdx+1:], t.rows[insertIdx:])
	t.rows[insertIdx] = r
	t.headerRows++
	return r
}

// Render lays the table out on the flow, starting new pages as needed.
func (t *Table) Render() error {
	widths := t.calculateWidths()
	if len(widths) == 0 {
		if len(t.rows) == 0 {
			return nil
		}
		return ErrNoColumns
	}

	if t.y != 0 {
		t.flow.SetY(t.y)
	}
	headerRows, bodyRows := t.layoutRows(widths)
	headerH := t.blockHeight(headerRows)

	// Keep the header with the first body row.
	if err := t.flow.EnsureSpace(lead(headerH, bodyRows, t.rowHeight)); err != nil {
		return err
	}
	if err := t.drawRows(headerRows); err != nil {
		return err
	}

	for _, r := range bodyRows {
		rowH := t.rowHeight(r)
		if t.repeatHeader && headerH > 0 && headerH+rowH > t.flow.ContentHeight() {
			return &layout.LayoutOverflowError{Height: headerH + rowH, Available: t.flow.ContentHeight(), Page: t.flow.PageNo()}
		}

		page := t.flow.PageNo()
		if err := t.flow.EnsureSpace(rowH); err != nil {
			return err
		}
		if t.flow.PageNo() != page && t.repeatHeader {
			if err := t.drawRows(headerRows); err != nil {
				return err
			}
		}
		if _, err := t.flow.Row(r); err != nil {
			return err
		}
	}
	return nil
}

// LeadHeight returns the height of the header rows plus the first body
// row, the block Render keeps together at the start of the table.
func (t *Table) LeadHeight() float64 {
	widths := t.calculateWidths()
	if len(widths) == 0 {
		return 0
	}
	headerRows, bodyRows := t.layoutRows(widths)
	return lead(t.blockHeight(headerRows), bodyRows, t.rowHeight)
}

func lead(headerH float64, body []layout.Row, height func(layout.Row) float64) float64 {
	if len(body) == 0 {
		return headerH
	}
	return headerH + height(body[0])
}

func (t *Table) layoutRows(widths []float64) (header, body []layout.Row) {
	startX := t.x
	if startX == 0 {
		startX = t.flow.Size().Margins.Left
	}
	for _, r := range t.rows {
		if r.isHeader {
			header = append(header, t.buildRow(r, widths, startX, -1))
		} else {
			body = append(body, t.buildRow(r, widths, startX, len(body)))
		}
	}
	return header, body
}

func (t *Table) blockHeight(rows []layout.Row) float64 {
	h := 0.0
	for _, r := range rows {
		h += t.rowHeight(r) + r.Gap
	}
	return h
}

func (t *Table) drawRows(rows []layout.Row) error {
	for _, r := range rows {
		if _, err := t.flow.Row(r); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) rowHeight(r layout.Row) float64 {
	placed, _ := layout.LayoutRow(t.flow.Metrics(), r, t.flow.Cursor())
	return placed.Height
}

// calculateWidths computes final column widths based on definitions and available space.
func (t *Table) calculateWidths() []float64 {
	totalWidth := t.tableWidth
	if totalWidth == 0 {
		totalWidth = t.flow.Size().ContentWidth()
	}

	numCols := len(t.columns)
	if numCols == 0 {
		// Auto-detect from first row
		if len(t.rows) > 0 {
			numCols = len(t.rows[0].cells)
		}
		if numCols == 0 {
			return nil
		}
		t.columns = make([]ColumnDef, numCols)
	}

	widths := make([]float64, numCols)
	fixedTotal := 0.0
	autoCount := 0

	for i, col := range t.columns {
		if col.Width > 0 {
			widths[i] = col.Width
			fixedTotal += col.Width
		} else {
			autoCount++
		}
	}

	// Distribute remaining space to auto columns
	if autoCount > 0 {
		remaining := totalWidth - fixedTotal
		if remaining < 0 {
			remaining = 0
		}
		autoWidth := remaining / float64(autoCount)
		for i, col := range t.columns {
			if col.Width == 0 {
				w := autoWidth
				if col.MinWidth > 0 && w < col.MinWidth {
					w = col.MinWidth
				}
				if col.MaxWidth > 0 && w > col.MaxWidth {
					w = col.MaxWidth
				}
				widths[i] = w
			}
		}
	}

	return widths
}

// buildRow resolves styles, spans and positions of r into a layout row.
func (t *Table) buildRow(r *Row, widths []float64, startX float64, bodyIdx int) layout.Row {
	out := layout.Row{MinHeight: t.minRowHeight}
	if r.minH > out.MinHeight {
		out.MinHeight = r.minH
	}
	if !r.isHeader {
		out.Gap = t.rowGap
	}

	var border *layout.Stroke
	if b := t.style.Border; b != nil {
		border = &layout.Stroke{Color: b.Color, Width: b.Width}
	}

	x := startX
	col := 0
	for _, cell := range r.cells {
		if col >= len(widths) {
			break
		}
		cellW := widths[col]
		for j := 1; j < cell.colspan && col+j < len(widths); j++ {
			cellW += widths[col+j]
		}

		style := t.resolveCellStyle(cell, r, bodyIdx)
		font := DefaultFont
		if style.Font != nil {
			font = *style.Font
		}
		var color layout.Color
		if style.TextColor != nil {
			color = *style.TextColor
		}
		align := layout.AlignLeft
		if style.Align != "" {
			align = style.Align
		} else if t.columns[col].Align != "" {
			align = t.columns[col].Align
		}
		wrap := t.columns[col].Wrap
		if cell.wrap != nil {
			wrap = *cell.wrap
		}

		out.Cells = append(out.Cells, layout.Cell{
			X:      x,
			Width:  cellW,
			Text:   cell.text,
			Font:   font,
			Color:  color,
			Align:  align,
			Wrap:   wrap,
			Stack:  cell.stack,
			Border: border,
			Fill:   style.FillColor,
		})

		x += cellW
		col += cell.colspan
	}
	return out
}

// resolveCellStyle determines the effective style for a cell by merging
// table, header, alternate row, row, and cell-level styles.
func (t *Table) resolveCellStyle(cell *Cell, row *Row, bodyIdx int) CellStyle {
	var result CellStyle

	// Table-level font
	if t.style.CellFont != nil {
		result.Font = t.style.CellFont
	}

	// Header style
	if row.isHeader && t.style.HeaderStyle != nil {
		mergeStyle(&result, t.style.HeaderStyle)
	}

	// Alternate row colors (only for body rows)
	if !row.isHeader && t.style.AlternateRows != nil && bodyIdx >= 0 {
		if bodyIdx%2 == 0 {
			mergeStyle(&result, &t.style.AlternateRows.Even)
		} else {
			mergeStyle(&result, &t.style.AlternateRows.Odd)
		}
	}

	// Row-level style
	if row.style != nil {
		mergeStyle(&result, row.style)
	}

	// Cell-level style (highest priority)
	if cell.style != nil {
		mergeStyle(&result, cell.style)
	}

	return result
}
