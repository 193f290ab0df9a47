package layout

// Cell is one cell of a row band. X and Width are absolute.
type Cell struct {
	X     float64
	Width float64
	Text  string
	Font  Font
	Color Color
	Align Align
	// Wrap breaks the text at Width. A non-wrapping cell always occupies a
	// single line.
	Wrap bool
	// Stack places the cell under the preceding cell of the row instead of
	// at the row top. Its block extends the row height accordingly; an
	// empty stacked cell takes no room.
	Stack bool
	// Border outlines the cell across the full row height. Stacked cells
	// are never outlined.
	Border *Stroke
	Fill   *Color
}

// Row is a band of cells sharing a top edge.
type Row struct {
	Cells     []Cell
	MinHeight float64
	// Gap is extra vertical space added after the row. It is not part of
	// the row height and is not needed to fit the row on a page.
	Gap float64
}

// PlacedCell is a cell resolved against a row top.
type PlacedCell struct {
	Cell
	Y          float64
	Lines      []string
	LineHeight float64
}

// Height is the vertical extent of the cell text block.
func (c PlacedCell) Height() float64 {
	return float64(len(c.Lines)) * c.LineHeight
}

// PlacedRow is the result of LayoutRow.
type PlacedRow struct {
	Top    float64
	Height float64
	Cells  []PlacedCell
}

// LayoutRow places row at cursor. The row height is the maximum over all
// cells of their bottom edge relative to the row top, and never less than
// MinHeight. The returned cursor sits below the row and its gap.
func LayoutRow(m Metrics, row Row, cur Cursor) (PlacedRow, Cursor) {
	pr := PlacedRow{Top: cur.Y, Height: row.MinHeight}
	prevBottom := cur.Y
	for _, c := range row.Cells {
		pc := PlacedCell{Cell: c, Y: cur.Y, LineHeight: c.Font.LineHeight()}
		if c.Stack {
			pc.Y = prevBottom
		}
		switch {
		case c.Stack && c.Text == "":
			// An empty stacked cell takes no room.
		case c.Wrap:
			pc.Lines = Wrap(m, c.Text, c.Width, c.Font)
		default:
			pc.Lines = []string{c.Text}
		}
		prevBottom = pc.Y + pc.Height()
		if h := prevBottom - cur.Y; h > pr.Height {
			pr.Height = h
		}
		pr.Cells = append(pr.Cells, pc)
	}
	next := cur
	next.Y = cur.Y + pr.Height + row.Gap
	return pr, next
}

// Ops returns the draw instructions for the row: fills and borders first,
// then one text instruction per line.
func (r PlacedRow) Ops() []Op {
	var ops []Op
	for _, c := range r.Cells {
		if c.Stack || (c.Border == nil && c.Fill == nil) {
			continue
		}
		ops = append(ops, RectOp{X: c.X, Y: r.Top, W: c.Width, H: r.Height, Stroke: c.Border, Fill: c.Fill})
	}
	for _, c := range r.Cells {
		for i, line := range c.Lines {
			if line == "" {
				continue
			}
			ops = append(ops, TextOp{
				X:     c.X,
				Y:     c.Y + float64(i)*c.LineHeight,
				W:     c.Width,
				H:     c.LineHeight,
				Text:  line,
				Font:  c.Font,
				Color: c.Color,
				Align: c.Align,
			})
		}
	}
	return ops
}
