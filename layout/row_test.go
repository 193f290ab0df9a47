package layout

import (
	"math"
	"testing"
)

func TestLayoutRowHeight(t *testing.T) {
	m := FixedAdvance(1)
	row := Row{Cells: []Cell{
		{X: 10, Width: 15, Text: "2", Font: body},
		{X: 25, Width: 25, Text: "AB-100", Font: body},
		{X: 50, Width: 10, Text: "uno dos tres cuatro", Font: body, Wrap: true},
	}}
	placed, next := LayoutRow(m, row, Cursor{X: 10, Y: 135, Page: 1})

	// "uno dos" "tres" "cuatro" at width 10.
	if placed.Height != 15 {
		t.Errorf("height = %g, want 15", placed.Height)
	}
	if next.Y-135 != placed.Height {
		t.Errorf("cursor advanced %g, want %g", next.Y-135, placed.Height)
	}
	for _, c := range placed.Cells {
		if c.Y != 135 {
			t.Errorf("cell at x=%g starts at y=%g, want 135", c.X, c.Y)
		}
	}
}

func TestLayoutRowStack(t *testing.T) {
	m := FixedAdvance(1)
	row := Row{Cells: []Cell{
		{X: 50, Width: 10, Text: "uno dos tres", Font: body, Wrap: true},
		{X: 150, Width: 30, Text: "N° serie X1", Font: body, Stack: true},
	}}
	placed, _ := LayoutRow(m, row, Cursor{Y: 100})

	serial := placed.Cells[1]
	if serial.Y != 110 {
		t.Errorf("stacked cell y = %g, want 110", serial.Y)
	}
	if placed.Height != 15 {
		t.Errorf("height = %g, want 15", placed.Height)
	}
}

func TestLayoutRowMinHeightAndGap(t *testing.T) {
	row := Row{MinHeight: 6, Gap: 0.5, Cells: []Cell{{X: 10, Width: 15, Text: "1", Font: body}}}
	placed, next := LayoutRow(FixedAdvance(1), row, Cursor{Y: 70})
	if placed.Height != 6 {
		t.Errorf("height = %g, want 6", placed.Height)
	}
	if math.Abs(next.Y-76.5) > 1e-9 {
		t.Errorf("next y = %g, want 76.5", next.Y)
	}
}

func TestLayoutRowMaxOverCells(t *testing.T) {
	m := FixedAdvance(0.9)
	texts := []string{"a", "a b c d e f g h", "aaaa bbbb cccc dddd eeee ffff", "", "x y"}
	for _, w := range []float64{3, 8, 20, 60} {
		var cells []Cell
		maxH := 0.0
		for i, s := range texts {
			c := Cell{X: float64(i) * w, Width: w, Text: s, Font: body, Wrap: true}
			cells = append(cells, c)
			if h := BlockHeight(m, s, w, body); h > maxH {
				maxH = h
			}
		}
		placed, next := LayoutRow(m, Row{Cells: cells}, Cursor{Y: 40})
		if placed.Height != maxH {
			t.Errorf("width %g: height %g, want max %g", w, placed.Height, maxH)
		}
		if next.Y-40 != placed.Height {
			t.Errorf("width %g: advance %g != height %g", w, next.Y-40, placed.Height)
		}
	}
}

func TestPlacedRowOps(t *testing.T) {
	border := &Stroke{Width: 0.2}
	row := Row{Cells: []Cell{
		{X: 10, Width: 15, Text: "1", Font: body, Border: border},
		{X: 25, Width: 5, Text: "uno dos", Font: body, Wrap: true, Border: border},
	}}
	placed, _ := LayoutRow(FixedAdvance(1), row, Cursor{Y: 10})
	ops := placed.Ops()

	var rects, texts int
	for _, op := range ops {
		switch o := op.(type) {
		case RectOp:
			rects++
			if o.H != placed.Height {
				t.Errorf("border height %g, want row height %g", o.H, placed.Height)
			}
		case TextOp:
			texts++
		}
	}
	if rects != 2 || texts != 3 {
		t.Errorf("got %d rects and %d texts, want 2 and 3", rects, texts)
	}
	if _, ok := ops[0].(RectOp); !ok {
		t.Errorf("first op is %s, want borders painted before text", ops[0].Kind())
	}
}

func TestLayoutRowEmptyStackCollapses(t *testing.T) {
	row := Row{Cells: []Cell{
		{X: 50, Width: 100, Text: "monitor", Font: body, Wrap: true},
		{X: 150, Width: 30, Text: "", Font: body, Stack: true},
	}}
	placed, _ := LayoutRow(FixedAdvance(1), row, Cursor{Y: 135})
	if placed.Height != 5 {
		t.Errorf("height = %g, want 5", placed.Height)
	}
}
