package layout

import "encoding/json"

// Align is a horizontal text alignment inside its box.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// Symbology names a barcode encoding.
type Symbology string

const (
	Code128 Symbology = "code128"
	QR      Symbology = "qr"
	PDF417  Symbology = "pdf417"
)

// Op is a single draw instruction.
type Op interface {
	Kind() string
}

// TextOp draws one line of text inside the box at (X, Y) sized W by H.
type TextOp struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	Text  string  `json:"text"`
	Font  Font    `json:"font"`
	Color Color   `json:"color"`
	Align Align   `json:"align"`
}

// RectOp draws a rectangle. A nil Stroke or Fill omits that part.
type RectOp struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
	Stroke *Stroke `json:"stroke,omitempty"`
	Fill   *Color  `json:"fill,omitempty"`
}

// LineOp draws a straight line.
type LineOp struct {
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Stroke Stroke  `json:"stroke"`
}

// ImageOp draws a registered image by name. A zero W or H keeps the aspect
// ratio from the other dimension.
type ImageOp struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
}

// BarcodeOp draws a barcode encoding Value.
type BarcodeOp struct {
	Symbology Symbology `json:"symbology"`
	Value     string    `json:"value"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	W         float64   `json:"w"`
	H         float64   `json:"h"`
}

func (TextOp) Kind() string    { return "text" }
func (RectOp) Kind() string    { return "rect" }
func (LineOp) Kind() string    { return "line" }
func (ImageOp) Kind() string   { return "image" }
func (BarcodeOp) Kind() string { return "barcode" }

// Page is one output page and its draw instructions in paint order.
type Page struct {
	Index int  `json:"index"` // 1-based
	Ops   []Op `json:"ops"`
}

// Add appends ops to the page.
func (p *Page) Add(ops ...Op) {
	p.Ops = append(p.Ops, ops...)
}

// Texts returns the text instructions of the page in paint order.
func (p *Page) Texts() []TextOp {
	var out []TextOp
	for _, op := range p.Ops {
		if t, ok := op.(TextOp); ok {
			out = append(out, t)
		}
	}
	return out
}

// HasText reports whether any text instruction on the page reads s.
func (p *Page) HasText(s string) bool {
	for _, t := range p.Texts() {
		if t.Text == s {
			return true
		}
	}
	return false
}

type taggedOp struct {
	Kind string `json:"kind"`
	Op   Op     `json:"op"`
}

// MarshalJSON tags each op with its kind so dumps can be read back by tools.
func (p *Page) MarshalJSON() ([]byte, error) {
	ops := make([]taggedOp, len(p.Ops))
	for i, op := range p.Ops {
		ops[i] = taggedOp{Kind: op.Kind(), Op: op}
	}
	return json.Marshal(struct {
		Index int        `json:"index"`
		Ops   []taggedOp `json:"ops"`
	}{p.Index, ops})
}

// Document is the result of a layout pass.
type Document struct {
	Size    PageSize `json:"size"`
	Title   string   `json:"title,omitempty"`
	Subject string   `json:"subject,omitempty"`
	Pages   []*Page  `json:"pages"`
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return len(d.Pages) }

// OpCount returns the number of instructions on all pages.
func (d *Document) OpCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Ops)
	}
	return n
}

// FindText returns the 1-based indexes of the pages holding a text
// instruction equal to s.
func (d *Document) FindText(s string) []int {
	var pages []int
	for _, p := range d.Pages {
		if p.HasText(s) {
			pages = append(pages, p.Index)
		}
	}
	return pages
}
