// Package doctpl describes business documents as declarative templates and
// lays them out with the layout engine.
//
// A Template is plain data and can be written as JSON. Text values use
// {key} placeholders resolved against the record being rendered; inside
// page chrome the extra key {page} holds the current page number.
//
// Example JSON:
//
//	{
//	  "name": "receipt",
//	  "page": {"width": 210, "height": 297, "margins": {"top": 10, "right": 10, "bottom": 15, "left": 10}},
//	  "font": {"family": "Helvetica", "size": 10},
//	  "sections": [{
//	    "type": "fields",
//	    "elements": [
//	      {"type": "text", "name": "cliente", "text": "{cliente}", "x": 40, "y": 75, "height": 10}
//	    ]
//	  }]
//	}
package doctpl

import "github.com/lvillar/docrender/layout"

// Template is the top-level description of a document kind.
type Template struct {
	Name  string          `json:"name"`
	Title string          `json:"title,omitempty"`
	Page  layout.PageSize `json:"page"`
	Font  layout.Font     `json:"font"` // default font for the document

	// ContentTop is where flowing sections start on every page.
	// Zero means the top margin.
	ContentTop float64 `json:"contentTop,omitempty"`
	// Paginate routes flowing content through page breaks. When false,
	// content laid out past the bottom margin stays on the first page.
	Paginate bool `json:"paginate"`

	Chrome   []Element `json:"chrome,omitempty"` // drawn on every page
	Sections []Section `json:"sections"`
}

// Element is a single absolutely placed visual element.
// The Type field determines which other fields are relevant.
type Element struct {
	Type string `json:"type"` // text, rect, line, image, barcode
	// Name identifies the element for position overrides.
	Name string `json:"name,omitempty"`

	// Text is the content of text elements and the encoded value of
	// barcodes. It may hold {key} placeholders.
	Text  string        `json:"text,omitempty"`
	Align layout.Align  `json:"align,omitempty"`
	Wrap  bool          `json:"wrap,omitempty"`
	Font  *layout.Font  `json:"font,omitempty"`
	Color *layout.Color `json:"color,omitempty"`

	// Optional names the field whose value decides, through the
	// OptionalRule, whether the element is drawn at all.
	Optional string `json:"optional,omitempty"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"` // 0 extends to the right margin
	Height float64 `json:"height,omitempty"`

	// Line end point
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`

	Border *layout.Stroke `json:"border,omitempty"` // rect outline and line stroke
	Fill   *layout.Color  `json:"fill,omitempty"`

	Image     string           `json:"image,omitempty"` // registered image name
	Symbology layout.Symbology `json:"symbology,omitempty"`
}

// Section is a block of flowing content.
// The Type field determines which other fields are relevant.
type Section struct {
	Type string `json:"type"` // fields, table, groups, band, totals, pairs, paragraph, spacer

	// When names a field that must be non-empty for the section to be
	// laid out.
	When string `json:"when,omitempty"`

	// fields
	Elements []Element `json:"elements,omitempty"`

	// table
	Table *TableSpec `json:"table,omitempty"`

	// groups: Sections are laid out once per group of the record.
	Sections []Section `json:"sections,omitempty"`

	// band, paragraph
	Text string `json:"text,omitempty"`

	// pairs, paragraph
	Title       string       `json:"title,omitempty"`
	TitleFont   *layout.Font `json:"titleFont,omitempty"`
	TitleHeight float64      `json:"titleHeight,omitempty"`

	X      float64        `json:"x,omitempty"`     // 0 means the left margin
	Width  float64        `json:"width,omitempty"` // 0 extends to the right margin
	Height float64        `json:"height,omitempty"`
	Before float64        `json:"before,omitempty"` // space left above the section
	Font   *layout.Font   `json:"font,omitempty"`
	Align  layout.Align   `json:"align,omitempty"`
	Fill   *layout.Color  `json:"fill,omitempty"`
	Border *layout.Stroke `json:"border,omitempty"`
	// KeepWithNext is the minimum height of the content that must fit on
	// the same page below a band. A band followed by a table is also kept
	// with the table's header and first row.
	KeepWithNext float64 `json:"keepWithNext,omitempty"`

	// totals, pairs
	Lines      []Line       `json:"lines,omitempty"`
	LabelWidth float64      `json:"labelWidth,omitempty"`
	ValueWidth float64      `json:"valueWidth,omitempty"`
	LabelFont  *layout.Font `json:"labelFont,omitempty"`
	Gap        float64      `json:"gap,omitempty"` // space after each pair
}

// Line is a label and value pair of a totals or pairs section.
type Line struct {
	Label  string       `json:"label"`
	Value  string       `json:"value"`
	Font   *layout.Font `json:"font,omitempty"`
	Height float64      `json:"height,omitempty"`
	When   string       `json:"when,omitempty"`
}

// TableSpec describes a table over the items of a record.
type TableSpec struct {
	X float64 `json:"x,omitempty"`
	// Y fixes the table top on the page it starts. Zero continues at the
	// cursor.
	Y            float64        `json:"y,omitempty"`
	Columns      []ColumnSpec   `json:"columns"`
	Header       bool           `json:"header,omitempty"`
	HeaderFont   *layout.Font   `json:"headerFont,omitempty"`
	HeaderFill   *layout.Color  `json:"headerFill,omitempty"`
	Font         *layout.Font   `json:"font,omitempty"`
	Border       *layout.Stroke `json:"border,omitempty"`
	MinRowHeight float64        `json:"minRowHeight,omitempty"`
	RowGap       float64        `json:"rowGap,omitempty"`
	RepeatHeader bool           `json:"repeatHeader,omitempty"`
}

// ColumnSpec defines a table column.
type ColumnSpec struct {
	Name     string       `json:"name,omitempty"`
	Label    string       `json:"label,omitempty"`
	Value    string       `json:"value"`
	Width    float64      `json:"width"`
	Align    layout.Align `json:"align,omitempty"`
	Wrap     bool         `json:"wrap,omitempty"`
	Stack    bool         `json:"stack,omitempty"`
	Optional string       `json:"optional,omitempty"`
}

// Data is the flattened content of a record. Fields hold scalar values,
// Items feed table sections and Groups feed groups sections. Lookups that
// miss in a nested scope fall back to the enclosing one.
type Data struct {
	Fields map[string]string
	Items  []map[string]string
	Groups []Data

	parent *Data
}

// Get returns the value of key, or "" when absent.
func (d *Data) Get(key string) string {
	for s := d; s != nil; s = s.parent {
		if v, ok := s.Fields[key]; ok {
			return v
		}
	}
	return ""
}

// child returns a scope over fields nested in d.
func (d *Data) child(fields map[string]string) *Data {
	return &Data{Fields: fields, parent: d}
}
