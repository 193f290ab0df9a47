package doctpl

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/lvillar/docrender/layout"
	"github.com/lvillar/docrender/table"
)

// Options tune a layout pass.
type Options struct {
	OptionalRule OptionalRule
	// Barcodes enables barcode elements.
	Barcodes bool
}

// Parse decodes a JSON template and validates it.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("doctpl: parsing template: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadFile reads a JSON template from path.
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("doctpl: %w", err)
	}
	return Parse(data)
}

// Validate checks the page geometry and element types of the template.
func (t *Template) Validate() error {
	if err := t.Page.Validate(); err != nil {
		return fmt.Errorf("doctpl: template %q: %w", t.Name, err)
	}
	if t.ContentTop != 0 && (t.ContentTop < 0 || t.ContentTop >= t.Page.ContentBottom()) {
		return fmt.Errorf("doctpl: template %q: content top %g outside the page", t.Name, t.ContentTop)
	}
	for _, e := range t.Chrome {
		if err := e.validate(); err != nil {
			return fmt.Errorf("doctpl: template %q chrome: %w", t.Name, err)
		}
	}
	return validateSections(t.Name, t.Sections)
}

func validateSections(name string, sections []Section) error {
	for _, s := range sections {
		switch s.Type {
		case "fields":
			for _, e := range s.Elements {
				if err := e.validate(); err != nil {
					return fmt.Errorf("doctpl: template %q: %w", name, err)
				}
			}
		case "table":
			if s.Table == nil || len(s.Table.Columns) == 0 {
				return fmt.Errorf("doctpl: template %q: table section without columns", name)
			}
		case "groups":
			if err := validateSections(name, s.Sections); err != nil {
				return err
			}
		case "band", "totals", "pairs", "paragraph", "spacer":
		default:
			return fmt.Errorf("doctpl: template %q: unknown section type %q", name, s.Type)
		}
	}
	return nil
}

func (e Element) validate() error {
	switch e.Type {
	case "text", "rect", "line", "image":
		return nil
	case "barcode":
		switch e.Symbology {
		case layout.Code128, layout.QR, layout.PDF417:
			return nil
		}
		return fmt.Errorf("element %q: unknown symbology %q", e.Name, e.Symbology)
	}
	return fmt.Errorf("element %q: unknown type %q", e.Name, e.Type)
}

// Keys returns the sorted set of record fields the template reads.
func (t *Template) Keys() []string {
	set := map[string]bool{}
	add := func(s string) {
		for _, k := range keys(s) {
			if k != "page" {
				set[k] = true
			}
		}
	}
	addElements := func(els []Element) {
		for _, e := range els {
			add(e.Text)
			if e.Optional != "" {
				set[e.Optional] = true
			}
		}
	}
	var walk func([]Section)
	walk = func(sections []Section) {
		for _, s := range sections {
			addElements(s.Elements)
			add(s.Text)
			if s.When != "" {
				set[s.When] = true
			}
			for _, l := range s.Lines {
				add(l.Value)
			}
			if s.Table != nil {
				for _, c := range s.Table.Columns {
					add(c.Value)
				}
			}
			walk(s.Sections)
		}
	}
	addElements(t.Chrome)
	walk(t.Sections)

	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build lays out d with the template and returns the positioned document.
func Build(t *Template, d Data, m layout.Metrics, opts Options) (*layout.Document, error) {
	if t == nil {
		return nil, errors.New("doctpl: nil template")
	}
	if opts.OptionalRule == "" {
		opts.OptionalRule = AsObserved
	}
	r := &renderer{tpl: t, opts: opts}

	flowOpts := []layout.FlowOption{layout.WithTitle(expand(t.Title, &d), t.Name)}
	if t.ContentTop > 0 {
		flowOpts = append(flowOpts, layout.WithContentTop(t.ContentTop))
	}
	if !t.Paginate {
		flowOpts = append(flowOpts, layout.WithoutPagination())
	}
	if len(t.Chrome) > 0 {
		flowOpts = append(flowOpts, layout.WithChrome(func(f *layout.Flow) {
			scope := d.child(map[string]string{"page": strconv.Itoa(f.PageNo())})
			for _, e := range t.Chrome {
				r.drawElement(f, e, scope)
			}
		}))
	}

	f := layout.NewFlow(m, t.Page, flowOpts...)
	if err := r.sections(f, t.Sections, &d); err != nil {
		return nil, fmt.Errorf("doctpl: %s: %w", t.Name, err)
	}
	return f.Finish(), nil
}

type renderer struct {
	tpl  *Template
	opts Options
}

func (r *renderer) font(f *layout.Font) layout.Font {
	if f != nil {
		return *f
	}
	return r.tpl.Font
}

func (r *renderer) sections(f *layout.Flow, sections []Section, d *Data) error {
	for i, s := range sections {
		if !s.visible(d) {
			continue
		}
		// A band is kept with the header and first row of a table below it.
		if s.Type == "band" {
			if next := nextVisible(sections[i+1:], d); next != nil && next.Type == "table" {
				tb, err := r.buildTable(f, next.Table, d)
				if err != nil {
					return fmt.Errorf("section %d (%s): %w", i+2, next.Type, err)
				}
				s.KeepWithNext = max(s.KeepWithNext, next.Before+tb.LeadHeight())
			}
		}
		if err := r.section(f, s, d); err != nil {
			return fmt.Errorf("section %d (%s): %w", i+1, s.Type, err)
		}
	}
	return nil
}

func (s Section) visible(d *Data) bool {
	return s.When == "" || d.Get(s.When) != ""
}

func nextVisible(sections []Section, d *Data) *Section {
	for i := range sections {
		if sections[i].visible(d) {
			return &sections[i]
		}
	}
	return nil
}

func (r *renderer) section(f *layout.Flow, s Section, d *Data) error {
	if s.Before > 0 {
		f.Advance(s.Before)
	}
	switch s.Type {
	case "fields":
		for _, e := range s.Elements {
			r.drawElement(f, e, d)
		}
	case "table":
		tb, err := r.buildTable(f, s.Table, d)
		if err != nil {
			return err
		}
		return tb.Render()
	case "groups":
		for i := range d.Groups {
			g := d.Groups[i]
			g.parent = d
			if err := r.sections(f, s.Sections, &g); err != nil {
				return fmt.Errorf("group %d: %w", i+1, err)
			}
		}
	case "band":
		return r.band(f, s, d)
	case "totals":
		return r.totals(f, s, d)
	case "pairs":
		return r.pairs(f, s, d)
	case "paragraph":
		return r.paragraph(f, s, d)
	case "spacer":
		f.Advance(s.Height)
	default:
		return fmt.Errorf("unknown section type %q", s.Type)
	}
	return nil
}

// box resolves a horizontal extent where zero means the page margins.
func box(f *layout.Flow, x, w float64) (float64, float64) {
	size := f.Size()
	if x == 0 {
		x = size.Margins.Left
	}
	if w == 0 {
		w = size.Width - size.Margins.Right - x
	}
	return x, w
}

func (r *renderer) drawElement(f *layout.Flow, e Element, d *Data) {
	if e.Optional != "" && !r.opts.OptionalRule.Visible(d.Get(e.Optional)) {
		return
	}
	size := f.Size()
	w := e.Width
	if w == 0 {
		w = size.Width - size.Margins.Right - e.X
	}
	var color layout.Color
	if e.Color != nil {
		color = *e.Color
	}

	switch e.Type {
	case "text":
		font := r.font(e.Font)
		text := expand(e.Text, d)
		if e.Wrap {
			f.PlaceWrapped(e.X, e.Y, w, text, font, color, e.Align)
			return
		}
		h := e.Height
		if h == 0 {
			h = font.LineHeight()
		}
		f.PlaceText(e.X, e.Y, w, h, text, font, color, e.Align)
	case "rect":
		f.Place(layout.RectOp{X: e.X, Y: e.Y, W: w, H: e.Height, Stroke: e.Border, Fill: e.Fill})
	case "line":
		stroke := layout.Stroke{Width: 0.2}
		if e.Border != nil {
			stroke = *e.Border
		}
		f.Place(layout.LineOp{X1: e.X, Y1: e.Y, X2: e.X2, Y2: e.Y2, Stroke: stroke})
	case "image":
		f.Place(layout.ImageOp{Name: e.Image, X: e.X, Y: e.Y, W: e.Width, H: e.Height})
	case "barcode":
		value := expand(e.Text, d)
		if !r.opts.Barcodes || value == "" {
			return
		}
		f.Place(layout.BarcodeOp{Symbology: e.Symbology, Value: value, X: e.X, Y: e.Y, W: w, H: e.Height})
	}
}

func (r *renderer) buildTable(f *layout.Flow, ts *TableSpec, d *Data) (*table.Table, error) {
	if ts == nil {
		return nil, errors.New("table section without columns")
	}

	cols := make([]table.ColumnDef, len(ts.Columns))
	for i, c := range ts.Columns {
		cols[i] = table.ColumnDef{Width: c.Width, Align: c.Align, Wrap: c.Wrap}
	}
	cellFont := r.font(ts.Font)
	headerFont := cellFont
	if ts.HeaderFont != nil {
		headerFont = *ts.HeaderFont
	}
	style := table.TableStyle{
		CellFont:    &cellFont,
		HeaderStyle: &table.CellStyle{Font: &headerFont, Align: layout.AlignCenter, FillColor: ts.HeaderFill},
	}
	if ts.Border != nil {
		style.Border = &table.BorderStyle{Width: ts.Border.Width, Color: ts.Border.Color}
	}

	x, w := box(f, ts.X, 0)
	tb := table.New(f).
		SetColumns(cols...).
		SetStyle(style).
		SetPosition(x, ts.Y).
		SetWidth(w).
		SetMinRowHeight(ts.MinRowHeight).
		SetRowGap(ts.RowGap).
		SetRepeatHeader(ts.RepeatHeader)

	if ts.Header {
		h := tb.AddHeaderRow()
		for _, c := range ts.Columns {
			h.AddCell(c.Label)
		}
	}
	for _, item := range d.Items {
		scope := d.child(item)
		row := tb.AddRow()
		for _, c := range ts.Columns {
			v := expand(c.Value, scope)
			if c.Optional != "" && !r.opts.OptionalRule.Visible(scope.Get(c.Optional)) {
				v = ""
			}
			row.AddCell(v).SetStack(c.Stack)
		}
	}
	return tb, nil
}

func (r *renderer) band(f *layout.Flow, s Section, d *Data) error {
	x, w := box(f, s.X, s.Width)
	font := r.font(s.Font)
	h := s.Height
	if h == 0 {
		h = font.LineHeight()
	}
	if err := f.EnsureSpace(h + s.KeepWithNext); err != nil {
		return err
	}
	return f.Band(h, func(top float64) {
		if s.Fill != nil || s.Border != nil {
			f.Place(layout.RectOp{X: x, Y: top, W: w, H: h, Stroke: s.Border, Fill: s.Fill})
		}
		f.PlaceText(x, top, w, h, expand(s.Text, d), font, layout.Color{}, s.Align)
	})
}

func (r *renderer) totals(f *layout.Flow, s Section, d *Data) error {
	x, _ := box(f, s.X, 0)
	lines := visibleLines(s.Lines, d)

	// The block of totals stays together.
	total := 0.0
	for _, l := range lines {
		total += l.Height
	}
	if err := f.EnsureSpace(total); err != nil {
		return err
	}
	for _, l := range lines {
		font := r.font(l.Font)
		err := f.Band(l.Height, func(top float64) {
			f.PlaceText(x, top, s.LabelWidth, l.Height, l.Label, font, layout.Color{}, layout.AlignRight)
			f.PlaceText(x+s.LabelWidth, top, s.ValueWidth, l.Height, expand(l.Value, d), font, layout.Color{}, layout.AlignRight)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) pairs(f *layout.Flow, s Section, d *Data) error {
	x, _ := box(f, s.X, 0)
	if s.Title != "" {
		titleFont := r.font(s.TitleFont)
		h := s.TitleHeight
		if h == 0 {
			h = titleFont.LineHeight()
		}
		// Keep the title with its first pair.
		if err := f.EnsureSpace(h + r.font(s.Font).LineHeight()); err != nil {
			return err
		}
		err := f.Band(h, func(top float64) {
			f.PlaceText(x, top, s.LabelWidth+s.ValueWidth, h, s.Title, titleFont, layout.Color{}, layout.AlignLeft)
		})
		if err != nil {
			return err
		}
	}

	labelFont := r.font(s.LabelFont)
	valueFont := r.font(s.Font)
	for _, l := range visibleLines(s.Lines, d) {
		row := layout.Row{
			Gap: s.Gap,
			Cells: []layout.Cell{
				{X: x, Width: s.LabelWidth, Text: l.Label, Font: labelFont, Align: layout.AlignLeft},
				{X: x + s.LabelWidth, Width: s.ValueWidth, Text: expand(l.Value, d), Font: valueFont, Align: layout.AlignLeft, Wrap: true},
			},
		}
		if _, err := f.Row(row); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) paragraph(f *layout.Flow, s Section, d *Data) error {
	x, w := box(f, s.X, s.Width)
	font := r.font(s.Font)
	if s.Title != "" {
		titleFont := r.font(s.TitleFont)
		h := s.TitleHeight
		if h == 0 {
			h = titleFont.LineHeight()
		}
		if err := f.EnsureSpace(h + font.LineHeight()); err != nil {
			return err
		}
		err := f.Band(h, func(top float64) {
			f.PlaceText(x, top, w, h, s.Title, titleFont, layout.Color{}, layout.AlignLeft)
		})
		if err != nil {
			return err
		}
	}
	return f.Paragraph(x, w, expand(s.Text, d), font, layout.Color{}, s.Align)
}

func visibleLines(lines []Line, d *Data) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.When == "" || d.Get(l.When) != "" {
			out = append(out, l)
		}
	}
	return out
}
