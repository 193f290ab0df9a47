package layout

// Chrome draws repeating page decoration. It runs right after a page opens,
// with the cursor at the page's top-left margin corner, and must only use
// the absolute placement methods of the flow.
type Chrome func(f *Flow)

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithChrome registers page chrome in draw order.
func WithChrome(c ...Chrome) FlowOption {
	return func(f *Flow) { f.chrome = append(f.chrome, c...) }
}

// WithContentTop sets the y coordinate where flowing content starts on
// every page. It defaults to the top margin.
func WithContentTop(y float64) FlowOption {
	return func(f *Flow) { f.top = y }
}

// WithoutPagination disables page breaks. Content laid out past the bottom
// margin stays on the current page.
func WithoutPagination() FlowOption {
	return func(f *Flow) { f.paginate = false }
}

// WithTitle sets the document title metadata.
func WithTitle(title, subject string) FlowOption {
	return func(f *Flow) {
		f.doc.Title = title
		f.doc.Subject = subject
	}
}

// Flow is the page flow controller. It owns the cursor and the page list,
// and is the only place that decides when a new page starts.
type Flow struct {
	m        Metrics
	size     PageSize
	top      float64
	paginate bool
	chrome   []Chrome
	inChrome bool

	doc  *Document
	page *Page
	cur  Cursor
}

// NewFlow starts a document of the given size and opens its first page.
func NewFlow(m Metrics, size PageSize, opts ...FlowOption) *Flow {
	f := &Flow{
		m:        m,
		size:     size,
		top:      size.Margins.Top,
		paginate: true,
		doc:      &Document{Size: size},
	}
	for _, opt := range opts {
		opt(f)
	}
	f.NewPage()
	return f
}

// Metrics returns the measuring backend of the flow.
func (f *Flow) Metrics() Metrics { return f.m }

// Size returns the page size.
func (f *Flow) Size() PageSize { return f.size }

// Cursor returns the current cursor.
func (f *Flow) Cursor() Cursor { return f.cur }

// PageNo returns the 1-based number of the current page.
func (f *Flow) PageNo() int { return f.cur.Page }

// Page returns the current page.
func (f *Flow) Page() *Page { return f.page }

// Top is the y coordinate where content starts on a fresh page.
func (f *Flow) Top() float64 { return f.top }

// Bottom is the lowest y coordinate content may reach.
func (f *Flow) Bottom() float64 { return f.size.ContentBottom() }

// ContentHeight is the usable height of an empty page.
func (f *Flow) ContentHeight() float64 { return f.Bottom() - f.top }

// Paginated reports whether the flow breaks pages.
func (f *Flow) Paginated() bool { return f.paginate }

// MoveTo places the cursor on the current page.
func (f *Flow) MoveTo(x, y float64) {
	f.cur.X = x
	f.cur.Y = y
}

// SetY moves the cursor vertically and resets x to the left margin.
func (f *Flow) SetY(y float64) {
	f.cur.X = f.size.Margins.Left
	f.cur.Y = y
}

// Advance moves the cursor down by dy and resets x to the left margin.
func (f *Flow) Advance(dy float64) {
	f.SetY(f.cur.Y + dy)
}

// Fits reports whether h more millimeters fit on the current page.
func (f *Flow) Fits(h float64) bool {
	return !f.paginate || f.cur.Y+h <= f.Bottom()+epsilon
}

// EnsureSpace starts a new page when content of height h would cross the
// bottom margin. Content taller than an empty page fails with a
// LayoutOverflowError instead of breaking forever.
func (f *Flow) EnsureSpace(h float64) error {
	if f.Fits(h) {
		return nil
	}
	if h > f.ContentHeight()+epsilon {
		return &LayoutOverflowError{Height: h, Available: f.ContentHeight(), Page: f.PageNo()}
	}
	f.NewPage()
	return nil
}

// NewPage closes the current page, opens the next one, draws the chrome and
// moves the cursor to the content top.
func (f *Flow) NewPage() {
	f.page = &Page{Index: len(f.doc.Pages) + 1}
	f.doc.Pages = append(f.doc.Pages, f.page)
	f.cur = Cursor{X: f.size.Margins.Left, Y: f.size.Margins.Top, Page: f.page.Index}

	f.inChrome = true
	for _, c := range f.chrome {
		c(f)
	}
	f.inChrome = false
	f.SetY(f.top)
}

// InChrome reports whether page chrome is being drawn.
func (f *Flow) InChrome() bool { return f.inChrome }

// Place appends ops to the current page without any space check.
func (f *Flow) Place(ops ...Op) {
	f.page.Add(ops...)
}

// PlaceText draws a single line of text at an absolute position.
func (f *Flow) PlaceText(x, y, w, h float64, text string, font Font, color Color, align Align) {
	if text == "" {
		return
	}
	f.page.Add(TextOp{X: x, Y: y, W: w, H: h, Text: text, Font: font, Color: color, Align: align})
}

// PlaceWrapped draws text wrapped at w starting at an absolute position and
// returns the height of the block. It never breaks pages.
func (f *Flow) PlaceWrapped(x, y, w float64, text string, font Font, color Color, align Align) float64 {
	lines := Wrap(f.m, text, w, font)
	lh := font.LineHeight()
	for i, line := range lines {
		f.PlaceText(x, y+float64(i)*lh, w, lh, line, font, color, align)
	}
	return float64(len(lines)) * lh
}

// Row lays out row at the cursor, breaking to a new page first when the
// whole row does not fit. Rows are atomic. It returns the row height.
func (f *Flow) Row(row Row) (float64, error) {
	placed, _ := LayoutRow(f.m, row, f.cur)
	if err := f.EnsureSpace(placed.Height); err != nil {
		return 0, err
	}
	placed, next := LayoutRow(f.m, row, f.cur)
	f.page.Add(placed.Ops()...)
	f.SetY(next.Y)
	return placed.Height, nil
}

// Paragraph flows wrapped text from the cursor, breaking pages between
// lines as needed.
func (f *Flow) Paragraph(x, w float64, text string, font Font, color Color, align Align) error {
	lh := font.LineHeight()
	for _, line := range Wrap(f.m, text, w, font) {
		if err := f.EnsureSpace(lh); err != nil {
			return err
		}
		f.PlaceText(x, f.cur.Y, w, lh, line, font, color, align)
		f.Advance(lh)
	}
	return nil
}

// Band reserves h millimeters at the cursor, calls draw with the band top
// and advances past it. The band never splits across pages.
func (f *Flow) Band(h float64, draw func(top float64)) error {
	if err := f.EnsureSpace(h); err != nil {
		return err
	}
	draw(f.cur.Y)
	f.Advance(h)
	return nil
}

// Finish returns the laid out document. The flow must not be used after.
func (f *Flow) Finish() *Document {
	return f.doc
}
