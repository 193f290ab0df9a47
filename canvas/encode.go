package canvas

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/barcode"
	"github.com/boombuler/barcode/qr"

	"github.com/lvillar/docrender/layout"
)

// Option configures an Encoder.
type Option func(*Encoder)

// WithImage registers an image under name. Image instructions naming an
// unregistered image are skipped.
func WithImage(name string, img Image) Option {
	return func(e *Encoder) { e.images[name] = img }
}

// WithStationery draws page 1 of the PDF at path under every page.
func WithStationery(path string) Option {
	return func(e *Encoder) { e.stationery = path }
}

// WithCreationDate fixes the creation date and sorts the catalog so equal
// documents encode to equal bytes.
func WithCreationDate(t time.Time) Option {
	return func(e *Encoder) { e.created = t }
}

// WithCompression toggles stream compression. It is on by default.
func WithCompression(on bool) Option {
	return func(e *Encoder) { e.compress = on }
}

// WithCreator sets the creator metadata.
func WithCreator(creator string) Option {
	return func(e *Encoder) { e.creator = creator }
}

// Encoder writes layout documents as PDF.
type Encoder struct {
	images     map[string]Image
	stationery string
	created    time.Time
	compress   bool
	creator    string
}

// NewEncoder returns an encoder with the given options.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{images: map[string]Image{}, compress: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode writes doc to w. Nothing is written when encoding fails.
func (e *Encoder) Encode(w io.Writer, doc *layout.Document) error {
	size := doc.Size
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: size.Width, Ht: size.Height},
	})
	pdf.SetMargins(size.Margins.Left, size.Margins.Top, size.Margins.Right)
	pdf.SetAutoPageBreak(false, size.Margins.Bottom)
	pdf.SetCompression(e.compress)
	if !e.created.IsZero() {
		pdf.SetCreationDate(e.created)
		pdf.SetCatalogSort(true)
	}
	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}
	if doc.Subject != "" {
		pdf.SetSubject(doc.Subject, true)
	}
	if e.creator != "" {
		pdf.SetCreator(e.creator, true)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	names := make([]string, 0, len(e.images))
	for name := range e.images {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		img := e.images[name]
		pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: img.Type}, bytes.NewReader(img.Data))
	}

	var bg *stationery
	if e.stationery != "" {
		var err error
		if bg, err = importStationery(pdf, e.stationery); err != nil {
			return err
		}
	}

	for _, page := range doc.Pages {
		pdf.AddPage()
		if bg != nil {
			bg.draw(pdf, size.Width, size.Height)
		}
		for _, op := range page.Ops {
			e.draw(pdf, tr, op)
		}
		if pdf.Err() {
			return fmt.Errorf("canvas: page %d: %w", page.Index, pdf.Error())
		}
	}
	if len(doc.Pages) == 0 {
		pdf.AddPage()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("canvas: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (e *Encoder) draw(pdf *fpdf.Fpdf, tr func(string) string, op layout.Op) {
	switch o := op.(type) {
	case layout.TextOp:
		pdf.SetFont(family(o.Font), o.Font.Style, o.Font.Size)
		pdf.SetTextColor(o.Color.R, o.Color.G, o.Color.B)
		pdf.SetXY(o.X, o.Y)
		pdf.CellFormat(o.W, o.H, tr(o.Text), "", 0, string(o.Align), false, 0, "")
	case layout.RectOp:
		style := ""
		if o.Fill != nil {
			pdf.SetFillColor(o.Fill.R, o.Fill.G, o.Fill.B)
			style += "F"
		}
		if o.Stroke != nil {
			setStroke(pdf, *o.Stroke)
			style += "D"
		}
		if style != "" {
			pdf.Rect(o.X, o.Y, o.W, o.H, style)
		}
	case layout.LineOp:
		setStroke(pdf, o.Stroke)
		pdf.Line(o.X1, o.Y1, o.X2, o.Y2)
	case layout.ImageOp:
		if _, ok := e.images[o.Name]; !ok {
			return
		}
		pdf.ImageOptions(o.Name, o.X, o.Y, o.W, o.H, false, fpdf.ImageOptions{}, 0, "")
	case layout.BarcodeOp:
		var key string
		switch o.Symbology {
		case layout.Code128:
			key = barcode.RegisterCode128(pdf, o.Value)
		case layout.QR:
			key = barcode.RegisterQR(pdf, o.Value, qr.M, qr.Unicode)
		case layout.PDF417:
			key = barcode.RegisterPdf417(pdf, o.Value, 5, 2)
		default:
			pdf.SetErrorf("unknown barcode symbology %q", o.Symbology)
			return
		}
		if pdf.Ok() {
			barcode.Barcode(pdf, key, o.X, o.Y, o.W, o.H, false)
		}
	}
}

func setStroke(pdf *fpdf.Fpdf, s layout.Stroke) {
	pdf.SetDrawColor(s.Color.R, s.Color.G, s.Color.B)
	w := s.Width
	if w <= 0 {
		w = 0.2
	}
	pdf.SetLineWidth(w)
}
