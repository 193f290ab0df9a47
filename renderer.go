// Package docrender lays out delivery notes (remitos) and commercial
// quotations (presupuestos) and renders them as PDF.
//
// A Renderer owns the templates and rendering options. Records are parsed
// and validated by package record, flattened into template data, laid out
// by package doctpl on a layout.Flow and finally encoded by package
// canvas:
//
//	r, err := docrender.New(docrender.WithLogo(logo))
//	if err != nil {
//		return err
//	}
//	res, err := r.Render(w, docrender.Quotation, body)
package docrender

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lvillar/docrender/canvas"
	"github.com/lvillar/docrender/doctpl"
	"github.com/lvillar/docrender/layout"
	"github.com/lvillar/docrender/record"
)

// Creator is written into the metadata of every PDF.
const Creator = "docrender"

// Renderer renders records of every supported kind. It is safe for
// concurrent use; each call lays out with its own measuring backend.
type Renderer struct {
	cfg       *rendererConfig
	templates map[Kind]*doctpl.Template
	logger    *log.Logger
}

// Result describes a rendered document.
type Result struct {
	Kind     Kind   `json:"kind"`
	FileName string `json:"file_name"`
	Pages    int    `json:"pages"`
	Bytes    int    `json:"bytes"`
}

// New returns a Renderer configured with opts. It fails when a replacement
// template is invalid or a field position names an unknown element.
func New(opts ...Option) (*Renderer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if _, err := doctpl.ParseOptionalRule(string(cfg.optionalRule)); err != nil {
		return nil, err
	}

	r := &Renderer{
		cfg:       cfg,
		templates: map[Kind]*doctpl.Template{DeliveryNote: doctpl.DeliveryNote(), Quotation: doctpl.Quotation()},
		logger:    cfg.logger,
	}
	for _, t := range cfg.templates {
		kind, err := ParseKind(t.Name)
		if err != nil {
			return nil, fmt.Errorf("docrender: template %q: %w", t.Name, err)
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		r.templates[kind] = t.Clone()
	}
	for kind, positions := range cfg.positions {
		t, ok := r.templates[kind]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
		}
		if unknown := t.Override(positions); len(unknown) > 0 {
			return nil, fmt.Errorf("docrender: %s: unknown elements %s", kind, strings.Join(unknown, ", "))
		}
	}
	r.templates[DeliveryNote].Paginate = cfg.paginate
	return r, nil
}

// Template returns a copy of the template used for kind.
func (r *Renderer) Template(kind Kind) (*doctpl.Template, error) {
	t, ok := r.templates[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return t.Clone(), nil
}

// LayoutDeliveryNote positions n without encoding it.
func (r *Renderer) LayoutDeliveryNote(n *record.DeliveryNote) (*layout.Document, error) {
	return r.layout(DeliveryNote, deliveryNoteData(n))
}

// LayoutQuotation positions q without encoding it.
func (r *Renderer) LayoutQuotation(q *record.Quotation) (*layout.Document, error) {
	return r.layout(Quotation, quotationData(q))
}

// RenderDeliveryNote writes n to w as PDF.
func (r *Renderer) RenderDeliveryNote(w io.Writer, n *record.DeliveryNote) error {
	doc, err := r.LayoutDeliveryNote(n)
	if err != nil {
		return err
	}
	return r.encode(w, DeliveryNote, doc)
}

// RenderQuotation writes q to w as PDF.
func (r *Renderer) RenderQuotation(w io.Writer, q *record.Quotation) error {
	doc, err := r.LayoutQuotation(q)
	if err != nil {
		return err
	}
	return r.encode(w, Quotation, doc)
}

// Parse validates body as a record of kind and returns its file name.
func (r *Renderer) Parse(kind Kind, body []byte) (string, error) {
	_, name, err := r.parse(kind, body)
	return name, err
}

// Layout parses body as a record of kind and positions it.
func (r *Renderer) Layout(kind Kind, body []byte) (*layout.Document, error) {
	data, _, err := r.parse(kind, body)
	if err != nil {
		return nil, err
	}
	return r.layout(kind, data)
}

// Render parses body as a record of kind and writes it to w as PDF.
// Nothing is written to w when any stage fails.
func (r *Renderer) Render(w io.Writer, kind Kind, body []byte) (Result, error) {
	data, name, err := r.parse(kind, body)
	if err != nil {
		return Result{}, err
	}
	doc, err := r.layout(kind, data)
	if err != nil {
		return Result{}, err
	}
	var buf bytes.Buffer
	if err := r.encode(&buf, kind, doc); err != nil {
		return Result{}, err
	}
	res := Result{Kind: kind, FileName: name, Pages: doc.PageCount(), Bytes: buf.Len()}
	if _, err := buf.WriteTo(w); err != nil {
		return Result{}, newRenderError(kind, "write", err)
	}
	r.logger.Info("rendered", "kind", kind, "file", name, "pages", res.Pages, "bytes", res.Bytes)
	return res, nil
}

func (r *Renderer) parse(kind Kind, body []byte) (doctpl.Data, string, error) {
	switch kind {
	case DeliveryNote:
		n, err := record.ParseDeliveryNote(body)
		if err != nil {
			return doctpl.Data{}, "", newRenderError(kind, "parse", err)
		}
		return deliveryNoteData(n), n.FileName, nil
	case Quotation:
		q, err := record.ParseQuotation(body)
		if err != nil {
			return doctpl.Data{}, "", newRenderError(kind, "parse", err)
		}
		return quotationData(q), q.FileName, nil
	}
	return doctpl.Data{}, "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func (r *Renderer) layout(kind Kind, data doctpl.Data) (*layout.Document, error) {
	t, ok := r.templates[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	start := time.Now()
	m := r.cfg.metrics()
	doc, err := doctpl.Build(t, data, m, doctpl.Options{
		OptionalRule: r.cfg.optionalRule,
		Barcodes:     r.cfg.barcodes,
	})
	if err == nil {
		if me, ok := m.(interface{ Err() error }); ok {
			err = me.Err()
		}
	}
	if err != nil {
		return nil, newRenderError(kind, "layout", err)
	}
	r.logger.Debug("laid out", "kind", kind, "pages", doc.PageCount(), "ops", doc.OpCount(), "elapsed", time.Since(start))
	return doc, nil
}

func (r *Renderer) encode(w io.Writer, kind Kind, doc *layout.Document) error {
	opts := []canvas.Option{
		canvas.WithCompression(r.cfg.compress),
		canvas.WithCreator(Creator),
	}
	if r.cfg.clock != nil {
		opts = append(opts, canvas.WithCreationDate(r.cfg.clock()))
	}
	if r.cfg.logo != nil {
		opts = append(opts, canvas.WithImage("logo", *r.cfg.logo))
	}
	if kind == DeliveryNote && r.cfg.stationery != "" {
		opts = append(opts, canvas.WithStationery(r.cfg.stationery))
	}
	if err := canvas.NewEncoder(opts...).Encode(w, doc); err != nil {
		return newRenderError(kind, "encode", err)
	}
	return nil
}

// Fields returns the sorted record fields read by the template of kind.
func (r *Renderer) Fields(kind Kind) []string {
	t, ok := r.templates[kind]
	if !ok {
		return nil
	}
	return t.Keys()
}
