package docrender

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/lvillar/docrender/doctpl"
	"github.com/lvillar/docrender/layout"
	"github.com/lvillar/docrender/record"
)

func fixedMetrics() layout.Metrics { return layout.FixedAdvance(2) }

func newRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(append([]Option{WithMetrics(fixedMetrics)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func deliveryBody(products int) []byte {
	var items []map[string]any
	for i := 1; i <= products; i++ {
		items = append(items, map[string]any{
			"cantidad":   i,
			"product_id": fmt.Sprintf("P-%03d", i),
			"product":    "Medidor monofásico",
			"n_serie":    "",
		})
	}
	body, _ := json.Marshal(map[string]any{
		"file_name":         "remito-4242",
		"cliente":           "Cooperativa Eléctrica",
		"remito_numero":     "0001-00004242",
		"cuit":              "30-12345678-9",
		"fecha":             "14/10/2026",
		"condicion_pago":    "30",
		"direccion":         "Av. Rivadavia 1234",
		"condicion_iva":     "Responsable Inscripto",
		"productos_pedidos": items,
	})
	return body
}

func quotationBody(ids ...string) []byte {
	var options []map[string]any
	for _, id := range ids {
		options = append(options, map[string]any{
			"id_opcion":         id,
			"aclaracion_moneda": "Precio en Dólares",
			"descuento_gral":    "",
			"productos_pedidos": []map[string]any{{
				"producto":             "Transformador " + id,
				"cantidad":             2,
				"precio_siva_unitario": "100.50",
				"precio_siva_total":    "201.00",
			}},
			"precio_final_siva": "201.00",
			"iva":               "42.21",
			"precio_final":      "243.21",
		})
	}
	body, _ := json.Marshal(map[string]any{
		"file_name":              "presupuesto-42",
		"cliente":                "Municipalidad de Morón",
		"remito_numero":          "P-42",
		"cuit":                   "30-99999999-7",
		"fecha":                  "14/10/2026",
		"validez_oferta":         "15",
		"metodo_pago":            "Transferencia",
		"condicion_de_pago":      "30",
		"plazo_estimado_entrega": "20",
		"direccion":              "Belgrano 50",
		"observaciones":          "",
		"opciones":               options,
	})
	return body
}

func TestRenderDeliveryNote(t *testing.T) {
	r := newRenderer(t)
	var buf bytes.Buffer
	res, err := r.Render(&buf, DeliveryNote, deliveryBody(3))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header")
	}
	want := Result{Kind: DeliveryNote, FileName: "remito-4242", Pages: 1, Bytes: buf.Len()}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Result mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderQuotation(t *testing.T) {
	r := newRenderer(t)
	var buf bytes.Buffer
	res, err := r.Render(&buf, Quotation, quotationBody("1"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.FileName != "presupuesto-42" || res.Pages != 1 {
		t.Errorf("got %+v", res)
	}
}

func TestRenderRejectsInvalidRecord(t *testing.T) {
	var body map[string]any
	if err := json.Unmarshal(deliveryBody(1), &body); err != nil {
		t.Fatal(err)
	}
	delete(body, "cuit")
	raw, _ := json.Marshal(body)

	r := newRenderer(t)
	var buf bytes.Buffer
	_, err := r.Render(&buf, DeliveryNote, raw)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsInputError(err) {
		t.Errorf("IsInputError(%v) = false", err)
	}
	var missing *record.MissingFieldError
	if !errors.As(err, &missing) || missing.Field != "cuit" {
		t.Errorf("err = %v, want missing cuit", err)
	}
	var rerr *RenderError
	if !errors.As(err, &rerr) || rerr.Op != "parse" {
		t.Errorf("err = %v, want parse stage", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes on failure", buf.Len())
	}
}

func TestRenderUnknownKind(t *testing.T) {
	r := newRenderer(t)
	_, err := r.Render(&bytes.Buffer{}, Kind("factura"), []byte(`{}`))
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("err = %v, want ErrUnknownKind", err)
	}
}

func TestLayoutOverflowIsNotInputError(t *testing.T) {
	var body map[string]any
	_ = json.Unmarshal(deliveryBody(1), &body)
	body["productos_pedidos"] = []map[string]any{{"product": strings.Repeat("palabra ", 900)}}
	raw, _ := json.Marshal(body)

	r := newRenderer(t)
	_, err := r.Layout(DeliveryNote, raw)
	var overflow *layout.LayoutOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("err = %v, want LayoutOverflowError", err)
	}
	if IsInputError(err) {
		t.Error("overflow reported as input error")
	}
}

func TestQuotationOptionsInIDOrder(t *testing.T) {
	r := newRenderer(t)
	doc, err := r.Layout(Quotation, quotationBody("3", "1", "2"))
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	var headings []string
	for _, txt := range doc.Pages[0].Texts() {
		if strings.HasPrefix(txt.Text, "Opción ") {
			headings = append(headings, txt.Text)
		}
	}
	want := []string{
		"Opción 1 - Moneda: Precio en Dólares",
		"Opción 2 - Moneda: Precio en Dólares",
		"Opción 3 - Moneda: Precio en Dólares",
	}
	if diff := cmp.Diff(want, headings); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
	if pages := doc.FindText("U$S100.50"); len(pages) == 0 {
		t.Error("unit price not printed with the dollar prefix")
	}
}

func TestDeliveryItemPagination(t *testing.T) {
	body := deliveryBody(40)

	paged, err := newRenderer(t).Layout(DeliveryNote, body)
	if err != nil {
		t.Fatal(err)
	}
	if paged.PageCount() < 2 {
		t.Errorf("paginated layout has %d pages, want at least 2", paged.PageCount())
	}

	flat, err := newRenderer(t, WithDeliveryItemPagination(false)).Layout(DeliveryNote, body)
	if err != nil {
		t.Fatal(err)
	}
	if flat.PageCount() != 1 {
		t.Errorf("unpaginated layout has %d pages, want 1", flat.PageCount())
	}
}

func TestOptionalFieldRule(t *testing.T) {
	var body map[string]any
	_ = json.Unmarshal(deliveryBody(1), &body)
	body["condicion_pago"] = ""
	raw, _ := json.Marshal(body)

	tests := []struct {
		rule doctpl.OptionalRule
		want bool
	}{
		{doctpl.AsObserved, true},
		{doctpl.WhenPresent, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.rule), func(t *testing.T) {
			doc, err := newRenderer(t, WithOptionalFieldRule(tt.rule)).Layout(DeliveryNote, raw)
			if err != nil {
				t.Fatal(err)
			}
			got := len(doc.FindText("Pago a  días")) > 0
			if got != tt.want {
				t.Errorf("payment line printed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFieldPositions(t *testing.T) {
	x, y := 60.0, 80.0
	r := newRenderer(t, WithFieldPositions(DeliveryNote, map[string]doctpl.Position{
		"cliente": {X: &x, Y: &y},
	}))
	doc, err := r.Layout(DeliveryNote, deliveryBody(1))
	if err != nil {
		t.Fatal(err)
	}
	for _, txt := range doc.Pages[0].Texts() {
		if txt.Text == "Cooperativa Eléctrica" {
			if txt.X != x || txt.Y != y {
				t.Errorf("cliente at (%v, %v), want (%v, %v)", txt.X, txt.Y, x, y)
			}
			return
		}
	}
	t.Fatal("cliente not printed")
}

func TestNewRejectsUnknownElement(t *testing.T) {
	x := 1.0
	_, err := New(WithFieldPositions(Quotation, map[string]doctpl.Position{"sello": {X: &x}}))
	if err == nil || !strings.Contains(err.Error(), "sello") {
		t.Errorf("err = %v, want unknown element sello", err)
	}
}

func TestNewRejectsInvalidTemplate(t *testing.T) {
	bad := doctpl.DeliveryNote()
	bad.Sections = append(bad.Sections, doctpl.Section{Type: "carousel"})
	if _, err := New(WithTemplate(bad)); err == nil {
		t.Error("expected error for unknown section type")
	}
}

func TestRenderDeterministic(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }
	r := newRenderer(t, WithClock(clock), WithBarcodes(true))

	var a, b bytes.Buffer
	if _, err := r.Render(&a, Quotation, quotationBody("1", "2")); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Render(&b, Quotation, quotationBody("1", "2")); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("equal records rendered to different bytes")
	}
}

func TestRenderLogsLayoutStats(t *testing.T) {
	var out bytes.Buffer
	logger := log.NewWithOptions(&out, log.Options{Level: log.DebugLevel})
	r := newRenderer(t, WithLogger(logger))
	if _, err := r.Render(io.Discard, DeliveryNote, deliveryBody(2)); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"laid out", "kind=delivery-note", "pages=1", "ops=", "elapsed=", "rendered"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("log missing %q:\n%s", want, out.String())
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		err  bool
	}{
		{"delivery-note", DeliveryNote, false},
		{"Remito", DeliveryNote, false},
		{"quotation", Quotation, false},
		{" presupuesto ", Quotation, false},
		{"factura", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParseKind(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestFields(t *testing.T) {
	r := newRenderer(t)
	fields := r.Fields(DeliveryNote)
	for _, want := range []string{"cliente", "cuit", "n_serie", "product"} {
		found := false
		for _, f := range fields {
			if f == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Fields(DeliveryNote) = %v, missing %q", fields, want)
		}
	}
}
