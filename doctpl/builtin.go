package doctpl

import (
	"strings"

	"github.com/lvillar/docrender/layout"
)

// Built-in template names.
const (
	DeliveryNoteName = "delivery-note"
	QuotationName    = "quotation"
)

// Field keys shared by the built-in templates and the record assemblers.
const (
	KeyCurrency = "moneda_simbolo"
	KeyHeading  = "encabezado"
)

var (
	green     = layout.Color{G: 150}
	gray      = layout.Gray(128)
	lightGray = layout.Gray(240)
	thin      = &layout.Stroke{Width: 0.2}
	thick     = &layout.Stroke{Color: green, Width: 0.5}
)

func helvetica(style string, size, leading float64) *layout.Font {
	return &layout.Font{Family: "Helvetica", Style: style, Size: size, Leading: leading}
}

// DeliveryNote returns the delivery note template, printed over pre-printed
// stationery. Every call returns a fresh copy.
func DeliveryNote() *Template {
	field := func(name, text string, x, y float64) Element {
		return Element{Type: "text", Name: name, Text: text, X: x, Y: y, Height: 10}
	}
	payment := field("condicion_pago", "Pago a {condicion_pago} días", 50, 110)
	payment.Optional = "condicion_pago"

	return &Template{
		Name:       DeliveryNoteName,
		Title:      "Remito {remito_numero}",
		Page:       layout.A4(layout.Margins{Top: 10, Right: 10, Bottom: 15, Left: 10}),
		Font:       layout.Font{Family: "Helvetica", Size: 10, Leading: 5},
		ContentTop: 135,
		Paginate:   true,
		Sections: []Section{
			{Type: "fields", Elements: []Element{
				field("cliente", "{cliente}", 40, 75),
				field("remito_numero", "{remito_numero}", 150, 110),
				field("cuit", "{cuit}", 150, 100),
				field("fecha", "{fecha}", 145, 40),
				payment,
				field("direccion", "{direccion}", 40, 85),
				field("condicion_iva", "{condicion_iva}", 40, 100),
				{Type: "barcode", Name: "barcode", Symbology: layout.Code128, Text: "{remito_numero}", X: 150, Y: 120, Width: 40, Height: 8},
			}},
			{Type: "table", Table: &TableSpec{
				X:            10,
				Y:            135,
				MinRowHeight: 5,
				Columns: []ColumnSpec{
					{Name: "cantidad", Value: "{cantidad}", Width: 15},
					{Name: "product_id", Value: "{product_id}", Width: 25},
					{Name: "product", Value: "{product}", Width: 100, Wrap: true},
					{Name: "n_serie", Value: "N° serie {n_serie}", Width: 30, Stack: true, Optional: "n_serie"},
				},
			}},
		},
	}
}

// Quotation returns the commercial quotation template. Every call returns
// a fresh copy.
func Quotation() *Template {
	bold10 := helvetica("B", 10, 6)
	regular10 := helvetica("", 10, 6)

	return &Template{
		Name:       QuotationName,
		Title:      "Propuesta comercial {remito_numero}",
		Page:       layout.A4(layout.Margins{Top: 10, Right: 10, Bottom: 35, Left: 10}),
		Font:       layout.Font{Family: "Helvetica", Size: 10, Leading: 5},
		ContentTop: 70,
		Paginate:   true,
		Chrome: []Element{
			{Type: "image", Name: "logo", Image: "logo", X: 10, Y: 8, Width: 90},
			{Type: "barcode", Name: "barcode", Symbology: layout.QR, Text: "{remito_numero}", X: 105, Y: 10, Width: 20, Height: 20},
			{Type: "text", Name: "titulo", Text: "Propuesta comercial N°", X: 130, Y: 10, Width: 70, Height: 8, Align: layout.AlignRight, Font: helvetica("B", 12, 0)},
			{Type: "text", Name: "remito_numero", Text: "{remito_numero}", X: 130, Y: 18, Width: 70, Height: 8, Align: layout.AlignRight, Font: helvetica("", 12, 0)},
			{Type: "text", Name: "fecha_label", Text: "Fecha:", X: 130, Y: 26, Width: 30, Height: 6, Font: bold10},
			{Type: "text", Name: "fecha", Text: "{fecha}", X: 160, Y: 26, Width: 40, Height: 6, Font: regular10},
			{Type: "text", Name: "validez_label", Text: "Validez oferta:", X: 130, Y: 32, Width: 30, Height: 6, Font: bold10},
			{Type: "text", Name: "validez_oferta", Text: "{validez_oferta} días", X: 160, Y: 32, Width: 40, Height: 6, Font: regular10},
			{Type: "rect", Name: "cliente_box", X: 10, Y: 43, Width: 190, Height: 20, Border: thick},
			{Type: "text", Name: "cliente_label", Text: "Cliente:", X: 12, Y: 45, Width: 20, Height: 6, Font: bold10},
			{Type: "text", Name: "cliente", Text: "{cliente}", X: 32, Y: 45, Width: 165, Wrap: true, Font: regular10},
			{Type: "text", Name: "cuit_label", Text: "CUIT:", X: 12, Y: 52, Width: 15, Height: 6, Font: bold10},
			{Type: "text", Name: "cuit", Text: "{cuit}", X: 27, Y: 52, Width: 60, Height: 6, Font: regular10},
			{Type: "line", Name: "header_rule", X: 10, Y: 67, X2: 200, Y2: 67, Border: thin},
			{Type: "line", Name: "footer_rule", X: 10, Y: 270, X2: 200, Y2: 270, Border: thick},
			{Type: "text", Name: "footer", Text: footerText, X: 10, Y: 272, Width: 190, Wrap: true, Align: layout.AlignCenter, Font: helvetica("B", 8, 4), Color: &gray},
			{Type: "text", Name: "pagina", Text: "Página {page}", X: 10, Y: 262, Width: 190, Height: 10, Align: layout.AlignRight, Font: helvetica("I", 8, 0)},
		},
		Sections: []Section{
			{Type: "groups", Sections: []Section{
				{Type: "band", Before: 5, Text: "{" + KeyHeading + "}", Height: 8, Font: helvetica("B", 10, 0), Fill: &lightGray, Border: thin, KeepWithNext: 12},
				{Type: "table", Table: &TableSpec{
					X:            10,
					Header:       true,
					HeaderFont:   helvetica("B", 9, 6),
					Font:         helvetica("", 9, 5),
					Border:       thin,
					MinRowHeight: 6,
					RowGap:       0.5,
					RepeatHeader: true,
					Columns: []ColumnSpec{
						{Name: "cantidad", Label: "Cant.", Value: "{cantidad}", Width: 15, Align: layout.AlignCenter},
						{Name: "producto", Label: "Descripción", Value: "{producto}", Width: 95, Wrap: true},
						{Name: "precio_siva_unitario", Label: "Precio Unit.", Value: "{" + KeyCurrency + "}{precio_siva_unitario}", Width: 40, Align: layout.AlignRight},
						{Name: "precio_siva_total", Label: "Subtotal", Value: "{" + KeyCurrency + "}{precio_siva_total}", Width: 40, Align: layout.AlignRight},
					},
				}},
				{Type: "totals", X: 10, LabelWidth: 150, ValueWidth: 40, Lines: []Line{
					{Label: "Subtotal:", Value: "{" + KeyCurrency + "}{precio_final_siva}", Height: 7, Font: helvetica("B", 9, 0)},
					{Label: "IVA:", Value: "{" + KeyCurrency + "}{iva}", Height: 7, Font: helvetica("B", 9, 0)},
					{Label: "TOTAL:", Value: "{" + KeyCurrency + "}{precio_final}", Height: 8, Font: helvetica("B", 10, 0)},
				}},
			}},
			{Type: "pairs", Before: 10, Title: "Condiciones Comerciales", TitleFont: helvetica("B", 12, 0), TitleHeight: 8,
				X: 10, LabelWidth: 40, ValueWidth: 150, LabelFont: bold10, Font: regular10, Gap: 2,
				Lines: []Line{
					{Label: "Condición de pago:", Value: "{condicion_de_pago} días", When: "condicion_de_pago"},
					{Label: "Método de pago:", Value: "{metodo_pago}"},
					{Label: "Plazo de entrega:", Value: "{plazo_estimado_entrega} días"},
					{Label: "Dirección de envío:", Value: "{direccion}"},
				}},
			{Type: "paragraph", When: "observaciones", Before: 5, Title: "Observaciones:", TitleFont: bold10, TitleHeight: 6,
				Text: "{observaciones}", Font: helvetica("", 9, 5)},
			{Type: "paragraph", Before: 10, Text: disclaimerText, Font: helvetica("I", 9, 5)},
		},
	}
}

const footerText = "Oran 3196 esq. colectora acceso oeste - Ituzaingo - Bs. As.\n" +
	"CUIT: 30-71074699-7\n" +
	"Telefono: 5263-9002 - info@energiaglobal.com.ar"

const disclaimerText = "Las cotizaciones en pesos argentinos (ARS) serán convertidas a dólares Banco Nación (USD) " +
	"al tipo de cambio vigente al momento de su aceptación. El precio final en pesos argentinos " +
	"se ajustará diariamente según la cotización del dólar oficial hasta la cancelación total de la deuda."

// CurrencySymbol returns the price prefix for a currency annotation:
// "U$S" when it mentions dollars, "$" otherwise.
func CurrencySymbol(annotation string) string {
	if strings.Contains(annotation, "Dólar") {
		return "U$S"
	}
	return "$"
}

// OptionHeading returns the band text of a quotation option. The discount
// segment is present only when the trimmed discount is non-empty.
func OptionHeading(id, discount, currency string) string {
	var b strings.Builder
	b.WriteString("Opción ")
	b.WriteString(id)
	if strings.TrimSpace(discount) != "" {
		b.WriteString(" - ")
		b.WriteString(discount)
	}
	b.WriteString(" - Moneda: ")
	b.WriteString(currency)
	return b.String()
}

// Builtin returns the named built-in template.
func Builtin(name string) (*Template, bool) {
	switch name {
	case DeliveryNoteName:
		return DeliveryNote(), true
	case QuotationName:
		return Quotation(), true
	}
	return nil, false
}
