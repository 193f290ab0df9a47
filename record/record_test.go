package record

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const deliveryJSON = `{
  "file_name": "remito-4242",
  "cliente": "Cooperativa Eléctrica",
  "remito_numero": 4242,
  "cuit": "30-12345678-9",
  "fecha": "14/10/2026",
  "condicion_pago": "",
  "direccion": "Av. Rivadavia 1234",
  "condicion_iva": "Responsable Inscripto",
  "productos_pedidos": [
    {"cantidad": 2, "product_id": "AB-1", "product": "Medidor trifásico", "n_serie": "SN-1"},
    {"product": "Precinto"}
  ]
}`

func quotationRecord() map[string]any {
	item := func(desc string, qty any) map[string]any {
		return map[string]any{"producto": desc, "cantidad": qty, "precio_siva_unitario": "100.50", "precio_siva_total": "201.00"}
	}
	option := func(id any, desc string) map[string]any {
		return map[string]any{
			"id_opcion":         id,
			"aclaracion_moneda": "Precio en Dólares",
			"descuento_gral":    "",
			"productos_pedidos": []any{item(desc, json.Number("2"))},
			"precio_final_siva": "201.00",
			"iva":               "42.21",
			"precio_final":      "243.21",
		}
	}
	return map[string]any{
		"file_name":              "presupuesto-42",
		"cliente":                "Municipalidad de Morón",
		"remito_numero":          "P-42",
		"cuit":                   "30-99999999-7",
		"fecha":                  "14/10/2026",
		"validez_oferta":         "15",
		"metodo_pago":            "Transferencia",
		"condicion_de_pago":      "30",
		"plazo_estimado_entrega": "1.000",
		"direccion":              "Belgrano 50",
		"observaciones":          "",
		"opciones":               []any{option("3", "c"), option(1.0, "a"), option(json.Number("2"), "b")},
	}
}

func TestParseDeliveryNote(t *testing.T) {
	n, err := ParseDeliveryNote([]byte(deliveryJSON))
	if err != nil {
		t.Fatal(err)
	}
	want := &DeliveryNote{
		FileName:     "remito-4242",
		Client:       "Cooperativa Eléctrica",
		Number:       "4242",
		TaxID:        "30-12345678-9",
		Date:         "14/10/2026",
		Address:      "Av. Rivadavia 1234",
		TaxCondition: "Responsable Inscripto",
		Products: []DeliveredProduct{
			{Quantity: "2", ID: "AB-1", Description: "Medidor trifásico", Serial: "SN-1"},
			{Description: "Precinto"},
		},
	}
	if diff := cmp.Diff(want, n); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDeliveryNoteMissingField(t *testing.T) {
	var m map[string]any
	if err := json.Unmarshal([]byte(deliveryJSON), &m); err != nil {
		t.Fatal(err)
	}
	delete(m, "cuit")
	delete(m, "direccion")

	_, err := DeliveryNoteFromMap(m)
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingFieldError", err)
	}
	if missing.Field != "cuit" {
		t.Errorf("field = %q, want the first missing field %q", missing.Field, "cuit")
	}
	if !IsInputError(err) {
		t.Error("missing field is an input error")
	}
	if err.Error() != "Missing required field: cuit" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestDeliveryNoteNormalizesText(t *testing.T) {
	decomposed := "Jose\u0301 Mari\u0301a"
	body := strings.Replace(deliveryJSON, "Cooperativa Eléctrica", decomposed, 1)
	n, err := ParseDeliveryNote([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if want := "Jos\u00e9 Mar\u00eda"; n.Client != want {
		t.Errorf("client = %q, want NFC %q", n.Client, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"empty", "", ErrNoData},
		{"null", "null", ErrNoData},
		{"empty object", " {} ", ErrNoData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDeliveryNote([]byte(tt.body))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	for _, body := range []string{"[1,2]", "{", `{"cliente": {"a": 1}, "remito_numero": 1, "cuit": 1, "fecha": 1, "condicion_pago": 1, "direccion": 1, "condicion_iva": 1, "productos_pedidos": []}`} {
		_, err := ParseDeliveryNote([]byte(body))
		var invalid *InvalidValueError
		if !errors.As(err, &invalid) {
			t.Errorf("%s: err = %v, want InvalidValueError", body, err)
		}
	}
}

func TestParseQuotationSortsOptions(t *testing.T) {
	q, err := QuotationFromMap(quotationRecord())
	if err != nil {
		t.Fatal(err)
	}
	var ids []int
	var descs []string
	for _, o := range q.Options {
		ids = append(ids, o.ID)
		descs = append(descs, o.Items[0].Description)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, ids); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, descs); diff != "" {
		t.Errorf("items follow their option (-want +got):\n%s", diff)
	}
	if q.Options[0].Label != "1" || q.Options[0].Items[0].Quantity != 2 {
		t.Errorf("option 1 = %+v", q.Options[0])
	}
}

func TestSortOptionsStable(t *testing.T) {
	opts := []Option{{ID: 2, Label: "first 2"}, {ID: 1, Label: "1"}, {ID: 2, Label: "second 2"}, {ID: 0, Label: "0"}}
	SortOptions(opts)
	var got []string
	for _, o := range opts {
		got = append(got, o.Label)
	}
	if diff := cmp.Diff([]string{"0", "1", "first 2", "second 2"}, got); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestQuotationValidation(t *testing.T) {
	option := func(rec map[string]any) map[string]any {
		return rec["opciones"].([]any)[1].(map[string]any)
	}
	item := func(rec map[string]any) map[string]any {
		return option(rec)["productos_pedidos"].([]any)[0].(map[string]any)
	}

	tests := []struct {
		name    string
		mutate  func(map[string]any)
		missing string
		invalid string
	}{
		{"missing file name", func(r map[string]any) { delete(r, "file_name") }, "file_name", ""},
		{"missing observations", func(r map[string]any) { delete(r, "observaciones") }, "observaciones", ""},
		{"validity not numeric", func(r map[string]any) { r["validez_oferta"] = "quince" }, "", "validez_oferta"},
		{"validity empty", func(r map[string]any) { r["validez_oferta"] = "" }, "", "validez_oferta"},
		{"delivery not numeric", func(r map[string]any) { r["plazo_estimado_entrega"] = "20 días" }, "", "plazo_estimado_entrega"},
		{"option id", func(r map[string]any) { option(r)["id_opcion"] = "uno" }, "", "opciones[1].id_opcion"},
		{"option missing iva", func(r map[string]any) { delete(option(r), "iva") }, "opciones[1].iva", ""},
		{"discount", func(r map[string]any) { option(r)["descuento_gral"] = "mucho" }, "", "opciones[1].descuento_gral"},
		{"no products", func(r map[string]any) { option(r)["productos_pedidos"] = []any{} }, "", "opciones[1].productos_pedidos"},
		{"zero quantity", func(r map[string]any) { item(r)["cantidad"] = json.Number("0") }, "", "opciones[1].productos_pedidos[0].cantidad"},
		{"fractional quantity", func(r map[string]any) { item(r)["cantidad"] = "1.5" }, "", "opciones[1].productos_pedidos[0].cantidad"},
		{"unit price", func(r map[string]any) { item(r)["precio_siva_unitario"] = "n/a" }, "", "opciones[1].productos_pedidos[0].precio_siva_unitario"},
		{"missing description", func(r map[string]any) { delete(item(r), "producto") }, "opciones[1].productos_pedidos[0].producto", ""},
		{"options not a list", func(r map[string]any) { r["opciones"] = "none" }, "", "opciones"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := quotationRecord()
			tt.mutate(rec)
			_, err := QuotationFromMap(rec)
			if !IsInputError(err) {
				t.Fatalf("err = %v, want an input error", err)
			}
			var missing *MissingFieldError
			var invalid *InvalidValueError
			switch {
			case tt.missing != "":
				if !errors.As(err, &missing) || missing.Field != tt.missing {
					t.Errorf("err = %v, want missing %s", err, tt.missing)
				}
			case !errors.As(err, &invalid) || invalid.Field != tt.invalid:
				t.Errorf("err = %v, want invalid %s", err, tt.invalid)
			}
		})
	}
}

func TestQuotationAcceptsThousandsSeparators(t *testing.T) {
	q, err := QuotationFromMap(quotationRecord())
	if err != nil {
		t.Fatal(err)
	}
	if q.DeliveryDays != "1.000" {
		t.Errorf("delivery days = %q", q.DeliveryDays)
	}
}

func TestFileName(t *testing.T) {
	name, ok, err := FileName([]byte(deliveryJSON))
	if err != nil || !ok || name != "remito-4242" {
		t.Errorf("FileName = %q, %v, %v", name, ok, err)
	}
	_, ok, err = FileName([]byte(`{"cliente": "x"}`))
	if err != nil || ok {
		t.Errorf("absent file name: ok=%v err=%v", ok, err)
	}
}
