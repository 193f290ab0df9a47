package docrender

import (
	"strconv"

	"github.com/lvillar/docrender/doctpl"
	"github.com/lvillar/docrender/record"
)

// deliveryNoteData flattens n into the fields read by the delivery note
// template.
func deliveryNoteData(n *record.DeliveryNote) doctpl.Data {
	items := make([]map[string]string, len(n.Products))
	for i, p := range n.Products {
		items[i] = map[string]string{
			"cantidad":   p.Quantity,
			"product_id": p.ID,
			"product":    p.Description,
			"n_serie":    p.Serial,
		}
	}
	return doctpl.Data{
		Fields: map[string]string{
			"file_name":      n.FileName,
			"cliente":        n.Client,
			"remito_numero":  n.Number,
			"cuit":           n.TaxID,
			"fecha":          n.Date,
			"condicion_pago": n.PaymentTerms,
			"direccion":      n.Address,
			"condicion_iva":  n.TaxCondition,
		},
		Items: items,
	}
}

// quotationData flattens q into the fields read by the quotation template.
// Each option becomes a group, in the order the record already sorted.
func quotationData(q *record.Quotation) doctpl.Data {
	groups := make([]doctpl.Data, len(q.Options))
	for i, o := range q.Options {
		items := make([]map[string]string, len(o.Items))
		for j, it := range o.Items {
			items[j] = map[string]string{
				"producto":             it.Description,
				"cantidad":             strconv.Itoa(it.Quantity),
				"precio_siva_unitario": it.UnitPrice,
				"precio_siva_total":    it.LineTotal,
			}
		}
		groups[i] = doctpl.Data{
			Fields: map[string]string{
				"id_opcion":         o.Label,
				"descuento_gral":    o.Discount,
				"aclaracion_moneda": o.CurrencyNote,
				"precio_final_siva": o.Subtotal,
				"iva":               o.Tax,
				"precio_final":      o.Total,
				doctpl.KeyHeading:   doctpl.OptionHeading(o.Label, o.Discount, o.CurrencyNote),
				doctpl.KeyCurrency:  doctpl.CurrencySymbol(o.CurrencyNote),
			},
			Items: items,
		}
	}
	return doctpl.Data{
		Fields: map[string]string{
			"file_name":              q.FileName,
			"cliente":                q.Client,
			"remito_numero":          q.Number,
			"cuit":                   q.TaxID,
			"fecha":                  q.Date,
			"validez_oferta":         q.ValidityDays,
			"metodo_pago":            q.PaymentMethod,
			"condicion_de_pago":      q.PaymentTerms,
			"plazo_estimado_entrega": q.DeliveryDays,
			"direccion":              q.Address,
			"observaciones":          q.Observations,
		},
		Groups: groups,
	}
}
