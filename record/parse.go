package record

import (
	"sort"
)

// Required top-level fields, in the order they are checked.
var (
	DeliveryNoteFields = []string{
		"cliente", "remito_numero", "cuit", "fecha", "condicion_pago",
		"direccion", "condicion_iva", "productos_pedidos",
	}
	QuotationFields = []string{
		"file_name", "cliente", "remito_numero", "cuit", "fecha",
		"validez_oferta", "metodo_pago", "condicion_de_pago",
		"plazo_estimado_entrega", "direccion", "opciones", "observaciones",
	}
)

// ParseDeliveryNote decodes and validates a delivery note record.
func ParseDeliveryNote(data []byte) (*DeliveryNote, error) {
	o, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	return deliveryNote(o)
}

// DeliveryNoteFromMap validates an already decoded delivery note record.
func DeliveryNoteFromMap(m map[string]any) (*DeliveryNote, error) {
	o, err := fromMap(m)
	if err != nil {
		return nil, err
	}
	return deliveryNote(o)
}

func deliveryNote(o object) (*DeliveryNote, error) {
	if err := o.require(DeliveryNoteFields...); err != nil {
		return nil, err
	}

	n := &DeliveryNote{}
	err := o.bind([]binding{
		{"file_name", &n.FileName},
		{"cliente", &n.Client},
		{"remito_numero", &n.Number},
		{"cuit", &n.TaxID},
		{"fecha", &n.Date},
		{"condicion_pago", &n.PaymentTerms},
		{"direccion", &n.Address},
		{"condicion_iva", &n.TaxCondition},
	})
	if err != nil {
		return nil, err
	}

	products, err := o.list("productos_pedidos")
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		var dp DeliveredProduct
		err := p.bind([]binding{
			{"cantidad", &dp.Quantity},
			{"product_id", &dp.ID},
			{"product", &dp.Description},
			{"n_serie", &dp.Serial},
		})
		if err != nil {
			return nil, err
		}
		n.Products = append(n.Products, dp)
	}
	return n, nil
}

// ParseQuotation decodes and validates a quotation record.
func ParseQuotation(data []byte) (*Quotation, error) {
	o, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	return quotation(o)
}

// QuotationFromMap validates an already decoded quotation record.
func QuotationFromMap(m map[string]any) (*Quotation, error) {
	o, err := fromMap(m)
	if err != nil {
		return nil, err
	}
	return quotation(o)
}

func quotation(o object) (*Quotation, error) {
	if err := o.require(QuotationFields...); err != nil {
		return nil, err
	}

	q := &Quotation{}
	err := o.bind([]binding{
		{"file_name", &q.FileName},
		{"cliente", &q.Client},
		{"remito_numero", &q.Number},
		{"cuit", &q.TaxID},
		{"fecha", &q.Date},
		{"validez_oferta", &q.ValidityDays},
		{"metodo_pago", &q.PaymentMethod},
		{"condicion_de_pago", &q.PaymentTerms},
		{"plazo_estimado_entrega", &q.DeliveryDays},
		{"direccion", &q.Address},
		{"observaciones", &q.Observations},
	})
	if err != nil {
		return nil, err
	}

	if !digits(q.ValidityDays) {
		return nil, &InvalidValueError{Field: "validez_oferta", Value: q.ValidityDays, Reason: "Validez de oferta debe ser un número válido"}
	}
	if !digits(q.DeliveryDays) {
		return nil, &InvalidValueError{Field: "plazo_estimado_entrega", Value: q.DeliveryDays, Reason: "Plazo estimado de entrega debe ser un número válido"}
	}

	options, err := o.list("opciones")
	if err != nil {
		return nil, err
	}
	for _, opt := range options {
		parsed, err := option(opt)
		if err != nil {
			return nil, err
		}
		q.Options = append(q.Options, parsed)
	}
	SortOptions(q.Options)
	return q, nil
}

func option(o object) (Option, error) {
	var opt Option
	required := []string{"id_opcion", "aclaracion_moneda", "descuento_gral", "productos_pedidos", "precio_final_siva", "iva", "precio_final"}
	if err := o.require(required...); err != nil {
		return opt, err
	}
	err := o.bind([]binding{
		{"id_opcion", &opt.Label},
		{"aclaracion_moneda", &opt.CurrencyNote},
		{"descuento_gral", &opt.Discount},
		{"precio_final_siva", &opt.Subtotal},
		{"iva", &opt.Tax},
		{"precio_final", &opt.Total},
	})
	if err != nil {
		return opt, err
	}

	id, ok := integer(opt.Label)
	if !ok {
		return opt, &InvalidValueError{Field: o.field("id_opcion"), Value: opt.Label, Reason: "El id de opción debe ser un número entero"}
	}
	opt.ID = id
	if opt.Discount != "" && !decimal(opt.Discount) {
		return opt, &InvalidValueError{Field: o.field("descuento_gral"), Value: opt.Discount, Reason: "El descuento debe ser un número válido"}
	}

	items, err := o.list("productos_pedidos")
	if err != nil {
		return opt, err
	}
	if len(items) == 0 {
		return opt, &InvalidValueError{Field: o.field("productos_pedidos"), Reason: "La opción debe contener al menos un producto"}
	}
	for _, it := range items {
		item, err := quotedItem(it)
		if err != nil {
			return opt, err
		}
		opt.Items = append(opt.Items, item)
	}
	return opt, nil
}

func quotedItem(o object) (QuotedItem, error) {
	var item QuotedItem
	if err := o.require("producto", "cantidad", "precio_siva_unitario", "precio_siva_total"); err != nil {
		return item, err
	}
	err := o.bind([]binding{
		{"producto", &item.Description},
		{"cantidad", &item.QuantityRaw},
		{"precio_siva_unitario", &item.UnitPrice},
		{"precio_siva_total", &item.LineTotal},
	})
	if err != nil {
		return item, err
	}

	n, ok := integer(item.QuantityRaw)
	if !ok {
		return item, &InvalidValueError{Field: o.field("cantidad"), Value: item.QuantityRaw, Reason: "La cantidad debe ser un número entero"}
	}
	if n <= 0 {
		return item, &InvalidValueError{Field: o.field("cantidad"), Value: item.QuantityRaw, Reason: "La cantidad debe ser mayor a 0"}
	}
	item.Quantity = n
	if !decimal(item.UnitPrice) {
		return item, &InvalidValueError{Field: o.field("precio_siva_unitario"), Value: item.UnitPrice, Reason: "El precio unitario debe ser un número válido"}
	}
	if !decimal(item.LineTotal) {
		return item, &InvalidValueError{Field: o.field("precio_siva_total"), Value: item.LineTotal, Reason: "El precio total debe ser un número válido"}
	}
	return item, nil
}

// SortOptions orders options by ascending ID. Options with equal IDs keep
// their relative order.
func SortOptions(opts []Option) {
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].ID < opts[j].ID })
}

// FileName returns the file_name field of a raw record without validating
// the rest. ok is false when the field is absent.
func FileName(data []byte) (name string, ok bool, err error) {
	o, err := decodeObject(data)
	if err != nil {
		return "", false, err
	}
	if !o.has("file_name") {
		return "", false, nil
	}
	name, err = o.text("file_name")
	return name, true, err
}

type binding struct {
	name string
	dst  *string
}

// bind reads each named text field into its destination, in order.
func (o object) bind(bs []binding) error {
	for _, b := range bs {
		v, err := o.text(b.name)
		if err != nil {
			return err
		}
		*b.dst = v
	}
	return nil
}
