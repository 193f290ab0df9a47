// Package record decodes and validates delivery note and quotation records.
//
// Records arrive as JSON objects with Spanish field names. Decoding checks
// required fields in a fixed order and stops at the first problem, so the
// error always names one field. Text is normalized to NFC.
package record

// DeliveryNote is a validated delivery note (remito).
type DeliveryNote struct {
	FileName     string
	Client       string
	Number       string
	TaxID        string
	Date         string
	PaymentTerms string
	Address      string
	TaxCondition string
	Products     []DeliveredProduct
}

// DeliveredProduct is one line of a delivery note. All fields may be empty.
type DeliveredProduct struct {
	Quantity    string
	ID          string
	Description string
	Serial      string
}

// Quotation is a validated commercial quotation (presupuesto).
type Quotation struct {
	FileName      string
	Client        string
	Number        string
	TaxID         string
	Date          string
	ValidityDays  string
	PaymentMethod string
	PaymentTerms  string
	DeliveryDays  string
	Address       string
	Observations  string
	Options       []Option // sorted by ID, ties keep input order
}

// Option is one priced alternative of a quotation.
type Option struct {
	ID           int
	Label        string // id as written in the record
	Discount     string
	CurrencyNote string
	Subtotal     string
	Tax          string
	Total        string
	Items        []QuotedItem
}

// QuotedItem is one priced product of an option.
type QuotedItem struct {
	Description string
	Quantity    int
	QuantityRaw string
	UnitPrice   string
	LineTotal   string
}
