package docrender

import (
	"fmt"
	"strings"

	"github.com/lvillar/docrender/doctpl"
)

// Kind identifies a document type.
type Kind string

// Supported document kinds. Their values match the built-in template names.
const (
	DeliveryNote Kind = doctpl.DeliveryNoteName
	Quotation    Kind = doctpl.QuotationName
)

// Kinds lists every supported kind.
var Kinds = []Kind{DeliveryNote, Quotation}

// ParseKind resolves a kind name. The Spanish names "remito" and
// "presupuesto" are accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(DeliveryNote), "remito":
		return DeliveryNote, nil
	case string(Quotation), "presupuesto":
		return Quotation, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string {
	return string(k)
}
