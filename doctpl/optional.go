package doctpl

import "fmt"

// OptionalRule decides whether an optional element is drawn given the raw
// value of the field it depends on.
type OptionalRule string

const (
	// AsObserved draws the element only when the value is empty. It
	// reproduces how existing delivery notes print.
	AsObserved OptionalRule = "as-observed"
	// WhenPresent draws the element only when the value is non-empty.
	WhenPresent OptionalRule = "when-present"
)

// ParseOptionalRule parses a rule name. The empty string selects AsObserved.
func ParseOptionalRule(s string) (OptionalRule, error) {
	switch OptionalRule(s) {
	case "", AsObserved:
		return AsObserved, nil
	case WhenPresent:
		return WhenPresent, nil
	}
	return "", fmt.Errorf("doctpl: unknown optional field rule %q", s)
}

// Visible reports whether an element depending on value is drawn.
func (r OptionalRule) Visible(value string) bool {
	if r == WhenPresent {
		return value != ""
	}
	return value == ""
}
