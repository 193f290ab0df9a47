package record

import (
	"errors"
	"fmt"
)

// ErrNoData is returned for an empty, null or {} request body.
var ErrNoData = errors.New("No JSON data received")

// MissingFieldError reports the first required field absent from a record.
// Field is a dotted path such as "opciones[1].iva".
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("Missing required field: %s", e.Field)
}

// InvalidValueError reports a field whose value does not satisfy its rule.
type InvalidValueError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsInputError reports whether err was caused by the record content rather
// than by the renderer.
func IsInputError(err error) bool {
	var missing *MissingFieldError
	var invalid *InvalidValueError
	return errors.Is(err, ErrNoData) || errors.As(err, &missing) || errors.As(err, &invalid)
}
