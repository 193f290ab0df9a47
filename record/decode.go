package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// object is a decoded JSON object with the path it was found at.
type object struct {
	path   string
	values map[string]any
}

func decodeObject(data []byte) (object, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return object{}, ErrNoData
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return object{}, &InvalidValueError{Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return object{}, &InvalidValueError{Reason: "expected a JSON object"}
	}
	if len(m) == 0 {
		return object{}, ErrNoData
	}
	return object{values: m}, nil
}

// fromMap wraps an already decoded object. Numbers may be float64 or
// json.Number.
func fromMap(m map[string]any) (object, error) {
	if len(m) == 0 {
		return object{}, ErrNoData
	}
	return object{values: m}, nil
}

func (o object) field(name string) string {
	if o.path == "" {
		return name
	}
	return o.path + "." + name
}

func (o object) has(name string) bool {
	_, ok := o.values[name]
	return ok
}

// require checks that every name is present, in order.
func (o object) require(names ...string) error {
	for _, name := range names {
		if !o.has(name) {
			return &MissingFieldError{Field: o.field(name)}
		}
	}
	return nil
}

// text returns the scalar value of name as normalized text. Absent and
// null values are empty.
func (o object) text(name string) (string, error) {
	v, ok := o.values[name]
	if !ok {
		return "", nil
	}
	s, err := scalar(v)
	if err != nil {
		return "", &InvalidValueError{Field: o.field(name), Reason: err.Error()}
	}
	return s, nil
}

func (o object) list(name string) ([]object, error) {
	raw, ok := o.values[name].([]any)
	if !ok {
		if o.values[name] == nil {
			return nil, nil
		}
		return nil, &InvalidValueError{Field: o.field(name), Reason: "expected a list"}
	}
	out := make([]object, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		path := fmt.Sprintf("%s[%d]", o.field(name), i)
		if !ok {
			return nil, &InvalidValueError{Field: path, Reason: "expected an object"}
		}
		out[i] = object{path: path, values: m}
	}
	return out, nil
}

func scalar(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return norm.NFC.String(v), nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", fmt.Errorf("expected a scalar value, got %T", v)
}

// integer parses whole numbers written as JSON numbers or strings.
func integer(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func decimal(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// digits reports whether s is a non-empty run of digits once dots are
// removed, so thousands separators are accepted.
func digits(s string) bool {
	s = strings.ReplaceAll(s, ".", "")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
