package docrender

import (
	"errors"
	"fmt"

	"github.com/lvillar/docrender/record"
)

// Sentinel errors for request level failures.
var (
	ErrUnknownKind     = errors.New("docrender: unknown document kind")
	ErrMissingFileName = errors.New("Missing file_name in request")
)

// RenderError reports a failure during a specific stage of rendering.
// It wraps an underlying error and names the document kind and stage.
type RenderError struct {
	Kind Kind   // document kind being rendered
	Op   string // stage: "parse", "layout" or "encode"
	Err  error  // underlying error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("docrender: %s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("docrender: %s: %s: unknown error", e.Kind, e.Op)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// newRenderError creates a new RenderError wrapping err with stage context.
func newRenderError(kind Kind, op string, err error) *RenderError {
	return &RenderError{Kind: kind, Op: op, Err: err}
}

// IsInputError reports whether err was caused by the request content, as
// opposed to a failure of the renderer itself.
func IsInputError(err error) bool {
	return record.IsInputError(err) || errors.Is(err, ErrUnknownKind) || errors.Is(err, ErrMissingFileName)
}
