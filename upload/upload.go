// Package upload stores rendered documents in remote or local storage.
//
// An Uploader receives the file name, a destination folder and the
// content, and returns the identifier the storage assigned. Every
// implementation replaces an existing file of the same name in the same
// folder and keeps its identifier.
package upload

import (
	"context"
	"fmt"
	"io"
)

// Uploader stores named content in a folder.
type Uploader interface {
	Upload(ctx context.Context, name, folder string, r io.Reader) (id string, err error)
}

// Error reports a storage failure. It is kept apart from render errors so
// transports can tell the two apart.
type Error struct {
	Name string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Null discards content and reports an empty id.
type Null struct{}

// Upload drains r.
func (Null) Upload(ctx context.Context, name, folder string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", &Error{Name: name, Err: err}
	}
	return "", nil
}

var _ Uploader = Null{}
