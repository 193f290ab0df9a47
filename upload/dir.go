package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// idSuffix names the sidecar file that holds the id of a stored file.
const idSuffix = ".id"

// Dir stores files below a local root directory, one subdirectory per
// folder. Writes go to a temporary file first and are renamed into place.
type Dir struct {
	Root string
}

// NewDir returns a Dir rooted at root, creating it if needed.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Dir{Root: root}, nil
}

// Upload writes r to Root/folder/name. A file that already exists keeps
// its id.
func (d *Dir) Upload(ctx context.Context, name, folder string, r io.Reader) (string, error) {
	id, err := d.upload(ctx, name, folder, r)
	if err != nil {
		return "", &Error{Name: name, Err: err}
	}
	return id, nil
}

func (d *Dir) upload(ctx context.Context, name, folder string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", errors.New("invalid file name")
	}
	if folder == "" {
		folder = "."
	}
	if !filepath.IsLocal(folder) {
		return "", errors.New("invalid folder")
	}

	dir := filepath.Join(d.Root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	id, err := d.id(path)
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return id, nil
}

// id returns the stored id of path, assigning a new one on first write.
func (d *Dir) id(path string) (string, error) {
	data, err := os.ReadFile(path + idSuffix)
	if err == nil {
		return strings.TrimSpace(string(data)), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	id := uuid.NewString()
	if err := os.WriteFile(path+idSuffix, []byte(id+"\n"), 0o644); err != nil {
		return "", err
	}
	return id, nil
}

var _ Uploader = (*Dir)(nil)
