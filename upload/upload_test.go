package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDirUpload(t *testing.T) {
	root := t.TempDir()
	d, err := NewDir(root)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	id, err := d.Upload(ctx, "remito-1.pdf", "remitos", strings.NewReader("first"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if id == "" {
		t.Fatal("empty id")
	}

	again, err := d.Upload(ctx, "remito-1.pdf", "remitos", strings.NewReader("second"))
	if err != nil {
		t.Fatalf("second Upload: %v", err)
	}
	if again != id {
		t.Errorf("replacing kept id %q, want %q", again, id)
	}

	data, err := os.ReadFile(filepath.Join(root, "remitos", "remito-1.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	other, err := d.Upload(ctx, "remito-1.pdf", "presupuestos", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	if other == id {
		t.Error("same name in another folder reused the id")
	}
}

func TestDirRejectsEscapingNames(t *testing.T) {
	d, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct{ name, folder string }{
		{"../x.pdf", "a"},
		{"x.pdf", "../a"},
		{"", "a"},
		{"x.pdf", "/abs"},
	}
	for _, tt := range tests {
		_, err := d.Upload(context.Background(), tt.name, tt.folder, strings.NewReader("x"))
		var uerr *Error
		if !errors.As(err, &uerr) {
			t.Errorf("Upload(%q, %q) err = %v, want *Error", tt.name, tt.folder, err)
		}
	}
}

func TestNull(t *testing.T) {
	id, err := Null{}.Upload(context.Background(), "a.pdf", "f", strings.NewReader("data"))
	if err != nil || id != "" {
		t.Errorf("Null.Upload = %q, %v", id, err)
	}
}

type flaky struct {
	failures int
	err      error
	calls    int
	bodies   []string
}

func (f *flaky) Upload(ctx context.Context, name, folder string, r io.Reader) (string, error) {
	f.calls++
	data, _ := io.ReadAll(r)
	f.bodies = append(f.bodies, string(data))
	if f.calls <= f.failures {
		return "", &Error{Name: name, Err: f.err}
	}
	return "id-1", nil
}

func TestRetryTransient(t *testing.T) {
	f := &flaky{failures: 2, err: Retryable(errors.New("connection reset"))}
	u := WithRetry(f, 3, time.Millisecond)

	id, err := u.Upload(context.Background(), "a.pdf", "f", strings.NewReader("pdf"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if id != "id-1" || f.calls != 3 {
		t.Errorf("id = %q after %d calls", id, f.calls)
	}
	for i, b := range f.bodies {
		if b != "pdf" {
			t.Errorf("attempt %d sent %q", i+1, b)
		}
	}
}

func TestRetryGivesUp(t *testing.T) {
	f := &flaky{failures: 5, err: Retryable(errors.New("timeout"))}
	_, err := WithRetry(f, 2, time.Millisecond).Upload(context.Background(), "a.pdf", "f", strings.NewReader("pdf"))
	if err == nil || f.calls != 2 {
		t.Errorf("err = %v after %d calls, want failure after 2", err, f.calls)
	}
}

func TestRetryPermanent(t *testing.T) {
	f := &flaky{failures: 5, err: errors.New("unauthorized")}
	_, err := WithRetry(f, 3, time.Millisecond).Upload(context.Background(), "a.pdf", "f", strings.NewReader("pdf"))
	if err == nil || f.calls != 1 {
		t.Errorf("err = %v after %d calls, want failure after 1", err, f.calls)
	}
}

func TestGridFS(t *testing.T) {
	uri := os.Getenv("DOCRENDER_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("DOCRENDER_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	g, client, err := ConnectGridFS(ctx, uri, "docrender_test", "pdfs")
	if err != nil {
		t.Fatal(err)
	}
	defer client.Disconnect(ctx)

	id, err := g.Upload(ctx, "test.pdf", "folder-a", strings.NewReader("one"))
	if err != nil {
		t.Fatal(err)
	}
	again, err := g.Upload(ctx, "test.pdf", "folder-a", strings.NewReader("two"))
	if err != nil {
		t.Fatal(err)
	}
	if again != id {
		t.Errorf("replacing kept id %q, want %q", again, id)
	}
}
