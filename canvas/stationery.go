package canvas

import (
	"fmt"
	"os"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
)

// stationery is the first page of an existing PDF drawn under every page.
type stationery struct {
	imp *gofpdi.Importer
	tpl int
}

// importStationery loads page 1 of the PDF at path as a template.
func importStationery(pdf *fpdf.Fpdf, path string) (s *stationery, err error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("canvas: stationery: %w", err)
	}
	// The importer panics on unreadable files.
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("canvas: stationery %s: %v", path, r)
		}
	}()
	imp := gofpdi.NewImporter()
	tpl := imp.ImportPage(pdf, path, 1, "/MediaBox")
	return &stationery{imp: imp, tpl: tpl}, nil
}

func (s *stationery) draw(pdf *fpdf.Fpdf, w, h float64) {
	s.imp.UseImportedTemplate(pdf, s.tpl, 0, 0, w, h)
}
