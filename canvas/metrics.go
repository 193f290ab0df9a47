package canvas

import (
	"codeberg.org/go-pdf/fpdf"

	"github.com/lvillar/docrender/layout"
)

// DefaultFamily is used for fonts without a family.
const DefaultFamily = "Helvetica"

// Metrics implements layout.Metrics with fpdf core font widths.
type Metrics struct {
	pdf     *fpdf.Fpdf
	tr      func(string) string
	current layout.Font
	set     bool
}

// NewMetrics returns a measuring backend. It owns a private fpdf instance
// that never produces output.
func NewMetrics() *Metrics {
	pdf := fpdf.New("P", "mm", "A4", "")
	return &Metrics{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func family(f layout.Font) string {
	if f.Family == "" {
		return DefaultFamily
	}
	return f.Family
}

// StringWidth implements layout.Metrics.
func (m *Metrics) StringWidth(f layout.Font, s string) float64 {
	key := layout.Font{Family: family(f), Style: f.Style, Size: f.Size}
	if !m.set || key != m.current {
		m.pdf.SetFont(key.Family, key.Style, key.Size)
		m.current = key
		m.set = true
	}
	return m.pdf.GetStringWidth(m.tr(s))
}

// Err reports a font selection failure. Widths measured after a failure
// are meaningless.
func (m *Metrics) Err() error {
	return m.pdf.Error()
}
