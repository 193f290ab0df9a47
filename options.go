package docrender

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lvillar/docrender/canvas"
	"github.com/lvillar/docrender/doctpl"
	"github.com/lvillar/docrender/layout"
)

// Option is a functional option for configuring a Renderer via New.
type Option func(*rendererConfig)

type rendererConfig struct {
	logger       *log.Logger
	metrics      func() layout.Metrics
	optionalRule doctpl.OptionalRule
	paginate     bool
	barcodes     bool
	compress     bool
	logo         *canvas.Image
	stationery   string
	clock        func() time.Time
	templates    []*doctpl.Template
	positions    map[Kind]map[string]doctpl.Position
}

// WithLogger sets the logger for render diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *rendererConfig) {
		c.logger = l
	}
}

// WithMetrics sets the factory of measuring backends. A fresh backend is
// requested for every document.
func WithMetrics(newMetrics func() layout.Metrics) Option {
	return func(c *rendererConfig) {
		c.metrics = newMetrics
	}
}

// WithOptionalFieldRule selects how optional delivery note fields print.
func WithOptionalFieldRule(rule doctpl.OptionalRule) Option {
	return func(c *rendererConfig) {
		c.optionalRule = rule
	}
}

// WithDeliveryItemPagination controls whether delivery note products break
// onto new pages. It is on by default.
func WithDeliveryItemPagination(on bool) Option {
	return func(c *rendererConfig) {
		c.paginate = on
	}
}

// WithBarcodes draws identification barcodes of the document number.
func WithBarcodes(on bool) Option {
	return func(c *rendererConfig) {
		c.barcodes = on
	}
}

// WithCompression toggles PDF stream compression. It is on by default.
func WithCompression(on bool) Option {
	return func(c *rendererConfig) {
		c.compress = on
	}
}

// WithLogo sets the image drawn in the quotation header.
func WithLogo(img canvas.Image) Option {
	return func(c *rendererConfig) {
		c.logo = &img
	}
}

// WithStationery draws page 1 of the PDF at path under every delivery
// note page.
func WithStationery(path string) Option {
	return func(c *rendererConfig) {
		c.stationery = path
	}
}

// WithClock fixes the PDF creation date source. Without it fpdf stamps
// the current time.
func WithClock(now func() time.Time) Option {
	return func(c *rendererConfig) {
		c.clock = now
	}
}

// WithTemplate replaces the built-in template of the same name.
func WithTemplate(t *doctpl.Template) Option {
	return func(c *rendererConfig) {
		c.templates = append(c.templates, t)
	}
}

// WithFieldPositions moves named elements of the template of kind.
func WithFieldPositions(kind Kind, positions map[string]doctpl.Position) Option {
	return func(c *rendererConfig) {
		if c.positions == nil {
			c.positions = map[Kind]map[string]doctpl.Position{}
		}
		c.positions[kind] = positions
	}
}

func defaultConfig() *rendererConfig {
	return &rendererConfig{
		logger:       log.New(io.Discard),
		metrics:      func() layout.Metrics { return canvas.NewMetrics() },
		optionalRule: doctpl.AsObserved,
		paginate:     true,
		compress:     true,
	}
}
