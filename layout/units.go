package layout

import "fmt"

// PtToMm converts typographic points to millimeters.
const PtToMm = 25.4 / 72

// epsilon absorbs floating point noise in fit comparisons.
const epsilon = 1e-9

// Margins are page margins in millimeters.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// PageSize is the physical page plus its margins, in millimeters.
type PageSize struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Margins Margins `json:"margins"`
}

// A4 returns a portrait A4 page with the given margins.
func A4(m Margins) PageSize {
	return PageSize{Width: 210, Height: 297, Margins: m}
}

// Validate checks that the page has a positive area and that every margin is
// smaller than half of the matching page dimension.
func (s PageSize) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("layout: invalid page size %gx%g", s.Width, s.Height)
	}
	m := s.Margins
	if m.Left < 0 || m.Right < 0 || m.Top < 0 || m.Bottom < 0 {
		return fmt.Errorf("layout: negative margin in %+v", m)
	}
	if m.Left >= s.Width/2 || m.Right >= s.Width/2 {
		return fmt.Errorf("layout: horizontal margins %g/%g must be less than half the width %g", m.Left, m.Right, s.Width)
	}
	if m.Top >= s.Height/2 || m.Bottom >= s.Height/2 {
		return fmt.Errorf("layout: vertical margins %g/%g must be less than half the height %g", m.Top, m.Bottom, s.Height)
	}
	return nil
}

// ContentWidth is the width between the left and right margins.
func (s PageSize) ContentWidth() float64 {
	return s.Width - s.Margins.Left - s.Margins.Right
}

// ContentBottom is the lowest y coordinate content may reach.
func (s PageSize) ContentBottom() float64 {
	return s.Height - s.Margins.Bottom
}

// Cursor is the running draw position during layout.
type Cursor struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Page int     `json:"page"` // 1-based index of the current page
}
