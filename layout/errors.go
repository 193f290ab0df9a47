package layout

import "fmt"

// LayoutOverflowError reports content taller than the usable height of a
// fresh page. Breaking to a new page would not help, so layout stops.
type LayoutOverflowError struct {
	Height    float64 // height the content needs
	Available float64 // content height of an empty page
	Page      int     // page where the content was being placed
}

func (e *LayoutOverflowError) Error() string {
	return fmt.Sprintf("layout: content of height %.2fmm exceeds the %.2fmm available on a page (page %d)",
		e.Height, e.Available, e.Page)
}
