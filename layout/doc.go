// Package layout is the document layout and pagination engine.
//
// It turns positioned content into a sequence of draw instructions grouped in
// pages. All coordinates are absolute millimeters with the origin at the top
// left corner of the page.
//
// The package is split in three layers:
//
//   - text block layout: Wrap and Measure compute how a string breaks into
//     lines at a given width, using a Metrics implementation for string widths.
//   - row layout: LayoutRow places a band of cells that share a top edge and
//     computes the band height as the tallest cell.
//   - page flow: Flow owns the running cursor. EnsureSpace breaks to a new page
//     before content would cross the bottom margin, redrawing any chrome
//     (repeating header and footer) on the new page.
//
// The engine is pure: it performs no I/O and keeps no global state. A Flow
// must only be used by one goroutine; independent documents can be laid out
// concurrently with independent flows.
package layout
