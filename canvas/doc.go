// Package canvas turns laid out documents into PDF bytes using fpdf.
//
// Metrics measures strings with the core PDF fonts so the layout engine
// wraps text exactly as the encoder will draw it. Encoder replays the draw
// instructions of a layout.Document onto a fresh fpdf instance.
//
// Text is encoded with the cp1252 code page of the core fonts. Neither type
// is safe for concurrent use; create one per document.
package canvas
