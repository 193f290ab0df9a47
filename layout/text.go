package layout

import "strings"

// Wrap breaks text into lines that fit within width.
//
// Explicit newlines always start a new line. Within a paragraph lines break
// at whitespace and runs of whitespace collapse to a single space. A word
// wider than width is never split: it is placed on its own line and
// overflows the column. Empty text yields a single empty line.
func Wrap(m Metrics, text string, width float64, f Font) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	space := m.StringWidth(f, " ")

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		var b strings.Builder
		lineW := 0.0
		for _, word := range words {
			ww := m.StringWidth(f, word)
			switch {
			case b.Len() == 0:
				b.WriteString(word)
				lineW = ww
			case lineW+space+ww <= width+epsilon:
				b.WriteByte(' ')
				b.WriteString(word)
				lineW += space + ww
			default:
				lines = append(lines, b.String())
				b.Reset()
				b.WriteString(word)
				lineW = ww
			}
		}
		lines = append(lines, b.String())
	}
	return lines
}

// Measure returns the number of lines text occupies at width and the fixed
// per-line height of f. The line count is always at least one.
func Measure(m Metrics, text string, width float64, f Font) (lines int, lineHeight float64) {
	return len(Wrap(m, text, width, f)), f.LineHeight()
}

// BlockHeight is the height of text wrapped at width.
func BlockHeight(m Metrics, text string, width float64, f Font) float64 {
	n, lh := Measure(m, text, width, f)
	return float64(n) * lh
}
