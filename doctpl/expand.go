package doctpl

import "strings"

// expand replaces {key} placeholders in s with values from d. Unknown keys
// expand to the empty string; a brace without a closing pair is kept.
func expand(s string, d *Data) string {
	if !strings.Contains(s, "{") {
		return s
	}
	var b strings.Builder
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			b.WriteString(s)
			break
		}
		end := strings.IndexByte(s[open:], '}')
		if end < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:open])
		b.WriteString(d.Get(s[open+1 : open+end]))
		s = s[open+end+1:]
	}
	return b.String()
}

// keys returns the placeholder names used in s.
func keys(s string) []string {
	var out []string
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			return out
		}
		end := strings.IndexByte(s[open:], '}')
		if end < 0 {
			return out
		}
		out = append(out, s[open+1:open+end])
		s = s[open+end+1:]
	}
}
