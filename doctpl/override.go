package doctpl

import "sort"

// Position moves a named element or column. Nil coordinates keep the
// template value.
type Position struct {
	X     *float64 `toml:"x" json:"x,omitempty"`
	Y     *float64 `toml:"y" json:"y,omitempty"`
	Width *float64 `toml:"width" json:"width,omitempty"`
}

// Clone returns a deep copy of the element and section lists of t.
func (t *Template) Clone() *Template {
	c := *t
	c.Chrome = append([]Element(nil), t.Chrome...)
	c.Sections = cloneSections(t.Sections)
	return &c
}

func cloneSections(in []Section) []Section {
	if in == nil {
		return nil
	}
	out := make([]Section, len(in))
	for i, s := range in {
		s.Elements = append([]Element(nil), s.Elements...)
		s.Lines = append([]Line(nil), s.Lines...)
		s.Sections = cloneSections(s.Sections)
		if s.Table != nil {
			ts := *s.Table
			ts.Columns = append([]ColumnSpec(nil), ts.Columns...)
			s.Table = &ts
		}
		out[i] = s
	}
	return out
}

// Override applies positions by element or column name and returns the
// names that matched nothing. The template must not be shared while it is
// being modified; call it on a Clone.
func (t *Template) Override(positions map[string]Position) []string {
	seen := map[string]bool{}
	apply := func(name string, x, y, w *float64) {
		p, ok := positions[name]
		if !ok {
			return
		}
		seen[name] = true
		if p.X != nil && x != nil {
			*x = *p.X
		}
		if p.Y != nil && y != nil {
			*y = *p.Y
		}
		if p.Width != nil {
			*w = *p.Width
		}
	}

	for i := range t.Chrome {
		e := &t.Chrome[i]
		apply(e.Name, &e.X, &e.Y, &e.Width)
	}
	var walk func([]Section)
	walk = func(sections []Section) {
		for i := range sections {
			s := &sections[i]
			for j := range s.Elements {
				e := &s.Elements[j]
				apply(e.Name, &e.X, &e.Y, &e.Width)
			}
			if s.Table != nil {
				for j := range s.Table.Columns {
					c := &s.Table.Columns[j]
					apply(c.Name, nil, nil, &c.Width)
				}
			}
			walk(s.Sections)
		}
	}
	walk(t.Sections)

	var unknown []string
	for name := range positions {
		if !seen[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}
