package doctpl_test

import (
	"fmt"

	"github.com/lvillar/docrender/doctpl"
	"github.com/lvillar/docrender/layout"
)

// ExampleBuild lays out a small JSON template and lists the positioned text.
func ExampleBuild() {
	tpl, err := doctpl.Parse([]byte(`{
	  "name": "receipt",
	  "page": {"width": 210, "height": 297, "margins": {"top": 10, "right": 10, "bottom": 15, "left": 10}},
	  "font": {"family": "Helvetica", "size": 10, "leading": 5},
	  "paginate": true,
	  "sections": [
	    {"type": "fields", "elements": [
	      {"type": "text", "text": "Cliente: {cliente}", "x": 10, "y": 20, "height": 6}
	    ]},
	    {"type": "table", "table": {"x": 10, "y": 30, "columns": [
	      {"value": "{cantidad}", "width": 15},
	      {"value": "{producto}", "width": 60, "wrap": true}
	    ]}}
	  ]
	}`))
	if err != nil {
		fmt.Println(err)
		return
	}

	data := doctpl.Data{
		Fields: map[string]string{"cliente": "Acme"},
		Items:  []map[string]string{{"cantidad": "2", "producto": "Cable de red categoría 6"}},
	}
	doc, err := doctpl.Build(tpl, data, layout.FixedAdvance(2), doctpl.Options{})
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, txt := range doc.Pages[0].Texts() {
		fmt.Printf("%g %g %s\n", txt.X, txt.Y, txt.Text)
	}
	// Output:
	// 10 20 Cliente: Acme
	// 10 30 2
	// 25 30 Cable de red categoría 6
}
