package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/lvillar/docrender"
	"github.com/lvillar/docrender/doctpl"
)

// templateResource is the content of a template:// resource.
type templateResource struct {
	Template *doctpl.Template `json:"template"`
	Fields   []string         `json:"fields"`
}

// RegisterResources adds one template://<kind> resource per document kind.
// Each describes the layout in use and the record fields it reads.
func RegisterResources(s *Server, r *docrender.Renderer) {
	for _, kind := range docrender.Kinds {
		uri := "template://" + kind.String()
		s.AddResource(Resource{
			URI:         uri,
			Name:        fmt.Sprintf("%s layout", kind),
			Description: fmt.Sprintf("Page size, element positions and sections of the %s template, with the record fields it reads.", kind),
			MIMEType:    "application/json",
			Handler: func(uri string) ([]ResourceContent, error) {
				return templateContent(r, kind, uri)
			},
		})
	}
}

func templateContent(r *docrender.Renderer, kind docrender.Kind, uri string) ([]ResourceContent, error) {
	t, err := r.Template(kind)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(templateResource{Template: t, Fields: r.Fields(kind)}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}
	return []ResourceContent{{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(data),
	}}, nil
}
