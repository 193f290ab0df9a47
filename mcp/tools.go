package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lvillar/docrender"
	"github.com/lvillar/docrender/upload"
)

// Folders maps each document kind to its upload folder.
type Folders map[docrender.Kind]string

// RegisterTools adds the rendering tools to the server. store may be nil,
// in which case the upload argument is rejected.
func RegisterTools(s *Server, r *docrender.Renderer, store upload.Uploader, folders Folders) {
	t := &tools{renderer: r, store: store, folders: folders}
	s.AddTool(t.renderTool(docrender.DeliveryNote, "render_delivery_note",
		"Render a delivery note (remito) record as PDF. The record uses the Spanish field names of the remito JSON: cliente, remito_numero, cuit, fecha, condicion_pago, direccion, condicion_iva and productos_pedidos."))
	s.AddTool(t.renderTool(docrender.Quotation, "render_quotation",
		"Render a commercial quotation (presupuesto) record as PDF. Options are printed in ascending id_opcion order."))
	s.AddTool(t.validateTool())
	s.AddTool(t.layoutTool())
}

type tools struct {
	renderer *docrender.Renderer
	store    upload.Uploader
	folders  Folders
}

func recordArgument(args map[string]interface{}) ([]byte, error) {
	rec, ok := args["record"]
	if !ok {
		return nil, fmt.Errorf("missing 'record' argument")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return data, nil
}

func kindArgument(args map[string]interface{}) (docrender.Kind, error) {
	name, _ := args["kind"].(string)
	if name == "" {
		return "", fmt.Errorf("missing 'kind' argument")
	}
	return docrender.ParseKind(name)
}

func (t *tools) renderTool(kind docrender.Kind, name, description string) Tool {
	return Tool{
		Name:        name,
		Description: description + " Returns the PDF as base64 unless outputPath or upload is given.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"record": map[string]interface{}{
					"type":        "object",
					"description": "The record to render",
				},
				"outputPath": map[string]interface{}{
					"type":        "string",
					"description": "Optional file path to save the PDF.",
				},
				"upload": map[string]interface{}{
					"type":        "boolean",
					"description": "Store the PDF as {file_name}.pdf in the configured storage.",
				},
			},
			"required": []string{"record"},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			return t.render(ctx, kind, args)
		},
	}
}

func (t *tools) render(ctx context.Context, kind docrender.Kind, args map[string]interface{}) (ToolResult, error) {
	body, err := recordArgument(args)
	if err != nil {
		return ToolResult{}, err
	}

	var buf bytes.Buffer
	res, err := t.renderer.Render(&buf, kind, body)
	if err != nil {
		return ToolResult{}, err
	}

	if outputPath, ok := args["outputPath"].(string); ok && outputPath != "" {
		if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
			return ToolResult{}, fmt.Errorf("writing file: %w", err)
		}
		return textResult("PDF created successfully: %s (%d pages, %d bytes)", outputPath, res.Pages, res.Bytes), nil
	}

	if up, _ := args["upload"].(bool); up {
		if t.store == nil {
			return ToolResult{}, fmt.Errorf("no storage configured")
		}
		if res.FileName == "" {
			return ToolResult{}, docrender.ErrMissingFileName
		}
		ctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		file := res.FileName + ".pdf"
		id, err := t.store.Upload(ctx, file, t.folders[kind], &buf)
		if err != nil {
			return ToolResult{}, err
		}
		return textResult("PDF generated and uploaded successfully: %s (id %s, %d pages)", file, id, res.Pages), nil
	}

	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	return textResult("PDF created successfully (%d pages, %d bytes). Base64 data:\n%s", res.Pages, res.Bytes, encoded), nil
}

func (t *tools) validateTool() Tool {
	return Tool{
		Name:        "validate_record",
		Description: "Check a delivery note or quotation record without rendering it. Reports the first missing or invalid field.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"kind": map[string]interface{}{
					"type":        "string",
					"description": "Document kind: delivery-note (remito) or quotation (presupuesto)",
				},
				"record": map[string]interface{}{
					"type":        "object",
					"description": "The record to check",
				},
			},
			"required": []string{"kind", "record"},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			kind, err := kindArgument(args)
			if err != nil {
				return ToolResult{}, err
			}
			body, err := recordArgument(args)
			if err != nil {
				return ToolResult{}, err
			}
			name, err := t.renderer.Parse(kind, body)
			if err != nil {
				if docrender.IsInputError(err) {
					return ToolResult{Content: []ContentBlock{TextContent("Invalid record: " + err.Error())}, IsError: true}, nil
				}
				return ToolResult{}, err
			}
			return textResult("Valid %s record %q", kind, name), nil
		},
	}
}

func (t *tools) layoutTool() Tool {
	return Tool{
		Name:        "layout_record",
		Description: "Lay out a record and return the positioned drawing instructions of every page as JSON, in millimetres.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"kind": map[string]interface{}{
					"type":        "string",
					"description": "Document kind: delivery-note (remito) or quotation (presupuesto)",
				},
				"record": map[string]interface{}{
					"type":        "object",
					"description": "The record to lay out",
				},
			},
			"required": []string{"kind", "record"},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			kind, err := kindArgument(args)
			if err != nil {
				return ToolResult{}, err
			}
			body, err := recordArgument(args)
			if err != nil {
				return ToolResult{}, err
			}
			doc, err := t.renderer.Layout(kind, body)
			if err != nil {
				return ToolResult{}, err
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return ToolResult{}, err
			}
			return ToolResult{Content: []ContentBlock{TextContent(string(data))}}, nil
		},
	}
}

func textResult(format string, args ...any) ToolResult {
	return ToolResult{Content: []ContentBlock{TextContent(fmt.Sprintf(format, args...))}}
}
