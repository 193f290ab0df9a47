package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lvillar/docrender"
	"github.com/lvillar/docrender/layout"
	"github.com/lvillar/docrender/upload"
)

func sendRequest(t *testing.T, s *Server, method string, id int, params interface{}) jsonrpcResponse {
	t.Helper()

	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		req["params"] = params
	}

	reqBytes, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	reqBytes = append(reqBytes, '\n')

	var output bytes.Buffer
	s.input = bytes.NewReader(reqBytes)
	s.output = &output

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var resp jsonrpcResponse
	if err := json.Unmarshal(output.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response %q: %v", output.String(), err)
	}
	return resp
}

type memoryStore struct {
	files map[string][]byte
}

func (m *memoryStore) Upload(ctx context.Context, name, folder string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[folder+"/"+name] = data
	return "id-" + name, nil
}

var _ upload.Uploader = (*memoryStore)(nil)

func newTestServer(t *testing.T, store upload.Uploader) *Server {
	t.Helper()
	r, err := docrender.New(docrender.WithMetrics(func() layout.Metrics { return layout.FixedAdvance(2) }))
	if err != nil {
		t.Fatal(err)
	}
	s := NewServerWithIO(nil, nil, "test", nil)
	RegisterTools(s, r, store, Folders{docrender.DeliveryNote: "remitos"})
	RegisterResources(s, r)
	return s
}

func deliveryRecord() map[string]interface{} {
	return map[string]interface{}{
		"file_name":      "remito-7",
		"cliente":        "Acme",
		"remito_numero":  "0001-00000007",
		"cuit":           "30-12345678-9",
		"fecha":          "14/10/2026",
		"condicion_pago": "30",
		"direccion":      "Belgrano 50",
		"condicion_iva":  "Responsable Inscripto",
		"productos_pedidos": []interface{}{
			map[string]interface{}{"cantidad": 1, "product_id": "AB-1", "product": "Medidor", "n_serie": ""},
		},
	}
}

func resultText(t *testing.T, resp jsonrpcResponse) (string, bool) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	data, _ := json.Marshal(resp.Result)
	var res ToolResult
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decoding tool result %s: %v", data, err)
	}
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	return res.Content[0].Text, res.IsError
}

func TestServerInitialize(t *testing.T) {
	s := newTestServer(t, nil)

	resp := sendRequest(t, s, "initialize", 1, map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]interface{}{},
		"clientInfo":      map[string]interface{}{"name": "test", "version": "1.0"},
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("result is not a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Fatalf("unexpected protocol version: %v", result["protocolVersion"])
	}

	serverInfo, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("missing serverInfo")
	}
	if serverInfo["name"] != ServerName || serverInfo["version"] != "test" {
		t.Fatalf("unexpected server info: %v", serverInfo)
	}
}

func TestServerToolsList(t *testing.T) {
	s := newTestServer(t, nil)

	resp := sendRequest(t, s, "tools/list", 2, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}

	result := resp.Result.(map[string]interface{})
	tools, ok := result["tools"].([]interface{})
	if !ok {
		t.Fatal("tools is not an array")
	}

	var names []string
	for _, tool := range tools {
		names = append(names, tool.(map[string]interface{})["name"].(string))
	}
	want := "layout_record,render_delivery_note,render_quotation,validate_record"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("tools = %s, want %s", got, want)
	}
}

func TestServerResources(t *testing.T) {
	s := newTestServer(t, nil)

	resp := sendRequest(t, s, "resources/list", 3, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	resources := resp.Result.(map[string]interface{})["resources"].([]interface{})
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(resources))
	}

	resp = sendRequest(t, s, "resources/read", 4, map[string]interface{}{"uri": "template://quotation"})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	data, _ := json.Marshal(resp.Result)
	var read struct {
		Contents []ResourceContent `json:"contents"`
	}
	if err := json.Unmarshal(data, &read); err != nil || len(read.Contents) != 1 {
		t.Fatalf("resources/read = %s (%v)", data, err)
	}
	var content templateResource
	if err := json.Unmarshal([]byte(read.Contents[0].Text), &content); err != nil {
		t.Fatalf("decoding template: %v", err)
	}
	if content.Template.Name != "quotation" || content.Template.ContentTop != 70 {
		t.Errorf("template = %s, content top %v", content.Template.Name, content.Template.ContentTop)
	}
	if !strings.Contains(strings.Join(content.Fields, ","), "validez_oferta") {
		t.Errorf("fields = %v", content.Fields)
	}
}

func TestServerPing(t *testing.T) {
	s := NewServerWithIO(nil, nil, "", nil)

	resp := sendRequest(t, s, "ping", 4, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
}

func TestServerUnknownMethod(t *testing.T) {
	s := NewServerWithIO(nil, nil, "", nil)

	resp := sendRequest(t, s, "nonexistent/method", 5, nil)
	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Fatalf("expected error code -32601, got %d", resp.Error.Code)
	}
}

func TestServerUnknownTool(t *testing.T) {
	s := newTestServer(t, nil)

	resp := sendRequest(t, s, "tools/call", 6, map[string]interface{}{
		"name":      "nonexistent_tool",
		"arguments": map[string]interface{}{},
	})
	if resp.Error == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestRenderDeliveryNoteTool(t *testing.T) {
	s := newTestServer(t, nil)

	resp := sendRequest(t, s, "tools/call", 7, map[string]interface{}{
		"name":      "render_delivery_note",
		"arguments": map[string]interface{}{"record": deliveryRecord()},
	})
	text, isErr := resultText(t, resp)
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	if !strings.Contains(text, "PDF created successfully (1 pages") || !strings.Contains(text, "Base64") {
		t.Fatalf("unexpected result: %s", text)
	}
}

func TestRenderToolOutputPath(t *testing.T) {
	s := newTestServer(t, nil)
	path := filepath.Join(t.TempDir(), "remito.pdf")

	resp := sendRequest(t, s, "tools/call", 8, map[string]interface{}{
		"name":      "render_delivery_note",
		"arguments": map[string]interface{}{"record": deliveryRecord(), "outputPath": path},
	})
	if text, isErr := resultText(t, resp); isErr {
		t.Fatalf("tool error: %s", text)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestRenderToolUpload(t *testing.T) {
	store := &memoryStore{}
	s := newTestServer(t, store)

	resp := sendRequest(t, s, "tools/call", 9, map[string]interface{}{
		"name":      "render_delivery_note",
		"arguments": map[string]interface{}{"record": deliveryRecord(), "upload": true},
	})
	text, isErr := resultText(t, resp)
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	if !strings.Contains(text, "id-remito-7.pdf") {
		t.Errorf("unexpected result: %s", text)
	}
	if _, ok := store.files["remitos/remito-7.pdf"]; !ok {
		t.Errorf("stored files = %v", store.files)
	}
}

func TestRenderToolInvalidRecord(t *testing.T) {
	s := newTestServer(t, nil)
	rec := deliveryRecord()
	delete(rec, "cuit")

	resp := sendRequest(t, s, "tools/call", 10, map[string]interface{}{
		"name":      "render_delivery_note",
		"arguments": map[string]interface{}{"record": rec},
	})
	text, isErr := resultText(t, resp)
	if !isErr || !strings.Contains(text, "Missing required field: cuit") {
		t.Errorf("result = %q, isError %v", text, isErr)
	}
}

func TestValidateRecordTool(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		kind    string
		record  map[string]interface{}
		want    string
		wantErr bool
	}{
		{"remito", deliveryRecord(), `Valid delivery-note record "remito-7"`, false},
		{"presupuesto", deliveryRecord(), "Invalid record: ", true},
	}
	for _, tt := range tests {
		resp := sendRequest(t, s, "tools/call", 11, map[string]interface{}{
			"name":      "validate_record",
			"arguments": map[string]interface{}{"kind": tt.kind, "record": tt.record},
		})
		text, isErr := resultText(t, resp)
		if isErr != tt.wantErr || !strings.HasPrefix(text, tt.want) {
			t.Errorf("%s: result = %q, isError %v", tt.kind, text, isErr)
		}
	}
}

func TestLayoutRecordTool(t *testing.T) {
	s := newTestServer(t, nil)

	resp := sendRequest(t, s, "tools/call", 12, map[string]interface{}{
		"name":      "layout_record",
		"arguments": map[string]interface{}{"kind": "delivery-note", "record": deliveryRecord()},
	})
	text, isErr := resultText(t, resp)
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	if !strings.Contains(text, `"Medidor"`) {
		t.Errorf("layout does not contain the product: %s", text)
	}
}

func TestServerMultipleRequests(t *testing.T) {
	requests := []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":4,"method":"ping"}`,
	}

	input := strings.Join(requests, "\n") + "\n"
	var output bytes.Buffer

	s := newTestServer(t, nil)
	s.input = strings.NewReader(input)
	s.output = &output

	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Notifications get no response
	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 responses, got %d: %s", len(lines), output.String())
	}

	for i, line := range lines {
		var resp jsonrpcResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("response %d: unmarshal error: %v\nline: %s", i, err, line)
		}
		if resp.Error != nil {
			t.Errorf("response %d: unexpected error: %s", i, resp.Error.Message)
		}
	}
}

func TestServerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var output bytes.Buffer
	s := NewServerWithIO(strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &output, "", nil)
	if err := s.Run(ctx); err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	if output.Len() != 0 {
		t.Errorf("answered after cancel: %s", output.String())
	}
}

func TestToolAddTool(t *testing.T) {
	s := NewServerWithIO(nil, nil, "", nil)

	s.AddTool(Tool{
		Name:        "custom_tool",
		Description: "A custom test tool",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			return ToolResult{Content: []ContentBlock{TextContent("custom result")}}, nil
		},
	})

	resp := sendRequest(t, s, "tools/call", 1, map[string]interface{}{
		"name":      "custom_tool",
		"arguments": map[string]interface{}{},
	})
	if text, _ := resultText(t, resp); text != "custom result" {
		t.Fatalf("unexpected result: %s", text)
	}
}

func TestServerNotificationsAndParseErrors(t *testing.T) {
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","method":"ping"}`,
		`{"jsonrpc":"2.0","method":"notifications/cancelled","params":{"requestId":1}}`,
		`not json`,
	}, "\n") + "\n"
	var output bytes.Buffer
	s := NewServerWithIO(strings.NewReader(input), &output, "", nil)
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the parse error, got %d lines: %s", len(lines), output.String())
	}
	var resp jsonrpcResponse
	if err := json.Unmarshal([]byte(lines[0]), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != codeParse {
		t.Errorf("response = %s, want parse error", lines[0])
	}
}
