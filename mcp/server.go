// Package mcp implements a Model Context Protocol (MCP) server that renders
// delivery notes and quotations for AI assistants.
//
// The server communicates via JSON-RPC 2.0 over stdio (protocol revision
// 2024-11-05). Tools render and validate records; resources expose the
// layout templates and the record fields they read.
//
// Start it with:
//
//	docrender mcp --config docrender.toml
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// ServerName is reported to clients during initialization.
const ServerName = "docrender-mcp"

const protocolVersion = "2024-11-05"

// JSON-RPC error codes.
const (
	codeParse          = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternal       = -32603
)

// Server is an MCP server that handles JSON-RPC 2.0 messages over stdio.
type Server struct {
	tools     map[string]Tool
	resources map[string]Resource
	input     io.Reader
	output    io.Writer
	version   string
	logger    *log.Logger
	mu        sync.Mutex
}

// Tool defines an MCP tool that can be called by the client.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	Handler     ToolHandler            `json:"-"`
}

// ToolHandler executes a tool with the given arguments. ctx is the
// context the server was started with.
type ToolHandler func(ctx context.Context, args map[string]interface{}) (ToolResult, error)

// ToolResult is the result returned by a tool execution.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock is a text item of a tool result.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextContent returns a text content block.
func TextContent(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: text}
}

// Resource defines an MCP resource.
type Resource struct {
	URI         string          `json:"uri"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	MIMEType    string          `json:"mimeType,omitempty"`
	Handler     ResourceHandler `json:"-"`
}

// ResourceHandler reads a resource and returns its content.
type ResourceHandler func(uri string) ([]ResourceContent, error)

// ResourceContent is the text content of a read resource.
type ResourceContent struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
}

type jsonrpcRequest struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type jsonrpcResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id"`
	Result  any              `json:"result,omitempty"`
	Error   *jsonrpcError    `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type method func(s *Server, ctx context.Context, params json.RawMessage) (any, *jsonrpcError)

var methods = map[string]method{
	"initialize":     (*Server).initialize,
	"ping":           (*Server).ping,
	"tools/list":     (*Server).listTools,
	"tools/call":     (*Server).callTool,
	"resources/list": (*Server).listResources,
	"resources/read": (*Server).readResource,
}

// NewServer creates a new MCP server reading from stdin and writing to stdout.
func NewServer(version string, logger *log.Logger) *Server {
	return NewServerWithIO(os.Stdin, os.Stdout, version, logger)
}

// NewServerWithIO creates a new MCP server with custom I/O. A nil logger
// discards diagnostics.
func NewServerWithIO(in io.Reader, out io.Writer, version string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		tools:     make(map[string]Tool),
		resources: make(map[string]Resource),
		input:     in,
		output:    out,
		version:   version,
		logger:    logger,
	}
}

// AddTool registers a tool with the server.
func (s *Server) AddTool(t Tool) {
	s.tools[t.Name] = t
}

// AddResource registers a resource with the server.
func (s *Server) AddResource(r Resource) {
	s.resources[r.URI] = r
}

// Run processes newline-delimited messages until EOF or until ctx is done.
// Cancellation is observed between messages.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.input)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req jsonrpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.reply(nil, nil, &jsonrpcError{Code: codeParse, Message: "Parse error", Data: err.Error()})
			continue
		}
		s.handle(ctx, req)
	}
	return scanner.Err()
}

func (s *Server) handle(ctx context.Context, req jsonrpcRequest) {
	// Notifications are never answered.
	if req.ID == nil {
		return
	}
	m, ok := methods[req.Method]
	if !ok {
		s.reply(req.ID, nil, &jsonrpcError{Code: codeMethodNotFound, Message: "Method not found", Data: req.Method})
		return
	}
	result, rpcErr := m(s, ctx, req.Params)
	s.reply(req.ID, result, rpcErr)
}

func (s *Server) initialize(context.Context, json.RawMessage) (any, *jsonrpcError) {
	return map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools":     map[string]any{},
			"resources": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    ServerName,
			"version": s.version,
		},
	}, nil
}

func (s *Server) ping(context.Context, json.RawMessage) (any, *jsonrpcError) {
	return struct{}{}, nil
}

func (s *Server) listTools(context.Context, json.RawMessage) (any, *jsonrpcError) {
	tools := make([]Tool, 0, len(s.tools))
	for _, name := range sortedKeys(s.tools) {
		tools = append(tools, s.tools[name])
	}
	return map[string]any{"tools": tools}, nil
}

func (s *Server) callTool(ctx context.Context, raw json.RawMessage) (any, *jsonrpcError) {
	var params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	tool, ok := s.tools[params.Name]
	if !ok {
		return nil, &jsonrpcError{Code: codeInvalidParams, Message: "Unknown tool", Data: params.Name}
	}

	s.logger.Debug("tool call", "tool", params.Name)
	result, err := tool.Handler(ctx, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "err", err)
		return ToolResult{Content: []ContentBlock{TextContent("Error: " + err.Error())}, IsError: true}, nil
	}
	return result, nil
}

func (s *Server) listResources(context.Context, json.RawMessage) (any, *jsonrpcError) {
	resources := make([]Resource, 0, len(s.resources))
	for _, uri := range sortedKeys(s.resources) {
		resources = append(resources, s.resources[uri])
	}
	return map[string]any{"resources": resources}, nil
}

func (s *Server) readResource(_ context.Context, raw json.RawMessage) (any, *jsonrpcError) {
	var params struct {
		URI string `json:"uri"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	resource, ok := s.resources[params.URI]
	if !ok {
		return nil, &jsonrpcError{Code: codeInvalidParams, Message: "Unknown resource", Data: params.URI}
	}
	contents, err := resource.Handler(params.URI)
	if err != nil {
		return nil, &jsonrpcError{Code: codeInternal, Message: "Resource error", Data: err.Error()}
	}
	return map[string]any{"contents": contents}, nil
}

func decodeParams(raw json.RawMessage, v any) *jsonrpcError {
	if err := json.Unmarshal(raw, v); err != nil {
		return &jsonrpcError{Code: codeInvalidParams, Message: "Invalid params", Data: err.Error()}
	}
	return nil
}

func (s *Server) reply(id *json.RawMessage, result any, rpcErr *jsonrpcError) {
	resp := jsonrpcResponse{JSONRPC: "2.0", ID: id, Result: result}
	if rpcErr != nil {
		resp.Result, resp.Error = nil, rpcErr
	}

	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("encoding response", "err", err)
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.output.Write(data); err != nil {
		s.logger.Error("writing response", "err", err)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
