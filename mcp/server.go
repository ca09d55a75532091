// Package mcp implements a Model Context Protocol (MCP) server that exposes
// form overlay generation as tools and resources for AI assistants.
//
// The server communicates via JSON-RPC 2.0 over stdio and implements the
// MCP specification (2024-11-05) for tools and resources.
//
// # Usage with an MCP client
//
//	{
//	  "mcpServers": {
//	    "formfill": {
//	      "command": "formfill-mcp"
//	    }
//	  }
//	}
package mcp

import (
	"bufio"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"
)

// ProtocolVersion is the MCP revision the server speaks.
const ProtocolVersion = "2024-11-05"

// Server is an MCP server that handles JSON-RPC 2.0 messages over stdio.
type Server struct {
	tools     map[string]Tool
	resources map[string]Resource
	input     io.Reader
	output    io.Writer
	log       *slog.Logger
	mu        sync.Mutex
}

// Tool defines an MCP tool that can be called by the client.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
	Handler     ToolHandler    `json:"-"`
}

// ToolHandler executes a tool with the given arguments.
type ToolHandler func(ctx context.Context, args map[string]any) (ToolResult, error)

// ToolResult is the result returned by a tool execution.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock is a piece of content in a tool result.
type ContentBlock struct {
	Type     string `json:"type"` // "text" or "resource"
	Text     string `json:"text,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"` // base64 for binary
}

// Resource defines an MCP resource.
type Resource struct {
	URI         string          `json:"uri"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	MIMEType    string          `json:"mimeType,omitempty"`
	Handler     ResourceHandler `json:"-"`
}

// ResourceHandler reads a resource and returns its content. uri is the
// full requested URI, query included.
type ResourceHandler func(ctx context.Context, uri string) ([]ResourceContent, error)

// ResourceContent is the content of a read resource.
type ResourceContent struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"` // base64
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

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// NewServer creates a new MCP server reading from stdin and writing to stdout.
func NewServer() *Server {
	return NewServerWithIO(os.Stdin, os.Stdout)
}

// NewServerWithIO creates a new MCP server with custom I/O for testing.
func NewServerWithIO(in io.Reader, out io.Writer) *Server {
	return &Server{
		tools:     make(map[string]Tool),
		resources: make(map[string]Resource),
		input:     in,
		output:    out,
		log:       slog.New(slog.DiscardHandler),
	}
}

// SetLogger sets the logger for protocol errors and tool failures.
func (s *Server) SetLogger(l *slog.Logger) {
	s.log = l
}

// AddTool registers a tool with the server.
func (s *Server) AddTool(t Tool) {
	s.tools[t.Name] = t
}

// AddResource registers a resource with the server.
func (s *Server) AddResource(r Resource) {
	s.resources[r.URI] = r
}

// Run processes messages until EOF or until ctx is done. Requests are
// handled one at a time, in order.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.input)
	// MCP uses newline-delimited JSON
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req jsonrpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("malformed message", "error", err)
			s.sendError(nil, codeParseError, "Parse error", err.Error())
			continue
		}

		s.handleRequest(ctx, req)
	}

	return scanner.Err()
}

func (s *Server) handleRequest(ctx context.Context, req jsonrpcRequest) {
	s.log.Debug("request", "method", req.Method)
	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		// Notification, no response needed
	case "ping":
		s.sendResult(req.ID, map[string]any{})
	case "tools/list":
		s.handleToolsList(req)
	case "tools/call":
		s.handleToolsCall(ctx, req)
	case "resources/list":
		s.handleResourcesList(req)
	case "resources/read":
		s.handleResourcesRead(ctx, req)
	default:
		if req.ID == nil {
			return
		}
		s.sendError(req.ID, codeMethodNotFound, "Method not found", req.Method)
	}
}

func (s *Server) handleInitialize(req jsonrpcRequest) {
	result := map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]any{
			"tools":     map[string]any{},
			"resources": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    "formfill-mcp",
			"version": "1.0.0",
		},
	}
	s.sendResult(req.ID, result)
}

func (s *Server) handleToolsList(req jsonrpcRequest) {
	tools := make([]Tool, 0, len(s.tools))
	for _, t := range s.tools {
		tools = append(tools, t)
	}
	slices.SortFunc(tools, func(a, b Tool) int { return cmp.Compare(a.Name, b.Name) })
	s.sendResult(req.ID, map[string]any{"tools": tools})
}

func (s *Server) handleToolsCall(ctx context.Context, req jsonrpcRequest) {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.sendError(req.ID, codeInvalidParams, "Invalid params", err.Error())
		return
	}

	tool, ok := s.tools[params.Name]
	if !ok {
		s.sendError(req.ID, codeInvalidParams, "Unknown tool", params.Name)
		return
	}
	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}

	result, err := tool.Handler(ctx, params.Arguments)
	if err != nil {
		s.log.Info("tool failed", "tool", params.Name, "error", err)
		s.sendResult(req.ID, ToolResult{
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("Error: %v", err)}},
			IsError: true,
		})
		return
	}

	s.sendResult(req.ID, result)
}

func (s *Server) handleResourcesList(req jsonrpcRequest) {
	resources := make([]Resource, 0, len(s.resources))
	for _, r := range s.resources {
		resources = append(resources, r)
	}
	slices.SortFunc(resources, func(a, b Resource) int { return cmp.Compare(a.URI, b.URI) })
	s.sendResult(req.ID, map[string]any{"resources": resources})
}

func (s *Server) handleResourcesRead(ctx context.Context, req jsonrpcRequest) {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.sendError(req.ID, codeInvalidParams, "Invalid params", err.Error())
		return
	}

	resource, ok := s.resources[resourceKey(params.URI)]
	if !ok {
		s.sendError(req.ID, codeInvalidParams, "Unknown resource", params.URI)
		return
	}

	contents, err := resource.Handler(ctx, params.URI)
	if err != nil {
		s.sendError(req.ID, codeInternalError, "Resource error", err.Error())
		return
	}

	s.sendResult(req.ID, map[string]any{"contents": contents})
}

func (s *Server) sendResult(id *json.RawMessage, result any) {
	s.send(jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (s *Server) sendError(id *json.RawMessage, code int, message string, data any) {
	s.send(jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &jsonrpcError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	})
}

func (s *Server) send(resp jsonrpcResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("encoding response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := s.output.Write(data); err != nil {
		s.log.Error("writing response", "error", err)
	}
}
