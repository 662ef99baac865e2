package shopify

import (
	"encoding/json"
	"fmt"
)

// JSON-RPC 2.0 envelope for the MCP catalog endpoint. Tool results come back
// as a list of content blocks whose text holds a JSON payload.

// Request represents a JSON-RPC request to the MCP endpoint.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  Params `json:"params,omitempty"`
}

// Params carries a tool invocation: the tool name and its arguments.
type Params struct {
	Name      string `json:"name,omitempty"`
	Arguments any    `json:"arguments,omitempty"`
}

// NewToolCall creates a tools/call request for the given tool.
func NewToolCall(id int, tool string, arguments any) Request {
	return Request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "tools/call",
		Params:  Params{Name: tool, Arguments: arguments},
	}
}

// Response represents a JSON-RPC response from the MCP endpoint.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      int       `json:"id"`
	Result  *Result   `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError is a protocol-level failure.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Result is a tool-call result: content blocks plus a tool-level error flag.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Content is one result block; catalog payloads arrive as type "text".
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ParsePayload decodes the first text content block into v.
func (r *Result) ParsePayload(v any) error {
	for _, c := range r.Content {
		if c.Type == "text" {
			return json.Unmarshal([]byte(c.Text), v)
		}
	}
	return fmt.Errorf("no text content in tool result")
}

// FirstText returns the first text block, for error reporting.
func (r *Result) FirstText() string {
	for _, c := range r.Content {
		if c.Type == "text" {
			return c.Text
		}
	}
	return ""
}
