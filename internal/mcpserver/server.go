package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/tributary-ai/route-gateway/internal/dispatch"
	"github.com/tributary-ai/route-gateway/internal/security"
)

// Server exposes the tool catalog over Model Context Protocol stdio so
// agent hosts can call the same dispatcher the HTTP transport uses.
type Server struct {
	dispatcher *dispatch.Dispatcher
	logger     *logrus.Logger
}

// NewServer creates an MCP server over the dispatcher.
func NewServer(dispatcher *dispatch.Dispatcher, logger *logrus.Logger) *Server {
	return &Server{dispatcher: dispatcher, logger: logger}
}

// Run serves MCP over stdio until the context is cancelled or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{Name: "route-gateway", Version: "1.0.0"}, nil)

	for _, tool := range s.dispatcher.Tools() {
		schema, err := toJSONSchema(tool.Schema)
		if err != nil {
			return fmt.Errorf("failed to build schema for %s: %w", tool.Name, err)
		}

		mcp.AddTool(server, &mcp.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema,
		}, s.handlerFor(tool.Name))
	}

	s.logger.WithField("tools", len(s.dispatcher.Tools())).Info("Starting MCP stdio transport")
	return server.Run(ctx, &mcp.StdioTransport{})
}

// handlerFor adapts one catalog tool onto the MCP handler signature.
// Dispatcher failures become IsError results carrying the envelope,
// never protocol faults.
func (s *Server) handlerFor(toolName string) mcp.ToolHandlerFor[map[string]any, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
		// Stdio has no caller address; everything shares the sentinel
		// identity and with it one rate-limit window.
		result := s.dispatcher.Invoke(ctx, security.UnknownIdentity, toolName, args)

		body, err := json.Marshal(result)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal tool result: %w", err)
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
			IsError: !result.Success,
		}, nil, nil
	}
}

// toJSONSchema converts an OpenAPI argument schema into JSON Schema via
// its JSON form; the consumed keywords (type, properties, required,
// items, enum, bounds) are shared between the two dialects.
func toJSONSchema(schema *openapi3.Schema) (*jsonschema.Schema, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}

	converted := &jsonschema.Schema{}
	if err := json.Unmarshal(data, converted); err != nil {
		return nil, err
	}
	return converted, nil
}
