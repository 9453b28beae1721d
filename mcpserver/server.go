// Package mcpserver exposes a tool registry over the Model Context Protocol
// so the toolkits can be used from any MCP-capable client.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hupe1980/agentacademy/core"
	"github.com/hupe1980/agentacademy/logging"
	"github.com/hupe1980/agentacademy/tool"
)

// Options configure an MCP server.
type Options struct {
	Logger logging.Logger
}

// Server bridges a tool registry to an MCP stdio server. Every registered
// tool becomes an MCP tool with the same name and JSON schema.
type Server struct {
	name     string
	version  string
	registry *tool.Registry
	mcp      *server.MCPServer
	logger   logging.Logger
}

// New builds an MCP server over the given registry.
func New(name, version string, registry *tool.Registry, optFns ...func(o *Options)) (*Server, error) {
	opts := Options{
		Logger: logging.NewDefaultSlogLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if registry == nil {
		return nil, errors.New("mcpserver: registry must not be nil")
	}

	s := &Server{
		name:     name,
		version:  version,
		registry: registry,
		mcp:      server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
		logger:   opts.Logger,
	}

	for _, t := range registry.Tools() {
		schema, err := json.Marshal(t.Parameters())
		if err != nil {
			return nil, fmt.Errorf("mcpserver: marshal schema for %q: %w", t.Name(), err)
		}
		s.mcp.AddTool(mcp.NewToolWithRawSchema(t.Name(), t.Description(), schema), s.handler(t))
	}

	return s, nil
}

// ServeStdio blocks serving MCP over stdin/stdout until the client
// disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("mcp.serve", "server", s.name, "version", s.version, "tools", len(s.registry.Tools()))
	return server.ServeStdio(s.mcp)
}

// handler adapts one tool into an MCP tool handler. Tool errors are returned
// as MCP error results rather than protocol errors so the client model can
// read and react to them.
func (s *Server) handler(t tool.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		runCtx := core.NewStandaloneRunContext(ctx, s.logger)
		toolCtx := core.NewToolContext(runCtx, core.NewID())

		result, err := t.Call(toolCtx, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(tool.RenderResult(result)), nil
	}
}
