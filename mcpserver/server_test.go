package mcpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentacademy/core"
	"github.com/hupe1980/agentacademy/logging"
	"github.com/hupe1980/agentacademy/tool"
)

func newTestServer(t *testing.T, tools ...tool.Tool) *Server {
	t.Helper()

	s, err := New("test-server", "0.0.1", tool.NewRegistry(tools...), func(o *Options) {
		o.Logger = logging.NoOpLogger{}
	})
	require.NoError(t, err)

	return s
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	return req
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	return text.Text
}

func TestHandlerSuccess(t *testing.T) {
	echo := tool.NewFunctionTool("echo", "Echo the input.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{"type": "string"},
			},
			"required": []string{"message"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return args["message"], nil
		})

	s := newTestServer(t, echo)

	result, err := s.handler(echo)(context.Background(), callRequest("echo", map[string]any{"message": "hello"}))
	require.NoError(t, err)

	assert.False(t, result.IsError)
	assert.Equal(t, "hello", textContent(t, result))
}

func TestHandlerToolError(t *testing.T) {
	failing := tool.NewFunctionTool("fail", "Always fails.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return nil, errors.New("boom")
		})

	s := newTestServer(t, failing)

	result, err := s.handler(failing)(context.Background(), callRequest("fail", nil))
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "boom")
}

func TestHandlerValidationError(t *testing.T) {
	strict := tool.NewFunctionTool("strict", "Requires a name.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string"},
			},
			"required": []string{"name"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return args["name"], nil
		})

	s := newTestServer(t, strict)

	result, err := s.handler(strict)(context.Background(), callRequest("strict", map[string]any{}))
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "VALIDATION_ERROR")
}

func TestNewNilRegistry(t *testing.T) {
	_, err := New("test-server", "0.0.1", nil)
	require.Error(t, err)
}
