package tool

import (
	"fmt"

	"github.com/hupe1980/agentacademy/core"
)

// SessionStateTool exposes session state, flow control and memory operations
// as a single dispatching tool. It is mainly used in the lessons to show how
// ToolContext integrates tools with the framework.
type SessionStateTool struct {
	name        string
	description string
}

// NewSessionStateTool creates the session state tool.
func NewSessionStateTool() *SessionStateTool {
	return &SessionStateTool{
		name: "session_state",
		description: "Manages session state, agent flow control and memory. " +
			"Supports operations: get_state, set_state, transfer_agent, escalate, " +
			"search_memory, store_memory, get_session_history.",
	}
}

// Name returns the tool identifier.
func (t *SessionStateTool) Name() string { return t.name }

// Description returns the tool description.
func (t *SessionStateTool) Description() string { return t.description }

// Parameters returns the JSON schema for tool parameters.
func (t *SessionStateTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type": "string",
				"enum": []string{
					"get_state", "set_state", "transfer_agent", "escalate",
					"search_memory", "store_memory", "get_session_history",
				},
				"description": "The operation to perform",
			},
			"key": map[string]any{
				"type":        "string",
				"description": "State key for get_state/set_state operations",
			},
			"value": map[string]any{
				"description": "Value for set_state operations (any type)",
			},
			"agent_name": map[string]any{
				"type":        "string",
				"description": "Agent name for transfer_agent operation",
			},
			"query": map[string]any{
				"type":        "string",
				"description": "Search query for search_memory",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "Content to store in memory",
			},
			"metadata": map[string]any{
				"type":        "object",
				"description": "Metadata for memory storage",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Limit for search operations (default: 10)",
				"default":     10,
			},
		},
		"required": []string{"operation"},
	}
}

// Call dispatches to the requested operation.
func (t *SessionStateTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	operation, ok := args["operation"].(string)
	if !ok {
		return nil, NewToolError(t.name, "operation parameter is required", CodeValidation)
	}

	switch operation {
	case "get_state":
		return t.handleGetState(args, toolCtx)
	case "set_state":
		return t.handleSetState(args, toolCtx)
	case "transfer_agent":
		return t.handleTransferAgent(args, toolCtx)
	case "escalate":
		toolCtx.Escalate()
		return map[string]any{"success": true, "message": "Escalation initiated"}, nil
	case "search_memory":
		return t.handleSearchMemory(args, toolCtx)
	case "store_memory":
		return t.handleStoreMemory(args, toolCtx)
	case "get_session_history":
		return t.handleGetSessionHistory(toolCtx)
	default:
		return nil, NewToolError(t.name, fmt.Sprintf("unknown operation: %s", operation), CodeValidation)
	}
}

func (t *SessionStateTool) handleGetState(args map[string]any, toolCtx *core.ToolContext) (any, error) {
	key, ok := args["key"].(string)
	if !ok {
		return nil, fmt.Errorf("key parameter is required for get_state operation")
	}

	value, exists := toolCtx.GetState(key)

	return map[string]any{"key": key, "exists": exists, "value": value}, nil
}

func (t *SessionStateTool) handleSetState(args map[string]any, toolCtx *core.ToolContext) (any, error) {
	key, ok := args["key"].(string)
	if !ok {
		return nil, fmt.Errorf("key parameter is required for set_state operation")
	}

	value := args["value"]
	toolCtx.SetState(key, value)

	return map[string]any{"key": key, "value": value, "success": true}, nil
}

func (t *SessionStateTool) handleTransferAgent(args map[string]any, toolCtx *core.ToolContext) (any, error) {
	agentName, ok := args["agent_name"].(string)
	if !ok {
		return nil, fmt.Errorf("agent_name parameter is required for transfer_agent operation")
	}

	toolCtx.TransferToAgent(agentName)

	return map[string]any{"agent_name": agentName, "success": true}, nil
}

func (t *SessionStateTool) handleSearchMemory(args map[string]any, toolCtx *core.ToolContext) (any, error) {
	query, ok := args["query"].(string)
	if !ok {
		return nil, fmt.Errorf("query parameter is required for search_memory operation")
	}

	limit := 10
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	results, err := toolCtx.SearchMemory(query, limit)
	if err != nil {
		return nil, fmt.Errorf("memory search failed: %w", err)
	}

	return map[string]any{"query": query, "results": results, "count": len(results)}, nil
}

func (t *SessionStateTool) handleStoreMemory(args map[string]any, toolCtx *core.ToolContext) (any, error) {
	content, ok := args["content"].(string)
	if !ok {
		return nil, fmt.Errorf("content parameter is required for store_memory operation")
	}

	var metadata map[string]any
	if md, ok := args["metadata"].(map[string]any); ok {
		metadata = md
	}

	if err := toolCtx.StoreMemory(content, metadata); err != nil {
		return nil, fmt.Errorf("memory store failed: %w", err)
	}

	return map[string]any{"success": true}, nil
}

func (t *SessionStateTool) handleGetSessionHistory(toolCtx *core.ToolContext) (any, error) {
	events := toolCtx.GetSessionHistory()

	history := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		if ev.Content == nil {
			continue
		}
		history = append(history, map[string]any{
			"author": ev.Author,
			"role":   ev.Content.Role,
			"text":   ev.Content.Text(),
		})
	}

	return map[string]any{"history": history, "count": len(history)}, nil
}
