// Package tool implements the function calling subsystem that lets agents
// invoke structured capabilities (APIs, computations, side effects) with
// schema validated arguments and consistent error handling.
package tool

import (
	"fmt"

	"github.com/hupe1980/agentacademy/core"
	"github.com/hupe1980/agentacademy/internal/util"
)

// Error codes used across all tools.
const (
	// CodeValidation marks argument / schema mismatches detected before any work runs.
	CodeValidation = "VALIDATION_ERROR"
	// CodeExecution marks failures inside the tool implementation itself.
	CodeExecution = "EXECUTION_ERROR"
	// CodeUpstream marks failures reported by a remote service the tool wraps.
	CodeUpstream = "UPSTREAM_ERROR"
)

// Tool defines the interface for extending agent capabilities with external
// functions.
//
// Tools can be registered with agents to enable function calling, allowing
// agents to perform actions beyond text generation such as API calls,
// calculations or lookups against external services.
//
// Tool implementations should:
//   - Provide clear, descriptive names (snake_case) and descriptions
//   - Define a proper JSON schema for parameters
//   - Validate arguments before performing any I/O
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description provided to the model
	// so it understands when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// Call executes the tool with structured arguments and a ToolContext
	// giving access to session state, flow control and memory.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// NewUpstreamError wraps a remote service failure as a ToolError.
func NewUpstreamError(tool string, err error) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: err.Error(),
		Code:    CodeUpstream,
	}
}
