package tool

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/agentacademy/core"
)

// Registry holds a named collection of tools and dispatches calls to them.
// It is the single entry point used by agents and protocol servers: given a
// tool name and raw JSON arguments it decodes, routes and executes the call.
//
// Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry constructs an empty registry.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	r.Register(tools...)
	return r
}

// Register adds tools to the registry. A tool with a duplicate name replaces
// the earlier registration.
func (r *Registry) Register(tools ...Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
}

// Get returns a registered tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Tools returns all registered tools sorted by name.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })

	return out
}

// Dispatch decodes rawArgs as a JSON object and executes the named tool.
// Unknown names and malformed argument payloads surface as *ToolError with
// a VALIDATION_ERROR code, matching the tools' own validation failures.
func (r *Registry) Dispatch(toolCtx *core.ToolContext, name, rawArgs string) (any, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, NewToolError(name, fmt.Sprintf("unknown tool: %s", name), CodeValidation)
	}

	args := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return nil, NewToolError(name, fmt.Sprintf("invalid arguments: %v", err), CodeValidation)
		}
	}

	return t.Call(toolCtx, args)
}

// RenderResult converts a tool result into text for transports and model
// messages. Strings pass through unchanged; everything else is JSON encoded.
func RenderResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	case error:
		return v.Error()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
