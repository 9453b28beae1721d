// Package mathtool provides basic arithmetic operations as tools. It is the
// simplest toolkit in the course and needs no network access.
package mathtool

import (
	"fmt"
	"math"

	"github.com/hupe1980/agentacademy/core"
	"github.com/hupe1980/agentacademy/tool"
)

func numberParams(names ...string) map[string]any {
	props := map[string]any{}
	for _, n := range names {
		props[n] = map[string]any{"type": "number", "description": "Operand " + n}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   names,
	}
}

// Tools returns the arithmetic operations as tool values.
func Tools() []tool.Tool {
	return []tool.Tool{
		tool.NewFunctionTool("add", "Add two numbers.", numberParams("a", "b"),
			func(_ *core.ToolContext, args map[string]any) (any, error) {
				return args["a"].(float64) + args["b"].(float64), nil
			}),
		tool.NewFunctionTool("subtract", "Subtract b from a.", numberParams("a", "b"),
			func(_ *core.ToolContext, args map[string]any) (any, error) {
				return args["a"].(float64) - args["b"].(float64), nil
			}),
		tool.NewFunctionTool("multiply", "Multiply two numbers.", numberParams("a", "b"),
			func(_ *core.ToolContext, args map[string]any) (any, error) {
				return args["a"].(float64) * args["b"].(float64), nil
			}),
		tool.NewFunctionTool("divide", "Divide a by b.", numberParams("a", "b"),
			func(_ *core.ToolContext, args map[string]any) (any, error) {
				b := args["b"].(float64)
				if b == 0 {
					return nil, fmt.Errorf("cannot divide by zero")
				}
				return args["a"].(float64) / b, nil
			}),
		tool.NewFunctionTool("power", "Raise a to the power of b.", numberParams("a", "b"),
			func(_ *core.ToolContext, args map[string]any) (any, error) {
				return math.Pow(args["a"].(float64), args["b"].(float64)), nil
			}),
		tool.NewFunctionTool("sqrt", "Calculate square root of a number.", numberParams("a"),
			func(_ *core.ToolContext, args map[string]any) (any, error) {
				a := args["a"].(float64)
				if a < 0 {
					return nil, fmt.Errorf("cannot calculate square root of negative number")
				}
				return math.Sqrt(a), nil
			}),
		tool.NewFunctionTool("factorial", "Calculate factorial of a non-negative integer.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"n": map[string]any{"type": "integer", "description": "Non-negative integer"},
				},
				"required": []string{"n"},
			},
			func(_ *core.ToolContext, args map[string]any) (any, error) {
				n := int64(args["n"].(float64))
				return Factorial(n)
			}),
	}
}

// Factorial computes n! for 0 <= n <= 20. Values above 20 overflow int64 and
// are rejected.
func Factorial(n int64) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("factorial is not defined for negative numbers")
	}
	if n > 20 {
		return 0, fmt.Errorf("factorial of %d exceeds the supported range (max 20)", n)
	}

	result := int64(1)
	for i := int64(2); i <= n; i++ {
		result *= i
	}

	return result, nil
}
