package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleArgs struct {
	Query string   `json:"query" description:"Search query"`
	Limit *int     `json:"limit" description:"Optional result limit"`
	Tags  []string `json:"tags,omitempty"`
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(sampleArgs{})

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "query")
	assert.Contains(t, props, "limit")
	assert.Contains(t, props, "tags")

	q := props["query"].(map[string]any)
	assert.Equal(t, "string", q["type"])
	assert.Equal(t, "Search query", q["description"])

	// Only non-pointer, non-omitempty fields are required.
	assert.ElementsMatch(t, []string{"query"}, schema["required"])
}

func TestCreateSchemaNonStruct(t *testing.T) {
	schema := CreateSchema(42)
	assert.Equal(t, "object", schema["type"])
	assert.Empty(t, schema["properties"])
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"n": map[string]any{"type": "integer"},
			"q": map[string]any{"type": "string"},
		},
		"required": []any{"a"},
	}

	tests := []struct {
		name    string
		params  map[string]any
		wantErr string
	}{
		{"valid", map[string]any{"a": 1.5, "n": 3.0, "q": "x"}, ""},
		{"missing required", map[string]any{"q": "x"}, "required field is missing"},
		{"wrong type", map[string]any{"a": "nope"}, "expected type number"},
		{"fractional integer", map[string]any{"a": 1.0, "n": 1.5}, "expected type integer"},
		{"extra field allowed", map[string]any{"a": 1.0, "unknown": true}, ""},
		{"nil value allowed", map[string]any{"a": 1.0, "q": nil}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameters(tt.params, schema)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			vErr, ok := err.(*ValidationError)
			require.True(t, ok)
			assert.Contains(t, vErr.Message, tt.wantErr)
		})
	}
}

func TestValidateParametersStringRequired(t *testing.T) {
	// Hand-built schemas often carry required as []string.
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"x": map[string]any{"type": "string"}},
		"required":   []string{"x"},
	}
	err := ValidateParameters(map[string]any{}, schema)
	require.Error(t, err)
	assert.Equal(t, "x", err.(*ValidationError).Field)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	// Rune-safe, not byte-safe.
	assert.Equal(t, "żół...", Truncate("żółty kot", 3))
}

func TestJoinBlocks(t *testing.T) {
	assert.Equal(t, "a\n---\nb", JoinBlocks([]string{"a", "b"}))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace("  a\n\tb   c "))
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("plain text", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)

	out, err = RenderTemplate("Hello {{.name}}", map[string]any{"name": "Tom"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Tom", out)

	_, err = RenderTemplate("{{.broken", nil)
	assert.Error(t, err)
}

func TestValidateParametersNormalizesIntegerKinds(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a":    map[string]any{"type": "number"},
			"n":    map[string]any{"type": "integer"},
			"name": map[string]any{"type": "string"},
		},
	}

	params := map[string]any{"a": 2, "n": int64(7), "name": "x"}
	require.NoError(t, ValidateParameters(params, schema))

	// Numeric kinds come out as float64, the shape JSON decoding produces.
	assert.Equal(t, float64(2), params["a"])
	assert.Equal(t, float64(7), params["n"])
	assert.Equal(t, "x", params["name"])
}
