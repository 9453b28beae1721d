package util

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Truncate shortens s to at most max runes, appending an ellipsis when text
// was cut. Used by adapters to keep long upstream payloads readable.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// JoinBlocks joins formatted text blocks with the separator used across all
// adapter outputs.
func JoinBlocks(blocks []string) string {
	return strings.Join(blocks, "\n---\n")
}

// CollapseWhitespace folds runs of whitespace (including newlines) into
// single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RenderTemplate expands Go text/template markers in text against state.
// Text without markers is returned unchanged without parsing.
func RenderTemplate(text string, state map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New("prompt").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"join": func(sep string, items []any) string {
			strItems := make([]string, len(items))
			for i, item := range items {
				strItems[i] = fmt.Sprintf("%v", item)
			}
			return strings.Join(strItems, sep)
		},
	}).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, state); err != nil {
		return "", err
	}

	return buf.String(), nil
}
