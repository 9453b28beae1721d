package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentacademy/core"
)

// MockTurn scripts a single assistant turn for the MockModel. A turn may
// carry text, tool calls, or both. FinishReason defaults to "stop" (or
// "tool_calls" when ToolCalls is non-empty).
type MockTurn struct {
	Text         string
	ToolCalls    []core.FunctionCall
	FinishReason string
}

// MockModel is an in-memory Model for tests and offline lessons. It supports
// two modes:
//
//  1. Prompt lookup: AddResponse registers a canned completion keyed by the
//     last user text.
//  2. Scripted turns: AddTurn queues whole assistant turns (including tool
//     calls) consumed in order across successive Generate calls, which is
//     what multi-step tool loops need.
//
// Scripted turns take precedence while any remain queued.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	turns     []MockTurn
	calls     int
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      "mock",
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// AddTurn queues a scripted assistant turn.
func (m *MockModel) AddTurn(turns ...MockTurn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turns...)
}

// Calls reports how many times Generate has been invoked.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements Model. With Stream enabled the text portion is emitted
// as per-rune partial chunks before the final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		m.mu.Lock()
		m.calls++
		var turn *MockTurn
		if len(m.turns) > 0 {
			t := m.turns[0]
			m.turns = m.turns[1:]
			turn = &t
		}
		m.mu.Unlock()

		if turn == nil {
			if len(req.Contents) == 0 {
				errCh <- fmt.Errorf("no contents provided")
				return
			}
			t := MockTurn{Text: m.lookupResponse(req)}
			turn = &t
		}

		if req.Stream && turn.Text != "" {
			for _, r := range turn.Text {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					Partial: true,
					Content: core.Content{
						Role:  "assistant",
						Parts: []core.Part{core.TextPart{Text: string(r)}},
					},
				}:
				}
			}
		}

		respCh <- turn.toResponse()
	}()

	return respCh, errCh
}

// Info returns metadata describing the mock.
func (m *MockModel) Info() Info { return m.info }

func (m *MockModel) lookupResponse(req Request) string {
	last := req.Contents[len(req.Contents)-1]

	var inputText string
	for _, p := range last.Parts {
		if tp, ok := p.(core.TextPart); ok {
			inputText += tp.Text
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if full, ok := m.responses[inputText]; ok {
		return full
	}

	return fmt.Sprintf("Mock response to: %s", inputText)
}

func (t MockTurn) toResponse() Response {
	parts := make([]core.Part, 0, len(t.ToolCalls)+1)
	if t.Text != "" {
		parts = append(parts, core.TextPart{Text: t.Text})
	}
	for _, fc := range t.ToolCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
	}

	finish := t.FinishReason
	if finish == "" {
		finish = "stop"
		if len(t.ToolCalls) > 0 {
			finish = "tool_calls"
		}
	}

	return Response{
		Partial:      false,
		Content:      core.Content{Role: "assistant", Parts: parts},
		FinishReason: finish,
	}
}
