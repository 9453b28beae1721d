package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentacademy/core"
	"github.com/hupe1980/agentacademy/model"
	"github.com/hupe1980/agentacademy/tool"
)

func echoTool() tool.Tool {
	return tool.NewFunctionTool("echo", "Echo the input.",
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
}

func TestModelAgentFinalAnswer(t *testing.T) {
	llm := model.NewMockModel("mock")
	llm.AddTurn(model.MockTurn{Text: "Paris is the capital of France."})

	a := NewModelAgent("assistant", llm, func(o *ModelAgentOptions) {
		o.EnableStreaming = false
	})

	rc, drain := newTestRunContext(t, "What is the capital of France?")
	require.NoError(t, a.Run(rc))

	events := drain()
	require.Len(t, events, 1)
	assert.Equal(t, "assistant", events[0].Author)
	assert.Equal(t, "Paris is the capital of France.", events[0].Content.Text())
	assert.True(t, events[0].IsFinalResponse())
}

func TestModelAgentToolRound(t *testing.T) {
	llm := model.NewMockModel("mock")
	llm.AddTurn(
		model.MockTurn{ToolCalls: []core.FunctionCall{{ID: "call-1", Name: "echo", Arguments: `{"message": "ping"}`}}},
		model.MockTurn{Text: "The tool said: ping"},
	)

	a := NewModelAgent("assistant", llm, func(o *ModelAgentOptions) {
		o.EnableStreaming = false
		o.Tools = []tool.Tool{echoTool()}
	})

	rc, drain := newTestRunContext(t, "Use the echo tool.")
	require.NoError(t, a.Run(rc))

	events := drain()
	require.Len(t, events, 3)

	assert.Len(t, events[0].GetFunctionCalls(), 1)

	responses := events[1].GetFunctionResponses()
	require.Len(t, responses, 1)
	assert.Equal(t, "call-1", responses[0].ID)
	assert.Equal(t, "ping", responses[0].Response)

	assert.Equal(t, "The tool said: ping", events[2].Content.Text())
	assert.Equal(t, 2, llm.Calls())
}

func TestModelAgentOutputKey(t *testing.T) {
	llm := model.NewMockModel("mock")
	llm.AddTurn(model.MockTurn{Text: "42"})

	a := NewModelAgent("assistant", llm, func(o *ModelAgentOptions) {
		o.EnableStreaming = false
		o.OutputKey = "answer"
	})

	rc, drain := newTestRunContext(t, "What is six times seven?")
	require.NoError(t, a.Run(rc))

	events := drain()
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Actions.StateDelta)
	assert.Equal(t, "42", events[0].Actions.StateDelta["answer"])
}

func TestModelAgentStreaming(t *testing.T) {
	llm := model.NewMockModel("mock")
	llm.AddTurn(model.MockTurn{Text: "abc"})

	a := NewModelAgent("assistant", llm)

	rc, drain := newTestRunContext(t, "stream please")
	require.NoError(t, a.Run(rc))

	events := drain()
	require.Len(t, events, 4)

	var streamed string
	for _, ev := range events[:3] {
		assert.True(t, ev.IsPartial())
		streamed += ev.Content.Text()
	}
	assert.Equal(t, "abc", streamed)
	assert.Equal(t, "abc", events[3].Content.Text())
}

func TestModelAgentToolRoundLimit(t *testing.T) {
	llm := model.NewMockModel("mock")
	call := model.MockTurn{ToolCalls: []core.FunctionCall{{ID: "c", Name: "echo", Arguments: `{"message": "x"}`}}}
	llm.AddTurn(call, call, call)

	a := NewModelAgent("assistant", llm, func(o *ModelAgentOptions) {
		o.EnableStreaming = false
		o.Tools = []tool.Tool{echoTool()}
		o.MaxToolRounds = 2
	})

	rc, _ := newTestRunContext(t, "loop forever")
	err := a.Run(rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded 2 tool rounds")
}

func TestModelAgentTransfer(t *testing.T) {
	llm := model.NewMockModel("mock")
	llm.AddTurn(model.MockTurn{ToolCalls: []core.FunctionCall{{ID: "t", Name: "transfer_to_agent", Arguments: `{"agent": "specialist"}`}}})

	a := NewModelAgent("assistant", llm, func(o *ModelAgentOptions) {
		o.EnableStreaming = false
		o.Tools = []tool.Tool{tool.NewTransferToAgentTool()}
	})

	ran := false
	specialist := newFuncAgent("specialist", func(rc *core.RunContext) error {
		ran = true
		return nil
	})
	require.NoError(t, a.SetSubAgents(specialist))

	rc, _ := newTestRunContext(t, "hand this off")
	require.NoError(t, a.Run(rc))
	assert.True(t, ran)
}
