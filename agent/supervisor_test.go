package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentacademy/core"
	"github.com/hupe1980/agentacademy/model"
)

func transferCall(id, target string) core.FunctionCall {
	return core.FunctionCall{ID: id, Name: "transfer_to_agent", Arguments: `{"agent": "` + target + `"}`}
}

func TestSupervisorRoutesAndFinishes(t *testing.T) {
	llm := model.NewMockModel("mock")
	llm.AddTurn(
		model.MockTurn{ToolCalls: []core.FunctionCall{transferCall("r1", "researcher")}},
		model.MockTurn{Text: "Final report based on the research."},
	)

	researcher := newFuncAgent("researcher", func(rc *core.RunContext) error {
		return rc.EmitEvent(core.NewMessageEvent("researcher", "research notes"))
	})
	researcher.SetDescription("Finds background information.")

	sup := NewSupervisorAgent("supervisor", llm, []core.Agent{researcher})

	rc, drain := newTestRunContext(t, "Write a report.")
	require.NoError(t, sup.Run(rc))

	events := drain()
	require.Len(t, events, 4)

	assert.Len(t, events[0].GetFunctionCalls(), 1)
	assert.Equal(t, "researcher", events[1].Author)

	responses := events[2].GetFunctionResponses()
	require.Len(t, responses, 1)
	assert.Equal(t, "research notes", responses[0].Response)

	assert.Equal(t, "Final report based on the research.", events[3].Content.Text())
	assert.Equal(t, 2, llm.Calls())
}

func TestSupervisorReportsUnknownMember(t *testing.T) {
	llm := model.NewMockModel("mock")
	llm.AddTurn(
		model.MockTurn{ToolCalls: []core.FunctionCall{transferCall("r1", "nobody")}},
		model.MockTurn{Text: "I could not route the task."},
	)

	researcher := newFuncAgent("researcher", func(rc *core.RunContext) error { return nil })

	sup := NewSupervisorAgent("supervisor", llm, []core.Agent{researcher})

	rc, drain := newTestRunContext(t, "Do something.")
	require.NoError(t, sup.Run(rc))

	events := drain()
	require.Len(t, events, 3)

	responses := events[1].GetFunctionResponses()
	require.Len(t, responses, 1)
	assert.Contains(t, responses[0].Error, "unknown agent")
	assert.Contains(t, responses[0].Error, "researcher")
}

func TestSupervisorRoundLimit(t *testing.T) {
	llm := model.NewMockModel("mock")
	llm.AddTurn(
		model.MockTurn{ToolCalls: []core.FunctionCall{transferCall("r1", "researcher")}},
		model.MockTurn{ToolCalls: []core.FunctionCall{transferCall("r2", "researcher")}},
	)

	researcher := newFuncAgent("researcher", func(rc *core.RunContext) error { return nil })

	sup := NewSupervisorAgent("supervisor", llm, []core.Agent{researcher}, func(o *SupervisorAgentOptions) {
		o.MaxRounds = 2
	})

	rc, _ := newTestRunContext(t, "Loop.")
	err := sup.Run(rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded 2 routing rounds")
}

func TestSupervisorDefaultInstructionListsMembers(t *testing.T) {
	llm := model.NewMockModel("mock")

	researcher := newFuncAgent("researcher", func(rc *core.RunContext) error { return nil })
	researcher.SetDescription("Finds background information.")
	writer := newFuncAgent("writer", func(rc *core.RunContext) error { return nil })
	writer.SetDescription("Writes prose.")

	sup := NewSupervisorAgent("supervisor", llm, []core.Agent{researcher, writer})

	rc, _ := newTestRunContext(t, "hi")
	instructions, err := sup.resolveInstructions(rc)
	require.NoError(t, err)

	assert.Contains(t, instructions, "researcher: Finds background information.")
	assert.Contains(t, instructions, "writer: Writes prose.")
	assert.Contains(t, instructions, "transfer_to_agent")
}
