package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentacademy/agent"
	"github.com/hupe1980/agentacademy/core"
	"github.com/hupe1980/agentacademy/model"
	"github.com/hupe1980/agentacademy/session"
)

func TestRunSyncDeliversEvents(t *testing.T) {
	llm := model.NewMockModel("mock")
	llm.AddResponse("Hello", "Hi there!")

	a := agent.NewModelAgent("assistant", llm, func(o *agent.ModelAgentOptions) {
		o.EnableStreaming = false
	})

	r := New(a)

	events, err := r.RunSync(context.Background(), "sess-1", core.NewUserText("Hello"))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, "assistant", events[0].Author)
	assert.Equal(t, "Hi there!", events[0].Content.Text())
}

func TestRunPersistsHistoryAndState(t *testing.T) {
	store := session.NewInMemoryStore()

	llm := model.NewMockModel("mock")
	llm.AddTurn(model.MockTurn{Text: "done"})

	a := agent.NewModelAgent("assistant", llm, func(o *agent.ModelAgentOptions) {
		o.EnableStreaming = false
		o.OutputKey = "result"
	})

	r := New(a, func(o *Options) {
		o.SessionStore = store
	})

	_, err := r.RunSync(context.Background(), "sess-1", core.NewUserText("go"))
	require.NoError(t, err)

	sess, err := store.Get("sess-1")
	require.NoError(t, err)

	v, ok := sess.GetState("result")
	require.True(t, ok)
	assert.Equal(t, "done", v)

	history := sess.GetEvents()
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Content.Role)
	assert.Equal(t, "assistant", history[1].Author)
}

func TestRunSyncSecondTurnSeesHistory(t *testing.T) {
	llm := model.NewMockModel("mock")

	a := agent.NewModelAgent("assistant", llm, func(o *agent.ModelAgentOptions) {
		o.EnableStreaming = false
	})

	r := New(a)

	_, err := r.RunSync(context.Background(), "sess-1", core.NewUserText("first"))
	require.NoError(t, err)

	events, err := r.RunSync(context.Background(), "sess-1", core.NewUserText("second"))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, "Mock response to: second", events[0].Content.Text())
	assert.Equal(t, 2, llm.Calls())
}

func TestRunSyncReportsAgentError(t *testing.T) {
	failing := &failingAgent{BaseAgent: agent.NewBaseAgent("failing")}

	r := New(failing)

	_, err := r.RunSync(context.Background(), "sess-1", core.NewUserText("go"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent execution failed")
}

func TestCancelUnknownRun(t *testing.T) {
	r := New(&failingAgent{BaseAgent: agent.NewBaseAgent("x")})
	assert.Error(t, r.Cancel("missing"))
}

type failingAgent struct {
	agent.BaseAgent
}

func (f *failingAgent) Run(_ *core.RunContext) error { return errors.New("kaput") }
