package agent

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentacademy/core"
)

func TestParallelAgentRunsAllChildren(t *testing.T) {
	var mu sync.Mutex
	ran := map[string]bool{}

	worker := func(name string) core.Agent {
		return newFuncAgent(name, func(rc *core.RunContext) error {
			mu.Lock()
			defer mu.Unlock()
			ran[name] = true
			return nil
		})
	}

	par := NewParallelAgent("fanout", worker("a"), worker("b"), worker("c"))

	rc, _ := newTestRunContext(t, "go")
	require.NoError(t, par.Run(rc))

	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, ran)
}

func TestParallelAgentBranchIsolation(t *testing.T) {
	var mu sync.Mutex
	branches := map[string]string{}

	worker := func(name string) core.Agent {
		return newFuncAgent(name, func(rc *core.RunContext) error {
			rc.SetState("scratch", name)

			mu.Lock()
			defer mu.Unlock()
			branches[name] = rc.Branch
			return nil
		})
	}

	par := NewParallelAgent("fanout", worker("left"), worker("right"))

	rc, _ := newTestRunContext(t, "go")
	require.NoError(t, par.Run(rc))

	assert.Equal(t, "fanout.left", branches["left"])
	assert.Equal(t, "fanout.right", branches["right"])

	_, staged := rc.StateDelta["scratch"]
	assert.False(t, staged)
}

func TestParallelAgentAggregatesErrors(t *testing.T) {
	ok := newFuncAgent("ok", func(rc *core.RunContext) error { return nil })
	bad := newFuncAgent("bad", func(rc *core.RunContext) error { return errors.New("kaput") })

	par := NewParallelAgent("fanout", ok, bad)

	rc, _ := newTestRunContext(t, "go")
	err := par.Run(rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}
