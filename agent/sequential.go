package agent

import (
	"fmt"

	"github.com/hupe1980/agentacademy/core"
)

// SequentialAgent executes its children one after another with shared session
// state. Each child sees the staged state its predecessors produced, so
// outputs can build on each other. The first error stops the pipeline.
type SequentialAgent struct {
	BaseAgent
	children []core.Agent
}

// NewSequentialAgent creates a sequential pipeline over the given children.
func NewSequentialAgent(name string, children ...core.Agent) *SequentialAgent {
	a := &SequentialAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
	}
	_ = a.SetSubAgents(children...)

	return a
}

// Run implements core.Agent. It executes each child agent in order; errors
// stop further processing immediately.
func (s *SequentialAgent) Run(runCtx *core.RunContext) error {
	for _, child := range s.children {
		if err := child.Run(runCtx); err != nil {
			return fmt.Errorf("sequential execution failed at agent %s: %w", child.Name(), err)
		}
	}

	return nil
}
