package agent

import (
	"fmt"
	"sync"

	"github.com/hupe1980/agentacademy/core"
)

// ParallelAgent executes its children concurrently. Each child receives a
// cloned context with a hierarchical branch label, isolating its staged state
// delta while the emit channel and session snapshot stay shared.
type ParallelAgent struct {
	BaseAgent
	children []core.Agent
}

// NewParallelAgent creates a concurrent fan-out over the given children.
func NewParallelAgent(name string, children ...core.Agent) *ParallelAgent {
	a := &ParallelAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
	}
	_ = a.SetSubAgents(children...)

	return a
}

// branchCtxFor clones the parent context and assigns a branch path of the
// form "Parent.Child" so each child's pending deltas stay isolated.
func (p *ParallelAgent) branchCtxFor(runCtx *core.RunContext, child core.Agent) *core.RunContext {
	suffix := fmt.Sprintf("%s.%s", p.Name(), child.Name())
	return runCtx.WithBranch(buildBranchPath(runCtx.Branch, suffix))
}

// Run implements core.Agent launching all children concurrently. The first
// error encountered (after all complete) is returned; successful children
// continue even if siblings fail.
func (p *ParallelAgent) Run(runCtx *core.RunContext) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(p.children))

	for _, child := range p.children {
		wg.Add(1)
		go func(c core.Agent) {
			defer wg.Done()

			if err := c.Run(p.branchCtxFor(runCtx, c)); err != nil {
				errCh <- fmt.Errorf("parallel execution failed for agent %s: %w", c.Name(), err)
			}
		}(child)
	}

	wg.Wait()
	close(errCh)

	if len(errCh) > 0 {
		return <-errCh
	}

	return nil
}
