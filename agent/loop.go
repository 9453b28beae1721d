package agent

import (
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentacademy/core"
)

// ErrEscalated is returned when a child agent signals escalation.
var ErrEscalated = errors.New("child agent escalated")

// LoopAgent executes a single child agent repeatedly. Termination is
// controlled by a maximum iteration count, an optional predicate over the
// child's final text output, an optional delay between iterations, and
// escalation events emitted by the child.
type LoopAgent struct {
	BaseAgent
	child       core.Agent
	maxIters    int
	interval    time.Duration
	stopOnError bool
	predicate   func(output string) bool
}

// LoopOption customizes LoopAgent behavior.
type LoopOption func(*LoopAgent)

// WithMaxIters sets the maximum number of iterations for the loop.
func WithMaxIters(n int) LoopOption {
	return func(l *LoopAgent) { l.maxIters = n }
}

// WithInterval sets the delay between iterations.
func WithInterval(d time.Duration) LoopOption {
	return func(l *LoopAgent) { l.interval = d }
}

// WithPredicate sets a termination condition evaluated against the child's
// final text output after each iteration. Returning true stops the loop.
func WithPredicate(pred func(output string) bool) LoopOption {
	return func(l *LoopAgent) { l.predicate = pred }
}

// WithContinueOnError keeps the loop running when an iteration fails.
func WithContinueOnError() LoopOption {
	return func(l *LoopAgent) { l.stopOnError = false }
}

// NewLoopAgent constructs a looping coordinator around a child agent.
// Defaults: 100 iterations, no interval, stop on first error.
func NewLoopAgent(name string, child core.Agent, opts ...LoopOption) *LoopAgent {
	la := &LoopAgent{
		BaseAgent:   NewBaseAgent(name),
		child:       child,
		maxIters:    100,
		stopOnError: true,
	}
	_ = la.SetSubAgents(child)

	for _, o := range opts {
		o(la)
	}

	return la
}

// Run implements core.Agent performing iterative execution with escalation
// detection. Escalation terminates the loop early without an error.
func (l *LoopAgent) Run(runCtx *core.RunContext) error {
	for i := 0; i < l.maxIters; i++ {
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		default:
		}

		runCtx.LogDebug("loop.iteration", "agent", l.Name(), "iteration", i+1)

		output, childErr := l.runChild(runCtx)

		if errors.Is(childErr, ErrEscalated) {
			runCtx.LogInfo("loop.escalated", "agent", l.Name(), "iteration", i+1)
			return nil
		}
		if childErr != nil {
			if l.stopOnError {
				return fmt.Errorf("loop iteration %d failed for agent %s: %w", i+1, l.child.Name(), childErr)
			}
			runCtx.LogWarn("loop.iteration_failed", "agent", l.Name(), "iteration", i+1, "error", childErr.Error())
		}

		if l.predicate != nil && l.predicate(output) {
			runCtx.LogDebug("loop.predicate_met", "agent", l.Name(), "iteration", i+1)
			return nil
		}

		if l.interval > 0 && i < l.maxIters-1 {
			select {
			case <-runCtx.Done():
				return runCtx.Err()
			case <-time.After(l.interval):
			}
		}
	}

	return nil
}

// runChild executes the child once, intercepting its events to detect
// escalation and to capture the final text output for the predicate. All
// events are forwarded to the parent context.
func (l *LoopAgent) runChild(runCtx *core.RunContext) (string, error) {
	interceptCh := make(chan core.Event, 16)
	childCtx := runCtx.NewChildContext(interceptCh, runCtx.Branch)

	done := make(chan error, 1)
	go func() {
		done <- l.child.Run(childCtx)
		close(interceptCh)
	}()

	var output string
	escalated := false

	for event := range interceptCh {
		if event.Actions.Escalate != nil && *event.Actions.Escalate {
			escalated = true
		}
		if event.IsFinalResponse() && event.Content != nil {
			output = event.Content.Text()
		}

		if err := runCtx.EmitEvent(event); err != nil {
			<-done
			return output, err
		}
	}

	err := <-done
	if err != nil {
		return output, err
	}
	if escalated {
		return output, ErrEscalated
	}

	return output, nil
}

// CreateEscalationEvent builds an event carrying the escalation flag, for
// agents that determine they cannot complete their task at this level.
func CreateEscalationEvent(runID, author string, content *core.Content) core.Event {
	escalate := true
	ev := core.NewEvent(runID, author)
	ev.Actions.Escalate = &escalate
	ev.Content = content
	return ev
}
