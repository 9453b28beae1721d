package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentacademy/core"
	"github.com/hupe1980/agentacademy/logging"
	"github.com/hupe1980/agentacademy/memory"
	"github.com/hupe1980/agentacademy/session"
)

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// EventBufferSize sets channel buffering for events.
	EventBufferSize int
	// MaxModelCalls limits the number of model calls per run. Zero means
	// unlimited.
	MaxModelCalls int
	// SessionStore persists sessions; defaults to in-memory.
	SessionStore core.SessionStore
	// MemoryStore backs long-term recall; defaults to in-memory.
	MemoryStore core.MemoryStore
	// Logger receives structured run diagnostics.
	Logger logging.Logger
}

// Runner coordinates agent execution: resolves the session, creates run
// contexts, streams events, applies side effects, and persists history.
// Public methods are safe for concurrent use.
type Runner struct {
	agent core.Agent

	eventBufferSize int
	maxModelCalls   int

	sessionStore core.SessionStore
	memoryStore  core.MemoryStore
	logger       logging.Logger

	activeRuns map[string]context.CancelFunc
	mu         sync.RWMutex
}

// New constructs a Runner around a root agent with optional overrides.
func New(agent core.Agent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		EventBufferSize: 100,
		MaxModelCalls:   100,
		SessionStore:    session.NewInMemoryStore(),
		MemoryStore:     memory.NewInMemoryStore(),
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		agent:           agent,
		eventBufferSize: opts.EventBufferSize,
		maxModelCalls:   opts.MaxModelCalls,
		sessionStore:    opts.SessionStore,
		memoryStore:     opts.MemoryStore,
		logger:          opts.Logger,
		activeRuns:      make(map[string]context.CancelFunc),
	}
}

// Run starts an asynchronous invocation. The returned event channel delivers
// every event the agent tree emits (partials included); the error channel
// carries at most one terminal error. Both close when the run finishes.
func (r *Runner) Run(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) (string, <-chan core.Event, <-chan error, error) {
	sess, err := r.sessionStore.Get(sessionID)
	if err != nil {
		return "", nil, nil, fmt.Errorf("get session: %w", err)
	}

	runID := core.NewID()

	eventsCh := make(chan core.Event, r.eventBufferSize)
	errorsCh := make(chan error, 1)
	agentEmit := make(chan core.Event, r.eventBufferSize)

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	runCtx := core.NewRunContext(
		ctx,
		sessionID,
		runID,
		core.AgentInfo{Name: r.agent.Name(), Type: "agent"},
		userContent,
		r.maxModelCalls,
		agentEmit,
		sess,
		r.sessionStore,
		r.memoryStore,
		r.logger,
	)

	userEvent := core.NewUserContentEvent(runID, &userContent)
	if err := r.sessionStore.AppendEvent(sessionID, userEvent); err != nil {
		cancel()
		return "", nil, nil, fmt.Errorf("append user event: %w", err)
	}

	go func() {
		defer func() {
			close(agentEmit)
			r.mu.Lock()
			delete(r.activeRuns, runID)
			r.mu.Unlock()
		}()

		r.logger.Debug("runner.run.start", "run", runID, "session", sessionID, "agent", r.agent.Name())

		if err := r.agent.Run(runCtx); err != nil {
			select {
			case <-runCtx.Done():
			case errorsCh <- fmt.Errorf("agent execution failed: %w", err):
			}
		}
	}()

	go func() {
		defer func() { close(eventsCh); close(errorsCh) }()
		r.processEvents(runCtx, sessionID, agentEmit, eventsCh, errorsCh)
	}()

	return runID, eventsCh, errorsCh, nil
}

// RunSync executes a run to completion and returns all non-partial events.
func (r *Runner) RunSync(ctx context.Context, sessionID string, userContent core.Content) ([]core.Event, error) {
	_, eventsCh, errorsCh, err := r.Run(ctx, sessionID, userContent)
	if err != nil {
		return nil, err
	}

	var events []core.Event
	for ev := range eventsCh {
		if !ev.IsPartial() {
			events = append(events, ev)
		}
	}

	if runErr := <-errorsCh; runErr != nil {
		return events, runErr
	}

	return events, nil
}

// Cancel cancels a running run by ID.
func (r *Runner) Cancel(runID string) error {
	r.mu.Lock()
	cancel, exists := r.activeRuns[runID]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

func (r *Runner) processEvents(
	runCtx *core.RunContext,
	sessionID string,
	agentEmit <-chan core.Event,
	eventsCh chan<- core.Event,
	errorsCh chan<- error,
) {
	for {
		select {
		case <-runCtx.Done():
			return
		case ev, ok := <-agentEmit:
			if !ok {
				return
			}

			if err := r.applyEventActions(sessionID, ev); err != nil {
				select {
				case <-runCtx.Done():
				case errorsCh <- fmt.Errorf("apply event actions: %w", err):
				}
				return
			}

			if !ev.IsPartial() {
				if err := r.sessionStore.AppendEvent(sessionID, ev); err != nil {
					select {
					case <-runCtx.Done():
					case errorsCh <- fmt.Errorf("append event: %w", err):
					}
					return
				}
			}

			select {
			case <-runCtx.Done():
				return
			case eventsCh <- ev:
				r.logger.Debug("runner.event.delivered", "event", ev.ID, "session", sessionID, "author", ev.Author)
			}
		}
	}
}

// applyEventActions persists state deltas attached to an event. Transfer and
// escalation actions are handled inside the agent tree; the runner only
// records them.
func (r *Runner) applyEventActions(sessionID string, ev core.Event) error {
	if len(ev.Actions.StateDelta) > 0 {
		if err := r.sessionStore.ApplyDelta(sessionID, ev.Actions.StateDelta); err != nil {
			return fmt.Errorf("apply state delta: %w", err)
		}
	}

	if ev.Actions.TransferToAgent != nil && *ev.Actions.TransferToAgent != "" {
		r.logger.Debug("runner.event.transfer", "target", *ev.Actions.TransferToAgent, "session", sessionID)
	}

	if ev.Actions.Escalate != nil && *ev.Actions.Escalate {
		r.logger.Debug("runner.event.escalate", "session", sessionID)
	}

	return nil
}
