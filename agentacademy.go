// Package agentacademy provides a high-level façade over the runner and
// service abstractions (sessions, memory, logging) used by the course
// lessons. Most programs interact with this package by:
//  1. Building an agent tree (model, sequential, parallel, loop, supervisor)
//  2. Creating an Academy via New() around the root agent
//  3. Invoking it asynchronously (Invoke) or synchronously (InvokeSync)
//
// All defaults are safe for local development: in-memory stores and a no-op
// logger. Supply durable stores and a structured logger for anything beyond
// the lessons.
package agentacademy

import (
	"context"

	"github.com/hupe1980/agentacademy/core"
	"github.com/hupe1980/agentacademy/logging"
	"github.com/hupe1980/agentacademy/memory"
	"github.com/hupe1980/agentacademy/runner"
	"github.com/hupe1980/agentacademy/session"
)

// Options configures the Academy instance.
type Options struct {
	// EventBufferSize sets the channel buffer size for event processing.
	EventBufferSize int

	// MaxModelCalls bounds model usage per run. Zero means unlimited.
	MaxModelCalls int

	// Stores default to in-memory implementations if not provided.
	SessionStore core.SessionStore
	MemoryStore  core.MemoryStore

	// Logger defaults to a no-op logger if nil.
	Logger logging.Logger
}

// Academy is the high-level façade aggregating the runner and its services.
type Academy struct {
	opts   Options
	runner *runner.Runner
}

// New creates an Academy around a root agent with optional overrides. Any
// unset service is initialized with an in-memory implementation.
func New(rootAgent core.Agent, optFns ...func(o *Options)) *Academy {
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

	r := runner.New(rootAgent, func(o *runner.Options) {
		o.EventBufferSize = opts.EventBufferSize
		o.MaxModelCalls = opts.MaxModelCalls
		o.SessionStore = opts.SessionStore
		o.MemoryStore = opts.MemoryStore
		o.Logger = opts.Logger
	})

	return &Academy{opts: opts, runner: r}
}

// Invoke starts an asynchronous run returning event and error channels.
func (a *Academy) Invoke(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) (string, <-chan core.Event, <-chan error, error) {
	return a.runner.Run(ctx, sessionID, userContent)
}

// InvokeSync runs to completion and returns the non-partial events.
func (a *Academy) InvokeSync(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) ([]core.Event, error) {
	return a.runner.RunSync(ctx, sessionID, userContent)
}

// Cancel aborts a running invocation by run ID.
func (a *Academy) Cancel(runID string) error {
	return a.runner.Cancel(runID)
}

// FinalText returns the text of the last final assistant response in events,
// or an empty string when there is none.
func FinalText(events []core.Event) string {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].IsFinalResponse() && events[i].Content != nil {
			return events[i].Content.Text()
		}
	}
	return ""
}
