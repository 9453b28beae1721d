// Package logging provides a minimal logging interface and adapters for
// AgentAcademy.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the runner, graph engine, agents and tools use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogLogger adapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "text", false)
//	academy := agentacademy.New(rootAgent, func(o *agentacademy.Options) {
//		o.Logger = logger
//	})
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
