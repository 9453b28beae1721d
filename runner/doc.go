// Package runner coordinates agent execution against session and memory
// stores. It creates run contexts, persists user input and agent events,
// applies event side effects (state deltas), and exposes both channel-based
// and synchronous invocation.
package runner
