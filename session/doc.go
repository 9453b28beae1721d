// Package session houses concrete implementations of core.SessionStore.
// The interface itself (and the Session struct) live in the core package so
// higher level packages (agents, runner) depend on the contract rather than
// on concrete storage.
//
// Additional backends (Redis, Postgres, ...) belong in sub-packages; only the
// wiring layer decides which implementation to instantiate.
package session
