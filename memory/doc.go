// Package memory contains concrete MemoryStore implementations. The store
// interface and SearchResult type live in the core package; depend on
// core.MemoryStore in calling code and pick an implementation at wiring time.
package memory
