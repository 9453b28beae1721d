package core

// SessionStore persists sessions and their evolving state / event history.
type SessionStore interface {
	Create(id string) (*Session, error)
	Get(id string) (*Session, error)
	AppendEvent(sessionID string, event Event) error
	ApplyDelta(sessionID string, delta map[string]any) error
}

// SearchResult represents a recalled memory item with a relevance score and
// arbitrary metadata.
type SearchResult struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}

// MemoryStore provides long-lived recall storage scoped per session.
type MemoryStore interface {
	Store(sessionID, content string, metadata map[string]any) error
	Search(sessionID, query string, limit int) ([]SearchResult, error)
	Delete(sessionID, id string) error
}
