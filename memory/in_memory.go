package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/agentacademy/core"
)

// storedMemory is the internal representation persisted by InMemoryStore.
type storedMemory struct {
	id       string
	content  string
	metadata map[string]any
}

// InMemoryStore is a process-local MemoryStore with append-only entries and
// keyword search. Queries are tokenized on whitespace and each stored entry
// is scored by the fraction of query terms it contains (case insensitive).
// Results come back ordered by score, then id, so searches are
// deterministic. Suitable for tests and demos; swap in a vector index for
// production retrieval.
type InMemoryStore struct {
	mu      sync.RWMutex
	storage map[string][]storedMemory // sessionID -> stored memories
	nextID  int
}

// NewInMemoryStore creates an empty in-memory memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{storage: make(map[string][]storedMemory)}
}

// Store appends a new memory entry for the session.
func (m *InMemoryStore) Store(sessionID, content string, metadata map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	entry := storedMemory{
		id:       fmt.Sprintf("mem_%d", m.nextID),
		content:  content,
		metadata: metadata,
	}
	m.storage[sessionID] = append(m.storage[sessionID], entry)

	return nil
}

// Search scores stored memories against the query terms and returns up to
// limit hits. An empty query matches everything with a score of 1.0.
func (m *InMemoryStore) Search(sessionID, query string, limit int) ([]core.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.storage[sessionID]
	terms := strings.Fields(strings.ToLower(query))

	results := make([]core.SearchResult, 0, len(entries))
	for _, e := range entries {
		score := scoreEntry(strings.ToLower(e.content), terms)
		if score == 0 {
			continue
		}

		md := make(map[string]any, len(e.metadata))
		for k, v := range e.metadata {
			md[k] = v
		}
		results = append(results, core.SearchResult{ID: e.id, Content: e.content, Score: score, Metadata: md})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Delete removes a stored memory entry by id.
func (m *InMemoryStore) Delete(sessionID, memoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, ok := m.storage[sessionID]
	if !ok {
		return fmt.Errorf("memory not found: %s", memoryID)
	}

	for i, e := range entries {
		if e.id == memoryID {
			m.storage[sessionID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("memory not found: %s", memoryID)
}

// scoreEntry returns the fraction of terms present in content. No terms
// means match-all.
func scoreEntry(content string, terms []string) float64 {
	if len(terms) == 0 {
		return 1.0
	}

	matched := 0
	for _, t := range terms {
		if strings.Contains(content, t) {
			matched++
		}
	}

	return float64(matched) / float64(len(terms))
}
