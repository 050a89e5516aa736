// Package secrets resolves placeholder markers in fragment bodies
// against a persistent placeholder store, generating cryptographically
// random values on first use. Placeholder values are never silently
// regenerated: once stored, a value is reused verbatim on every
// subsequent run until explicitly reset by the operator.
package secrets

import (
	"context"
	"sort"
	"sync"
)

// GlobalScope is the scope of placeholders shared by all services.
// All other scopes are service identifiers.
const GlobalScope = "global"

// =============================================================================
// Store Interface
// =============================================================================

// Key identifies one placeholder value: a name scoped either globally
// or to a single service.
type Key struct {
	Scope string
	Name  string
}

func (k Key) String() string {
	return k.Scope + "/" + k.Name
}

// Entry is one stored placeholder value.
type Entry struct {
	Scope string `json:"scope"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Store persists placeholder values across assembly runs.
// Implementations live in the shell; the resolver only depends on this
// interface so tests can substitute an in-memory store.
type Store interface {
	// Get returns the stored value for key, and whether one exists.
	Get(ctx context.Context, key Key) (string, bool, error)

	// Put stores a value for key. Normal resolution only calls Put for
	// keys that have no stored value.
	Put(ctx context.Context, key Key, value string) error

	// Delete removes the value for key. Deleting an absent key is not
	// an error. Only explicit operator resets call Delete.
	Delete(ctx context.Context, key Key) error

	// List returns all entries ordered by scope, then name.
	List(ctx context.Context) ([]Entry, error)

	// Close releases any resources held by the store.
	Close() error
}

// =============================================================================
// MemoryStore
// =============================================================================

// MemoryStore is an in-memory Store for tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[Key]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Key]string)}
}

func (s *MemoryStore) Get(_ context.Context, key Key) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[key]
	return value, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, key Key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, 0, len(s.entries))
	for key, value := range s.entries {
		entries = append(entries, Entry{Scope: key.Scope, Name: key.Name, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Scope != entries[j].Scope {
			return entries[i].Scope < entries[j].Scope
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
