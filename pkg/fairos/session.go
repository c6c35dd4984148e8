package fairos

import "sync"

// SessionStore keeps session tokens keyed by username. Implementations must
// be safe for concurrent use.
type SessionStore interface {
	Set(username, token string)
	Get(username string) (string, bool)
	Remove(username string)
}

type memorySessionStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemorySessionStore returns an in-memory SessionStore. Tokens live only
// for the lifetime of the process.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{tokens: map[string]string{}}
}

func (s *memorySessionStore) Set(username, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[username] = token
}

func (s *memorySessionStore) Get(username string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[username]
	return token, ok
}

func (s *memorySessionStore) Remove(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, username)
}
