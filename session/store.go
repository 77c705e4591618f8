package session

import (
	"sort"
	"sync"
)

// Store is a volatile registry of conversation buffers keyed by session id.
// Buffers are created lazily with the configured size on first access.
type Store struct {
	mu         sync.RWMutex
	bufferSize int
	buffers    map[string]*Buffer
}

// NewStore constructs an empty store whose buffers hold bufferSize messages.
func NewStore(bufferSize int) *Store {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Store{bufferSize: bufferSize, buffers: make(map[string]*Buffer)}
}

// Get returns the buffer for sessionID, creating it when absent.
func (s *Store) Get(sessionID string) *Buffer {
	s.mu.RLock()
	buf, ok := s.buffers[sessionID]
	s.mu.RUnlock()
	if ok {
		return buf
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if buf, ok := s.buffers[sessionID]; ok { // lost the race to another writer
		return buf
	}
	buf = NewBuffer(s.bufferSize)
	s.buffers[sessionID] = buf
	return buf
}

// Lookup returns the buffer for sessionID without creating one.
func (s *Store) Lookup(sessionID string) (*Buffer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, ok := s.buffers[sessionID]
	return buf, ok
}

// Delete drops the buffer of a session.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buffers, sessionID)
}

// Sessions returns the known session ids in lexical order.
func (s *Store) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.buffers))
	for id := range s.buffers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BufferSize returns the capacity used for newly created buffers.
func (s *Store) BufferSize() int { return s.bufferSize }
