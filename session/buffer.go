package session

import (
	"sync"

	"github.com/hupe1980/omniagent/core"
)

// DefaultBufferSize is the capacity used when a non-positive size is supplied.
const DefaultBufferSize = 10

// Buffer is a fixed capacity ring of core.BufferedMessage values. Adding to a
// full buffer evicts the single oldest entry first. ContextRelevance is never
// consulted for eviction.
type Buffer struct {
	mu    sync.RWMutex
	items []core.BufferedMessage
	head  int // index of the oldest entry
	count int
}

// NewBuffer creates an empty buffer holding at most maxSize messages.
func NewBuffer(maxSize int) *Buffer {
	if maxSize <= 0 {
		maxSize = DefaultBufferSize
	}
	return &Buffer{items: make([]core.BufferedMessage, maxSize)}
}

// Add appends a message, evicting the oldest one when the buffer is full.
func (b *Buffer) Add(msg core.BufferedMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == len(b.items) {
		b.items[b.head] = msg
		b.head = (b.head + 1) % len(b.items)
		return
	}

	b.items[(b.head+b.count)%len(b.items)] = msg
	b.count++
}

// Snapshot returns a point-in-time copy of all messages, oldest first. Later
// mutations of the buffer are not visible in the returned slice.
func (b *Buffer) Snapshot() []core.BufferedMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastLocked(b.count)
}

// Recent returns a copy of the newest n messages, oldest first.
func (b *Buffer) Recent(n int) []core.BufferedMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n > b.count {
		n = b.count
	}
	if n < 0 {
		n = 0
	}
	return b.lastLocked(n)
}

// Contents returns the text of every buffered message, oldest first. It is the
// shape the LLM service expects for conversation context.
func (b *Buffer) Contents() []string {
	snap := b.Snapshot()
	out := make([]string, len(snap))
	for i, m := range snap {
		out[i] = m.Content
	}
	return out
}

// lastLocked copies the newest n entries; caller must hold at least a read lock.
func (b *Buffer) lastLocked(n int) []core.BufferedMessage {
	out := make([]core.BufferedMessage, n)
	offset := b.count - n
	for i := 0; i < n; i++ {
		out[i] = b.items[(b.head+offset+i)%len(b.items)]
	}
	return out
}

// Clear removes all messages.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		b.items[i] = core.BufferedMessage{}
	}
	b.head = 0
	b.count = 0
}

// Len returns the number of buffered messages.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Cap returns the fixed capacity of the buffer.
func (b *Buffer) Cap() int { return len(b.items) }
