package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strings"
	"sync"
	"time"
)

// Usage is token accounting for one Process call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CachedTokens     int
}

type mockEntry struct {
	response string
	usage    Usage
	stored   time.Time
}

// CacheStats summarises the MockService response cache.
type CacheStats struct {
	Entries      int
	CachedTokens int
}

// MockService is a deterministic Service that echoes its input. Responses are
// cached by (text, history) so repeated prompts report cached tokens.
type MockService struct {
	mu    sync.RWMutex
	cache map[string]mockEntry
	last  Usage
	err   error
	now   func() time.Time
}

// NewMockService returns an empty MockService.
func NewMockService() *MockService {
	return &MockService{cache: make(map[string]mockEntry), now: time.Now}
}

// FailWith makes every subsequent Process call return err (nil clears it).
func (m *MockService) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Process implements Service.
func (m *MockService) Process(ctx context.Context, text string, history []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := mockKey(text, history)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if e, ok := m.cache[key]; ok {
		m.last = e.usage
		m.last.CachedTokens = e.usage.TotalTokens
		return e.response, nil
	}

	prompt := EstimateTokens(text)
	for _, h := range history {
		prompt += EstimateTokens(h)
	}
	response := "mock response: " + text
	completion := EstimateTokens(response)
	usage := Usage{PromptTokens: prompt, CompletionTokens: completion, TotalTokens: prompt + completion}

	m.cache[key] = mockEntry{response: response, usage: usage, stored: m.now()}
	m.last = usage
	return response, nil
}

// LastUsage returns the token usage of the most recent successful call.
func (m *MockService) LastUsage() Usage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// CacheStats reports the number of cached responses and their total tokens.
func (m *MockService) CacheStats() CacheStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := CacheStats{Entries: len(m.cache)}
	for _, e := range m.cache {
		stats.CachedTokens += e.usage.TotalTokens
	}
	return stats
}

// CleanupCache removes entries older than maxAge and returns how many were removed.
func (m *MockService) CleanupCache(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for k, e := range m.cache {
		if now.Sub(e.stored) >= maxAge {
			delete(m.cache, k)
			removed++
		}
	}
	return removed
}

// EstimateTokens approximates the token count of text as 1.3 tokens per word.
func EstimateTokens(text string) int {
	return int(math.Ceil(float64(len(strings.Fields(text))) * 1.3))
}

func mockKey(text string, history []string) string {
	h := sha256.New()
	h.Write([]byte(text))
	for _, c := range history {
		h.Write([]byte{0})
		h.Write([]byte(c))
	}
	return hex.EncodeToString(h.Sum(nil))
}
