package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetCreatesLazily(t *testing.T) {
	s := NewStore(4)

	_, ok := s.Lookup("s1")
	assert.False(t, ok)

	b1 := s.Get("s1")
	b2 := s.Get("s1")
	assert.Same(t, b1, b2)
	assert.Equal(t, 4, b1.Cap())

	_, ok = s.Lookup("s1")
	assert.True(t, ok)
}

func TestStore_IsolatesSessions(t *testing.T) {
	s := NewStore(0)
	s.Get("a").Add(msg("for a"))

	assert.Equal(t, 1, s.Get("a").Len())
	assert.Equal(t, 0, s.Get("b").Len())
	assert.Equal(t, []string{"a", "b"}, s.Sessions())
	assert.Equal(t, DefaultBufferSize, s.BufferSize())
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(2)
	s.Get("gone").Add(msg("x"))
	s.Delete("gone")

	assert.Empty(t, s.Sessions())
	assert.Equal(t, 0, s.Get("gone").Len())
}

func TestStore_ConcurrentGetReturnsSingleBuffer(t *testing.T) {
	s := NewStore(2)
	var wg sync.WaitGroup
	got := make([]*Buffer, 32)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = s.Get("shared")
		}(i)
	}
	wg.Wait()
	for _, b := range got {
		assert.Same(t, got[0], b)
	}
}
