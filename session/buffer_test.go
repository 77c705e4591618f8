package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/omniagent/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(content string) core.BufferedMessage {
	return core.NewBufferedMessage(core.UserMessage, content, 0.8)
}

func contents(msgs []core.BufferedMessage) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Content
	}
	return out
}

func TestBuffer_EvictsOldestFirst(t *testing.T) {
	const capacity = 10
	buf := NewBuffer(capacity)

	for i := 0; i < capacity+5; i++ {
		buf.Add(msg(fmt.Sprintf("message %d", i)))
	}

	snap := buf.Snapshot()
	require.Len(t, snap, capacity)
	assert.Equal(t, capacity, buf.Len())
	assert.Equal(t, "message 5", snap[0].Content)
	assert.Equal(t, "message 14", snap[capacity-1].Content)
}

func TestBuffer_SnapshotKeepsLastMaxSizeInOrder(t *testing.T) {
	for _, n := range []int{1, 3, 4, 7, 12, 25} {
		buf := NewBuffer(4)
		var want []string
		for i := 0; i < n; i++ {
			c := fmt.Sprintf("m%d", i)
			buf.Add(msg(c))
			want = append(want, c)
		}
		if len(want) > 4 {
			want = want[len(want)-4:]
		}
		assert.Equal(t, want, contents(buf.Snapshot()), "n=%d", n)
	}
}

func TestBuffer_SnapshotIsCopy(t *testing.T) {
	buf := NewBuffer(3)
	buf.Add(msg("a"))
	buf.Add(msg("b"))

	snap := buf.Snapshot()
	buf.Add(msg("c"))
	buf.Add(msg("d"))
	snap[0].Content = "mutated"

	assert.Equal(t, []string{"b", "c", "d"}, contents(buf.Snapshot()))
	assert.Len(t, snap, 2)
}

func TestBuffer_Clear(t *testing.T) {
	buf := NewBuffer(3)
	for i := 0; i < 5; i++ {
		buf.Add(msg(fmt.Sprint(i)))
	}
	buf.Clear()

	assert.Equal(t, 0, buf.Len())
	assert.Empty(t, buf.Snapshot())

	buf.Add(msg("fresh"))
	assert.Equal(t, []string{"fresh"}, contents(buf.Snapshot()))
}

func TestBuffer_Recent(t *testing.T) {
	buf := NewBuffer(5)
	for i := 0; i < 7; i++ {
		buf.Add(msg(fmt.Sprint(i)))
	}

	assert.Equal(t, []string{"5", "6"}, contents(buf.Recent(2)))
	assert.Equal(t, []string{"2", "3", "4", "5", "6"}, contents(buf.Recent(100)))
	assert.Empty(t, buf.Recent(-1))
	assert.Equal(t, []string{"2", "3", "4", "5", "6"}, buf.Contents())
}

func TestNewBuffer_DefaultSize(t *testing.T) {
	assert.Equal(t, DefaultBufferSize, NewBuffer(0).Cap())
	assert.Equal(t, 3, NewBuffer(3).Cap())
}

func TestBuffer_ConcurrentAccess(t *testing.T) {
	buf := NewBuffer(16)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				buf.Add(msg(fmt.Sprintf("%d-%d", w, i)))
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				assert.LessOrEqual(t, len(buf.Snapshot()), 16)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, buf.Len())
}
