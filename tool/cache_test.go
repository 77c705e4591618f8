package tool

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: time.Unix(1_700_000_000, 0)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCacheKey(t *testing.T) {
	k1, err := CacheKey("echo", map[string]any{"a": 1, "b": "x"})
	require.NoError(t, err)
	k2, err := CacheKey("echo", map[string]any{"b": "x", "a": 1})
	require.NoError(t, err)
	k3, err := CacheKey("other", map[string]any{"a": 1, "b": "x"})
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)

	_, err = CacheKey("echo", map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewMemoryCache(func(o *MemoryCacheOptions) { o.Now = clock.Now })

	require.NoError(t, c.Set(ctx, "k", json.RawMessage(`"v"`), time.Minute))
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, json.RawMessage(`"v"`), v)

	clock.Advance(time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry is dropped on lookup")
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	in := json.RawMessage(`"abc"`)
	require.NoError(t, c.Set(ctx, "k", in, time.Minute))
	in[1] = 'z'

	v, _, _ := c.Get(ctx, "k")
	assert.Equal(t, `"abc"`, string(v))
	v[1] = 'q'

	v2, _, _ := c.Get(ctx, "k")
	assert.Equal(t, `"abc"`, string(v2))
}

func TestMemoryCache_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewMemoryCache(func(o *MemoryCacheOptions) { o.Now = clock.Now })

	require.NoError(t, c.Set(ctx, "short", json.RawMessage(`1`), time.Second))
	require.NoError(t, c.Set(ctx, "long", json.RawMessage(`2`), time.Hour))
	require.NoError(t, c.Set(ctx, "never", json.RawMessage(`3`), 0))

	clock.Advance(2 * time.Second)
	n, err := c.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, c.Len())
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("OMNI_AGENT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("OMNI_AGENT_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	c := NewRedisCache(client, func(o *RedisCacheOptions) { o.Prefix = "omniagent:test:" + t.Name() + ":" })
	require.NoError(t, c.Set(ctx, "k", json.RawMessage(`{"a":1}`), time.Minute))

	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(v))

	_, ok, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := c.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
