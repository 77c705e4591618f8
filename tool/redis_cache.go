package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds configuration for a Redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a Redis client and validates the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// RedisCacheOptions configure a RedisCache.
type RedisCacheOptions struct {
	// Prefix is prepended to every key.
	Prefix string
}

// RedisCache is a Cache shared across processes. Expiry is delegated to Redis
// key TTLs, so PurgeExpired has nothing to do.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache wraps an existing client. The caller owns the client.
func NewRedisCache(client redis.UniversalClient, optFns ...func(o *RedisCacheOptions)) *RedisCache {
	opts := RedisCacheOptions{Prefix: "omniagent:tool:"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RedisCache{client: client, prefix: opts.Prefix}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	return json.RawMessage(b), true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, c.prefix+key, []byte(value), ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// PurgeExpired implements Cache.
func (c *RedisCache) PurgeExpired(context.Context) (int, error) { return 0, nil }
