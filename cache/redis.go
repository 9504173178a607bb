package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of the go-redis client that RedisStore
// uses. It is satisfied by *redis.Client and *redis.ClusterClient.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore is a Store backed by a remote Redis server.
//
// Redis expiry (SETEX) has whole-second resolution. A ttl below one
// second is therefore rounded down to "no expiry": the value is stored
// with the server's default persistence and will not auto-expire. This
// differs from MemoryStore and SQLiteStore, which honor millisecond
// TTLs exactly, so sub-second caching rules only expire on the
// in-process backends.
type RedisStore struct {
	client RedisClient
}

// NewRedisStore connects to the Redis server at the given URL
// (e.g. "redis://localhost:6379/0") and verifies the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return &RedisStore{client: rdb}, nil
}

// NewRedisStoreWithClient wraps an already constructed client.
func NewRedisStoreWithClient(client RedisClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if len(value) == 0 {
		return s.client.Del(ctx, key).Err()
	}
	if ttl >= time.Second {
		return s.client.SetEx(ctx, key, value, ttl.Truncate(time.Second)).Err()
	}
	return s.client.Set(ctx, key, value, 0).Err()
}
