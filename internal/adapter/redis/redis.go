package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAdapter backs ports.CachePort with a Redis client. Collection
// snapshots are written with ttl 0 (no expiry): the cache is the only
// store in the unconfigured-remote case and must not evict.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (a *RedisAdapter) Get(key string) ([]byte, error) {
	return a.client.Get(context.Background(), key).Bytes()
}

func (a *RedisAdapter) Set(key string, value []byte, ttl time.Duration) error {
	return a.client.Set(context.Background(), key, value, ttl).Err()
}

func (a *RedisAdapter) Delete(key string) error {
	return a.client.Del(context.Background(), key).Err()
}
