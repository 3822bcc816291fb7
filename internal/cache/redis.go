package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache on top of a go-redis client.
type RedisCache struct {
	client *redis.Client
	config *Config
}

// NewRedisCache wraps an existing redis client. The client's lifecycle stays
// with the caller; Close here is a no-op so the client can be shared with
// the rate limiter and refresh-token store.
func NewRedisCache(client *redis.Client, config *Config) *RedisCache {
	if config == nil {
		config = DefaultConfig()
	}
	return &RedisCache{client: client, config: config}
}

func (rc *RedisCache) prefixKey(key string) string {
	if rc.config.KeyPrefix == "" {
		return key
	}
	return rc.config.KeyPrefix + ":" + key
}

func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := rc.client.Get(ctx, rc.prefixKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheNotFound
		}
		return nil, &CacheError{Op: "get", Key: key, Err: err}
	}
	return val, nil
}

func (rc *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = rc.config.DefaultTTL
	}
	if err := rc.client.Set(ctx, rc.prefixKey(key), value, ttl).Err(); err != nil {
		return &CacheError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	if err := rc.client.Del(ctx, rc.prefixKey(key)).Err(); err != nil {
		return &CacheError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (rc *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := rc.client.Exists(ctx, rc.prefixKey(key)).Result()
	if err != nil {
		return false, &CacheError{Op: "exists", Key: key, Err: err}
	}
	return n > 0, nil
}

func (rc *RedisCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	prefixed := rc.prefixKey(pattern)

	var keys []string
	iter := rc.client.Scan(ctx, 0, prefixed, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if rc.config.KeyPrefix != "" {
			key = key[len(rc.config.KeyPrefix)+1:]
		}
		keys = append(keys, key)
	}
	if err := iter.Err(); err != nil {
		return nil, &CacheError{Op: "keys", Key: pattern, Err: err}
	}
	return keys, nil
}

func (rc *RedisCache) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	val, err := rc.client.IncrBy(ctx, rc.prefixKey(key), delta).Result()
	if err != nil {
		return 0, &CacheError{Op: "increment", Key: key, Err: err}
	}
	return val, nil
}

func (rc *RedisCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := rc.client.TTL(ctx, rc.prefixKey(key)).Result()
	if err != nil {
		return 0, &CacheError{Op: "ttl", Key: key, Err: err}
	}
	return ttl, nil
}

func (rc *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := rc.client.Expire(ctx, rc.prefixKey(key), ttl).Err(); err != nil {
		return &CacheError{Op: "expire", Key: key, Err: err}
	}
	return nil
}

func (rc *RedisCache) Ping(ctx context.Context) error {
	if err := rc.client.Ping(ctx).Err(); err != nil {
		return &CacheError{Op: "ping", Err: err}
	}
	return nil
}

// Close is a no-op; the shared client is closed during shutdown.
func (rc *RedisCache) Close() error {
	return nil
}
