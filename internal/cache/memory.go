package cache

import (
	"context"
	"path"
	"strconv"
	"sync"
	"time"
)

// MemoryCache implements Cache with an in-process map. Suitable for tests
// and single-node development only; nothing is shared across processes.
type MemoryCache struct {
	mu     sync.RWMutex
	items  map[string]memoryCacheItem
	config *Config
	stop   chan struct{}
	once   sync.Once
}

type memoryCacheItem struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (it memoryCacheItem) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

// NewMemoryCache creates an in-memory cache with a background sweeper for
// expired entries.
func NewMemoryCache(config *Config) *MemoryCache {
	if config == nil {
		config = DefaultConfig()
	}
	mc := &MemoryCache{
		items:  make(map[string]memoryCacheItem),
		config: config,
		stop:   make(chan struct{}),
	}
	go mc.cleanupLoop()
	return mc
}

func (mc *MemoryCache) prefixKey(key string) string {
	if mc.config.KeyPrefix == "" {
		return key
	}
	return mc.config.KeyPrefix + ":" + key
}

func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	mc.mu.RLock()
	item, ok := mc.items[mc.prefixKey(key)]
	mc.mu.RUnlock()

	if !ok || item.expired(time.Now()) {
		return nil, ErrCacheNotFound
	}

	value := make([]byte, len(item.value))
	copy(value, item.value)
	return value, nil
}

func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = mc.config.DefaultTTL
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	mc.mu.Lock()
	mc.items[mc.prefixKey(key)] = memoryCacheItem{value: stored, expiresAt: expiresAt}
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	mc.mu.Lock()
	delete(mc.items, mc.prefixKey(key))
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	mc.mu.RLock()
	item, ok := mc.items[mc.prefixKey(key)]
	mc.mu.RUnlock()
	return ok && !item.expired(time.Now()), nil
}

func (mc *MemoryCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	prefixed := mc.prefixKey(pattern)
	now := time.Now()

	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var keys []string
	for key, item := range mc.items {
		if item.expired(now) {
			continue
		}
		if ok, _ := path.Match(prefixed, key); ok {
			if mc.config.KeyPrefix != "" {
				key = key[len(mc.config.KeyPrefix)+1:]
			}
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (mc *MemoryCache) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	prefixed := mc.prefixKey(key)

	mc.mu.Lock()
	defer mc.mu.Unlock()

	var current int64
	item, ok := mc.items[prefixed]
	if ok && !item.expired(time.Now()) {
		parsed, err := strconv.ParseInt(string(item.value), 10, 64)
		if err != nil {
			return 0, &CacheError{Op: "increment", Key: key, Err: err}
		}
		current = parsed
	} else {
		item = memoryCacheItem{}
	}

	current += delta
	item.value = []byte(strconv.FormatInt(current, 10))
	mc.items[prefixed] = item
	return current, nil
}

func (mc *MemoryCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	mc.mu.RLock()
	item, ok := mc.items[mc.prefixKey(key)]
	mc.mu.RUnlock()

	if !ok || item.expired(time.Now()) {
		return 0, ErrCacheNotFound
	}
	if item.expiresAt.IsZero() {
		return -1, nil
	}
	return time.Until(item.expiresAt), nil
}

func (mc *MemoryCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	prefixed := mc.prefixKey(key)

	mc.mu.Lock()
	defer mc.mu.Unlock()

	item, ok := mc.items[prefixed]
	if !ok || item.expired(time.Now()) {
		return ErrCacheNotFound
	}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	} else {
		item.expiresAt = time.Time{}
	}
	mc.items[prefixed] = item
	return nil
}

func (mc *MemoryCache) Ping(ctx context.Context) error {
	return nil
}

func (mc *MemoryCache) Close() error {
	mc.once.Do(func() { close(mc.stop) })
	return nil
}

func (mc *MemoryCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.removeExpired()
		case <-mc.stop:
			return
		}
	}
}

func (mc *MemoryCache) removeExpired() {
	now := time.Now()
	mc.mu.Lock()
	for key, item := range mc.items {
		if item.expired(now) {
			delete(mc.items, key)
		}
	}
	mc.mu.Unlock()
}
