package middlewares

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"factory_inventory/internal/cache"
	"factory_inventory/internal/config"
)

// RateLimitConfig configures the fixed-window limiter.
type RateLimitConfig struct {
	// Requests allowed per Window per key.
	Requests int
	Window   time.Duration

	// Store counts requests. The cache-backed store shares limits across
	// instances when it sits on redis.
	Store RateLimitStore

	// KeyFunc derives the limiting key from a request. Defaults to the
	// client IP.
	KeyFunc func(r *http.Request) string

	Logger *slog.Logger
}

// DefaultRateLimitConfig limits each IP to 100 requests per 15 minutes.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Requests: 100,
		Window:   15 * time.Minute,
	}
}

// RateLimitStore counts requests per key inside a window.
type RateLimitStore interface {
	// Incr increments the counter for key, starting a new window of the
	// given length when the key is fresh, and returns the count and the
	// time until the window resets.
	Incr(key string, window time.Duration) (count int64, reset time.Duration, err error)
}

// CacheRateLimitStore counts in a cache backend.
type CacheRateLimitStore struct {
	Cache cache.Cache
}

func (s *CacheRateLimitStore) Incr(key string, window time.Duration) (int64, time.Duration, error) {
	ctx, cancel := contextWithTimeout(2 * time.Second)
	defer cancel()

	cacheKey := "ratelimit:" + key
	count, err := s.Cache.Increment(ctx, cacheKey, 1)
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := s.Cache.Expire(ctx, cacheKey, window); err != nil {
			return 0, 0, err
		}
	}

	reset, err := s.Cache.TTL(ctx, cacheKey)
	if err != nil || reset < 0 {
		reset = window
	}
	return count, reset, nil
}

// RateLimit rejects requests beyond the configured rate with a 429.
// Store failures fail open: limiting is protection, not correctness.
func RateLimit(cfg *RateLimitConfig) func(next http.Handler) http.Handler {
	if cfg == nil {
		cfg = DefaultRateLimitConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = clientIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Store == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := keyFunc(r)
			count, reset, err := cfg.Store.Incr(key, cfg.Window)
			if err != nil {
				logger.Warn("rate limit store unavailable, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(cfg.Requests) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Requests) {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(reset.Seconds())+1))
				logger.Warn("rate limit exceeded", "key", key, "count", count)
				config.RespondError(w, http.StatusTooManyRequests,
					"Too many requests", "", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func contextWithTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// First hop is the client when behind a trusted proxy.
		for i := 0; i < len(forwarded); i++ {
			if forwarded[i] == ',' {
				return forwarded[:i]
			}
		}
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
