package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"factory_inventory/internal/apperr"
	"factory_inventory/internal/cache"
)

// RefreshStore tracks valid refresh-token JTIs server-side so rotation and
// revocation are enforceable. A refresh token whose JTI is absent from the
// store is rejected even when its signature still verifies.
type RefreshStore struct {
	cache cache.Cache
}

// NewRefreshStore creates a RefreshStore over the given cache backend.
func NewRefreshStore(c cache.Cache) *RefreshStore {
	return &RefreshStore{cache: c}
}

func refreshKey(jti string) string {
	return "refresh:" + jti
}

// Save registers a freshly issued refresh token.
func (rs *RefreshStore) Save(ctx context.Context, jti string, userID int64, ttl time.Duration) error {
	value := []byte(strconv.FormatInt(userID, 10))
	return rs.cache.Set(ctx, refreshKey(jti), value, ttl)
}

// Validate checks that a refresh token is still live and returns the user it
// belongs to.
func (rs *RefreshStore) Validate(ctx context.Context, jti string) (int64, error) {
	value, err := rs.cache.Get(ctx, refreshKey(jti))
	if err != nil {
		if errors.Is(err, cache.ErrCacheNotFound) {
			return 0, apperr.New(apperr.KindUnauthorized, "refresh token has been revoked")
		}
		return 0, apperr.Persistence("failed to look up refresh token", err)
	}

	userID, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return 0, apperr.Persistence("corrupt refresh token record", err)
	}
	return userID, nil
}

// Revoke invalidates a refresh token. Revoking an unknown JTI is not an
// error, so logout is idempotent.
func (rs *RefreshStore) Revoke(ctx context.Context, jti string) error {
	return rs.cache.Delete(ctx, refreshKey(jti))
}
