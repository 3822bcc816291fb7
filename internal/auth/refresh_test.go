package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory_inventory/internal/apperr"
	"factory_inventory/internal/cache"
)

func newTestRefreshStore(t *testing.T) *RefreshStore {
	t.Helper()
	mc := cache.NewMemoryCache(nil)
	t.Cleanup(func() { _ = mc.Close() })
	return NewRefreshStore(mc)
}

func TestRefreshStoreRoundTrip(t *testing.T) {
	rs := newTestRefreshStore(t)
	ctx := context.Background()

	require.NoError(t, rs.Save(ctx, "jti-1", 42, time.Hour))

	userID, err := rs.Validate(ctx, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestRefreshStoreRejectsUnknownJTI(t *testing.T) {
	rs := newTestRefreshStore(t)

	_, err := rs.Validate(context.Background(), "never-saved")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestRefreshStoreRevoke(t *testing.T) {
	rs := newTestRefreshStore(t)
	ctx := context.Background()

	require.NoError(t, rs.Save(ctx, "jti-2", 7, time.Hour))
	require.NoError(t, rs.Revoke(ctx, "jti-2"))

	_, err := rs.Validate(ctx, "jti-2")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	// Revoking again is fine.
	require.NoError(t, rs.Revoke(ctx, "jti-2"))
}
