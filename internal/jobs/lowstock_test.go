package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory_inventory/internal/cache"
	"factory_inventory/internal/handlers"
	"factory_inventory/internal/store"
)

type fakeLister struct {
	materials []store.Material
	err       error
}

func (f *fakeLister) ListLowStock(ctx context.Context) ([]store.Material, error) {
	return f.materials, f.err
}

func TestLowStockSweepPrimesCache(t *testing.T) {
	mc := cache.NewMemoryCache(nil)
	t.Cleanup(func() { _ = mc.Close() })

	low := []store.Material{
		{ID: 1, Name: "Resin", CurrentStock: 2, MinStock: 5},
		{ID: 2, Name: "Solvent", CurrentStock: 0, MinStock: 1},
	}

	run := NewLowStockSweep(&LowStockSweepConfig{
		Store:    &fakeLister{materials: low},
		Cache:    mc,
		CacheTTL: 20 * time.Minute,
	})
	require.NoError(t, run(context.Background()))

	raw, err := mc.Get(context.Background(), handlers.LowStockCacheKey)
	require.NoError(t, err)

	var cached []store.Material
	require.NoError(t, json.Unmarshal(raw, &cached))
	require.Len(t, cached, 2)
	assert.Equal(t, "Resin", cached[0].Name)

	ttl, err := mc.TTL(context.Background(), handlers.LowStockCacheKey)
	require.NoError(t, err)
	assert.Greater(t, ttl, 19*time.Minute)
}

func TestLowStockSweepPropagatesStoreError(t *testing.T) {
	run := NewLowStockSweep(&LowStockSweepConfig{
		Store: &fakeLister{err: errors.New("db down")},
	})
	assert.Error(t, run(context.Background()))
}

func TestIntervalScheduleNext(t *testing.T) {
	s := Every(15 * time.Minute)
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(15*time.Minute), s.Next(now))
}
