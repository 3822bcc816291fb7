package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"factory_inventory/internal/cache"
	"factory_inventory/internal/handlers"
	"factory_inventory/internal/observability"
	"factory_inventory/internal/store"
)

// LowStockLister is the slice of the store the sweep needs.
type LowStockLister interface {
	ListLowStock(ctx context.Context) ([]store.Material, error)
}

// LowStockSweepConfig wires the periodic low-stock sweep.
type LowStockSweepConfig struct {
	Store   LowStockLister
	Cache   cache.Cache
	Metrics *observability.Metrics
	Logger  *slog.Logger

	// CacheTTL bounds how stale the primed report may go if the sweep
	// stops running.
	CacheTTL time.Duration
}

// NewLowStockSweep builds the job that recomputes the low-stock report,
// primes its cache entry and updates the gauge.
func NewLowStockSweep(cfg *LowStockSweepConfig) func(ctx context.Context) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context) error {
		materials, err := cfg.Store.ListLowStock(ctx)
		if err != nil {
			return fmt.Errorf("low stock sweep: %w", err)
		}

		if cfg.Metrics != nil {
			cfg.Metrics.LowStockMaterials.Set(float64(len(materials)))
		}

		if cfg.Cache != nil {
			raw, err := json.Marshal(materials)
			if err != nil {
				return fmt.Errorf("low stock sweep: %w", err)
			}
			if err := cfg.Cache.Set(ctx, handlers.LowStockCacheKey, raw, cfg.CacheTTL); err != nil {
				return fmt.Errorf("low stock sweep: %w", err)
			}
		}

		logger.Info("low stock sweep complete", "materials", len(materials))
		return nil
	}
}
