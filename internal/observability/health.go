package observability

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"factory_inventory/internal/cache"
	"factory_inventory/internal/config"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthConfig wires dependencies into the readiness endpoint.
type HealthConfig struct {
	DatabasePool *pgxpool.Pool
	CustomChecks map[string]HealthCheck
	CheckTimeout time.Duration
	Logger       *slog.Logger
}

// CacheHealthCheck builds a HealthCheck that pings a cache backend.
func CacheHealthCheck(c cache.Cache) HealthCheck {
	return func(ctx context.Context) error {
		return c.Ping(ctx)
	}
}

// LivenessHandler reports that the process is up. It never checks
// dependencies; orchestrators use it to decide on restarts.
func LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		config.RespondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})
}

// ReadinessHandler reports whether the service can take traffic: the
// database must answer a ping and every custom check must pass.
func ReadinessHandler(cfg *HealthConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.CheckTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		checks := make(map[string]string)
		healthy := true

		if cfg.DatabasePool != nil {
			if err := config.HealthCheck(ctx, cfg.DatabasePool, logger); err != nil {
				checks["database"] = err.Error()
				healthy = false
			} else {
				checks["database"] = "ok"
			}
		}

		for name, check := range cfg.CustomChecks {
			if err := check(ctx); err != nil {
				logger.Warn("readiness check failed", "check", name, "error", err)
				checks[name] = err.Error()
				healthy = false
			} else {
				checks[name] = "ok"
			}
		}

		status := http.StatusOK
		overall := "ready"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "not ready"
		}

		config.RespondJSON(w, status, map[string]any{
			"status": overall,
			"checks": checks,
		})
	})
}
