package middlewares

import (
	"context"
	"net/http"
	"time"

	"factory_inventory/internal/config"
)

// TimeoutConfig configures the per-request deadline.
type TimeoutConfig struct {
	Timeout time.Duration

	// Skipper short-circuits the deadline for matching requests
	// (long exports).
	Skipper func(r *http.Request) bool
}

// DefaultTimeoutConfig allows 30 seconds per request.
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{Timeout: 30 * time.Second}
}

// Timeout attaches a deadline to the request context and answers 504 when
// the handler does not finish in time.
func Timeout(cfg *TimeoutConfig) func(next http.Handler) http.Handler {
	if cfg == nil {
		cfg = DefaultTimeoutConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skipper != nil && cfg.Skipper(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), cfg.Timeout)
			defer cancel()

			done := make(chan struct{})
			go func() {
				defer func() {
					// An abandoned handler has nowhere to re-panic to.
					recover()
				}()
				next.ServeHTTP(w, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					config.RespondError(w, http.StatusGatewayTimeout,
						"Request timed out", "", nil)
				}
			}
		})
	}
}
