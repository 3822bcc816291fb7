package middlewares

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"factory_inventory/internal/config"
	"factory_inventory/internal/observability"
)

// RecoveryConfig configures panic recovery.
type RecoveryConfig struct {
	Logger *slog.Logger

	// StackTrace controls whether the stack is logged with the panic.
	StackTrace bool
}

// DefaultRecoveryConfig returns the default recovery settings.
func DefaultRecoveryConfig() *RecoveryConfig {
	return &RecoveryConfig{StackTrace: true}
}

// Recovery converts handler panics into 500 responses instead of torn
// connections. http.ErrAbortHandler passes through untouched.
func Recovery(cfg *RecoveryConfig) func(next http.Handler) http.Handler {
	if cfg == nil {
		cfg = DefaultRecoveryConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				attrs := []any{
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
				}
				if id := observability.GetRequestID(r.Context()); id != "" {
					attrs = append(attrs, "request_id", id)
				}
				if cfg.StackTrace {
					attrs = append(attrs, "stack", string(debug.Stack()))
				}
				logger.Error("panic recovered", attrs...)

				config.RespondError(w, http.StatusInternalServerError,
					"An unexpected error occurred", "", nil)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
