// Package middlewares holds the HTTP middleware chain: request logging,
// panic recovery, rate limiting, CORS, security headers, timeouts and
// pagination parsing. Every middleware takes a Config struct with a
// Default* constructor and tolerates a nil config.
package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"factory_inventory/internal/observability"
)

// LoggerConfig configures the request logger.
type LoggerConfig struct {
	Logger *slog.Logger

	// Skipper short-circuits logging for matching requests
	// (health probes, metrics scrapes).
	Skipper func(r *http.Request) bool
}

// DefaultLoggerConfig returns the default request logger settings.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{}
}

// Logger logs one line per request. Server errors log at Error, client
// errors at Warn, everything else at Info.
func Logger(config *LoggerConfig) func(next http.Handler) http.Handler {
	if config == nil {
		config = DefaultLoggerConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Skipper != nil && config.Skipper(r) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote", r.RemoteAddr,
			}
			if id := observability.GetRequestID(r.Context()); id != "" {
				attrs = append(attrs, "request_id", id)
			}

			switch {
			case rw.status >= http.StatusInternalServerError:
				logger.Error("request", attrs...)
			case rw.status >= http.StatusBadRequest:
				logger.Warn("request", attrs...)
			default:
				logger.Info("request", attrs...)
			}
		})
	}
}

type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
