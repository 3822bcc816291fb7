package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"factory_inventory/internal/config"
)

type contextKey string

const claimsContextKey contextKey = "auth_claims"

// WithClaims stores verified claims on a context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFrom retrieves the verified claims from a context.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

// MiddlewareConfig configures the bearer-token middleware.
type MiddlewareConfig struct {
	Issuer *Issuer
	Logger *slog.Logger

	// Skipper short-circuits authentication for matching requests.
	Skipper func(r *http.Request) bool
}

// Middleware verifies the Authorization bearer token and stores the claims
// on the request context. Requests without a valid access token get a 401.
func Middleware(cfg *MiddlewareConfig) func(next http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skipper != nil && cfg.Skipper(r) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				config.RespondUnauthorized(w, "missing authorization header")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				config.RespondUnauthorized(w, "authorization header must be a bearer token")
				return
			}

			claims, err := cfg.Issuer.Verify(token, TokenKindAccess)
			if err != nil {
				logger.Debug("rejected access token", "error", err, "path", r.URL.Path)
				config.RespondUnauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRoles allows only the listed roles through. It must run after
// Middleware.
func RequireRoles(roles ...int) func(next http.Handler) http.Handler {
	allowed := make(map[int]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				config.RespondUnauthorized(w, "authentication required")
				return
			}
			if !allowed[claims.Role] {
				config.RespondForbidden(w, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
