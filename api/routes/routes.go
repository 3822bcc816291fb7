// Package routes binds the HTTP surface to its handlers and per-route
// middleware.
package routes

import (
	"net/http"

	"factory_inventory/internal/auth"
	"factory_inventory/internal/handlers"
	"factory_inventory/internal/handlers/categories"
	"factory_inventory/internal/handlers/materials"
	"factory_inventory/internal/handlers/stock"
	"factory_inventory/internal/handlers/users"
	"factory_inventory/internal/middlewares"
	"factory_inventory/internal/router"
)

// Deps carries what route registration needs.
type Deps struct {
	Handler *handlers.Handler
	Issuer  *auth.Issuer

	// RateLimit guards the credential endpoints. Nil disables limiting.
	RateLimit *middlewares.RateLimitConfig
}

// Setup registers every route.
func Setup(r *router.Router, deps *Deps) {
	mh := materials.NewMaterialHandler(deps.Handler)
	sh := stock.NewStockHandler(deps.Handler)
	uh := users.NewUserHandler(deps.Handler)
	ch := categories.NewCategoryHandler(deps.Handler)

	authMW := auth.Middleware(&auth.MiddlewareConfig{
		Issuer: deps.Issuer,
		Logger: deps.Handler.Logger,
	})
	staffOnly := auth.RequireRoles(auth.RoleOwner, auth.RoleAdmin)

	// Credential endpoints: public, rate limited.
	public := r.Group("auth", middlewares.RateLimit(deps.RateLimit))
	public.Register(router.Route{Method: http.MethodPost, Path: "/login", Handler: uh.Login})
	public.Register(router.Route{Method: http.MethodPost, Path: "/refresh", Handler: uh.Refresh})
	public.Register(router.Route{Method: http.MethodPost, Path: "/logout", Handler: uh.Logout})

	// Everything below requires a valid access token.
	api := r.Group("", authMW)

	api.Register(router.Route{Method: http.MethodGet, Path: "/me", Handler: uh.Me})
	api.Register(router.Route{Method: http.MethodPut, Path: "/me", Handler: uh.UpdateMe})

	api.Register(router.Route{Method: http.MethodGet, Path: "/materials", Handler: mh.List})
	api.Register(router.Route{Method: http.MethodGet, Path: "/materials/low-stock", Handler: mh.LowStock})
	api.Register(router.Route{Method: http.MethodGet, Path: "/materials/low-stock/export", Handler: mh.ExportLowStock})
	api.Register(router.Route{Method: http.MethodGet, Path: "/materials/{id}", Handler: mh.Get})
	api.Register(router.Route{
		Method: http.MethodPost, Path: "/materials",
		Handler: mh.Create, Middlewares: []router.Middleware{staffOnly},
	})
	api.Register(router.Route{
		Method: http.MethodPut, Path: "/materials/{id}",
		Handler: mh.Update, Middlewares: []router.Middleware{staffOnly},
	})
	api.Register(router.Route{
		Method: http.MethodDelete, Path: "/materials/{id}",
		Handler: mh.Delete, Middlewares: []router.Middleware{staffOnly},
	})

	api.Register(router.Route{Method: http.MethodPost, Path: "/materials/{id}/adjust", Handler: sh.Adjust})
	api.Register(router.Route{Method: http.MethodPost, Path: "/materials/{id}/receive", Handler: sh.Receive})
	api.Register(router.Route{Method: http.MethodGet, Path: "/materials/{id}/logs", Handler: sh.Logs})
	api.Register(router.Route{Method: http.MethodGet, Path: "/materials/{id}/logs/export", Handler: sh.ExportLogs})
	api.Register(router.Route{Method: http.MethodGet, Path: "/materials/{id}/batches", Handler: sh.Batches})

	api.Register(router.Route{Method: http.MethodGet, Path: "/categories", Handler: ch.List})
	api.Register(router.Route{
		Method: http.MethodPost, Path: "/categories",
		Handler: ch.Create, Middlewares: []router.Middleware{staffOnly},
	})

	api.Register(router.Route{Method: http.MethodGet, Path: "/users", Handler: uh.List})
	api.Register(router.Route{Method: http.MethodPost, Path: "/users", Handler: uh.Create})
	api.Register(router.Route{Method: http.MethodPut, Path: "/users/{id}", Handler: uh.Update})
	api.Register(router.Route{Method: http.MethodDelete, Path: "/users/{id}", Handler: uh.Delete})
}
