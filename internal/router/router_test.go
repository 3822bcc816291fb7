package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionedPaths(t *testing.T) {
	r := New(&RouterConfig{BasePath: "/api", Version: "v1"})
	r.Register(Route{
		Method: http.MethodGet,
		Path:   "/materials",
		Handler: func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/materials", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/materials", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/materials", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPathParameters(t *testing.T) {
	r := New(&RouterConfig{BasePath: "/api", Version: "v1"})

	var got string
	r.Register(Route{
		Method: http.MethodGet,
		Path:   "/materials/{id}",
		Handler: func(w http.ResponseWriter, req *http.Request) {
			got = req.PathValue("id")
		},
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/materials/42", nil))
	assert.Equal(t, "42", got)
}

func TestRegisterRawSkipsVersioning(t *testing.T) {
	r := New(&RouterConfig{BasePath: "/api", Version: "v1"})
	r.RegisterRaw(http.MethodGet, "/health/live", http.HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	r := New(nil)
	route := Route{
		Method:  http.MethodGet,
		Path:    "/materials",
		Handler: func(w http.ResponseWriter, req *http.Request) {},
	}
	r.Register(route)
	assert.Panics(t, func() { r.Register(route) })
}

func TestMiddlewareOrder(t *testing.T) {
	r := New(nil)

	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, req)
			})
		}
	}

	r.Use(mw("global"))
	g := r.Group("admin", mw("group"))
	g.Register(Route{
		Method: http.MethodGet,
		Path:   "/users",
		Handler: func(w http.ResponseWriter, req *http.Request) {
			order = append(order, "handler")
		},
		Middlewares: []Middleware{mw("route")},
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

	require.Equal(t, []string{"global", "group", "route", "handler"}, order)
}

func TestGroupPrefix(t *testing.T) {
	r := New(&RouterConfig{BasePath: "/api", Version: "v1"})
	g := r.Group("auth")
	g.Register(Route{
		Method: http.MethodPost,
		Path:   "/login",
		Handler: func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
