// Package handlers holds the shared dependency container the HTTP handler
// subpackages build on. Persistence is consumed through the Store interface
// so handler tests can run against a fake.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"factory_inventory/internal/apperr"
	"factory_inventory/internal/auth"
	"factory_inventory/internal/cache"
	"factory_inventory/internal/config"
	"factory_inventory/internal/observability"
	"factory_inventory/internal/store"
)

// LowStockCacheKey is where the low-stock report is cached. The background
// sweep primes it; the report endpoint reads through it and stock
// mutations invalidate it.
const LowStockCacheKey = "report:lowstock"

// Store is the persistence surface the handlers consume. *store.Store
// implements it.
type Store interface {
	ListMaterials(ctx context.Context, params store.ListMaterialsParams) ([]store.Material, error)
	GetMaterial(ctx context.Context, id int64) (store.Material, error)
	CreateMaterial(ctx context.Context, params store.CreateMaterialParams) (store.Material, error)
	UpdateMaterial(ctx context.Context, id int64, params store.UpdateMaterialParams) (store.Material, error)
	DeleteMaterial(ctx context.Context, id int64) error
	ListLowStock(ctx context.Context) ([]store.Material, error)

	AdjustStock(ctx context.Context, params store.AdjustStockParams) (float64, error)
	ReceiveMaterial(ctx context.Context, params store.ReceiveMaterialParams) (store.Receipt, error)
	MaterialLogs(ctx context.Context, materialID int64, limit, offset int32) ([]store.LogEntry, error)
	MaterialBatches(ctx context.Context, materialID int64) ([]store.Batch, error)

	GetUser(ctx context.Context, id int64) (store.User, error)
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	ListUsers(ctx context.Context) ([]store.User, error)
	CreateUser(ctx context.Context, params store.CreateUserParams) (store.User, error)
	UpdateUser(ctx context.Context, id int64, params store.UpdateUserParams) (store.User, error)
	UpdateUserProfile(ctx context.Context, id int64, name string, passwordHash string) (store.User, error)
	DeleteUser(ctx context.Context, id int64, ownerRole int) (role int, deleted bool, err error)
	TouchLastLogin(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]store.Category, error)
	CreateCategory(ctx context.Context, name string) (store.Category, error)
}

// Handler bundles the dependencies shared by all handler subpackages.
type Handler struct {
	Store      Store
	Cache      cache.Cache
	Logger     *slog.Logger
	Metrics    *observability.Metrics
	Pagination *config.PaginationConfig

	Auth       *auth.Issuer
	Refresh    *auth.RefreshStore
	BcryptCost int
}

// NewHandler creates the shared handler container.
func NewHandler(s Store, c cache.Cache, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:  s,
		Cache:  c,
		Logger: logger,
		Pagination: &config.PaginationConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
			DefaultPage:     1,
		},
	}
}

// PathID parses the named integer path parameter.
func PathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Newf(apperr.KindValidation, "invalid %s %q", name, raw)
	}
	return id, nil
}
