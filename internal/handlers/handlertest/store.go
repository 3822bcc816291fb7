// Package handlertest provides a function-field fake of the handlers.Store
// interface for handler tests. A method with a nil function field panics,
// which surfaces unexpected store calls in tests.
package handlertest

import (
	"context"

	"factory_inventory/internal/store"
)

// FakeStore implements handlers.Store through per-method function fields.
type FakeStore struct {
	ListMaterialsFunc  func(ctx context.Context, params store.ListMaterialsParams) ([]store.Material, error)
	GetMaterialFunc    func(ctx context.Context, id int64) (store.Material, error)
	CreateMaterialFunc func(ctx context.Context, params store.CreateMaterialParams) (store.Material, error)
	UpdateMaterialFunc func(ctx context.Context, id int64, params store.UpdateMaterialParams) (store.Material, error)
	DeleteMaterialFunc func(ctx context.Context, id int64) error
	ListLowStockFunc   func(ctx context.Context) ([]store.Material, error)

	AdjustStockFunc     func(ctx context.Context, params store.AdjustStockParams) (float64, error)
	ReceiveMaterialFunc func(ctx context.Context, params store.ReceiveMaterialParams) (store.Receipt, error)
	MaterialLogsFunc    func(ctx context.Context, materialID int64, limit, offset int32) ([]store.LogEntry, error)
	MaterialBatchesFunc func(ctx context.Context, materialID int64) ([]store.Batch, error)

	GetUserFunc           func(ctx context.Context, id int64) (store.User, error)
	GetUserByEmailFunc    func(ctx context.Context, email string) (store.User, error)
	ListUsersFunc         func(ctx context.Context) ([]store.User, error)
	CreateUserFunc        func(ctx context.Context, params store.CreateUserParams) (store.User, error)
	UpdateUserFunc        func(ctx context.Context, id int64, params store.UpdateUserParams) (store.User, error)
	UpdateUserProfileFunc func(ctx context.Context, id int64, name string, passwordHash string) (store.User, error)
	DeleteUserFunc        func(ctx context.Context, id int64, ownerRole int) (int, bool, error)
	TouchLastLoginFunc    func(ctx context.Context, id int64) error

	ListCategoriesFunc func(ctx context.Context) ([]store.Category, error)
	CreateCategoryFunc func(ctx context.Context, name string) (store.Category, error)
}

func (f *FakeStore) ListMaterials(ctx context.Context, params store.ListMaterialsParams) ([]store.Material, error) {
	return f.ListMaterialsFunc(ctx, params)
}

func (f *FakeStore) GetMaterial(ctx context.Context, id int64) (store.Material, error) {
	return f.GetMaterialFunc(ctx, id)
}

func (f *FakeStore) CreateMaterial(ctx context.Context, params store.CreateMaterialParams) (store.Material, error) {
	return f.CreateMaterialFunc(ctx, params)
}

func (f *FakeStore) UpdateMaterial(ctx context.Context, id int64, params store.UpdateMaterialParams) (store.Material, error) {
	return f.UpdateMaterialFunc(ctx, id, params)
}

func (f *FakeStore) DeleteMaterial(ctx context.Context, id int64) error {
	return f.DeleteMaterialFunc(ctx, id)
}

func (f *FakeStore) ListLowStock(ctx context.Context) ([]store.Material, error) {
	return f.ListLowStockFunc(ctx)
}

func (f *FakeStore) AdjustStock(ctx context.Context, params store.AdjustStockParams) (float64, error) {
	return f.AdjustStockFunc(ctx, params)
}

func (f *FakeStore) ReceiveMaterial(ctx context.Context, params store.ReceiveMaterialParams) (store.Receipt, error) {
	return f.ReceiveMaterialFunc(ctx, params)
}

func (f *FakeStore) MaterialLogs(ctx context.Context, materialID int64, limit, offset int32) ([]store.LogEntry, error) {
	return f.MaterialLogsFunc(ctx, materialID, limit, offset)
}

func (f *FakeStore) MaterialBatches(ctx context.Context, materialID int64) ([]store.Batch, error) {
	return f.MaterialBatchesFunc(ctx, materialID)
}

func (f *FakeStore) GetUser(ctx context.Context, id int64) (store.User, error) {
	return f.GetUserFunc(ctx, id)
}

func (f *FakeStore) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	return f.GetUserByEmailFunc(ctx, email)
}

func (f *FakeStore) ListUsers(ctx context.Context) ([]store.User, error) {
	return f.ListUsersFunc(ctx)
}

func (f *FakeStore) CreateUser(ctx context.Context, params store.CreateUserParams) (store.User, error) {
	return f.CreateUserFunc(ctx, params)
}

func (f *FakeStore) UpdateUser(ctx context.Context, id int64, params store.UpdateUserParams) (store.User, error) {
	return f.UpdateUserFunc(ctx, id, params)
}

func (f *FakeStore) UpdateUserProfile(ctx context.Context, id int64, name string, passwordHash string) (store.User, error) {
	return f.UpdateUserProfileFunc(ctx, id, name, passwordHash)
}

func (f *FakeStore) DeleteUser(ctx context.Context, id int64, ownerRole int) (int, bool, error) {
	return f.DeleteUserFunc(ctx, id, ownerRole)
}

func (f *FakeStore) TouchLastLogin(ctx context.Context, id int64) error {
	return f.TouchLastLoginFunc(ctx, id)
}

func (f *FakeStore) ListCategories(ctx context.Context) ([]store.Category, error) {
	return f.ListCategoriesFunc(ctx)
}

func (f *FakeStore) CreateCategory(ctx context.Context, name string) (store.Category, error) {
	return f.CreateCategoryFunc(ctx, name)
}
