package categories

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory_inventory/internal/apperr"
	"factory_inventory/internal/handlers"
	"factory_inventory/internal/handlers/handlertest"
	"factory_inventory/internal/store"
)

func TestList(t *testing.T) {
	fake := &handlertest.FakeStore{
		ListCategoriesFunc: func(ctx context.Context) ([]store.Category, error) {
			return []store.Category{{ID: 1, Name: "Adhesives"}, {ID: 2, Name: "Solvents"}}, nil
		},
	}
	ch := NewCategoryHandler(handlers.NewHandler(fake, nil, nil))

	rec := httptest.NewRecorder()
	ch.List(rec, httptest.NewRequest(http.MethodGet, "/categories", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Adhesives")
	assert.Contains(t, rec.Body.String(), "Solvents")
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		storeErr   error
		wantStatus int
	}{
		{"ok", `{"name": "Pigments"}`, nil, http.StatusCreated},
		{"empty name", `{"name": ""}`, nil, http.StatusBadRequest},
		{"malformed body", `{`, nil, http.StatusBadRequest},
		{"duplicate", `{"name": "Pigments"}`, apperr.New(apperr.KindConflict, "category already exists"), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &handlertest.FakeStore{
				CreateCategoryFunc: func(ctx context.Context, name string) (store.Category, error) {
					if tt.storeErr != nil {
						return store.Category{}, tt.storeErr
					}
					return store.Category{ID: 3, Name: name}, nil
				},
			}
			ch := NewCategoryHandler(handlers.NewHandler(fake, nil, nil))

			rec := httptest.NewRecorder()
			ch.Create(rec, httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
