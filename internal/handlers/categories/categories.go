// Package categories serves the material category lookup endpoints.
package categories

import (
	"encoding/json"
	"net/http"

	"factory_inventory/internal/config"
	"factory_inventory/internal/handlers"
)

// CategoryHandler serves category requests.
type CategoryHandler struct {
	h *handlers.Handler
}

// NewCategoryHandler creates a CategoryHandler.
func NewCategoryHandler(h *handlers.Handler) *CategoryHandler {
	return &CategoryHandler{h: h}
}

// List handles GET /categories.
func (ch *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := ch.h.Store.ListCategories(r.Context())
	if err != nil {
		config.RespondAppError(w, err, ch.h.Logger)
		return
	}
	config.RespondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

// Create handles POST /categories.
func (ch *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.RespondBadRequest(w, "invalid request body", err.Error())
		return
	}
	if req.Name == "" {
		config.RespondBadRequest(w, "name is required", "")
		return
	}

	category, err := ch.h.Store.CreateCategory(r.Context(), req.Name)
	if err != nil {
		config.RespondAppError(w, err, ch.h.Logger)
		return
	}
	config.RespondJSON(w, http.StatusCreated, category)
}
