// Package materials serves the material catalog endpoints: listing with
// filters, CRUD, and the low-stock report with its spreadsheet export.
package materials

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"factory_inventory/internal/config"
	"factory_inventory/internal/handlers"
	"factory_inventory/internal/middlewares"
	"factory_inventory/internal/store"
)

const lowStockCacheTTL = 5 * time.Minute

// MaterialHandler serves material catalog requests.
type MaterialHandler struct {
	h *handlers.Handler
}

// NewMaterialHandler creates a MaterialHandler.
func NewMaterialHandler(h *handlers.Handler) *MaterialHandler {
	return &MaterialHandler{h: h}
}

// List handles GET /materials with optional q, category and in_stock
// filters plus pagination.
func (mh *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	params := store.ListMaterialsParams{
		Query: r.URL.Query().Get("q"),
	}

	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			config.RespondBadRequest(w, "invalid category filter", raw)
			return
		}
		params.CategoryID = &id
	}
	// Only the literal "true" narrows to positive stock; any other value
	// leaves the listing unfiltered.
	params.InStock = r.URL.Query().Get("in_stock") == "true"

	page := middlewares.ParsePagination(r, mh.h.Pagination)
	params.Limit = page.Limit()
	params.Offset = page.Offset()

	materials, err := mh.h.Store.ListMaterials(r.Context(), params)
	if err != nil {
		config.RespondAppError(w, err, mh.h.Logger)
		return
	}

	config.RespondJSON(w, http.StatusOK, map[string]any{
		"materials": materials,
		"page":      page.Page,
		"page_size": page.PageSize,
	})
}

// Get handles GET /materials/{id}.
func (mh *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		config.RespondAppError(w, err, mh.h.Logger)
		return
	}

	material, err := mh.h.Store.GetMaterial(r.Context(), id)
	if err != nil {
		config.RespondAppError(w, err, mh.h.Logger)
		return
	}

	config.RespondJSON(w, http.StatusOK, material)
}

type materialRequest struct {
	Name       string  `json:"name"`
	Unit       string  `json:"unit"`
	MinStock   float64 `json:"min_stock"`
	CategoryID *int64  `json:"category_id"`
	Img        *string `json:"img"`
}

func (req *materialRequest) validate() error {
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if req.Unit == "" {
		return fmt.Errorf("unit is required")
	}
	if req.MinStock < 0 {
		return fmt.Errorf("min_stock cannot be negative")
	}
	return nil
}

// Create handles POST /materials.
func (mh *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.RespondBadRequest(w, "invalid request body", err.Error())
		return
	}
	if err := req.validate(); err != nil {
		config.RespondBadRequest(w, err.Error(), "")
		return
	}

	material, err := mh.h.Store.CreateMaterial(r.Context(), store.CreateMaterialParams{
		Name:       req.Name,
		Unit:       req.Unit,
		MinStock:   req.MinStock,
		CategoryID: req.CategoryID,
		Img:        req.Img,
	})
	if err != nil {
		config.RespondAppError(w, err, mh.h.Logger)
		return
	}

	mh.invalidateLowStock(r)
	config.RespondJSON(w, http.StatusCreated, material)
}

// Update handles PUT /materials/{id}.
func (mh *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		config.RespondAppError(w, err, mh.h.Logger)
		return
	}

	var req materialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.RespondBadRequest(w, "invalid request body", err.Error())
		return
	}
	if err := req.validate(); err != nil {
		config.RespondBadRequest(w, err.Error(), "")
		return
	}

	material, err := mh.h.Store.UpdateMaterial(r.Context(), id, store.UpdateMaterialParams{
		Name:       req.Name,
		Unit:       req.Unit,
		MinStock:   req.MinStock,
		CategoryID: req.CategoryID,
		Img:        req.Img,
	})
	if err != nil {
		config.RespondAppError(w, err, mh.h.Logger)
		return
	}

	mh.invalidateLowStock(r)
	config.RespondJSON(w, http.StatusOK, material)
}

// Delete handles DELETE /materials/{id}.
func (mh *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		config.RespondAppError(w, err, mh.h.Logger)
		return
	}

	if err := mh.h.Store.DeleteMaterial(r.Context(), id); err != nil {
		config.RespondAppError(w, err, mh.h.Logger)
		return
	}

	mh.invalidateLowStock(r)
	config.RespondNoContent(w)
}

// LowStock handles GET /materials/low-stock, reading through the cached
// report when the sweep has primed it.
func (mh *MaterialHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	if mh.h.Cache != nil {
		if raw, err := mh.h.Cache.Get(r.Context(), handlers.LowStockCacheKey); err == nil {
			var cached []store.Material
			if json.Unmarshal(raw, &cached) == nil {
				config.RespondJSON(w, http.StatusOK, map[string]any{"materials": cached})
				return
			}
		}
	}

	materials, err := mh.h.Store.ListLowStock(r.Context())
	if err != nil {
		config.RespondAppError(w, err, mh.h.Logger)
		return
	}

	if mh.h.Cache != nil {
		if raw, err := json.Marshal(materials); err == nil {
			mh.h.Cache.Set(r.Context(), handlers.LowStockCacheKey, raw, lowStockCacheTTL)
		}
	}

	config.RespondJSON(w, http.StatusOK, map[string]any{"materials": materials})
}

// ExportLowStock handles GET /materials/low-stock/export, returning the
// report as a spreadsheet.
func (mh *MaterialHandler) ExportLowStock(w http.ResponseWriter, r *http.Request) {
	materials, err := mh.h.Store.ListLowStock(r.Context())
	if err != nil {
		config.RespondAppError(w, err, mh.h.Logger)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Low Stock"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Unit", "Current Stock", "Minimum Stock", "Category"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, m := range materials {
		category := ""
		if m.CategoryName != nil {
			category = *m.CategoryName
		}
		values := []any{m.ID, m.Name, m.Unit, m.CurrentStock, m.MinStock, category}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("low-stock-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))

	if err := f.Write(w); err != nil {
		mh.h.Logger.Error("failed to stream spreadsheet", "error", err)
	}
}

// invalidateLowStock drops the cached report after catalog changes.
func (mh *MaterialHandler) invalidateLowStock(r *http.Request) {
	if mh.h.Cache == nil {
		return
	}
	if err := mh.h.Cache.Delete(r.Context(), handlers.LowStockCacheKey); err != nil {
		mh.h.Logger.Warn("failed to invalidate low stock cache", "error", err)
	}
}
