// Package stock serves the stock movement endpoints: manual adjustments,
// batch receipts, the per-material ledger and its spreadsheet export.
package stock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"factory_inventory/internal/apperr"
	"factory_inventory/internal/auth"
	"factory_inventory/internal/config"
	"factory_inventory/internal/handlers"
	"factory_inventory/internal/middlewares"
	"factory_inventory/internal/store"
)

// StockHandler serves stock movement requests.
type StockHandler struct {
	h *handlers.Handler
}

// NewStockHandler creates a StockHandler.
func NewStockHandler(h *handlers.Handler) *StockHandler {
	return &StockHandler{h: h}
}

type adjustRequest struct {
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason"`
}

// Adjust handles POST /materials/{id}/adjust. The delta may be negative;
// the store refuses any adjustment that would drive stock below zero.
func (sh *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		config.RespondAppError(w, err, sh.h.Logger)
		return
	}

	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		config.RespondUnauthorized(w, "authentication required")
		return
	}

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.RespondBadRequest(w, "invalid request body", err.Error())
		return
	}

	newStock, err := sh.h.Store.AdjustStock(r.Context(), store.AdjustStockParams{
		MaterialID: id,
		Delta:      req.Delta,
		UserID:     claims.UserID,
		Reason:     req.Reason,
	})
	if err != nil {
		sh.countAdjustment(apperr.KindOf(err).String())
		config.RespondAppError(w, err, sh.h.Logger)
		return
	}
	sh.countAdjustment("ok")
	sh.invalidateLowStock(r)

	config.RespondJSON(w, http.StatusOK, map[string]any{"new_stock": newStock})
}

type receiveRequest struct {
	PurchasePrice float64 `json:"purchase_price"`
	VatApplicable bool    `json:"vat_applicable"`
	VatRate       float64 `json:"vat_rate"`
	QtyReceived   float64 `json:"qty_received"`
	SupplierName  string  `json:"supplier_name"`
}

// Receive handles POST /materials/{id}/receive: registers the batch,
// appends the ledger entry and increments stock in one transaction.
func (sh *StockHandler) Receive(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		config.RespondAppError(w, err, sh.h.Logger)
		return
	}

	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		config.RespondUnauthorized(w, "authentication required")
		return
	}

	var req receiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.RespondBadRequest(w, "invalid request body", err.Error())
		return
	}

	receipt, err := sh.h.Store.ReceiveMaterial(r.Context(), store.ReceiveMaterialParams{
		MaterialID:    id,
		PurchasePrice: req.PurchasePrice,
		VatApplicable: req.VatApplicable,
		VatRate:       req.VatRate,
		QtyReceived:   req.QtyReceived,
		SupplierName:  req.SupplierName,
		UserID:        claims.UserID,
	})
	if err != nil {
		config.RespondAppError(w, err, sh.h.Logger)
		return
	}

	if sh.h.Metrics != nil {
		sh.h.Metrics.BatchReceipts.Inc()
	}
	sh.invalidateLowStock(r)

	config.RespondJSON(w, http.StatusCreated, receipt)
}

// Logs handles GET /materials/{id}/logs, newest first, paginated.
func (sh *StockHandler) Logs(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		config.RespondAppError(w, err, sh.h.Logger)
		return
	}

	page := middlewares.ParsePagination(r, sh.h.Pagination)
	entries, err := sh.h.Store.MaterialLogs(r.Context(), id, page.Limit(), page.Offset())
	if err != nil {
		config.RespondAppError(w, err, sh.h.Logger)
		return
	}

	config.RespondJSON(w, http.StatusOK, map[string]any{
		"logs":      entries,
		"page":      page.Page,
		"page_size": page.PageSize,
	})
}

// Batches handles GET /materials/{id}/batches.
func (sh *StockHandler) Batches(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		config.RespondAppError(w, err, sh.h.Logger)
		return
	}

	if _, err := sh.h.Store.GetMaterial(r.Context(), id); err != nil {
		config.RespondAppError(w, err, sh.h.Logger)
		return
	}

	batches, err := sh.h.Store.MaterialBatches(r.Context(), id)
	if err != nil {
		config.RespondAppError(w, err, sh.h.Logger)
		return
	}

	config.RespondJSON(w, http.StatusOK, map[string]any{"batches": batches})
}

// exportPageSize bounds how much ledger history one export pulls.
const exportPageSize = 10000

// ExportLogs handles GET /materials/{id}/logs/export, returning the ledger
// as a spreadsheet.
func (sh *StockHandler) ExportLogs(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		config.RespondAppError(w, err, sh.h.Logger)
		return
	}

	entries, err := sh.h.Store.MaterialLogs(r.Context(), id, exportPageSize, 0)
	if err != nil {
		config.RespondAppError(w, err, sh.h.Logger)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Ledger"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Action", "Quantity", "Reason", "Batch Code", "User", "Note"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, e := range entries {
		values := []any{
			e.CreatedAt.Format(time.RFC3339),
			e.Action, e.Qty, e.Reason, e.BatchCode, e.UserName, e.Note,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("material-%d-ledger-%s.xlsx", id, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))

	if err := f.Write(w); err != nil {
		sh.h.Logger.Error("failed to stream spreadsheet", "error", err)
	}
}

func (sh *StockHandler) countAdjustment(result string) {
	if sh.h.Metrics != nil {
		sh.h.Metrics.StockAdjustments.WithLabelValues(result).Inc()
	}
}

func (sh *StockHandler) invalidateLowStock(r *http.Request) {
	if sh.h.Cache == nil {
		return
	}
	if err := sh.h.Cache.Delete(r.Context(), handlers.LowStockCacheKey); err != nil {
		sh.h.Logger.Warn("failed to invalidate low stock cache", "error", err)
	}
}
