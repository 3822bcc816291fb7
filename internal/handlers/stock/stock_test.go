package stock

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory_inventory/internal/apperr"
	"factory_inventory/internal/auth"
	"factory_inventory/internal/cache"
	"factory_inventory/internal/handlers"
	"factory_inventory/internal/handlers/handlertest"
	"factory_inventory/internal/store"
)

func newTestHandler(t *testing.T, fake *handlertest.FakeStore) *StockHandler {
	t.Helper()
	mc := cache.NewMemoryCache(nil)
	t.Cleanup(func() { _ = mc.Close() })
	return NewStockHandler(handlers.NewHandler(fake, mc, nil))
}

func authedRequest(method, target, body string, id string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.SetPathValue("id", id)
	return r.WithContext(auth.WithClaims(r.Context(),
		&auth.Claims{UserID: 9, Role: auth.RoleStorekeeper}))
}

func TestAdjust(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		body       string
		adjustErr  error
		wantStatus int
	}{
		{"ok", "5", `{"delta": -3, "reason": "spillage"}`, nil, http.StatusOK},
		{"insufficient stock", "5", `{"delta": -100}`, apperr.InsufficientStock(5), http.StatusConflict},
		{"material missing", "5", `{"delta": 1}`, apperr.NotFound("material", 5), http.StatusNotFound},
		{"bad id", "abc", `{"delta": 1}`, nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotParams store.AdjustStockParams
			fake := &handlertest.FakeStore{
				AdjustStockFunc: func(ctx context.Context, params store.AdjustStockParams) (float64, error) {
					gotParams = params
					if tt.adjustErr != nil {
						return 0, tt.adjustErr
					}
					return 12.5, nil
				},
			}
			sh := newTestHandler(t, fake)

			rec := httptest.NewRecorder()
			sh.Adjust(rec, authedRequest(http.MethodPost, "/materials/5/adjust", tt.body, tt.id))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				var resp map[string]float64
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, 12.5, resp["new_stock"])
				assert.Equal(t, int64(5), gotParams.MaterialID)
				assert.Equal(t, -3.0, gotParams.Delta)
				assert.Equal(t, int64(9), gotParams.UserID)
				assert.Equal(t, "spillage", gotParams.Reason)
			}
		})
	}
}

func TestAdjustRequiresClaims(t *testing.T) {
	sh := newTestHandler(t, &handlertest.FakeStore{})

	r := httptest.NewRequest(http.MethodPost, "/materials/5/adjust", strings.NewReader(`{"delta": 1}`))
	r.SetPathValue("id", "5")
	rec := httptest.NewRecorder()
	sh.Adjust(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReceive(t *testing.T) {
	var gotParams store.ReceiveMaterialParams
	fake := &handlertest.FakeStore{
		ReceiveMaterialFunc: func(ctx context.Context, params store.ReceiveMaterialParams) (store.Receipt, error) {
			gotParams = params
			return store.Receipt{BatchID: 11, BatchCode: "RM00050003", NewStock: 40}, nil
		},
	}
	sh := newTestHandler(t, fake)

	body := `{"purchase_price": 9.5, "vat_applicable": true, "vat_rate": 0.19,
		"qty_received": 25, "supplier_name": "Acme Chemicals"}`
	rec := httptest.NewRecorder()
	sh.Receive(rec, authedRequest(http.MethodPost, "/materials/5/receive", body, "5"))

	require.Equal(t, http.StatusCreated, rec.Code)

	var receipt store.Receipt
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&receipt))
	assert.Equal(t, "RM00050003", receipt.BatchCode)
	assert.Equal(t, int64(11), receipt.BatchID)
	assert.Equal(t, 40.0, receipt.NewStock)

	assert.Equal(t, int64(5), gotParams.MaterialID)
	assert.Equal(t, 25.0, gotParams.QtyReceived)
	assert.Equal(t, "Acme Chemicals", gotParams.SupplierName)
	assert.Equal(t, int64(9), gotParams.UserID)
}

func TestReceiveMaterialMissing(t *testing.T) {
	fake := &handlertest.FakeStore{
		ReceiveMaterialFunc: func(ctx context.Context, params store.ReceiveMaterialParams) (store.Receipt, error) {
			return store.Receipt{}, apperr.NotFound("material", params.MaterialID)
		},
	}
	sh := newTestHandler(t, fake)

	rec := httptest.NewRecorder()
	sh.Receive(rec, authedRequest(http.MethodPost, "/materials/999/receive", `{"qty_received": 1}`, "999"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogsPagination(t *testing.T) {
	var gotLimit, gotOffset int32
	fake := &handlertest.FakeStore{
		MaterialLogsFunc: func(ctx context.Context, materialID int64, limit, offset int32) ([]store.LogEntry, error) {
			gotLimit, gotOffset = limit, offset
			return []store.LogEntry{{ID: 1, MaterialID: materialID}}, nil
		},
	}
	sh := newTestHandler(t, fake)

	rec := httptest.NewRecorder()
	sh.Logs(rec, authedRequest(http.MethodGet, "/materials/5/logs?page=2&page_size=10", "", "5"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(10), gotLimit)
	assert.Equal(t, int32(10), gotOffset)
}

func TestLogsUnknownMaterialServesEmptyList(t *testing.T) {
	fake := &handlertest.FakeStore{
		MaterialLogsFunc: func(ctx context.Context, materialID int64, limit, offset int32) ([]store.LogEntry, error) {
			return []store.LogEntry{}, nil
		},
	}
	sh := newTestHandler(t, fake)

	rec := httptest.NewRecorder()
	sh.Logs(rec, authedRequest(http.MethodGet, "/materials/424242/logs", "", "424242"))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Logs []store.LogEntry `json:"logs"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp.Logs)
}

func TestBatchesMaterialMissing(t *testing.T) {
	fake := &handlertest.FakeStore{
		GetMaterialFunc: func(ctx context.Context, id int64) (store.Material, error) {
			return store.Material{}, apperr.NotFound("material", id)
		},
	}
	sh := newTestHandler(t, fake)

	rec := httptest.NewRecorder()
	sh.Batches(rec, authedRequest(http.MethodGet, "/materials/999/batches", "", "999"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
