package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory_inventory/internal/apperr"
)

func TestRespondAppErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperr.NotFound("material", 7), http.StatusNotFound, "not_found"},
		{"insufficient stock", apperr.InsufficientStock(7), http.StatusConflict, "insufficient_stock"},
		{"conflict", apperr.New(apperr.KindConflict, "duplicate email"), http.StatusConflict, "conflict"},
		{"validation", apperr.Validation("name is required"), http.StatusBadRequest, "validation_failure"},
		{"forbidden", apperr.Forbidden("nope"), http.StatusForbidden, "forbidden"},
		{"unauthorized", apperr.New(apperr.KindUnauthorized, "bad token"), http.StatusUnauthorized, "unauthorized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondAppError(rec, tt.err, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestRespondAppErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondAppError(rec, apperr.Persistence("failed to list", errors.New("dial tcp: refused")), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "dial tcp")

	rec = httptest.NewRecorder()
	RespondAppError(rec, errors.New("raw failure"), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "raw failure")
}

func TestRespondAppErrorUsesMessageNotChain(t *testing.T) {
	cause := errors.New("sql: no rows")
	err := apperr.Wrap(apperr.KindNotFound, "material 7 not found", cause)

	rec := httptest.NewRecorder()
	RespondAppError(rec, err, nil)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "material 7 not found", resp.Message)
	assert.NotContains(t, resp.Message, "sql: no rows")
}
