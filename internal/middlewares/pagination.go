package middlewares

import (
	"net/http"
	"strconv"

	"factory_inventory/internal/config"
)

// PaginationParams are the parsed page and per-page values of a request.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Limit returns the SQL limit for the page.
func (p PaginationParams) Limit() int32 {
	return int32(p.PageSize)
}

// Offset returns the SQL offset for the page.
func (p PaginationParams) Offset() int32 {
	return int32((p.Page - 1) * p.PageSize)
}

// ParsePagination reads page and page_size query parameters, clamping them
// to the configured bounds. Invalid values fall back to the defaults.
func ParsePagination(r *http.Request, cfg *config.PaginationConfig) PaginationParams {
	params := PaginationParams{
		Page:     cfg.DefaultPage,
		PageSize: cfg.DefaultPageSize,
	}

	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			params.Page = page
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			params.PageSize = size
		}
	}
	if params.PageSize > cfg.MaxPageSize {
		params.PageSize = cfg.MaxPageSize
	}

	return params
}
