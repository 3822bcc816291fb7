package middlewares

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"factory_inventory/internal/config"
)

func TestParsePagination(t *testing.T) {
	cfg := &config.PaginationConfig{
		DefaultPageSize: 20,
		MaxPageSize:     100,
		DefaultPage:     1,
	}

	tests := []struct {
		name     string
		url      string
		wantPage int
		wantSize int
	}{
		{"defaults", "/materials", 1, 20},
		{"explicit", "/materials?page=3&page_size=50", 3, 50},
		{"clamped to max", "/materials?page_size=500", 1, 100},
		{"zero page ignored", "/materials?page=0", 1, 20},
		{"negative page ignored", "/materials?page=-2", 1, 20},
		{"garbage ignored", "/materials?page=abc&page_size=xyz", 1, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			p := ParsePagination(r, cfg)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantSize, p.PageSize)
		})
	}
}

func TestPaginationLimitOffset(t *testing.T) {
	p := PaginationParams{Page: 3, PageSize: 25}
	assert.Equal(t, int32(25), p.Limit())
	assert.Equal(t, int32(50), p.Offset())

	first := PaginationParams{Page: 1, PageSize: 20}
	assert.Equal(t, int32(0), first.Offset())
}
