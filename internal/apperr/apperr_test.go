package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindNotFound, "not_found"},
		{KindInsufficientStock, "insufficient_stock"},
		{KindValidation, "validation_failure"},
		{KindForbidden, "forbidden"},
		{KindPersistence, "persistence_failure"},
		{KindConflict, "conflict"},
		{KindUnauthorized, "unauthorized"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("material", 7)))
	assert.Equal(t, KindInsufficientStock, KindOf(InsufficientStock(7)))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindOfWrapped(t *testing.T) {
	inner := InsufficientStock(3)
	wrapped := fmt.Errorf("adjusting: %w", inner)

	assert.Equal(t, KindInsufficientStock, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindInsufficientStock))
	assert.False(t, IsKind(wrapped, KindNotFound))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Persistence("failed to list materials", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, KindPersistence, KindOf(err))
	assert.Contains(t, err.Error(), "failed to list materials")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestIsMatchesByKind(t *testing.T) {
	a := New(KindConflict, "duplicate email")
	b := New(KindConflict, "batch code collision")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, New(KindForbidden, "nope")))
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("user", int64(42))
	assert.Equal(t, "not_found: user 42 not found", err.Error())
}
