package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBatchCode(t *testing.T) {
	tests := []struct {
		materialID int64
		seq        int64
		want       string
	}{
		{1, 1, "RM00010001"},
		{1, 2, "RM00010002"},
		{42, 7, "RM00420007"},
		{9999, 9999, "RM99999999"},
		// Values beyond four digits widen rather than truncate, so codes
		// stay unique.
		{10000, 1, "RM100000001"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBatchCode(tt.materialID, tt.seq))
	}
}

func TestLogAction(t *testing.T) {
	assert.Equal(t, ActionIn, logAction(3))
	assert.Equal(t, ActionIn, logAction(0.5))
	assert.Equal(t, ActionOut, logAction(-3))
	// Zero is not an inflow.
	assert.Equal(t, ActionOut, logAction(0))
}
