package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page, size int
		wantOffset int
		wantLimit  int
	}{
		{name: "defaults", page: 0, size: 0, wantOffset: 0, wantLimit: DefaultPageSize},
		{name: "negative page", page: -3, size: 10, wantOffset: 0, wantLimit: 10},
		{name: "third page", page: 3, size: 10, wantOffset: 20, wantLimit: 10},
		{name: "clamped size", page: 2, size: 500, wantOffset: MaxPageSize, wantLimit: MaxPageSize},
		{name: "huge page", page: math.MaxInt, size: 50, wantOffset: (MaxPage - 1) * 50, wantLimit: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			offset, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestNewMeta(t *testing.T) {
	t.Parallel()

	m := NewMeta(2, 20, 45)
	assert.Equal(t, Meta{Page: 2, Size: 20, Total: 45, TotalPages: 3, HasPrev: true, HasNext: true}, m)

	empty := NewMeta(1, 20, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)

	last := NewMeta(3, 20, 45)
	assert.False(t, last.HasNext)
}
