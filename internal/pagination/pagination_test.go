package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Options{Limit: 50, Offset: 0}, Normalize(0, -3))
	assert.Equal(t, Options{Limit: 500, Offset: 10}, Normalize(10_000, 10))
	assert.Equal(t, Options{Limit: 20, Offset: 40}, Normalize(20, 40))
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		opts  Options
		want  Meta
	}{
		{"empty", 0, Options{Limit: 10}, Meta{CurrentPage: 1, PerPage: 10, TotalItems: 0, TotalPages: 0}},
		{"exact", 20, Options{Limit: 10, Offset: 10}, Meta{CurrentPage: 2, PerPage: 10, TotalItems: 20, TotalPages: 2}},
		{"remainder", 21, Options{Limit: 10, Offset: 20}, Meta{CurrentPage: 3, PerPage: 10, TotalItems: 21, TotalPages: 3}},
		{"offset inside page", 21, Options{Limit: 10, Offset: 15}, Meta{CurrentPage: 2, PerPage: 10, TotalItems: 21, TotalPages: 3}},
		{"zero limit", 3, Options{}, Meta{CurrentPage: 1, PerPage: 50, TotalItems: 3, TotalPages: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewMeta(tt.total, tt.opts))
		})
	}
}

func TestNewPage_NilItems(t *testing.T) {
	p := NewPage[int](nil, 0, Normalize(0, 0))
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
}
