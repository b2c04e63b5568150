package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      PaginationParams
		page    int
		perPage int
		offset  int
	}{
		{"defaults", PaginationParams{}, 1, 15, 0},
		{"capped", PaginationParams{Page: 3, PerPage: 500}, 3, 100, 200},
		{"kept", PaginationParams{Page: 2, PerPage: 10}, 2, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Validate()
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.perPage, p.PerPage)
			assert.Equal(t, tt.offset, p.Offset())
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	last := NewPagination(3, 10, 25)
	assert.False(t, last.HasNext)

	empty := NewPagination(1, 15, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}

func TestSort_OrderBy(t *testing.T) {
	columns := map[string]string{"number": "order_number", "total": "total_amount"}

	tests := []struct {
		name string
		sort Sort
		want string
	}{
		{"whitelisted ascending", Sort{By: "number", Order: "ASC"}, "order_number ASC"},
		{"whitelisted default direction", Sort{By: "total"}, "total_amount DESC"},
		{"unknown key", Sort{By: "id; DROP TABLE orders", Order: "asc"}, "created_at ASC"},
		{"unknown direction", Sort{By: "number", Order: "sideways"}, "order_number DESC"},
		{"empty", Sort{}, "created_at DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sort.OrderBy(columns, "created_at"))
		})
	}
}

func TestNewPagination_ZeroPageSize(t *testing.T) {
	p := NewPagination(1, 0, 10)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
}
