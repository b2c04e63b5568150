package pagination

import (
	"math"
	"strings"
)

// Page size bounds applied to every list endpoint
const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// Pagination describes the page returned to the client
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// PaginationParams is the requested page
type PaginationParams struct {
	Page    int `form:"page" json:"page"`
	PerPage int `form:"per_page" json:"per_page"`
}

// DefaultPagination returns the first page at the default size
func DefaultPagination() *PaginationParams {
	return &PaginationParams{
		Page:    1,
		PerPage: DefaultPerPage,
	}
}

// Validate clamps the page to 1 and the size to [1, MaxPerPage]
func (p *PaginationParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
}

// Offset calculates the offset for SQL queries
func (p *PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Sort is a requested ordering. The key is looked up in a per-resource
// column whitelist, so client input never reaches ORDER BY.
type Sort struct {
	By    string
	Order string
}

// OrderBy returns "<column> ASC|DESC". Unknown keys use defaultColumn and
// anything but "asc" sorts descending.
func (s Sort) OrderBy(columns map[string]string, defaultColumn string) string {
	column, ok := columns[s.By]
	if !ok {
		column = defaultColumn
	}
	direction := "DESC"
	if strings.EqualFold(s.Order, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// NewPagination builds the page description for a result set of total rows
func NewPagination(page, perPage int, total int64) *Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(perPage)))
	}

	return &Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// PaginatedResult is one page of items with its description
type PaginatedResult[T any] struct {
	Items      []T         `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// NewPaginatedResult creates a new paginated result
func NewPaginatedResult[T any](items []T, pagination *Pagination) *PaginatedResult[T] {
	return &PaginatedResult[T]{
		Items:      items,
		Pagination: pagination,
	}
}
