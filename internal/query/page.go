package query

import "strings"

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Direction is a sort direction token
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection returns Desc for "desc" in any case and Asc otherwise
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Desc
	}
	return Asc
}

// Sort is a closed allow-list of sortable fields. Allowed maps the
// caller-facing field name to the column expression emitted into SQL.
type Sort struct {
	Allowed map[string]string
	Default string
}

// Column resolves field against the allow-list, falling back to Default
func (s Sort) Column(field string) string {
	if col, ok := s.Allowed[field]; ok {
		return col
	}
	if col, ok := s.Allowed[s.Default]; ok {
		return col
	}
	return s.Default
}

// Clause renders "ORDER BY <column> <ASC|DESC>". Unknown fields are
// normalized to the default rather than rejected.
func (s Sort) Clause(field, direction string) string {
	return "ORDER BY " + s.Column(field) + " " + string(ParseDirection(direction))
}

// Page is a normalized page request
type Page struct {
	Page  int
	Limit int
}

// NewPage applies defaults to non-positive values
func NewPage(page, limit int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return Page{Page: page, Limit: limit}
}

// Offset is (page-1)*limit
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages is ceil(total/limit)
func TotalPages(total, limit int) int {
	if limit < 1 || total < 1 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Paginated is one page of results plus the totals needed to page further
type Paginated[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPaginated assembles a page result
func NewPaginated[T any](data []T, total int, page Page) *Paginated[T] {
	if data == nil {
		data = []T{}
	}
	return &Paginated[T]{
		Data:       data,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: TotalPages(total, page.Limit),
	}
}
