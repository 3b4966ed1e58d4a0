package pagination

import (
	"strconv"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Params is a 1-based page request.
type Params struct {
	Page     int
	PageSize int
}

// Meta is returned in the response metadata.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// Parse reads query values, falling back to page 1 and the default size.
func Parse(page, pageSize string) Params {
	p := Params{Page: 1, PageSize: DefaultPageSize}
	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(pageSize); err == nil && n > 0 {
		p.PageSize = n
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Scope limits a query to the page.
func (p Params) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.PageSize)
}

func (p Params) Meta(total int64) Meta {
	pages := 0
	if total > 0 {
		pages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	}
	return Meta{Total: total, Page: p.Page, PageSize: p.PageSize, TotalPages: pages}
}
