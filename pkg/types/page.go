package types

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Normalized clamps page/page_size into sane bounds.
func (p PageQuery) Normalized() PageQuery {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

func (p PageQuery) Offset() int {
	n := p.Normalized()
	return (n.Page - 1) * n.PageSize
}

func (p PageQuery) Limit() int {
	return p.Normalized().PageSize
}

type Page[T any] struct {
	Results    []T `json:"results"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

func NewPage[T any](results []T, total int, q PageQuery) *Page[T] {
	n := q.Normalized()
	totalPages := (total + n.PageSize - 1) / n.PageSize
	return &Page[T]{
		Results:    results,
		Total:      total,
		Page:       n.Page,
		PageSize:   n.PageSize,
		TotalPages: totalPages,
	}
}
