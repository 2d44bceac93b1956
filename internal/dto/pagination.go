package dto

import "math"

// PaginationMeta describes the page window of a list response.
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
	TotalCount int64 `json:"total_count"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPaginationMeta derives page metadata from a 1-indexed page, a page size
// and the total row count.
func NewPaginationMeta(page, limit int, total int64) PaginationMeta {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 1
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return PaginationMeta{
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		TotalCount: total,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}
}
