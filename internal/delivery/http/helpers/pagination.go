package helpers

import (
	"net/http"
	"strconv"
	"strings"

	"doctags/internal/domain"
)

// ParsePagination reads page and page_size from the request query string
// and returns them normalized to valid ranges. Missing or unparsable
// values fall back to the domain defaults.
func ParsePagination(r *http.Request) domain.PaginationParams {
	var p domain.PaginationParams
	if s := r.URL.Query().Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			p.Page = v
		}
	}
	if s := r.URL.Query().Get("page_size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			p.PageSize = v
		}
	}
	return p.Normalized()
}

// ParseTagFilter reads include_tags and exclude_tags from the request query
// string. Both are comma-separated tag lists; whitespace around entries is
// trimmed and blank entries are dropped.
func ParseTagFilter(r *http.Request) domain.TagFilter {
	return domain.TagFilter{
		IncludeAll: splitTags(r.URL.Query().Get("include_tags")),
		ExcludeAll: splitTags(r.URL.Query().Get("exclude_tags")),
	}
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PaginationMeta is the pagination metadata included in paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta builds PaginationMeta from the current page, page size, and total count.
// TotalPages is computed as ceiling(total / pageSize); if pageSize is 0, TotalPages is 0.
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
