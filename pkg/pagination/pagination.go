package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

// MaxLimit caps the page size a caller may request.
const MaxLimit = 100

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{
		Page:  1,
		Limit: 40,
	}
}

// FromRequest extracts pagination parameters from an HTTP request.
// Invalid values fall back to the defaults.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v > 0 && v <= MaxLimit {
			p.Limit = v
		}
	}

	return p
}

// Apply writes the params into an upstream query.
func (p Params) Apply(q url.Values) {
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
}

// Metadata is the paging block of an upstream list response.
type Metadata struct {
	CurrentPage   int `json:"currentPage"`
	NumberOfPages int `json:"numberOfPages"`
	Limit         int `json:"limit"`
	NextPage      int `json:"nextPage,omitempty"`
	PrevPage      int `json:"prevPage,omitempty"`
}

// Result wraps a paginated response.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewResult builds a result from an upstream page. results is the item
// count the upstream reported for this page.
func NewResult[T any](data []T, results int, meta Metadata) Result[T] {
	if data == nil {
		data = []T{}
	}
	page := meta.CurrentPage
	if page < 1 {
		page = 1
	}
	totalPages := meta.NumberOfPages
	if totalPages < page && len(data) > 0 {
		totalPages = page
	}

	return Result[T]{
		Data:       data,
		TotalCount: results,
		Page:       page,
		Limit:      meta.Limit,
		TotalPages: totalPages,
		HasNext:    meta.NextPage > 0 || page < totalPages,
		HasPrev:    page > 1,
	}
}
