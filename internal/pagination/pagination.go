// Package pagination computes page/limit windows and the list metadata
// returned alongside paginated API responses.
package pagination

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Request is a normalized page window. Page is 1-based.
type Request struct {
	Page  int
	Limit int
}

// Normalize clamps page to >= 1 and limit to (0, MaxLimit], substituting
// fallback (or DefaultLimit) for a missing limit.
func Normalize(page, limit, fallback int) Request {
	if fallback <= 0 {
		fallback = DefaultLimit
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = fallback
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Request{Page: page, Limit: limit}
}

// Offset is the number of rows to skip for the window.
func (r Request) Offset() int {
	if r.Page < 1 {
		return 0
	}
	return (r.Page - 1) * r.Limit
}

// Metadata is the pagination block of list responses.
type Metadata struct {
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	HasLastPage bool `json:"has_last_page"`
	HasNextPage bool `json:"has_next_page"`
}

// Info builds Metadata for a window over total rows. HasLastPage reports
// whether a previous page exists; HasNextPage whether page is before the
// final page.
func Info(total, limit, page int) Metadata {
	if total < 0 {
		total = 0
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Metadata{
		TotalCount:  total,
		TotalPages:  totalPages,
		HasLastPage: page > 1,
		HasNextPage: page < totalPages,
	}
}

// Page pairs a slice of results with its metadata.
type Page[T any] struct {
	Items      []T      `json:"items"`
	Pagination Metadata `json:"pagination"`
}

// NewPage builds a Page, replacing a nil slice with an empty one so it
// encodes as [].
func NewPage[T any](items []T, total int, req Request) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Pagination: Info(total, req.Limit, req.Page)}
}
