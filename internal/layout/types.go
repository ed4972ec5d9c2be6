// Package layout turns a stored page layout document into the document the
// API returns: rows pass through untouched unless they carry a dataSource,
// in which case the data source is queried and replaced by its items.
package layout

import (
	"context"
	"errors"
	"strings"
)

// DefaultLimit caps a data source that does not set its own limit.
const DefaultLimit = 5

// Document keys read or written by the resolver.
const (
	keyRows       = "rows"
	keyDataSource = "dataSource"
	keyItems      = "items"
)

var (
	ErrInvalidLayout        = errors.New("layout: invalid layout document")
	ErrMalformedDataSource  = errors.New("layout: data source must be an object")
	ErrContentStoreRequired = errors.New("layout: content store required")
)

// Kind is the closed set of data source types. Anything the resolver does
// not know about decodes to KindUnknown and resolves to no items.
type Kind int

const (
	KindUnknown Kind = iota
	KindPosts
	KindCategories
)

func ParseKind(value string) Kind {
	switch strings.TrimSpace(value) {
	case "posts":
		return KindPosts
	case "categories":
		return KindCategories
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	switch k {
	case KindPosts:
		return "posts"
	case KindCategories:
		return "categories"
	default:
		return "unknown"
	}
}

// Sort selects the ordering of post results. Categories are always sorted
// by name.
type Sort int

const (
	SortRecent Sort = iota
	SortPopular
)

func ParseSort(value string) Sort {
	if strings.TrimSpace(value) == "popular" {
		return SortPopular
	}
	return SortRecent
}

func (s Sort) String() string {
	if s == SortPopular {
		return "popular"
	}
	return "recent"
}

// Filters narrows a data source query.
type Filters struct {
	Lang string
}

// DataSource is the decoded form of a row's "dataSource" object.
type DataSource struct {
	Type Kind
	// RawType keeps the original "type" string for logging.
	RawType     string
	PostIDs     []string
	CategoryIDs []string
	// RestrictPostIDs and RestrictCategoryIDs are set when the document
	// carried a non-empty id array, even if none of its entries were usable.
	RestrictPostIDs     bool
	RestrictCategoryIDs bool
	Filters             Filters
	Sort                Sort
	Limit               int
}

// EffectiveLimit returns Limit, or DefaultLimit when Limit is not positive.
func (ds DataSource) EffectiveLimit() int {
	if ds.Limit <= 0 {
		return DefaultLimit
	}
	return ds.Limit
}

// ResolvedItem is the client-facing shape of every resolved entry.
type ResolvedItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Subtitle *string `json:"subtitle"`
	ImageURL *string `json:"imageUrl"`
	Link     string  `json:"link"`
}

// Resolved is the output document. Rows hold either the untouched input row
// or a copy with dataSource removed and items added.
type Resolved struct {
	Rows []any `json:"rows"`
}

// StoreKind names the collection a ContentStore query runs against.
type StoreKind string

const (
	StorePosts      StoreKind = "post"
	StoreCategories StoreKind = "category"
)

// Query restricts FindActive. When RestrictIDs is set only rows listed in
// IDs match, so an empty IDs slice matches nothing. An empty Lang means any
// language.
type Query struct {
	IDs         []string
	RestrictIDs bool
	Lang        string
	Sort        Sort
	Limit       int
}

// Item is a content row as the store reports it.
type Item struct {
	ID    string
	Title string
	Image *string
}

// ContentStore looks up active posts and categories.
type ContentStore interface {
	FindActive(ctx context.Context, kind StoreKind, query Query) ([]Item, error)
}
