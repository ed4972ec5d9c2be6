package content

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ArticleOrder selects the ordering of article lists.
type ArticleOrder int

const (
	OrderRecent ArticleOrder = iota
	OrderPopular
)

// ArticleFilter narrows article lists. Zero values mean "no restriction"
// except IDs, where RestrictIDs=true with an empty slice matches nothing.
type ArticleFilter struct {
	IDs         []uuid.UUID
	RestrictIDs bool
	Lang        string
	CategoryID  *uuid.UUID
	PostType    string
	Search      string
	ActiveOnly  bool
	Order       ArticleOrder
	Limit       int
	Offset      int
}

// CategoryFilter narrows category lists. Results are always ordered by name.
type CategoryFilter struct {
	IDs         []uuid.UUID
	RestrictIDs bool
	Lang        string
	ActiveOnly  bool
	// RootsOnly restricts to categories without a parent; ParentIDs to the
	// children of the given categories.
	RootsOnly bool
	ParentIDs []uuid.UUID
	Limit     int
}

// ArticleRepository persists articles.
type ArticleRepository interface {
	Create(ctx context.Context, article *Article) (*Article, error)
	Update(ctx context.Context, article *Article) (*Article, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Article, error)
	List(ctx context.Context, filter ArticleFilter) ([]*Article, int, error)
	IncrementShare(ctx context.Context, id uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	List(ctx context.Context, filter CategoryFilter) ([]*Category, error)
	CountChildren(ctx context.Context, id uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when an article or category does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
