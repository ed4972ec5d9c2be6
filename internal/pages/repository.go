package pages

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PageRepository persists pages.
type PageRepository interface {
	Create(ctx context.Context, page *Page) (*Page, error)
	Update(ctx context.Context, page *Page) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, slug, language string) (*Page, error)
	List(ctx context.Context, limit, offset int) ([]*Page, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PageNotFoundError is returned when a page does not exist.
type PageNotFoundError struct {
	Key string
}

func (e *PageNotFoundError) Error() string {
	if e.Key == "" {
		return "page not found"
	}
	return fmt.Sprintf("page %q not found", e.Key)
}

// NewPageRepository creates the generic repository for pages.
func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord:          func() *Page { return &Page{} },
		GetID:              func(p *Page) uuid.UUID { return p.ID },
		SetID:              func(p *Page, id uuid.UUID) { p.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(p *Page) string { return p.Slug },
	})
}
