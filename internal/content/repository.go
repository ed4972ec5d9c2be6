package content

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewArticleRepository creates the generic repository for articles.
func NewArticleRepository(db *bun.DB) repository.Repository[*Article] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Article]{
		NewRecord:          func() *Article { return &Article{} },
		GetID:              func(a *Article) uuid.UUID { return a.ID },
		SetID:              func(a *Article, id uuid.UUID) { a.ID = id },
		GetIdentifier:      func() string { return "title" },
		GetIdentifierValue: func(a *Article) string { return a.Title },
	})
}

// NewCategoryRepository creates the generic repository for categories.
func NewCategoryRepository(db *bun.DB) repository.Repository[*Category] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Category]{
		NewRecord:          func() *Category { return &Category{} },
		GetID:              func(c *Category) uuid.UUID { return c.ID },
		SetID:              func(c *Category, id uuid.UUID) { c.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(c *Category) string { return c.Name },
	})
}
