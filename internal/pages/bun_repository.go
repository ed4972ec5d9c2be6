package pages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const pageNamespace = "page"

type BunPageRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Page]
	cacheService cache.CacheService
	cachePrefix  string
}

func NewBunPageRepository(db *bun.DB) *BunPageRepository {
	return NewBunPageRepositoryWithCache(db, nil, nil)
}

// NewBunPageRepositoryWithCache constructs a PageRepository backed by bun with optional caching.
func NewBunPageRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunPageRepository {
	base := NewPageRepository(db)
	r := &BunPageRepository{db: db, repo: base}
	if cacheService != nil && keySerializer != nil {
		r.repo = repositorycache.New(base, cacheService, keySerializer)
		r.cacheService = cacheService
		r.cachePrefix = pageNamespace + cache.KeySeparator
	}
	return r
}

func (r *BunPageRepository) Create(ctx context.Context, record *Page) (*Page, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("page repository error: %w", err)
	}
	return created, nil
}

func (r *BunPageRepository) Update(ctx context.Context, record *Page) (*Page, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns("title", "slug", "language", "layout_json", "is_active", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, record.ID.String())
	}
	return updated, nil
}

func (r *BunPageRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return result, nil
}

// GetBySlug reads through to the database; the cache only covers lookups by
// primary key.
func (r *BunPageRepository) GetBySlug(ctx context.Context, slug, language string) (*Page, error) {
	record := new(Page)
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.slug = ?", slug).
		Where("?TableAlias.language = ?", language).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &PageNotFoundError{Key: slug}
		}
		return nil, mapRepositoryError(err, slug)
	}
	return record, nil
}

// List reads through to the database. Cache keys cannot tell paginated
// queries apart, so only primary key lookups are cached.
func (r *BunPageRepository) List(ctx context.Context, limit, offset int) ([]*Page, int, error) {
	var records []*Page
	q := r.db.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("page repository error: %w", err)
	}
	return records, total, nil
}

func (r *BunPageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Page{ID: id}); err != nil {
		return mapRepositoryError(err, id.String())
	}
	return nil
}

// InvalidateCache drops every cached page read.
func (r *BunPageRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	var notFound *PageNotFoundError
	if errors.As(err, &notFound) {
		return notFound
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &PageNotFoundError{Key: key}
	}
	return fmt.Errorf("page repository error: %w", err)
}
