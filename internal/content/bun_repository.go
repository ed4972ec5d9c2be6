package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunArticleRepository implements ArticleRepository on bun.
type BunArticleRepository struct {
	db   *bun.DB
	repo repository.Repository[*Article]
}

func NewBunArticleRepository(db *bun.DB) *BunArticleRepository {
	return &BunArticleRepository{db: db, repo: NewArticleRepository(db)}
}

func (r *BunArticleRepository) Create(ctx context.Context, article *Article) (*Article, error) {
	record, err := r.repo.Create(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("article repository error: %w", err)
	}
	return record, nil
}

func (r *BunArticleRepository) Update(ctx context.Context, article *Article) (*Article, error) {
	record, err := r.repo.Update(ctx, article,
		repository.UpdateByID(article.ID.String()),
		repository.UpdateColumns(
			"title",
			"post_type",
			"content",
			"source",
			"image",
			"category_id",
			"lang",
			"is_active",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "article", article.ID.String())
	}
	return record, nil
}

func (r *BunArticleRepository) GetByID(ctx context.Context, id uuid.UUID) (*Article, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "article", id.String())
	}
	return record, nil
}

func (r *BunArticleRepository) List(ctx context.Context, filter ArticleFilter) ([]*Article, int, error) {
	if filter.RestrictIDs && len(filter.IDs) == 0 {
		return []*Article{}, 0, nil
	}
	opts := []repository.SelectCriteria{
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return applyArticleFilter(q, filter)
		}),
	}
	if filter.Limit > 0 {
		opts = append(opts, repository.SelectPaginate(filter.Limit, filter.Offset))
	}
	records, total, err := r.repo.List(ctx, opts...)
	if err != nil {
		return nil, 0, fmt.Errorf("article repository error: %w", err)
	}
	return records, total, nil
}

func applyArticleFilter(q *bun.SelectQuery, filter ArticleFilter) *bun.SelectQuery {
	if filter.ActiveOnly {
		q = q.Where("?TableAlias.is_active = TRUE")
	}
	if filter.RestrictIDs {
		q = q.Where("?TableAlias.id IN (?)", bun.In(filter.IDs))
	}
	if lang := strings.TrimSpace(filter.Lang); lang != "" {
		q = q.Where("?TableAlias.lang = ?", lang)
	}
	if filter.CategoryID != nil {
		q = q.Where("?TableAlias.category_id = ?", *filter.CategoryID)
	}
	if postType := strings.TrimSpace(filter.PostType); postType != "" {
		q = q.Where("?TableAlias.post_type = ?", postType)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + term + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.title LIKE ?", pattern).
				WhereOr("?TableAlias.content LIKE ?", pattern)
		})
	}
	if filter.Order == OrderPopular {
		return q.OrderExpr("?TableAlias.share_count DESC").OrderExpr("?TableAlias.created_at DESC")
	}
	return q.OrderExpr("?TableAlias.created_at DESC")
}

// IncrementShare bumps share_count atomically and returns the new value.
func (r *BunArticleRepository) IncrementShare(ctx context.Context, id uuid.UUID) (int, error) {
	var shareCount int
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*Article)(nil)).
			Set("share_count = share_count + 1").
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return &NotFoundError{Resource: "article", Key: id.String()}
		}
		return tx.NewSelect().
			Model((*Article)(nil)).
			Column("share_count").
			Where("id = ?", id).
			Scan(ctx, &shareCount)
	})
	if err != nil {
		return 0, mapRepositoryError(err, "article", id.String())
	}
	return shareCount, nil
}

func (r *BunArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Article{ID: id}); err != nil {
		return mapRepositoryError(err, "article", id.String())
	}
	return nil
}

const categoryNamespace = "post_category"

// BunCategoryRepository implements CategoryRepository with optional caching
// of single-record reads.
type BunCategoryRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Category]
	cacheService cache.CacheService
	cachePrefix  string
}

func NewBunCategoryRepository(db *bun.DB) *BunCategoryRepository {
	return NewBunCategoryRepositoryWithCache(db, nil, nil)
}

// NewBunCategoryRepositoryWithCache wraps the generic repository with
// go-repository-cache when both cache collaborators are supplied.
func NewBunCategoryRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunCategoryRepository {
	base := NewCategoryRepository(db)
	var svc cache.CacheService
	prefix := ""
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
		prefix = categoryNamespace + cache.KeySeparator
	}
	return &BunCategoryRepository{db: db, repo: base, cacheService: svc, cachePrefix: prefix}
}

func (r *BunCategoryRepository) Create(ctx context.Context, category *Category) (*Category, error) {
	record, err := r.repo.Create(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("category repository error: %w", err)
	}
	return record, nil
}

func (r *BunCategoryRepository) Update(ctx context.Context, category *Category) (*Category, error) {
	record, err := r.repo.Update(ctx, category,
		repository.UpdateByID(category.ID.String()),
		repository.UpdateColumns("name", "image", "parent_id", "lang", "is_active", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "category", category.ID.String())
	}
	return record, nil
}

func (r *BunCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "category", id.String())
	}
	return record, nil
}

// List reads straight from the database so filtered lists never come from
// the single-record cache.
func (r *BunCategoryRepository) List(ctx context.Context, filter CategoryFilter) ([]*Category, error) {
	if filter.RestrictIDs && len(filter.IDs) == 0 {
		return []*Category{}, nil
	}
	var records []*Category
	q := r.db.NewSelect().Model(&records)
	if filter.ActiveOnly {
		q = q.Where("?TableAlias.is_active = TRUE")
	}
	if filter.RestrictIDs {
		q = q.Where("?TableAlias.id IN (?)", bun.In(filter.IDs))
	}
	if lang := strings.TrimSpace(filter.Lang); lang != "" {
		q = q.Where("?TableAlias.lang = ?", lang)
	}
	if filter.RootsOnly {
		q = q.Where("?TableAlias.parent_id IS NULL")
	} else if len(filter.ParentIDs) > 0 {
		q = q.Where("?TableAlias.parent_id IN (?)", bun.In(filter.ParentIDs))
	}
	q = q.OrderExpr("?TableAlias.name ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("category repository error: %w", err)
	}
	if records == nil {
		records = []*Category{}
	}
	return records, nil
}

func (r *BunCategoryRepository) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	count, err := r.db.NewSelect().
		Model((*Category)(nil)).
		Where("?TableAlias.parent_id = ?", id).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("category repository error: %w", err)
	}
	return count, nil
}

func (r *BunCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Category{ID: id}); err != nil {
		return mapRepositoryError(err, "category", id.String())
	}
	return nil
}

// InvalidateCache drops every cached category read.
func (r *BunCategoryRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return notFound
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
