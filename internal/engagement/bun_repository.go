package engagement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// reactionRow is implemented by the like and bookmark models.
type reactionRow interface {
	*ArticleLike | *ArticleBookmark
	reaction() Reaction
}

// reactionTable holds the queries shared by both engagement tables.
type reactionTable[T reactionRow] struct {
	db       *bun.DB
	kind     Kind
	repo     repository.Repository[T]
	fromData func(Reaction) T
}

func newReactionTable[T reactionRow](db *bun.DB, kind Kind, handlers repository.ModelHandlers[T], fromData func(Reaction) T) *reactionTable[T] {
	return &reactionTable[T]{
		db:       db,
		kind:     kind,
		repo:     repository.MustNewRepository(db, handlers),
		fromData: fromData,
	}
}

func (t *reactionTable[T]) find(ctx context.Context, userID, articleID uuid.UUID) (*Reaction, error) {
	var rows []T
	err := t.db.NewSelect().
		Model(&rows).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.article_id = ?", articleID).
		Limit(1).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s repository error: %w", t.kind, err)
	}
	if len(rows) == 0 {
		return nil, &NotFoundError{Kind: t.kind, Key: articleID.String()}
	}
	found := rows[0].reaction()
	return &found, nil
}

func (t *reactionTable[T]) create(ctx context.Context, reaction Reaction) (*Reaction, error) {
	created, err := t.repo.Create(ctx, t.fromData(reaction))
	if err != nil {
		return nil, fmt.Errorf("%s repository error: %w", t.kind, err)
	}
	out := created.reaction()
	return &out, nil
}

func (t *reactionTable[T]) delete(ctx context.Context, id uuid.UUID) error {
	var zero T
	res, err := t.db.NewDelete().
		Model(zero).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%s repository error: %w", t.kind, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{Kind: t.kind, Key: id.String()}
	}
	return nil
}

func (t *reactionTable[T]) list(ctx context.Context, query ReactionQuery) ([]Reaction, int, error) {
	var rows []T
	q := t.db.NewSelect().Model(&rows)
	if query.ActiveOnly {
		q = q.Join("JOIN articles AS art ON art.id = ?TableAlias.article_id").
			Where("art.is_active = TRUE")
	}
	if query.UserID != nil {
		q = q.Where("?TableAlias.user_id = ?", *query.UserID)
	}
	if query.ArticleID != nil {
		q = q.Where("?TableAlias.article_id = ?", *query.ArticleID)
	}
	q = q.OrderExpr("?TableAlias.created_at DESC")
	if query.Limit > 0 {
		q = q.Limit(query.Limit).Offset(query.Offset)
	}
	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%s repository error: %w", t.kind, err)
	}
	out := make([]Reaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.reaction())
	}
	return out, total, nil
}

func (t *reactionTable[T]) count(ctx context.Context, articleID uuid.UUID) (int, error) {
	var zero T
	count, err := t.db.NewSelect().
		Model(zero).
		Where("?TableAlias.article_id = ?", articleID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s repository error: %w", t.kind, err)
	}
	return count, nil
}

func (t *reactionTable[T]) deleteByArticle(ctx context.Context, db bun.IDB, articleID uuid.UUID) error {
	var zero T
	if _, err := db.NewDelete().Model(zero).Where("article_id = ?", articleID).Exec(ctx); err != nil {
		return fmt.Errorf("%s repository error: %w", t.kind, err)
	}
	return nil
}

// BunRepository implements Repository on bun.
type BunRepository struct {
	db        *bun.DB
	likes     *reactionTable[*ArticleLike]
	bookmarks *reactionTable[*ArticleBookmark]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db: db,
		likes: newReactionTable(db, KindLike, repository.ModelHandlers[*ArticleLike]{
			NewRecord:          func() *ArticleLike { return &ArticleLike{} },
			GetID:              func(l *ArticleLike) uuid.UUID { return l.ID },
			SetID:              func(l *ArticleLike, id uuid.UUID) { l.ID = id },
			GetIdentifier:      func() string { return "id" },
			GetIdentifierValue: func(l *ArticleLike) string { return l.ID.String() },
		}, func(r Reaction) *ArticleLike {
			return &ArticleLike{ID: r.ID, UserID: r.UserID, ArticleID: r.ArticleID, CreatedAt: r.CreatedAt}
		}),
		bookmarks: newReactionTable(db, KindBookmark, repository.ModelHandlers[*ArticleBookmark]{
			NewRecord:          func() *ArticleBookmark { return &ArticleBookmark{} },
			GetID:              func(b *ArticleBookmark) uuid.UUID { return b.ID },
			SetID:              func(b *ArticleBookmark, id uuid.UUID) { b.ID = id },
			GetIdentifier:      func() string { return "id" },
			GetIdentifierValue: func(b *ArticleBookmark) string { return b.ID.String() },
		}, func(r Reaction) *ArticleBookmark {
			return &ArticleBookmark{ID: r.ID, UserID: r.UserID, ArticleID: r.ArticleID, CreatedAt: r.CreatedAt}
		}),
	}
}

func (r *BunRepository) Find(ctx context.Context, kind Kind, userID, articleID uuid.UUID) (*Reaction, error) {
	if kind == KindBookmark {
		return r.bookmarks.find(ctx, userID, articleID)
	}
	return r.likes.find(ctx, userID, articleID)
}

func (r *BunRepository) Create(ctx context.Context, kind Kind, reaction Reaction) (*Reaction, error) {
	if kind == KindBookmark {
		return r.bookmarks.create(ctx, reaction)
	}
	return r.likes.create(ctx, reaction)
}

func (r *BunRepository) Delete(ctx context.Context, kind Kind, id uuid.UUID) error {
	if kind == KindBookmark {
		return r.bookmarks.delete(ctx, id)
	}
	return r.likes.delete(ctx, id)
}

func (r *BunRepository) List(ctx context.Context, kind Kind, query ReactionQuery) ([]Reaction, int, error) {
	if kind == KindBookmark {
		return r.bookmarks.list(ctx, query)
	}
	return r.likes.list(ctx, query)
}

func (r *BunRepository) Count(ctx context.Context, kind Kind, articleID uuid.UUID) (int, error) {
	if kind == KindBookmark {
		return r.bookmarks.count(ctx, articleID)
	}
	return r.likes.count(ctx, articleID)
}

// DeleteByArticle removes every like and bookmark of the article in one
// transaction.
func (r *BunRepository) DeleteByArticle(ctx context.Context, articleID uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := r.bookmarks.deleteByArticle(ctx, tx, articleID); err != nil {
			return err
		}
		return r.likes.deleteByArticle(ctx, tx, articleID)
	})
}
