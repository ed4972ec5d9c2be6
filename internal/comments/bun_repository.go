package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewCommentRepository creates the generic repository for comments.
func NewCommentRepository(db *bun.DB) repository.Repository[*Comment] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Comment]{
		NewRecord:          func() *Comment { return &Comment{} },
		GetID:              func(c *Comment) uuid.UUID { return c.ID },
		SetID:              func(c *Comment, id uuid.UUID) { c.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(c *Comment) string { return c.ID.String() },
	})
}

// NewCommentVoteRepository creates the generic repository for comment votes.
func NewCommentVoteRepository(db *bun.DB) repository.Repository[*CommentVote] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*CommentVote]{
		NewRecord:          func() *CommentVote { return &CommentVote{} },
		GetID:              func(v *CommentVote) uuid.UUID { return v.ID },
		SetID:              func(v *CommentVote, id uuid.UUID) { v.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(v *CommentVote) string { return v.ID.String() },
	})
}

type BunRepository struct {
	db       *bun.DB
	comments repository.Repository[*Comment]
	votes    repository.Repository[*CommentVote]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db:       db,
		comments: NewCommentRepository(db),
		votes:    NewCommentVoteRepository(db),
	}
}

func (r *BunRepository) Create(ctx context.Context, comment *Comment) (*Comment, error) {
	created, err := r.comments.Create(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("comment repository error: %w", err)
	}
	return created, nil
}

func (r *BunRepository) Update(ctx context.Context, comment *Comment) (*Comment, error) {
	updated, err := r.comments.Update(ctx, comment,
		repository.UpdateByID(comment.ID.String()),
		repository.UpdateColumns("content", "is_active", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "comment", comment.ID.String())
	}
	return updated, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	record, err := r.comments.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "comment", id.String())
	}
	return record, nil
}

func (r *BunRepository) List(ctx context.Context, filter CommentFilter) ([]*Comment, int, error) {
	criteria := []repository.SelectCriteria{
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if filter.ArticleID != nil {
				q = q.Where("?TableAlias.article_id = ?", *filter.ArticleID)
			}
			if filter.TopLevelOnly {
				q = q.Where("?TableAlias.parent_id IS NULL")
			}
			if len(filter.ParentIDs) > 0 {
				q = q.Where("?TableAlias.parent_id IN (?)", bun.In(filter.ParentIDs))
			}
			if filter.Active != nil {
				q = q.Where("?TableAlias.is_active = ?", *filter.Active)
			}
			return q.OrderExpr("?TableAlias.created_at DESC")
		}),
	}
	if filter.Limit > 0 {
		criteria = append(criteria, repository.SelectPaginate(filter.Limit, filter.Offset))
	}
	records, total, err := r.comments.List(ctx, criteria...)
	if err != nil {
		return nil, 0, fmt.Errorf("comment repository error: %w", err)
	}
	return records, total, nil
}

func (r *BunRepository) CountActive(ctx context.Context, articleID uuid.UUID) (int, error) {
	count, err := r.db.NewSelect().
		Model((*Comment)(nil)).
		Where("?TableAlias.article_id = ?", articleID).
		Where("?TableAlias.is_active = ?", true).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("comment repository error: %w", err)
	}
	return count, nil
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ids, err := selectIDs(ctx, tx.NewSelect().
			Model((*Comment)(nil)).
			Column("id").
			Where("id = ? OR parent_id = ?", id, id))
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return &NotFoundError{Resource: "comment", Key: id.String()}
		}
		return deleteComments(ctx, tx, ids)
	})
}

// DeleteByArticle removes every comment, reply and vote of an article.
func (r *BunRepository) DeleteByArticle(ctx context.Context, articleID uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ids, err := selectIDs(ctx, tx.NewSelect().
			Model((*Comment)(nil)).
			Column("id").
			Where("article_id = ?", articleID))
		if err != nil || len(ids) == 0 {
			return err
		}
		return deleteComments(ctx, tx, ids)
	})
}

func selectIDs(ctx context.Context, q *bun.SelectQuery) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := q.Scan(ctx, &ids); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("comment repository error: %w", err)
	}
	return ids, nil
}

// deleteComments removes votes first, then replies, then the comments.
func deleteComments(ctx context.Context, tx bun.IDB, ids []uuid.UUID) error {
	if _, err := tx.NewDelete().
		Model((*CommentVote)(nil)).
		Where("comment_id IN (?)", bun.In(ids)).
		Exec(ctx); err != nil {
		return fmt.Errorf("comment repository error: %w", err)
	}
	if _, err := tx.NewDelete().
		Model((*Comment)(nil)).
		Where("parent_id IN (?)", bun.In(ids)).
		Exec(ctx); err != nil {
		return fmt.Errorf("comment repository error: %w", err)
	}
	if _, err := tx.NewDelete().
		Model((*Comment)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx); err != nil {
		return fmt.Errorf("comment repository error: %w", err)
	}
	return nil
}

func (r *BunRepository) FindVote(ctx context.Context, userID, commentID uuid.UUID) (*CommentVote, error) {
	vote := new(CommentVote)
	err := r.db.NewSelect().
		Model(vote).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.comment_id = ?", commentID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "comment vote", Key: commentID.String()}
		}
		return nil, fmt.Errorf("comment vote repository error: %w", err)
	}
	return vote, nil
}

func (r *BunRepository) CreateVote(ctx context.Context, vote *CommentVote) (*CommentVote, error) {
	created, err := r.votes.Create(ctx, vote)
	if err != nil {
		return nil, fmt.Errorf("comment vote repository error: %w", err)
	}
	return created, nil
}

func (r *BunRepository) UpdateVote(ctx context.Context, vote *CommentVote) (*CommentVote, error) {
	updated, err := r.votes.Update(ctx, vote,
		repository.UpdateByID(vote.ID.String()),
		repository.UpdateColumns("status", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "comment vote", vote.ID.String())
	}
	return updated, nil
}

func (r *BunRepository) DeleteVote(ctx context.Context, id uuid.UUID) error {
	if err := r.votes.Delete(ctx, &CommentVote{ID: id}); err != nil {
		return mapRepositoryError(err, "comment vote", id.String())
	}
	return nil
}

type voteCountRow struct {
	CommentID uuid.UUID  `bun:"comment_id"`
	Status    VoteStatus `bun:"status"`
	Total     int        `bun:"total"`
}

func (r *BunRepository) VoteCounts(ctx context.Context, commentIDs []uuid.UUID) (map[uuid.UUID]VoteCounts, error) {
	out := make(map[uuid.UUID]VoteCounts, len(commentIDs))
	if len(commentIDs) == 0 {
		return out, nil
	}
	var rows []voteCountRow
	err := r.db.NewSelect().
		Model((*CommentVote)(nil)).
		Column("comment_id", "status").
		ColumnExpr("COUNT(*) AS total").
		Where("comment_id IN (?)", bun.In(commentIDs)).
		Group("comment_id", "status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("comment vote repository error: %w", err)
	}
	for _, row := range rows {
		counts := out[row.CommentID]
		switch row.Status {
		case VoteLike:
			counts.Likes += row.Total
		case VoteDislike:
			counts.Dislikes += row.Total
		}
		out[row.CommentID] = counts
	}
	return out, nil
}

func (r *BunRepository) UserVotes(ctx context.Context, userID uuid.UUID, commentIDs []uuid.UUID) (map[uuid.UUID]VoteStatus, error) {
	out := make(map[uuid.UUID]VoteStatus, len(commentIDs))
	if len(commentIDs) == 0 {
		return out, nil
	}
	var votes []*CommentVote
	err := r.db.NewSelect().
		Model(&votes).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.comment_id IN (?)", bun.In(commentIDs)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("comment vote repository error: %w", err)
	}
	for _, vote := range votes {
		out[vote.CommentID] = vote.Status
	}
	return out, nil
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
