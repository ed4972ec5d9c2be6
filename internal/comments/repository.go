package comments

import (
	"context"

	"github.com/google/uuid"
)

// CommentFilter narrows comment lists. Results are newest first.
type CommentFilter struct {
	ArticleID    *uuid.UUID
	TopLevelOnly bool
	ParentIDs    []uuid.UUID
	Active       *bool
	Limit        int
	Offset       int
}

// Repository stores comments and their votes.
type Repository interface {
	Create(ctx context.Context, comment *Comment) (*Comment, error)
	Update(ctx context.Context, comment *Comment) (*Comment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	List(ctx context.Context, filter CommentFilter) ([]*Comment, int, error)
	CountActive(ctx context.Context, articleID uuid.UUID) (int, error)
	// Delete removes the comment, its replies and every vote on them.
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByArticle(ctx context.Context, articleID uuid.UUID) error

	FindVote(ctx context.Context, userID, commentID uuid.UUID) (*CommentVote, error)
	CreateVote(ctx context.Context, vote *CommentVote) (*CommentVote, error)
	UpdateVote(ctx context.Context, vote *CommentVote) (*CommentVote, error)
	DeleteVote(ctx context.Context, id uuid.UUID) error
	VoteCounts(ctx context.Context, commentIDs []uuid.UUID) (map[uuid.UUID]VoteCounts, error)
	UserVotes(ctx context.Context, userID uuid.UUID, commentIDs []uuid.UUID) (map[uuid.UUID]VoteStatus, error)
}
