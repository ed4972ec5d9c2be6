package engagement

import (
	"context"

	"github.com/google/uuid"
)

// ReactionQuery narrows reaction lists. Nil ids mean "any".
type ReactionQuery struct {
	UserID     *uuid.UUID
	ArticleID  *uuid.UUID
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Repository stores likes and bookmarks.
type Repository interface {
	Find(ctx context.Context, kind Kind, userID, articleID uuid.UUID) (*Reaction, error)
	Create(ctx context.Context, kind Kind, reaction Reaction) (*Reaction, error)
	Delete(ctx context.Context, kind Kind, id uuid.UUID) error
	List(ctx context.Context, kind Kind, query ReactionQuery) ([]Reaction, int, error)
	Count(ctx context.Context, kind Kind, articleID uuid.UUID) (int, error)
	DeleteByArticle(ctx context.Context, articleID uuid.UUID) error
}
