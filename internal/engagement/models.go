package engagement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Kind selects the engagement table a call works on.
type Kind string

const (
	KindLike     Kind = "like"
	KindBookmark Kind = "bookmark"
)

// Reaction is one user's like or bookmark of one article.
type Reaction struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	ArticleID uuid.UUID `json:"articleId"`
	CreatedAt time.Time `json:"created_at"`
}

// ArticleLike is the article_likes row. A user likes an article at most once.
type ArticleLike struct {
	bun.BaseModel `bun:"table:article_likes,alias:r"`

	ID        uuid.UUID `bun:",pk,type:uuid"                                    json:"id"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid,unique:article_likes_user_article"    json:"userId"`
	ArticleID uuid.UUID `bun:"article_id,notnull,type:uuid,unique:article_likes_user_article" json:"articleId"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp"     json:"created_at"`
}

// ArticleBookmark is the article_bookmarks row.
type ArticleBookmark struct {
	bun.BaseModel `bun:"table:article_bookmarks,alias:r"`

	ID        uuid.UUID `bun:",pk,type:uuid"                                          json:"id"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid,unique:article_bookmarks_user_article"    json:"userId"`
	ArticleID uuid.UUID `bun:"article_id,notnull,type:uuid,unique:article_bookmarks_user_article" json:"articleId"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp"           json:"created_at"`
}

func (l *ArticleLike) reaction() Reaction {
	return Reaction{ID: l.ID, UserID: l.UserID, ArticleID: l.ArticleID, CreatedAt: l.CreatedAt}
}

func (b *ArticleBookmark) reaction() Reaction {
	return Reaction{ID: b.ID, UserID: b.UserID, ArticleID: b.ArticleID, CreatedAt: b.CreatedAt}
}

// Summary is the engagement block of an article detail.
type Summary struct {
	Likes        int
	Bookmarks    int
	IsLiked      bool
	IsBookmarked bool
}

// NotFoundError is returned when a reaction does not exist.
type NotFoundError struct {
	Kind Kind
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}
