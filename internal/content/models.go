package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Post types. Articles carry inline content; every other type points at a
// media source instead.
const (
	PostTypeArticle = "article"
	PostTypeVideo   = "video"
	PostTypeAudio   = "audio"
	PostTypePodcast = "podcast"
)

// DefaultLanguage applies when a request does not name one.
const DefaultLanguage = "fa"

// Article is a post of any type.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:a"`

	ID         uuid.UUID  `bun:",pk,type:uuid"                                json:"id"`
	Title      string     `bun:"title,notnull"                                 json:"title"`
	PostType   string     `bun:"post_type,notnull"                             json:"post_type"`
	Content    *string    `bun:"content"                                       json:"content"`
	Source     *string    `bun:"source"                                        json:"source"`
	Image      *string    `bun:"image"                                         json:"image"`
	CategoryID *uuid.UUID `bun:"category_id,type:uuid"                         json:"categoryId"`
	Lang       string     `bun:"lang,notnull,default:'fa'"                     json:"lang"`
	IsActive   bool       `bun:"is_active,notnull,default:true"                json:"is_active"`
	ShareCount int        `bun:"share_count,notnull,default:0"                 json:"share_count"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Category groups articles. Categories nest through ParentID.
type Category struct {
	bun.BaseModel `bun:"table:post_categories,alias:pc"`

	ID        uuid.UUID  `bun:",pk,type:uuid"                                json:"id"`
	Name      string     `bun:"name,notnull"                                  json:"name"`
	Image     *string    `bun:"image"                                         json:"image"`
	ParentID  *uuid.UUID `bun:"parent_id,type:uuid"                           json:"parentId"`
	Lang      string     `bun:"lang,notnull,default:'fa'"                     json:"lang"`
	IsActive  bool       `bun:"is_active,notnull,default:true"                json:"is_active"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Children []*Category `bun:"-" json:"children,omitempty"`
}

// CategorySummary is the category block embedded in article responses.
type CategorySummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Image *string   `json:"image"`
}

// ArticleView is an article with its category resolved.
type ArticleView struct {
	*Article
	Category *CategorySummary `json:"category"`
}

// ArticleDetail adds engagement counters to an ArticleView. The viewer
// flags are false for anonymous callers.
type ArticleDetail struct {
	ArticleView
	LikesCount     int  `json:"likes_count"`
	BookmarksCount int  `json:"bookmarks_count"`
	CommentsCount  int  `json:"comments_count"`
	IsLiked        bool `json:"is_liked"`
	IsBookmarked   bool `json:"is_bookmarked"`
}

func summarize(category *Category) *CategorySummary {
	if category == nil {
		return nil
	}
	return &CategorySummary{ID: category.ID, Name: category.Name, Image: category.Image}
}

func cloneArticle(a *Article) *Article {
	if a == nil {
		return nil
	}
	cloned := *a
	cloned.Content = cloneString(a.Content)
	cloned.Source = cloneString(a.Source)
	cloned.Image = cloneString(a.Image)
	cloned.CategoryID = cloneUUID(a.CategoryID)
	return &cloned
}

func cloneCategory(c *Category) *Category {
	if c == nil {
		return nil
	}
	cloned := *c
	cloned.Image = cloneString(c.Image)
	cloned.ParentID = cloneUUID(c.ParentID)
	cloned.Children = nil
	return &cloned
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
