package comments

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/abolfazlirani/asar-backend-app/internal/pagination"
)

// VoteStatus is a user's reaction to a comment.
type VoteStatus string

const (
	VoteNone    VoteStatus = "none"
	VoteLike    VoteStatus = "like"
	VoteDislike VoteStatus = "dislike"
)

// ParseVoteStatus accepts like, dislike and none.
func ParseVoteStatus(value string) (VoteStatus, bool) {
	switch VoteStatus(value) {
	case VoteLike, VoteDislike, VoteNone:
		return VoteStatus(value), true
	}
	return "", false
}

// Comment is a comment on an article, or a reply when ParentID is set. New
// comments stay hidden until a moderator activates them.
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:c"`

	ID        uuid.UUID  `bun:",pk,type:uuid"                                json:"id"`
	UserID    uuid.UUID  `bun:"user_id,notnull,type:uuid"                     json:"userId"`
	ArticleID uuid.UUID  `bun:"article_id,notnull,type:uuid"                  json:"articleId"`
	ParentID  *uuid.UUID `bun:"parent_id,type:uuid"                           json:"parentId"`
	Content   string     `bun:"content,notnull"                               json:"content"`
	IsActive  bool       `bun:"is_active,notnull,default:false"               json:"is_active"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// CommentVote is one user's like or dislike of a comment.
type CommentVote struct {
	bun.BaseModel `bun:"table:comment_likes,alias:cl"`

	ID        uuid.UUID  `bun:",pk,type:uuid"                                         json:"id"`
	UserID    uuid.UUID  `bun:"user_id,notnull,type:uuid,unique:comment_likes_user"    json:"userId"`
	CommentID uuid.UUID  `bun:"comment_id,notnull,type:uuid,unique:comment_likes_user" json:"commentId"`
	Status    VoteStatus `bun:"status,notnull"                                         json:"status"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp"          json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,default:current_timestamp"          json:"updated_at"`
}

// VoteCounts are the like and dislike totals of one comment.
type VoteCounts struct {
	Likes    int
	Dislikes int
}

// CommentView is a comment as shown in an article thread. UserLikeStatus is
// only set for identified viewers.
type CommentView struct {
	*Comment
	LikesCount     int        `json:"likes_count"`
	DislikesCount  int        `json:"dislikes_count"`
	UserLikeStatus VoteStatus `json:"userLikeStatus,omitempty"`
}

// ThreadView is a top-level comment with its active replies.
type ThreadView struct {
	CommentView
	Replies []*CommentView `json:"replies"`
}

// ThreadList is one page of an article's comment threads.
type ThreadList struct {
	Comments []*ThreadView       `json:"comments"`
	Metadata pagination.Metadata `json:"metadata"`
}

// CommentList is one page of the moderation listing.
type CommentList struct {
	Comments []*Comment          `json:"comments"`
	Metadata pagination.Metadata `json:"metadata"`
}

// NotFoundError is returned when a comment does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func cloneComment(c *Comment) *Comment {
	if c == nil {
		return nil
	}
	cloned := *c
	if c.ParentID != nil {
		parent := *c.ParentID
		cloned.ParentID = &parent
	}
	return &cloned
}
