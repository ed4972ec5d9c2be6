package comments

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/abolfazlirani/asar-backend-app/internal/content"
	"github.com/abolfazlirani/asar-backend-app/internal/logging"
	"github.com/abolfazlirani/asar-backend-app/internal/pagination"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

// DefaultListLimit pages comment listings.
const DefaultListLimit = 20

var (
	ErrRepositoryRequired = errors.New("comments: repository is required")
	ErrArticlesRequired   = errors.New("comments: article lookup is required")
)

// Articles resolves the article a comment is posted on.
type Articles interface {
	FindArticle(ctx context.Context, id uuid.UUID) (*content.Article, error)
}

// VoteOutcome describes what a Vote call changed.
type VoteOutcome string

const (
	VoteCreated   VoteOutcome = "created"
	VoteUpdated   VoteOutcome = "updated"
	VoteRemoved   VoteOutcome = "removed"
	VoteUnchanged VoteOutcome = "unchanged"
)

// VoteResult carries the vote after a created or updated outcome.
type VoteResult struct {
	Outcome VoteOutcome
	Vote    *CommentVote
}

type CreateCommentRequest struct {
	UserID    uuid.UUID  `json:"-"`
	ArticleID uuid.UUID  `json:"articleId"`
	Content   string     `json:"content"`
	ParentID  *uuid.UUID `json:"parentId"`
}

type UpdateCommentRequest struct {
	ID       uuid.UUID `json:"-"`
	Content  *string   `json:"content"`
	IsActive *bool     `json:"is_active"`
}

type Service interface {
	Create(ctx context.Context, req CreateCommentRequest) (*Comment, error)
	ListForArticle(ctx context.Context, articleID uuid.UUID, viewer *uuid.UUID, page, limit int) (*ThreadList, error)
	Vote(ctx context.Context, userID, commentID uuid.UUID, status VoteStatus) (*VoteResult, error)
	VoteStatus(ctx context.Context, userID, commentID uuid.UUID) (VoteStatus, error)
	CountActive(ctx context.Context, articleID uuid.UUID) (int, error)

	ListAll(ctx context.Context, active *bool, page, limit int) (*CommentList, error)
	Update(ctx context.Context, req UpdateCommentRequest) (*Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteArticleData(ctx context.Context, articleID uuid.UUID) error
}

type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo     Repository
	articles Articles
	now      func() time.Time
	id       func() uuid.UUID
	logger   interfaces.Logger
}

func NewService(repo Repository, articles Articles, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	if articles == nil {
		panic(ErrArticlesRequired)
	}
	s := &service{
		repo:     repo,
		articles: articles,
		now:      time.Now,
		id:       uuid.New,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a comment awaiting moderation.
func (s *service) Create(ctx context.Context, req CreateCommentRequest) (*Comment, error) {
	text := strings.TrimSpace(req.Content)
	if text == "" || req.ArticleID == uuid.Nil {
		errs := validation.Errors{}
		if text == "" {
			errs["content"] = validation.NewError("required", "Fields `content` and `articleId` are required.")
		}
		if req.ArticleID == uuid.Nil {
			errs["articleId"] = validation.NewError("required", "Fields `content` and `articleId` are required.")
		}
		return nil, errs
	}
	if _, err := s.articles.FindArticle(ctx, req.ArticleID); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if _, err := s.repo.GetByID(ctx, *req.ParentID); err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				return nil, &NotFoundError{Resource: "parent comment", Key: req.ParentID.String()}
			}
			return nil, err
		}
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &Comment{
		ID:        s.id(),
		UserID:    req.UserID,
		ArticleID: req.ArticleID,
		ParentID:  req.ParentID,
		Content:   text,
		IsActive:  false,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).Info("comments.created", "comment_id", created.ID, "article_id", created.ArticleID)
	return created, nil
}

// ListForArticle pages the active top-level comments of an article, newest
// first, each with its active replies and vote counters.
func (s *service) ListForArticle(ctx context.Context, articleID uuid.UUID, viewer *uuid.UUID, page, limit int) (*ThreadList, error) {
	window := pagination.Normalize(page, limit, DefaultListLimit)
	active := true
	roots, total, err := s.repo.List(ctx, CommentFilter{
		ArticleID:    &articleID,
		TopLevelOnly: true,
		Active:       &active,
		Limit:        window.Limit,
		Offset:       window.Offset(),
	})
	if err != nil {
		return nil, err
	}

	var replies []*Comment
	if len(roots) > 0 {
		rootIDs := make([]uuid.UUID, 0, len(roots))
		for _, root := range roots {
			rootIDs = append(rootIDs, root.ID)
		}
		replies, _, err = s.repo.List(ctx, CommentFilter{ParentIDs: rootIDs, Active: &active})
		if err != nil {
			return nil, err
		}
	}

	ids := make([]uuid.UUID, 0, len(roots)+len(replies))
	for _, c := range roots {
		ids = append(ids, c.ID)
	}
	for _, c := range replies {
		ids = append(ids, c.ID)
	}
	counts, err := s.repo.VoteCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	var votes map[uuid.UUID]VoteStatus
	if viewer != nil {
		if votes, err = s.repo.UserVotes(ctx, *viewer, ids); err != nil {
			return nil, err
		}
	}

	view := func(c *Comment) CommentView {
		v := CommentView{
			Comment:       c,
			LikesCount:    counts[c.ID].Likes,
			DislikesCount: counts[c.ID].Dislikes,
		}
		if viewer != nil {
			v.UserLikeStatus = VoteNone
			if status, ok := votes[c.ID]; ok {
				v.UserLikeStatus = status
			}
		}
		return v
	}

	threads := make([]*ThreadView, 0, len(roots))
	byID := make(map[uuid.UUID]*ThreadView, len(roots))
	for _, root := range roots {
		thread := &ThreadView{CommentView: view(root), Replies: []*CommentView{}}
		threads = append(threads, thread)
		byID[root.ID] = thread
	}
	for _, reply := range replies {
		thread, ok := byID[*reply.ParentID]
		if !ok {
			continue
		}
		v := view(reply)
		thread.Replies = append(thread.Replies, &v)
	}
	return &ThreadList{
		Comments: threads,
		Metadata: pagination.Info(total, window.Limit, window.Page),
	}, nil
}

// Vote applies status to the user's vote on a comment. none clears the vote,
// repeating the current status clears it too, and a different status
// replaces it.
func (s *service) Vote(ctx context.Context, userID, commentID uuid.UUID, status VoteStatus) (*VoteResult, error) {
	if _, ok := ParseVoteStatus(string(status)); !ok {
		return nil, validation.Errors{
			"status": validation.NewError("invalid", "Field `status` must be 'like', 'dislike', or 'none'."),
		}
	}
	if _, err := s.repo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindVote(ctx, userID, commentID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	if existing == nil {
		if status == VoteNone {
			return &VoteResult{Outcome: VoteUnchanged}, nil
		}
		now := s.now().UTC()
		created, err := s.repo.CreateVote(ctx, &CommentVote{
			ID:        s.id(),
			UserID:    userID,
			CommentID: commentID,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return nil, err
		}
		return &VoteResult{Outcome: VoteCreated, Vote: created}, nil
	}

	if status == VoteNone || existing.Status == status {
		if err := s.repo.DeleteVote(ctx, existing.ID); err != nil {
			return nil, err
		}
		return &VoteResult{Outcome: VoteRemoved}, nil
	}

	existing.Status = status
	existing.UpdatedAt = s.now().UTC()
	updated, err := s.repo.UpdateVote(ctx, existing)
	if err != nil {
		return nil, err
	}
	return &VoteResult{Outcome: VoteUpdated, Vote: updated}, nil
}

func (s *service) VoteStatus(ctx context.Context, userID, commentID uuid.UUID) (VoteStatus, error) {
	vote, err := s.repo.FindVote(ctx, userID, commentID)
	if err != nil {
		if isNotFound(err) {
			return VoteNone, nil
		}
		return "", err
	}
	return vote.Status, nil
}

func (s *service) CountActive(ctx context.Context, articleID uuid.UUID) (int, error) {
	return s.repo.CountActive(ctx, articleID)
}

func (s *service) ListAll(ctx context.Context, active *bool, page, limit int) (*CommentList, error) {
	window := pagination.Normalize(page, limit, DefaultListLimit)
	records, total, err := s.repo.List(ctx, CommentFilter{
		Active: active,
		Limit:  window.Limit,
		Offset: window.Offset(),
	})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*Comment{}
	}
	return &CommentList{Comments: records, Metadata: pagination.Info(total, window.Limit, window.Page)}, nil
}

// Update is the moderation edit: new content and/or visibility.
func (s *service) Update(ctx context.Context, req UpdateCommentRequest) (*Comment, error) {
	existing, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	updated := cloneComment(existing)
	if req.Content != nil {
		text := strings.TrimSpace(*req.Content)
		if text == "" {
			return nil, validation.Errors{
				"content": validation.NewError("required", "Field `content` cannot be empty."),
			}
		}
		updated.Content = text
	}
	if req.IsActive != nil {
		updated.IsActive = *req.IsActive
	}
	updated.UpdatedAt = s.now().UTC()
	result, err := s.repo.Update(ctx, updated)
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).Info("comments.moderated", "comment_id", result.ID, "is_active", result.IsActive)
	return result, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// DeleteArticleData removes every comment of an article before the article
// is deleted.
func (s *service) DeleteArticleData(ctx context.Context, articleID uuid.UUID) error {
	return s.repo.DeleteByArticle(ctx, articleID)
}

func isNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
