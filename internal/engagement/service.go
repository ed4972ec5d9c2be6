package engagement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abolfazlirani/asar-backend-app/internal/content"
	"github.com/abolfazlirani/asar-backend-app/internal/logging"
	"github.com/abolfazlirani/asar-backend-app/internal/pagination"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

const (
	// DefaultUserListLimit pages a user's own likes and bookmarks.
	DefaultUserListLimit = 20
	// DefaultAdminListLimit pages admin listings.
	DefaultAdminListLimit = 50
)

var (
	ErrRepositoryRequired = errors.New("engagement: repository is required")
	ErrArticlesRequired   = errors.New("engagement: article lookup is required")
)

// Articles is the slice of the content service engagement depends on.
type Articles interface {
	FindArticle(ctx context.Context, id uuid.UUID) (*content.Article, error)
	GetActiveArticle(ctx context.Context, id uuid.UUID) (*content.Article, error)
	GetArticlesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*content.ArticleView, error)
}

// ToggleResult reports the state after a toggle. Reaction is set when the
// toggle created one.
type ToggleResult struct {
	Active   bool
	Reaction *Reaction
}

// ReactionList is one page of raw likes or bookmarks.
type ReactionList struct {
	Items    []Reaction          `json:"items"`
	Metadata pagination.Metadata `json:"metadata"`
}

type Service interface {
	Toggle(ctx context.Context, kind Kind, userID, articleID uuid.UUID) (*ToggleResult, error)
	Status(ctx context.Context, kind Kind, userID, articleID uuid.UUID) (bool, error)
	ListArticles(ctx context.Context, kind Kind, userID uuid.UUID, page, limit int) (*content.ArticleList, error)
	ListForArticle(ctx context.Context, kind Kind, articleID uuid.UUID, page, limit int) (*ReactionList, error)
	ListAll(ctx context.Context, kind Kind, userID *uuid.UUID, page, limit int) (*ReactionList, error)
	Summary(ctx context.Context, articleID uuid.UUID, viewer *uuid.UUID) (Summary, error)
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

// Toggle flips the user's like or bookmark on an active article.
func (s *service) Toggle(ctx context.Context, kind Kind, userID, articleID uuid.UUID) (*ToggleResult, error) {
	if _, err := s.articles.GetActiveArticle(ctx, articleID); err != nil {
		return nil, err
	}
	existing, err := s.repo.Find(ctx, kind, userID, articleID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if existing != nil {
		if err := s.repo.Delete(ctx, kind, existing.ID); err != nil {
			return nil, err
		}
		s.logger.WithContext(ctx).Debug("engagement.removed", "kind", kind, "user_id", userID, "article_id", articleID)
		return &ToggleResult{Active: false}, nil
	}
	created, err := s.repo.Create(ctx, kind, Reaction{
		ID:        s.id(),
		UserID:    userID,
		ArticleID: articleID,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).Debug("engagement.added", "kind", kind, "user_id", userID, "article_id", articleID)
	return &ToggleResult{Active: true, Reaction: created}, nil
}

func (s *service) Status(ctx context.Context, kind Kind, userID, articleID uuid.UUID) (bool, error) {
	_, err := s.repo.Find(ctx, kind, userID, articleID)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

// ListArticles pages the active articles a user liked or bookmarked, most
// recent reaction first.
func (s *service) ListArticles(ctx context.Context, kind Kind, userID uuid.UUID, page, limit int) (*content.ArticleList, error) {
	window := pagination.Normalize(page, limit, DefaultUserListLimit)
	reactions, total, err := s.repo.List(ctx, kind, ReactionQuery{
		UserID:     &userID,
		ActiveOnly: true,
		Limit:      window.Limit,
		Offset:     window.Offset(),
	})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(reactions))
	for _, reaction := range reactions {
		ids = append(ids, reaction.ArticleID)
	}
	views, err := s.articles.GetArticlesByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	articles := make([]*content.ArticleView, 0, len(reactions))
	for _, reaction := range reactions {
		if view, ok := views[reaction.ArticleID]; ok {
			articles = append(articles, view)
		}
	}
	return &content.ArticleList{
		Articles: articles,
		Metadata: pagination.Info(total, window.Limit, window.Page),
	}, nil
}

// ListForArticle pages the reactions on one article, for admins.
func (s *service) ListForArticle(ctx context.Context, kind Kind, articleID uuid.UUID, page, limit int) (*ReactionList, error) {
	if _, err := s.articles.FindArticle(ctx, articleID); err != nil {
		return nil, err
	}
	return s.list(ctx, kind, ReactionQuery{ArticleID: &articleID}, page, limit)
}

// ListAll pages every reaction of kind, optionally for one user.
func (s *service) ListAll(ctx context.Context, kind Kind, userID *uuid.UUID, page, limit int) (*ReactionList, error) {
	return s.list(ctx, kind, ReactionQuery{UserID: userID}, page, limit)
}

func (s *service) list(ctx context.Context, kind Kind, query ReactionQuery, page, limit int) (*ReactionList, error) {
	window := pagination.Normalize(page, limit, DefaultAdminListLimit)
	query.Limit = window.Limit
	query.Offset = window.Offset()
	items, total, err := s.repo.List(ctx, kind, query)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Reaction{}
	}
	return &ReactionList{Items: items, Metadata: pagination.Info(total, window.Limit, window.Page)}, nil
}

// Summary counts likes and bookmarks of an article. The viewer flags are only
// looked up when viewer is set.
func (s *service) Summary(ctx context.Context, articleID uuid.UUID, viewer *uuid.UUID) (Summary, error) {
	var out Summary
	var err error
	if out.Likes, err = s.repo.Count(ctx, KindLike, articleID); err != nil {
		return Summary{}, err
	}
	if out.Bookmarks, err = s.repo.Count(ctx, KindBookmark, articleID); err != nil {
		return Summary{}, err
	}
	if viewer == nil {
		return out, nil
	}
	if out.IsLiked, err = s.Status(ctx, KindLike, *viewer, articleID); err != nil {
		return Summary{}, err
	}
	if out.IsBookmarked, err = s.Status(ctx, KindBookmark, *viewer, articleID); err != nil {
		return Summary{}, err
	}
	return out, nil
}

// DeleteArticleData removes likes and bookmarks before an article is deleted.
func (s *service) DeleteArticleData(ctx context.Context, articleID uuid.UUID) error {
	return s.repo.DeleteByArticle(ctx, articleID)
}

func isNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
