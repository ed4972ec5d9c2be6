package content

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/abolfazlirani/asar-backend-app/internal/logging"
	"github.com/abolfazlirani/asar-backend-app/internal/pagination"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

// CategoryTreeDepth is how many levels below the requested parent the tree
// nests.
const CategoryTreeDepth = 3

var (
	ErrArticleRepositoryRequired  = errors.New("content: article repository is required")
	ErrCategoryRepositoryRequired = errors.New("content: category repository is required")
	ErrCategoryOwnParent          = errors.New("content: category cannot be its own parent")
	ErrCategoryHasChildren        = errors.New("content: category has subcategories")
)

// Service is the article and category API.
type Service interface {
	CreateArticle(ctx context.Context, req CreateArticleRequest) (*Article, error)
	UpdateArticle(ctx context.Context, req UpdateArticleRequest) (*Article, error)
	DeleteArticle(ctx context.Context, id uuid.UUID) error
	GetArticle(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*ArticleDetail, error)
	FindArticle(ctx context.Context, id uuid.UUID) (*Article, error)
	GetActiveArticle(ctx context.Context, id uuid.UUID) (*Article, error)
	GetArticlesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ArticleView, error)
	ListArticles(ctx context.Context, req ListArticlesRequest) (*ArticleList, error)
	SearchArticles(ctx context.Context, req SearchArticlesRequest) (*ArticleList, error)
	IncrementShare(ctx context.Context, id uuid.UUID) (int, error)

	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	UpdateCategory(ctx context.Context, req UpdateCategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CategoryTree(ctx context.Context, req CategoryTreeRequest) ([]*Category, error)
	ListCategoriesAdmin(ctx context.Context, lang string) ([]*Category, error)
}

// CreateArticleRequest captures the fields accepted when creating an article.
type CreateArticleRequest struct {
	Title      string     `json:"title"`
	PostType   string     `json:"post_type"`
	Content    *string    `json:"content"`
	Source     *string    `json:"source"`
	Image      *string    `json:"image"`
	CategoryID *uuid.UUID `json:"categoryId"`
	Lang       string     `json:"lang"`
}

// UpdateArticleRequest carries a partial update. Nil fields keep their
// current value.
type UpdateArticleRequest struct {
	ID         uuid.UUID  `json:"-"`
	Title      *string    `json:"title"`
	PostType   *string    `json:"post_type"`
	Content    *string    `json:"content"`
	Source     *string    `json:"source"`
	Image      *string    `json:"image"`
	CategoryID *uuid.UUID `json:"categoryId"`
	Lang       *string    `json:"lang"`
	IsActive   *bool      `json:"is_active"`
}

// ListArticlesRequest selects a page of active articles.
type ListArticlesRequest struct {
	Lang       string
	CategoryID *uuid.UUID
	Page       int
	Limit      int
}

// SearchArticlesRequest extends ListArticlesRequest with a text query and a
// post type.
type SearchArticlesRequest struct {
	Query      string
	Lang       string
	CategoryID *uuid.UUID
	PostType   string
	Page       int
	Limit      int
}

// ArticleList is one page of articles.
type ArticleList struct {
	Articles []*ArticleView      `json:"articles"`
	Metadata pagination.Metadata `json:"metadata"`
}

type CreateCategoryRequest struct {
	Name     string     `json:"name"`
	Image    *string    `json:"image"`
	ParentID *uuid.UUID `json:"parentId"`
	Lang     string     `json:"lang"`
}

type UpdateCategoryRequest struct {
	ID       uuid.UUID  `json:"-"`
	Name     *string    `json:"name"`
	Image    *string    `json:"image"`
	ParentID *uuid.UUID `json:"parentId"`
	Lang     *string    `json:"lang"`
	IsActive *bool      `json:"is_active"`
}

// CategoryTreeRequest selects the subtree under ParentID, or the roots when
// ParentID is nil.
type CategoryTreeRequest struct {
	Lang     string
	ParentID *uuid.UUID
}

// Stats are the engagement counters shown on an article detail.
type Stats struct {
	Likes        int
	Bookmarks    int
	Comments     int
	IsLiked      bool
	IsBookmarked bool
}

// ArticleStats reports engagement counters for one article. viewer is nil
// for anonymous callers.
type ArticleStats interface {
	ArticleStats(ctx context.Context, articleID uuid.UUID, viewer *uuid.UUID) (Stats, error)
}

// ArticleCascade removes data owned by an article before the article itself
// is deleted.
type ArticleCascade interface {
	DeleteArticleData(ctx context.Context, articleID uuid.UUID) error
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type IDGenerator func() uuid.UUID

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithArticleStats sets the provider of article detail counters.
func WithArticleStats(stats ArticleStats) ServiceOption {
	return func(s *service) {
		s.stats = stats
	}
}

// WithArticleCascade registers hooks run, in order, before an article is
// deleted.
func WithArticleCascade(hooks ...ArticleCascade) ServiceOption {
	return func(s *service) {
		for _, hook := range hooks {
			if hook != nil {
				s.cascades = append(s.cascades, hook)
			}
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
	articles   ArticleRepository
	categories CategoryRepository
	stats      ArticleStats
	cascades   []ArticleCascade
	now        func() time.Time
	id         IDGenerator
	logger     interfaces.Logger
}

// NewService constructs the content service.
func NewService(articles ArticleRepository, categories CategoryRepository, opts ...ServiceOption) Service {
	if articles == nil {
		panic(ErrArticleRepositoryRequired)
	}
	if categories == nil {
		panic(ErrCategoryRepositoryRequired)
	}
	s := &service{
		articles:   articles,
		categories: categories,
		now:        time.Now,
		id:         uuid.New,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateArticle(ctx context.Context, req CreateArticleRequest) (*Article, error) {
	title := strings.TrimSpace(req.Title)
	postType := strings.TrimSpace(req.PostType)
	if err := validateArticle(title, postType, req.Content, req.Source); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record := &Article{
		ID:         s.id(),
		Title:      title,
		PostType:   postType,
		Content:    nonEmpty(req.Content),
		Image:      nonEmpty(req.Image),
		CategoryID: req.CategoryID,
		Lang:       languageOrDefault(req.Lang),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if postType != PostTypeArticle {
		record.Source = nonEmpty(req.Source)
	}
	return s.articles.Create(ctx, record)
}

func (s *service) UpdateArticle(ctx context.Context, req UpdateArticleRequest) (*Article, error) {
	existing, err := s.articles.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	updated := cloneArticle(existing)
	if req.Title != nil {
		updated.Title = strings.TrimSpace(*req.Title)
	}
	if req.PostType != nil {
		updated.PostType = strings.TrimSpace(*req.PostType)
	}
	if req.Content != nil {
		updated.Content = nonEmpty(req.Content)
	}
	if req.Source != nil {
		updated.Source = nonEmpty(req.Source)
	}
	if req.Image != nil {
		updated.Image = nonEmpty(req.Image)
	}
	if req.CategoryID != nil {
		updated.CategoryID = cloneUUID(req.CategoryID)
	}
	if req.Lang != nil {
		updated.Lang = languageOrDefault(*req.Lang)
	}
	if req.IsActive != nil {
		updated.IsActive = *req.IsActive
	}

	if err := validateArticle(updated.Title, updated.PostType, updated.Content, updated.Source); err != nil {
		return nil, err
	}
	if updated.PostType == PostTypeArticle {
		updated.Source = nil
	} else {
		updated.Content = nil
	}
	updated.UpdatedAt = s.now().UTC()
	return s.articles.Update(ctx, updated)
}

func (s *service) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	if _, err := s.articles.GetByID(ctx, id); err != nil {
		return err
	}
	for _, hook := range s.cascades {
		if err := hook.DeleteArticleData(ctx, id); err != nil {
			s.logger.Error("content.article.cascade_failed", "article_id", id, "error", err)
			return err
		}
	}
	if err := s.articles.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("content.article.deleted", "article_id", id)
	return nil
}

// FindArticle returns the article regardless of its active flag.
func (s *service) FindArticle(ctx context.Context, id uuid.UUID) (*Article, error) {
	return s.articles.GetByID(ctx, id)
}

func (s *service) GetActiveArticle(ctx context.Context, id uuid.UUID) (*Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !article.IsActive {
		return nil, &NotFoundError{Resource: "article", Key: id.String()}
	}
	return article, nil
}

func (s *service) GetArticle(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*ArticleDetail, error) {
	article, err := s.GetActiveArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.withCategories(ctx, []*Article{article})
	if err != nil {
		return nil, err
	}
	detail := &ArticleDetail{ArticleView: *views[0]}
	if s.stats == nil {
		return detail, nil
	}
	stats, err := s.stats.ArticleStats(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	detail.LikesCount = stats.Likes
	detail.BookmarksCount = stats.Bookmarks
	detail.CommentsCount = stats.Comments
	if viewer != nil {
		detail.IsLiked = stats.IsLiked
		detail.IsBookmarked = stats.IsBookmarked
	}
	return detail, nil
}

// GetArticlesByID returns the active articles among ids, keyed by id.
// Missing or inactive ids are absent from the map.
func (s *service) GetArticlesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ArticleView, error) {
	out := make(map[uuid.UUID]*ArticleView, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	records, _, err := s.articles.List(ctx, ArticleFilter{IDs: ids, RestrictIDs: true, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	views, err := s.withCategories(ctx, records)
	if err != nil {
		return nil, err
	}
	for _, view := range views {
		out[view.ID] = view
	}
	return out, nil
}

func (s *service) ListArticles(ctx context.Context, req ListArticlesRequest) (*ArticleList, error) {
	window := pagination.Normalize(req.Page, req.Limit, pagination.DefaultLimit)
	return s.listArticles(ctx, window, ArticleFilter{
		Lang:       languageOrDefault(req.Lang),
		CategoryID: req.CategoryID,
		ActiveOnly: true,
		Order:      OrderRecent,
	})
}

func (s *service) SearchArticles(ctx context.Context, req SearchArticlesRequest) (*ArticleList, error) {
	window := pagination.Normalize(req.Page, req.Limit, pagination.DefaultLimit)
	return s.listArticles(ctx, window, ArticleFilter{
		Lang:       languageOrDefault(req.Lang),
		CategoryID: req.CategoryID,
		PostType:   strings.TrimSpace(req.PostType),
		Search:     strings.TrimSpace(req.Query),
		ActiveOnly: true,
		Order:      OrderRecent,
	})
}

func (s *service) listArticles(ctx context.Context, window pagination.Request, filter ArticleFilter) (*ArticleList, error) {
	filter.Limit = window.Limit
	filter.Offset = window.Offset()
	records, total, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views, err := s.withCategories(ctx, records)
	if err != nil {
		return nil, err
	}
	return &ArticleList{
		Articles: views,
		Metadata: pagination.Info(total, window.Limit, window.Page),
	}, nil
}

func (s *service) IncrementShare(ctx context.Context, id uuid.UUID) (int, error) {
	return s.articles.IncrementShare(ctx, id)
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validation.Errors{
			"name": validation.NewError("required", "Field `name` is required."),
		}
	}
	if err := s.ensureCategory(ctx, req.ParentID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	return s.categories.Create(ctx, &Category{
		ID:        s.id(),
		Name:      name,
		Image:     nonEmpty(req.Image),
		ParentID:  cloneUUID(req.ParentID),
		Lang:      languageOrDefault(req.Lang),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *service) UpdateCategory(ctx context.Context, req UpdateCategoryRequest) (*Category, error) {
	existing, err := s.categories.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.ParentID != nil && *req.ParentID == req.ID {
		return nil, ErrCategoryOwnParent
	}
	if err := s.ensureCategory(ctx, req.ParentID); err != nil {
		return nil, err
	}

	updated := cloneCategory(existing)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validation.Errors{
				"name": validation.NewError("required", "Field `name` is required."),
			}
		}
		updated.Name = name
	}
	if req.Image != nil {
		updated.Image = nonEmpty(req.Image)
	}
	if req.ParentID != nil {
		updated.ParentID = cloneUUID(req.ParentID)
	}
	if req.Lang != nil {
		updated.Lang = languageOrDefault(*req.Lang)
	}
	if req.IsActive != nil {
		updated.IsActive = *req.IsActive
	}
	updated.UpdatedAt = s.now().UTC()
	return s.categories.Update(ctx, updated)
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return err
	}
	children, err := s.categories.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return ErrCategoryHasChildren
	}
	return s.categories.Delete(ctx, id)
}

// CategoryTree returns active categories under req.ParentID with children
// nested CategoryTreeDepth levels deep. Every level is ordered by name.
func (s *service) CategoryTree(ctx context.Context, req CategoryTreeRequest) ([]*Category, error) {
	lang := languageOrDefault(req.Lang)
	filter := CategoryFilter{Lang: lang, ActiveOnly: true}
	if req.ParentID == nil {
		filter.RootsOnly = true
	} else {
		filter.ParentIDs = []uuid.UUID{*req.ParentID}
	}
	roots, err := s.categories.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	level := roots
	for depth := 0; depth < CategoryTreeDepth && len(level) > 0; depth++ {
		parents := make([]uuid.UUID, 0, len(level))
		byID := make(map[uuid.UUID]*Category, len(level))
		for _, node := range level {
			node.Children = []*Category{}
			parents = append(parents, node.ID)
			byID[node.ID] = node
		}
		children, err := s.categories.List(ctx, CategoryFilter{Lang: lang, ActiveOnly: true, ParentIDs: parents})
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			parent := byID[*child.ParentID]
			parent.Children = append(parent.Children, child)
		}
		level = children
	}
	return roots, nil
}

func (s *service) ListCategoriesAdmin(ctx context.Context, lang string) ([]*Category, error) {
	return s.categories.List(ctx, CategoryFilter{Lang: languageOrDefault(lang)})
}

func (s *service) ensureCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.categories.GetByID(ctx, *id); err != nil {
		return err
	}
	return nil
}

func (s *service) withCategories(ctx context.Context, records []*Article) ([]*ArticleView, error) {
	ids := make([]uuid.UUID, 0, len(records))
	seen := map[uuid.UUID]struct{}{}
	for _, rec := range records {
		if rec.CategoryID == nil {
			continue
		}
		if _, ok := seen[*rec.CategoryID]; ok {
			continue
		}
		seen[*rec.CategoryID] = struct{}{}
		ids = append(ids, *rec.CategoryID)
	}

	categories := map[uuid.UUID]*Category{}
	if len(ids) > 0 {
		list, err := s.categories.List(ctx, CategoryFilter{IDs: ids, RestrictIDs: true})
		if err != nil {
			return nil, err
		}
		for _, c := range list {
			categories[c.ID] = c
		}
	}

	views := make([]*ArticleView, 0, len(records))
	for _, rec := range records {
		view := &ArticleView{Article: rec}
		if rec.CategoryID != nil {
			view.Category = summarize(categories[*rec.CategoryID])
		}
		views = append(views, view)
	}
	return views, nil
}

func validateArticle(title, postType string, content, source *string) error {
	errs := validation.Errors{}
	if title == "" {
		errs["title"] = validation.NewError("required", "Field `title` is required.")
	}
	if postType == "" {
		errs["post_type"] = validation.NewError("required", "Field `post_type` is required.")
	} else if postType == PostTypeArticle {
		if nonEmpty(content) == nil {
			errs["content"] = validation.NewError("required", "Field `content` is required for articles.")
		}
	} else if nonEmpty(source) == nil {
		errs["source"] = validation.NewError("required", "Field `source` is required for this post type.")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func languageOrDefault(lang string) string {
	if trimmed := strings.TrimSpace(lang); trimmed != "" {
		return trimmed
	}
	return DefaultLanguage
}

func nonEmpty(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
