package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/abolfazlirani/asar-backend-app/internal/layout"
	"github.com/abolfazlirani/asar-backend-app/internal/logging"
	"github.com/abolfazlirani/asar-backend-app/internal/pagination"
	schemavalidation "github.com/abolfazlirani/asar-backend-app/internal/validation"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

// DefaultLanguage is used when a render request does not name one.
const DefaultLanguage = "fa"

var (
	ErrPageRepositoryRequired = errors.New("pages: page repository is required")
	ErrResolverRequired       = errors.New("pages: layout resolver is required")
	ErrPageExists             = errors.New("pages: a page with this slug and language already exists")
	ErrInvalidLayout          = errors.New("pages: failed to parse page layout")
)

// LayoutResolver turns stored layout text into resolved rows.
type LayoutResolver interface {
	ResolveJSON(ctx context.Context, raw []byte) (layout.Resolved, error)
}

// Service renders pages for the app and manages them for admins.
type Service interface {
	Render(ctx context.Context, slug, language string) (*RenderedPage, error)
	Create(ctx context.Context, req CreatePageRequest) (*Page, error)
	Get(ctx context.Context, id uuid.UUID) (*Page, error)
	List(ctx context.Context, page, limit int) (*PageList, error)
	Update(ctx context.Context, req UpdatePageRequest) (*Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CreatePageRequest struct {
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Language   string     `json:"language"`
	LayoutJSON LayoutText `json:"layout_json"`
	IsActive   *bool      `json:"is_active"`
}

// UpdatePageRequest carries a partial update; nil fields are left alone.
type UpdatePageRequest struct {
	ID         uuid.UUID   `json:"-"`
	Title      *string     `json:"title"`
	Slug       *string     `json:"slug"`
	Language   *string     `json:"language"`
	LayoutJSON *LayoutText `json:"layout_json"`
	IsActive   *bool       `json:"is_active"`
}

// PageList is one page of admin page listings.
type PageList struct {
	Pages    []*Page             `json:"pages"`
	Metadata pagination.Metadata `json:"metadata"`
}

type ServiceOption func(*service)

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

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	pages    PageRepository
	resolver LayoutResolver
	now      func() time.Time
	id       IDGenerator
	logger   interfaces.Logger
}

func NewService(pages PageRepository, resolver LayoutResolver, opts ...ServiceOption) Service {
	if pages == nil {
		panic(ErrPageRepositoryRequired)
	}
	if resolver == nil {
		panic(ErrResolverRequired)
	}
	s := &service{
		pages:    pages,
		resolver: resolver,
		now:      time.Now,
		id:       uuid.New,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render looks up the active page for slug and language and resolves its
// layout. A stored layout that is not valid JSON yields ErrInvalidLayout.
func (s *service) Render(ctx context.Context, slugValue, language string) (*RenderedPage, error) {
	language = strings.TrimSpace(language)
	if language == "" {
		language = DefaultLanguage
	}
	key := normalizeSlug(slugValue)
	page, err := s.pages.GetBySlug(ctx, key, language)
	if err != nil {
		return nil, err
	}
	if !page.IsActive {
		return nil, &PageNotFoundError{Key: key}
	}

	resolved, err := s.resolver.ResolveJSON(ctx, []byte(page.LayoutJSON))
	if err != nil {
		s.logger.WithContext(ctx).Error("pages.render.layout_invalid",
			"page_id", page.ID,
			"slug", page.Slug,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	return &RenderedPage{
		Slug:     page.Slug,
		Language: page.Language,
		Title:    page.Title,
		Rows:     resolved.Rows,
	}, nil
}

func (s *service) Create(ctx context.Context, req CreatePageRequest) (*Page, error) {
	errs := validation.Errors{}
	slugValue := strings.TrimSpace(req.Slug)
	language := strings.TrimSpace(req.Language)
	layoutText := strings.TrimSpace(string(req.LayoutJSON))
	if slugValue == "" {
		errs["slug"] = validation.NewError("required", "Fields slug, language, and layout_json are required.")
	}
	slugValue = normalizeSlug(slugValue)
	if language == "" {
		errs["language"] = validation.NewError("required", "Fields slug, language, and layout_json are required.")
	}
	if layoutText == "" {
		errs["layout_json"] = validation.NewError("required", "Fields slug, language, and layout_json are required.")
	} else if err := validateLayout(layoutText); err != nil {
		errs["layout_json"] = err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if err := s.ensureAvailable(ctx, slugValue, language, uuid.Nil); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	created, err := s.pages.Create(ctx, &Page{
		ID:         s.id(),
		Title:      strings.TrimSpace(req.Title),
		Slug:       slugValue,
		Language:   language,
		LayoutJSON: layoutText,
		IsActive:   active,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).Info("pages.created", "page_id", created.ID, "slug", created.Slug, "language", created.Language)
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Page, error) {
	return s.pages.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, page, limit int) (*PageList, error) {
	window := pagination.Normalize(page, limit, pagination.DefaultLimit)
	records, total, err := s.pages.List(ctx, window.Limit, window.Offset())
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*Page{}
	}
	return &PageList{
		Pages:    records,
		Metadata: pagination.Info(total, window.Limit, window.Page),
	}, nil
}

func (s *service) Update(ctx context.Context, req UpdatePageRequest) (*Page, error) {
	existing, err := s.pages.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	updated := clonePage(existing)
	errs := validation.Errors{}
	if req.Title != nil {
		updated.Title = strings.TrimSpace(*req.Title)
	}
	if req.Slug != nil {
		if normalized := normalizeSlug(*req.Slug); normalized != "" {
			updated.Slug = normalized
		} else {
			errs["slug"] = validation.NewError("invalid", "Field slug cannot be empty.")
		}
	}
	if req.Language != nil {
		if language := strings.TrimSpace(*req.Language); language != "" {
			updated.Language = language
		} else {
			errs["language"] = validation.NewError("invalid", "Field language cannot be empty.")
		}
	}
	if req.LayoutJSON != nil {
		layoutText := strings.TrimSpace(string(*req.LayoutJSON))
		if err := validateLayout(layoutText); err != nil {
			errs["layout_json"] = err
		} else {
			updated.LayoutJSON = layoutText
		}
	}
	if req.IsActive != nil {
		updated.IsActive = *req.IsActive
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if updated.Slug != existing.Slug || updated.Language != existing.Language {
		if err := s.ensureAvailable(ctx, updated.Slug, updated.Language, existing.ID); err != nil {
			return nil, err
		}
	}
	updated.UpdatedAt = s.now().UTC()
	return s.pages.Update(ctx, updated)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pages.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.pages.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithContext(ctx).Info("pages.deleted", "page_id", id)
	return nil
}

func (s *service) ensureAvailable(ctx context.Context, slugValue, language string, self uuid.UUID) error {
	existing, err := s.pages.GetBySlug(ctx, slugValue, language)
	if err != nil {
		var notFound *PageNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return ErrPageExists
	}
	return nil
}

// validateLayout checks that text is a single JSON document matching the
// layout schema.
func validateLayout(text string) error {
	doc, err := layout.Decode([]byte(text))
	if err != nil {
		return validation.NewError("invalid_json", "Field layout_json contains invalid JSON.")
	}
	if err := layoutSchema.Validate(doc); err != nil {
		issues := schemavalidation.Issues(err)
		parts := make([]string, 0, len(issues))
		for _, issue := range issues {
			parts = append(parts, strings.TrimSpace(issue.Location+" "+issue.Message))
		}
		return validation.NewError("invalid_layout", "Field layout_json does not match the layout schema: "+strings.Join(parts, "; "))
	}
	return nil
}

func normalizeSlug(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if normalized, err := slug.Normalize(trimmed); err == nil && normalized != "" {
		return normalized
	}
	return trimmed
}
