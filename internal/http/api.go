package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abolfazlirani/asar-backend-app/internal/comments"
	"github.com/abolfazlirani/asar-backend-app/internal/content"
	"github.com/abolfazlirani/asar-backend-app/internal/devices"
	"github.com/abolfazlirani/asar-backend-app/internal/engagement"
	"github.com/abolfazlirani/asar-backend-app/internal/logging"
	"github.com/abolfazlirani/asar-backend-app/internal/pages"
	"github.com/abolfazlirani/asar-backend-app/internal/prices"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

// API serves the public and admin endpoints. Routes whose service is not
// wired answer 503.
type API struct {
	basePath   string
	pages      pages.Service
	content    content.Service
	comments   comments.Service
	engagement engagement.Service
	devices    devices.Service
	prices     prices.Service
	ops        Operations
	logger     interfaces.Logger
}

// Operations runs maintenance commands on behalf of admins.
type Operations interface {
	SyncPrices(ctx context.Context, trigger string) error
	InvalidateCache(ctx context.Context, targets ...string) error
}

type Option func(*API)

func NewAPI(opts ...Option) *API {
	api := &API{
		basePath: "/api/v1",
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the mount point (defaults to "/api/v1").
func WithBasePath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = "/" + strings.Trim(trimmed, "/")
		}
	}
}

func WithPageService(service pages.Service) Option {
	return func(api *API) { api.pages = service }
}

func WithContentService(service content.Service) Option {
	return func(api *API) { api.content = service }
}

func WithCommentService(service comments.Service) Option {
	return func(api *API) { api.comments = service }
}

func WithEngagementService(service engagement.Service) Option {
	return func(api *API) { api.engagement = service }
}

func WithDeviceService(service devices.Service) Option {
	return func(api *API) { api.devices = service }
}

func WithPriceService(service prices.Service) Option {
	return func(api *API) { api.prices = service }
}

func WithOperations(ops Operations) Option {
	return func(api *API) { api.ops = ops }
}

func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) { api.logger = logging.Ensure(logger) }
}

// Mount registers every route on r under the base path.
func (api *API) Mount(r chi.Router) {
	r.Route(api.basePath, func(r chi.Router) {
		r.Use(ActorMiddleware)
		api.RegisterPublicRoutes(r)
		r.Route("/admin", api.RegisterAdminRoutes)
	})
}

// Handler returns a standalone router serving the API, with the JSON 404
// and 405 fallbacks.
func (api *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)
	api.Mount(r)
	return r
}

func (api *API) RegisterPublicRoutes(r chi.Router) {
	r.Get("/pages/{slug}", api.handlePageRender)

	r.Route("/articles", func(r chi.Router) {
		r.Get("/", api.handleArticleList)
		r.Get("/search", api.handleArticleSearch)
		r.Get("/{id}", api.handleArticleGet)
		r.Post("/{id}/share", api.handleArticleShare)
	})

	r.Get("/categories", api.handleCategoryTree)

	r.Route("/comments", func(r chi.Router) {
		r.Get("/article/{articleId}", api.handleCommentsForArticle)
		r.Group(func(r chi.Router) {
			r.Use(RequireUser)
			r.Post("/", api.handleCommentCreate)
			r.Post("/{id}/like", api.handleCommentVote)
			r.Get("/{id}/status", api.handleCommentVoteStatus)
		})
	})

	r.Route("/likes", func(r chi.Router) {
		r.Use(RequireUser)
		r.Get("/", api.handleReactionArticles(engagement.KindLike))
		r.Post("/{id}", api.handleReactionToggle(engagement.KindLike))
		r.Get("/{id}/status", api.handleReactionStatus(engagement.KindLike))
	})

	r.Route("/bookmarks", func(r chi.Router) {
		r.Use(RequireUser)
		r.Get("/", api.handleReactionArticles(engagement.KindBookmark))
		r.Post("/{id}", api.handleReactionToggle(engagement.KindBookmark))
		r.Get("/{id}/status", api.handleReactionStatus(engagement.KindBookmark))
	})

	r.With(RequireUser).Post("/remote_config/splash", api.handleSplash)

	r.Get("/prices", api.handlePriceList)
}

func (api *API) RegisterAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(RequireRole(RoleAdmin, RoleEditor))
		r.Get("/categories", api.handleCategoryTree)
		r.Get("/categories/all", api.handleCategoryListAdmin)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireRole(RoleAdmin))

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", api.handlePageList)
			r.Post("/", api.handlePageCreate)
			r.Get("/{id}", api.handlePageGet)
			r.Put("/{id}", api.handlePageUpdate)
			r.Delete("/{id}", api.handlePageDelete)
		})

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", api.handleArticleSearch)
			r.Post("/", api.handleArticleCreate)
			r.Get("/{id}", api.handleArticleGetAdmin)
			r.Put("/{id}", api.handleArticleUpdate)
			r.Delete("/{id}", api.handleArticleDelete)
		})

		r.Post("/categories", api.handleCategoryCreate)
		r.Put("/categories/{id}", api.handleCategoryUpdate)
		r.Delete("/categories/{id}", api.handleCategoryDelete)

		r.Route("/comments", func(r chi.Router) {
			r.Get("/", api.handleCommentListAdmin)
			r.Put("/{id}", api.handleCommentUpdate)
			r.Delete("/{id}", api.handleCommentDelete)
		})

		r.Get("/likes/{id}", api.handleReactionsForArticle(engagement.KindLike))
		r.Get("/bookmarks", api.handleReactionListAdmin(engagement.KindBookmark))
		r.Get("/remote_config/logs", api.handleDeviceLogs)
		r.Post("/prices/sync", api.handlePriceSync)
		r.Post("/cache/invalidate", api.handleCacheInvalidate)
	})
}

// NotFound is the JSON fallback for unknown routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}

func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
}

func unavailable(w http.ResponseWriter) {
	writeMessage(w, http.StatusServiceUnavailable, "Service unavailable", nil)
}

// fail logs unexpected errors before rendering them.
func (api *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		api.logger.WithContext(r.Context()).Error("http.request.failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, payload)
}
