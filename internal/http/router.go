package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abolfazlirani/asar-backend-app/internal/logging"
	"github.com/abolfazlirani/asar-backend-app/internal/metrics"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

type routerConfig struct {
	corsOrigins []string
	metrics     *metrics.Metrics
	logger      interfaces.Logger
}

type RouterOption func(*routerConfig)

// WithCORSOrigins sets the allowed origins. Empty allows every origin.
func WithCORSOrigins(origins []string) RouterOption {
	return func(cfg *routerConfig) {
		cfg.corsOrigins = origins
	}
}

// WithMetrics instruments every request and serves /metrics.
func WithMetrics(m *metrics.Metrics) RouterOption {
	return func(cfg *routerConfig) {
		cfg.metrics = m
	}
}

// WithRequestLogger logs one line per request.
func WithRequestLogger(logger interfaces.Logger) RouterOption {
	return func(cfg *routerConfig) {
		cfg.logger = logger
	}
}

// NewRouter mounts api behind the server middleware stack along with
// /healthz and, when metrics are configured, /metrics.
func NewRouter(api *API, opts ...RouterOption) http.Handler {
	cfg := routerConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	origins := cfg.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.logger != nil {
		r.Use(RequestLogger(cfg.logger))
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", HeaderUserID, HeaderUserRole},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if cfg.metrics != nil {
		r.Use(cfg.metrics.InstrumentHandler)
		r.Method(http.MethodGet, "/metrics", cfg.metrics.Handler())
	}

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusOK, "ok", nil)
	})

	if api != nil {
		api.Mount(r)
	}
	return r
}

// RequestLogger logs method, route, status and duration of each request.
func RequestLogger(logger interfaces.Logger) func(http.Handler) http.Handler {
	logger = logging.Ensure(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := logger.WithContext(r.Context())
			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			}
			if status >= http.StatusInternalServerError {
				entry.Warn("http.request", args...)
				return
			}
			entry.Debug("http.request", args...)
		})
	}
}
