package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/abolfazlirani/asar-backend-app/internal/commands"
	cachecmd "github.com/abolfazlirani/asar-backend-app/internal/commands/cache"
	pricescmd "github.com/abolfazlirani/asar-backend-app/internal/commands/prices"
	"github.com/abolfazlirani/asar-backend-app/internal/comments"
	"github.com/abolfazlirani/asar-backend-app/internal/content"
	"github.com/abolfazlirani/asar-backend-app/internal/deeplink"
	"github.com/abolfazlirani/asar-backend-app/internal/devices"
	"github.com/abolfazlirani/asar-backend-app/internal/engagement"
	asarhttp "github.com/abolfazlirani/asar-backend-app/internal/http"
	"github.com/abolfazlirani/asar-backend-app/internal/layout"
	"github.com/abolfazlirani/asar-backend-app/internal/logging"
	"github.com/abolfazlirani/asar-backend-app/internal/metrics"
	"github.com/abolfazlirani/asar-backend-app/internal/pages"
	"github.com/abolfazlirani/asar-backend-app/internal/prices"
	"github.com/abolfazlirani/asar-backend-app/internal/runtimeconfig"
	"github.com/abolfazlirani/asar-backend-app/internal/scheduler"
	"github.com/abolfazlirani/asar-backend-app/internal/storage"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

// Container wires repositories, services, commands and transports from a
// runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	priceSource   prices.Source
	now           func() time.Time

	metrics *metrics.Metrics

	articleRepo  content.ArticleRepository
	categoryRepo *content.BunCategoryRepository
	pageRepo     *pages.BunPageRepository

	contentSvc    content.Service
	pageSvc       pages.Service
	commentSvc    comments.Service
	engagementSvc engagement.Service
	deviceSvc     devices.Service
	priceSvc      prices.Service

	resolver *layout.Resolver

	syncPrices      *pricescmd.SyncPricesHandler
	invalidateCache *cachecmd.InvalidateCacheHandler
	scheduler       *scheduler.Scheduler

	api *asarhttp.API
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB uses db instead of opening the configured database. The caller
// keeps ownership of db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithLoggerProvider overrides the provider selected by the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithCache overrides the default go-repository-cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithPriceSource replaces the HTTP feed built from Prices.UpdateURL.
func WithPriceSource(source prices.Source) Option {
	return func(c *Container) {
		c.priceSource = source
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Container) {
		c.metrics = m
	}
}

// WithClock overrides the clock handed to services and the scheduler.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.now = now
		}
	}
}

// NewContainer validates cfg, opens storage and builds every service.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.loggerProvider == nil {
		provider, err := NewLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		c.loggerProvider = provider
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "asar.di")

	if c.metrics == nil && cfg.Features.Metrics {
		c.metrics = metrics.New(true)
	}

	if err := c.configureStorage(ctx); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureServices()
	c.configureCommands()
	if err := c.configureScheduler(); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.api = asarhttp.NewAPI(
		asarhttp.WithPageService(c.pageSvc),
		asarhttp.WithContentService(c.contentSvc),
		asarhttp.WithCommentService(c.commentSvc),
		asarhttp.WithEngagementService(c.engagementSvc),
		asarhttp.WithDeviceService(c.deviceSvc),
		asarhttp.WithPriceService(c.priceSvc),
		asarhttp.WithOperations(c),
		asarhttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	)

	c.logger.Info("di.container.ready",
		"database", storage.Describe(cfg.Database),
		"cache", c.cacheService != nil,
		"metrics", c.metrics != nil,
		"price_sync", cfg.Features.PriceSync,
	)
	return c, nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.bunDB == nil {
		db, err := storage.Open(ctx, c.Config.Database)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if !c.Config.Database.CreateSchema {
		return nil
	}
	if err := storage.CreateSchema(ctx, c.bunDB); err != nil {
		_ = c.Close()
		return fmt.Errorf("di: create schema: %w", err)
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			c.logger.Warn("di.cache.disabled", "error", err)
			return
		}
		c.cacheService = service
	}

	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	c.articleRepo = content.NewBunArticleRepository(c.bunDB)
	c.categoryRepo = content.NewBunCategoryRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.pageRepo = pages.NewBunPageRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
}

func (c *Container) configureServices() {
	hooks := &articleEngagement{container: c}

	c.contentSvc = content.NewService(c.articleRepo, c.categoryRepo,
		content.WithClock(c.now),
		content.WithLogger(logging.ContentLogger(c.loggerProvider)),
		content.WithArticleStats(hooks),
		content.WithArticleCascade(hooks),
	)

	c.commentSvc = comments.NewService(comments.NewBunRepository(c.bunDB), c.contentSvc,
		comments.WithClock(c.now),
		comments.WithLogger(logging.CommentsLogger(c.loggerProvider)),
	)
	c.engagementSvc = engagement.NewService(engagement.NewBunRepository(c.bunDB), c.contentSvc,
		engagement.WithClock(c.now),
		engagement.WithLogger(logging.EngagementLogger(c.loggerProvider)),
	)

	resolverOpts := []layout.ResolverOption{
		layout.WithLogger(logging.LayoutLogger(c.loggerProvider)),
	}
	if c.metrics != nil {
		resolverOpts = append(resolverOpts, layout.WithObserver(c.metrics))
	}
	dispatcher := layout.NewDispatcher(content.NewStore(c.articleRepo, c.categoryRepo), deeplink.New(c.Config.DeepLink.Base))
	c.resolver = layout.NewResolver(dispatcher, resolverOpts...)

	c.pageSvc = pages.NewService(c.pageRepo, c.resolver,
		pages.WithClock(c.now),
		pages.WithLogger(logging.PagesLogger(c.loggerProvider)),
	)

	c.deviceSvc = devices.NewService(devices.NewBunRepository(c.bunDB),
		devices.WithMinSupportedVersion(c.Config.Devices.MinSupportedVersion),
		devices.WithClock(c.now),
		devices.WithLogger(logging.DevicesLogger(c.loggerProvider)),
	)

	priceOpts := []prices.ServiceOption{
		prices.WithClock(c.now),
		prices.WithLogger(logging.PricesLogger(c.loggerProvider)),
	}
	if c.metrics != nil {
		priceOpts = append(priceOpts, prices.WithSyncObserver(c.metrics))
	}
	c.priceSvc = prices.NewService(prices.NewBunRepository(c.bunDB), c.resolvePriceSource(), priceOpts...)
}

// resolvePriceSource returns nil when no feed is configured; Sync then
// reports prices.ErrSourceRequired.
func (c *Container) resolvePriceSource() prices.Source {
	if c.priceSource != nil {
		return c.priceSource
	}
	if c.Config.Prices.UpdateURL == "" {
		return nil
	}
	sourceOpts := []prices.HTTPSourceOption{}
	if c.Config.Prices.Timeout > 0 {
		sourceOpts = append(sourceOpts, prices.WithHTTPClient(&http.Client{Timeout: c.Config.Prices.Timeout}))
	}
	source, err := prices.NewHTTPSource(c.Config.Prices.UpdateURL, sourceOpts...)
	if err != nil {
		c.logger.Warn("di.prices.source_invalid", "error", err)
		return nil
	}
	return source
}

func (c *Container) configureCommands() {
	pricesLogger := commands.CommandLogger(c.loggerProvider, "prices")
	c.syncPrices = pricescmd.NewSyncPricesHandler(c.priceSvc, pricesLogger,
		commands.WithTelemetry(recordTelemetry[pricescmd.SyncPricesCommand](pricesLogger, c.metrics)),
	)

	targets := map[string]cachecmd.Invalidator{
		cachecmd.TargetCategories: c.categoryRepo,
		cachecmd.TargetPages:      c.pageRepo,
	}
	cacheLogger := commands.CommandLogger(c.loggerProvider, "cache")
	c.invalidateCache = cachecmd.NewInvalidateCacheHandler(targets, cacheLogger,
		commands.WithTelemetry(recordTelemetry[cachecmd.InvalidateCacheCommand](cacheLogger, c.metrics)),
	)
}

func (c *Container) configureScheduler() error {
	c.scheduler = scheduler.New(
		scheduler.WithLogger(logging.SchedulerLogger(c.loggerProvider)),
		scheduler.WithClock(c.now),
	)
	if !c.Config.Features.PriceSync {
		return nil
	}
	return c.scheduler.Register(scheduler.JobPriceSync, c.Config.PriceSchedule(), func(ctx context.Context) error {
		return c.syncPrices.Execute(ctx, pricescmd.SyncPricesCommand{Trigger: "cron"})
	})
}

// Start starts the scheduler and, when configured, runs one price sync
// before returning. A failed startup sync is logged, not returned.
func (c *Container) Start(ctx context.Context) {
	if c.Config.Features.PriceSync && c.Config.Prices.SyncOnStartup {
		if err := c.syncPrices.Execute(ctx, pricescmd.SyncPricesCommand{Trigger: "startup"}); err != nil {
			c.logger.Warn("di.prices.startup_sync_failed", "error", err)
		}
	}
	c.scheduler.Start()
}

// Close stops the scheduler and closes the database when the container
// opened it.
func (c *Container) Close() error {
	var errs []error
	if c.scheduler != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.shutdownTimeout())
		errs = append(errs, c.scheduler.Stop(ctx))
		cancel()
	}
	if c.ownsDB && c.bunDB != nil {
		errs = append(errs, c.bunDB.Close())
		c.bunDB = nil
	}
	return errors.Join(errs...)
}

func (c *Container) shutdownTimeout() time.Duration {
	if c.Config.Server.ShutdownTimeout > 0 {
		return c.Config.Server.ShutdownTimeout
	}
	return 10 * time.Second
}

// Handler is the full HTTP surface: middleware, health, metrics and the API.
func (c *Container) Handler() http.Handler {
	opts := []asarhttp.RouterOption{
		asarhttp.WithCORSOrigins(c.Config.Server.CORSOrigins),
		asarhttp.WithRequestLogger(logging.HTTPLogger(c.loggerProvider)),
	}
	if c.metrics != nil {
		opts = append(opts, asarhttp.WithMetrics(c.metrics))
	}
	return asarhttp.NewRouter(c.api, opts...)
}

// SyncPrices runs the price sync command outside the scheduler.
func (c *Container) SyncPrices(ctx context.Context, trigger string) error {
	return c.syncPrices.Execute(ctx, pricescmd.SyncPricesCommand{Trigger: trigger})
}

// InvalidateCache clears the named repository caches, or all of them.
func (c *Container) InvalidateCache(ctx context.Context, targets ...string) error {
	return c.invalidateCache.Execute(ctx, cachecmd.InvalidateCacheCommand{Targets: targets})
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) DB() *bun.DB { return c.bunDB }

func (c *Container) Metrics() *metrics.Metrics { return c.metrics }

func (c *Container) Resolver() *layout.Resolver { return c.resolver }

func (c *Container) Scheduler() *scheduler.Scheduler { return c.scheduler }

func (c *Container) API() *asarhttp.API { return c.api }

func (c *Container) ContentService() content.Service { return c.contentSvc }

func (c *Container) PageService() pages.Service { return c.pageSvc }

func (c *Container) CommentService() comments.Service { return c.commentSvc }

func (c *Container) EngagementService() engagement.Service { return c.engagementSvc }

func (c *Container) DeviceService() devices.Service { return c.deviceSvc }

func (c *Container) PriceService() prices.Service { return c.priceSvc }
