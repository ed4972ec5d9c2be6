package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by FromEnv.
const (
	EnvKeyEnvironment     = "ASAR_ENV"
	EnvKeyAddr            = "ASAR_ADDR"
	EnvKeyPort            = "PORT"
	EnvKeyCORSOrigins     = "ASAR_CORS_ORIGINS"
	EnvKeyShutdownTimeout = "ASAR_SHUTDOWN_TIMEOUT"
	EnvKeyDBDriver        = "ASAR_DB_DRIVER"
	EnvKeyDBDSN           = "ASAR_DB_DSN"
	EnvKeyDBMaxOpenConns  = "ASAR_DB_MAX_OPEN_CONNS"
	EnvKeyDBCreateSchema  = "ASAR_DB_CREATE_SCHEMA"
	EnvKeyDBDebug         = "ASAR_DB_DEBUG"
	EnvKeyCacheEnabled    = "ASAR_CACHE_ENABLED"
	EnvKeyCacheTTL        = "ASAR_CACHE_TTL"
	EnvKeyLogProvider     = "ASAR_LOG_PROVIDER"
	EnvKeyLogLevel        = "ASAR_LOG_LEVEL"
	EnvKeyLogFormat       = "ASAR_LOG_FORMAT"
	EnvKeyLogFocus        = "ASAR_LOG_FOCUS"
	EnvKeyDeepLinkBase    = "ASAR_DEEPLINK_BASE"
	EnvKeyPricesURL       = "PRICES_UPDATE_URL"
	EnvKeyPricesSchedule  = "ASAR_PRICES_SCHEDULE"
	EnvKeyPricesOnStartup = "ASAR_PRICES_SYNC_ON_STARTUP"
	EnvKeyPricesTimeout   = "ASAR_PRICES_TIMEOUT"
	EnvKeyMinVersion      = "ASAR_MIN_SUPPORTED_VERSION"
	EnvKeyMetrics         = "ASAR_METRICS_ENABLED"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads the given dotenv files into the process environment, without
// overriding variables that are already set, and builds the config from it.
// Missing files are ignored.
func Load(files ...string) (Config, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("asar config: load %s: %w", file, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv overlays environment values on DefaultConfig. Price sync is
// enabled whenever an update url is present.
func FromEnv(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg := DefaultConfig()
	r := reader{lookup: lookup}

	r.str(EnvKeyEnvironment, &cfg.Environment)
	if port, ok := r.get(EnvKeyPort); ok {
		cfg.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	r.str(EnvKeyAddr, &cfg.Server.Addr)
	r.list(EnvKeyCORSOrigins, &cfg.Server.CORSOrigins)
	r.duration(EnvKeyShutdownTimeout, &cfg.Server.ShutdownTimeout)

	r.str(EnvKeyDBDriver, &cfg.Database.Driver)
	r.str(EnvKeyDBDSN, &cfg.Database.DSN)
	r.integer(EnvKeyDBMaxOpenConns, &cfg.Database.MaxOpenConns)
	r.boolean(EnvKeyDBCreateSchema, &cfg.Database.CreateSchema)
	r.boolean(EnvKeyDBDebug, &cfg.Database.Debug)

	r.boolean(EnvKeyCacheEnabled, &cfg.Cache.Enabled)
	r.duration(EnvKeyCacheTTL, &cfg.Cache.DefaultTTL)

	r.str(EnvKeyLogProvider, &cfg.Logging.Provider)
	r.str(EnvKeyLogLevel, &cfg.Logging.Level)
	r.str(EnvKeyLogFormat, &cfg.Logging.Format)
	r.list(EnvKeyLogFocus, &cfg.Logging.Focus)

	r.str(EnvKeyDeepLinkBase, &cfg.DeepLink.Base)

	r.str(EnvKeyPricesURL, &cfg.Prices.UpdateURL)
	r.str(EnvKeyPricesSchedule, &cfg.Prices.Schedule)
	cfg.Prices.SyncOnStartup = !cfg.IsDevelopment()
	r.boolean(EnvKeyPricesOnStartup, &cfg.Prices.SyncOnStartup)
	r.duration(EnvKeyPricesTimeout, &cfg.Prices.Timeout)
	cfg.Features.PriceSync = strings.TrimSpace(cfg.Prices.UpdateURL) != ""

	r.str(EnvKeyMinVersion, &cfg.Devices.MinSupportedVersion)
	r.boolean(EnvKeyMetrics, &cfg.Features.Metrics)

	if r.err != nil {
		return Config{}, r.err
	}
	return cfg, nil
}

// reader keeps the first parse error so FromEnv can read every key before
// reporting.
type reader struct {
	lookup LookupFunc
	err    error
}

func (r *reader) get(key string) (string, bool) {
	value, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func (r *reader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("asar config: %s=%q: %w", key, value, err)
	}
}

func (r *reader) str(key string, dst *string) {
	if value, ok := r.get(key); ok {
		*dst = value
	}
}

func (r *reader) list(key string, dst *[]string) {
	value, ok := r.get(key)
	if !ok {
		return
	}
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*dst = out
}

func (r *reader) boolean(key string, dst *bool) {
	value, ok := r.get(key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		r.fail(key, value, err)
		return
	}
	*dst = parsed
}

func (r *reader) integer(key string, dst *int) {
	value, ok := r.get(key)
	if !ok {
		return
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		r.fail(key, value, err)
		return
	}
	*dst = parsed
}

func (r *reader) duration(key string, dst *time.Duration) {
	value, ok := r.get(key)
	if !ok {
		return
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		r.fail(key, value, err)
		return
	}
	*dst = parsed
}
