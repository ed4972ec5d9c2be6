package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrServerAddrRequired     = errors.New("asar config: server address is required")
	ErrDatabaseDriverUnknown  = errors.New("asar config: database driver is invalid")
	ErrDatabaseDSNRequired    = errors.New("asar config: database dsn is required")
	ErrCacheTTLInvalid        = errors.New("asar config: cache ttl must be positive when cache is enabled")
	ErrDeepLinkBaseInvalid    = errors.New("asar config: deep link base must be a scheme://host url")
	ErrPricesURLRequired      = errors.New("asar config: prices update url is required when price sync is enabled")
	ErrPricesScheduleRequired = errors.New("asar config: prices schedule is required when price sync is enabled")
	ErrLoggingProviderUnknown = errors.New("asar config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("asar config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("asar config: logging format is invalid")
	ErrEnvironmentUnknown     = errors.New("asar config: environment is invalid")
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config aggregates every setting the asar server reads at startup.
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Logging     LoggingConfig
	DeepLink    DeepLinkConfig
	Prices      PricesConfig
	Devices     DevicesConfig
	Features    Features
}

type ServerConfig struct {
	Addr            string
	CORSOrigins     []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	// CreateSchema creates missing tables on serve.
	CreateSchema bool
	Debug        bool
}

type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

type DeepLinkConfig struct {
	Base string
}

type PricesConfig struct {
	UpdateURL     string
	Schedule      string
	SyncOnStartup bool
	Timeout       time.Duration
}

type DevicesConfig struct {
	MinSupportedVersion string
}

// Features toggles optional subsystems.
type Features struct {
	PriceSync bool
	Metrics   bool
}

// IsDevelopment reports whether the server runs in development mode.
func (cfg Config) IsDevelopment() bool {
	return strings.EqualFold(strings.TrimSpace(cfg.Environment), EnvDevelopment)
}

// DefaultConfig returns settings suitable for a local run on sqlite.
func DefaultConfig() Config {
	return Config{
		Environment: EnvDevelopment,
		Server: ServerConfig{
			Addr:            ":3000",
			CORSOrigins:     []string{"*"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       DriverSQLite,
			DSN:          "file:asar?mode=memory&cache=shared",
			MaxOpenConns: 1,
			CreateSchema: true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		DeepLink: DeepLinkConfig{
			Base: "asar://matna.app",
		},
		Prices: PricesConfig{
			Timeout: 30 * time.Second,
		},
		Devices: DevicesConfig{
			MinSupportedVersion: "1.0.0",
		},
		Features: Features{
			Metrics: true,
		},
	}
}

// PriceSchedule returns the configured cron spec, falling back to hourly
// (daily at noon in development).
func (cfg Config) PriceSchedule() string {
	if spec := strings.TrimSpace(cfg.Prices.Schedule); spec != "" {
		return spec
	}
	if cfg.IsDevelopment() {
		return "0 12 * * *"
	}
	return "0 * * * *"
}

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(cfg.Environment)) {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("%w: %s", ErrEnvironmentUnknown, cfg.Environment)
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return ErrServerAddrRequired
	}
	switch normalizeDriver(cfg.Database.Driver) {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: %s", ErrDatabaseDriverUnknown, cfg.Database.Driver)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return ErrDatabaseDSNRequired
	}
	if cfg.Cache.Enabled && cfg.Cache.DefaultTTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if base := strings.TrimSpace(cfg.DeepLink.Base); base != "" && !strings.Contains(base, "://") {
		return fmt.Errorf("%w: %s", ErrDeepLinkBaseInvalid, base)
	}
	if cfg.Features.PriceSync {
		if strings.TrimSpace(cfg.Prices.UpdateURL) == "" {
			return ErrPricesURLRequired
		}
		if strings.TrimSpace(cfg.PriceSchedule()) == "" {
			return ErrPricesScheduleRequired
		}
	}
	provider := normalizeProvider(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// NormalizedDriver returns the database driver in canonical form.
func (cfg DatabaseConfig) NormalizedDriver() string {
	return normalizeDriver(cfg.Driver)
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
