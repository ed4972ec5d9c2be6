package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/abolfazlirani/asar-backend-app/internal/comments"
	"github.com/abolfazlirani/asar-backend-app/internal/content"
	"github.com/abolfazlirani/asar-backend-app/internal/devices"
	"github.com/abolfazlirani/asar-backend-app/internal/engagement"
	"github.com/abolfazlirani/asar-backend-app/internal/pages"
	"github.com/abolfazlirani/asar-backend-app/internal/prices"
	"github.com/abolfazlirani/asar-backend-app/internal/runtimeconfig"
)

var ErrDriverUnsupported = errors.New("storage: unsupported database driver")

// Open connects to the configured database and pings it.
func Open(ctx context.Context, cfg runtimeconfig.DatabaseConfig) (*bun.DB, error) {
	var (
		sqlDB *sql.DB
		db    *bun.DB
		err   error
	)
	switch cfg.NormalizedDriver() {
	case runtimeconfig.DriverSQLite:
		sqlDB, err = sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	case runtimeconfig.DriverPostgres:
		sqlDB, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	default:
		return nil, fmt.Errorf("%w: %s", ErrDriverUnsupported, cfg.Driver)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", cfg.NormalizedDriver(), err)
	}
	return db, nil
}

// Models lists every table the service owns, parents first.
func Models() []any {
	return []any{
		(*content.Category)(nil),
		(*content.Article)(nil),
		(*pages.Page)(nil),
		(*engagement.ArticleLike)(nil),
		(*engagement.ArticleBookmark)(nil),
		(*comments.Comment)(nil),
		(*comments.CommentVote)(nil),
		(*devices.DeviceLog)(nil),
		(*prices.PriceItem)(nil),
	}
}

type index struct {
	name    string
	model   any
	columns []string
}

var indexes = []index{
	{"articles_lang_active_created", (*content.Article)(nil), []string{"lang", "is_active", "created_at"}},
	{"articles_category", (*content.Article)(nil), []string{"category_id"}},
	{"post_categories_parent", (*content.Category)(nil), []string{"parent_id"}},
	{"comments_article", (*comments.Comment)(nil), []string{"article_id", "is_active"}},
	{"comments_parent", (*comments.Comment)(nil), []string{"parent_id"}},
	{"article_likes_article", (*engagement.ArticleLike)(nil), []string{"article_id"}},
	{"article_bookmarks_article", (*engagement.ArticleBookmark)(nil), []string{"article_id"}},
	{"user_device_logs_user", (*devices.DeviceLog)(nil), []string{"user_id", "created_at"}},
}

// CreateSchema creates missing tables and indexes. Existing tables are left
// as they are; there is no migration engine.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table for %T: %w", model, err)
		}
	}
	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("storage: create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// Describe renders a DSN without its password, for logs.
func Describe(cfg runtimeconfig.DatabaseConfig) string {
	dsn := cfg.DSN
	if at := strings.LastIndex(dsn, "@"); at > 0 {
		if scheme := strings.Index(dsn, "://"); scheme >= 0 && scheme < at {
			userinfo := dsn[scheme+3 : at]
			if colon := strings.Index(userinfo, ":"); colon >= 0 {
				dsn = dsn[:scheme+3] + userinfo[:colon] + ":***" + dsn[at:]
			}
		}
	}
	return cfg.NormalizedDriver() + " " + dsn
}
