package storage_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/abolfazlirani/asar-backend-app/internal/identity"
	"github.com/abolfazlirani/asar-backend-app/internal/layout"
	"github.com/abolfazlirani/asar-backend-app/internal/pages"
	"github.com/abolfazlirani/asar-backend-app/internal/runtimeconfig"
	"github.com/abolfazlirani/asar-backend-app/internal/storage"
)

var dbSeq atomic.Int64

func openMemory(t *testing.T) *bun.DB {
	t.Helper()
	cfg := runtimeconfig.DatabaseConfig{
		Driver:       "sqlite3",
		DSN:          fmt.Sprintf("file:storage_test_%d?mode=memory&cache=shared", dbSeq.Add(1)),
		MaxOpenConns: 1,
	}
	db, err := storage.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), runtimeconfig.DatabaseConfig{Driver: "oracle", DSN: "x"})
	if !errors.Is(err, storage.ErrDriverUnsupported) {
		t.Fatalf("expected ErrDriverUnsupported, got %v", err)
	}
}

func TestCreateSchemaIsIdempotent(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := storage.CreateSchema(ctx, db); err != nil {
			t.Fatalf("create schema (run %d): %v", i+1, err)
		}
	}

	var count int
	err := db.NewSelect().
		TableExpr("sqlite_master").
		ColumnExpr("COUNT(*)").
		Where("type = 'table'").
		Where("name IN (?)", bun.In([]string{
			"articles", "post_categories", "pages", "article_likes", "article_bookmarks",
			"comments", "comment_likes", "user_device_logs", "price_items",
		})).
		Scan(ctx, &count)
	if err != nil {
		t.Fatalf("count tables: %v", err)
	}
	if count != len(storage.Models()) {
		t.Fatalf("expected %d tables, got %d", len(storage.Models()), count)
	}
}

func TestSeedDefaultsInsertsValidHomePageOnce(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	if err := storage.CreateSchema(ctx, db); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	inserted, err := storage.SeedDefaults(ctx, db, now, "fa", "en")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("expected 2 pages seeded, got %d", inserted)
	}
	again, err := storage.SeedDefaults(ctx, db, now, "fa", "en")
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected reseed to insert nothing, got %d", again)
	}

	page := new(pages.Page)
	if err := db.NewSelect().Model(page).Where("?TableAlias.id = ?", identity.PageUUID("home", "fa")).Scan(ctx); err != nil {
		t.Fatalf("load seeded page: %v", err)
	}
	if _, err := layout.Decode([]byte(page.LayoutJSON)); err != nil {
		t.Fatalf("seeded layout does not decode: %v", err)
	}
}

func TestDescribeHidesPassword(t *testing.T) {
	got := storage.Describe(runtimeconfig.DatabaseConfig{Driver: "postgres", DSN: "postgres://asar:secret@db:5432/asar"})
	if got != "postgres postgres://asar:***@db:5432/asar" {
		t.Fatalf("unexpected description %q", got)
	}
}
