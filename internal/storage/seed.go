package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/abolfazlirani/asar-backend-app/internal/identity"
	"github.com/abolfazlirani/asar-backend-app/internal/pages"
)

// HomeLayout is the layout seeded for an empty install: a banner, the most
// shared posts and the latest posts.
const HomeLayout = `{"rows":[` +
	`{"type":"banner","title":"آسار"},` +
	`{"type":"carousel","title":"محبوب‌ترین‌ها","dataSource":{"type":"posts","sort":"popular","limit":5}},` +
	`{"type":"list","title":"تازه‌ها","dataSource":{"type":"posts","limit":10}}` +
	`]}`

// SeedDefaults inserts the default home page for each language unless a
// page with the same slug and language already exists. Page ids are derived
// from slug and language so repeated runs stay idempotent.
func SeedDefaults(ctx context.Context, db bun.IDB, now time.Time, languages ...string) (int, error) {
	if len(languages) == 0 {
		languages = []string{pages.DefaultLanguage}
	}
	inserted := 0
	for _, lang := range languages {
		page := &pages.Page{
			ID:         identity.PageUUID("home", lang),
			Title:      "Home",
			Slug:       "home",
			Language:   lang,
			LayoutJSON: HomeLayout,
			IsActive:   true,
			CreatedAt:  now.UTC(),
			UpdatedAt:  now.UTC(),
		}
		res, err := db.NewInsert().Model(page).On("CONFLICT DO NOTHING").Exec(ctx)
		if err != nil {
			return inserted, fmt.Errorf("storage: seed home page %s: %w", lang, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}
	return inserted, nil
}
