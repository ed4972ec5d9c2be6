package pages_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/abolfazlirani/asar-backend-app/internal/deeplink"
	"github.com/abolfazlirani/asar-backend-app/internal/layout"
	"github.com/abolfazlirani/asar-backend-app/internal/pages"
)

type fixedStore struct {
	items []layout.Item
}

func (s fixedStore) FindActive(_ context.Context, _ layout.StoreKind, query layout.Query) ([]layout.Item, error) {
	if len(s.items) > query.Limit {
		return s.items[:query.Limit], nil
	}
	return s.items, nil
}

const homeLayout = `{"rows":[{"type":"banner","title":"hi"},{"type":"carousel","dataSource":{"type":"posts","limit":1}}]}`

func newService(t *testing.T) (pages.Service, *pages.MemoryPageRepository) {
	t.Helper()
	repo := pages.NewMemoryPageRepository()
	store := fixedStore{items: []layout.Item{{ID: "p-1", Title: "first"}, {ID: "p-2", Title: "second"}}}
	resolver := layout.NewResolver(layout.NewDispatcher(store, deeplink.New("")))
	clock := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	svc := pages.NewService(repo, resolver, pages.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	return svc, repo
}

func TestRenderResolvesBoundRows(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, pages.CreatePageRequest{Title: "Home", Slug: "home", Language: "fa", LayoutJSON: homeLayout}); err != nil {
		t.Fatalf("create: %v", err)
	}

	rendered, err := svc.Render(ctx, "home", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if rendered.Slug != "home" || rendered.Language != "fa" || rendered.Title != "Home" {
		t.Fatalf("unexpected header %+v", rendered)
	}
	if len(rendered.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rendered.Rows))
	}
	carousel := rendered.Rows[1].(map[string]any)
	items := carousel["items"].([]layout.ResolvedItem)
	if len(items) != 1 || items[0].ID != "p-1" {
		t.Fatalf("unexpected items %+v", items)
	}
	if items[0].Link != "asar://matna.app?id=p-1&source=post" {
		t.Fatalf("unexpected link %q", items[0].Link)
	}

	var notFound *pages.PageNotFoundError
	if _, err := svc.Render(ctx, "home", "en"); !errors.As(err, &notFound) {
		t.Fatalf("expected not found for another language, got %v", err)
	}
}

func TestRenderHidesInactivePages(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	inactive := false
	if _, err := svc.Create(ctx, pages.CreatePageRequest{Slug: "draft", Language: "fa", LayoutJSON: homeLayout, IsActive: &inactive}); err != nil {
		t.Fatalf("create: %v", err)
	}
	var notFound *pages.PageNotFoundError
	if _, err := svc.Render(ctx, "draft", "fa"); !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRenderReportsCorruptLayout(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	page, err := svc.Create(ctx, pages.CreatePageRequest{Slug: "broken", Language: "fa", LayoutJSON: homeLayout})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	page.LayoutJSON = `{"rows": [`
	if _, err := repo.Update(ctx, page); err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	if _, err := svc.Render(ctx, "broken", "fa"); !errors.Is(err, pages.ErrInvalidLayout) {
		t.Fatalf("expected ErrInvalidLayout, got %v", err)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		req   pages.CreatePageRequest
		field string
	}{
		{"missing slug", pages.CreatePageRequest{Language: "fa", LayoutJSON: homeLayout}, "slug"},
		{"missing language", pages.CreatePageRequest{Slug: "home", LayoutJSON: homeLayout}, "language"},
		{"missing layout", pages.CreatePageRequest{Slug: "home", Language: "fa"}, "layout_json"},
		{"invalid json", pages.CreatePageRequest{Slug: "home", Language: "fa", LayoutJSON: `{"rows":`}, "layout_json"},
		{"rows not an array", pages.CreatePageRequest{Slug: "home", Language: "fa", LayoutJSON: `{"rows":{}}`}, "layout_json"},
		{"no rows", pages.CreatePageRequest{Slug: "home", Language: "fa", LayoutJSON: `{}`}, "layout_json"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected validation errors, got %v", err)
			}
			if _, ok := verrs[tc.field]; !ok {
				t.Fatalf("expected %s error, got %v", tc.field, verrs)
			}
		})
	}
}

func TestCreateAndUpdateDetectConflicts(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	home, err := svc.Create(ctx, pages.CreatePageRequest{Slug: "home", Language: "fa", LayoutJSON: homeLayout})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, pages.CreatePageRequest{Slug: "home", Language: "fa", LayoutJSON: homeLayout}); !errors.Is(err, pages.ErrPageExists) {
		t.Fatalf("expected conflict, got %v", err)
	}
	other, err := svc.Create(ctx, pages.CreatePageRequest{Slug: "home", Language: "en", LayoutJSON: homeLayout})
	if err != nil {
		t.Fatalf("same slug in another language is allowed: %v", err)
	}

	fa := "fa"
	if _, err := svc.Update(ctx, pages.UpdatePageRequest{ID: other.ID, Language: &fa}); !errors.Is(err, pages.ErrPageExists) {
		t.Fatalf("expected conflict on update, got %v", err)
	}

	title := "Home page"
	updated, err := svc.Update(ctx, pages.UpdatePageRequest{ID: home.ID, Title: &title, Language: &fa})
	if err != nil {
		t.Fatalf("update keeping its own key: %v", err)
	}
	if updated.Title != title || updated.LayoutJSON != homeLayout {
		t.Fatalf("unexpected update result %+v", updated)
	}

	broken := pages.LayoutText(`nope`)
	if _, err := svc.Update(ctx, pages.UpdatePageRequest{ID: home.ID, LayoutJSON: &broken}); err == nil {
		t.Fatalf("expected invalid layout error")
	}
}

func TestListAndDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	var last *pages.Page
	for _, slugValue := range []string{"a", "b", "c"} {
		page, err := svc.Create(ctx, pages.CreatePageRequest{Slug: slugValue, Language: "fa", LayoutJSON: homeLayout})
		if err != nil {
			t.Fatalf("create %s: %v", slugValue, err)
		}
		last = page
	}

	list, err := svc.List(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Pages) != 2 || list.Pages[0].ID != last.ID {
		t.Fatalf("expected newest first, got %+v", list.Pages)
	}
	if list.Metadata.TotalCount != 3 || !list.Metadata.HasNextPage {
		t.Fatalf("unexpected metadata %+v", list.Metadata)
	}

	if err := svc.Delete(ctx, last.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var notFound *pages.PageNotFoundError
	if _, err := svc.Get(ctx, last.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, last.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestLayoutTextAcceptsStringOrDocument(t *testing.T) {
	var req pages.CreatePageRequest
	if err := json.Unmarshal([]byte(`{"layout_json":"{\"rows\":[]}"}`), &req); err != nil {
		t.Fatalf("decode string: %v", err)
	}
	if req.LayoutJSON != `{"rows":[]}` {
		t.Fatalf("unexpected layout %q", req.LayoutJSON)
	}
	if err := json.Unmarshal([]byte(`{"layout_json":{"rows":[]}}`), &req); err != nil {
		t.Fatalf("decode object: %v", err)
	}
	if req.LayoutJSON != `{"rows":[]}` {
		t.Fatalf("unexpected layout %q", req.LayoutJSON)
	}
}
