package layout_test

import (
	"context"
	"testing"

	"github.com/abolfazlirani/asar-backend-app/internal/deeplink"
	"github.com/abolfazlirani/asar-backend-app/internal/layout"
)

func TestDispatcherUnknownKindReturnsEmptyWithoutQuery(t *testing.T) {
	store := &stubStore{}
	d := layout.NewDispatcher(store, deeplink.New(""))

	ds, err := layout.ParseDataSource(map[string]any{"type": "widgets"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	items, err := d.Fetch(context.Background(), ds)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty list, got %#v", items)
	}
	if len(store.calls) != 0 {
		t.Fatalf("expected no store query, got %d", len(store.calls))
	}
}

func TestDispatcherLimitDefaultAndOverride(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]any
		want int
	}{
		{"default", map[string]any{"type": "posts"}, 5},
		{"explicit", map[string]any{"type": "posts", "limit": 2}, 2},
		{"float", map[string]any{"type": "posts", "limit": 3.0}, 3},
		{"zero", map[string]any{"type": "posts", "limit": 0}, 5},
		{"negative", map[string]any{"type": "posts", "limit": -4}, 5},
		{"garbage", map[string]any{"type": "posts", "limit": "many"}, 5},
		{"numeric string", map[string]any{"type": "categories", "limit": "7"}, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubStore{}
			d := layout.NewDispatcher(store, deeplink.New(""))
			ds, err := layout.ParseDataSource(tc.raw)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if _, err := d.Fetch(context.Background(), ds); err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if got := store.calls[0].query.Limit; got != tc.want {
				t.Fatalf("expected limit %d, got %d", tc.want, got)
			}
		})
	}
}

func TestDispatcherSortSwitch(t *testing.T) {
	cases := map[string]layout.Sort{
		"popular": layout.SortPopular,
		"recent":  layout.SortRecent,
		"newest":  layout.SortRecent,
		"":        layout.SortRecent,
	}
	for sort, want := range cases {
		store := &stubStore{}
		d := layout.NewDispatcher(store, deeplink.New(""))
		raw := map[string]any{"type": "posts"}
		if sort != "" {
			raw["sort"] = sort
		}
		ds, _ := layout.ParseDataSource(raw)
		if _, err := d.Fetch(context.Background(), ds); err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if got := store.calls[0].query.Sort; got != want {
			t.Fatalf("sort %q: expected %s, got %s", sort, want, got)
		}
	}
}

func TestParseDataSourceIDsAndFilters(t *testing.T) {
	doc := decode(t, `{"type":"posts","postIds":[3,"a", 4.5],"categoryIds":"nope","filters":{"lang":" en "}}`)
	ds, err := layout.ParseDataSource(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ds.Type != layout.KindPosts || ds.RawType != "posts" {
		t.Fatalf("unexpected kind %v", ds.Type)
	}
	want := []string{"3", "a", "4.5"}
	if len(ds.PostIDs) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, ds.PostIDs)
	}
	for i := range want {
		if ds.PostIDs[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, ds.PostIDs)
		}
	}
	if ds.CategoryIDs != nil {
		t.Fatalf("expected non-array categoryIds to be ignored, got %v", ds.CategoryIDs)
	}
	if ds.Filters.Lang != "en" {
		t.Fatalf("expected lang en, got %q", ds.Filters.Lang)
	}

	if !ds.RestrictPostIDs || ds.RestrictCategoryIDs {
		t.Fatalf("expected only posts to be restricted, got %+v", ds)
	}

	empty, _ := layout.ParseDataSource(map[string]any{"type": "posts", "postIds": []any{}})
	if empty.PostIDs != nil || empty.RestrictPostIDs {
		t.Fatalf("expected empty id list to mean no restriction, got %+v", empty)
	}

	unusable, _ := layout.ParseDataSource(map[string]any{"type": "posts", "postIds": []any{nil, true}})
	if len(unusable.PostIDs) != 0 || !unusable.RestrictPostIDs {
		t.Fatalf("expected unusable ids to keep the restriction, got %+v", unusable)
	}

	if _, err := layout.ParseDataSource([]any{"posts"}); err == nil {
		t.Fatal("expected error for non-object data source")
	}
}
