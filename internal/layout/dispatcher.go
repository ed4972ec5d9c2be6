package layout

import (
	"context"

	"github.com/abolfazlirani/asar-backend-app/internal/deeplink"
)

// Dispatcher runs one data source against the content store and projects
// the results to ResolvedItem.
type Dispatcher struct {
	store ContentStore
	links deeplink.Builder
}

// NewDispatcher panics when store is nil.
func NewDispatcher(store ContentStore, links deeplink.Builder) *Dispatcher {
	if store == nil {
		panic(ErrContentStoreRequired)
	}
	return &Dispatcher{store: store, links: links}
}

// Fetch issues at most one store query. Unknown kinds return an empty list
// and no error.
func (d *Dispatcher) Fetch(ctx context.Context, ds DataSource) ([]ResolvedItem, error) {
	switch ds.Type {
	case KindPosts:
		return d.fetch(ctx, StorePosts, deeplink.SourcePost, Query{
			IDs:         ds.PostIDs,
			RestrictIDs: ds.RestrictPostIDs,
			Lang:        ds.Filters.Lang,
			Sort:        ds.Sort,
			Limit:       ds.EffectiveLimit(),
		})
	case KindCategories:
		return d.fetch(ctx, StoreCategories, deeplink.SourceCategory, Query{
			IDs:         ds.CategoryIDs,
			RestrictIDs: ds.RestrictCategoryIDs,
			Lang:        ds.Filters.Lang,
			Limit:       ds.EffectiveLimit(),
		})
	case KindUnknown:
		return []ResolvedItem{}, nil
	}
	return []ResolvedItem{}, nil
}

func (d *Dispatcher) fetch(ctx context.Context, kind StoreKind, source string, query Query) ([]ResolvedItem, error) {
	records, err := d.store.FindActive(ctx, kind, query)
	if err != nil {
		return nil, err
	}
	items := make([]ResolvedItem, 0, len(records))
	for _, record := range records {
		items = append(items, ResolvedItem{
			ID:       record.ID,
			Title:    record.Title,
			ImageURL: record.Image,
			Link:     d.links.Build(source, record.ID),
		})
	}
	return items, nil
}
