package content

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/abolfazlirani/asar-backend-app/internal/layout"
)

// Store exposes active articles and categories to the layout resolver.
type Store struct {
	articles   ArticleRepository
	categories CategoryRepository
}

var _ layout.ContentStore = (*Store)(nil)

func NewStore(articles ArticleRepository, categories CategoryRepository) *Store {
	if articles == nil {
		panic(ErrArticleRepositoryRequired)
	}
	if categories == nil {
		panic(ErrCategoryRepositoryRequired)
	}
	return &Store{articles: articles, categories: categories}
}

// FindActive lists active rows of kind. Ids that are not valid UUIDs can
// never match, so a query naming only such ids returns nothing.
func (s *Store) FindActive(ctx context.Context, kind layout.StoreKind, query layout.Query) ([]layout.Item, error) {
	ids, restrict := parseIDs(query.IDs, query.RestrictIDs)
	switch kind {
	case layout.StorePosts:
		order := OrderRecent
		if query.Sort == layout.SortPopular {
			order = OrderPopular
		}
		records, _, err := s.articles.List(ctx, ArticleFilter{
			IDs:         ids,
			RestrictIDs: restrict,
			Lang:        query.Lang,
			ActiveOnly:  true,
			Order:       order,
			Limit:       query.Limit,
		})
		if err != nil {
			return nil, err
		}
		items := make([]layout.Item, 0, len(records))
		for _, rec := range records {
			items = append(items, layout.Item{ID: rec.ID.String(), Title: rec.Title, Image: rec.Image})
		}
		return items, nil
	case layout.StoreCategories:
		records, err := s.categories.List(ctx, CategoryFilter{
			IDs:         ids,
			RestrictIDs: restrict,
			Lang:        query.Lang,
			ActiveOnly:  true,
			Limit:       query.Limit,
		})
		if err != nil {
			return nil, err
		}
		items := make([]layout.Item, 0, len(records))
		for _, rec := range records {
			items = append(items, layout.Item{ID: rec.ID.String(), Title: rec.Name, Image: rec.Image})
		}
		return items, nil
	default:
		return nil, fmt.Errorf("content: unsupported store kind %q", kind)
	}
}

func parseIDs(raw []string, restrict bool) ([]uuid.UUID, bool) {
	if len(raw) == 0 {
		return nil, restrict
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, true
}
