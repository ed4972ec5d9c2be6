package content

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryArticleRepository is an in-memory implementation for scaffolding and tests.
type MemoryArticleRepository struct {
	mu       sync.RWMutex
	articles map[uuid.UUID]*Article
}

// NewMemoryArticleRepository creates an empty in-memory article repository.
func NewMemoryArticleRepository() *MemoryArticleRepository {
	return &MemoryArticleRepository{articles: make(map[uuid.UUID]*Article)}
}

func (m *MemoryArticleRepository) Create(_ context.Context, article *Article) (*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneArticle(article)
	m.articles[copied.ID] = copied
	return cloneArticle(copied), nil
}

func (m *MemoryArticleRepository) Update(_ context.Context, article *Article) (*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.articles[article.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: article.ID.String()}
	}
	copied := cloneArticle(article)
	copied.ShareCount = existing.ShareCount
	copied.CreatedAt = existing.CreatedAt
	m.articles[copied.ID] = copied
	return cloneArticle(copied), nil
}

func (m *MemoryArticleRepository) GetByID(_ context.Context, id uuid.UUID) (*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.articles[id]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: id.String()}
	}
	return cloneArticle(rec), nil
}

// List applies the filter, ordering and paging the same way the bun
// repository does. The total ignores paging.
func (m *MemoryArticleRepository) List(_ context.Context, filter ArticleFilter) ([]*Article, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids map[uuid.UUID]struct{}
	if filter.RestrictIDs {
		ids = make(map[uuid.UUID]struct{}, len(filter.IDs))
		for _, id := range filter.IDs {
			ids[id] = struct{}{}
		}
	}
	term := strings.ToLower(strings.TrimSpace(filter.Search))

	matched := make([]*Article, 0, len(m.articles))
	for _, rec := range m.articles {
		if filter.ActiveOnly && !rec.IsActive {
			continue
		}
		if ids != nil {
			if _, ok := ids[rec.ID]; !ok {
				continue
			}
		}
		if filter.Lang != "" && rec.Lang != filter.Lang {
			continue
		}
		if filter.CategoryID != nil && (rec.CategoryID == nil || *rec.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.PostType != "" && rec.PostType != filter.PostType {
			continue
		}
		if term != "" && !articleMatches(rec, term) {
			continue
		}
		matched = append(matched, rec)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if filter.Order == OrderPopular && a.ShareCount != b.ShareCount {
			return a.ShareCount > b.ShareCount
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	out := make([]*Article, 0, len(matched))
	for _, rec := range matched {
		out = append(out, cloneArticle(rec))
	}
	return out, total, nil
}

func articleMatches(a *Article, term string) bool {
	if strings.Contains(strings.ToLower(a.Title), term) {
		return true
	}
	return a.Content != nil && strings.Contains(strings.ToLower(*a.Content), term)
}

func (m *MemoryArticleRepository) IncrementShare(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.articles[id]
	if !ok {
		return 0, &NotFoundError{Resource: "article", Key: id.String()}
	}
	rec.ShareCount++
	return rec.ShareCount, nil
}

func (m *MemoryArticleRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.articles[id]; !ok {
		return &NotFoundError{Resource: "article", Key: id.String()}
	}
	delete(m.articles, id)
	return nil
}

// MemoryCategoryRepository is an in-memory implementation for scaffolding and tests.
type MemoryCategoryRepository struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]*Category
}

// NewMemoryCategoryRepository creates an empty in-memory category repository.
func NewMemoryCategoryRepository() *MemoryCategoryRepository {
	return &MemoryCategoryRepository{categories: make(map[uuid.UUID]*Category)}
}

func (m *MemoryCategoryRepository) Create(_ context.Context, category *Category) (*Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneCategory(category)
	m.categories[copied.ID] = copied
	return cloneCategory(copied), nil
}

func (m *MemoryCategoryRepository) Update(_ context.Context, category *Category) (*Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.categories[category.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "category", Key: category.ID.String()}
	}
	copied := cloneCategory(category)
	copied.CreatedAt = existing.CreatedAt
	m.categories[copied.ID] = copied
	return cloneCategory(copied), nil
}

func (m *MemoryCategoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.categories[id]
	if !ok {
		return nil, &NotFoundError{Resource: "category", Key: id.String()}
	}
	return cloneCategory(rec), nil
}

func (m *MemoryCategoryRepository) List(_ context.Context, filter CategoryFilter) ([]*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids, parents map[uuid.UUID]struct{}
	if filter.RestrictIDs {
		ids = toSet(filter.IDs)
	}
	if !filter.RootsOnly && len(filter.ParentIDs) > 0 {
		parents = toSet(filter.ParentIDs)
	}

	out := make([]*Category, 0, len(m.categories))
	for _, rec := range m.categories {
		if filter.ActiveOnly && !rec.IsActive {
			continue
		}
		if ids != nil {
			if _, ok := ids[rec.ID]; !ok {
				continue
			}
		}
		if filter.Lang != "" && rec.Lang != filter.Lang {
			continue
		}
		if filter.RootsOnly && rec.ParentID != nil {
			continue
		}
		if parents != nil {
			if rec.ParentID == nil {
				continue
			}
			if _, ok := parents[*rec.ParentID]; !ok {
				continue
			}
		}
		out = append(out, cloneCategory(rec))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *MemoryCategoryRepository) CountChildren(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, rec := range m.categories {
		if rec.ParentID != nil && *rec.ParentID == id {
			count++
		}
	}
	return count, nil
}

func (m *MemoryCategoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[id]; !ok {
		return &NotFoundError{Resource: "category", Key: id.String()}
	}
	delete(m.categories, id)
	return nil
}

func toSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
