package pages

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryPageRepository is an in-memory implementation for scaffolding and tests.
type MemoryPageRepository struct {
	mu    sync.RWMutex
	pages map[uuid.UUID]*Page
}

func NewMemoryPageRepository() *MemoryPageRepository {
	return &MemoryPageRepository{pages: make(map[uuid.UUID]*Page)}
}

func (m *MemoryPageRepository) Create(_ context.Context, page *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := clonePage(page)
	m.pages[copied.ID] = copied
	return clonePage(copied), nil
}

func (m *MemoryPageRepository) Update(_ context.Context, page *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.pages[page.ID]
	if !ok {
		return nil, &PageNotFoundError{Key: page.ID.String()}
	}
	copied := clonePage(page)
	copied.CreatedAt = existing.CreatedAt
	m.pages[copied.ID] = copied
	return clonePage(copied), nil
}

func (m *MemoryPageRepository) GetByID(_ context.Context, id uuid.UUID) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.pages[id]
	if !ok {
		return nil, &PageNotFoundError{Key: id.String()}
	}
	return clonePage(rec), nil
}

func (m *MemoryPageRepository) GetBySlug(_ context.Context, slug, language string) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.pages {
		if rec.Slug == slug && rec.Language == language {
			return clonePage(rec), nil
		}
	}
	return nil, &PageNotFoundError{Key: slug}
}

func (m *MemoryPageRepository) List(_ context.Context, limit, offset int) ([]*Page, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*Page, 0, len(m.pages))
	for _, rec := range m.pages {
		all = append(all, rec)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if offset >= len(all) {
		all = nil
	} else if offset > 0 {
		all = all[offset:]
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]*Page, 0, len(all))
	for _, rec := range all {
		out = append(out, clonePage(rec))
	}
	return out, total, nil
}

func (m *MemoryPageRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pages[id]; !ok {
		return &PageNotFoundError{Key: id.String()}
	}
	delete(m.pages, id)
	return nil
}
