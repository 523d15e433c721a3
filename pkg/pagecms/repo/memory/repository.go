package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pagecms/pagecms/pkg/pagecms"
)

// Repository implements pagecms.Repository using in-memory storage. A
// single mutex covers the page map and the slug index, so slug uniqueness
// checks and inserts are one atomic step.
type Repository struct {
	mu     sync.RWMutex
	pages  map[uuid.UUID]*pagecms.Page
	order  []uuid.UUID // insertion order
	bySlug map[string]uuid.UUID
}

// New creates a new in-memory repository
func New() pagecms.Repository {
	return &Repository{
		pages:  make(map[uuid.UUID]*pagecms.Page),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (r *Repository) ListCollections(ctx context.Context) ([]pagecms.CollectionInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.pages) == 0 {
		return []pagecms.CollectionInfo{}, nil
	}

	return []pagecms.CollectionInfo{
		{Name: "pages", Count: int64(len(r.pages))},
	}, nil
}

func (r *Repository) CreatePage(ctx context.Context, page *pagecms.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySlug[page.Slug]; exists {
		return pagecms.ErrSlugExists
	}

	// Store a copy to avoid external modifications
	r.pages[page.ID] = page.Clone()
	r.order = append(r.order, page.ID)
	r.bySlug[page.Slug] = page.ID

	return nil
}

func (r *Repository) GetPage(ctx context.Context, id uuid.UUID) (*pagecms.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page, exists := r.pages[id]
	if !exists {
		return nil, pagecms.ErrPageNotFound
	}

	// Return a copy to prevent external modifications
	return page.Clone(), nil
}

func (r *Repository) ListPages(ctx context.Context) ([]*pagecms.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*pagecms.Page, 0, len(r.order))
	for _, id := range r.order {
		if page, exists := r.pages[id]; exists {
			result = append(result, page.Clone())
		}
	}

	return result, nil
}

func (r *Repository) UpdatePage(ctx context.Context, page *pagecms.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.pages[page.ID]
	if !exists {
		return pagecms.ErrPageNotFound
	}

	if owner, taken := r.bySlug[page.Slug]; taken && owner != page.ID {
		return pagecms.ErrSlugExists
	}

	if current.Slug != page.Slug {
		delete(r.bySlug, current.Slug)
		r.bySlug[page.Slug] = page.ID
	}
	r.pages[page.ID] = page.Clone()

	return nil
}

func (r *Repository) DeletePage(ctx context.Context, id uuid.UUID) (*pagecms.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	page, exists := r.pages[id]
	if !exists {
		return nil, pagecms.ErrPageNotFound
	}

	delete(r.pages, id)
	delete(r.bySlug, page.Slug)
	for i, ordered := range r.order {
		if ordered == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return page, nil
}
