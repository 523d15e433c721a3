package pagecms

import (
	"context"
)

// Service defines the main interface for the pagecms library. Operations
// validate caller input before touching the repository, so a
// ValidationError never has persisted side effects. Empty read results are
// reported as success with an empty slice; the transport layer decides how
// to map that.
type Service interface {
	// Collection operations
	ListCollections(ctx context.Context) ([]CollectionInfo, error)

	// Page operations
	CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error)
	GetPages(ctx context.Context, req GetPagesRequest) ([]*Page, error)
	UpdatePage(ctx context.Context, req UpdatePageRequest) (*Page, error)
	DeletePage(ctx context.Context, id string) (*Page, error)

	// Content block operations
	AddBlock(ctx context.Context, req AddBlockRequest) (*Page, error)
	UpdateBlock(ctx context.Context, req UpdateBlockRequest) (*Page, error)
	RemoveBlock(ctx context.Context, req RemoveBlockRequest) (*Page, error)
}
