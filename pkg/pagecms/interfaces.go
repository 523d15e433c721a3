package pagecms

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for page persistence. Implementations
// guarantee single-aggregate atomicity and enforce slug uniqueness with
// their own constraint mechanism, returning ErrSlugExists on collision.
type Repository interface {
	// ListCollections returns metadata for the aggregate collections the
	// store currently holds. An empty result is valid.
	ListCollections(ctx context.Context) ([]CollectionInfo, error)

	// CreatePage persists a new page. Returns ErrSlugExists when another
	// page already owns the slug.
	CreatePage(ctx context.Context, page *Page) error

	// GetPage returns the page with the given id, or ErrPageNotFound.
	GetPage(ctx context.Context, id uuid.UUID) (*Page, error)

	// ListPages returns all pages in insertion order.
	ListPages(ctx context.Context) ([]*Page, error)

	// UpdatePage replaces the stored aggregate. Returns ErrPageNotFound
	// when the id is unknown and ErrSlugExists when the new slug collides
	// with a different page.
	UpdatePage(ctx context.Context, page *Page) error

	// DeletePage hard-deletes a page and returns its last-known state, or
	// ErrPageNotFound.
	DeletePage(ctx context.Context, id uuid.UUID) (*Page, error)
}

// BlobStore defines the interface for stored-image backends.
type BlobStore interface {
	// Upload stores the bytes read from reader under key.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Download returns a reader over the stored bytes, or ErrObjectNotFound.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the stored object, or returns ErrObjectNotFound.
	Delete(ctx context.Context, key string) error

	// GetObjectMeta retrieves metadata for a stored object.
	GetObjectMeta(ctx context.Context, key string) (*ObjectMeta, error)
}

// ObjectMeta describes a stored object.
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
}
