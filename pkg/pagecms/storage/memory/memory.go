package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pagecms/pagecms/pkg/pagecms"
)

// Backend is an in-memory implementation of the pagecms.BlobStore
// interface, intended for tests and development.
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
	updated map[string]time.Time
}

// New creates a new in-memory storage backend
func New() pagecms.BlobStore {
	return &Backend{
		objects: make(map[string][]byte),
		updated: make(map[string]time.Time),
	}
}

// Upload stores content in memory
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.updated[key] = time.Now()

	return nil
}

// Download returns a reader over stored content
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[key]
	if !exists {
		return nil, pagecms.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes stored content
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[key]; !exists {
		return pagecms.ErrObjectNotFound
	}
	delete(b.objects, key)
	delete(b.updated, key)

	return nil
}

// GetObjectMeta retrieves metadata for stored content
func (b *Backend) GetObjectMeta(ctx context.Context, key string) (*pagecms.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[key]
	if !exists {
		return nil, pagecms.ErrObjectNotFound
	}

	contentType := "application/octet-stream"
	if len(data) > 0 {
		head := data
		if len(head) > 512 {
			head = head[:512]
		}
		contentType = http.DetectContentType(head)
	}

	return &pagecms.ObjectMeta{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: contentType,
		UpdatedAt:   b.updated[key],
	}, nil
}
