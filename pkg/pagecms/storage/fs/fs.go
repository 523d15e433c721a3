package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pagecms/pagecms/pkg/pagecms"
)

// Backend is a filesystem implementation of the pagecms.BlobStore
// interface. Objects live in a flat directory under BaseDir; file existence
// is the source of truth, there is no database record per object.
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
}

// New creates a new filesystem storage backend
func New(config Config) (pagecms.BlobStore, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{baseDir: config.BaseDir}, nil
}

// resolve joins key onto the base directory, refusing keys that would
// escape it. Read paths map the refusal to ErrObjectNotFound: no legal
// key ever names a path segment, so nothing such a key could refer to
// exists.
func (b *Backend) resolve(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", pagecms.NewValidationError("key", "key must be a bare file name")
	}
	return filepath.Join(b.baseDir, key), nil
}

// Upload writes content to the filesystem
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader) error {
	filePath, err := b.resolve(key)
	if err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Download opens stored content from the filesystem
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	filePath, err := b.resolve(key)
	if err != nil {
		return nil, pagecms.ErrObjectNotFound
	}

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, pagecms.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes stored content from the filesystem
func (b *Backend) Delete(ctx context.Context, key string) error {
	filePath, err := b.resolve(key)
	if err != nil {
		return pagecms.ErrObjectNotFound
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return pagecms.ErrObjectNotFound
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// GetObjectMeta retrieves metadata for an object in the filesystem
func (b *Backend) GetObjectMeta(ctx context.Context, key string) (*pagecms.ObjectMeta, error) {
	filePath, err := b.resolve(key)
	if err != nil {
		return nil, pagecms.ErrObjectNotFound
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, pagecms.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	// Detect content type from the leading bytes
	contentType := "application/octet-stream"
	if file, err := os.Open(filePath); err == nil {
		defer file.Close()
		buffer := make([]byte, 512)
		if n, err := file.Read(buffer); err == nil {
			contentType = http.DetectContentType(buffer[:n])
		}
	}

	return &pagecms.ObjectMeta{
		Key:         key,
		Size:        info.Size(),
		ContentType: contentType,
		UpdatedAt:   info.ModTime(),
	}, nil
}
