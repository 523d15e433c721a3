// Package imaging implements the image upload pipeline: buffer the upload,
// sniff its real content type, resize it into the configured bounding
// boxes, and persist every variant to a BlobStore. It also serves stored
// variants back by reference.
package imaging

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/pagecms/pagecms/pkg/pagecms"
)

// Size is one resize target: variants fit within the Width x Height
// bounding box, preserving aspect ratio and never upscaling the source.
type Size struct {
	Name   string
	Width  int
	Height int
}

// DefaultSizes returns the standard xs/sm/md/lg bounding boxes.
func DefaultSizes() []Size {
	return []Size{
		{Name: "xs", Width: 160, Height: 160},
		{Name: "sm", Width: 320, Height: 320},
		{Name: "md", Width: 640, Height: 640},
		{Name: "lg", Width: 1280, Height: 1280},
	}
}

// Accepted content types and the file extension stored variants carry. The
// extension comes from the sniffed type, never from the upload's name or
// declared mimetype.
var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

const defaultMaxUploadBytes = 32 << 20 // 32 MiB

// Service is the image ingest service.
type Service struct {
	store    pagecms.BlobStore
	sizes    []Size
	maxBytes int64
}

// Option represents a functional option for configuring the service
type Option func(*Service)

// WithSizes overrides the configured resize targets.
func WithSizes(sizes []Size) Option {
	return func(s *Service) {
		s.sizes = sizes
	}
}

// WithMaxUploadBytes caps how much of an upload is buffered.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		s.maxBytes = n
	}
}

// New creates a new image ingest service backed by the given store.
func New(store pagecms.BlobStore, options ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	s := &Service{
		store:    store,
		sizes:    DefaultSizes(),
		maxBytes: defaultMaxUploadBytes,
	}
	for _, option := range options {
		option(s)
	}

	if len(s.sizes) == 0 {
		return nil, fmt.Errorf("at least one size is required")
	}

	return s, nil
}

// MaxUploadBytes reports the configured upload cap, so transports can
// refuse oversized request bodies before spooling them.
func (s *Service) MaxUploadBytes() int64 {
	return s.maxBytes
}

// Ingest buffers one uploaded file, validates its sniffed content type,
// resizes it into every configured size concurrently, and persists the
// variants under a random collision-resistant base name. declaredType is
// the caller's claimed mimetype; it is not trusted and plays no part in
// acceptance. The result maps size label to stored key. Writes are
// all-or-nothing: when any variant fails, already-written ones are removed.
func (s *Service) Ingest(ctx context.Context, reader io.Reader, declaredType string) (map[string]string, error) {
	if reader == nil {
		return nil, pagecms.NewValidationError("image", "file is required")
	}

	buf, err := io.ReadAll(io.LimitReader(reader, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(buf) == 0 {
		return nil, pagecms.NewValidationError("image", "file is empty")
	}
	if int64(len(buf)) > s.maxBytes {
		return nil, pagecms.NewValidationError("image", "file exceeds upload limit")
	}

	sniffed := http.DetectContentType(buf)
	ext, ok := extensions[sniffed]
	if !ok {
		return nil, pagecms.NewValidationError("image", fmt.Sprintf("unsupported content type %s", sniffed))
	}

	src, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, pagecms.NewValidationError("image", "corrupt image data")
	}

	base, err := randomName()
	if err != nil {
		return nil, fmt.Errorf("generate name: %w", err)
	}

	var (
		mu       sync.Mutex
		variants = make(map[string]string, len(s.sizes))
		written  []string
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, size := range s.sizes {
		size := size
		g.Go(func() error {
			resized := fit(src, size.Width, size.Height)

			var out bytes.Buffer
			var encErr error
			switch sniffed {
			case "image/png":
				encErr = png.Encode(&out, resized)
			default:
				encErr = jpeg.Encode(&out, resized, &jpeg.Options{Quality: 85})
			}
			if encErr != nil {
				return fmt.Errorf("encode %s variant: %w", size.Name, encErr)
			}

			key := fmt.Sprintf("%s-%s.%s", base, size.Name, ext)
			if err := s.store.Upload(gctx, key, &out); err != nil {
				return fmt.Errorf("store %s variant: %w", size.Name, err)
			}

			mu.Lock()
			variants[size.Name] = key
			written = append(written, key)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// All-or-nothing: drop whatever made it to storage.
		cleanupCtx := context.Background()
		for _, key := range written {
			_ = s.store.Delete(cleanupCtx, key)
		}
		return nil, err
	}

	return variants, nil
}

// Retrieve streams a stored variant back by its reference. References
// naming path segments are rejected before storage is consulted, so the
// storage root is never escaped.
func (s *Service) Retrieve(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	if ref == "" {
		return nil, "", pagecms.NewValidationError("ref", "reference is required")
	}
	if strings.ContainsAny(ref, `/\`) || strings.Contains(ref, "..") {
		return nil, "", pagecms.NewValidationError("ref", "reference must not contain path segments")
	}

	meta, err := s.store.GetObjectMeta(ctx, ref)
	if err != nil {
		if errors.Is(err, pagecms.ErrObjectNotFound) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("stat %s: %w", ref, err)
	}

	body, err := s.store.Download(ctx, ref)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", ref, err)
	}

	return body, meta.ContentType, nil
}

// fit scales src to the largest size that fits within the maxW x maxH
// bounding box without exceeding either dimension. Sources already inside
// the box come back untouched.
func fit(src image.Image, maxW, maxH int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxW && h <= maxH {
		return src
	}

	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	nw := int(float64(w)*scale + 0.5)
	nh := int(float64(h)*scale + 0.5)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	if nw > maxW {
		nw = maxW
	}
	if nh > maxH {
		nh = maxH
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

func randomName() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
