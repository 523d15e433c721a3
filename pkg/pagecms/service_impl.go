package pagecms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository Repository
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return s, nil
}

// parseID validates a caller-supplied identifier before any repository
// access. Malformed identifiers are caller errors, not lookups that miss.
func parseID(field, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, NewValidationError(field, "identifier is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, NewValidationError(field, "malformed identifier")
	}
	return id, nil
}

// validateBlockInput checks the variant tag and its payload.
func validateBlockInput(in BlockInput) error {
	if in.Type == "" {
		return NewValidationError("data.type", "block type is required")
	}
	if !in.Type.IsValid() {
		return NewValidationError("data.type", fmt.Sprintf("unknown block type %q", in.Type))
	}
	switch data := in.Data.(type) {
	case TextData:
		if in.Type != BlockTypeText {
			return NewValidationError("data", "payload does not match block type")
		}
		if len(data) == 0 {
			return NewValidationError("data", "text block requires at least one entry")
		}
	case ImageData:
		if in.Type != BlockTypeImage {
			return NewValidationError("data", "payload does not match block type")
		}
		if len(data) == 0 {
			return NewValidationError("data", "image block requires at least one variant")
		}
	case nil:
		return NewValidationError("data", "block payload is required")
	default:
		return NewValidationError("data", "unsupported block payload")
	}
	return nil
}

// Collection operations

func (s *service) ListCollections(ctx context.Context) ([]CollectionInfo, error) {
	collections, err := s.repository.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return collections, nil
}

// Page operations

func (s *service) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("name", "name is required")
	}

	slug := Slugify(name)
	if slug == "" {
		return nil, NewValidationError("name", "name must contain letters or digits")
	}

	blocks := make([]Block, 0, len(req.Data))
	for _, b := range req.Data {
		if err := validateBlockInput(BlockInput{Type: b.Type, Data: b.Data}); err != nil {
			return nil, err
		}
		b.ID = uuid.New()
		blocks = append(blocks, b)
	}

	now := time.Now().UTC()
	page := &Page{
		ID:        uuid.New(),
		Type:      PageType,
		Name:      name,
		Slug:      slug,
		Data:      blocks,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repository.CreatePage(ctx, page); err != nil {
		if errors.Is(err, ErrSlugExists) {
			return nil, err
		}
		return nil, &PageError{PageID: page.ID, Op: "create", Err: err}
	}

	return page, nil
}

func (s *service) GetPages(ctx context.Context, req GetPagesRequest) ([]*Page, error) {
	if req.ID == "" {
		pages, err := s.repository.ListPages(ctx)
		if err != nil {
			return nil, fmt.Errorf("list pages: %w", err)
		}
		return pages, nil
	}

	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}

	page, err := s.repository.GetPage(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return []*Page{}, nil
		}
		return nil, &PageError{PageID: id, Op: "get", Err: err}
	}

	return []*Page{page}, nil
}

func (s *service) UpdatePage(ctx context.Context, req UpdatePageRequest) (*Page, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}

	var name, slug string
	if req.Name != "" {
		name = strings.TrimSpace(req.Name)
		if name == "" {
			return nil, NewValidationError("name", "name must not be blank")
		}
		slug = Slugify(name)
		if slug == "" {
			return nil, NewValidationError("name", "name must contain letters or digits")
		}
	}

	page, err := s.repository.GetPage(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return nil, err
		}
		return nil, &PageError{PageID: id, Op: "update", Err: err}
	}

	if name != "" {
		page.Name = name
		page.Slug = slug
	}
	page.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdatePage(ctx, page); err != nil {
		if errors.Is(err, ErrSlugExists) || errors.Is(err, ErrPageNotFound) {
			return nil, err
		}
		return nil, &PageError{PageID: id, Op: "update", Err: err}
	}

	return page, nil
}

func (s *service) DeletePage(ctx context.Context, rawID string) (*Page, error) {
	id, err := parseID("id", rawID)
	if err != nil {
		return nil, err
	}

	page, err := s.repository.DeletePage(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return nil, err
		}
		return nil, &PageError{PageID: id, Op: "delete", Err: err}
	}

	return page, nil
}

// Content block operations

func (s *service) AddBlock(ctx context.Context, req AddBlockRequest) (*Page, error) {
	id, err := parseID("id", req.PageID)
	if err != nil {
		return nil, err
	}
	if err := validateBlockInput(req.Block); err != nil {
		return nil, err
	}

	page, err := s.repository.GetPage(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return nil, err
		}
		return nil, &PageError{PageID: id, Op: "add block", Err: err}
	}

	// Append-only: existing blocks and their order are never disturbed.
	page.Data = append(page.Data, Block{
		ID:   uuid.New(),
		Type: req.Block.Type,
		Data: req.Block.Data,
	})
	page.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdatePage(ctx, page); err != nil {
		return nil, &PageError{PageID: id, Op: "add block", Err: err}
	}

	return page, nil
}

func (s *service) UpdateBlock(ctx context.Context, req UpdateBlockRequest) (*Page, error) {
	id, err := parseID("id", req.PageID)
	if err != nil {
		return nil, err
	}
	blockID, err := parseID("data.id", req.BlockID)
	if err != nil {
		return nil, err
	}
	if err := validateBlockInput(req.Block); err != nil {
		return nil, err
	}

	page, err := s.repository.GetPage(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return nil, err
		}
		return nil, &PageError{PageID: id, Op: "update block", Err: err}
	}

	replaced := false
	for i := range page.Data {
		if page.Data[i].ID == blockID {
			// Positional identity preserved: same slot, same id.
			page.Data[i] = Block{ID: blockID, Type: req.Block.Type, Data: req.Block.Data}
			replaced = true
			break
		}
	}
	if !replaced {
		return nil, ErrBlockNotFound
	}
	page.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdatePage(ctx, page); err != nil {
		return nil, &PageError{PageID: id, Op: "update block", Err: err}
	}

	return page, nil
}

func (s *service) RemoveBlock(ctx context.Context, req RemoveBlockRequest) (*Page, error) {
	id, err := parseID("id", req.PageID)
	if err != nil {
		return nil, err
	}
	blockID, err := parseID("block_id", req.BlockID)
	if err != nil {
		return nil, err
	}

	page, err := s.repository.GetPage(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return nil, err
		}
		return nil, &PageError{PageID: id, Op: "remove block", Err: err}
	}

	// Removal targets the block id only, never payload equality, so blocks
	// with identical content stay independently addressable.
	removed := false
	kept := page.Data[:0]
	for _, b := range page.Data {
		if !removed && b.ID == blockID {
			removed = true
			continue
		}
		kept = append(kept, b)
	}
	if !removed {
		return nil, ErrBlockNotFound
	}
	page.Data = kept
	page.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdatePage(ctx, page); err != nil {
		return nil, &PageError{PageID: id, Op: "remove block", Err: err}
	}

	return page, nil
}
