package pagecms

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PageType is the discriminator value for the page aggregate. It is fixed
// today and reserved for future aggregate kinds.
const PageType = "page"

// BlockType discriminates content block variants.
type BlockType string

// Block type constants (typed).
const (
	BlockTypeText  BlockType = "text"
	BlockTypeImage BlockType = "image"
)

// IsValid reports whether the block type is a known variant.
func (t BlockType) IsValid() bool {
	return t == BlockTypeText || t == BlockTypeImage
}

// Page is the root content aggregate: a named document composed of an
// ordered list of content blocks. Block order is significant and preserved
// across reads.
type Page struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Data      []Block   `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Block is one polymorphic element of a page body. The Data payload is
// determined by Type: TextData for text blocks, ImageData for image blocks.
type Block struct {
	ID   uuid.UUID `json:"id"`
	Type BlockType `json:"type"`
	Data BlockData `json:"data"`
}

// BlockData is the variant payload of a content block.
type BlockData interface {
	blockData()
}

// TextEntry is a single text fragment within a text block.
type TextEntry struct {
	Text string `json:"text"`
}

// TextData is the payload of a text block: an ordered list of text entries.
type TextData []TextEntry

func (TextData) blockData() {}

// ImageVariant references one stored rendition of an image, keyed by its
// size label (xs, sm, md, lg).
type ImageVariant struct {
	Size string `json:"size"`
	URL  string `json:"url"`
}

// ImageData is the payload of an image block: one entry per stored size.
type ImageData []ImageVariant

func (ImageData) blockData() {}

// blockJSON is the wire form of a block; Data is decoded per Type.
type blockJSON struct {
	ID   uuid.UUID       `json:"id"`
	Type BlockType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON encodes the block as {"id", "type", "data"} with the variant
// payload under "data".
func (b Block) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(b.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(blockJSON{ID: b.ID, Type: b.Type, Data: payload})
}

// UnmarshalJSON decodes the variant payload according to the "type" tag.
func (b *Block) UnmarshalJSON(raw []byte) error {
	var wire blockJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}

	b.ID = wire.ID
	b.Type = wire.Type
	b.Data = nil

	if len(wire.Data) == 0 || string(wire.Data) == "null" {
		return nil
	}

	switch wire.Type {
	case BlockTypeText:
		var data TextData
		if err := json.Unmarshal(wire.Data, &data); err != nil {
			return err
		}
		b.Data = data
	case BlockTypeImage:
		var data ImageData
		if err := json.Unmarshal(wire.Data, &data); err != nil {
			return err
		}
		b.Data = data
	default:
		return fmt.Errorf("unknown block type %q", wire.Type)
	}

	return nil
}

// Clone returns a deep copy of the page, so repository implementations can
// hand out copies without sharing block slices with callers.
func (p *Page) Clone() *Page {
	cp := *p
	cp.Data = CloneBlocks(p.Data)
	return &cp
}

// CloneBlocks deep-copies a block list.
func CloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = b
		switch data := b.Data.(type) {
		case TextData:
			out[i].Data = append(TextData(nil), data...)
		case ImageData:
			out[i].Data = append(ImageData(nil), data...)
		}
	}
	return out
}

// CollectionInfo describes one aggregate collection known to the store.
type CollectionInfo struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
