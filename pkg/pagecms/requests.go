package pagecms

import "encoding/json"

// CreatePageRequest carries input for creating a page. Name is required and
// must be non-blank after trimming; Data is optional initial block content.
type CreatePageRequest struct {
	Name string  `json:"name"`
	Data []Block `json:"data,omitempty"`
}

// GetPagesRequest filters page reads. When ID is empty all pages are
// returned; otherwise it must be a well-formed identifier and the result
// holds zero or one pages.
type GetPagesRequest struct {
	ID string `json:"id,omitempty"`
}

// UpdatePageRequest carries a page update. Supplied fields are merged into
// the stored page; the slug is re-derived when Name is supplied.
type UpdatePageRequest struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// BlockInput is caller-supplied block content: the variant tag plus its
// payload. Block ids are assigned by the service, never by callers.
type BlockInput struct {
	Type BlockType `json:"type"`
	Data BlockData `json:"data"`
}

// UnmarshalJSON decodes the variant payload according to the "type" tag.
// Unknown tags are preserved so the service can reject them with a
// ValidationError rather than a decode failure.
func (in *BlockInput) UnmarshalJSON(raw []byte) error {
	var wire struct {
		Type BlockType       `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}

	in.Type = wire.Type
	in.Data = nil

	if len(wire.Data) == 0 || string(wire.Data) == "null" {
		return nil
	}

	switch wire.Type {
	case BlockTypeText:
		var data TextData
		if err := json.Unmarshal(wire.Data, &data); err != nil {
			return err
		}
		in.Data = data
	case BlockTypeImage:
		var data ImageData
		if err := json.Unmarshal(wire.Data, &data); err != nil {
			return err
		}
		in.Data = data
	}

	return nil
}

// AddBlockRequest appends one block to a page.
type AddBlockRequest struct {
	PageID string     `json:"id"`
	Block  BlockInput `json:"data"`
}

// UpdateBlockRequest replaces the matched block in place.
type UpdateBlockRequest struct {
	PageID  string     `json:"id"`
	BlockID string     `json:"block_id"`
	Block   BlockInput `json:"data"`
}

// RemoveBlockRequest removes exactly one block by its id.
type RemoveBlockRequest struct {
	PageID  string `json:"id"`
	BlockID string `json:"block_id"`
}
