package post

import (
	"encoding/json"
	"fmt"

	"github.com/ipfs/go-cid"
)

// schema: app.bsky.feed.post (subset used for moderation)
type FeedPost struct {
	LexiconTypeID string           `json:"$type,omitempty"`
	Text          string           `json:"text"`
	CreatedAt     string           `json:"createdAt"`
	Langs         []string         `json:"langs,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
	Facets        []*RichtextFacet `json:"facets,omitempty"`
	Embed         *FeedPost_Embed  `json:"embed,omitempty"`
}

// union of embed types; only one field is set
type FeedPost_Embed struct {
	EmbedImages          *EmbedImages
	EmbedExternal        *EmbedExternal
	EmbedRecordWithMedia *EmbedRecordWithMedia
}

func (t *FeedPost_Embed) UnmarshalJSON(b []byte) error {
	var head struct {
		Type string `json:"$type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}
	switch head.Type {
	case "app.bsky.embed.images":
		t.EmbedImages = new(EmbedImages)
		return json.Unmarshal(b, t.EmbedImages)
	case "app.bsky.embed.external":
		t.EmbedExternal = new(EmbedExternal)
		return json.Unmarshal(b, t.EmbedExternal)
	case "app.bsky.embed.recordWithMedia":
		t.EmbedRecordWithMedia = new(EmbedRecordWithMedia)
		return json.Unmarshal(b, t.EmbedRecordWithMedia)
	default:
		// unsupported embed types (eg, plain record quotes, video) are ignored
		return nil
	}
}

// schema: app.bsky.embed.images
type EmbedImages struct {
	LexiconTypeID string               `json:"$type,omitempty"`
	Images        []*EmbedImages_Image `json:"images"`
}

type EmbedImages_Image struct {
	Alt   string   `json:"alt"`
	Image *LexBlob `json:"image"`
}

// schema: app.bsky.embed.external
type EmbedExternal struct {
	LexiconTypeID string                  `json:"$type,omitempty"`
	External      *EmbedExternal_External `json:"external"`
}

type EmbedExternal_External struct {
	Uri         string   `json:"uri"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Thumb       *LexBlob `json:"thumb,omitempty"`
}

// schema: app.bsky.embed.recordWithMedia
type EmbedRecordWithMedia struct {
	LexiconTypeID string          `json:"$type,omitempty"`
	Media         *FeedPost_Embed `json:"media"`
}

// schema: app.bsky.richtext.facet
type RichtextFacet struct {
	Index    *RichtextFacet_ByteSlice `json:"index"`
	Features []*RichtextFacet_Feature `json:"features"`
}

type RichtextFacet_ByteSlice struct {
	ByteStart int64 `json:"byteStart"`
	ByteEnd   int64 `json:"byteEnd"`
}

type RichtextFacet_Feature struct {
	Type string `json:"$type"`
	Uri  string `json:"uri,omitempty"`
	Did  string `json:"did,omitempty"`
	Tag  string `json:"tag,omitempty"`
}

type LexLink cid.Cid

func (ll LexLink) String() string {
	return cid.Cid(ll).String()
}

func (ll LexLink) Defined() bool {
	return cid.Cid(ll).Defined()
}

func (ll *LexLink) UnmarshalJSON(raw []byte) error {
	var jl struct {
		Link string `json:"$link"`
	}
	if err := json.Unmarshal(raw, &jl); err != nil {
		return fmt.Errorf("parsing cid-link JSON: %w", err)
	}
	c, err := cid.Decode(jl.Link)
	if err != nil {
		return fmt.Errorf("parsing cid-link CID: %w", err)
	}
	*ll = LexLink(c)
	return nil
}

// Either a current blob (`$type: blob` with a `ref` link) or a legacy blob (string `cid`). Size is -1 for legacy blobs.
type LexBlob struct {
	Ref      LexLink
	MimeType string
	Size     int64
}

func (b *LexBlob) UnmarshalJSON(raw []byte) error {
	var bs struct {
		Type     string   `json:"$type"`
		Ref      *LexLink `json:"ref"`
		Cid      string   `json:"cid"`
		MimeType string   `json:"mimeType"`
		Size     int64    `json:"size"`
	}
	if err := json.Unmarshal(raw, &bs); err != nil {
		return fmt.Errorf("parsing blob JSON: %w", err)
	}
	if bs.Type == "blob" || bs.Ref != nil {
		if bs.Ref == nil {
			return fmt.Errorf("parsing blob: missing ref")
		}
		if bs.Size < 0 {
			return fmt.Errorf("parsing blob: negative size: %d", bs.Size)
		}
		b.Ref = *bs.Ref
		b.MimeType = bs.MimeType
		b.Size = bs.Size
		return nil
	}
	c, err := cid.Decode(bs.Cid)
	if err != nil {
		return fmt.Errorf("parsing CID in legacy blob: %w", err)
	}
	b.Ref = LexLink(c)
	b.MimeType = bs.MimeType
	b.Size = -1
	return nil
}
