package post

import (
	"encoding/json"
	"fmt"
)

// A single post, as fetched from the network. Posts are never mutated by moderation rules.
//
// Record and Raw are two views of the same record data: Record is the typed (schema-specific) view, and Raw is the generic nested-map view. Either may be nil, for example if the record did not parse against the typed schema.
type Post struct {
	URI          string
	CID          string
	AuthorDID    string
	AuthorHandle string
	Text         string

	Record *FeedPost
	Raw    map[string]any
}

// Returns the post text, falling back to the typed and then raw record views.
func (p *Post) GetText() string {
	if p == nil {
		return ""
	}
	if p.Text != "" {
		return p.Text
	}
	if p.Record != nil && p.Record.Text != "" {
		return p.Record.Text
	}
	if s, ok := p.Raw["text"].(string); ok {
		return s
	}
	return ""
}

// Parses record JSON in to both the typed and raw views.
//
// Failure to parse the typed view is not an error: the raw view may still carry useful data. An error is only returned if the JSON is not an object at all.
func ParseRecordJSON(raw []byte) (*FeedPost, map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("parsing record JSON: %w", err)
	}
	var fp FeedPost
	if err := json.Unmarshal(raw, &fp); err != nil {
		return nil, m, nil
	}
	return &fp, m, nil
}

// Builds a Post from record JSON and metadata.
func FromRecordJSON(uri, cid, did, handle string, raw []byte) (*Post, error) {
	fp, m, err := ParseRecordJSON(raw)
	if err != nil {
		return nil, err
	}
	p := &Post{
		URI:          uri,
		CID:          cid,
		AuthorDID:    did,
		AuthorHandle: handle,
		Record:       fp,
		Raw:          m,
	}
	p.Text = p.GetText()
	return p, nil
}
