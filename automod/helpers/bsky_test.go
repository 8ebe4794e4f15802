package helpers

import (
	"testing"

	"github.com/bluesky-social/labelbot/automod/post"

	"github.com/stretchr/testify/assert"
)

const (
	cidOne = "bafkreiccldh766hwcnuxnf2wh6jgzepf2nlu2lvcllt63eww5p6chi4ity"
	cidTwo = "bafkreiblkobl6arfg3j7eft3akdhn2hmr2qmzfkefcgu4agnswvssg4a6a"
)

func mustParsePost(t *testing.T, did, raw string) *post.Post {
	p, err := post.FromRecordJSON("", "", did, "", []byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestExtractImageURLsTyped(t *testing.T) {
	assert := assert.New(t)
	ie := DefaultImageExtractor()

	p := mustParsePost(t, "did:plc:author", `{
		"text": "two dogs",
		"embed": {"$type": "app.bsky.embed.images", "images": [
			{"image": {"$type": "blob", "ref": {"$link": "`+cidOne+`"}, "mimeType": "image/jpeg", "size": 10}},
			{"image": {"$type": "blob", "ref": {"$link": "`+cidTwo+`"}, "mimeType": "image/jpeg", "size": 10}},
			{"alt": "missing image"}
		]}
	}`)
	assert.NotNil(p.Record)
	assert.Equal([]string{
		"https://bsky.social/xrpc/com.atproto.sync.getBlob?did=did:plc:author&cid=" + cidOne,
		"https://bsky.social/xrpc/com.atproto.sync.getBlob?did=did:plc:author&cid=" + cidTwo,
	}, ie.ExtractImageURLs(p))
}

func TestExtractImageURLsRecordWithMedia(t *testing.T) {
	assert := assert.New(t)
	ie := ImageExtractor{Host: "https://pds.example.com", ServiceDID: "did:plc:service"}

	p := mustParsePost(t, "", `{
		"text": "quote",
		"embed": {"$type": "app.bsky.embed.recordWithMedia", "media": {"$type": "app.bsky.embed.images", "images": [
			{"image": {"$type": "blob", "ref": {"$link": "`+cidOne+`"}, "mimeType": "image/png", "size": 10}}
		]}}
	}`)
	assert.Equal([]string{
		"https://pds.example.com/xrpc/com.atproto.sync.getBlob?did=did:plc:service&cid=" + cidOne,
	}, ie.ExtractImageURLs(p))
}

func TestExtractImageURLsRawFallback(t *testing.T) {
	assert := assert.New(t)
	ie := DefaultImageExtractor()

	// invalid CID breaks the typed view; the raw view still has the link
	p := mustParsePost(t, "", `{
		"text": "raw",
		"embed": {"$type": "app.bsky.embed.images", "images": [
			{"image": {"$type": "blob", "ref": {"$link": "bafyrawlink"}}},
			{"image": {"cid": "bafylegacy"}},
			{"image": "not-a-map"},
			"not-a-map"
		]}
	}`)
	assert.Nil(p.Record)
	assert.Equal([]string{
		"https://bsky.social/xrpc/com.atproto.sync.getBlob?did=" + DefaultServiceDID + "&cid=bafyrawlink",
		"https://bsky.social/xrpc/com.atproto.sync.getBlob?did=" + DefaultServiceDID + "&cid=bafylegacy",
	}, ie.ExtractImageURLs(p))
}

func TestExtractImageURLsEmpty(t *testing.T) {
	assert := assert.New(t)
	ie := DefaultImageExtractor()

	assert.Empty(ie.ExtractImageURLs(nil))
	assert.Empty(ie.ExtractImageURLs(&post.Post{}))
	assert.Empty(ie.ExtractImageURLs(&post.Post{Record: &post.FeedPost{Text: "no embed"}}))
	assert.Empty(ie.ExtractImageURLs(&post.Post{Raw: map[string]any{"embed": "wrong-shape"}}))
	assert.Empty(ie.ExtractImageURLs(&post.Post{Raw: map[string]any{"embed": map[string]any{"images": "wrong-shape"}}}))
	assert.Empty(ie.ExtractImageURLs(mustParsePost(t, "", `{"text": "x", "embed": {"$type": "app.bsky.embed.record"}}`)))
}

func TestExtractLinkURLs(t *testing.T) {
	assert := assert.New(t)

	p := mustParsePost(t, "", `{
		"text": "news at reuters.com/wor...",
		"facets": [{"index": {"byteStart": 8, "byteEnd": 26}, "features": [
			{"$type": "app.bsky.richtext.facet#link", "uri": "https://www.reuters.com/world"},
			{"$type": "app.bsky.richtext.facet#tag", "tag": "news"}
		]}],
		"embed": {"$type": "app.bsky.embed.external", "external": {"uri": "https://apnews.com/article/1", "title": "", "description": ""}}
	}`)
	assert.Equal([]string{"https://www.reuters.com/world", "https://apnews.com/article/1"}, ExtractLinkURLs(p))

	raw := &post.Post{Raw: map[string]any{
		"facets": []any{
			map[string]any{"features": []any{
				map[string]any{"$type": "app.bsky.richtext.facet#link", "uri": "https://example.com/a"},
				"junk",
			}},
		},
		"embed": map[string]any{"external": map[string]any{"uri": "https://example.org"}},
	}}
	assert.Equal([]string{"https://example.com/a", "https://example.org"}, ExtractLinkURLs(raw))
	assert.Empty(ExtractLinkURLs(nil))
}
