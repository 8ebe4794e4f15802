package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testCID = "bafkreiccldh766hwcnuxnf2wh6jgzepf2nlu2lvcllt63eww5p6chi4ity"

func TestParseRecordJSON(t *testing.T) {
	assert := assert.New(t)

	raw := []byte(`{
		"$type": "app.bsky.feed.post",
		"text": "good boy",
		"createdAt": "2024-01-01T00:00:00Z",
		"embed": {
			"$type": "app.bsky.embed.images",
			"images": [{"alt": "", "image": {"$type": "blob", "ref": {"$link": "` + testCID + `"}, "mimeType": "image/jpeg", "size": 1234}}]
		}
	}`)
	fp, m, err := ParseRecordJSON(raw)
	assert.NoError(err)
	assert.NotNil(m)
	if assert.NotNil(fp) && assert.NotNil(fp.Embed) && assert.NotNil(fp.Embed.EmbedImages) {
		assert.Equal("good boy", fp.Text)
		assert.Equal(1, len(fp.Embed.EmbedImages.Images))
		assert.Equal(testCID, fp.Embed.EmbedImages.Images[0].Image.Ref.String())
		assert.Equal(int64(1234), fp.Embed.EmbedImages.Images[0].Image.Size)
	}
}

func TestParseRecordJSONLegacyBlob(t *testing.T) {
	assert := assert.New(t)

	raw := []byte(`{"text": "", "embed": {"$type": "app.bsky.embed.images", "images": [{"image": {"cid": "` + testCID + `", "mimeType": "image/png"}}]}}`)
	fp, _, err := ParseRecordJSON(raw)
	assert.NoError(err)
	if assert.NotNil(fp) {
		img := fp.Embed.EmbedImages.Images[0].Image
		assert.Equal(testCID, img.Ref.String())
		assert.Equal(int64(-1), img.Size)
	}
}

func TestParseRecordJSONTypedFailure(t *testing.T) {
	assert := assert.New(t)

	// invalid CID breaks the typed view, but the raw view survives
	raw := []byte(`{"text": "hi", "embed": {"$type": "app.bsky.embed.images", "images": [{"image": {"$type": "blob", "ref": {"$link": "not-a-cid"}}}]}}`)
	fp, m, err := ParseRecordJSON(raw)
	assert.NoError(err)
	assert.Nil(fp)
	assert.Equal("hi", m["text"])

	_, _, err = ParseRecordJSON([]byte(`["not", "an", "object"]`))
	assert.Error(err)
}

func TestGetText(t *testing.T) {
	assert := assert.New(t)

	var nilPost *Post
	assert.Equal("", nilPost.GetText())
	assert.Equal("a", (&Post{Text: "a"}).GetText())
	assert.Equal("b", (&Post{Record: &FeedPost{Text: "b"}}).GetText())
	assert.Equal("c", (&Post{Raw: map[string]any{"text": "c"}}).GetText())
	assert.Equal("", (&Post{Raw: map[string]any{"text": 123}}).GetText())

	p, err := FromRecordJSON("at://did:plc:abc/app.bsky.feed.post/123", "", "did:plc:abc", "alice.test", []byte(`{"text": "hello"}`))
	assert.NoError(err)
	assert.Equal("hello", p.Text)
	assert.Equal("alice.test", p.AuthorHandle)
}
