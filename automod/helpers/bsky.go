package helpers

import (
	"fmt"

	"github.com/bluesky-social/labelbot/automod/post"
)

const (
	DefaultBlobHost = "https://bsky.social"
	// identity used for blob URLs when the post author isn't known
	DefaultServiceDID = "did:plc:swmumnkmw5osopckigoal7ox"
)

// Converts image embeds in a post in to fetchable blob URLs.
type ImageExtractor struct {
	// scheme and hostname of the service serving com.atproto.sync.getBlob
	Host string
	// fallback account DID, when the post author DID is not known
	ServiceDID string
}

func DefaultImageExtractor() ImageExtractor {
	return ImageExtractor{
		Host:       DefaultBlobHost,
		ServiceDID: DefaultServiceDID,
	}
}

func (ie ImageExtractor) BlobURL(did, cid string) string {
	return fmt.Sprintf("%s/xrpc/com.atproto.sync.getBlob?did=%s&cid=%s", ie.Host, did, cid)
}

// Returns blob URLs for all images embedded in the post, possibly empty.
//
// The typed record view is preferred; the raw map view is only consulted if the typed view yields no images.
func (ie ImageExtractor) ExtractImageURLs(p *post.Post) []string {
	if p == nil {
		return nil
	}
	cids := ExtractImageCIDs(p.Record)
	if len(cids) == 0 {
		cids = ExtractImageCIDsRaw(p.Raw)
	}
	if len(cids) == 0 {
		return nil
	}
	did := p.AuthorDID
	if did == "" {
		did = ie.ServiceDID
	}
	out := make([]string, 0, len(cids))
	for _, c := range cids {
		out = append(out, ie.BlobURL(did, c))
	}
	return out
}

// Image blob CIDs from the typed view, including images attached to quote posts.
func ExtractImageCIDs(fp *post.FeedPost) []string {
	if fp == nil || fp.Embed == nil {
		return nil
	}
	out := imageCIDs(fp.Embed.EmbedImages)
	if fp.Embed.EmbedRecordWithMedia != nil && fp.Embed.EmbedRecordWithMedia.Media != nil {
		out = append(out, imageCIDs(fp.Embed.EmbedRecordWithMedia.Media.EmbedImages)...)
	}
	return DedupeStrings(out)
}

func imageCIDs(ei *post.EmbedImages) []string {
	if ei == nil {
		return nil
	}
	var out []string
	for _, img := range ei.Images {
		if img == nil || img.Image == nil || !img.Image.Ref.Defined() {
			continue
		}
		out = append(out, img.Image.Ref.String())
	}
	return out
}

// Image blob CIDs from the raw map view. Any missing or unexpectedly-shaped field is skipped.
func ExtractImageCIDsRaw(raw map[string]any) []string {
	embed, ok := raw["embed"].(map[string]any)
	if !ok {
		return nil
	}
	out := rawImageCIDs(embed)
	if media, ok := embed["media"].(map[string]any); ok {
		out = append(out, rawImageCIDs(media)...)
	}
	return DedupeStrings(out)
}

func rawImageCIDs(embed map[string]any) []string {
	images, ok := embed["images"].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range images {
		img, ok := v.(map[string]any)
		if !ok {
			continue
		}
		blob, ok := img["image"].(map[string]any)
		if !ok {
			continue
		}
		if ref, ok := blob["ref"].(map[string]any); ok {
			if link, ok := ref["$link"].(string); ok && link != "" {
				out = append(out, link)
			}
			continue
		}
		// legacy blob format
		if c, ok := blob["cid"].(string); ok && c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Returns URLs attached to the post outside the visible text: link facets and external embeds. Truncated link text in the post body still resolves to the full URL this way.
func ExtractLinkURLs(p *post.Post) []string {
	if p == nil {
		return nil
	}
	if p.Record != nil {
		return extractLinkURLsTyped(p.Record)
	}
	return extractLinkURLsRaw(p.Raw)
}

func extractLinkURLsTyped(fp *post.FeedPost) []string {
	var out []string
	for _, facet := range fp.Facets {
		if facet == nil {
			continue
		}
		for _, feat := range facet.Features {
			if feat != nil && feat.Type == "app.bsky.richtext.facet#link" && feat.Uri != "" {
				out = append(out, feat.Uri)
			}
		}
	}
	if fp.Embed != nil {
		out = append(out, externalURI(fp.Embed.EmbedExternal)...)
		if fp.Embed.EmbedRecordWithMedia != nil && fp.Embed.EmbedRecordWithMedia.Media != nil {
			out = append(out, externalURI(fp.Embed.EmbedRecordWithMedia.Media.EmbedExternal)...)
		}
	}
	return DedupeStrings(out)
}

func externalURI(ee *post.EmbedExternal) []string {
	if ee == nil || ee.External == nil || ee.External.Uri == "" {
		return nil
	}
	return []string{ee.External.Uri}
}

func extractLinkURLsRaw(raw map[string]any) []string {
	var out []string
	facets, _ := raw["facets"].([]any)
	for _, f := range facets {
		facet, ok := f.(map[string]any)
		if !ok {
			continue
		}
		features, _ := facet["features"].([]any)
		for _, ft := range features {
			feat, ok := ft.(map[string]any)
			if !ok || feat["$type"] != "app.bsky.richtext.facet#link" {
				continue
			}
			if uri, ok := feat["uri"].(string); ok && uri != "" {
				out = append(out, uri)
			}
		}
	}
	if embed, ok := raw["embed"].(map[string]any); ok {
		if ext, ok := embed["external"].(map[string]any); ok {
			if uri, ok := ext["uri"].(string); ok && uri != "" {
				out = append(out, uri)
			}
		}
	}
	return DedupeStrings(out)
}
