package rules

import (
	"context"

	"github.com/bluesky-social/labelbot/automod/engine"
	"github.com/bluesky-social/labelbot/automod/helpers"
	"github.com/bluesky-social/labelbot/automod/post"
	"github.com/bluesky-social/labelbot/automod/refdata"
)

// Labels a post "t-and-s" if the text contains a listed word, or the text or links reference a listed domain.
func TrustSafetyRule(refs *refdata.Store) engine.RuleFunc {
	return func(ctx context.Context, p *post.Post) ([]string, error) {
		text := p.GetText()
		if refs.ContainsWord(text) {
			return []string{TrustSafetyLabel}, nil
		}
		domains := helpers.ExtractTextDomains(text)
		domains = append(domains, linkDomains(p)...)
		if refs.MatchDomains(domains) {
			return []string{TrustSafetyLabel}, nil
		}
		return nil, nil
	}
}

// Labels a post with the news-source label of each distinct linked domain which has one.
func NewsDomainRule(refs *refdata.Store) engine.RuleFunc {
	return func(ctx context.Context, p *post.Post) ([]string, error) {
		var domains []string
		for _, u := range helpers.ExtractTextURLs(p.GetText()) {
			if d := helpers.DomainOf(u); d != "" {
				domains = append(domains, d)
			}
		}
		domains = append(domains, linkDomains(p)...)

		var labels []string
		for _, d := range helpers.DedupeStrings(domains) {
			if label, ok := refs.LabelForDomain(d); ok {
				labels = append(labels, label)
			}
		}
		return helpers.DedupeStrings(labels), nil
	}
}

// domains of link facets and external embeds, which are complete even when the post text has a truncated URL
func linkDomains(p *post.Post) []string {
	var out []string
	for _, u := range helpers.ExtractLinkURLs(p) {
		if d := helpers.DomainOf(u); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// Labels a post "likely-panic-language" if its text scores at or above the detector threshold.
func PanicLanguageRule(det *PanicDetector) engine.RuleFunc {
	return func(ctx context.Context, p *post.Post) ([]string, error) {
		if label := det.Classify(p.GetText()); label != "" {
			return []string{label}, nil
		}
		return nil, nil
	}
}
