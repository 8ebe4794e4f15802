package rules

import (
	"context"

	"github.com/bluesky-social/labelbot/automod/engine"
	"github.com/bluesky-social/labelbot/automod/helpers"
	"github.com/bluesky-social/labelbot/automod/post"
	"github.com/bluesky-social/labelbot/automod/refdata"
)

const (
	DogLabel         = "dog"
	TrustSafetyLabel = "t-and-s"
	PanicLabel       = "likely-panic-language"
)

const defaultMaxImageChecks = 4

// Checks whether the image at a URL matches a reference set. Any failure is a non-match.
type ImageMatcher interface {
	MatchesURL(ctx context.Context, url string) bool
}

type ImageURLExtractor interface {
	ExtractImageURLs(p *post.Post) []string
}

// Collaborators for the default rule set. Any nil field falls back to an empty implementation, which makes the corresponding rule a no-op.
type Config struct {
	Images    ImageMatcher
	Extractor ImageURLExtractor
	Refs      *refdata.Store
	// panic-language rule is only included when set
	Panic *PanicDetector
	// max concurrent image checks per post
	MaxImageChecks int
}

type noImages struct{}

func (noImages) MatchesURL(ctx context.Context, url string) bool {
	return false
}

// Builds the fixed-priority rule list: dog images (terminal), then trust-and-safety, news domains and panic language (all additive).
func DefaultRules(cfg Config) engine.RuleSet {
	if cfg.Images == nil {
		cfg.Images = noImages{}
	}
	if cfg.Extractor == nil {
		cfg.Extractor = helpers.DefaultImageExtractor()
	}
	if cfg.Refs == nil {
		cfg.Refs = refdata.NewEmptyStore()
	}
	if cfg.MaxImageChecks <= 0 {
		cfg.MaxImageChecks = defaultMaxImageChecks
	}

	rules := engine.RuleSet{
		Rules: []engine.Rule{
			{Name: "dog-image", Kind: engine.Terminal, Func: DogImageRule(cfg.Images, cfg.Extractor, cfg.MaxImageChecks)},
			{Name: "trust-and-safety", Kind: engine.Additive, Func: TrustSafetyRule(cfg.Refs)},
			{Name: "news-domain", Kind: engine.Additive, Func: NewsDomainRule(cfg.Refs)},
		},
	}
	if cfg.Panic != nil {
		rules.Rules = append(rules.Rules, engine.Rule{Name: "panic-language", Kind: engine.Additive, Func: PanicLanguageRule(cfg.Panic)})
	}
	return rules
}
