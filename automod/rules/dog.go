package rules

import (
	"context"
	"sync/atomic"

	"github.com/bluesky-social/labelbot/automod/engine"
	"github.com/bluesky-social/labelbot/automod/post"

	"golang.org/x/sync/errgroup"
)

// Labels a post "dog" if any embedded image matches the reference set. Images are checked concurrently, and the first match cancels the remaining checks.
func DogImageRule(matcher ImageMatcher, extractor ImageURLExtractor, maxParallel int) engine.RuleFunc {
	if maxParallel <= 0 {
		maxParallel = 1
	}
	return func(ctx context.Context, p *post.Post) ([]string, error) {
		urls := extractor.ExtractImageURLs(p)
		if len(urls) == 0 {
			return nil, nil
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		var found atomic.Bool
		var g errgroup.Group
		g.SetLimit(maxParallel)
		for _, u := range urls {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				if matcher.MatchesURL(ctx, u) {
					found.Store(true)
					cancel()
				}
				return nil
			})
		}
		_ = g.Wait()

		if found.Load() {
			return []string{DogLabel}, nil
		}
		return nil, nil
	}
}
