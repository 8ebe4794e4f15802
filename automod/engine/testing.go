package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bluesky-social/labelbot/automod/post"
)

// Returns a rule which emits the given labels for every post.
func StaticRule(name string, kind RuleKind, labels ...string) Rule {
	return Rule{
		Name: name,
		Kind: kind,
		Func: func(ctx context.Context, p *post.Post) ([]string, error) {
			return labels, nil
		},
	}
}

// In-memory PostFetcher, keyed by reference string.
type MemFetcher struct {
	Posts map[string]*post.Post
}

func (mf *MemFetcher) FetchPostURL(ctx context.Context, ref string) (*post.Post, error) {
	p, ok := mf.Posts[ref]
	if !ok {
		return nil, fmt.Errorf("post not found: %s", ref)
	}
	return p, nil
}

func EngineTestFixture(rules ...Rule) Engine {
	return Engine{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Rules:  RuleSet{Rules: rules},
	}
}
