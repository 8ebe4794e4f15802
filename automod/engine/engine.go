package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/bluesky-social/labelbot/automod/helpers"
	"github.com/bluesky-social/labelbot/automod/post"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("automod")

// Resolves a post reference (web URL or AT-URI) to a post.
type PostFetcher interface {
	FetchPostURL(ctx context.Context, ref string) (*post.Post, error)
}

// runtime for executing rules against posts.
//
// Moderation always "fails open": any error or panic from a rule, or from fetching a post, results in fewer labels, never an error returned to the caller.
type Engine struct {
	Logger *slog.Logger
	Rules  RuleSet
	// used by ModerateURL (optional)
	Fetcher PostFetcher
}

func (eng *Engine) logger() *slog.Logger {
	if eng.Logger != nil {
		return eng.Logger
	}
	return slog.Default()
}

// Runs the rule set against a single post, returning labels in rule evaluation order, without duplicates.
//
// The first terminal rule to return labels ends evaluation, and its labels are the whole result. Labels from additive rules accumulate.
func (eng *Engine) Moderate(ctx context.Context, p *post.Post) []string {
	labels := []string{}
	if p == nil {
		return labels
	}

	ctx, span := tracer.Start(ctx, "Moderate")
	defer span.End()
	span.SetAttributes(attribute.String("uri", p.URI))

	start := time.Now()
	logger := eng.logger().With("uri", p.URI)
	defer func() {
		moderateCount.Inc()
		moderateDuration.Observe(time.Since(start).Seconds())
	}()

	for _, rule := range eng.Rules.Rules {
		out, err := rule.call(ctx, p)
		if err != nil {
			logger.Warn("rule failed", "rule", rule.Name, "err", err)
			ruleErrorCount.WithLabelValues(rule.Name).Inc()
			continue
		}
		if len(out) == 0 {
			continue
		}
		logger.Debug("rule matched", "rule", rule.Name, "kind", rule.Kind, "labels", out)
		if rule.Kind == Terminal {
			labels = out
			break
		}
		labels = append(labels, out...)
	}

	labels = helpers.DedupeStrings(labels)
	if labels == nil {
		labels = []string{}
	}
	for _, val := range labels {
		labelCount.WithLabelValues(val).Inc()
	}
	span.SetAttributes(attribute.StringSlice("labels", labels))

	logger.Info("canonical-event-line",
		"labels", labels,
		"author", p.AuthorHandle,
		"textHash", helpers.HashOfString(p.GetText()),
		"duration", time.Since(start),
	)
	return labels
}

// Fetches the referenced post, then runs Moderate. A post which can not be fetched gets no labels.
func (eng *Engine) ModerateURL(ctx context.Context, ref string) []string {
	logger := eng.logger().With("ref", ref)
	if eng.Fetcher == nil {
		logger.Warn("no post fetcher configured")
		return []string{}
	}
	p, err := eng.Fetcher.FetchPostURL(ctx, ref)
	if err != nil {
		logger.Warn("failed to fetch post", "err", err)
		fetchErrorCount.Inc()
		return []string{}
	}
	return eng.Moderate(ctx, p)
}
