package main

import (
	"fmt"
	"log/slog"

	"github.com/bluesky-social/labelbot/automod/engine"
	"github.com/bluesky-social/labelbot/automod/fetch"
	"github.com/bluesky-social/labelbot/automod/helpers"
	"github.com/bluesky-social/labelbot/automod/refdata"
	"github.com/bluesky-social/labelbot/automod/rules"
	"github.com/bluesky-social/labelbot/automod/visual"

	cli "github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
)

var _ engine.PostFetcher = (*fetch.Fetcher)(nil)

func hashConfig(cctx *cli.Context) (visual.HashConfig, error) {
	hc := visual.HashConfig{
		HashSize:  cctx.Int("hash-size"),
		Threshold: cctx.Float64("hash-threshold"),
		Timeout:   cctx.Duration("image-timeout"),
	}
	return hc, hc.Validate()
}

// Reference data failures are logged and leave the affected rule as a no-op. Only invalid configuration is an error.
func loadReferenceData(cctx *cli.Context, logger *slog.Logger) *refdata.Store {
	refs, err := refdata.Load(refdata.Sources{
		WordsPath:       cctx.String("ts-words"),
		DomainsPath:     cctx.String("ts-domains"),
		NewsDomainsPath: cctx.String("news-domains"),
	})
	if err != nil {
		logger.Warn("failed to load some reference data", "err", err)
	}
	logger.Info("loaded reference data",
		"words", refs.WordCount(),
		"domains", refs.DomainCount(),
		"newsDomains", refs.NewsDomainCount(),
	)
	return refs
}

func loadImageMatcher(cctx *cli.Context, logger *slog.Logger) (*visual.HashMatcher, error) {
	hc, err := hashConfig(cctx)
	if err != nil {
		return nil, err
	}
	dir := cctx.String("dog-images")
	if dir == "" {
		logger.Info("no reference image directory configured, skipping image matching")
		return nil, nil
	}
	m, err := visual.NewHashMatcherFromDir(hc, dir, logger)
	if err != nil {
		return nil, fmt.Errorf("loading reference images: %w", err)
	}
	logger.Info("loaded reference images", "dir", dir, "count", m.ReferenceCount())
	return m, nil
}

func panicDetector(cctx *cli.Context) (*rules.PanicDetector, error) {
	if cctx.Bool("disable-panic") {
		return nil, nil
	}
	return rules.NewPanicDetector(rules.DefaultPanicKeywords, rules.DefaultPanicEmojis, cctx.Int("panic-threshold"))
}

func loadEngine(cctx *cli.Context, logger *slog.Logger) (*engine.Engine, error) {
	cfg := rules.Config{
		Extractor: helpers.ImageExtractor{
			Host:       cctx.String("blob-host"),
			ServiceDID: cctx.String("service-did"),
		},
		Refs:           loadReferenceData(cctx, logger),
		MaxImageChecks: cctx.Int("max-image-checks"),
	}

	m, err := loadImageMatcher(cctx, logger)
	if err != nil {
		// a bad image directory disables the dog rule, but not the others
		logger.Warn("image matching disabled", "err", err)
		if _, cfgErr := hashConfig(cctx); cfgErr != nil {
			return nil, cfgErr
		}
	} else if m != nil {
		cfg.Images = m
	}

	cfg.Panic, err = panicDetector(cctx)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.NewFetcher(cctx.String("appview-host"), logger)
	fetcher.Limiter = rate.NewLimiter(rate.Limit(cctx.Int("fetch-rate-limit")), 1)

	ruleset := rules.DefaultRules(cfg)
	logger.Info("configured rules", "rules", ruleset.Names())
	return &engine.Engine{
		Logger:  logger,
		Rules:   ruleset,
		Fetcher: fetcher,
	}, nil
}
