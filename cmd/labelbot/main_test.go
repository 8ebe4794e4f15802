package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	cli "github.com/urfave/cli/v2"
)

func testContext(t *testing.T, args ...string) *cli.Context {
	app := &cli.App{Name: "labelbot"}
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("ts-words", "", "")
	set.String("ts-domains", "", "")
	set.String("news-domains", "", "")
	set.String("dog-images", "", "")
	set.Int("hash-size", 16, "")
	set.Float64("hash-threshold", 0.3, "")
	set.Duration("image-timeout", 0, "")
	set.Int("max-image-checks", 4, "")
	set.Int("panic-threshold", 2, "")
	set.Bool("disable-panic", false, "")
	set.String("appview-host", "https://public.api.bsky.app", "")
	set.Int("fetch-rate-limit", 10, "")
	set.String("blob-host", "https://bsky.social", "")
	set.String("service-did", "did:plc:swmumnkmw5osopckigoal7ox", "")
	if err := set.Parse(args); err != nil {
		t.Fatal(err)
	}
	return cli.NewContext(app, set, nil)
}

func TestLoadEngine(t *testing.T) {
	assert := assert.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dir := t.TempDir()
	words := filepath.Join(dir, "words.csv")
	if err := os.WriteFile(words, []byte("word\nscam\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cctx := testContext(t, "-ts-words", words, "-ts-domains", filepath.Join(dir, "missing.csv"), "-dog-images", filepath.Join(dir, "no-such-dir"))
	eng, err := loadEngine(cctx, logger)
	assert.NoError(err)
	assert.Equal([]string{"dog-image", "trust-and-safety", "news-domain", "panic-language"}, eng.Rules.Names())

	cctx = testContext(t, "-disable-panic")
	eng, err = loadEngine(cctx, logger)
	assert.NoError(err)
	assert.Equal([]string{"dog-image", "trust-and-safety", "news-domain"}, eng.Rules.Names())
	assert.Equal([]string{}, eng.Moderate(context.Background(), nil))

	_, err = loadEngine(testContext(t, "-hash-size", "12"), logger)
	assert.Error(err)
	_, err = loadEngine(testContext(t, "-panic-threshold", "0"), logger)
	assert.Error(err)
}
