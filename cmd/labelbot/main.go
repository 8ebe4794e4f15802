package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bluesky-social/labelbot/automod/fetch"
	"github.com/bluesky-social/labelbot/automod/helpers"
	"github.com/bluesky-social/labelbot/automod/rules"
	"github.com/bluesky-social/labelbot/automod/visual"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cli "github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "labelbot",
		Usage:   "automated post labeler (dog images, trust-and-safety, news sources, panic language)",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			Value:   "info",
			EnvVars: []string{"LABELBOT_LOG_LEVEL", "GO_LOG_LEVEL", "LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "log output format: text or json",
			Value:   "text",
			EnvVars: []string{"LABELBOT_LOG_FORMAT"},
		},
		&cli.StringFlag{
			Name:    "ts-words",
			Usage:   "path to trust-and-safety word list (CSV or JSON)",
			EnvVars: []string{"LABELBOT_TS_WORDS"},
		},
		&cli.StringFlag{
			Name:    "ts-domains",
			Usage:   "path to trust-and-safety domain list (CSV or JSON)",
			EnvVars: []string{"LABELBOT_TS_DOMAINS"},
		},
		&cli.StringFlag{
			Name:    "news-domains",
			Usage:   "path to news domain to label mapping (CSV or JSON); optional",
			EnvVars: []string{"LABELBOT_NEWS_DOMAINS"},
		},
		&cli.StringFlag{
			Name:    "dog-images",
			Usage:   "directory of reference dog images",
			EnvVars: []string{"LABELBOT_DOG_IMAGES"},
		},
		&cli.IntFlag{
			Name:    "hash-size",
			Usage:   "perceptual hash size (power of two, at least 8)",
			Value:   visual.DefaultHashSize,
			EnvVars: []string{"LABELBOT_HASH_SIZE"},
		},
		&cli.Float64Flag{
			Name:    "hash-threshold",
			Usage:   "max normalized hamming distance for an image to match",
			Value:   visual.DefaultThreshold,
			EnvVars: []string{"LABELBOT_HASH_THRESHOLD"},
		},
		&cli.DurationFlag{
			Name:    "image-timeout",
			Usage:   "timeout for each image download (0 uses the default)",
			Value:   visual.DefaultTimeout,
			EnvVars: []string{"LABELBOT_IMAGE_TIMEOUT"},
		},
		&cli.IntFlag{
			Name:    "max-image-checks",
			Usage:   "max concurrent image checks per post",
			Value:   4,
			EnvVars: []string{"LABELBOT_MAX_IMAGE_CHECKS"},
		},
		&cli.IntFlag{
			Name:    "panic-threshold",
			Usage:   "minimum score for the panic language label",
			Value:   rules.DefaultPanicThreshold,
			EnvVars: []string{"LABELBOT_PANIC_THRESHOLD"},
		},
		&cli.BoolFlag{
			Name:    "disable-panic",
			Usage:   "do not run the panic language rule",
			EnvVars: []string{"LABELBOT_DISABLE_PANIC"},
		},
		&cli.StringFlag{
			Name:    "appview-host",
			Usage:   "method, hostname, and port of AppView instance to fetch posts from",
			Value:   fetch.DefaultHost,
			EnvVars: []string{"ATP_APPVIEW_HOST"},
		},
		&cli.IntFlag{
			Name:    "fetch-rate-limit",
			Usage:   "max post fetch requests per second",
			Value:   10,
			EnvVars: []string{"LABELBOT_FETCH_RATE_LIMIT"},
		},
		&cli.StringFlag{
			Name:    "blob-host",
			Usage:   "method, hostname, and port of host serving image blobs",
			Value:   helpers.DefaultBlobHost,
			EnvVars: []string{"LABELBOT_BLOB_HOST"},
		},
		&cli.StringFlag{
			Name:    "service-did",
			Usage:   "repo DID used in blob URLs when the post author is unknown",
			Value:   helpers.DefaultServiceDID,
			EnvVars: []string{"LABELBOT_SERVICE_DID"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs (disabled if empty)",
			EnvVars: []string{"LABELBOT_METRICS_LISTEN"},
		},
	}

	app.Before = func(cctx *cli.Context) error {
		configLogger(cctx)
		return nil
	}

	app.Commands = []*cli.Command{
		labelCmd,
		scoreTextCmd,
		hashImageCmd,
		checkDataCmd,
	}

	return app.Run(args)
}

func configLogger(cctx *cli.Context) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.ToLower(cctx.String("log-format")) == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func runMetrics(listen string) {
	if listen == "" {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{
			Addr:              listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		slog.Info("starting metrics endpoint", "listen", listen)
		if err := srv.ListenAndServe(); err != nil {
			slog.Error("failed to start metrics endpoint", "err", fmt.Errorf("metrics listener: %w", err))
		}
	}()
}
