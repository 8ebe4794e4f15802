package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bluesky-social/labelbot/automod/visual"

	cli "github.com/urfave/cli/v2"
)

var labelCmd = &cli.Command{
	Name:      "label",
	Usage:     "fetch posts and print the labels they would get",
	ArgsUsage: "<post-url-or-at-uri>...",
	Action:    runLabel,
}

var scoreTextCmd = &cli.Command{
	Name:      "score-text",
	Usage:     "score text with the panic language heuristic (reads lines from stdin if no args)",
	ArgsUsage: "[text]",
	Action:    runScoreText,
}

var hashImageCmd = &cli.Command{
	Name:      "hash-image",
	Usage:     "print the perceptual hash of local image files, and whether they match the reference set",
	ArgsUsage: "<path>...",
	Action:    runHashImage,
}

var checkDataCmd = &cli.Command{
	Name:   "check-data",
	Usage:  "load reference data and image set, reporting any problems",
	Action: runCheckData,
}

type labelResult struct {
	Ref    string   `json:"ref"`
	Labels []string `json:"labels"`
}

func runLabel(cctx *cli.Context) error {
	ctx := cctx.Context
	if cctx.Args().Len() == 0 {
		return fmt.Errorf("need at least one post URL or AT-URI")
	}
	logger := slog.Default()
	shutdown := configOTEL("labelbot")
	defer shutdown()
	runMetrics(cctx.String("metrics-listen"))

	eng, err := loadEngine(cctx, logger)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, ref := range cctx.Args().Slice() {
		labels := eng.ModerateURL(ctx, ref)
		if err := enc.Encode(labelResult{Ref: ref, Labels: labels}); err != nil {
			return err
		}
	}
	return nil
}

func runScoreText(cctx *cli.Context) error {
	det, err := panicDetector(cctx)
	if err != nil {
		return err
	}
	if det == nil {
		return fmt.Errorf("panic language rule is disabled")
	}

	score := func(text string) {
		label := det.Classify(text)
		if label == "" {
			label = "-"
		}
		fmt.Printf("%d\t%s\t%s\n", det.Score(text), label, text)
	}

	if cctx.Args().Len() > 0 {
		score(strings.Join(cctx.Args().Slice(), " "))
		return nil
	}
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		score(scanner.Text())
	}
	return scanner.Err()
}

func runHashImage(cctx *cli.Context) error {
	if cctx.Args().Len() == 0 {
		return fmt.Errorf("need at least one image path")
	}
	logger := slog.Default()
	hc, err := hashConfig(cctx)
	if err != nil {
		return err
	}
	m, err := loadImageMatcher(cctx, logger)
	if err != nil {
		return err
	}

	for _, p := range cctx.Args().Slice() {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		img, err := visual.DecodeImage(data)
		if err != nil {
			fmt.Printf("%s\terror: %v\n", p, err)
			continue
		}
		h, err := visual.HashImage(img, hc.HashSize)
		if err != nil {
			fmt.Printf("%s\terror: %v\n", p, err)
			continue
		}
		if m != nil {
			fmt.Printf("%s\t%s\tmatch=%v\n", p, h.ToString(), m.Matches(img))
		} else {
			fmt.Printf("%s\t%s\n", p, h.ToString())
		}
	}
	return nil
}

func runCheckData(cctx *cli.Context) error {
	logger := slog.Default()
	loadReferenceData(cctx, logger)
	if _, err := loadImageMatcher(cctx, logger); err != nil {
		return err
	}
	_, err := panicDetector(cctx)
	return err
}
