package rules

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cloudflare/ahocorasick"
)

var ErrInvalidPanicConfig = errors.New("invalid panic language configuration")

const DefaultPanicThreshold = 2

var DefaultPanicKeywords = []string{
	"emergency",
	"breaking",
	"alert",
	"urgent",
	"evacuate",
	"crisis",
	"do not ignore",
	"act now",
	"warning",
	"immediately",
	"catastrophe",
	"panic",
	"danger",
	"critical",
	"disaster",
}

var DefaultPanicEmojis = []string{"🚨", "⚠️", "‼️", "❗", "❕"}

// Scores text for alarmist "panic" language. Each signal adds at most one to the score:
//
//   - any keyword, as a case-insensitive substring
//   - any emoji
//   - any all-uppercase word of more than three characters
//   - "!!!" or "???"
type PanicDetector struct {
	keywords  *ahocorasick.Matcher
	emojis    *ahocorasick.Matcher
	threshold int
}

func NewPanicDetector(keywords, emojis []string, threshold int) (*PanicDetector, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("%w: threshold must be at least 1, got %d", ErrInvalidPanicConfig, threshold)
	}
	var lower []string
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lower = append(lower, kw)
		}
	}
	var emo []string
	for _, e := range emojis {
		if e != "" {
			emo = append(emo, e)
		}
	}
	return &PanicDetector{
		keywords:  newMatcher(lower),
		emojis:    newMatcher(emo),
		threshold: threshold,
	}, nil
}

func newMatcher(patterns []string) *ahocorasick.Matcher {
	if len(patterns) == 0 {
		return nil
	}
	return ahocorasick.NewStringMatcher(patterns)
}

func DefaultPanicDetector() *PanicDetector {
	det, err := NewPanicDetector(DefaultPanicKeywords, DefaultPanicEmojis, DefaultPanicThreshold)
	if err != nil {
		panic(err)
	}
	return det
}

func (d *PanicDetector) Threshold() int {
	return d.threshold
}

func (d *PanicDetector) Score(text string) int {
	if text == "" {
		return 0
	}
	score := 0
	if matchAny(d.keywords, strings.ToLower(text)) {
		score++
	}
	if matchAny(d.emojis, text) {
		score++
	}
	for _, w := range strings.Fields(text) {
		if utf8.RuneCountInString(w) > 3 && isShouting(w) {
			score++
			break
		}
	}
	if strings.Contains(text, "!!!") || strings.Contains(text, "???") {
		score++
	}
	return score
}

// Returns the panic label if the text scores at or above threshold, otherwise an empty string.
func (d *PanicDetector) Classify(text string) string {
	if text == "" {
		return ""
	}
	if d.Score(text) >= d.threshold {
		return PanicLabel
	}
	return ""
}

func matchAny(m *ahocorasick.Matcher, text string) bool {
	if m == nil {
		return false
	}
	return len(m.MatchThreadSafe([]byte(text))) > 0
}

// at least one cased letter, and no lowercase (or titlecase) letters
func isShouting(word string) bool {
	cased := false
	for _, r := range word {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
