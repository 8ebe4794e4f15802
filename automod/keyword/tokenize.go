package keyword

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonTokenChars = regexp.MustCompile(`[^\pL\pN\s]+`)

// Splits free-form text in to tokens, including lower-case, unicode normalization, and some unicode folding.
//
// Punctuation splits tokens; it is never part of a token. This means "password123" is a single token, while "pass-word" is two.
func TokenizeText(text string) []string {
	// this function needs to be re-defined in every function call to prevent a race condition
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	split := strings.ToLower(nonTokenChars.ReplaceAllString(text, " "))
	normed, _, err := transform.String(normFunc, split)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		normed = split
	}
	return strings.Fields(normed)
}

// Normalizes a word or short phrase the same way as TokenizeText, joining tokens with a single space. Returns an empty string if there are no tokens.
func NormalizePhrase(phrase string) string {
	return strings.Join(TokenizeText(phrase), " ")
}
