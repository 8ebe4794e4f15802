package keyword

import (
	"strings"
)

// Returns all runs of consecutive tokens, up to maxWords long, each joined with a single space.
//
// Used to match multi-word phrases against a set of normalized phrases, without falling back to substring matching.
func TokenPhrases(tokens []string, maxWords int) []string {
	if maxWords < 1 {
		maxWords = 1
	}
	var out []string
	for i := range tokens {
		for n := 1; n <= maxWords && i+n <= len(tokens); n++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
