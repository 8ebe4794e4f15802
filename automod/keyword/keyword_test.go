package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenPhrases(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		tokens   []string
		maxWords int
		out      []string
	}{
		{tokens: []string{}, maxWords: 2, out: nil},
		{tokens: []string{"a"}, maxWords: 0, out: []string{"a"}},
		{tokens: []string{"a", "b", "c"}, maxWords: 1, out: []string{"a", "b", "c"}},
		{tokens: []string{"a", "b", "c"}, maxWords: 2, out: []string{"a", "a b", "b", "b c", "c"}},
		{tokens: []string{"act", "now"}, maxWords: 5, out: []string{"act", "act now", "now"}},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, TokenPhrases(fix.tokens, fix.maxWords))
	}
}
