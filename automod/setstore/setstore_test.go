package setstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeFile(t *testing.T, name, content string) string {
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestMemSetStore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewMemSetStore()
	s.Add("words", "hello")
	s.Add("words", "")

	ok, err := s.InSet(ctx, "words", "hello")
	assert.NoError(err)
	assert.True(ok)
	ok, err = s.InSet(ctx, "words", "Hello")
	assert.NoError(err)
	assert.False(ok)
	ok, err = s.InSet(ctx, "missing-set", "hello")
	assert.NoError(err)
	assert.False(ok)
	assert.Equal(1, s.Size("words"))
	assert.Equal(0, s.Size("missing-set"))
}

func TestLoadFromFileCSV(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	p := writeFile(t, "words.csv", "Word\n  Scam \n\n# a comment\n,\nFREE MONEY,extra\n")
	s := NewMemSetStore()
	assert.NoError(s.LoadFromFileCSV("words", p, nil))
	assert.Equal(2, s.Size("words"))
	for _, v := range []string{"scam", "free money"} {
		ok, _ := s.InSet(ctx, "words", v)
		assert.True(ok, v)
	}
	ok, _ := s.InSet(ctx, "words", "word")
	assert.False(ok)

	upper := func(v string) string { return strings.ToUpper(strings.TrimSpace(v)) }
	s2 := NewMemSetStore()
	assert.NoError(s2.LoadFromFileCSV("words", p, upper))
	ok, _ = s2.InSet(ctx, "words", "SCAM")
	assert.True(ok)

	assert.Error(s.LoadFromFileCSV("words", filepath.Join(t.TempDir(), "nope.csv"), nil))
	bad := writeFile(t, "bad.csv", "\"unterminated\n")
	assert.Error(s.LoadFromFileCSV("words", bad, nil))
}

func TestLoadFromFileJSON(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	p := writeFile(t, "sets.json", `{"ts-words": ["Scam", " spam "], "other": ["x"]}`)
	s := NewMemSetStore()
	assert.NoError(s.LoadFromFileJSON(p, nil, "ts-words"))
	assert.Equal(2, s.Size("ts-words"))
	assert.Equal(0, s.Size("other"))
	ok, _ := s.InSet(ctx, "ts-words", "spam")
	assert.True(ok)

	all := NewMemSetStore()
	assert.NoError(all.LoadFromFileJSON(p, nil))
	assert.Equal(1, all.Size("other"))

	bad := writeFile(t, "bad.json", `["not", "a", "map"]`)
	assert.Error(s.LoadFromFileJSON(bad, nil))
}

func TestIsHeaderRow(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsHeaderRow([]string{"Domain"}))
	assert.True(IsHeaderRow([]string{"domain", " Label "}))
	assert.False(IsHeaderRow([]string{"example.com"}))
	assert.False(IsHeaderRow([]string{"domain", "reuters"}))
	assert.False(IsHeaderRow([]string{"", ""}))
}
