package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTextURLs(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		s   string
		out []string
	}{
		{s: "", out: nil},
		{s: "no links here, example.com is bare", out: nil},
		{
			s:   "see https://www.reuters.com/world and http://example.com/a%20b?x=1",
			out: []string{"https://www.reuters.com/world", "http://example.com/a%20b?x=1"},
		},
		{s: "ftp://files.example.com/x", out: nil},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, ExtractTextURLs(fix.s))
	}
}

func TestExtractTextLinks(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		s   string
		out []string
	}{
		{
			s:   "this is a description with example.com mentioned in the middle",
			out: []string{"example.com"},
		},
		{
			s:   "this is another example with https://en.wikipedia.org/index.html: and archive.org, and https://eff.org/... and bsky.app.",
			out: []string{"https://en.wikipedia.org/index.html", "archive.org", "https://eff.org/", "bsky.app"},
		},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, ExtractTextLinks(fix.s))
	}
}

func TestDomainOf(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		url    string
		domain string
	}{
		{url: "", domain: ""},
		{url: "not a url", domain: ""},
		{url: "http://%zz", domain: ""},
		{url: "https://www.reuters.com/world", domain: "reuters.com"},
		{url: "HTTPS://WWW.Reuters.COM:443/world", domain: "reuters.com"},
		{url: "https://edition.cnn.com/", domain: "edition.cnn.com"},
		{url: "http://wwwexample.com", domain: "wwwexample.com"},
		{url: "https://www.reuters.com.", domain: "reuters.com"},
		{url: "https://reuters.com)", domain: "reuters.com"},
		{url: "https://reuters.com),", domain: "reuters.com"},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.domain, DomainOf(fix.url), fix.url)
	}
}

func TestExtractTextDomains(t *testing.T) {
	assert := assert.New(t)

	assert.Empty(ExtractTextDomains("nothing to see"))
	assert.Equal(
		[]string{"sub.example.com", "reuters.com"},
		ExtractTextDomains("read sub.example.com and https://www.reuters.com/world and www.reuters.com again"),
	)
}

func TestParentDomains(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(ParentDomains(""))
	assert.Equal([]string{"com"}, ParentDomains("com"))
	assert.Equal([]string{"a.b.com", "b.com", "com"}, ParentDomains("a.b.com"))
}

func TestHashOfString(t *testing.T) {
	assert := assert.New(t)

	// hashing function should be consistent over time
	assert.Equal("4e6f69c0e3d10992", HashOfString("dummy-value"))
}

func TestDedupeStrings(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(DedupeStrings(nil))
	assert.Equal([]string{"b", "a"}, DedupeStrings([]string{"b", "a", "b"}))
}
