package helpers

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/purell"
	"github.com/spaolacci/murmur3"
)

func DedupeStrings(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range in {
		if !seen[v] {
			out = append(out, v)
			seen[v] = true
		}
	}
	return out
}

// returns a fast, compact hash of a string
//
// current implementation uses murmur3, default seed, and hex encoding
func HashOfString(s string) string {
	val := murmur3.Sum64([]byte(s))
	return fmt.Sprintf("%016x", val)
}

// http(s) URLs only: scheme, then host/path characters, including percent-encoded bytes
var urlRegex = regexp.MustCompile(`https?://(?:[$-_a-zA-Z0-9@.&+!*(),]|%[0-9a-fA-F]{2})+`)

// based on: https://stackoverflow.com/a/48769624, with no trailing period allowed. scheme is optional, so this also matches bare hostnames
var linkRegex = regexp.MustCompile(`(?:(?:https?|ftp):\/\/)?[\w/\-?=%.]+\.[\w/\-&?=%.]*[\w/\-&?=%]+`)

// Extracts full http/https URLs from free text.
func ExtractTextURLs(raw string) []string {
	return urlRegex.FindAllString(raw, -1)
}

// Permissive version of ExtractTextURLs, which also matches bare hostnames like "example.com".
func ExtractTextLinks(raw string) []string {
	return linkRegex.FindAllString(raw, -1)
}

// Returns the normalized domain of a URL: lower-case host, without port or leading "www.". Returns an empty string for malformed URLs, or URLs without a host.
func DomainOf(raw string) string {
	clean, err := purell.NormalizeURLString(raw, purell.FlagLowercaseScheme|purell.FlagLowercaseHost|purell.FlagRemoveWWW)
	if err != nil {
		return ""
	}
	u, err := url.Parse(clean)
	if err != nil {
		return ""
	}
	// links pulled from prose often carry sentence punctuation
	host := strings.TrimRight(strings.ToLower(u.Hostname()), ".,;:!?)]'\"")
	return strings.TrimPrefix(host, "www.")
}

// Normalizes a bare domain (or a URL) the same way as DomainOf.
func NormalizeDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	return DomainOf(raw)
}

// Extracts de-duplicated, normalized domains for all URLs and bare hostnames in free text.
func ExtractTextDomains(raw string) []string {
	var out []string
	for _, l := range ExtractTextLinks(raw) {
		d := NormalizeDomain(l)
		if d != "" && strings.Contains(d, ".") {
			out = append(out, d)
		}
	}
	return DedupeStrings(out)
}

// Returns the domain followed by each of its parent domains, eg "a.b.com" gives ["a.b.com", "b.com", "com"].
func ParentDomains(domain string) []string {
	if domain == "" {
		return nil
	}
	out := []string{domain}
	for {
		idx := strings.IndexByte(domain, '.')
		if idx < 0 || idx == len(domain)-1 {
			break
		}
		domain = domain[idx+1:]
		out = append(out, domain)
	}
	return out
}
