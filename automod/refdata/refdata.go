package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bluesky-social/labelbot/automod/helpers"
	"github.com/bluesky-social/labelbot/automod/keyword"
	"github.com/bluesky-social/labelbot/automod/setstore"
)

const (
	WordSetName   = "ts-words"
	DomainSetName = "ts-domains"
)

// Paths to reference data files. An empty path means the source is not configured.
type Sources struct {
	// trust-and-safety word list (CSV, or JSON set file with a "ts-words" set)
	WordsPath string
	// trust-and-safety domain list (CSV, or JSON set file with a "ts-domains" set)
	DomainsPath string
	// optional news domain to label mapping (CSV with domain,label columns, or a JSON object)
	NewsDomainsPath string
}

// A required reference data source could not be read or parsed.
type DataLoadError struct {
	Source string
	Path   string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("loading %s reference data (%s): %v", e.Source, e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// Static moderation reference data. Immutable after Load returns, and safe for concurrent reads.
type Store struct {
	sets setstore.SetStore
	// longest word-list entry, in tokens
	maxPhraseWords int
	news           map[string]string
}

// Returns a Store with no reference data; all lookups return false.
func NewEmptyStore() *Store {
	return NewStore(setstore.NewMemSetStore(), 1, nil)
}

// Builds a Store over an already-populated set store. maxPhraseWords bounds the phrase length tried against WordSetName.
func NewStore(sets setstore.SetStore, maxPhraseWords int, news map[string]string) *Store {
	if maxPhraseWords < 1 {
		maxPhraseWords = 1
	}
	if news == nil {
		news = map[string]string{}
	}
	return &Store{
		sets:           sets,
		maxPhraseWords: maxPhraseWords,
		news:           news,
	}
}

// Loads all configured sources.
//
// A usable Store is always returned, even when error is non-nil. Each failed source leaves the corresponding data empty and contributes a *DataLoadError to the (joined) error.
func Load(src Sources) (*Store, error) {
	s := NewEmptyStore()
	mem := setstore.NewMemSetStore()
	var errs []error

	if src.WordsPath != "" {
		if err := loadSet(&mem, WordSetName, src.WordsPath, keyword.NormalizePhrase); err != nil {
			errs = append(errs, &DataLoadError{Source: "word list", Path: src.WordsPath, Err: err})
		}
		for val := range mem.Sets[WordSetName] {
			if n := strings.Count(val, " ") + 1; n > s.maxPhraseWords {
				s.maxPhraseWords = n
			}
		}
	}
	if src.DomainsPath != "" {
		if err := loadSet(&mem, DomainSetName, src.DomainsPath, helpers.NormalizeDomain); err != nil {
			errs = append(errs, &DataLoadError{Source: "domain list", Path: src.DomainsPath, Err: err})
		}
	}
	if src.NewsDomainsPath != "" {
		news, err := loadNewsDomains(src.NewsDomainsPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// optional source: news rule is a no-op
		case err != nil:
			errs = append(errs, &DataLoadError{Source: "news domain mapping", Path: src.NewsDomainsPath, Err: err})
		default:
			s.news = news
		}
	}
	s.sets = mem
	return s, errors.Join(errs...)
}

func isJSON(p string) bool {
	return strings.EqualFold(filepath.Ext(p), ".json")
}

func loadSet(sets *setstore.MemSetStore, name, p string, norm setstore.NormalizeFunc) error {
	if isJSON(p) {
		return sets.LoadFromFileJSON(p, norm, name)
	}
	return sets.LoadFromFileCSV(name, p, norm)
}

// Loads domain to label pairs. Duplicate domains (after normalization) are last-wins.
func loadNewsDomains(p string) (map[string]string, error) {
	out := make(map[string]string)
	if isJSON(p) {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		for d, label := range m {
			addNewsDomain(out, d, label)
		}
		return out, nil
	}

	rows, err := setstore.ReadCSV(p)
	if err != nil {
		return nil, err
	}
	domainCol, labelCol := 0, 1
	for i, row := range rows {
		if i == 0 && setstore.IsHeaderRow(row) {
			for j, name := range row {
				switch strings.ToLower(strings.TrimSpace(name)) {
				case "domain", "url":
					domainCol = j
				case "label", "source", "name":
					labelCol = j
				}
			}
			continue
		}
		if len(row) <= domainCol || len(row) <= labelCol {
			return nil, fmt.Errorf("row %d: expected domain and label columns, got %d fields", i+1, len(row))
		}
		addNewsDomain(out, row[domainCol], row[labelCol])
	}
	return out, nil
}

func addNewsDomain(m map[string]string, domain, label string) {
	d := helpers.NormalizeDomain(domain)
	label = strings.TrimSpace(label)
	if d == "" || label == "" {
		return
	}
	m[d] = label
}

// Whether the text contains any word-list entry as a whole token (or run of tokens, for multi-word entries). Case-insensitive.
func (s *Store) ContainsWord(text string) bool {
	if s.sets.Size(WordSetName) == 0 {
		return false
	}
	ctx := context.Background()
	for _, phrase := range keyword.TokenPhrases(keyword.TokenizeText(text), s.maxPhraseWords) {
		if ok, _ := s.sets.InSet(ctx, WordSetName, phrase); ok {
			return true
		}
	}
	return false
}

// Whether any URL or hostname in the text is a domain-list entry, or a subdomain of one.
func (s *Store) ContainsDomain(text string) bool {
	return s.MatchDomains(helpers.ExtractTextDomains(text))
}

// Whether any of the (already normalized) domains is a domain-list entry, or a subdomain of one.
func (s *Store) MatchDomains(domains []string) bool {
	if s.sets.Size(DomainSetName) == 0 {
		return false
	}
	ctx := context.Background()
	for _, d := range domains {
		for _, candidate := range helpers.ParentDomains(d) {
			if ok, _ := s.sets.InSet(ctx, DomainSetName, candidate); ok {
				return true
			}
		}
	}
	return false
}

// Returns the news label for a domain (or its closest parent domain), if any.
func (s *Store) LabelForDomain(domain string) (string, bool) {
	if len(s.news) == 0 {
		return "", false
	}
	for _, candidate := range helpers.ParentDomains(helpers.NormalizeDomain(domain)) {
		if label, ok := s.news[candidate]; ok {
			return label, true
		}
	}
	return "", false
}

func (s *Store) WordCount() int {
	return s.sets.Size(WordSetName)
}

func (s *Store) DomainCount() int {
	return s.sets.Size(DomainSetName)
}

func (s *Store) NewsDomainCount() int {
	return len(s.news)
}
