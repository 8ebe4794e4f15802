package setstore

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

type SetStore interface {
	InSet(ctx context.Context, name, val string) (bool, error)
	Size(name string) int
}

var _ SetStore = MemSetStore{}

// Named sets of strings, held in memory.
//
// Not safe for concurrent mutation. Sets are expected to be fully loaded before any concurrent reads begin, and never modified after.
type MemSetStore struct {
	Sets map[string]map[string]bool
}

// Normalizes a raw value before it is added to a set. Returning an empty string drops the value.
type NormalizeFunc = func(string) string

func NewMemSetStore() MemSetStore {
	return MemSetStore{
		Sets: make(map[string]map[string]bool),
	}
}

func (s MemSetStore) InSet(ctx context.Context, name, val string) (bool, error) {
	set, ok := s.Sets[name]
	if !ok {
		// NOTE: currently returns false when entire set isn't found
		return false, nil
	}
	_, ok = set[val]
	return ok, nil
}

// Number of entries in the named set (zero if the set doesn't exist).
func (s MemSetStore) Size(name string) int {
	return len(s.Sets[name])
}

// Adds a value to the named set, creating the set if needed. Empty values are ignored.
func (s MemSetStore) Add(name, val string) {
	if val == "" {
		return
	}
	set, ok := s.Sets[name]
	if !ok {
		set = make(map[string]bool)
		s.Sets[name] = set
	}
	set[val] = true
}

// Loads sets from a JSON file mapping set names to lists of values. Only the sets listed in names are loaded; if names is empty, all sets in the file are loaded.
func (s *MemSetStore) LoadFromFileJSON(p string, norm NormalizeFunc, names ...string) error {

	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var rules map[string][]string
	if err := json.Unmarshal(raw, &rules); err != nil {
		return err
	}

	for name, l := range rules {
		if len(names) > 0 && !slices.Contains(names, name) {
			continue
		}
		if _, ok := s.Sets[name]; !ok {
			s.Sets[name] = make(map[string]bool, len(l))
		}
		for _, val := range l {
			s.Add(name, applyNorm(norm, val))
		}
	}
	return nil
}

// Loads a single set from a CSV file: one value per row, from the first column.
//
// Lines starting with '#' are comments. If the first row looks like a header (see IsHeaderRow), it is skipped.
func (s *MemSetStore) LoadFromFileCSV(name, p string, norm NormalizeFunc) error {
	rows, err := ReadCSV(p)
	if err != nil {
		return err
	}
	if _, ok := s.Sets[name]; !ok {
		s.Sets[name] = make(map[string]bool, len(rows))
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if i == 0 && IsHeaderRow(row) {
			continue
		}
		s.Add(name, applyNorm(norm, row[0]))
	}
	return nil
}

// column names which indicate the first row of a CSV file is a header, not data
var headerNames = []string{"word", "words", "domain", "domains", "url", "source", "label", "name"}

// Whether every non-empty field of the row is a well-known column name.
func IsHeaderRow(row []string) bool {
	found := false
	for _, f := range row {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if !slices.Contains(headerNames, f) {
			return false
		}
		found = true
	}
	return found
}

// Reads all rows of a CSV file. Rows may have varying numbers of fields.
func ReadCSV(p string) ([][]string, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV %s: %w", p, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func applyNorm(norm NormalizeFunc, val string) string {
	if norm == nil {
		return strings.ToLower(strings.TrimSpace(val))
	}
	return norm(val)
}
