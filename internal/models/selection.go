package models

import (
	"encoding/json"
	"sort"
)

// Set is a set of strings. A nil Set means "not specified"; an empty
// non-nil Set selects nothing.
type Set map[string]struct{}

// NewSet builds a non-nil set from values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array so output is deterministic.
func (s Set) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of strings.
func (s *Set) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	if values == nil {
		*s = nil
		return nil
	}
	*s = NewSet(values...)
	return nil
}

// FilterSelection picks rows by category and country.
type FilterSelection struct {
	Categories Set `json:"categories"`
	Countries  Set `json:"countries"`
}

// Resolve returns a copy where unspecified (nil) sets are replaced by all of
// the given values. Explicitly empty sets are kept as they are.
func (f FilterSelection) Resolve(categories, countries []string) FilterSelection {
	out := f
	if out.Categories == nil {
		out.Categories = NewSet(categories...)
	}
	if out.Countries == nil {
		out.Countries = NewSet(countries...)
	}
	return out
}

// Matches reports whether a record passes both filters.
func (f FilterSelection) Matches(r ChannelRecord) bool {
	return f.Categories.Has(r.Category) && f.Countries.Has(r.Country)
}
