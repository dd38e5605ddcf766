package engine

import (
	"encoding/json"
	"sort"

	"github.com/voyagen/tubestats/internal/models"
)

// CategoryCount is the number of rows in one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Distribution counts rows per category. Entries are kept in the order the
// categories first appear in the subset.
type Distribution struct {
	entries []CategoryCount
}

// CategoryDistribution counts the rows of each category present in subset.
func CategoryDistribution(subset *models.ChannelTable) Distribution {
	pos := make(map[string]int)
	var entries []CategoryCount
	subset.Each(func(_ int, r models.ChannelRecord) {
		i, ok := pos[r.Category]
		if !ok {
			i = len(entries)
			pos[r.Category] = i
			entries = append(entries, CategoryCount{Category: r.Category})
		}
		entries[i].Count++
	})
	return Distribution{entries: entries}
}

// Len returns the number of distinct categories.
func (d Distribution) Len() int { return len(d.entries) }

// Entries returns the counts in first-appearance order.
func (d Distribution) Entries() []CategoryCount {
	out := make([]CategoryCount, len(d.entries))
	copy(out, d.entries)
	return out
}

// Count returns the row count for category, zero if absent.
func (d Distribution) Count(category string) int {
	for _, e := range d.entries {
		if e.Category == category {
			return e.Count
		}
	}
	return 0
}

// Map returns the counts keyed by category.
func (d Distribution) Map() map[string]int {
	m := make(map[string]int, len(d.entries))
	for _, e := range d.entries {
		m[e.Category] = e.Count
	}
	return m
}

// Ranked returns the counts in descending order; equal counts keep their
// first-appearance order.
func (d Distribution) Ranked() []CategoryCount {
	out := d.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// MarshalJSON encodes the entries in first-appearance order, so a decoded
// Distribution answers Entries and Ranked like the original.
func (d Distribution) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Entries())
}

// UnmarshalJSON decodes a list of entries in first-appearance order.
func (d *Distribution) UnmarshalJSON(data []byte) error {
	var entries []CategoryCount
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	d.entries = entries
	return nil
}
