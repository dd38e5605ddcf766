// Package engine computes the derived views of a channel table: filtered
// subsets, summary metrics, category distribution, rankings, per-category
// averages, and column projections.
//
// Every function is pure. Inputs are never modified and identical inputs
// produce identical outputs, including order.
package engine

import "github.com/voyagen/tubestats/internal/models"

// Filter returns the rows whose category is in sel.Categories and whose
// country is in sel.Countries, in table order. A nil or empty set on either
// side selects nothing; callers resolve defaults with FilterSelection.Resolve.
func Filter(table *models.ChannelTable, sel models.FilterSelection) *models.ChannelTable {
	if len(sel.Categories) == 0 || len(sel.Countries) == 0 {
		return models.NewChannelTable(nil)
	}
	out := make([]models.ChannelRecord, 0, table.Len())
	table.Each(func(_ int, r models.ChannelRecord) {
		if sel.Matches(r) {
			out = append(out, r)
		}
	})
	return models.NewChannelTable(out)
}
