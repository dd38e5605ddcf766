package engine

import (
	"sort"

	"github.com/voyagen/tubestats/internal/models"
)

// CategoryAverage is the mean monthly earnings of one category.
type CategoryAverage struct {
	Category    string  `json:"category"`
	AvgEarnings float64 `json:"avg_earnings"`
	Channels    int     `json:"channels"`
}

// AvgEarningsByCategory groups subset by category and returns the mean
// monthly earnings of each group, ascending. Equal means keep the order in
// which their categories first appear.
func AvgEarningsByCategory(subset *models.ChannelTable) []CategoryAverage {
	type acc struct {
		sum float64
		n   int
	}
	pos := make(map[string]int)
	var order []string
	var sums []acc

	subset.Each(func(_ int, r models.ChannelRecord) {
		i, ok := pos[r.Category]
		if !ok {
			i = len(order)
			pos[r.Category] = i
			order = append(order, r.Category)
			sums = append(sums, acc{})
		}
		sums[i].sum += r.MonthlyEarnings
		sums[i].n++
	})

	out := make([]CategoryAverage, len(order))
	for i, c := range order {
		out[i] = CategoryAverage{
			Category:    c,
			AvgEarnings: sums[i].sum / float64(sums[i].n),
			Channels:    sums[i].n,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvgEarnings < out[j].AvgEarnings
	})
	return out
}
