package engine

import "github.com/voyagen/tubestats/internal/models"

// Options lists the distinct filter values of a table in first-appearance
// order. They are both the choices offered and the default selection.
type Options struct {
	Categories []string `json:"categories"`
	Countries  []string `json:"countries"`
}

// Selection returns a FilterSelection with every option selected.
func (o Options) Selection() models.FilterSelection {
	return models.FilterSelection{
		Categories: models.NewSet(o.Categories...),
		Countries:  models.NewSet(o.Countries...),
	}
}

// TableStats are quick totals over the unfiltered table.
type TableStats struct {
	Channels   int   `json:"channels"`
	TotalViews int64 `json:"total_views"`
}

// TableOptions collects the distinct categories and countries of table.
func TableOptions(table *models.ChannelTable) Options {
	opts := Options{Categories: []string{}, Countries: []string{}}
	seenCat := make(map[string]struct{})
	seenCountry := make(map[string]struct{})
	table.Each(func(_ int, r models.ChannelRecord) {
		if _, ok := seenCat[r.Category]; !ok {
			seenCat[r.Category] = struct{}{}
			opts.Categories = append(opts.Categories, r.Category)
		}
		if _, ok := seenCountry[r.Country]; !ok {
			seenCountry[r.Country] = struct{}{}
			opts.Countries = append(opts.Countries, r.Country)
		}
	})
	return opts
}

// Stats counts channels and sums total_views over table.
func Stats(table *models.ChannelTable) TableStats {
	var views int64
	table.Each(func(_ int, r models.ChannelRecord) {
		views += r.TotalViews
	})
	return TableStats{Channels: table.Len(), TotalViews: views}
}
