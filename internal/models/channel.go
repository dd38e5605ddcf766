package models

// ChannelRecord is one row of the channel statistics table.
type ChannelRecord struct {
	ChannelName     string  `json:"channel_name"`
	Category        string  `json:"category"`
	Country         string  `json:"country"`
	Subscribers     int64   `json:"subscribers"`
	MonthlyEarnings float64 `json:"monthly_earnings"` // USD
	EngagementRate  float64 `json:"engagement_rate"`  // fraction in [0,1]
	TotalVideos     int64   `json:"total_videos"`
	TotalViews      int64   `json:"total_views"`
}

// Value returns the field for a column name and whether the column exists.
func (r ChannelRecord) Value(column string) (any, bool) {
	switch column {
	case ColumnChannelName:
		return r.ChannelName, true
	case ColumnCategory:
		return r.Category, true
	case ColumnCountry:
		return r.Country, true
	case ColumnSubscribers:
		return r.Subscribers, true
	case ColumnMonthlyEarnings:
		return r.MonthlyEarnings, true
	case ColumnEngagementRate:
		return r.EngagementRate, true
	case ColumnTotalVideos:
		return r.TotalVideos, true
	case ColumnTotalViews:
		return r.TotalViews, true
	}
	return nil, false
}
