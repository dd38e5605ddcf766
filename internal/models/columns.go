package models

// Column names of the source table, matched exactly against the header row.
const (
	ColumnChannelName     = "channel_name"
	ColumnCategory        = "category"
	ColumnCountry         = "country"
	ColumnSubscribers     = "subscribers"
	ColumnMonthlyEarnings = "monthly_earnings"
	ColumnEngagementRate  = "engagement_rate"
	ColumnTotalVideos     = "total_videos"
	ColumnTotalViews      = "total_views"
)

// RequiredColumns lists every column a source must provide, in canonical order.
var RequiredColumns = []string{
	ColumnChannelName,
	ColumnCategory,
	ColumnCountry,
	ColumnSubscribers,
	ColumnMonthlyEarnings,
	ColumnEngagementRate,
	ColumnTotalVideos,
	ColumnTotalViews,
}

// DisplayColumns is the default projection for the channel table view.
var DisplayColumns = []string{
	ColumnChannelName,
	ColumnCategory,
	ColumnSubscribers,
	ColumnMonthlyEarnings,
	ColumnEngagementRate,
}

// IsColumn reports whether name is one of the required columns.
func IsColumn(name string) bool {
	for _, c := range RequiredColumns {
		if c == name {
			return true
		}
	}
	return false
}
