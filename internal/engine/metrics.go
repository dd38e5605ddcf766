package engine

import "github.com/voyagen/tubestats/internal/models"

// Summary holds the headline metrics of a subset.
type Summary struct {
	Count          int     `json:"count"`
	AvgSubscribers float64 `json:"avg_subscribers"`
	AvgEarnings    float64 `json:"avg_earnings"`
	AvgEngagement  float64 `json:"avg_engagement"`
	TotalVideos    int64   `json:"total_videos"`
}

// Defined reports whether the averages were computed over at least one row.
func (s Summary) Defined() bool { return s.Count > 0 }

// SummaryMetrics averages subscribers, earnings and engagement and sums
// total_videos. An empty subset yields the zero Summary.
func SummaryMetrics(subset *models.ChannelTable) Summary {
	n := subset.Len()
	if n == 0 {
		return Summary{}
	}
	var subs, earnings, engagement float64
	var videos int64
	subset.Each(func(_ int, r models.ChannelRecord) {
		subs += float64(r.Subscribers)
		earnings += r.MonthlyEarnings
		engagement += r.EngagementRate
		videos += r.TotalVideos
	})
	return Summary{
		Count:          n,
		AvgSubscribers: subs / float64(n),
		AvgEarnings:    earnings / float64(n),
		AvgEngagement:  engagement / float64(n),
		TotalVideos:    videos,
	}
}
