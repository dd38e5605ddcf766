package engine

import (
	"sort"

	"github.com/voyagen/tubestats/internal/models"
)

// TopBySubscribers returns up to n records with the most subscribers, in
// descending order. Ties keep table order. n <= 0 returns an empty slice.
func TopBySubscribers(subset *models.ChannelTable, n int) []models.ChannelRecord {
	if n <= 0 {
		return []models.ChannelRecord{}
	}
	rows := subset.Records()
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Subscribers > rows[j].Subscribers
	})
	if n < len(rows) {
		rows = rows[:n]
	}
	return rows
}
