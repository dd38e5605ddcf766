// Package report renders dashboards for the terminal.
package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/voyagen/tubestats/internal/models"
)

// Placeholder shown for metrics of an empty selection.
const Placeholder = "—"

// Numbers formats values for display with English digit grouping.
type Numbers struct {
	p *message.Printer
}

// NewNumbers returns a formatter for tag.
func NewNumbers(tag language.Tag) Numbers {
	return Numbers{p: message.NewPrinter(tag)}
}

var english = NewNumbers(language.English)

// Count formats an integer: 1234567 -> "1,234,567".
func (n Numbers) Count(v int64) string { return n.p.Sprintf("%d", v) }

// Round formats a float rounded to a whole number with grouping.
func (n Numbers) Round(v float64) string { return n.p.Sprintf("%.0f", v) }

// Money formats whole US dollars: 12345.4 -> "$12,345".
func (n Numbers) Money(v float64) string { return "$" + n.p.Sprintf("%.0f", v) }

// Percent formats a fraction: 0.0456 -> "4.56%".
func (n Numbers) Percent(v float64) string { return n.p.Sprintf("%.2f%%", v*100) }

// Cell formats a projected value for its column.
func (n Numbers) Cell(column string, v any) string {
	switch column {
	case models.ColumnSubscribers, models.ColumnTotalVideos, models.ColumnTotalViews:
		switch x := v.(type) {
		case int64:
			return n.Count(x)
		case float64:
			return n.Round(x)
		}
	case models.ColumnMonthlyEarnings:
		if x, ok := v.(float64); ok {
			return n.Money(x)
		}
	case models.ColumnEngagementRate:
		if x, ok := v.(float64); ok {
			return n.Percent(x)
		}
	}
	if s, ok := v.(string); ok {
		return s
	}
	return n.p.Sprint(v)
}
