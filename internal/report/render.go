package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/voyagen/tubestats/internal/models"
	"github.com/voyagen/tubestats/internal/service"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	colorBold  = color.New(color.Bold)
	colorCyan  = color.New(color.FgCyan)
	colorGreen = color.New(color.FgGreen)
	colorDim   = color.New(color.Faint)
)

// Render writes d to w in the given format.
func Render(w io.Writer, d *service.Dashboard, format string) error {
	switch format {
	case FormatJSON:
		return RenderJSON(w, d)
	case FormatText, "":
		return RenderText(w, d)
	}
	return fmt.Errorf("unknown format %q (want %s or %s)", format, FormatText, FormatJSON)
}

// RenderJSON writes d as indented JSON.
func RenderJSON(w io.Writer, d *service.Dashboard) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// RenderText writes d as a sectioned terminal report.
func RenderText(w io.Writer, d *service.Dashboard) error {
	r := &textRenderer{w: w, n: english}
	r.header(d)
	r.summary(d)
	r.top(d)
	r.distribution(d)
	r.earnings(d)
	r.channels(d)
	return r.err
}

// textRenderer keeps the first write error and skips later writes.
type textRenderer struct {
	w   io.Writer
	n   Numbers
	err error
}

func (r *textRenderer) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *textRenderer) section(title string) {
	r.printf("\n%s\n", colorBold.Sprint(title))
}

func (r *textRenderer) table(t *Table) {
	if r.err != nil {
		return
	}
	if t.Len() == 0 {
		r.printf("  %s\n", colorDim.Sprint("no channels match the selection"))
		return
	}
	r.err = t.Render(r.w)
}

func (r *textRenderer) header(d *service.Dashboard) {
	r.printf("%s  %s\n", colorBold.Sprint("Channel statistics"), colorDim.Sprint(d.Source.String()))
	r.printf("  loaded %s, snapshot %s\n", d.LoadedAt.Format(time.RFC3339), d.SnapshotID)
	r.printf("  %s channels, %s total views\n", r.n.Count(int64(d.Stats.Channels)), r.n.Count(d.Stats.TotalViews))
	r.printf("  categories: %s\n", selectionLine(d.Selection.Categories.Sorted(), len(d.Options.Categories)))
	r.printf("  countries:  %s\n", selectionLine(d.Selection.Countries.Sorted(), len(d.Options.Countries)))
}

func selectionLine(selected []string, total int) string {
	switch {
	case len(selected) == 0:
		return "none"
	case len(selected) == total:
		return fmt.Sprintf("all (%d)", total)
	}
	return strings.Join(selected, ", ")
}

func (r *textRenderer) summary(d *service.Dashboard) {
	r.section("Summary")
	s := d.Summary
	subs, earnings, engagement := Placeholder, Placeholder, Placeholder
	if s.Defined() {
		subs = r.n.Round(s.AvgSubscribers)
		earnings = r.n.Money(s.AvgEarnings)
		engagement = r.n.Percent(s.AvgEngagement)
	}
	t := NewTable(Column{Header: "Metric"}, Column{Header: "Value", Align: AlignRight, Color: colorCyan.Sprint})
	t.AddRow("Channels", r.n.Count(int64(s.Count)))
	t.AddRow("Avg subscribers", subs)
	t.AddRow("Avg monthly earnings", earnings)
	t.AddRow("Avg engagement", engagement)
	t.AddRow("Total videos", r.n.Count(s.TotalVideos))
	r.table(t)
}

func (r *textRenderer) top(d *service.Dashboard) {
	r.section(fmt.Sprintf("Top %d channels by subscribers", len(d.Top)))
	t := NewTable(
		Column{Header: "#", Align: AlignRight},
		Column{Header: "Channel", Color: colorGreen.Sprint},
		Column{Header: "Subscribers", Align: AlignRight},
		Column{Header: "Earnings/month", Align: AlignRight},
		Column{Header: "Engagement", Align: AlignRight},
	)
	for i, c := range d.Top {
		t.AddRow(fmt.Sprint(i+1), c.ChannelName, r.n.Count(c.Subscribers), r.n.Money(c.MonthlyEarnings), r.n.Percent(c.EngagementRate))
	}
	r.table(t)
}

func (r *textRenderer) distribution(d *service.Dashboard) {
	r.section("Channels by category")
	t := NewTable(
		Column{Header: "Category"},
		Column{Header: "Channels", Align: AlignRight},
		Column{Header: "Share", Align: AlignRight},
	)
	total := d.Summary.Count
	for _, e := range d.Distribution.Ranked() {
		t.AddRow(e.Category, r.n.Count(int64(e.Count)), r.n.Percent(float64(e.Count)/float64(total)))
	}
	r.table(t)
}

func (r *textRenderer) earnings(d *service.Dashboard) {
	r.section("Average monthly earnings by category")
	t := NewTable(
		Column{Header: "Category"},
		Column{Header: "Avg earnings", Align: AlignRight, Color: colorCyan.Sprint},
		Column{Header: "Channels", Align: AlignRight},
	)
	for _, a := range d.EarningsByCategory {
		t.AddRow(a.Category, r.n.Money(a.AvgEarnings), r.n.Count(int64(a.Channels)))
	}
	r.table(t)
}

func (r *textRenderer) channels(d *service.Dashboard) {
	r.section("Channels")
	cols := make([]Column, len(d.Table.Columns))
	for i, c := range d.Table.Columns {
		cols[i] = Column{Header: c}
		if numeric(c) {
			cols[i].Align = AlignRight
		}
	}
	t := NewTable(cols...)
	for _, row := range d.Table.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = r.n.Cell(d.Table.Columns[i], v)
		}
		t.AddRow(cells...)
	}
	r.table(t)
}

func numeric(column string) bool {
	switch column {
	case models.ColumnChannelName, models.ColumnCategory, models.ColumnCountry:
		return false
	}
	return true
}
