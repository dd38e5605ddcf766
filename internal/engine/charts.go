package engine

import "math"

// Chart types understood by the presentation layer.
const (
	ChartPie = "pie"
	ChartBar = "bar"
)

// Qualitative palette for category slices.
var categoryColors = []string{
	"#8DD3C7", "#FFFFB3", "#BEBADA", "#FB8072", "#80B1D3", "#FDB462",
	"#B3DE69", "#FCCDE5", "#D9D9D9", "#BC80BD", "#CCEBC5", "#FFED6F",
}

// Sequential blues, light to dark, for magnitude-shaded bars.
var earningsColors = []string{
	"#DEEBF7", "#C6DBEF", "#9ECAE1", "#6BAED6", "#4292C6", "#2171B5", "#08519C", "#08306B",
}

// ChartConfig is a render-ready chart description.
type ChartConfig struct {
	ChartType   string        `json:"chartType"`
	Title       string        `json:"title"`
	XAxis       string        `json:"xAxis,omitempty"`
	YAxis       string        `json:"yAxis,omitempty"`
	Orientation string        `json:"orientation,omitempty"`
	Hole        float64       `json:"hole,omitempty"`
	Series      []ChartSeries `json:"series"`
	Colors      []string      `json:"colors,omitempty"`
	ShowLegend  bool          `json:"showLegend"`
}

// ChartSeries is one named data series.
type ChartSeries struct {
	Name string       `json:"name"`
	Data []ChartPoint `json:"data"`
}

// ChartPoint is a single labelled value.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// PieChart describes the category share of a subset as a donut chart,
// largest slice first.
func PieChart(dist Distribution) ChartConfig {
	ranked := dist.Ranked()
	points := make([]ChartPoint, len(ranked))
	for i, e := range ranked {
		points[i] = ChartPoint{Label: e.Category, Value: float64(e.Count)}
	}
	return ChartConfig{
		ChartType:  ChartPie,
		Title:      "Channels by category",
		Hole:       0.3,
		Series:     []ChartSeries{{Name: "Channels", Data: points}},
		Colors:     cycle(categoryColors, len(points)),
		ShowLegend: true,
	}
}

// BarChart describes average monthly earnings per category as horizontal
// bars in the order given. Bars are shaded by magnitude.
func BarChart(avgs []CategoryAverage) ChartConfig {
	points := make([]ChartPoint, len(avgs))
	for i, a := range avgs {
		points[i] = ChartPoint{Label: a.Category, Value: roundTo2(a.AvgEarnings)}
	}
	return ChartConfig{
		ChartType:   ChartBar,
		Title:       "Average monthly earnings by category",
		XAxis:       "Average earnings ($)",
		YAxis:       "Category",
		Orientation: "h",
		Series:      []ChartSeries{{Name: "Average earnings", Data: points}},
		Colors:      shade(points),
	}
}

func cycle(palette []string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}

// shade maps each value onto earningsColors between the series min and max.
func shade(points []ChartPoint) []string {
	out := make([]string, len(points))
	if len(points) == 0 {
		return out
	}
	lo, hi := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	last := len(earningsColors) - 1
	for i, p := range points {
		idx := last
		if hi > lo {
			idx = int(math.Round((p.Value - lo) / (hi - lo) * float64(last)))
		}
		out[i] = earningsColors[idx]
	}
	return out
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
