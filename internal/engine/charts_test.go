package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPieChart(t *testing.T) {
	chart := PieChart(CategoryDistribution(sampleTable()))

	assert.Equal(t, ChartPie, chart.ChartType)
	assert.InDelta(t, 0.3, chart.Hole, 1e-9)
	require.Len(t, chart.Series, 1)
	assert.Equal(t, []ChartPoint{
		{Label: "Gaming", Value: 3},
		{Label: "Music", Value: 2},
		{Label: "Education", Value: 1},
	}, chart.Series[0].Data)
	assert.Equal(t, categoryColors[:3], chart.Colors)
}

func TestBarChart(t *testing.T) {
	chart := BarChart([]CategoryAverage{
		{Category: "Music", AvgEarnings: 5},
		{Category: "Gaming", AvgEarnings: 15.333333},
		{Category: "Education", AvgEarnings: 40},
	})

	assert.Equal(t, ChartBar, chart.ChartType)
	assert.Equal(t, "h", chart.Orientation)
	require.Len(t, chart.Series, 1)
	assert.Equal(t, []ChartPoint{
		{Label: "Music", Value: 5},
		{Label: "Gaming", Value: 15.33},
		{Label: "Education", Value: 40},
	}, chart.Series[0].Data)
	require.Len(t, chart.Colors, 3)
	assert.Equal(t, earningsColors[0], chart.Colors[0])
	assert.Equal(t, earningsColors[len(earningsColors)-1], chart.Colors[2])
}

func TestBarChart_SingleAndEmpty(t *testing.T) {
	single := BarChart([]CategoryAverage{{Category: "Music", AvgEarnings: 5}})
	assert.Equal(t, []string{earningsColors[len(earningsColors)-1]}, single.Colors)

	empty := BarChart(nil)
	assert.Empty(t, empty.Series[0].Data)
	assert.Empty(t, empty.Colors)
}
