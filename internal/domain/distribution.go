package domain

// Bucket is one category of a distribution and the number of rows in it.
type Bucket struct {
	Category Value
	Count    int
}

// Distribution is an ordered category to count summary that drives a chart.
type Distribution []Bucket

// Total returns the sum of all bucket counts.
func (d Distribution) Total() int {
	total := 0
	for _, b := range d {
		total += b.Count
	}
	return total
}

// MaxCount returns the largest bucket count, or 0 for an empty distribution.
func (d Distribution) MaxCount() int {
	m := 0
	for _, b := range d {
		if b.Count > m {
			m = b.Count
		}
	}
	return m
}

// ChartType selects how a distribution is drawn.
type ChartType string

// Supported chart types.
const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
)

// ChartTypes lists the selectable chart types in display order.
var ChartTypes = []ChartType{ChartBar, ChartLine}

// Label returns the selector label for the chart type.
func (c ChartType) Label() string {
	if c == ChartLine {
		return "Line Chart"
	}
	return "Bar Chart"
}

// ParseChartType accepts either the identifier ("bar", "line") or the label
// ("Bar Chart", "Line Chart"). Anything else falls back to ChartBar.
func ParseChartType(s string) ChartType {
	switch s {
	case string(ChartLine), ChartLine.Label():
		return ChartLine
	default:
		return ChartBar
	}
}
