package render

import (
	"strconv"

	"ukm-ponja/internal/chart"
)

// WrapWidth is the rune count after which a category label moves to a second line.
const WrapWidth = 35

// NoDataText replaces the chart when there is nothing to draw.
const NoDataText = "Belum ada data untuk ditampilkan"

// headroom leaves space right of the longest bar for its value label.
const headroom = 1.15

// Bar is one horizontal bar. Row 0 is the top of the chart.
type Bar struct {
	Row       int     `json:"row"`
	Name      string  `json:"name"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	ValueText string  `json:"valueText"`
}

// Layout is everything needed to draw the chart, independent of the drawing library.
type Layout struct {
	Title       string  `json:"title"`
	Bars        []Bar   `json:"bars"`
	AxisMin     float64 `json:"axisMin"`
	AxisMax     float64 `json:"axisMax"`
	Empty       bool    `json:"empty"`
	Placeholder string  `json:"placeholder,omitempty"`
}

// NewLayout places one bar per record in dataset order, first record on top.
// The title is passed in because it comes from the config, not the data.
// An empty dataset gives an Empty layout carrying NoDataText.
func NewLayout(title string, ds chart.Dataset) Layout {
	l := Layout{Title: title, Bars: make([]Bar, 0, len(ds))}
	if len(ds) == 0 {
		l.Empty = true
		l.Placeholder = NoDataText
		l.AxisMax = 1
		return l
	}
	for i, r := range ds {
		l.Bars = append(l.Bars, Bar{
			Row:       i,
			Name:      r.Name,
			Label:     WrapLabel(r.Name),
			Value:     r.Value,
			ValueText: FormatValue(r.Value),
		})
	}
	if lo := ds.Min(); lo < 0 {
		l.AxisMin = lo * headroom
	}
	l.AxisMax = ds.Max() * headroom
	if l.AxisMax <= 0 {
		l.AxisMax = 1
	}
	return l
}

// FormatValue prints a value exactly as parsed, without exponent or padding.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WrapLabel cuts names longer than WrapWidth at exactly WrapWidth runes,
// without looking for a word boundary.
func WrapLabel(name string) string {
	r := []rune(name)
	if len(r) <= WrapWidth {
		return name
	}
	return string(r[:WrapWidth]) + "\n" + string(r[WrapWidth:])
}
