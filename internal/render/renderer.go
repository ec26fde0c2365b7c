package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Format is the output image encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ParseFormat accepts "png" and "svg".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPNG, FormatSVG:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported chart format: %q", s)
	}
}

var (
	barColor   = color.RGBA{R: 0x2E, G: 0x7D, B: 0x32, A: 0xFF}
	labelColor = color.RGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xFF}
)

// Renderer draws a Layout with gonum/plot.
type Renderer struct {
	Width     vg.Length
	RowHeight vg.Length
	MinHeight vg.Length
}

// NewRenderer uses a 9 inch wide canvas that grows by half an inch per bar.
func NewRenderer() *Renderer {
	return &Renderer{
		Width:     9 * vg.Inch,
		RowHeight: 0.5 * vg.Inch,
		MinHeight: 4 * vg.Inch,
	}
}

// Render encodes l as f into w. Empty layouts draw the placeholder text.
func (r *Renderer) Render(w io.Writer, l Layout, f Format) error {
	if _, err := ParseFormat(string(f)); err != nil {
		return err
	}
	p, err := r.plot(l)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(r.Width, r.height(l), string(f))
	if err != nil {
		return fmt.Errorf("create %s writer: %w", f, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s chart: %w", f, err)
	}
	return nil
}

func (r *Renderer) height(l Layout) vg.Length {
	h := vg.Length(len(l.Bars))*r.RowHeight + 1.5*vg.Inch
	if h < r.MinHeight {
		return r.MinHeight
	}
	return h
}

func (r *Renderer) plot(l Layout) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = l.Title
	if l.Empty {
		return placeholder(p, l.Placeholder)
	}

	values, names := plotRows(l)
	bars, err := plotter.NewBarChart(values, 0.6*r.RowHeight)
	if err != nil {
		return nil, fmt.Errorf("build bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)

	valueLabels, err := plotter.NewLabels(valueLabelData(l))
	if err != nil {
		return nil, fmt.Errorf("build value labels: %w", err)
	}
	for i := range valueLabels.TextStyle {
		valueLabels.TextStyle[i].Color = labelColor
		valueLabels.TextStyle[i].YAlign = text.YCenter
	}
	valueLabels.Offset = vg.Point{X: vg.Points(4)}
	p.Add(valueLabels)

	p.X.Min = l.AxisMin
	p.X.Max = l.AxisMax
	p.X.Label.Text = "Nilai"
	p.Add(plotter.NewGrid())
	return p, nil
}

// plotRows maps layout rows onto gonum's nominal axis, which counts from the
// bottom. Row 0 (first input line) ends up at the top.
func plotRows(l Layout) (plotter.Values, []string) {
	n := len(l.Bars)
	values := make(plotter.Values, n)
	names := make([]string, n)
	for _, b := range l.Bars {
		pos := n - 1 - b.Row
		values[pos] = b.Value
		names[pos] = b.Label
	}
	return values, names
}

func valueLabelData(l Layout) plotter.XYLabels {
	n := len(l.Bars)
	d := plotter.XYLabels{
		XYs:    make(plotter.XYs, n),
		Labels: make([]string, n),
	}
	for _, b := range l.Bars {
		pos := n - 1 - b.Row
		d.XYs[pos] = plotter.XY{X: b.Value, Y: float64(pos)}
		d.Labels[pos] = b.ValueText
	}
	return d
}

func placeholder(p *plot.Plot, msg string) (*plot.Plot, error) {
	p.HideAxes()
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	lbl, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: 0.5, Y: 0.5}},
		Labels: []string{msg},
	})
	if err != nil {
		return nil, fmt.Errorf("build placeholder: %w", err)
	}
	lbl.TextStyle[0].XAlign = text.XCenter
	lbl.TextStyle[0].YAlign = text.YCenter
	lbl.TextStyle[0].Color = labelColor
	p.Add(lbl)
	return p, nil
}
