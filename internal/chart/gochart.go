package chart

import (
	"errors"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	colorPrimary = drawing.ColorFromHex("1f77b4")
	colorMedian  = drawing.ColorFromHex("ff7f0e")
	colorOutlier = drawing.ColorFromHex("d62728")
	colorPoint   = drawing.Color{R: 31, G: 119, B: 180, A: 170}
)

// ErrNoData is returned when a chart would have nothing to draw.
var ErrNoData = errors.New("no data to plot")

// GoChart renders with github.com/wcharczuk/go-chart/v2; the heatmap is
// drawn directly on an image.RGBA.
type GoChart struct {
	Width  int
	Height int
}

// NewGoChart returns a renderer producing width x height images.
func NewGoChart(width, height int) *GoChart {
	return &GoChart{Width: width, Height: height}
}

var _ Renderer = (*GoChart)(nil)

func (g *GoChart) padding() gochart.Style {
	return gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}}
}

// Histogram draws one bar per bin.
func (g *GoChart) Histogram(w io.Writer, spec HistogramSpec) error {
	if len(spec.Bars) == 0 {
		return ErrNoData
	}

	bars := make([]gochart.Value, len(spec.Bars))
	peak := 0
	for i, b := range spec.Bars {
		bars[i] = gochart.Value{
			Label: b.Label,
			Value: float64(b.Count),
			Style: gochart.Style{FillColor: colorPrimary, StrokeColor: drawing.ColorWhite, StrokeWidth: 1},
		}
		if b.Count > peak {
			peak = b.Count
		}
	}

	const spacing = 2
	barWidth := (g.Width-200)/len(bars) - spacing
	if barWidth > 80 {
		barWidth = 80
	}
	if barWidth < 4 {
		barWidth = 4
	}

	bc := gochart.BarChart{
		Title:      spec.Title,
		Width:      g.Width,
		Height:     g.Height,
		Background: g.padding(),
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Bars:       bars,
		YAxis: gochart.YAxis{
			Name:  "Frequency",
			Range: &gochart.ContinuousRange{Min: 0, Max: math.Max(1, float64(peak)*1.1)},
		},
	}
	return bc.Render(gochart.PNG, w)
}

// BoxPlot draws the box, median, whiskers with caps and outlier dots.
func (g *GoChart) BoxPlot(w io.Writer, spec BoxPlotSpec) error {
	s := spec.Stats
	const left, right, center = 0.7, 1.3, 1.0

	line := func(xs, ys []float64, col drawing.Color, width float64) gochart.Series {
		return gochart.ContinuousSeries{
			XValues: xs,
			YValues: ys,
			Style:   gochart.Style{StrokeColor: col, StrokeWidth: width},
		}
	}

	series := []gochart.Series{
		line([]float64{left, right, right, left, left}, []float64{s.Q1, s.Q1, s.Q3, s.Q3, s.Q1}, colorPrimary, 2),
		line([]float64{left, right}, []float64{s.Median, s.Median}, colorMedian, 2),
		line([]float64{center, center}, []float64{s.Q3, s.UpperWhisker}, colorPrimary, 1.5),
		line([]float64{center, center}, []float64{s.Q1, s.LowerWhisker}, colorPrimary, 1.5),
		line([]float64{0.85, 1.15}, []float64{s.UpperWhisker, s.UpperWhisker}, colorPrimary, 1.5),
		line([]float64{0.85, 1.15}, []float64{s.LowerWhisker, s.LowerWhisker}, colorPrimary, 1.5),
	}

	lo, hi := s.LowerWhisker, s.UpperWhisker
	if len(s.Outliers) > 0 {
		xs := make([]float64, len(s.Outliers))
		for i, v := range s.Outliers {
			xs[i] = center
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		series = append(series, gochart.ContinuousSeries{
			XValues: xs,
			YValues: s.Outliers,
			Style:   pointStyle(colorOutlier, 5),
		})
	}
	lo, hi = paddedRange(lo, hi)

	ch := gochart.Chart{
		Title:      spec.Title,
		Width:      g.Width,
		Height:     g.Height,
		Background: g.padding(),
		XAxis: gochart.XAxis{
			Ticks: []gochart.Tick{{Value: 0}, {Value: center, Label: spec.Label}, {Value: 2}},
		},
		YAxis: gochart.YAxis{
			Name:  spec.Label,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: series,
	}
	return ch.Render(gochart.PNG, w)
}

// Scatter draws unconnected points.
func (g *GoChart) Scatter(w io.Writer, spec ScatterSpec) error {
	if len(spec.X) == 0 || len(spec.X) != len(spec.Y) {
		return ErrNoData
	}

	xlo, xhi := paddedRange(minMax(spec.X))
	ylo, yhi := paddedRange(minMax(spec.Y))

	ch := gochart.Chart{
		Title:      spec.Title,
		Width:      g.Width,
		Height:     g.Height,
		Background: g.padding(),
		XAxis:      gochart.XAxis{Name: spec.XLabel, Range: &gochart.ContinuousRange{Min: xlo, Max: xhi}},
		YAxis:      gochart.YAxis{Name: spec.YLabel, Range: &gochart.ContinuousRange{Min: ylo, Max: yhi}},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				XValues: spec.X,
				YValues: spec.Y,
				Style:   pointStyle(colorPoint, 4),
			},
		},
	}
	return ch.Render(gochart.PNG, w)
}

// pointStyle renders dots only, with no connecting line.
func pointStyle(col drawing.Color, size float64) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    size,
		DotColor:    col,
	}
}

func minMax(vs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// paddedRange widens [lo, hi] by 5% each side; a zero-width range becomes
// [v-1, v+1] since go-chart rejects empty axis ranges.
func paddedRange(lo, hi float64) (float64, float64) {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || math.IsNaN(lo) || math.IsNaN(hi) {
		return 0, 1
	}
	if hi <= lo {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}
