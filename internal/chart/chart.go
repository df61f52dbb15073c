// Package chart renders analysis results as PNG images.
//
// Renderer is the port the analysis dispatcher depends on; GoChart is the
// production implementation. Every call builds its own chart value or canvas
// and writes into the caller's writer, so concurrent renders share nothing.
package chart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
)

// Bar is one histogram bar.
type Bar struct {
	Label string
	Count int
}

// HistogramSpec describes a frequency histogram.
type HistogramSpec struct {
	Title  string
	XLabel string
	Bars   []Bar
}

// BoxStats are the five-number summary plus outliers of one column.
// Whiskers end at the most extreme values within 1.5 IQR of the box.
type BoxStats struct {
	Q1, Median, Q3             float64
	LowerWhisker, UpperWhisker float64
	Outliers                   []float64
}

// BoxPlotSpec describes a single-column box plot.
type BoxPlotSpec struct {
	Title string
	Label string
	Stats BoxStats
}

// ScatterSpec describes an x/y point cloud. X and Y have equal length.
type ScatterSpec struct {
	Title  string
	XLabel string
	YLabel string
	X, Y   []float64
}

// HeatmapSpec describes a square matrix with one label per row/column.
// NaN cells are drawn grey and annotated "nan".
type HeatmapSpec struct {
	Title  string
	Labels []string
	Values [][]float64
}

// Renderer draws charts as PNG into w.
type Renderer interface {
	Histogram(w io.Writer, spec HistogramSpec) error
	BoxPlot(w io.Writer, spec BoxPlotSpec) error
	Scatter(w io.Writer, spec ScatterSpec) error
	Heatmap(w io.Writer, spec HeatmapSpec) error
}

// DataURIPrefix starts every encoded chart.
const DataURIPrefix = "data:image/png;base64,"

// EncodeDataURI runs render against a request-local buffer and returns the
// PNG as a data URI. The buffer is dropped before returning.
func EncodeDataURI(render func(io.Writer) error) (string, error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return "", err
	}
	if buf.Len() == 0 {
		return "", fmt.Errorf("render produced no image")
	}
	return DataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
