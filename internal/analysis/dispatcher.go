package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/datalens/internal/chart"
	"github.com/JonMunkholm/datalens/internal/dataset"
	"github.com/JonMunkholm/datalens/internal/logging"
)

// DefaultHeadRows is how many rows the head action shows.
const DefaultHeadRows = 5

// Dispatcher computes action results. It is safe for concurrent use: all
// per-request state lives on the stack of Dispatch.
type Dispatcher struct {
	renderer chart.Renderer
	limiter  *chart.Limiter
	headRows int
}

// NewDispatcher wires a renderer and render limiter. A nil limiter means
// renders are not bounded.
func NewDispatcher(renderer chart.Renderer, limiter *chart.Limiter, headRows int) *Dispatcher {
	if headRows <= 0 {
		headRows = DefaultHeadRows
	}
	return &Dispatcher{renderer: renderer, limiter: limiter, headRows: headRows}
}

// Run validates a raw request against ds and dispatches it.
func (d *Dispatcher) Run(ctx context.Context, ds *dataset.Dataset, tag, column string) (any, error) {
	a, err := NewAction(tag, column, ds)
	if err != nil {
		return nil, err
	}
	return d.Dispatch(ctx, ds, a)
}

// Dispatch computes the result of a. Request errors come back as-is; any
// other failure, a panic included, comes back as a *Failure.
func (d *Dispatcher) Dispatch(ctx context.Context, ds *dataset.Dataset, a Action) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.FromContext(ctx).Error("analysis panic", "action", fmt.Sprintf("%T", a), "panic", r)
			result, err = nil, &Failure{Err: fmt.Errorf("%v", r)}
		}
	}()

	result, err = d.dispatch(ctx, ds, a)
	if err != nil && !passThrough(err) {
		err = &Failure{Err: err}
	}
	return result, err
}

func passThrough(err error) bool {
	var f *Failure
	return IsRequestError(err) ||
		errors.As(err, &f) ||
		errors.Is(err, chart.ErrTooManyRenders) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (d *Dispatcher) dispatch(ctx context.Context, ds *dataset.Dataset, a Action) (any, error) {
	switch a := a.(type) {
	case Summary:
		return renderHTML(ctx, DataTable(describeTable(ds)))
	case Head:
		return renderHTML(ctx, DataTable(headTable(ds, d.headRows)))
	case Columns:
		return ds.Columns(), nil
	case Missing:
		return missingCounts(ds), nil
	case Dtypes:
		return ds.Dtypes(), nil
	case ValueCounts:
		return valueCounts(a.Column), nil
	case Histogram:
		return d.histogram(ctx, a.Column)
	case BoxPlot:
		return d.boxPlot(ctx, a.Column)
	case Scatter:
		return d.scatter(ctx, ds, a.Column)
	case Correlation:
		return d.correlation(ctx, ds)
	default:
		return nil, ErrInvalidRequest
	}
}

func (d *Dispatcher) histogram(ctx context.Context, col *dataset.Column) (string, error) {
	if !col.Kind.IsNumeric() {
		return "", &ColumnError{Column: col.Name, Err: ErrNotNumeric}
	}
	spec := chart.HistogramSpec{
		Title:  "Histogram of " + col.Name,
		XLabel: col.Name,
		Bars:   histogram(col.Floats(), histogramBins),
	}
	return d.image(ctx, func(w io.Writer) error { return d.renderer.Histogram(w, spec) })
}

func (d *Dispatcher) boxPlot(ctx context.Context, col *dataset.Column) (string, error) {
	if !col.Kind.IsNumeric() {
		return "", &ColumnError{Column: col.Name, Err: ErrNotNumeric}
	}
	stats, ok := boxStats(col.Floats())
	if !ok {
		return "", chart.ErrNoData
	}
	spec := chart.BoxPlotSpec{Title: "Boxplot of " + col.Name, Label: col.Name, Stats: stats}
	return d.image(ctx, func(w io.Writer) error { return d.renderer.BoxPlot(w, spec) })
}

// scatterPair picks the y column for a scatter of x. The dataset's second
// column is preferred when x is the first column; otherwise the first
// numeric column other than x.
func scatterPair(ds *dataset.Dataset, x *dataset.Column) (*dataset.Column, error) {
	if ds.NumColumns() < 2 {
		return nil, ErrTooFewColumns
	}
	if ds.ColumnAt(0) == x && ds.ColumnAt(1).Kind.IsNumeric() {
		return ds.ColumnAt(1), nil
	}
	for _, c := range ds.NumericColumns() {
		if c != x {
			return c, nil
		}
	}
	return nil, ErrNoPairColumn
}

func (d *Dispatcher) scatter(ctx context.Context, ds *dataset.Dataset, x *dataset.Column) (string, error) {
	y, err := scatterPair(ds, x)
	if err != nil {
		return "", err
	}
	if !x.Kind.IsNumeric() {
		return "", &ColumnError{Column: x.Name, Err: ErrNotNumeric}
	}

	spec := chart.ScatterSpec{
		Title:  fmt.Sprintf("Scatter: %s vs %s", x.Name, y.Name),
		XLabel: x.Name,
		YLabel: y.Name,
	}
	for i := 0; i < x.Len(); i++ {
		xv, okx := x.Float(i)
		yv, oky := y.Float(i)
		if okx && oky {
			spec.X = append(spec.X, xv)
			spec.Y = append(spec.Y, yv)
		}
	}
	return d.image(ctx, func(w io.Writer) error { return d.renderer.Scatter(w, spec) })
}

func (d *Dispatcher) correlation(ctx context.Context, ds *dataset.Dataset) (string, error) {
	cols := ds.NumericColumns()
	if len(cols) < 2 {
		return "", ErrTooFewNumeric
	}
	spec := chart.HeatmapSpec{Title: "Correlation Matrix", Values: correlationMatrix(cols)}
	for _, c := range cols {
		spec.Labels = append(spec.Labels, c.Name)
	}
	return d.image(ctx, func(w io.Writer) error { return d.renderer.Heatmap(w, spec) })
}

// image renders under the limiter and returns a PNG data URI.
func (d *Dispatcher) image(ctx context.Context, draw func(io.Writer) error) (string, error) {
	if d.limiter == nil {
		return chart.EncodeDataURI(draw)
	}
	var uri string
	err := d.limiter.Do(ctx, func() error {
		var err error
		uri, err = chart.EncodeDataURI(draw)
		return err
	})
	return uri, err
}
