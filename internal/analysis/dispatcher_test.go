package analysis

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/datalens/internal/chart"
	"github.com/JonMunkholm/datalens/internal/dataset"
)

// fakeRenderer records the last spec of each kind and writes a stub image.
type fakeRenderer struct {
	mu        sync.Mutex
	histogram chart.HistogramSpec
	box       chart.BoxPlotSpec
	scatter   chart.ScatterSpec
	heatmap   chart.HeatmapSpec
	panicMsg  string
	err       error
}

func (f *fakeRenderer) write(w io.Writer) error {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return f.err
	}
	_, err := w.Write([]byte("\x89PNG"))
	return err
}

func (f *fakeRenderer) Histogram(w io.Writer, s chart.HistogramSpec) error {
	f.mu.Lock()
	f.histogram = s
	f.mu.Unlock()
	return f.write(w)
}

func (f *fakeRenderer) BoxPlot(w io.Writer, s chart.BoxPlotSpec) error {
	f.mu.Lock()
	f.box = s
	f.mu.Unlock()
	return f.write(w)
}

func (f *fakeRenderer) Scatter(w io.Writer, s chart.ScatterSpec) error {
	f.mu.Lock()
	f.scatter = s
	f.mu.Unlock()
	return f.write(w)
}

func (f *fakeRenderer) Heatmap(w io.Writer, s chart.HeatmapSpec) error {
	f.mu.Lock()
	f.heatmap = s
	f.mu.Unlock()
	return f.write(w)
}

func newTestDispatcher(r chart.Renderer) *Dispatcher {
	return NewDispatcher(r, chart.NewLimiter(2, time.Second), 5)
}

func TestDispatch_TabularResults(t *testing.T) {
	ds := peopleDataset(t)
	d := newTestDispatcher(&fakeRenderer{})
	ctx := context.Background()

	t.Run("columns", func(t *testing.T) {
		got, err := d.Run(ctx, ds, "columns", "")
		if err != nil {
			t.Fatal(err)
		}
		cols, ok := got.([]string)
		if !ok || strings.Join(cols, ",") != "name,age,score,city" {
			t.Errorf("result = %#v", got)
		}
	})

	t.Run("missing", func(t *testing.T) {
		got, err := d.Run(ctx, ds, "missing", "")
		if err != nil {
			t.Fatal(err)
		}
		m := got.(map[string]int)
		if m["score"] != 1 || m["city"] != 1 || m["name"] != 0 {
			t.Errorf("missing = %v", m)
		}
	})

	t.Run("dtypes", func(t *testing.T) {
		got, err := d.Run(ctx, ds, "dtypes", "")
		if err != nil {
			t.Fatal(err)
		}
		m := got.(map[string]string)
		if m["age"] != "int64" || m["score"] != "float64" || m["city"] != "object" {
			t.Errorf("dtypes = %v", m)
		}
	})

	t.Run("value_counts", func(t *testing.T) {
		got, err := d.Run(ctx, ds, "value_counts", "city")
		if err != nil {
			t.Fatal(err)
		}
		m := got.(map[string]int)
		if m["Oslo"] != 3 || len(m) != 3 {
			t.Errorf("value_counts = %v", m)
		}
	})

	for _, tag := range []string{"summary", "head"} {
		t.Run(tag, func(t *testing.T) {
			got, err := d.Run(ctx, ds, tag, "")
			if err != nil {
				t.Fatal(err)
			}
			html, ok := got.(string)
			if !ok || !strings.HasPrefix(html, "<table") || !strings.Contains(html, TableClass) {
				t.Errorf("result = %q", got)
			}
		})
	}
}

func TestDispatch_Images(t *testing.T) {
	ds := peopleDataset(t)
	r := &fakeRenderer{}
	d := newTestDispatcher(r)
	ctx := context.Background()

	for _, tc := range []struct{ tag, column string }{
		{"histogram", "age"},
		{"boxplot", "score"},
		{"scatter", "age"},
		{"correlation", ""},
	} {
		t.Run(tc.tag, func(t *testing.T) {
			got, err := d.Run(ctx, ds, tc.tag, tc.column)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if s, _ := got.(string); !strings.HasPrefix(s, chart.DataURIPrefix) {
				t.Errorf("result = %q, want data URI", got)
			}
		})
	}

	if len(r.histogram.Bars) != histogramBins {
		t.Errorf("histogram bars = %d, want %d", len(r.histogram.Bars), histogramBins)
	}
	if r.box.Label != "score" || r.box.Stats.Median != 2.5 {
		t.Errorf("boxplot spec = %+v", r.box)
	}
	if got := strings.Join(r.heatmap.Labels, ","); got != "age,score" {
		t.Errorf("heatmap labels = %s", got)
	}
	if len(r.scatter.X) != 5 {
		t.Errorf("scatter points = %d, want 5 complete pairs", len(r.scatter.X))
	}
}

func TestScatterPair(t *testing.T) {
	mk := func(header []string, row []string) *dataset.Dataset {
		ds, err := dataset.New("t", header, [][]string{row})
		if err != nil {
			t.Fatal(err)
		}
		return ds
	}

	tests := []struct {
		name    string
		ds      *dataset.Dataset
		x       string
		want    string
		wantErr error
	}{
		{"first column pairs with second", mk([]string{"a", "b", "c"}, []string{"1", "2", "3"}), "a", "b", nil},
		{"other column pairs with first numeric", mk([]string{"a", "b", "c"}, []string{"1", "2", "3"}), "c", "a", nil},
		{"skips itself", mk([]string{"a", "b"}, []string{"1", "2"}), "b", "a", nil},
		{"second column not numeric", mk([]string{"a", "t", "c"}, []string{"1", "x", "3"}), "a", "c", nil},
		{"single column", mk([]string{"a"}, []string{"1"}), "a", "", ErrTooFewColumns},
		{"no other numeric", mk([]string{"a", "t"}, []string{"1", "x"}), "a", "", ErrNoPairColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, _ := tt.ds.Column(tt.x)
			y, err := scatterPair(tt.ds, x)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if y.Name != tt.want {
				t.Errorf("y = %s, want %s", y.Name, tt.want)
			}
		})
	}
}

func TestDispatch_RequestErrors(t *testing.T) {
	ds := peopleDataset(t)
	d := newTestDispatcher(&fakeRenderer{})
	textOnly, err := dataset.New("t", []string{"name", "city"}, [][]string{{"a", "b"}})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		ds     *dataset.Dataset
		tag    string
		column string
		want   string
	}{
		{"histogram of text", ds, "histogram", "city", "Column 'city' is not numeric"},
		{"boxplot of text", ds, "boxplot", "name", "Column 'name' is not numeric"},
		{"scatter of text", ds, "scatter", "name", "Column 'name' is not numeric"},
		{"correlation without numbers", textOnly, "correlation", "", "Need at least two numeric columns for correlation"},
		{"scatter without numbers", textOnly, "scatter", "name", "No other numeric columns found for scatter plot"},
		{"unknown column", ds, "histogram", "height", "Column 'height' not found in dataset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Run(context.Background(), tt.ds, tt.tag, tt.column)
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsRequestError(err) {
				t.Errorf("error %v should be a request error", err)
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q, want %q", err, tt.want)
			}
		})
	}
}

func TestDispatch_FailuresAreContained(t *testing.T) {
	ds := peopleDataset(t)
	ctx := context.Background()

	t.Run("renderer panic", func(t *testing.T) {
		d := newTestDispatcher(&fakeRenderer{panicMsg: "canvas exploded"})
		_, err := d.Run(ctx, ds, "histogram", "age")
		var f *Failure
		if !errors.As(err, &f) {
			t.Fatalf("error = %v, want *Failure", err)
		}
		if err.Error() != "Analysis error: canvas exploded" {
			t.Errorf("error = %q", err)
		}
	})

	t.Run("renderer error", func(t *testing.T) {
		d := newTestDispatcher(&fakeRenderer{err: errors.New("font missing")})
		_, err := d.Run(ctx, ds, "correlation", "")
		if err == nil || err.Error() != "Analysis error: font missing" {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("all missing column", func(t *testing.T) {
		empty, err := dataset.New("e", []string{"x"}, [][]string{{""}, {""}})
		if err != nil {
			t.Fatal(err)
		}
		d := newTestDispatcher(&fakeRenderer{})
		_, err = d.Run(ctx, empty, "boxplot", "x")
		var f *Failure
		if !errors.As(err, &f) || !errors.Is(err, chart.ErrNoData) {
			t.Errorf("error = %v, want Failure wrapping ErrNoData", err)
		}
	})
}

func TestDispatch_RenderLimiterExhausted(t *testing.T) {
	ds := peopleDataset(t)
	limiter := chart.NewLimiter(1, 20*time.Millisecond)
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire failed")
	}
	defer limiter.Release()

	d := NewDispatcher(&fakeRenderer{}, limiter, 5)
	_, err := d.Run(context.Background(), ds, "histogram", "age")
	if !errors.Is(err, chart.ErrTooManyRenders) {
		t.Errorf("error = %v, want ErrTooManyRenders", err)
	}
	var f *Failure
	if errors.As(err, &f) {
		t.Error("limiter exhaustion should not be wrapped as a Failure")
	}

	// Non-image actions do not need a render slot.
	if _, err := d.Run(context.Background(), ds, "columns", ""); err != nil {
		t.Errorf("columns error = %v", err)
	}
}
