package chart

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/png"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
)

func testRenderer() *GoChart { return NewGoChart(640, 480) }

func renderSpecs() map[string]func(Renderer, io.Writer) error {
	return map[string]func(Renderer, io.Writer) error{
		"histogram": func(r Renderer, w io.Writer) error {
			return r.Histogram(w, HistogramSpec{
				Title: "Histogram of age",
				Bars:  []Bar{{"20", 3}, {"30", 5}, {"40", 0}, {"50", 1}},
			})
		},
		"boxplot": func(r Renderer, w io.Writer) error {
			return r.BoxPlot(w, BoxPlotSpec{
				Title: "Boxplot of age",
				Label: "age",
				Stats: BoxStats{Q1: 25, Median: 31, Q3: 40, LowerWhisker: 20, UpperWhisker: 55, Outliers: []float64{90, 2}},
			})
		},
		"boxplot constant": func(r Renderer, w io.Writer) error {
			return r.BoxPlot(w, BoxPlotSpec{Title: "flat", Label: "x", Stats: BoxStats{Q1: 3, Median: 3, Q3: 3, LowerWhisker: 3, UpperWhisker: 3}})
		},
		"scatter": func(r Renderer, w io.Writer) error {
			return r.Scatter(w, ScatterSpec{
				Title: "age vs score", XLabel: "age", YLabel: "score",
				X: []float64{20, 30, 40, 50}, Y: []float64{1.5, 2.5, 2.0, 4.0},
			})
		},
		"scatter single point": func(r Renderer, w io.Writer) error {
			return r.Scatter(w, ScatterSpec{X: []float64{0}, Y: []float64{0}})
		},
		"heatmap": func(r Renderer, w io.Writer) error {
			return r.Heatmap(w, HeatmapSpec{
				Title:  "Correlation Matrix",
				Labels: []string{"age", "score", "a_very_long_column_name_indeed"},
				Values: [][]float64{{1, 0.8, math.NaN()}, {0.8, 1, -0.4}, {math.NaN(), -0.4, 1}},
			})
		},
	}
}

func TestGoChart_RendersPNG(t *testing.T) {
	r := testRenderer()
	for name, render := range renderSpecs() {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := render(r, &buf); err != nil {
				t.Fatalf("render error = %v", err)
			}
			img, err := png.Decode(&buf)
			if err != nil {
				t.Fatalf("output is not a PNG: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 480 {
				t.Errorf("image size = %dx%d, want 640x480", b.Dx(), b.Dy())
			}
		})
	}
}

func TestGoChart_NoData(t *testing.T) {
	r := testRenderer()
	tests := map[string]error{
		"histogram": r.Histogram(io.Discard, HistogramSpec{}),
		"scatter":   r.Scatter(io.Discard, ScatterSpec{X: []float64{1}, Y: nil}),
		"heatmap":   r.Heatmap(io.Discard, HeatmapSpec{Labels: []string{"a"}}),
	}
	for name, err := range tests {
		if !errors.Is(err, ErrNoData) {
			t.Errorf("%s: error = %v, want ErrNoData", name, err)
		}
	}
}

func TestGoChart_ConcurrentRendersAreIsolated(t *testing.T) {
	r := testRenderer()
	specs := renderSpecs()

	want := make(map[string][]byte, len(specs))
	for name, render := range specs {
		var buf bytes.Buffer
		if err := render(r, &buf); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		want[name] = buf.Bytes()
	}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		for name, render := range specs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				var buf bytes.Buffer
				if err := render(r, &buf); err != nil {
					t.Errorf("%s: %v", name, err)
					return
				}
				if !bytes.Equal(buf.Bytes(), want[name]) {
					t.Errorf("%s: concurrent render differs from sequential render", name)
				}
			}()
		}
	}
	wg.Wait()
}

func TestEncodeDataURI(t *testing.T) {
	r := testRenderer()
	uri, err := EncodeDataURI(func(w io.Writer) error {
		return r.Scatter(w, ScatterSpec{X: []float64{1, 2}, Y: []float64{3, 4}})
	})
	if err != nil {
		t.Fatalf("EncodeDataURI() error = %v", err)
	}
	if !strings.HasPrefix(uri, DataURIPrefix) {
		t.Fatalf("uri prefix = %q", uri[:min(len(uri), 30)])
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, DataURIPrefix))
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Errorf("payload is not a PNG: %v", err)
	}
}

func TestEncodeDataURI_Errors(t *testing.T) {
	boom := errors.New("boom")
	if _, err := EncodeDataURI(func(io.Writer) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
	if _, err := EncodeDataURI(func(io.Writer) error { return nil }); err == nil {
		t.Error("empty render should fail")
	}
}

func TestCoolwarm(t *testing.T) {
	if got := coolwarm(-1); got != coolLow {
		t.Errorf("coolwarm(-1) = %v, want %v", got, coolLow)
	}
	if got := coolwarm(0); got != coolMid {
		t.Errorf("coolwarm(0) = %v, want %v", got, coolMid)
	}
	if got := coolwarm(5); got != coolHigh {
		t.Errorf("coolwarm(5) = %v, want clamped %v", got, coolHigh)
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"score", 10, "score"},
		{"temperature", 5, "temp~"},
		{"abc", 1, "a"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := clip(tt.in, tt.n); got != tt.want {
			t.Errorf("clip(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
