package analysis

import (
	"math"
	"sort"
	"strconv"

	"github.com/JonMunkholm/datalens/internal/chart"
	"github.com/JonMunkholm/datalens/internal/dataset"
)

const histogramBins = 10

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd is the n-1 standard deviation (Welford); NaN below two values.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	var m, m2 float64
	for i, x := range xs {
		d := x - m
		m += d / float64(i+1)
		m2 += d * (x - m)
	}
	return math.Sqrt(m2 / float64(len(xs)-1))
}

// quantile linearly interpolates between closest ranks of sorted data.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func sortedCopy(xs []float64) []float64 {
	out := append([]float64(nil), xs...)
	sort.Float64s(out)
	return out
}

// boxStats computes quartiles and Tukey whiskers: each whisker reaches the
// most extreme value within 1.5 IQR of the box, anything beyond is an outlier.
func boxStats(xs []float64) (chart.BoxStats, bool) {
	if len(xs) == 0 {
		return chart.BoxStats{}, false
	}
	s := sortedCopy(xs)
	q1, med, q3 := quantile(s, 0.25), quantile(s, 0.5), quantile(s, 0.75)
	iqr := q3 - q1
	loFence, hiFence := q1-1.5*iqr, q3+1.5*iqr

	st := chart.BoxStats{Q1: q1, Median: med, Q3: q3, LowerWhisker: q1, UpperWhisker: q3}
	for _, v := range s {
		if v < loFence || v > hiFence {
			st.Outliers = append(st.Outliers, v)
			continue
		}
		st.LowerWhisker = math.Min(st.LowerWhisker, v)
		st.UpperWhisker = math.Max(st.UpperWhisker, v)
	}
	return st, true
}

// histogram splits [min, max] into equal-width bins; the last bin is closed.
// A constant column gets the unit-wide range centred on its value.
func histogram(xs []float64, bins int) []chart.Bar {
	if len(xs) == 0 || bins <= 0 {
		return nil
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / float64(bins)

	counts := make([]int, bins)
	for _, x := range xs {
		i := int((x - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			i = 0
		}
		counts[i]++
	}

	bars := make([]chart.Bar, bins)
	for i, c := range counts {
		bars[i] = chart.Bar{Label: strconv.FormatFloat(lo+float64(i)*width, 'g', 4, 64), Count: c}
	}
	return bars
}

// pearson correlates the rows where both columns have values.
// Fewer than two such rows or zero variance gives NaN.
func pearson(a, b *dataset.Column) float64 {
	var n, sx, sy, sxx, syy, sxy float64
	for i := 0; i < a.Len(); i++ {
		x, okx := a.Float(i)
		y, oky := b.Float(i)
		if !okx || !oky {
			continue
		}
		n++
		sx += x
		sy += y
		sxx += x * x
		syy += y * y
		sxy += x * y
	}
	if n < 2 {
		return math.NaN()
	}
	cov := sxy - sx*sy/n
	vx := sxx - sx*sx/n
	vy := syy - sy*sy/n
	if vx <= 0 || vy <= 0 {
		return math.NaN()
	}
	r := cov / math.Sqrt(vx*vy)
	return math.Max(-1, math.Min(1, r))
}

// correlationMatrix returns the pairwise Pearson matrix over cols.
func correlationMatrix(cols []*dataset.Column) [][]float64 {
	m := make([][]float64, len(cols))
	for i := range m {
		m[i] = make([]float64, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pearson(cols[i], cols[j])
			m[i][j], m[j][i] = r, r
		}
	}
	return m
}

// valueCounts counts each distinct displayed value, skipping missing cells.
func valueCounts(col *dataset.Column) map[string]int {
	out := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		out[col.Display(i)]++
	}
	return out
}

// topValue returns the most frequent value, ties going to the first seen.
func topValue(col *dataset.Column) (value string, freq, unique int) {
	counts := make(map[string]int)
	var order []string
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		v := col.Display(i)
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	for _, v := range order {
		if counts[v] > freq {
			value, freq = v, counts[v]
		}
	}
	return value, freq, len(order)
}

func missingCounts(ds *dataset.Dataset) map[string]int {
	out := make(map[string]int, ds.NumColumns())
	for i := 0; i < ds.NumColumns(); i++ {
		c := ds.ColumnAt(i)
		out[c.Name] = c.MissingCount()
	}
	return out
}
