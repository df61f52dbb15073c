// Package dataset holds the in-memory representation of an uploaded table:
// loading CSV and spreadsheet files, inferring column kinds, and keeping the
// current version in a Slot that concurrent requests read without locking.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Kind is a column's inferred value type. The string form matches the dtype
// names clients already know (int64, float64, bool, datetime64[ns], object).
type Kind string

const (
	KindInt      Kind = "int64"
	KindFloat    Kind = "float64"
	KindBool     Kind = "bool"
	KindDatetime Kind = "datetime64[ns]"
	KindObject   Kind = "object"
)

// IsNumeric reports whether values of this kind take part in numeric
// statistics, histograms, scatter plots and correlation.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindFloat
}

// Column is one named, typed column. Missing cells are stored as "".
type Column struct {
	Name string
	Kind Kind

	cells []string
	nums  []float64 // parsed values for numeric kinds, NaN where missing
	ints  []int64   // exact values for KindInt, which never has missing cells
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.cells) }

// Cell returns the raw text of row i ("" when missing).
func (c *Column) Cell(i int) string { return c.cells[i] }

// IsMissing reports whether row i has no value.
func (c *Column) IsMissing(i int) bool { return c.cells[i] == "" }

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.cells {
		if v == "" {
			n++
		}
	}
	return n
}

// Float returns the numeric value of row i. ok is false for missing cells
// and for non-numeric columns.
func (c *Column) Float(i int) (v float64, ok bool) {
	if !c.Kind.IsNumeric() {
		return 0, false
	}
	v = c.nums[i]
	return v, !math.IsNaN(v)
}

// Floats returns the non-missing numeric values in row order.
func (c *Column) Floats() []float64 {
	if !c.Kind.IsNumeric() {
		return nil
	}
	out := make([]float64, 0, len(c.nums))
	for _, v := range c.nums {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Display formats row i the way tables and value counts show it: integers
// without a fraction, floats with at least one decimal, everything else as
// stored.
func (c *Column) Display(i int) string {
	if c.Kind == KindInt {
		return strconv.FormatInt(c.ints[i], 10)
	}
	v, ok := c.Float(i)
	if !ok {
		return c.cells[i]
	}
	return FormatNumber(v, c.Kind)
}

// FormatNumber renders v for a column of kind k.
func FormatNumber(v float64, k Kind) string {
	if k == KindInt {
		return strconv.FormatInt(int64(v), 10)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e16 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Dataset is an immutable table version. Build one with New or Load and
// never modify it afterwards; the Slot hands the same pointer to many
// concurrent readers.
type Dataset struct {
	ID       string
	Name     string
	LoadedAt time.Time

	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a dataset from a header and data records. Header names must be
// unique; records shorter than the header are padded with missing cells and
// longer ones are cut.
func New(name string, header []string, records [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, ErrNoColumns
	}

	ds := &Dataset{
		ID:       uuid.NewString(),
		Name:     name,
		LoadedAt: time.Now().UTC(),
		columns:  make([]*Column, len(header)),
		index:    make(map[string]int, len(header)),
		rows:     len(records),
	}

	for j, h := range header {
		if _, dup := ds.index[h]; dup {
			return nil, fmt.Errorf("duplicate column %q", h)
		}
		ds.index[h] = j

		cells := make([]string, len(records))
		for i, rec := range records {
			if j < len(rec) {
				cells[i] = normalizeCell(rec[j])
			}
		}
		ds.columns[j] = buildColumn(h, cells)
	}

	return ds, nil
}

// Shape returns (rows, columns).
func (d *Dataset) Shape() (rows, cols int) {
	return d.rows, len(d.columns)
}

// Rows returns the number of data rows.
func (d *Dataset) Rows() int { return d.rows }

// Columns returns the column names in file order.
func (d *Dataset) Columns() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by exact name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.columns[i], true
}

// ColumnAt returns the i-th column in file order.
func (d *Dataset) ColumnAt(i int) *Column { return d.columns[i] }

// NumColumns returns the column count.
func (d *Dataset) NumColumns() int { return len(d.columns) }

// NumericColumns returns the int64/float64 columns in file order.
func (d *Dataset) NumericColumns() []*Column {
	var out []*Column
	for _, c := range d.columns {
		if c.Kind.IsNumeric() {
			out = append(out, c)
		}
	}
	return out
}

// Dtypes maps every column name to its kind name.
func (d *Dataset) Dtypes() map[string]string {
	out := make(map[string]string, len(d.columns))
	for _, c := range d.columns {
		out[c.Name] = string(c.Kind)
	}
	return out
}

// Row returns row i in column order as Display renders it.
func (d *Dataset) Row(i int) []string {
	row := make([]string, len(d.columns))
	for j, c := range d.columns {
		row[j] = c.Display(i)
	}
	return row
}
