package analysis

import (
	"context"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datalens/internal/dataset"
)

// Table is a labelled grid rendered as an HTML data table.
type Table struct {
	Columns []string
	Index   []string
	Cells   [][]string // Cells[row][col]; "" renders as an empty cell
}

// TableClass is the CSS class the frontend styles result tables with.
const TableClass = "data-table"

// DataTable renders t as an HTML data table: a header row with an
// empty corner cell, then one row per index label.
func DataTable(t Table) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<table border="1" class="dataframe ` + TableClass + `">`)
		b.WriteString("\n  <thead>\n    <tr style=\"text-align: right;\">\n      <th></th>\n")
		for _, c := range t.Columns {
			b.WriteString("      <th>" + templ.EscapeString(c) + "</th>\n")
		}
		b.WriteString("    </tr>\n  </thead>\n  <tbody>\n")
		for i, label := range t.Index {
			b.WriteString("    <tr>\n      <th>" + templ.EscapeString(label) + "</th>\n")
			for j := range t.Columns {
				cell := ""
				if i < len(t.Cells) && j < len(t.Cells[i]) {
					cell = t.Cells[i][j]
				}
				b.WriteString("      <td>" + templ.EscapeString(cell) + "</td>\n")
			}
			b.WriteString("    </tr>\n")
		}
		b.WriteString("  </tbody>\n</table>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// renderHTML renders a component to a string.
func renderHTML(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// headTable holds the first n rows with a 0-based index.
func headTable(ds *dataset.Dataset, n int) Table {
	rows := min(n, ds.Rows())
	t := Table{Columns: ds.Columns(), Index: make([]string, rows), Cells: make([][]string, rows)}
	for i := 0; i < rows; i++ {
		t.Index[i] = strconv.Itoa(i)
		t.Cells[i] = ds.Row(i)
	}
	return t
}

var (
	categoricalRows = []string{"count", "unique", "top", "freq"}
	numericRows     = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}
)

// describeTable summarises every column. Numeric columns fill count, mean,
// std, min, quartiles and max; the others fill count, unique, top and freq.
// Row labels present depend on which kinds of column the dataset has.
func describeTable(ds *dataset.Dataset) Table {
	hasNumeric, hasOther := false, false
	for i := 0; i < ds.NumColumns(); i++ {
		if ds.ColumnAt(i).Kind.IsNumeric() {
			hasNumeric = true
		} else {
			hasOther = true
		}
	}

	var index []string
	switch {
	case hasNumeric && hasOther:
		index = append(append(index, categoricalRows...), numericRows[1:]...)
	case hasNumeric:
		index = append(index, numericRows...)
	default:
		index = append(index, categoricalRows...)
	}
	pos := make(map[string]int, len(index))
	for i, label := range index {
		pos[label] = i
	}

	t := Table{Columns: ds.Columns(), Index: index, Cells: make([][]string, len(index))}
	for i := range t.Cells {
		t.Cells[i] = make([]string, ds.NumColumns())
	}
	set := func(label string, col int, v string) {
		if r, ok := pos[label]; ok {
			t.Cells[r][col] = v
		}
	}

	for j := 0; j < ds.NumColumns(); j++ {
		c := ds.ColumnAt(j)
		count := c.Len() - c.MissingCount()

		if !c.Kind.IsNumeric() {
			set("count", j, strconv.Itoa(count))
			top, freq, unique := topValue(c)
			set("unique", j, strconv.Itoa(unique))
			if freq > 0 {
				set("top", j, top)
				set("freq", j, strconv.Itoa(freq))
			}
			continue
		}

		xs := c.Floats()
		s := sortedCopy(xs)
		set("count", j, stat(float64(count)))
		set("mean", j, stat(mean(xs)))
		set("std", j, stat(sampleStd(xs)))
		if len(s) > 0 {
			set("min", j, stat(s[0]))
			set("25%", j, stat(quantile(s, 0.25)))
			set("50%", j, stat(quantile(s, 0.5)))
			set("75%", j, stat(quantile(s, 0.75)))
			set("max", j, stat(s[len(s)-1]))
		}
	}
	return t
}

// stat formats a statistic; NaN becomes an empty cell.
func stat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return dataset.FormatNumber(v, dataset.KindFloat)
}
