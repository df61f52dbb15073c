package store

import (
	"math"
	"strconv"
	"strings"

	"github.com/JonMunkholm/datalens/internal/dataset"
)

// Project maps every dataset row onto a Record. Each field is looked up by
// its lowercase, capitalised and uppercase spelling, then by any
// case-insensitive match. Absent fields stay empty (age 0).
func Project(ds *dataset.Dataset) []Record {
	name := fieldColumn(ds, "name")
	age := fieldColumn(ds, "age")
	city := fieldColumn(ds, "city")

	recs := make([]Record, ds.Rows())
	for i := range recs {
		recs[i] = Record{
			Name: cellText(name, i),
			Age:  parseAge(cellText(age, i)),
			City: cellText(city, i),
		}
	}
	return recs
}

func fieldColumn(ds *dataset.Dataset, field string) *dataset.Column {
	spellings := []string{field, strings.ToUpper(field[:1]) + field[1:], strings.ToUpper(field)}
	for _, s := range spellings {
		if c, ok := ds.Column(s); ok {
			return c
		}
	}
	for _, n := range ds.Columns() {
		if strings.EqualFold(n, field) {
			c, _ := ds.Column(n)
			return c
		}
	}
	return nil
}

func cellText(c *dataset.Column, i int) string {
	if c == nil {
		return ""
	}
	return c.Cell(i)
}

// parseAge accepts integers, and floats truncated toward zero ("31.7" is 31),
// that fit the INTEGER column; anything else is 0.
func parseAge(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	f = math.Trunc(f)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}
