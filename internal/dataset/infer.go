package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// naTokens are the cell texts read as missing values.
var naTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {},
	"nan": {}, "null": {},
}

// dateLayouts are tried in order; four-digit years only so "01/02/03" stays text.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006.01.02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
}

func normalizeCell(s string) string {
	t := strings.TrimSpace(s)
	if _, na := naTokens[t]; na || t == "" {
		return ""
	}
	return s
}

// buildColumn infers the column kind from its non-missing cells and caches
// parsed numbers for numeric kinds.
func buildColumn(name string, cells []string) *Column {
	c := &Column{Name: name, cells: cells}

	present, missing := 0, 0
	for _, v := range cells {
		if v == "" {
			missing++
		} else {
			present++
		}
	}

	switch {
	case present == 0:
		c.Kind = KindFloat
	case allCells(cells, isInt):
		c.Kind = KindInt
		if missing > 0 {
			c.Kind = KindFloat
		}
	case allCells(cells, isFloat):
		c.Kind = KindFloat
	case missing == 0 && allCells(cells, isBool):
		c.Kind = KindBool
	case allCells(cells, isDate):
		c.Kind = KindDatetime
	default:
		c.Kind = KindObject
	}

	if c.Kind.IsNumeric() {
		c.nums = make([]float64, len(cells))
		for i, v := range cells {
			c.nums[i] = math.NaN()
			if v == "" {
				continue
			}
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				c.nums[i] = f
			}
		}
	}
	if c.Kind == KindInt {
		c.ints = make([]int64, len(cells))
		for i, v := range cells {
			c.ints[i], _ = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		}
	}
	return c
}

// allCells reports whether every non-missing cell satisfies pred.
func allCells(cells []string, pred func(string) bool) bool {
	for _, v := range cells {
		if v != "" && !pred(strings.TrimSpace(v)) {
			return false
		}
	}
	return true
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isFloat(s string) bool {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") || strings.ContainsRune(s, '_') {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isBool(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}

func isDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

// ParseDate parses s with the first matching supported layout.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
