package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format identifies how an upload is parsed.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatSpreadsheet
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatSpreadsheet:
		return "spreadsheet"
	default:
		return "unknown"
	}
}

// FormatOf picks the format from the filename extension, case-insensitively.
func FormatOf(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xls":
		return FormatSpreadsheet
	default:
		return FormatUnknown
	}
}

// Load parses r as the format implied by filename. maxBytes caps the raw
// upload size (<= 0 disables the cap).
func Load(r io.Reader, filename string, maxBytes int64) (*Dataset, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, ErrNoFile
	}

	var (
		header  []string
		records [][]string
		err     error
	)
	switch FormatOf(filename) {
	case FormatCSV:
		header, records, err = readCSV(r, maxBytes)
	case FormatSpreadsheet:
		header, records, err = readSpreadsheet(r, maxBytes)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}

	return New(filepath.Base(filename), header, records)
}

func readCSV(r io.Reader, maxBytes int64) ([]string, [][]string, error) {
	cr := csv.NewReader(wrapCSV(r, maxBytes))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, nil, ErrFileTooLarge
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return splitHeader(rows)
}

func readSpreadsheet(r io.Reader, maxBytes int64) ([]string, [][]string, error) {
	g := &sizeGuard{r: r, limit: maxBytes}
	src := io.Reader(g)
	if maxBytes <= 0 {
		src = r
	}

	f, err := excelize.OpenReader(src)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) || (maxBytes > 0 && g.BytesRead() > maxBytes) {
			return nil, nil, ErrFileTooLarge
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("%w: workbook has no sheets", ErrParse)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: sheet %q: %v", ErrParse, sheet, err)
	}
	return splitHeader(rows)
}

// splitHeader separates the header row from the data, drops blank rows and
// widens the header to the longest record.
func splitHeader(rows [][]string) ([]string, [][]string, error) {
	if len(rows) == 0 {
		return nil, nil, ErrNoColumns
	}

	raw := rows[0]
	records := make([][]string, 0, len(rows)-1)
	width := len(raw)
	for _, rec := range rows[1:] {
		if isBlankRow(rec) {
			continue
		}
		records = append(records, rec)
		if len(rec) > width {
			width = len(rec)
		}
	}
	if width == 0 {
		return nil, nil, ErrNoColumns
	}

	return headerNames(raw, width), records, nil
}

// headerNames names unnamed columns "Unnamed: <index>" and suffixes
// repeated names with ".1", ".2", ...
func headerNames(raw []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]bool, width)

	for i := range names {
		name := ""
		if i < len(raw) {
			name = strings.TrimSpace(raw[i])
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if seen[name] {
			base := name
			for k := 1; seen[name]; k++ {
				name = base + "." + strconv.Itoa(k)
			}
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
