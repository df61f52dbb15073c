// Package analysis turns an analysis request into exactly one result over a
// dataset version: an HTML table, a list, a count mapping or a PNG data URI.
package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/datalens/internal/dataset"
)

// Tag names an analysis action on the wire.
type Tag string

const (
	TagSummary     Tag = "summary"
	TagHead        Tag = "head"
	TagColumns     Tag = "columns"
	TagMissing     Tag = "missing"
	TagDtypes      Tag = "dtypes"
	TagHistogram   Tag = "histogram"
	TagBoxPlot     Tag = "boxplot"
	TagScatter     Tag = "scatter"
	TagCorrelation Tag = "correlation"
	TagValueCounts Tag = "value_counts"
)

// Tags lists every action in a stable order.
var Tags = []Tag{
	TagSummary, TagHead, TagColumns, TagMissing, TagDtypes,
	TagHistogram, TagBoxPlot, TagScatter, TagCorrelation, TagValueCounts,
}

// ParseTag matches s against the known actions, ignoring case and
// surrounding space.
func ParseTag(s string) (Tag, bool) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tags {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// NeedsColumn reports whether the action operates on one named column.
func (t Tag) NeedsColumn() bool {
	switch t {
	case TagHistogram, TagBoxPlot, TagScatter, TagValueCounts:
		return true
	}
	return false
}

// Request errors: the caller asked for something the dataset cannot answer.
var (
	ErrInvalidRequest = errors.New("Invalid action or missing column parameter")
	ErrColumnNotFound = errors.New("column not found")
	ErrNotNumeric     = errors.New("column is not numeric")
	ErrTooFewColumns  = errors.New("Need at least two columns for scatter plot")
	ErrNoPairColumn   = errors.New("No other numeric columns found for scatter plot")
	ErrTooFewNumeric  = errors.New("Need at least two numeric columns for correlation")
)

var requestErrors = []error{
	ErrInvalidRequest, ErrColumnNotFound, ErrNotNumeric,
	ErrTooFewColumns, ErrNoPairColumn, ErrTooFewNumeric,
}

// IsRequestError reports whether err was caused by the request rather than
// by a failure while computing the result.
func IsRequestError(err error) bool {
	for _, target := range requestErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ColumnError ties ErrColumnNotFound or ErrNotNumeric to a column name.
type ColumnError struct {
	Column string
	Err    error
}

func (e *ColumnError) Error() string {
	if e.Err == ErrNotNumeric {
		return fmt.Sprintf("Column '%s' is not numeric", e.Column)
	}
	return fmt.Sprintf("Column '%s' not found in dataset", e.Column)
}

func (e *ColumnError) Unwrap() error { return e.Err }

// Failure wraps an unexpected error raised while computing a result.
type Failure struct {
	Err error
}

func (f *Failure) Error() string { return "Analysis error: " + f.Err.Error() }

func (f *Failure) Unwrap() error { return f.Err }

// Action is one validated analysis request. The set of variants is closed;
// column-bound variants hold the resolved column.
type Action interface {
	Tag() Tag
	action()
}

type (
	Summary     struct{}
	Head        struct{}
	Columns     struct{}
	Missing     struct{}
	Dtypes      struct{}
	Correlation struct{}

	Histogram   struct{ Column *dataset.Column }
	BoxPlot     struct{ Column *dataset.Column }
	Scatter     struct{ Column *dataset.Column }
	ValueCounts struct{ Column *dataset.Column }
)

func (Summary) Tag() Tag     { return TagSummary }
func (Head) Tag() Tag        { return TagHead }
func (Columns) Tag() Tag     { return TagColumns }
func (Missing) Tag() Tag     { return TagMissing }
func (Dtypes) Tag() Tag      { return TagDtypes }
func (Correlation) Tag() Tag { return TagCorrelation }
func (Histogram) Tag() Tag   { return TagHistogram }
func (BoxPlot) Tag() Tag     { return TagBoxPlot }
func (Scatter) Tag() Tag     { return TagScatter }
func (ValueCounts) Tag() Tag { return TagValueCounts }

func (Summary) action()     {}
func (Head) action()        {}
func (Columns) action()     {}
func (Missing) action()     {}
func (Dtypes) action()      {}
func (Correlation) action() {}
func (Histogram) action()   {}
func (BoxPlot) action()     {}
func (Scatter) action()     {}
func (ValueCounts) action() {}

// NewAction validates a raw request against ds. Unknown actions and
// column-bound actions without a column fail with ErrInvalidRequest; a
// column that ds does not have fails with a ColumnError.
func NewAction(tag, column string, ds *dataset.Dataset) (Action, error) {
	t, ok := ParseTag(tag)
	if !ok {
		return nil, ErrInvalidRequest
	}

	if !t.NeedsColumn() {
		switch t {
		case TagSummary:
			return Summary{}, nil
		case TagHead:
			return Head{}, nil
		case TagColumns:
			return Columns{}, nil
		case TagMissing:
			return Missing{}, nil
		case TagDtypes:
			return Dtypes{}, nil
		default:
			return Correlation{}, nil
		}
	}

	if column == "" {
		return nil, ErrInvalidRequest
	}
	col, ok := ds.Column(column)
	if !ok {
		return nil, &ColumnError{Column: column, Err: ErrColumnNotFound}
	}

	switch t {
	case TagHistogram:
		return Histogram{Column: col}, nil
	case TagBoxPlot:
		return BoxPlot{Column: col}, nil
	case TagScatter:
		return Scatter{Column: col}, nil
	default:
		return ValueCounts{Column: col}, nil
	}
}
