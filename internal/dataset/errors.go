package dataset

import "errors"

// Sentinel errors returned by Load. Messages are shown to API clients as-is.
var (
	ErrNoFile            = errors.New("No file provided")
	ErrUnsupportedFormat = errors.New("Unsupported file format. Please upload CSV or Excel file.")
	ErrFileTooLarge      = errors.New("file exceeds the maximum upload size")
	ErrNoColumns         = errors.New("No columns to parse from file")
	ErrParse             = errors.New("could not parse file")
)
