package core

// Error Codes Reference
//
// Codes are attached to logged errors so a user quoting a message can be
// matched to the technical cause.
//
// Dataset (DS001-DS099)
//
//	DS001 - No dataset: analysis requested before any upload
//	DS002 - Unsupported format: extension is not .csv, .xlsx or .xls
//	DS003 - Column not found: requested column is not in the dataset
//
// Analysis (AN001-AN099)
//
//	AN001 - Invalid request: unknown action or missing column parameter
//	AN002 - Not enough numeric columns for correlation or scatter pairing
//	AN003 - Not enough columns for scatter plot
//	AN004 - Column not numeric
//	AN005 - Analysis failed while computing a result
//
// Row store (DB001-DB099)
//
//	DB001 - SQL execution disabled by configuration
//	DB002 - Row store not configured
//	DB003 - No engine reachable
//	DB004 - Connection refused
//	DB005 - Timeout
//	DB006 - Syntax error in user SQL
//	DB007 - Missing table or column
//	DB008 - Empty statement
//	DB009 - Other database error
//
// File (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - No file provided
//	FILE003 - No columns found
//	FILE004 - Malformed file
//
// Throttling
//
//	RATE001 - Per-IP request limit reached
//	RND001  - All render slots busy
//
// Patterns are matched case-insensitively with strings.Contains. The first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Dataset
	{
		pattern: "no dataset uploaded",
		msg:     UserMessage{Message: "No dataset has been uploaded", Action: "Upload a CSV or Excel file first", Code: "DS001"},
	},
	{
		pattern: "unsupported file format",
		msg:     UserMessage{Message: "Unsupported file format", Action: "Upload a .csv, .xlsx or .xls file", Code: "DS002"},
	},
	{
		pattern: "not found in dataset",
		msg:     UserMessage{Message: "Column not found in dataset", Action: "Check the column name against the columns action", Code: "DS003"},
	},

	// Analysis
	{
		pattern: "invalid action or missing column",
		msg:     UserMessage{Message: "Invalid analysis request", Action: "Pick a listed action and supply a column where required", Code: "AN001"},
	},
	{
		pattern: "numeric columns",
		msg:     UserMessage{Message: "Not enough numeric columns", Action: "Upload a dataset with more numeric columns", Code: "AN002"},
	},
	{
		pattern: "need at least two columns",
		msg:     UserMessage{Message: "Not enough columns for a scatter plot", Action: "Upload a dataset with at least two columns", Code: "AN003"},
	},
	{
		pattern: "is not numeric",
		msg:     UserMessage{Message: "Column is not numeric", Action: "Choose a numeric column for this chart", Code: "AN004"},
	},
	{
		pattern: "analysis error",
		msg:     UserMessage{Message: "Analysis failed", Action: "Please try again or contact support", Code: "AN005"},
	},

	// Row store
	{
		pattern: "sql execution is disabled",
		msg:     UserMessage{Message: "SQL execution is disabled", Action: "Set SQL_EXEC_ENABLED=true to allow it", Code: "DB001"},
	},
	{
		pattern: "row store is not configured",
		msg:     UserMessage{Message: "No row store configured", Action: "Enable the SQLite row store or set DATABASE_URL", Code: "DB002"},
	},
	{
		pattern: "no database available",
		msg:     UserMessage{Message: "No database is reachable", Action: "Please try again in a few moments", Code: "DB003"},
	},
	{
		pattern: "connection refused",
		msg:     UserMessage{Message: "Unable to connect to database", Action: "Please try again in a few moments", Code: "DB004"},
	},
	{
		pattern: "timeout",
		msg:     UserMessage{Message: "Operation timed out", Action: "Try a smaller query or try again later", Code: "DB005"},
	},
	{
		pattern: "syntax error",
		msg:     UserMessage{Message: "SQL syntax error", Action: "Check the statement", Code: "DB006"},
	},
	{
		pattern: "no such table",
		msg:     UserMessage{Message: "Table or column does not exist", Action: "Upload a dataset first or check names", Code: "DB007"},
	},
	{
		pattern: "does not exist",
		msg:     UserMessage{Message: "Table or column does not exist", Action: "Upload a dataset first or check names", Code: "DB007"},
	},
	{
		pattern: "no sql query provided",
		msg:     UserMessage{Message: "No SQL query provided", Action: "Enter a statement to run", Code: "DB008"},
	},
	{
		pattern: "database error",
		msg:     UserMessage{Message: "The database reported an error", Action: "Check the statement and try again", Code: "DB009"},
	},

	// File
	{
		pattern: "exceeds the maximum upload size",
		msg:     UserMessage{Message: "File exceeds maximum size limit", Action: "Split the file into smaller chunks", Code: "FILE001"},
	},
	{
		pattern: "no file provided",
		msg:     UserMessage{Message: "No file was selected", Action: "Please select a file to upload", Code: "FILE002"},
	},
	{
		pattern: "no columns to parse",
		msg:     UserMessage{Message: "The uploaded file has no columns", Action: "Upload a file with a header row", Code: "FILE003"},
	},
	{
		pattern: "could not process file",
		msg:     UserMessage{Message: "The file could not be parsed", Action: "Check that the file is valid CSV or Excel", Code: "FILE004"},
	},

	// Throttling
	{
		pattern: "rate limit",
		msg:     UserMessage{Message: "Too many requests", Action: "Please wait a moment before trying again", Code: "RATE001"},
	},
	{
		pattern: "too many concurrent renders",
		msg:     UserMessage{Message: "Chart rendering is busy", Action: "Please wait a moment and try again", Code: "RND001"},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
