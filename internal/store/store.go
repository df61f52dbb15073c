// Package store mirrors uploaded rows into a relational table and runs
// free-form SQL against it.
//
// Two engines implement Engine: PostgreSQL through pgxpool as the primary
// and an embedded SQLite file as the fallback. Failover picks whichever is
// reachable for each call.
package store

import (
	"context"
	"errors"
)

// Table is the mirror table every engine maintains.
const Table = "uploaded_data"

// Record is one mirrored row.
type Record struct {
	Name string
	Age  int
	City string
}

// Engine is a relational backend the mirror can write to.
type Engine interface {
	// Name is the human-readable engine name used in status messages.
	Name() string
	// Ping checks reachability.
	Ping(ctx context.Context) error
	// Acquire checks out a dedicated connection. Release it when done.
	Acquire(ctx context.Context) (Session, error)
	Close()
}

// Session is a checked-out connection.
type Session interface {
	// EnsureSchema creates the mirror table if it does not exist.
	EnsureSchema(ctx context.Context) error
	// ReplaceRows clears the mirror table and inserts recs in one transaction.
	ReplaceRows(ctx context.Context, recs []Record) (int, error)
	// Query runs a row-returning statement.
	Query(ctx context.Context, sql string) ([]map[string]any, error)
	// Exec runs any other statement and reports affected rows.
	Exec(ctx context.Context, sql string) (int64, error)
	Release()
}

var (
	// ErrNoEngine means no configured engine answered a ping.
	ErrNoEngine = errors.New("no database available")

	// ErrEmptySQL is returned for a blank statement.
	ErrEmptySQL = errors.New("No SQL query provided")
)

// DBError wraps a failure reported while running user SQL.
type DBError struct {
	Err error
}

func (e *DBError) Error() string { return "Database error: " + e.Err.Error() }

func (e *DBError) Unwrap() error { return e.Err }
