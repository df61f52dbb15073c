package core

import (
	"context"
	"errors"

	"github.com/JonMunkholm/datalens/internal/dataset"
	"github.com/JonMunkholm/datalens/internal/store"
)

var (
	// ErrNoDataset is returned by Analyze before the first successful upload.
	ErrNoDataset = errors.New("No dataset uploaded. Please upload a dataset first.")

	// ErrSQLDisabled is returned by ExecuteSQL when SQL_EXEC_ENABLED is false.
	ErrSQLDisabled = errors.New("SQL execution is disabled")

	// ErrNoRowStore is returned by ExecuteSQL when no engine is configured.
	ErrNoRowStore = errors.New("Row store is not configured")
)

// LoadError wraps a parse failure of an uploaded file.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return "Could not process file: " + e.Err.Error() }

func (e *LoadError) Unwrap() error { return e.Err }

// Analyzer validates and computes one analysis request.
// Satisfied by *analysis.Dispatcher.
type Analyzer interface {
	Run(ctx context.Context, ds *dataset.Dataset, tag, column string) (any, error)
}

// RowStore mirrors datasets and runs SQL. Satisfied by *store.Failover.
type RowStore interface {
	Mirror(ctx context.Context, ds *dataset.Dataset) (store.MirrorResult, error)
	Execute(ctx context.Context, sql string) (*store.ExecResult, error)
	Ping(ctx context.Context) (store.Selection, error)
}

// UploadResult describes a loaded dataset and the outcome of its mirror.
type UploadResult struct {
	Message   string
	Shape     [2]int
	Columns   []string
	Dtypes    map[string]string
	DatasetID string

	// Mirror outcome. Mirrored is false when no mirror was requested.
	Mirrored     bool
	Success      bool
	RowsInserted int
	DBStatus     string
}

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
