package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/datalens/internal/dataset"
	"github.com/JonMunkholm/datalens/internal/logging"
)

const defaultPingTimeout = 2 * time.Second

// Failover tries engines in order and uses the first one whose ping
// succeeds. Any engine after the first counts as a fallback.
type Failover struct {
	engines     []Engine
	pingTimeout time.Duration
}

// NewFailover orders engines by preference; nil engines are skipped.
func NewFailover(pingTimeout time.Duration, engines ...Engine) *Failover {
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}
	f := &Failover{pingTimeout: pingTimeout}
	for _, e := range engines {
		if e != nil {
			f.engines = append(f.engines, e)
		}
	}
	return f
}

// Selection reports which engine served a call.
type Selection struct {
	Engine   string
	Fallback bool
}

// Select returns the first reachable engine. When none answers, the error
// wraps ErrNoEngine joined with every ping failure.
func (f *Failover) Select(ctx context.Context) (Engine, Selection, error) {
	var errs []error
	for i, e := range f.engines {
		pctx, cancel := context.WithTimeout(ctx, f.pingTimeout)
		err := e.Ping(pctx)
		cancel()
		if err == nil {
			if i > 0 {
				logging.FromContext(ctx).Warn("row store using fallback engine", "engine", e.Name(), "cause", errors.Join(errs...))
			}
			return e, Selection{Engine: e.Name(), Fallback: i > 0}, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
	}
	if len(errs) == 0 {
		return nil, Selection{}, ErrNoEngine
	}
	return nil, Selection{}, fmt.Errorf("%w: %w", ErrNoEngine, errors.Join(errs...))
}

// MirrorResult describes a completed mirror.
type MirrorResult struct {
	Selection
	Rows int
}

// Mirror replaces the mirror table's contents with the projected rows of ds.
func (f *Failover) Mirror(ctx context.Context, ds *dataset.Dataset) (MirrorResult, error) {
	e, sel, err := f.Select(ctx)
	if err != nil {
		return MirrorResult{}, err
	}

	sess, err := e.Acquire(ctx)
	if err != nil {
		return MirrorResult{}, fmt.Errorf("acquire %s connection: %w", e.Name(), err)
	}
	defer sess.Release()

	if err := sess.EnsureSchema(ctx); err != nil {
		return MirrorResult{}, fmt.Errorf("ensure schema: %w", err)
	}
	n, err := sess.ReplaceRows(ctx, Project(ds))
	if err != nil {
		return MirrorResult{}, fmt.Errorf("replace rows: %w", err)
	}

	logging.FromContext(ctx).Info("rows mirrored", "engine", sel.Engine, "fallback", sel.Fallback, "rows", n, "dataset_id", ds.ID)
	return MirrorResult{Selection: sel, Rows: n}, nil
}

// ExecResult is the outcome of one user statement: rows for a query,
// an affected-row count otherwise.
type ExecResult struct {
	Selection
	IsQuery      bool
	Rows         []map[string]any
	RowsAffected int64
}

// Message is the status line shown for non-query statements.
func (r *ExecResult) Message() string {
	return fmt.Sprintf("Query executed successfully. Rows affected: %d", r.RowsAffected)
}

// Execute runs sql as given. Statements starting with SELECT return rows;
// everything else is executed for its affected-row count. Failures other
// than a blank statement come back as *DBError.
func (f *Failover) Execute(ctx context.Context, sql string) (*ExecResult, error) {
	q := strings.TrimSpace(sql)
	if q == "" {
		return nil, ErrEmptySQL
	}

	e, sel, err := f.Select(ctx)
	if err != nil {
		return nil, &DBError{Err: err}
	}
	sess, err := e.Acquire(ctx)
	if err != nil {
		return nil, &DBError{Err: err}
	}
	defer sess.Release()

	logging.FromContext(ctx).Info("executing sql", "engine", sel.Engine, "sql", logging.Truncate(q, 100))

	res := &ExecResult{Selection: sel, IsQuery: IsQuery(q)}
	if res.IsQuery {
		rows, err := sess.Query(ctx, q)
		if err != nil {
			return nil, &DBError{Err: err}
		}
		if rows == nil {
			rows = []map[string]any{}
		}
		res.Rows = rows
		return res, nil
	}

	n, err := sess.Exec(ctx, q)
	if err != nil {
		return nil, &DBError{Err: err}
	}
	res.RowsAffected = n
	return res, nil
}

// IsQuery reports whether the trimmed statement starts with SELECT.
func IsQuery(sql string) bool {
	q := strings.TrimSpace(sql)
	return len(q) >= 6 && strings.EqualFold(q[:6], "select")
}

// Ping reports the engine that would serve the next call.
func (f *Failover) Ping(ctx context.Context) (Selection, error) {
	_, sel, err := f.Select(ctx)
	return sel, err
}

// Close closes every engine.
func (f *Failover) Close() {
	for _, e := range f.engines {
		e.Close()
	}
}
