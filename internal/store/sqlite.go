package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Pure Go SQLite driver, registers as "sqlite".
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT,
	age INTEGER,
	city TEXT
)`

// SQLite is the embedded fallback engine backed by a single file.
type SQLite struct {
	db   *sql.DB
	path string
}

var _ Engine = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database file at path and
// initialises the mirror table.
func OpenSQLite(ctx context.Context, path string, busyTimeout time.Duration) (*SQLite, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

func (s *SQLite) Name() string { return "SQLite" }

func (s *SQLite) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLite) Acquire(ctx context.Context) (Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &sqliteSession{conn: conn}, nil
}

func (s *SQLite) Close() { s.db.Close() }

type sqliteSession struct {
	conn *sql.Conn
}

func (s *sqliteSession) EnsureSchema(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, sqliteSchema)
	return err
}

func (s *sqliteSession) ReplaceRows(ctx context.Context, recs []Record) (int, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+Table); err != nil {
		return 0, err
	}
	// Restart ids at 1 like TRUNCATE ... RESTART IDENTITY on PostgreSQL.
	if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = ?`, Table); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+Table+` (name, age, city) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.Name, r.Age, r.City); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(recs), nil
}

func (s *sqliteSession) Query(ctx context.Context, q string) ([]map[string]any, error) {
	rows, err := s.conn.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, rowMap(cols, vals))
	}
	return out, rows.Err()
}

func (s *sqliteSession) Exec(ctx context.Context, q string) (int64, error) {
	res, err := s.conn.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *sqliteSession) Release() { s.conn.Close() }
