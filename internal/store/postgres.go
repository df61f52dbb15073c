package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/datalens/internal/config"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	id SERIAL PRIMARY KEY,
	name TEXT,
	age INTEGER,
	city TEXT
)`

var mirrorColumns = []string{"name", "age", "city"}

// Postgres is the primary engine.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Engine = (*Postgres)(nil)

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// OpenPostgres builds a pool from cfg. pgxpool connects lazily, so a
// database that is down at startup only shows up as failed pings.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return NewPostgres(pool), nil
}

func (p *Postgres) Name() string { return "PostgreSQL" }

func (p *Postgres) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

func (p *Postgres) Acquire(ctx context.Context) (Session, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &pgSession{conn: conn}, nil
}

func (p *Postgres) Close() { p.pool.Close() }

type pgSession struct {
	conn *pgxpool.Conn
}

func (s *pgSession) EnsureSchema(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, postgresSchema)
	return err
}

func (s *pgSession) ReplaceRows(ctx context.Context, recs []Record) (int, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE `+Table+` RESTART IDENTITY`); err != nil {
		return 0, err
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{Table}, mirrorColumns,
		pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
			r := recs[i]
			return []any{r.Name, int32(r.Age), r.City}, nil
		}))
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *pgSession) Query(ctx context.Context, q string) ([]map[string]any, error) {
	rows, err := s.conn.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	var out []map[string]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		out = append(out, rowMap(cols, vals))
	}
	return out, rows.Err()
}

func (s *pgSession) Exec(ctx context.Context, q string) (int64, error) {
	tag, err := s.conn.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *pgSession) Release() { s.conn.Release() }
