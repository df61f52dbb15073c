package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/datalens/internal/dataset"
)

// fakeEngine is an in-memory Engine whose ping and statements can fail on demand.
type fakeEngine struct {
	name    string
	pingErr error
	execErr error

	mu       sync.Mutex
	rows     []Record
	acquired int
	released int
	schema   bool
}

func (e *fakeEngine) Name() string                 { return e.name }
func (e *fakeEngine) Ping(ctx context.Context) error { return e.pingErr }
func (e *fakeEngine) Close()                       {}

func (e *fakeEngine) Acquire(ctx context.Context) (Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.acquired++
	return &fakeSession{e: e}, nil
}

type fakeSession struct{ e *fakeEngine }

func (s *fakeSession) EnsureSchema(ctx context.Context) error {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	s.e.schema = true
	return nil
}

func (s *fakeSession) ReplaceRows(ctx context.Context, recs []Record) (int, error) {
	if s.e.execErr != nil {
		return 0, s.e.execErr
	}
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	s.e.rows = append([]Record(nil), recs...)
	return len(recs), nil
}

func (s *fakeSession) Query(ctx context.Context, q string) ([]map[string]any, error) {
	if s.e.execErr != nil {
		return nil, s.e.execErr
	}
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	var out []map[string]any
	for _, r := range s.e.rows {
		out = append(out, map[string]any{"name": r.Name, "age": r.Age, "city": r.City})
	}
	return out, nil
}

func (s *fakeSession) Exec(ctx context.Context, q string) (int64, error) {
	if s.e.execErr != nil {
		return 0, s.e.execErr
	}
	return 2, nil
}

func (s *fakeSession) Release() {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	s.e.released++
}

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("people.csv", []string{"Name", "AGE", "city", "extra"}, [][]string{
		{"Ann", "31", "Oslo", "x"},
		{"Bob", "42.0", "Rome", "y"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestFailover_Select(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name         string
		engines      []Engine
		wantEngine   string
		wantFallback bool
		wantErr      bool
	}{
		{"primary healthy", []Engine{&fakeEngine{name: "PostgreSQL"}, &fakeEngine{name: "SQLite"}}, "PostgreSQL", false, false},
		{"primary down", []Engine{&fakeEngine{name: "PostgreSQL", pingErr: down}, &fakeEngine{name: "SQLite"}}, "SQLite", true, false},
		{"only embedded", []Engine{&fakeEngine{name: "SQLite"}}, "SQLite", false, false},
		{"nil primary skipped", []Engine{nil, &fakeEngine{name: "SQLite"}}, "SQLite", false, false},
		{"all down", []Engine{&fakeEngine{name: "PostgreSQL", pingErr: down}, &fakeEngine{name: "SQLite", pingErr: down}}, "", false, true},
		{"none configured", nil, "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFailover(time.Second, tt.engines...)
			e, sel, err := f.Select(context.Background())
			if tt.wantErr {
				if !errors.Is(err, ErrNoEngine) {
					t.Fatalf("Select() error = %v, want ErrNoEngine", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if e.Name() != tt.wantEngine || sel.Engine != tt.wantEngine || sel.Fallback != tt.wantFallback {
				t.Errorf("got %s fallback=%v, want %s fallback=%v", sel.Engine, sel.Fallback, tt.wantEngine, tt.wantFallback)
			}
		})
	}
}

func TestFailover_SelectJoinsPingErrors(t *testing.T) {
	pgErr := errors.New("pg down")
	liteErr := errors.New("disk gone")
	f := NewFailover(time.Second,
		&fakeEngine{name: "PostgreSQL", pingErr: pgErr},
		&fakeEngine{name: "SQLite", pingErr: liteErr})

	_, _, err := f.Select(context.Background())
	if !errors.Is(err, pgErr) || !errors.Is(err, liteErr) {
		t.Errorf("error %v should wrap both ping failures", err)
	}
}

func TestFailover_Mirror(t *testing.T) {
	primary := &fakeEngine{name: "PostgreSQL", pingErr: errors.New("down")}
	fallback := &fakeEngine{name: "SQLite"}
	f := NewFailover(time.Second, primary, fallback)

	res, err := f.Mirror(context.Background(), testDataset(t))
	if err != nil {
		t.Fatalf("Mirror() error = %v", err)
	}
	if res.Rows != 2 || res.Engine != "SQLite" || !res.Fallback {
		t.Errorf("Mirror() = %+v", res)
	}
	if !fallback.schema {
		t.Error("schema was not ensured")
	}
	want := []Record{{"Ann", 31, "Oslo"}, {"Bob", 42, "Rome"}}
	for i, r := range want {
		if fallback.rows[i] != r {
			t.Errorf("row %d = %+v, want %+v", i, fallback.rows[i], r)
		}
	}
	if fallback.acquired != 1 || fallback.released != 1 {
		t.Errorf("acquired %d released %d, want 1/1", fallback.acquired, fallback.released)
	}
	if primary.acquired != 0 {
		t.Error("unreachable primary should not be acquired")
	}
}

func TestFailover_MirrorReleasesOnError(t *testing.T) {
	e := &fakeEngine{name: "SQLite", execErr: errors.New("disk full")}
	f := NewFailover(time.Second, e)

	if _, err := f.Mirror(context.Background(), testDataset(t)); err == nil {
		t.Fatal("Mirror() expected error")
	}
	if e.released != 1 {
		t.Errorf("released = %d, want 1", e.released)
	}
}

func TestFailover_Execute(t *testing.T) {
	e := &fakeEngine{name: "SQLite", rows: []Record{{"Ann", 31, "Oslo"}}}
	f := NewFailover(time.Second, e)
	ctx := context.Background()

	t.Run("select returns rows", func(t *testing.T) {
		res, err := f.Execute(ctx, "  SeLeCt * FROM uploaded_data")
		if err != nil {
			t.Fatal(err)
		}
		if !res.IsQuery || len(res.Rows) != 1 || res.Rows[0]["name"] != "Ann" {
			t.Errorf("Execute() = %+v", res)
		}
	})

	t.Run("other statements report affected rows", func(t *testing.T) {
		res, err := f.Execute(ctx, "DELETE FROM uploaded_data")
		if err != nil {
			t.Fatal(err)
		}
		if res.IsQuery || res.Message() != "Query executed successfully. Rows affected: 2" {
			t.Errorf("Execute() = %+v, message %q", res, res.Message())
		}
	})

	t.Run("blank statement", func(t *testing.T) {
		_, err := f.Execute(ctx, "   ")
		if !errors.Is(err, ErrEmptySQL) || err.Error() != "No SQL query provided" {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("database failure", func(t *testing.T) {
		bad := NewFailover(time.Second, &fakeEngine{name: "SQLite", execErr: errors.New("no such table: nope")})
		_, err := bad.Execute(ctx, "SELECT * FROM nope")
		var dbErr *DBError
		if !errors.As(err, &dbErr) {
			t.Fatalf("error = %v, want *DBError", err)
		}
		if !strings.HasPrefix(err.Error(), "Database error: ") {
			t.Errorf("error = %q", err)
		}
	})

	t.Run("no engine", func(t *testing.T) {
		_, err := NewFailover(time.Second).Execute(ctx, "SELECT 1")
		if !errors.Is(err, ErrNoEngine) {
			t.Errorf("error = %v, want ErrNoEngine", err)
		}
	})
}

func TestIsQuery(t *testing.T) {
	tests := map[string]bool{
		"SELECT 1":                      true,
		"select * from t":               true,
		"  \n\tSelect name FROM t":      true,
		"INSERT INTO t VALUES (1)":      false,
		"WITH x AS (SELECT 1) SELECT *": false,
		"sel":                           false,
		"":                              false,
	}
	for q, want := range tests {
		if got := IsQuery(q); got != want {
			t.Errorf("IsQuery(%q) = %v, want %v", q, got, want)
		}
	}
}
