package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const peopleCSV = "name,age,city\nAnn,31,Oslo\nBob,42,Rome\nCid,25,Oslo\n"

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInfo(t *testing.T) {
	path := writeTemp(t, "people.csv", peopleCSV)

	out, err := run(t, "info", path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"people.csv: 3 rows x 3 columns", "age", "int64", "object"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestAnalyze(t *testing.T) {
	path := writeTemp(t, "people.csv", peopleCSV)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"columns", []string{"-a", "columns"}, "name\nage\ncity\n"},
		{"value counts sorted", []string{"-a", "value_counts", "-c", "city"}, "Oslo\t2\nRome\t1\n"},
		{"dtypes", []string{"-a", "dtypes"}, "age\t\"int64\"\ncity\t\"object\"\nname\t\"object\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"analyze", path}, tt.args...)...)
			if err != nil {
				t.Fatal(err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestAnalyze_ChartToFile(t *testing.T) {
	path := writeTemp(t, "people.csv", peopleCSV)
	pngPath := filepath.Join(t.TempDir(), "hist.png")

	if _, err := run(t, "analyze", path, "-a", "histogram", "-c", "age", "-o", pngPath); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("output is not a PNG: %v", err)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	path := writeTemp(t, "people.csv", peopleCSV)

	_, err := run(t, "analyze", path, "-a", "histogram", "-c", "zip")
	if err == nil || !strings.Contains(err.Error(), "Column 'zip' not found in dataset [DS003]") {
		t.Errorf("error = %v", err)
	}

	_, err = run(t, "info", writeTemp(t, "notes.txt", "x"))
	if err == nil || !strings.Contains(err.Error(), "Unsupported file format") {
		t.Errorf("error = %v", err)
	}
}

func TestSQL(t *testing.T) {
	path := writeTemp(t, "people.csv", peopleCSV)
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := run(t, "sql", "--db", db, "--load", path, "SELECT name FROM uploaded_data WHERE city = 'Oslo' ORDER BY id")
	if err != nil {
		t.Fatal(err)
	}
	want := "loaded 3 rows into uploaded_data\n{\"name\":\"Ann\"}\n{\"name\":\"Cid\"}\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	out, err = run(t, "sql", "--db", db, "DELETE FROM uploaded_data")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Query executed successfully. Rows affected: 3\n" {
		t.Errorf("output = %q", out)
	}
}
