package dataset

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestSkipBOM(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"with BOM", append([]byte{0xEF, 0xBB, 0xBF}, "a,b"...), "a,b"},
		{"without BOM", []byte("a,b"), "a,b"},
		{"empty", []byte{}, ""},
		{"only BOM", []byte{0xEF, 0xBB, 0xBF}, ""},
		{"partial BOM", []byte{0xEF, 0xBB, 'x'}, "\xEF\xBBx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(skipBOM(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRuneSanitizer(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"ascii", []byte("plain,text"), "plain,text"},
		{"valid multibyte", []byte("日本,ü"), "日本,ü"},
		{"invalid byte", []byte("a\xffb"), "a�b"},
		{"truncated rune at end", []byte("ok\xe6\x97"), "ok��"},
		{"latin1 text", []byte("caf\xe9"), "caf�"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// OneByteReader forces runes to straddle Read calls.
			src := skipBOM(iotest.OneByteReader(bytes.NewReader(tt.input)))
			got, err := io.ReadAll(iotest.HalfReader(newRuneSanitizer(src)))
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRuneSanitizer_SmallBuffer(t *testing.T) {
	s := newRuneSanitizer(skipBOM(strings.NewReader("€€")))
	var out []byte
	p := make([]byte, 1)
	for {
		n, err := s.Read(p)
		out = append(out, p[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
	}
	if string(out) != "€€" {
		t.Errorf("got %q, want %q", out, "€€")
	}
}

func TestSizeGuard(t *testing.T) {
	g := &sizeGuard{r: strings.NewReader(strings.Repeat("x", 100)), limit: 10}
	_, err := io.ReadAll(g)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("ReadAll() error = %v, want ErrFileTooLarge", err)
	}
	if g.BytesRead() <= 10 {
		t.Errorf("BytesRead() = %d, want > 10", g.BytesRead())
	}

	data, err := io.ReadAll(guard(strings.NewReader("short"), 10))
	if err != nil || string(data) != "short" {
		t.Errorf("under the limit: %q, %v", data, err)
	}

	if r := guard(strings.NewReader("x"), 0); r == nil {
		t.Error("guard(limit 0) returned nil")
	}
}
