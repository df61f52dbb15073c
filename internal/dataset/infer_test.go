package dataset

import (
	"math"
	"testing"
)

func TestBuildColumn_Kind(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  Kind
	}{
		{"integers", []string{"1", "-2", "30"}, KindInt},
		{"integers with gap", []string{"1", "", "3"}, KindFloat},
		{"floats", []string{"1.5", "2", "3e2"}, KindFloat},
		{"all missing", []string{"", ""}, KindFloat},
		{"booleans", []string{"True", "false", "TRUE"}, KindBool},
		{"booleans with gap", []string{"true", "", "false"}, KindObject},
		{"iso dates", []string{"2024-01-02", "2024-02-29"}, KindDatetime},
		{"us dates", []string{"1/2/2024", "12/31/2023"}, KindDatetime},
		{"mixed text", []string{"1", "two", "3"}, KindObject},
		{"hex is text", []string{"0x10", "0x20"}, KindObject},
		{"padded numbers", []string{" 1", "2 "}, KindInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildColumn("c", tt.cells).Kind; got != tt.want {
				t.Errorf("kind = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNormalizeCell(t *testing.T) {
	for _, na := range []string{"", "  ", "NA", "N/A", "NaN", "null", "None", "#N/A", "<NA>"} {
		if got := normalizeCell(na); got != "" {
			t.Errorf("normalizeCell(%q) = %q, want missing", na, got)
		}
	}
	for _, v := range []string{"0", "none", "Na", "n.a."} {
		if got := normalizeCell(v); got != v {
			t.Errorf("normalizeCell(%q) = %q, want unchanged", v, got)
		}
	}
}

func TestColumn_Numbers(t *testing.T) {
	c := buildColumn("x", []string{"1.5", "", "4"})

	if got := c.Floats(); len(got) != 2 || got[0] != 1.5 || got[1] != 4 {
		t.Errorf("Floats() = %v", got)
	}
	if _, ok := c.Float(1); ok {
		t.Error("Float(1) ok = true for missing cell")
	}
	if v, ok := c.Float(2); !ok || v != 4 {
		t.Errorf("Float(2) = %v, %v", v, ok)
	}
	if got := c.Display(2); got != "4.0" {
		t.Errorf("Display(2) = %q, want 4.0", got)
	}

	text := buildColumn("t", []string{"a"})
	if text.Floats() != nil {
		t.Error("Floats() on text column should be nil")
	}
}

func TestColumn_DisplayLargeIntegers(t *testing.T) {
	c := buildColumn("id", []string{"9007199254740993", "9007199254740992", "9223372036854775807", " 007"})
	if c.Kind != KindInt {
		t.Fatalf("kind = %s, want int64", c.Kind)
	}

	want := []string{"9007199254740993", "9007199254740992", "9223372036854775807", "7"}
	for i, w := range want {
		if got := c.Display(i); got != w {
			t.Errorf("Display(%d) = %q, want %q", i, got, w)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		v    float64
		k    Kind
		want string
	}{
		{3, KindInt, "3"},
		{3, KindFloat, "3.0"},
		{2.5, KindFloat, "2.5"},
		{-0.125, KindFloat, "-0.125"},
		{math.Inf(1), KindFloat, "+Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatNumber(tt.v, tt.k); got != tt.want {
				t.Errorf("FormatNumber(%v, %s) = %q, want %q", tt.v, tt.k, got, tt.want)
			}
		})
	}
}
