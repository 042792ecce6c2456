package domain

import (
	"testing"
	"time"
)

func TestFormatLddapCode(t *testing.T) {
	now := time.Date(2026, time.January, 15, 9, 30, 0, 0, time.UTC)
	got := FormatLddapCode(now, 19)
	want := "01101101-01-0019-2026"
	if got != want {
		t.Fatalf("FormatLddapCode = %q, want %q", got, want)
	}
}

func TestFormatLddapCodePadding(t *testing.T) {
	now := time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC)
	if got := FormatLddapCode(now, 1234); got != "01101101-12-1234-2026" {
		t.Fatalf("FormatLddapCode = %q, want 01101101-12-1234-2026", got)
	}
}

func TestParseLddapCode(t *testing.T) {
	series, year, ok := ParseLddapCode("01101101-03-0042-2025")
	if !ok {
		t.Fatal("ParseLddapCode rejected a well-formed code")
	}
	if series != 42 || year != 2025 {
		t.Fatalf("ParseLddapCode = (%d, %d), want (42, 2025)", series, year)
	}
}

func TestParseLddapCodeMalformed(t *testing.T) {
	for _, code := range []string{
		"",
		"01101101-03-0042",
		"01101101-03-00x2-2025",
		"01101101-03-0042-twenty",
		"not-a-code-at-all-really",
	} {
		if _, _, ok := ParseLddapCode(code); ok {
			t.Fatalf("ParseLddapCode(%q) accepted a malformed code", code)
		}
	}
}

func TestNextSeries(t *testing.T) {
	tests := []struct {
		name     string
		lastCode string
		year     int
		want     int
	}{
		{"first ever", "", 2026, 1},
		{"continues within year", "01101101-02-0019-2026", 2026, 20},
		{"resets on new year", "01101101-12-0873-2025", 2026, 1},
		{"malformed restarts", "garbage", 2026, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextSeries(tt.lastCode, tt.year); got != tt.want {
				t.Fatalf("NextSeries(%q, %d) = %d, want %d", tt.lastCode, tt.year, got, tt.want)
			}
		})
	}
}
