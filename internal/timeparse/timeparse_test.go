package timeparse

import (
	"testing"
	"time"
)

func local(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, time.Local)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"day-first with minutes", "26/09/2025 13:35", local(2025, time.September, 26, 13, 35, 0), true},
		{"day-first with seconds", "26/09/2025 13:35:07", local(2025, time.September, 26, 13, 35, 7), true},
		{"unpadded day-first", "6/9/2025 8:05", local(2025, time.September, 6, 8, 5, 0), true},
		{"iso with T", "2025-09-26T13:35:00", local(2025, time.September, 26, 13, 35, 0), true},
		{"iso with space", "2025-09-26 13:35:00", local(2025, time.September, 26, 13, 35, 0), true},
		{"dashed day-first", "26-09-2025 13:35", local(2025, time.September, 26, 13, 35, 0), true},
		{"dotted day-first", "26.09.2025 13:35", local(2025, time.September, 26, 13, 35, 0), true},
		{"date only", "26/09/2025", local(2025, time.September, 26, 0, 0, 0), true},
		{"iso date only", "2025-09-26", local(2025, time.September, 26, 0, 0, 0), true},
		{"embedded in noise", "garbage 26/09/2025 garbage 13:35", local(2025, time.September, 26, 0, 0, 0), true},
		{"embedded date and time", "paid on 26/09/2025 13:35 by card", local(2025, time.September, 26, 13, 35, 0), true},
		{"leading date with trailing junk", "26/09/2025 13:35 (confirmed)", local(2025, time.September, 26, 13, 35, 0), true},
		{"surrounding whitespace", "  26/09/2025 13:35  ", local(2025, time.September, 26, 13, 35, 0), true},
		{"empty", "", time.Time{}, false},
		{"nan sentinel", "NaN", time.Time{}, false},
		{"not a date", "not a date", time.Time{}, false},
		{"two-digit year rejected", "26/09/25 13:35", time.Time{}, false},
		{"month overflow rejected", "26/26/2025", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDayFirstAmbiguity(t *testing.T) {
	// 03/04 must read as 3 April, never 4 March.
	got, ok := Parse("03/04/2025 10:00")
	if !ok {
		t.Fatal("expected a parse")
	}
	if got.Month() != time.April || got.Day() != 3 {
		t.Errorf("Parse(\"03/04/2025 10:00\") = %v, want day-first 3 April", got)
	}
}
