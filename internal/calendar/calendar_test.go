package calendar

import (
	"testing"
	"time"
)

func TestDayUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 02:30 UTC on the 15th is still the 14th in New York.
	instant := time.Date(2026, 3, 15, 2, 30, 0, 0, time.UTC)
	if got := Day(instant, ny); got != "2026-03-14" {
		t.Errorf("Day(NY) = %q, want 2026-03-14", got)
	}
	if got := Day(instant, time.UTC); got != "2026-03-15" {
		t.Errorf("Day(UTC) = %q, want 2026-03-15", got)
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		day  string
		n    int
		want string
	}{
		{"2026-03-01", -1, "2026-02-28"},
		{"2028-02-28", 1, "2028-02-29"},
		{"2026-12-31", 1, "2027-01-01"},
		{"garbage", 3, "garbage"},
	}
	for _, tt := range tests {
		if got := AddDays(tt.day, tt.n); got != tt.want {
			t.Errorf("AddDays(%q, %d) = %q, want %q", tt.day, tt.n, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	got, err := Parse("2026-03-14", time.UTC)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !got.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Parse = %v", got)
	}
	if _, err := Parse("14/03/2026", time.UTC); err == nil {
		t.Error("expected error for wrong layout")
	}
}
