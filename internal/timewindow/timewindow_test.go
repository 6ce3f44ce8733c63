package timewindow

import (
	"testing"
	"time"
)

func TestContains(t *testing.T) {
	start := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before start", start.Add(-time.Minute), false},
		{"at start", start, true},
		{"midway", start.Add(30 * time.Minute), true},
		{"at end", end, true},
		{"after end", end.Add(time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(start, end, tt.now); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestUntilClampsNegative(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	if got := Until(now.Add(90*time.Minute), now); got != 90*time.Minute {
		t.Errorf("Until future = %v, want 90m", got)
	}
	if got := Until(now.Add(-time.Minute), now); got != 0 {
		t.Errorf("Until past = %v, want 0", got)
	}
}

func TestCurrentStatusWindow(t *testing.T) {
	now := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)
	w := CurrentStatus(now)

	if !w.From.Equal(now.Add(-time.Hour)) {
		t.Errorf("From = %v, want one hour before now", w.From)
	}
	wantTo := time.Date(2026, 8, 31, 23, 59, 59, 999_000_000, time.UTC)
	if !w.To.Equal(wantTo) {
		t.Errorf("To = %v, want %v", w.To, wantTo)
	}
}

func TestDayWindow(t *testing.T) {
	now := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)
	w := Day(now)

	if !w.From.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("From = %v, want midnight", w.From)
	}
	if w.To.Hour() != 23 || w.To.Minute() != 59 || w.To.Second() != 59 {
		t.Errorf("To = %v, want end of day", w.To)
	}
}

func TestPeriodKeys(t *testing.T) {
	now := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)

	if got := DayKey(now); got != "2026-08-31" {
		t.Errorf("DayKey = %q", got)
	}
	if got := HourKey(now); got != "2026-08-31T14" {
		t.Errorf("HourKey = %q", got)
	}
}

func TestSameHour(t *testing.T) {
	base := time.Date(2026, 8, 31, 14, 5, 0, 0, time.UTC)

	if !SameHour(base, base.Add(50*time.Minute)) {
		t.Error("instants 50m apart within the hour should match")
	}
	if SameHour(base, base.Add(time.Hour)) {
		t.Error("instants an hour apart should not match")
	}

	// Zone offsets must not split an hour: 14:05 UTC and its +02:00
	// rendering are the same instant.
	plus2 := time.FixedZone("plus2", 2*3600)
	if !SameHour(base, base.In(plus2)) {
		t.Error("same instant in another zone should match")
	}
}
