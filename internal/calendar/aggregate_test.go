package calendar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pmorrell/minder/internal/timewindow"
)

type fakeSource struct {
	calendars []CalendarRef
	listErr   error
	events    map[string][]Event
	eventErrs map[string]error
}

func (f *fakeSource) ListCalendars(ctx context.Context, token string) ([]CalendarRef, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.calendars, nil
}

func (f *fakeSource) ListEvents(ctx context.Context, token, calendarID string, w timewindow.Window) ([]Event, error) {
	if err := f.eventErrs[calendarID]; err != nil {
		return nil, err
	}
	return f.events[calendarID], nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchMergedConcatenatesInListingOrder(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{
		calendars: []CalendarRef{
			{ID: "work", AccessRole: "owner"},
			{ID: "family", AccessRole: "reader"},
		},
		events: map[string][]Event{
			"work":   {timed("w1", now, now.Add(time.Hour))},
			"family": {timed("f1", now, now.Add(time.Hour)), timed("f2", now, now.Add(time.Hour))},
		},
	}

	merged, err := FetchMerged(context.Background(), src, "tok", timewindow.Day(now), discard())
	if err != nil {
		t.Fatalf("FetchMerged: %v", err)
	}

	if len(merged) != 3 {
		t.Fatalf("got %d events, want 3", len(merged))
	}
	if merged[0].ID != "w1" || merged[1].ID != "f1" || merged[2].ID != "f2" {
		t.Errorf("unexpected order: %s %s %s", merged[0].ID, merged[1].ID, merged[2].ID)
	}
}

func TestFetchMergedSkipsFailingCalendar(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{
		calendars: []CalendarRef{
			{ID: "broken", AccessRole: "owner"},
			{ID: "ok", AccessRole: "owner"},
		},
		events:    map[string][]Event{"ok": {timed("e1", now, now.Add(time.Hour))}},
		eventErrs: map[string]error{"broken": fmt.Errorf("unreachable")},
	}

	merged, err := FetchMerged(context.Background(), src, "tok", timewindow.Day(now), discard())
	if err != nil {
		t.Fatalf("FetchMerged: %v", err)
	}
	if len(merged) != 1 || merged[0].ID != "e1" {
		t.Fatalf("partial results expected, got %+v", merged)
	}
}

func TestFetchMergedFallsBackToPrimary(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{
		listErr: fmt.Errorf("calendar list unavailable"),
		events:  map[string][]Event{"primary": {timed("p1", now, now.Add(time.Hour))}},
	}

	merged, err := FetchMerged(context.Background(), src, "tok", timewindow.Day(now), discard())
	if err != nil {
		t.Fatalf("FetchMerged: %v", err)
	}
	if len(merged) != 1 || merged[0].ID != "p1" {
		t.Fatalf("expected primary fallback, got %+v", merged)
	}
}

func TestReadableAccessRoles(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"owner", true},
		{"writer", true},
		{"reader", true},
		{"freeBusyReader", false},
		{"none", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := (CalendarRef{AccessRole: tt.role}).Readable(); got != tt.want {
			t.Errorf("Readable(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}
