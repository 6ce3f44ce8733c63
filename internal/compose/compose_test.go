package compose

import (
	"strings"
	"testing"
	"time"

	"github.com/pmorrell/minder/internal/calendar"
	"github.com/pmorrell/minder/internal/models"
)

func timedEvent(title string, start, end time.Time) calendar.Event {
	return calendar.Event{
		Title:    title,
		RawStart: start.Format(time.RFC3339),
		RawEnd:   end.Format(time.RFC3339),
		Start:    &start,
		End:      &end,
	}
}

// Scenario: an event in progress, nothing after it.
func TestCurrentStatusActiveEventNoNext(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 30, 0, 0, time.UTC)
	ev := timedEvent("Design review", now.Add(-30*time.Minute), now.Add(30*time.Minute))

	got := CurrentStatus(calendar.Selection{Active: &ev}, nil, "Sam", now)

	for _, want := range []string{
		"*Current Event*",
		"*Design review*",
		"03:00 PM - 04:00 PM",
		"Ends in 30m",
		"*Task Reminders*",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("message missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Up Next") {
		t.Errorf("unexpected next-event block:\n%s", got)
	}
}

// Scenario: no events at all; the free branch and a task block must
// render even with an empty task list.
func TestCurrentStatusFreeNoTasks(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)

	got := CurrentStatus(calendar.Selection{}, nil, "Sam", now)

	if !strings.Contains(got, "No events scheduled for right now.") {
		t.Errorf("free branch missing:\n%s", got)
	}
	if !strings.Contains(got, "No open tasks — all clear! ✅") {
		t.Errorf("empty task variant missing:\n%s", got)
	}
}

func TestCurrentStatusFreeWithNext(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
	next := timedEvent("1:1 with Ada", now.Add(80*time.Minute), now.Add(110*time.Minute))

	got := CurrentStatus(calendar.Selection{Next: &next}, nil, "Sam", now)

	if !strings.Contains(got, "You're free right now — next event starts in 1h 20m.") {
		t.Errorf("free-with-next variant missing:\n%s", got)
	}
	if !strings.Contains(got, "*1:1 with Ada*") {
		t.Errorf("next block missing:\n%s", got)
	}
}

func TestCurrentStatusCountdownOmitsZeroHours(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
	next := timedEvent("Sync", now.Add(45*time.Minute+30*time.Second), now.Add(2*time.Hour))

	got := CurrentStatus(calendar.Selection{Next: &next}, nil, "Sam", now)

	// 45m30s floors to 45 whole minutes, no hour part.
	if !strings.Contains(got, "starts in 45m") {
		t.Errorf("countdown not floored to minutes:\n%s", got)
	}
}

// Scenario: zero events and zero tasks; both empty branches must render,
// never an empty string.
func TestMorningSummaryEmptyDay(t *testing.T) {
	got := MorningSummary(nil, nil, nil, "Sam")

	if !strings.Contains(got, "No events scheduled for today.") {
		t.Errorf("no-events branch missing:\n%s", got)
	}
	if !strings.Contains(got, "No open tasks — all clear! ✅") {
		t.Errorf("all-complete branch missing:\n%s", got)
	}
	if !strings.Contains(got, "Nothing due today.") {
		t.Errorf("due-today empty branch missing:\n%s", got)
	}
}

func TestMorningSummaryOrdersByRawStart(t *testing.T) {
	base := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	later := timedEvent("Afternoon sync", base.Add(15*time.Hour), base.Add(16*time.Hour))
	earlier := timedEvent("Standup", base.Add(9*time.Hour), base.Add(10*time.Hour))
	allDay := calendar.Event{Title: "Conference", AllDay: true, RawStart: "2026-08-31", RawEnd: "2026-09-01"}

	got := MorningSummary([]calendar.Event{later, allDay, earlier}, nil, nil, "Sam")

	// All-day date strings sort lexically among RFC 3339 timestamps, so
	// "2026-08-31" lands before "2026-08-31T09:...".
	posAllDay := strings.Index(got, "Conference")
	posEarlier := strings.Index(got, "Standup")
	posLater := strings.Index(got, "Afternoon sync")
	if !(posAllDay < posEarlier && posEarlier < posLater) {
		t.Errorf("events out of order:\n%s", got)
	}
	if !strings.Contains(got, "📅 All Day") {
		t.Errorf("all-day marker missing:\n%s", got)
	}
	if !strings.Contains(got, "Total: 3 events today") {
		t.Errorf("total line missing:\n%s", got)
	}
}

func TestMorningSummaryCapsOpenTasks(t *testing.T) {
	open := make([]models.Task, 8)
	for i := range open {
		open[i] = models.Task{Name: "Task " + string(rune('A'+i))}
	}

	got := MorningSummary(nil, nil, open, "Sam")

	if !strings.Contains(got, "…and 3 more") {
		t.Errorf("overflow suffix missing:\n%s", got)
	}
	if strings.Contains(got, "Task F") {
		t.Errorf("task beyond cap rendered:\n%s", got)
	}
}

func TestMalformedTimeDegradesToPlaceholder(t *testing.T) {
	ev := calendar.Event{Title: "Broken", RawStart: "garbage", RawEnd: "garbage"}

	got := MorningSummary([]calendar.Event{ev}, nil, nil, "Sam")

	if !strings.Contains(got, "Time TBD") {
		t.Errorf("placeholder missing:\n%s", got)
	}
}

// Composing then re-parsing the rendered clock string recovers the
// original hour and minute for any valid timed event.
func TestClockRoundTrip(t *testing.T) {
	for _, hm := range [][2]int{{0, 0}, {0, 5}, {9, 30}, {12, 0}, {15, 45}, {23, 59}} {
		start := time.Date(2026, 8, 31, hm[0], hm[1], 0, 0, time.UTC)
		rendered := clock(&start)

		parsed, err := time.Parse(clockLayout, rendered)
		if err != nil {
			t.Fatalf("re-parse %q: %v", rendered, err)
		}
		if parsed.Hour()%12 != start.Hour()%12 || parsed.Minute() != start.Minute() {
			t.Errorf("round trip %02d:%02d -> %q -> %02d:%02d", start.Hour(), start.Minute(), rendered, parsed.Hour(), parsed.Minute())
		}
	}
}

func TestTaskLineMarkers(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		task models.Task
		want string
	}{
		{models.Task{Name: "Plain"}, "Plain"},
		{models.Task{Name: "Ranked", Priority: 4}, "Ranked (p4)"},
		{models.Task{Name: "Dated", DueDate: &due}, "Dated — due Sep 01"},
		{models.Task{Name: "Both", Priority: 2, DueDate: &due}, "Both (p2) — due Sep 01"},
	}
	for _, tt := range tests {
		if got := taskLine(tt.task); got != tt.want {
			t.Errorf("taskLine = %q, want %q", got, tt.want)
		}
	}
}
