// Package calendar fetches, merges, and selects Google Calendar events
// for the notification engine.
package calendar

import (
	"encoding/json"
	"time"

	"github.com/pmorrell/minder/internal/timewindow"
)

// Event is a calendar event normalized from the provider's wire shape.
// Start/End are nil when the provider value is missing or unparseable;
// such events are skipped by active/upcoming selection but still appear
// in day listings.
type Event struct {
	ID          string
	CalendarID  string
	Title       string
	Description string
	Location    string
	Status      string
	RawStart    string // provider value verbatim: dateTime or date
	RawEnd      string
	Start       *time.Time
	End         *time.Time
	AllDay      bool
	Raw         json.RawMessage // original payload, kept opaque for audit
}

// rawEvent mirrors the Google Calendar v3 event wire format, limited to
// the fields the bot reads.
type rawEvent struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Start       struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"end"`
}

// parseEvent converts one provider payload into an Event. It never
// fails: unparseable times leave Start/End nil.
func parseEvent(payload json.RawMessage, calendarID string) Event {
	var raw rawEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Event{CalendarID: calendarID, Title: "No Title", Status: "confirmed", Raw: payload}
	}

	ev := Event{
		ID:          raw.ID,
		CalendarID:  calendarID,
		Title:       raw.Summary,
		Description: raw.Description,
		Location:    raw.Location,
		Status:      raw.Status,
		AllDay:      raw.Start.Date != "",
		Raw:         payload,
	}
	if ev.Title == "" {
		ev.Title = "No Title"
	}
	if ev.Status == "" {
		ev.Status = "confirmed"
	}

	if ev.AllDay {
		ev.RawStart = raw.Start.Date
		ev.RawEnd = raw.End.Date
	} else {
		ev.RawStart = raw.Start.DateTime
		ev.RawEnd = raw.End.DateTime
		ev.Start = parseTimestamp(raw.Start.DateTime)
		ev.End = parseTimestamp(raw.End.DateTime)
	}

	return ev
}

// parseTimestamp parses an RFC 3339 instant, treating naive values as UTC.
func parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t
	}
	// Some providers emit timestamps without a zone; assume UTC.
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		t = t.UTC()
		return &t
	}
	return nil
}

// Timed reports whether the event has a concrete start and end on the
// timeline, i.e. it is not all-day and both instants parsed.
func (e *Event) Timed() bool {
	return !e.AllDay && e.Start != nil && e.End != nil
}

// ActiveAt reports whether the event is in progress at the given instant,
// inclusive on both ends. All-day and malformed events are never active.
func (e *Event) ActiveAt(now time.Time) bool {
	return e.Timed() && timewindow.Contains(*e.Start, *e.End, now)
}

// UpcomingAt reports whether the event starts strictly after the given
// instant. All-day and malformed events are never upcoming.
func (e *Event) UpcomingAt(now time.Time) bool {
	return e.Timed() && e.Start.After(now)
}
