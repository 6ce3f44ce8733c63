package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pmorrell/minder/internal/timewindow"
)

func TestListCalendarsFiltersAccessRoles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me/calendarList" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [
			{"id": "primary", "accessRole": "owner", "primary": true},
			{"id": "shared", "accessRole": "freeBusyReader"},
			{"id": "team", "accessRole": "reader"}
		]}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL)
	cals, err := client.ListCalendars(context.Background(), "tok")
	if err != nil {
		t.Fatalf("ListCalendars: %v", err)
	}

	if len(cals) != 2 {
		t.Fatalf("got %d calendars, want 2", len(cals))
	}
	if cals[0].ID != "primary" || cals[1].ID != "team" {
		t.Errorf("unexpected calendars: %+v", cals)
	}
}

func TestListEventsQueryAndParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("singleEvents") != "true" || q.Get("orderBy") != "startTime" {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Get("timeMin") == "" || q.Get("timeMax") == "" {
			t.Error("window bounds missing from query")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [
			{"id": "e1", "summary": "Standup", "start": {"dateTime": "2026-08-31T10:00:00Z"}, "end": {"dateTime": "2026-08-31T10:15:00Z"}},
			{"id": "e2", "summary": "Holiday", "start": {"date": "2026-08-31"}, "end": {"date": "2026-09-01"}}
		]}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL)
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	events, err := client.ListEvents(context.Background(), "tok", "primary", timewindow.Day(now))
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Title != "Standup" || !events[0].Timed() {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if !events[1].AllDay {
		t.Errorf("expected second event to be all-day")
	}
}

func TestListEventsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "backend"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL)
	now := time.Now()
	if _, err := client.ListEvents(context.Background(), "tok", "primary", timewindow.Day(now)); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
