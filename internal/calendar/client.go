package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pmorrell/minder/internal/timewindow"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// maxEventsPerCalendar bounds a single listing request.
const maxEventsPerCalendar = 50

// CalendarRef is one entry of the user's calendar list.
type CalendarRef struct {
	ID         string `json:"id"`
	Summary    string `json:"summary"`
	AccessRole string `json:"accessRole"`
	Primary    bool   `json:"primary"`
}

// Readable reports whether the bot may list events from this calendar.
func (c CalendarRef) Readable() bool {
	switch c.AccessRole {
	case "owner", "writer", "reader":
		return true
	}
	return false
}

// Client talks to the Google Calendar v3 REST API with a bearer token
// obtained from the credential provider.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a calendar API client with a short request timeout.
func NewClient() *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// ListCalendars returns the calendars the token can read, in provider
// listing order. Calendars with insufficient access roles are excluded.
func (c *Client) ListCalendars(ctx context.Context, token string) ([]CalendarRef, error) {
	var body struct {
		Items []CalendarRef `json:"items"`
	}
	if err := c.get(ctx, token, c.baseURL+"/users/me/calendarList", &body); err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	readable := make([]CalendarRef, 0, len(body.Items))
	for _, cal := range body.Items {
		if cal.Readable() {
			readable = append(readable, cal)
		}
	}
	return readable, nil
}

// ListEvents returns the events of one calendar inside the window,
// expanded to single occurrences and ordered by start time.
func (c *Client) ListEvents(ctx context.Context, token, calendarID string, w timewindow.Window) ([]Event, error) {
	q := url.Values{}
	q.Set("timeMin", w.From.UTC().Format(time.RFC3339))
	q.Set("timeMax", w.To.UTC().Format(time.RFC3339))
	q.Set("maxResults", fmt.Sprint(maxEventsPerCalendar))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")

	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", c.baseURL, url.PathEscape(calendarID), q.Encode())

	var body struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := c.get(ctx, token, endpoint, &body); err != nil {
		return nil, fmt.Errorf("failed to list events for calendar %s: %w", calendarID, err)
	}

	events := make([]Event, 0, len(body.Items))
	for _, item := range body.Items {
		events = append(events, parseEvent(item, calendarID))
	}
	return events, nil
}

func (c *Client) get(ctx context.Context, token, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
