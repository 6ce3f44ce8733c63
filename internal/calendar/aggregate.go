package calendar

import (
	"context"
	"log/slog"

	"github.com/pmorrell/minder/internal/timewindow"
)

// Source lists calendars and their events. Satisfied by *Client and by
// test fakes.
type Source interface {
	ListCalendars(ctx context.Context, token string) ([]CalendarRef, error)
	ListEvents(ctx context.Context, token, calendarID string, w timewindow.Window) ([]Event, error)
}

// FetchMerged queries every readable calendar independently and
// concatenates the results in listing order. One calendar failing is
// logged and skipped; partial results are acceptable. The merged list
// is not globally sorted; ordering is the selector's and composer's
// concern.
func FetchMerged(ctx context.Context, src Source, token string, w timewindow.Window, logger *slog.Logger) ([]Event, error) {
	calendars, err := src.ListCalendars(ctx, token)
	if err != nil {
		// Fall back to the primary calendar rather than failing outright.
		logger.Warn("Failed to list calendars, falling back to primary", "error", err)
		calendars = []CalendarRef{{ID: "primary", AccessRole: "owner", Primary: true}}
	}

	var merged []Event
	for _, cal := range calendars {
		events, err := src.ListEvents(ctx, token, cal.ID, w)
		if err != nil {
			logger.Warn("Failed to fetch events from calendar, skipping",
				"calendar_id", cal.ID,
				"error", err,
			)
			continue
		}
		merged = append(merged, events...)
	}

	return merged, nil
}
