package calendar

import "time"

// Selection is the outcome of picking events relative to an instant.
// Either pointer may be nil independently.
type Selection struct {
	Active *Event // the event in progress right now, if any
	Next   *Event // the nearest upcoming event, if any
}

// Select walks the merged event list once and picks the currently
// active event and the nearest upcoming one. All-day and malformed
// events are skipped. The first active event seen wins; among upcoming
// events the minimum start wins, with exact start-time ties resolved by
// input order (first seen). Apart from that tie-break the result is
// independent of input order.
func Select(events []Event, now time.Time) Selection {
	var sel Selection

	for i := range events {
		ev := &events[i]
		if !ev.Timed() {
			continue
		}

		if sel.Active == nil && ev.ActiveAt(now) {
			sel.Active = ev
		}

		if ev.UpcomingAt(now) {
			if sel.Next == nil || ev.Start.Before(*sel.Next.Start) {
				sel.Next = ev
			}
		}
	}

	return sel
}
