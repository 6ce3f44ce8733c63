// Package timewindow provides pure interval arithmetic for the
// notification engine. No side effects, no I/O; callers inject the clock.
package timewindow

import "time"

// Window is a half-open-in-spirit but inclusive-on-both-ends time range
// used for calendar queries.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether now lies within [start, end], inclusive on
// both ends. All three instants are compared on the absolute timeline.
func Contains(start, end, now time.Time) bool {
	return !now.Before(start) && !now.After(end)
}

// Until returns how long until start. Results are clamped at zero so a
// negative duration never reaches formatting code.
func Until(start, now time.Time) time.Duration {
	d := start.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// CurrentStatus is the query window for "what's happening now": one hour
// before now through the end of the UTC day, so overrunning events and
// everything still to come today are captured.
func CurrentStatus(now time.Time) Window {
	return Window{
		From: now.Add(-time.Hour),
		To:   endOfDay(now),
	}
}

// Day is the query window for "today's schedule": local midnight through
// 23:59:59.999 of the same day.
func Day(now time.Time) Window {
	u := now.UTC()
	return Window{
		From: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC),
		To:   endOfDay(now),
	}
}

func endOfDay(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999_000_000, time.UTC)
}

// SameHour reports whether two instants fall in the same UTC clock hour.
func SameHour(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Truncate(time.Hour).Equal(bu.Truncate(time.Hour))
}

// DayKey is the per-day period key used by the duplicate-send guard.
func DayKey(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

// HourKey is the per-hour period key used by the duplicate-send guard.
func HourKey(now time.Time) string {
	return now.UTC().Format("2006-01-02T15")
}
