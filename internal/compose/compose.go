// Package compose renders notification bodies. Every function is pure:
// same inputs, same text, no I/O.
package compose

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pmorrell/minder/internal/calendar"
	"github.com/pmorrell/minder/internal/models"
	"github.com/pmorrell/minder/internal/timewindow"
)

const (
	clockLayout = "03:04 PM"
	dateLayout  = "Monday, January 02"

	// maxTaskLines caps the open-task block; the remainder collapses
	// into a "+N more" suffix.
	maxTaskLines = 5

	timeTBD = "Time TBD"
)

// CurrentStatus renders the frequent "what's happening now" message:
// the active event (or a free variant), the next event countdown, and
// always a task-reminder block.
func CurrentStatus(sel calendar.Selection, openTasks []models.Task, userName string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👋 Hello %s!\n\n", userName)

	switch {
	case sel.Active != nil:
		ev := sel.Active
		b.WriteString("📅 *Current Event*\n\n")
		fmt.Fprintf(&b, "*%s*\n", ev.Title)
		fmt.Fprintf(&b, "🕐 %s - %s on %s\n", clock(ev.Start), clock(ev.End), day(ev.Start))
		if ev.Location != "" {
			fmt.Fprintf(&b, "📍 %s\n", ev.Location)
		}
		if ev.End != nil && ev.End.After(now) {
			fmt.Fprintf(&b, "⏳ Ends in %s\n", countdown(ev.End.Sub(now)))
		}
	case sel.Next != nil:
		b.WriteString("📅 *Current Status*\n")
		fmt.Fprintf(&b, "You're free right now — next event starts in %s.\n", countdown(timewindow.Until(*sel.Next.Start, now)))
	default:
		b.WriteString("📅 *Current Status*\n")
		b.WriteString("No events scheduled for right now.\n\n")
		b.WriteString("You're free to work on other tasks! 🚀\n")
	}

	if sel.Next != nil {
		b.WriteString("\n⏭ *Up Next*\n")
		fmt.Fprintf(&b, "*%s*\n", sel.Next.Title)
		fmt.Fprintf(&b, "🕐 %s - %s, starts in %s\n", clock(sel.Next.Start), clock(sel.Next.End), countdown(timewindow.Until(*sel.Next.Start, now)))
		if sel.Next.Location != "" {
			fmt.Fprintf(&b, "📍 %s\n", sel.Next.Location)
		}
	}

	b.WriteString("\n")
	writeTaskReminders(&b, openTasks)

	return b.String()
}

// MorningSummary renders the once-daily digest: today's events (all-day
// and timed), the due-today block, and the capped open-task block.
func MorningSummary(events []calendar.Event, dueToday, openTasks []models.Task, userName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌅 Good morning %s!\n\n", userName)
	b.WriteString("📅 *Your Schedule Today*\n\n")

	if len(events) == 0 {
		b.WriteString("No events scheduled for today.\n\n")
		b.WriteString("Perfect day to plan and be productive! 🚀\n")
	} else {
		// Sort by the raw start string: timed events order correctly
		// among themselves; all-day date strings interleave lexically
		// with them, which is the documented behavior.
		sorted := make([]calendar.Event, len(events))
		copy(sorted, events)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].RawStart < sorted[j].RawStart
		})

		for i, ev := range sorted {
			fmt.Fprintf(&b, "%d. *%s*\n", i+1, ev.Title)
			if ev.AllDay {
				b.WriteString("   📅 All Day\n")
			} else {
				fmt.Fprintf(&b, "   🕐 %s - %s\n", clock(ev.Start), clock(ev.End))
			}
			if ev.Location != "" {
				fmt.Fprintf(&b, "   📍 %s\n", ev.Location)
			}
			b.WriteString("\n")
		}

		plural := "s"
		if len(sorted) == 1 {
			plural = ""
		}
		fmt.Fprintf(&b, "Total: %d event%s today\n", len(sorted), plural)
	}

	b.WriteString("\n📌 *Due Today*\n")
	if len(dueToday) == 0 {
		b.WriteString("Nothing due today.\n")
	} else {
		for _, t := range dueToday {
			fmt.Fprintf(&b, "- %s\n", taskLine(t))
		}
	}

	b.WriteString("\n")
	writeTaskReminders(&b, openTasks)

	b.WriteString("\nHave a great day! 💪")
	return b.String()
}

// NextEvent renders the short reply for the next upcoming event.
func NextEvent(sel calendar.Selection, now time.Time) string {
	if sel.Next == nil {
		return "Nothing else on the calendar today. Enjoy the free time! 🚀"
	}
	var b strings.Builder
	ev := sel.Next
	b.WriteString("⏭ *Up Next*\n")
	fmt.Fprintf(&b, "*%s*\n", ev.Title)
	fmt.Fprintf(&b, "🕐 %s - %s, starts in %s\n", clock(ev.Start), clock(ev.End), countdown(timewindow.Until(*ev.Start, now)))
	if ev.Location != "" {
		fmt.Fprintf(&b, "📍 %s\n", ev.Location)
	}
	return b.String()
}

// TaskList renders the full open-task list for the /tasks reply. Unlike
// the reminder block inside notifications it is never capped.
func TaskList(openTasks []models.Task) string {
	if len(openTasks) == 0 {
		return "No open tasks — all clear! ✅"
	}
	var b strings.Builder
	b.WriteString("📝 *Your Tasks*\n")
	for i, t := range openTasks {
		fmt.Fprintf(&b, "%d. %s\n", i+1, taskLine(t))
	}
	return b.String()
}

func writeTaskReminders(b *strings.Builder, openTasks []models.Task) {
	b.WriteString("📝 *Task Reminders*\n")
	if len(openTasks) == 0 {
		b.WriteString("No open tasks — all clear! ✅\n")
		return
	}

	shown := openTasks
	if len(shown) > maxTaskLines {
		shown = shown[:maxTaskLines]
	}
	for i, t := range shown {
		fmt.Fprintf(b, "%d. %s\n", i+1, taskLine(t))
	}
	if rest := len(openTasks) - len(shown); rest > 0 {
		fmt.Fprintf(b, "…and %d more\n", rest)
	}
}

func taskLine(t models.Task) string {
	line := t.Name
	if t.Priority != models.PriorityUnset {
		line += fmt.Sprintf(" (p%d)", t.Priority)
	}
	if t.DueDate != nil {
		line += fmt.Sprintf(" — due %s", t.DueDate.UTC().Format("Jan 02"))
	}
	return line
}

// clock renders an instant on the 12-hour clock, degrading to a
// placeholder when the time never parsed.
func clock(t *time.Time) string {
	if t == nil {
		return timeTBD
	}
	return t.UTC().Format(clockLayout)
}

func day(t *time.Time) string {
	if t == nil {
		return "Date TBD"
	}
	return t.UTC().Format(dateLayout)
}

// countdown renders a duration floored to whole minutes, omitting the
// hour part when it is zero.
func countdown(d time.Duration) string {
	minutes := int(d / time.Minute)
	if minutes <= 0 {
		return "less than 1m"
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
