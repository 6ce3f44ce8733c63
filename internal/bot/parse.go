package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dueLayout = "2006-01-02"

// ParseCommand splits a message into a command name and its argument
// string. "/add milk p:2" becomes ("add", "milk p:2"). Commands
// addressed to a specific bot, "/add@MinderBot", are accepted too.
// ok is false when the text is not a slash command.
func ParseCommand(text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	if head == "" {
		return "", "", false
	}
	if at := strings.Index(head, "@"); at >= 0 {
		head = head[:at]
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// taskArgs is the parsed form of /add and /edit arguments: free text
// forms the task name, "p:N" and "due:YYYY-MM-DD" tokens set fields.
type taskArgs struct {
	name        string
	priority    int
	due         *time.Time
	hasPriority bool
	hasDue      bool
}

func parseTaskArgs(args string) (taskArgs, error) {
	var parsed taskArgs
	var nameParts []string

	for _, field := range strings.Fields(args) {
		lower := strings.ToLower(field)
		switch {
		case strings.HasPrefix(lower, "p:"):
			n, err := strconv.Atoi(field[2:])
			if err != nil {
				return parsed, fmt.Errorf("priority must be a number, got %q", field[2:])
			}
			parsed.priority = n
			parsed.hasPriority = true
		case strings.HasPrefix(lower, "due:"):
			d, err := time.ParseInLocation(dueLayout, field[4:], time.UTC)
			if err != nil {
				return parsed, fmt.Errorf("due date must look like 2025-09-15, got %q", field[4:])
			}
			parsed.due = &d
			parsed.hasDue = true
		default:
			nameParts = append(nameParts, field)
		}
	}

	parsed.name = strings.Join(nameParts, " ")
	return parsed, nil
}

// parseRemind understands two forms:
//
//	/remind in 45m take out the trash
//	/remind 18:30 take out the trash
//
// The clock form uses the given location and rolls to tomorrow when the
// time already passed today.
func parseRemind(args string, now time.Time, loc *time.Location) (time.Time, string, error) {
	if loc == nil {
		loc = time.UTC
	}
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return time.Time{}, "", fmt.Errorf("usage: /remind in 45m <text> or /remind 18:30 <text>")
	}

	if strings.EqualFold(fields[0], "in") {
		if len(fields) < 3 {
			return time.Time{}, "", fmt.Errorf("usage: /remind in 45m <text>")
		}
		d, err := time.ParseDuration(fields[1])
		if err != nil || d <= 0 {
			return time.Time{}, "", fmt.Errorf("could not read %q as a delay like 45m or 2h", fields[1])
		}
		return now.Add(d), strings.Join(fields[2:], " "), nil
	}

	clock, err := time.ParseInLocation("15:04", fields[0], loc)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("could not read %q as a time like 18:30", fields[0])
	}
	local := now.In(loc)
	at := time.Date(local.Year(), local.Month(), local.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
	if !at.After(local) {
		at = at.AddDate(0, 0, 1)
	}
	return at.UTC(), strings.Join(fields[1:], " "), nil
}
