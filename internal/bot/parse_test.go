package bot

import (
	"testing"
	"time"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		name string
		args string
		ok   bool
	}{
		{"/status", "status", "", true},
		{"/add buy milk p:2", "add", "buy milk p:2", true},
		{"/ADD Buy Milk", "add", "Buy Milk", true},
		{"/next@MinderBot", "next", "", true},
		{"  /help  ", "help", "", true},
		{"hello there", "", "", false},
		{"/", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		name, args, ok := ParseCommand(tt.text)
		if name != tt.name || args != tt.args || ok != tt.ok {
			t.Errorf("ParseCommand(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.text, name, args, ok, tt.name, tt.args, tt.ok)
		}
	}
}

func TestParseTaskArgs(t *testing.T) {
	parsed, err := parseTaskArgs("buy milk p:2 due:2025-09-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.name != "buy milk" {
		t.Errorf("name = %q, want %q", parsed.name, "buy milk")
	}
	if !parsed.hasPriority || parsed.priority != 2 {
		t.Errorf("priority = %d (has=%v), want 2", parsed.priority, parsed.hasPriority)
	}
	if !parsed.hasDue || parsed.due == nil || parsed.due.Format("2006-01-02") != "2025-09-15" {
		t.Errorf("due = %v (has=%v), want 2025-09-15", parsed.due, parsed.hasDue)
	}
}

func TestParseTaskArgsTokensAnywhere(t *testing.T) {
	parsed, err := parseTaskArgs("p:4 call the dentist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.name != "call the dentist" || parsed.priority != 4 {
		t.Errorf("got name=%q priority=%d", parsed.name, parsed.priority)
	}
}

func TestParseTaskArgsPlainName(t *testing.T) {
	parsed, err := parseTaskArgs("water the plants")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.hasPriority || parsed.hasDue {
		t.Errorf("expected no field tokens, got %+v", parsed)
	}
}

func TestParseTaskArgsBadTokens(t *testing.T) {
	if _, err := parseTaskArgs("milk p:high"); err == nil {
		t.Error("expected error for non-numeric priority")
	}
	if _, err := parseTaskArgs("milk due:tomorrow"); err == nil {
		t.Error("expected error for malformed due date")
	}
}

func TestParseRemindDelay(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	at, text, err := parseRemind("in 45m stretch your legs", now, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := now.Add(45 * time.Minute); !at.Equal(want) {
		t.Errorf("at = %v, want %v", at, want)
	}
	if text != "stretch your legs" {
		t.Errorf("text = %q", text)
	}
}

func TestParseRemindClock(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	at, text, err := parseRemind("18:30 take out trash", now, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2025, 9, 1, 18, 30, 0, 0, time.UTC); !at.Equal(want) {
		t.Errorf("at = %v, want %v", at, want)
	}
	if text != "take out trash" {
		t.Errorf("text = %q", text)
	}
}

func TestParseRemindClockRollsToTomorrow(t *testing.T) {
	now := time.Date(2025, 9, 1, 20, 0, 0, 0, time.UTC)
	at, _, err := parseRemind("18:30 water plants", now, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2025, 9, 2, 18, 30, 0, 0, time.UTC); !at.Equal(want) {
		t.Errorf("at = %v, want %v", at, want)
	}
}

func TestParseRemindErrors(t *testing.T) {
	now := time.Now()
	for _, args := range []string{"", "in", "in 45m", "soonish do stuff", "in -5m nope"} {
		if _, _, err := parseRemind(args, now, time.UTC); err == nil {
			t.Errorf("expected error for %q", args)
		}
	}
}
