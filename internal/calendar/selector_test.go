package calendar

import (
	"testing"
	"time"
)

func timed(id string, start, end time.Time) Event {
	return Event{ID: id, Title: id, Start: &start, End: &end}
}

func TestSelectActiveAndNext(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	events := []Event{
		timed("past", now.Add(-3*time.Hour), now.Add(-2*time.Hour)),
		timed("active", now.Add(-30*time.Minute), now.Add(30*time.Minute)),
		timed("later", now.Add(2*time.Hour), now.Add(3*time.Hour)),
		timed("soon", now.Add(time.Hour), now.Add(90*time.Minute)),
	}

	sel := Select(events, now)

	if sel.Active == nil || sel.Active.ID != "active" {
		t.Fatalf("Active = %+v, want active", sel.Active)
	}
	if sel.Next == nil || sel.Next.ID != "soon" {
		t.Fatalf("Next = %+v, want soon", sel.Next)
	}
}

func TestSelectIndependentlyAbsent(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	sel := Select(nil, now)
	if sel.Active != nil || sel.Next != nil {
		t.Fatal("empty input must select nothing")
	}

	onlyNext := []Event{timed("soon", now.Add(time.Hour), now.Add(2*time.Hour))}
	sel = Select(onlyNext, now)
	if sel.Active != nil {
		t.Error("expected no active event")
	}
	if sel.Next == nil || sel.Next.ID != "soon" {
		t.Error("expected next event")
	}
}

func TestSelectSkipsAllDayAndMalformed(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	start := now.Add(-time.Hour)
	events := []Event{
		{ID: "allday", AllDay: true, RawStart: "2026-08-31"},
		{ID: "broken", Start: &start}, // missing end
		timed("real", now.Add(time.Hour), now.Add(2*time.Hour)),
	}

	sel := Select(events, now)

	if sel.Active != nil {
		t.Errorf("Active = %+v, want nil", sel.Active)
	}
	if sel.Next == nil || sel.Next.ID != "real" {
		t.Fatalf("Next = %+v, want real", sel.Next)
	}
}

func TestSelectOrderIndependentForDistinctStarts(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	a := timed("a", now.Add(time.Hour), now.Add(2*time.Hour))
	b := timed("b", now.Add(3*time.Hour), now.Add(4*time.Hour))

	selAB := Select([]Event{a, b}, now)
	selBA := Select([]Event{b, a}, now)

	if selAB.Next.ID != "a" || selBA.Next.ID != "a" {
		t.Errorf("result changed with input order: %s vs %s", selAB.Next.ID, selBA.Next.ID)
	}
}

func TestSelectFirstSeenWinsOnExactTie(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	start := now.Add(time.Hour)
	first := timed("first", start, start.Add(time.Hour))
	second := timed("second", start, start.Add(30*time.Minute))

	sel := Select([]Event{first, second}, now)
	if sel.Next.ID != "first" {
		t.Errorf("Next = %s, want first-seen on exact start tie", sel.Next.ID)
	}
}

func TestSelectDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	events := []Event{
		timed("active", now.Add(-time.Minute), now.Add(time.Minute)),
		timed("soon", now.Add(time.Hour), now.Add(2*time.Hour)),
	}

	for i := 0; i < 5; i++ {
		sel := Select(events, now)
		if sel.Active.ID != "active" || sel.Next.ID != "soon" {
			t.Fatalf("run %d differed: %+v", i, sel)
		}
	}
}
