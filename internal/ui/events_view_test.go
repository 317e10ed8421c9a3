package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-spiral/internal/state"
)

func TestEventsViewEmpty(t *testing.T) {
	m := NewEventsModel().SetSize(100, 20)
	view := m.View()
	if !strings.Contains(view, "Event Log") || !strings.Contains(view, "No events") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestEventsViewNewestFirst(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := state.Snapshot{Events: []state.Event{
		{Type: state.EventChartLoaded, Timestamp: base, Detail: "first.json: 3 planets"},
		{Type: state.EventHouseMismatch, Timestamp: base.Add(time.Second), Planet: "Sun", APIHouse: 3, DerivedHouse: 1},
	}}
	m := NewEventsModel().SetSize(100, 20).UpdateData(snap)
	view := m.View()

	mismatch := strings.Index(view, "Sun: chart says house 3, cusps say 1")
	loaded := strings.Index(view, "first.json")
	if mismatch < 0 || loaded < 0 {
		t.Fatalf("events missing from view:\n%s", view)
	}
	if mismatch > loaded {
		t.Error("newest event should be listed first")
	}
	if !strings.Contains(view, "≠HOUS") || !strings.Contains(view, "●LOAD") {
		t.Error("expected event labels")
	}
	if !strings.Contains(view, "12:00:01") {
		t.Error("expected timestamps")
	}
}

func TestEventsViewLimitedByHeight(t *testing.T) {
	var events []state.Event
	for i := 0; i < 30; i++ {
		events = append(events, state.Event{Type: state.EventAspectsUnmatched, Detail: "pairs"})
	}
	m := NewEventsModel().SetSize(100, 8).UpdateData(state.Snapshot{Events: events})

	if got := strings.Count(m.View(), "pairs"); got != 5 {
		t.Errorf("rendered %d events, want 5", got)
	}
}
