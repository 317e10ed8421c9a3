package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-spiral/internal/chart"
	"github.com/litescript/ls-spiral/internal/state"
)

func planetsSnapshot(t *testing.T, c *chart.Chart) state.Snapshot {
	t.Helper()
	st, err := state.NewManager(state.DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		st.SetChart(c, "table", nil)
	}
	return st.Snapshot()
}

func TestPlanetsCursor(t *testing.T) {
	snap := planetsSnapshot(t, equalChart(
		chart.Planet{Name: "Sun", AbsoluteDegree: 10},
		chart.Planet{Name: "Moon", AbsoluteDegree: 130},
		chart.Planet{Name: "Mars", AbsoluteDegree: 190},
	))
	m := NewPlanetsModel().SetSize(120, 30).UpdateData(snap)

	keys := []struct {
		msg  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, 0},
		{tea.KeyMsg{Type: tea.KeyDown}, 1},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, 2},
		{tea.KeyMsg{Type: tea.KeyDown}, 2},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, 1},
		{tea.KeyMsg{Type: tea.KeyHome}, 0},
		{tea.KeyMsg{Type: tea.KeyEnd}, 2},
	}
	for _, k := range keys {
		m, _ = m.Update(k.msg)
		if m.cursor != k.want {
			t.Errorf("after %s: cursor = %d, want %d", k.msg, m.cursor, k.want)
		}
	}

	p, ok := m.Selected()
	if !ok || p.Name != "Mars" {
		t.Errorf("Selected() = %q, %v", p.Name, ok)
	}
}

func TestPlanetsCursorClampedOnUpdate(t *testing.T) {
	three := planetsSnapshot(t, equalChart(
		chart.Planet{Name: "Sun", AbsoluteDegree: 10},
		chart.Planet{Name: "Moon", AbsoluteDegree: 130},
		chart.Planet{Name: "Mars", AbsoluteDegree: 190},
	))
	one := planetsSnapshot(t, equalChart(chart.Planet{Name: "Sun", AbsoluteDegree: 10}))

	m := NewPlanetsModel().UpdateData(three)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	m = m.UpdateData(one)
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestPlanetsSelectedEmpty(t *testing.T) {
	m := NewPlanetsModel()
	if _, ok := m.Selected(); ok {
		t.Error("expected no selection without data")
	}
	if got := m.View(); !strings.Contains(got, "Waiting for data") {
		t.Errorf("View() = %q", got)
	}
}

func TestPlanetsView(t *testing.T) {
	c := equalChart(
		chart.Planet{Name: "Sun", AbsoluteDegree: 10, APIHouseID: 3},
		chart.Planet{Name: "Moon", AbsoluteDegree: 130},
		chart.Planet{Name: "Mars", AbsoluteDegree: 57},
	)
	m := NewPlanetsModel().SetSize(120, 30).UpdateData(planetsSnapshot(t, c))
	view := m.View()

	for _, want := range []string{
		"Planets", "Sun", "Moon", "Mars",
		"Aries", "Leo",
		"≠3",     // Sun claimed house 3
		"◆3.0°",  // Mars is 3° from the house 3 cusp
		"Aspects", "computed",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "placeholder") {
		t.Error("valid chart should not show placeholder warning")
	}
}

func TestPlanetsViewPlaceholder(t *testing.T) {
	m := NewPlanetsModel().SetSize(120, 30).UpdateData(planetsSnapshot(t, nil))
	if !strings.Contains(m.View(), "placeholder layout: no chart loaded") {
		t.Error("expected placeholder warning")
	}

	bad := &chart.Chart{Planets: []chart.Planet{{Name: "Sun", AbsoluteDegree: 1}}}
	m = m.UpdateData(planetsSnapshot(t, bad))
	view := m.View()
	if !strings.Contains(view, "placeholder layout") || strings.Contains(view, "no chart loaded") {
		t.Errorf("expected the fallback reason, got:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Sun", 10, "Sun"},
		{"Sagittarius", 6, "Sagit…"},
		{"Jupiter", 1, "J"},
		{"☉☽☿", 2, "☉…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
