package ui

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/litescript/ls-spiral/internal/camera"
	"github.com/litescript/ls-spiral/internal/chart"
	"github.com/litescript/ls-spiral/internal/spiral"
	"github.com/litescript/ls-spiral/internal/state"
)

func spiralFixture(t *testing.T) (state.Snapshot, *camera.Choreographer) {
	t.Helper()
	st, err := state.NewManager(state.DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	st.SetChart(equalChart(
		chart.Planet{Name: "Sun", AbsoluteDegree: 15},
		chart.Planet{Name: "Moon", AbsoluteDegree: 135},
	), "fixture", nil)
	snap := st.Snapshot()

	ch := camera.New(snap.Geometry, camera.DefaultConfig(), nil)
	ch.SetBodies(snap.Mapping.Planets)
	return snap, ch
}

// arrive ticks until the camera is idle and settled.
func arrive(t *testing.T, ch *camera.Choreographer) {
	t.Helper()
	for i := 0; i < 2000; i++ {
		ch.Tick(1.0 / 60)
		if ch.ControlsEnabled() && !ch.Settling() {
			return
		}
	}
	t.Fatal("camera never settled")
}

func TestSpiralViewTooSmall(t *testing.T) {
	m := NewSpiralViewModel().SetSize(30, 8)
	if got := m.View(); got != "Terminal too small for spiral view" {
		t.Errorf("View() = %q", got)
	}
}

func TestSpiralViewWaitsForData(t *testing.T) {
	m := NewSpiralViewModel().SetSize(100, 40)
	if got := m.View(); got != "Waiting for data..." {
		t.Errorf("View() = %q", got)
	}
}

func TestSpiralViewOverview(t *testing.T) {
	snap, ch := spiralFixture(t)
	m := NewSpiralViewModel().SetSize(100, 40).UpdateData(snap).UpdateCamera(ch)

	view := m.View()
	if !strings.Contains(view, "Overview") {
		t.Error("HUD should show overview")
	}
	if !strings.Contains(view, "fixture") {
		t.Error("HUD should show chart source")
	}
	if strings.Count(view, "·") < 50 {
		t.Error("expected the spiral to be drawn")
	}

	lines := strings.Split(view, "\n")
	if len(lines) != 40 {
		t.Errorf("expected 40 lines, got %d", len(lines))
	}
}

func TestSpiralViewBodyFocus(t *testing.T) {
	snap, ch := spiralFixture(t)
	ch.SetFocus(camera.BodyFocus(0, "Sun"))
	arrive(t, ch)

	m := NewSpiralViewModel().SetSize(100, 40).UpdateData(snap).UpdateCamera(ch)
	view := m.View()

	if !strings.Contains(view, "☉") {
		t.Error("focused body glyph should be on screen")
	}
	if !strings.Contains(view, "Sun in house 1") {
		t.Error("HUD should name the focused body")
	}
	if !strings.Contains(view, "Aries") {
		t.Error("HUD should show the sign")
	}
	// Focused label is on by default.
	lines := strings.Split(view, "\n")
	canvas := strings.Join(lines[:40-hudLines], "\n")
	if !strings.Contains(canvas, "Sun") {
		t.Error("expected label next to focused body")
	}
}

func TestSpiralViewLayerFocus(t *testing.T) {
	snap, ch := spiralFixture(t)
	ch.SetFocus(camera.LayerFocus(4))
	m := NewSpiralViewModel().SetSize(100, 40).UpdateData(snap).UpdateCamera(ch)

	view := m.View()
	if !strings.Contains(view, "House 5") {
		t.Error("HUD should show the house")
	}
	if !strings.Contains(view, "direct") {
		t.Error("HUD should show the running animation")
	}
	if !strings.Contains(view, "Moon") {
		t.Error("HUD should list planets in house 5")
	}

	ch.SetFocus(camera.LayerFocus(7))
	m = m.UpdateCamera(ch)
	arrive(t, ch)
	m = m.UpdateCamera(ch)
	if !strings.Contains(m.View(), "Empty house") {
		t.Error("house 8 should be empty")
	}
}

func TestSpiralViewLabelToggle(t *testing.T) {
	m := NewSpiralViewModel()
	if m.labelMode != LabelFocused {
		t.Fatalf("default label mode = %s", m.labelMode)
	}

	want := []LabelMode{LabelAll, LabelNone, LabelFocused}
	for _, w := range want {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
		if m.labelMode != w {
			t.Errorf("label mode = %s, want %s", m.labelMode, w)
		}
	}
}

func TestSpiralViewStars(t *testing.T) {
	snap, ch := spiralFixture(t)
	pose := ch.Pose()
	dir := pose.LookAt.Sub(pose.Position).Normalize()
	right := dir.Cross(mgl64.Vec3{0, 1, 0}).Normalize()
	// Off to the side of the spiral but inside the field of view.
	snap.Backdrop = []spiral.BackdropStar{
		{Name: "Regulus", Mag: 1.35, Position: pose.Position.Add(dir.Mul(100)).Add(right.Mul(55))},
	}

	m := NewSpiralViewModel().SetSize(100, 40).UpdateData(snap).UpdateCamera(ch)
	if got := strings.Count(m.View(), "✶"); got != 1 {
		t.Errorf("expected one bright star, got %d", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	if strings.Contains(m.View(), "✶") {
		t.Error("stars should be hidden after s")
	}
}

func TestStarGlyph(t *testing.T) {
	tests := []struct {
		mag  float64
		want rune
	}{
		{-1.4, '✶'},
		{1.35, '✶'},
		{2.0, '✸'},
		{4.2, '.'},
	}
	for _, tt := range tests {
		if got, _ := starGlyph(tt.mag); got != tt.want {
			t.Errorf("starGlyph(%v) = %q, want %q", tt.mag, got, tt.want)
		}
	}
}

func TestCanvasDepth(t *testing.T) {
	cv := newCanvas(10, 5)

	cv.plot(2, 2, 0.5, 'a', "1")
	cv.plot(2, 2, 0.9, 'b', "2")
	if cv.cells[2][2].ch != 'a' {
		t.Errorf("farther plot overwrote nearer cell: %q", cv.cells[2][2].ch)
	}
	cv.plot(2, 2, 0.1, 'c', "3")
	if cv.cells[2][2].ch != 'c' {
		t.Errorf("nearer plot did not win: %q", cv.cells[2][2].ch)
	}

	// Out of bounds is ignored.
	cv.plot(-1, 0, 0, 'x', "")
	cv.plot(10, 0, 0, 'x', "")
}

func TestCanvasLine(t *testing.T) {
	cv := newCanvas(20, 5)
	cv.line(0, 2, 0, 9, 2, 0, '-', "1")
	for x := 0; x <= 9; x++ {
		if cv.cells[2][x].ch != '-' {
			t.Errorf("cell %d not drawn", x)
		}
	}
	if cv.cells[2][10].ch != ' ' {
		t.Error("line overran its end")
	}

	// Huge spans from near-plane crossings are skipped.
	cv.line(0, 0, 0, 1e6, 0, 0, '#', "1")
	if cv.cells[0][0].ch == '#' {
		t.Error("expected degenerate span to be skipped")
	}
	if !math.IsInf(cv.cells[0][0].depth, 1) {
		t.Error("skipped line should leave depth untouched")
	}
}
