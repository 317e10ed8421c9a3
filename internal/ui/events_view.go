package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-spiral/internal/scene"
	"github.com/litescript/ls-spiral/internal/state"
)

// eventColors by severity.
var eventColors = map[state.EventType]string{
	state.EventChartLoaded:       "46",
	state.EventFallbackLayout:    "#E84A27",
	state.EventHouseMismatch:     "#FFD700",
	state.EventHouseSignMismatch: "#FFD700",
	state.EventDroppedPlanet:     "#E84A27",
	state.EventUnknownAPIHouse:   "#FFD700",
	state.EventAspectsUnmatched:  "60",
	state.EventAspectsSkipped:    "#FFD700",
}

// EventsModel shows the diagnostic event log, newest first.
type EventsModel struct {
	width    int
	height   int
	snapshot state.Snapshot
}

// NewEventsModel creates a new event log model.
func NewEventsModel() EventsModel {
	return EventsModel{}
}

// SetSize updates the viewport size.
func (m EventsModel) SetSize(width, height int) EventsModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m EventsModel) UpdateData(snapshot state.Snapshot) EventsModel {
	m.snapshot = snapshot
	return m
}

// Update handles messages.
func (m EventsModel) Update(msg tea.Msg) (EventsModel, tea.Cmd) {
	return m, nil
}

// View renders the event log.
func (m EventsModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Event Log"))
	b.WriteString("\n\n")

	events := m.snapshot.Events
	if len(events) == 0 {
		b.WriteString(mutedStyle.Render("No events"))
		return b.String()
	}

	limit := m.height - 3
	if limit < 1 {
		limit = len(events)
	}
	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	for i := len(events) - 1; i >= 0 && limit > 0; i-- {
		e := events[i]
		color, ok := eventColors[e.Type]
		if !ok {
			color = "252"
		}
		b.WriteString(timeStyle.Render(e.Timestamp.Format("15:04:05")))
		b.WriteString(" ")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(scene.EventLabel(e.Type)))
		b.WriteString(" ")
		b.WriteString(rowStyle.Render(scene.DescribeEvent(e)))
		b.WriteString("\n")
		limit--
	}
	return b.String()
}
