package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-spiral/internal/astro"
	"github.com/litescript/ls-spiral/internal/chart"
	"github.com/litescript/ls-spiral/internal/state"
)

// Styles for the tables
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E84A27"))
)

// PlanetsModel lists mapped planets and their aspects.
type PlanetsModel struct {
	width    int
	height   int
	cursor   int
	snapshot state.Snapshot
}

// NewPlanetsModel creates a new planets model.
func NewPlanetsModel() PlanetsModel {
	return PlanetsModel{}
}

// SetSize updates the viewport size.
func (m PlanetsModel) SetSize(width, height int) PlanetsModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data and keeps the cursor in range.
func (m PlanetsModel) UpdateData(snapshot state.Snapshot) PlanetsModel {
	m.snapshot = snapshot
	if n := m.count(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	return m
}

func (m PlanetsModel) count() int {
	if m.snapshot.Mapping == nil {
		return 0
	}
	return len(m.snapshot.Mapping.Planets)
}

// Selected returns the planet under the cursor.
func (m PlanetsModel) Selected() (chart.MappedPlanet, bool) {
	if m.cursor < 0 || m.cursor >= m.count() {
		return chart.MappedPlanet{}, false
	}
	return m.snapshot.Mapping.Planets[m.cursor], true
}

// Update handles messages.
func (m PlanetsModel) Update(msg tea.Msg) (PlanetsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		n := m.count()
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < n-1 {
				m.cursor++
			}
		case "home":
			m.cursor = 0
		case "end":
			if n > 0 {
				m.cursor = n - 1
			}
		}
	}
	return m, nil
}

// View renders the planet table and the aspect list.
func (m PlanetsModel) View() string {
	var b strings.Builder
	mapping := m.snapshot.Mapping

	if mapping == nil {
		b.WriteString(mutedStyle.Render("Waiting for data..."))
		return b.String()
	}

	b.WriteString(titleStyle.Render("Planets"))
	if mapping.Fallback {
		b.WriteString("  ")
		reason := "no chart loaded"
		if mapping.FallbackReason != nil && m.snapshot.Chart != nil {
			reason = mapping.FallbackReason.Error()
		}
		b.WriteString(warnStyle.Render("placeholder layout: " + reason))
	}
	b.WriteString("\n\n")

	header := fmt.Sprintf("%-3s %-10s %-12s %7s %6s %6s %6s %8s",
		"", "Body", "Sign", "Degree", "House", "Chart", "Thru", "To cusp")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for i, p := range mapping.Planets {
		row := m.renderPlanetRow(p)
		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderAspects())
	return b.String()
}

func (m PlanetsModel) renderPlanetRow(p chart.MappedPlanet) string {
	apiHouse := "-"
	if p.APIHouseID > 0 {
		apiHouse = fmt.Sprintf("%d", p.APIHouseID)
		if p.HouseMismatch {
			apiHouse = "≠" + apiHouse
		}
	}
	cusp := fmt.Sprintf("%.1f°", p.DegreesToNextCusp)
	if p.IsNearCusp {
		cusp = "◆" + cusp
	}
	sign := fmt.Sprintf("%s %.0f°", p.Sign, p.DegreeInSign)
	return fmt.Sprintf(" %-3s %-10s %-12s %7.2f %6d %6s %5.0f%% %8s",
		string(astro.BodyGlyph(p.Name)),
		truncate(p.Name, 10),
		truncate(sign, 12),
		p.AbsoluteDegree,
		p.House(),
		apiHouse,
		p.Progress*100,
		cusp,
	)
}

func (m PlanetsModel) renderAspects() string {
	var b strings.Builder

	source := "computed"
	if m.snapshot.AspectsExternal {
		source = "from chart"
	}
	b.WriteString(titleStyle.Render("Aspects"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s, %d pairs unmatched", source, m.snapshot.Unmatched)))
	if m.snapshot.Skipped > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf(", %d skipped", m.snapshot.Skipped)))
	}
	b.WriteString("\n")

	if len(m.snapshot.Aspects) == 0 {
		b.WriteString(mutedStyle.Render("  none"))
		return b.String()
	}

	for _, a := range m.snapshot.Aspects {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(a.Color.Hex()))
		b.WriteString("  ")
		b.WriteString(style.Render(a.Type.Symbol()))
		b.WriteString(rowStyle.Render(fmt.Sprintf(" %-10s %-11s %-10s %6.1f°  orb %.1f°",
			a.PlanetA, a.Type, a.PlanetB, a.AngleDiff, a.Orb)))
		b.WriteString("\n")
	}
	return b.String()
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
