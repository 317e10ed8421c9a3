// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-spiral/internal/camera"
	"github.com/litescript/ls-spiral/internal/chart"
	"github.com/litescript/ls-spiral/internal/logging"
	"github.com/litescript/ls-spiral/internal/spiral"
	"github.com/litescript/ls-spiral/internal/state"
	"github.com/litescript/ls-spiral/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewSpiral ViewMode = iota
	ViewPlanets
	ViewEvents
	viewCount
)

// houseKeys selects houses 1-12.
var houseKeys = map[string]int{
	"1": 0, "2": 1, "3": 2, "4": 3, "5": 4, "6": 5,
	"7": 6, "8": 7, "9": 8, "0": 9, "-": 10, "=": 11,
}

const (
	orbitStep = 0.08 // radians per key press before OrbitSpeed
	zoomStep  = 0.1
)

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic snapshot refreshes.
	TickMsg time.Time

	// AnimTickMsg advances the camera.
	AnimTickMsg time.Time

	// ChartLoadedMsg carries the result of a chart reload.
	ChartLoadedMsg struct {
		Chart  *chart.Chart
		Issues []chart.Issue
		Source string
		Err    error
	}
)

// Options configures the root model.
type Options struct {
	Camera    camera.Config
	ChartPath string // reloaded with r; empty disables reload
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state *state.Manager
	opts  Options
	log   *logging.Logger

	// The camera is owned by the Update loop.
	camera  *camera.Choreographer
	geom    *spiral.Geometry
	mapping *chart.Mapping

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int
	lastFrame time.Time

	// Sub-models
	spiralView SpiralViewModel
	planets    PlanetsModel
	events     EventsModel

	snapshot state.Snapshot
}

// New creates a new root UI model.
func New(st *state.Manager, opts Options, log *logging.Logger) Model {
	if log == nil {
		log = logging.Discard()
	}
	if opts.Camera == (camera.Config{}) {
		opts.Camera = camera.DefaultConfig()
	}
	m := Model{
		state:      st,
		opts:       opts,
		log:        log,
		viewMode:   ViewSpiral,
		spiralView: NewSpiralViewModel(),
		planets:    NewPlanetsModel(),
		events:     NewEventsModel(),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		animTickCmd(),
	)
}

// Camera exposes the choreographer, mainly for tests.
func (m Model) Camera() *camera.Choreographer {
	return m.camera
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		} else {
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Logo and tabs take 11 lines, footer 2
		contentHeight := msg.Height - 13
		m.spiralView = m.spiralView.SetSize(msg.Width, contentHeight)
		m.planets = m.planets.SetSize(msg.Width, contentHeight)
		m.events = m.events.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		m.refresh()

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++
		now := time.Time(msg)
		var dt float64
		if !m.lastFrame.IsZero() {
			dt = now.Sub(m.lastFrame).Seconds()
		}
		m.lastFrame = now
		m.camera.Tick(dt)
		m.spiralView = m.spiralView.UpdateCamera(m.camera)

	case ChartLoadedMsg:
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("Reload failed: %v", msg.Err)
			m.log.Warn("chart reload: %v", msg.Err)
			break
		}
		m.state.SetChart(msg.Chart, msg.Source, msg.Issues)
		m.refresh()
		m.statusMsg = fmt.Sprintf("Reloaded %s (%d planets)", msg.Source, len(m.snapshot.Mapping.Planets))

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

// handleKey applies global and camera keys. It reports false for keys the
// active view should see.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	if layer, ok := houseKeys[key]; ok {
		m.camera.SetFocus(camera.LayerFocus(layer))
		m.spiralView = m.spiralView.UpdateCamera(m.camera)
		return nil, true
	}

	switch key {
	case "q", "ctrl+c":
		return tea.Quit, true
	case "tab":
		m.viewMode = (m.viewMode + 1) % viewCount
	case "shift+tab":
		m.viewMode = (m.viewMode + viewCount - 1) % viewCount
	case "o", "esc":
		m.camera.SetFocus(camera.Overview)
	case "n":
		m.camera.NextBody()
	case "N":
		m.camera.PrevBody()
	case "f":
		m.camera.SetFlat(!m.camera.Flat())
	case "r":
		if m.opts.ChartPath == "" {
			m.statusMsg = "No chart file to reload"
			return nil, true
		}
		m.statusMsg = "Reloading " + m.opts.ChartPath + "..."
		return loadChartCmd(m.opts.ChartPath), true
	case "enter":
		if m.viewMode != ViewPlanets {
			return nil, false
		}
		p, ok := m.planets.Selected()
		if !ok {
			return nil, true
		}
		m.camera.SetFocus(camera.BodyFocus(p.LayerIndex, p.Name))
		m.viewMode = ViewSpiral
	case "left", "right", "up", "down", "[", "]":
		if m.viewMode != ViewSpiral {
			return nil, false
		}
		m.orbit(key)
	default:
		return nil, false
	}
	m.spiralView = m.spiralView.UpdateCamera(m.camera)
	return nil, true
}

func (m *Model) orbit(key string) {
	var ok bool
	switch key {
	case "left":
		ok = m.camera.Orbit(-orbitStep, 0)
	case "right":
		ok = m.camera.Orbit(orbitStep, 0)
	case "up", "[":
		ok = m.camera.Orbit(0, -zoomStep)
	case "down", "]":
		ok = m.camera.Orbit(0, zoomStep)
	}
	if !ok {
		m.statusMsg = "Camera is moving"
	} else {
		m.statusMsg = ""
	}
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewSpiral:
		m.spiralView, cmd = m.spiralView.Update(msg)
	case ViewPlanets:
		m.planets, cmd = m.planets.Update(msg)
	case ViewEvents:
		m.events, cmd = m.events.Update(msg)
	}
	return cmd
}

// refresh pulls a snapshot and rebuilds or rebinds the camera when the
// geometry or mapping changed.
func (m *Model) refresh() {
	m.snapshot = m.state.Snapshot()
	snap := m.snapshot

	switch {
	case m.camera == nil || snap.Geometry != m.geom:
		m.geom, m.mapping = snap.Geometry, snap.Mapping
		m.camera = camera.New(m.geom, m.opts.Camera, m.log.With("component", "camera"))
		metrics := m.state.Metrics()
		m.camera.OnAnimationStart = func(a camera.Animation) {
			metrics.AnimationStarted(a.Mode.String())
		}
		if m.mapping != nil {
			m.camera.SetBodies(m.mapping.Planets)
		}
	case snap.Mapping != m.mapping:
		m.mapping = snap.Mapping
		m.camera.SetBodies(m.mapping.Planets)
	}

	m.spiralView = m.spiralView.UpdateData(snap).UpdateCamera(m.camera)
	m.planets = m.planets.UpdateData(snap)
	m.events = m.events.UpdateData(snap)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewSpiral:
		content = m.spiralView.View()
	case ViewPlanets:
		content = m.planets.View()
	case ViewEvents:
		content = m.events.View()
	}

	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	header := m.renderHeader()
	footer := m.renderFooter()

	return header + "\n" + content + "\n" + footer
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderTabs() + "\n"
}

func (m Model) renderLogo() string {
	logo := []string{
		`  ██╗     ███████╗      ███████╗██████╗ ██╗██████╗  █████╗ ██╗`,
		`  ██║     ██╔════╝      ██╔════╝██╔══██╗██║██╔══██╗██╔══██╗██║`,
		`  ██║     ███████╗█████╗███████╗██████╔╝██║██████╔╝███████║██║`,
		`  ██║     ╚════██║╚════╝╚════██║██╔═══╝ ██║██╔══██╗██╔══██║██║`,
		`  ███████╗███████║      ███████║██║     ██║██║  ██║██║  ██║███████╗`,
		`  ╚══════╝╚══════╝      ╚══════╝╚═╝     ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝`,
	}

	var b strings.Builder
	b.WriteString("\n")

	for row, line := range logo {
		runes := []rune(line)
		for col, r := range runes {
			color := gradientColor(col, row, len(runes), len(logo))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			b.WriteString(style.Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render("  Natal Chart · Twelve-House Spiral"))
	b.WriteString("\n")
	b.WriteString(muted.Render(fmt.Sprintf("  litescript.net | v%s", version.Version)))
	b.WriteString("\n\n")

	return b.String()
}

var logoShade = colorful.Color{R: 0.04, G: 0.05, B: 0.1}

// gradientColor walks the twelve house colors left to right and fades
// toward the bottom rows.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	c := spiral.LayerColor(int(xRatio*12), 12)
	return c.BlendLab(logoShade, yRatio*0.5).Clamped().Hex()
}

func (m Model) renderTabs() string {
	tabs := []string{"Spiral", "Planets", "Events"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

	var status string
	switch {
	case m.snapshot.Mapping != nil && m.snapshot.Mapping.Fallback && m.snapshot.Chart != nil:
		status = warnStyle.Render("placeholder layout")
	case !m.snapshot.HasChart():
		status = accentStyle.Render(spinnerFrames[m.animTick%len(spinnerFrames)]) + dimStyle.Render(" no chart loaded")
	default:
		status = accentStyle.Render("●") + dimStyle.Render(" "+m.snapshot.Source)
	}
	if a, ok := m.camera.Animation(); ok {
		status += dimStyle.Render(fmt.Sprintf("  %s %3.0f%%", a.Mode, a.Progress*100))
	}

	var help string
	switch m.viewMode {
	case ViewPlanets:
		help = dimStyle.Render("↑↓: select | enter: focus | tab: switch view")
	case ViewEvents:
		help = dimStyle.Render("tab: switch view | q: quit")
	default:
		help = dimStyle.Render("1-0,-,=: house | o: overview | n/N: body | f: flat | ←→: orbit | [ ]: zoom | l: labels | s: stars")
	}
	if m.opts.ChartPath != "" {
		help += dimStyle.Render(" | r: reload")
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help
	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

func loadChartCmd(path string) tea.Cmd {
	return func() tea.Msg {
		c, issues, err := chart.ReadFile(path)
		return ChartLoadedMsg{Chart: c, Issues: issues, Source: path, Err: err}
	}
}
