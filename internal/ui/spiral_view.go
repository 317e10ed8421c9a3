package ui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/litescript/ls-spiral/internal/astro"
	"github.com/litescript/ls-spiral/internal/camera"
	"github.com/litescript/ls-spiral/internal/chart"
	"github.com/litescript/ls-spiral/internal/render"
	"github.com/litescript/ls-spiral/internal/state"
)

const (
	// cellAspect is the height of a terminal cell in units of its width.
	cellAspect = 2.0
	viewFOV    = 55.0
	hudLines   = 3

	dimLayerColor = "238"
	focusColor    = "229"
	nearCuspColor = "#FFD700"

	// Star glyphs by magnitude. The dim tier avoids '·', which draws the spiral.
	glyphStarBright = '✶' // mag < 1.5
	glyphStarMedium = '✸' // mag 1.5-3.0
	glyphStarDim    = '.'

	colorStarBright = "250"
	colorStarMedium = "244"
	colorStarDim    = "238"
)

// LabelMode controls which planets get a name label.
type LabelMode int

const (
	LabelFocused LabelMode = iota // only the focused body
	LabelAll
	LabelNone
)

func (l LabelMode) String() string {
	switch l {
	case LabelAll:
		return "all"
	case LabelNone:
		return "none"
	default:
		return "focused"
	}
}

// SpiralViewModel draws the spiral through the live camera onto a
// character grid.
type SpiralViewModel struct {
	width    int
	height   int
	snapshot state.Snapshot

	pose      camera.Pose
	attitude  mgl64.Quat
	focus     camera.Focus
	flat      bool
	animating bool
	mode      camera.Mode
	progress  float64

	labelMode LabelMode
	hideStars bool
}

// NewSpiralViewModel creates a new spiral view model.
func NewSpiralViewModel() SpiralViewModel {
	return SpiralViewModel{
		attitude: mgl64.QuatIdent(),
		focus:    camera.Overview,
	}
}

// SetSize updates the viewport size.
func (m SpiralViewModel) SetSize(width, height int) SpiralViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m SpiralViewModel) UpdateData(snapshot state.Snapshot) SpiralViewModel {
	m.snapshot = snapshot
	return m
}

// UpdateCamera copies the live camera state.
func (m SpiralViewModel) UpdateCamera(c *camera.Choreographer) SpiralViewModel {
	m.pose = c.Pose()
	m.attitude = c.Attitude()
	m.focus = c.Focus()
	m.flat = c.Flat()
	a, ok := c.Animation()
	m.animating = ok
	if ok {
		m.mode = a.Mode
		m.progress = a.Progress
	}
	return m
}

// Update handles input messages.
func (m SpiralViewModel) Update(msg tea.Msg) (SpiralViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "l":
			m.labelMode = (m.labelMode + 1) % 3
		case "s":
			m.hideStars = !m.hideStars
		}
	}
	return m, nil
}

// View renders the spiral view.
func (m SpiralViewModel) View() string {
	if m.width < 40 || m.height < 10 {
		return "Terminal too small for spiral view"
	}
	if m.snapshot.Geometry == nil {
		return "Waiting for data..."
	}
	if m.pose.Position.ApproxEqual(m.pose.LookAt) || !m.pose.Finite() {
		return "Waiting for camera..."
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.buildCanvas(), m.renderHUD())
}

// cell is one character of the canvas with its color and depth.
type cell struct {
	ch    rune
	color string
	depth float64
	bold  bool
}

type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]cell, h)}
	for y := range c.cells {
		c.cells[y] = make([]cell, w)
		for x := range c.cells[y] {
			c.cells[y][x] = cell{ch: ' ', depth: math.Inf(1)}
		}
	}
	return c
}

func (c *canvas) in(x, y int) bool {
	return x >= 0 && x < c.w && y >= 0 && y < c.h
}

// plot writes ch unless something nearer already occupies the cell.
func (c *canvas) plot(x, y int, depth float64, ch rune, color string) {
	if !c.in(x, y) || depth >= c.cells[y][x].depth {
		return
	}
	c.cells[y][x] = cell{ch: ch, color: color, depth: depth}
}

// line steps from one projected point to the next, interpolating depth.
func (c *canvas) line(x0, y0, d0, x1, y1, d1 float64, ch rune, color string) {
	dx, dy := x1-x0, y1-y0
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	// Segments that cross the near plane project to huge spans.
	if steps > 4*(c.w+c.h) {
		return
	}
	if steps == 0 {
		c.plot(int(math.Floor(x0)), int(math.Floor(y0)), d0, ch, color)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.plot(int(math.Floor(x0+dx*t)), int(math.Floor(y0+dy*t)), d0+(d1-d0)*t, ch, color)
	}
}

// starGlyph picks a character and shade by magnitude.
func starGlyph(mag float64) (rune, string) {
	switch {
	case mag < 1.5:
		return glyphStarBright, colorStarBright
	case mag < 3.0:
		return glyphStarMedium, colorStarMedium
	default:
		return glyphStarDim, colorStarDim
	}
}

// screenPlanet tracks a planet's cell for label placement.
type screenPlanet struct {
	x, y    int
	name    string
	focused bool
}

// buildCanvas renders the spiral to a string canvas.
func (m SpiralViewModel) buildCanvas() string {
	canvasH := m.height - hudLines
	if canvasH < 5 {
		canvasH = 5
	}
	cv := newCanvas(m.width, canvasH)
	pr := render.NewProjector(m.pose, m.attitude, m.width, canvasH, viewFOV, cellAspect)

	if !m.hideStars {
		for _, st := range m.snapshot.Backdrop {
			if x, y, d, ok := pr.Project(st.Position); ok {
				ch, color := starGlyph(st.Mag)
				cv.plot(int(math.Floor(x)), int(math.Floor(y)), d, ch, color)
			}
		}
	}

	g := m.snapshot.Geometry
	for i, seg := range g.Segments {
		color := g.Layers[i].Hex()
		glyph := '·'
		switch {
		case m.focus.IsOverview():
		case i == m.focus.Layer:
			glyph = '•'
		default:
			color = dimLayerColor
		}
		for j := 1; j < len(seg); j++ {
			x0, y0, d0, ok0 := pr.Project(seg[j-1])
			x1, y1, d1, ok1 := pr.Project(seg[j])
			if ok0 && ok1 {
				cv.line(x0, y0, d0, x1, y1, d1, glyph, color)
			}
		}
	}

	mapping := m.snapshot.Mapping
	if mapping == nil {
		return m.renderGrid(cv)
	}

	for _, a := range m.snapshot.Aspects {
		pa, okA := mapping.Planet(a.PlanetA)
		pb, okB := mapping.Planet(a.PlanetB)
		if !okA || !okB {
			continue
		}
		x0, y0, d0, ok0 := pr.Project(pa.Position)
		x1, y1, d1, ok1 := pr.Project(pb.Position)
		if ok0 && ok1 {
			cv.line(x0, y0, d0, x1, y1, d1, '∙', a.Color.Hex())
		}
	}

	type projected struct {
		p     chart.MappedPlanet
		x, y  int
		depth float64
	}
	var planets []projected
	for _, p := range mapping.Planets {
		x, y, d, ok := pr.Project(p.Position)
		if !ok || !cv.in(int(math.Floor(x)), int(math.Floor(y))) {
			continue
		}
		planets = append(planets, projected{p: p, x: int(math.Floor(x)), y: int(math.Floor(y)), depth: d})
	}
	// Far to near so nearer bodies win shared cells.
	sort.SliceStable(planets, func(i, j int) bool { return planets[i].depth > planets[j].depth })

	var labels []screenPlanet
	for _, pp := range planets {
		focused := pp.p.Name == m.focus.Body
		c := cell{ch: astro.BodyGlyph(pp.p.Name), color: g.Layers[pp.p.LayerIndex].Hex(), depth: math.Inf(-1)}
		switch {
		case focused:
			c.color, c.bold = focusColor, true
		case pp.p.IsNearCusp:
			c.color = nearCuspColor
		}
		cv.cells[pp.y][pp.x] = c
		labels = append(labels, screenPlanet{x: pp.x, y: pp.y, name: pp.p.Name, focused: focused})
	}

	m.renderLabels(cv, labels)
	return m.renderGrid(cv)
}

// renderLabels writes names to the right of planets without covering other
// planets.
func (m SpiralViewModel) renderLabels(cv *canvas, planets []screenPlanet) {
	for _, p := range planets {
		switch m.labelMode {
		case LabelNone:
			continue
		case LabelFocused:
			if !p.focused {
				continue
			}
		}
		x := p.x + 2
		for _, r := range p.name {
			if !cv.in(x, p.y) || math.IsInf(cv.cells[p.y][x].depth, -1) {
				break
			}
			cv.cells[p.y][x] = cell{ch: r, color: "249", depth: math.Inf(-1)}
			x++
		}
	}
}

func (m SpiralViewModel) renderGrid(cv *canvas) string {
	var b strings.Builder
	styles := make(map[string]lipgloss.Style)

	for y, row := range cv.cells {
		for _, c := range row {
			if c.ch == ' ' {
				b.WriteRune(' ')
				continue
			}
			key := c.color
			if c.bold {
				key += "!"
			}
			style, ok := styles[key]
			if !ok {
				style = lipgloss.NewStyle().Foreground(lipgloss.Color(c.color)).Bold(c.bold)
				styles[key] = style
			}
			b.WriteString(style.Render(string(c.ch)))
		}
		if y < len(cv.cells)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func (m SpiralViewModel) renderHUD() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(nearCuspColor))

	b.WriteString("\n")

	// First line: focus and camera state
	switch {
	case m.focus.IsOverview():
		b.WriteString(headerStyle.Render("◆ Overview"))
	case m.focus.Body != "":
		b.WriteString(headerStyle.Render(fmt.Sprintf("◆ %s in house %d", m.focus.Body, m.focus.Layer+1)))
	default:
		b.WriteString(headerStyle.Render(fmt.Sprintf("◆ House %d", m.focus.Layer+1)))
	}
	b.WriteString("  ")
	if m.animating {
		b.WriteString(valueStyle.Render(fmt.Sprintf("%s %3.0f%%", m.mode, m.progress*100)))
	} else {
		b.WriteString(dimStyle.Render("idle"))
	}
	b.WriteString("  ")
	if m.flat {
		b.WriteString(labelStyle.Render("flat"))
	} else {
		b.WriteString(labelStyle.Render("upright"))
	}
	b.WriteString(dimStyle.Render("  labels: " + m.labelMode.String()))
	b.WriteString("\n")

	// Second line: what is in focus
	mapping := m.snapshot.Mapping
	switch {
	case mapping == nil:
	case m.focus.Body != "":
		p, ok := mapping.Planet(m.focus.Body)
		if !ok {
			break
		}
		b.WriteString(labelStyle.Render("Position: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f° %s (%.1f°)", p.DegreeInSign, p.Sign, p.AbsoluteDegree)))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Through house: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.0f%%", p.Progress*100)))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Next cusp: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f°", p.DegreesToNextCusp)))
		if p.IsNearCusp {
			b.WriteString(warnStyle.Render("  near cusp"))
		}
	case !m.focus.IsOverview():
		in := mapping.InLayer(m.focus.Layer)
		if len(in) == 0 {
			b.WriteString(dimStyle.Render("Empty house"))
			break
		}
		names := make([]string, len(in))
		for i, p := range in {
			names[i] = string(astro.BodyGlyph(p.Name)) + " " + p.Name
		}
		b.WriteString(labelStyle.Render("Planets: "))
		b.WriteString(valueStyle.Render(strings.Join(names, ", ")))
	default:
		if mapping.Fallback {
			b.WriteString(warnStyle.Render("Placeholder layout"))
		} else {
			b.WriteString(labelStyle.Render("Chart: "))
			b.WriteString(valueStyle.Render(m.snapshot.Source))
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d planets, %d aspects", len(mapping.Planets), len(m.snapshot.Aspects))))
	}

	return b.String()
}
