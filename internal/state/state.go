// Package state holds the current chart, its spiral mapping and the
// diagnostic event log behind a lock shared by the UI, headless writers and
// the pose stream.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/litescript/ls-spiral/internal/aspect"
	"github.com/litescript/ls-spiral/internal/astro"
	"github.com/litescript/ls-spiral/internal/chart"
	"github.com/litescript/ls-spiral/internal/logging"
	"github.com/litescript/ls-spiral/internal/spiral"
)

// EventType represents the kind of diagnostic event.
type EventType string

const (
	EventChartLoaded       EventType = "CHART_LOADED"
	EventFallbackLayout    EventType = "FALLBACK_LAYOUT"
	EventHouseMismatch     EventType = "HOUSE_MISMATCH"
	EventHouseSignMismatch EventType = "HOUSE_SIGN_MISMATCH"
	EventDroppedPlanet     EventType = "DROPPED_PLANET"
	EventUnknownAPIHouse   EventType = "UNKNOWN_API_HOUSE"
	EventAspectsUnmatched  EventType = "ASPECTS_UNMATCHED"
	EventAspectsSkipped    EventType = "ASPECTS_SKIPPED"
)

// Event is one diagnostic. None of them are errors; they explain what the
// mapper recovered from.
type Event struct {
	Type         EventType `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	Planet       string    `json:"planet,omitempty"`
	APIHouse     int       `json:"api_house,omitempty"`
	DerivedHouse int       `json:"derived_house,omitempty"`
	Detail       string    `json:"detail,omitempty"`
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	cache    *spiral.Cache
	resolver *aspect.Resolver
	params   spiral.Params

	// Current state
	chart    *chart.Chart
	source   string
	loadedAt time.Time
	geometry *spiral.Geometry
	mapping  *chart.Mapping
	aspects  aspect.Result
	backdrop []spiral.BackdropStar
	remaps   int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	metrics *Metrics
	log     *logging.Logger
	now     func() time.Time
}

// Config holds configuration for the state manager.
type Config struct {
	Params    spiral.Params
	MaxEvents int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Params:    spiral.DefaultParams(),
		MaxEvents: 50,
	}
}

// NewManager builds the geometry and the placeholder layout so there is
// something to render before a chart arrives.
func NewManager(cfg Config, metrics *Metrics, log *logging.Logger) (*Manager, error) {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	if log == nil {
		log = logging.Discard()
	}

	m := &Manager{
		cache:     &spiral.Cache{},
		resolver:  aspect.NewResolver(),
		params:    cfg.Params,
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}

	g, err := m.cache.Get(cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("build spiral: %w", err)
	}
	m.geometry = g
	m.remap()
	return m, nil
}

// SetChart replaces the chart and remaps it. issues are the recoverable
// problems found while decoding; they are logged as events. Passing the
// chart that is already loaded is a no-op.
func (m *Manager) SetChart(c *chart.Chart, source string, issues []chart.Issue) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c != nil && c == m.chart {
		return
	}

	m.chart = c
	m.source = source
	m.loadedAt = m.now()

	for _, is := range issues {
		m.addIssue(is)
	}
	m.remap()

	if !m.mapping.Fallback {
		m.addEvent(Event{
			Type:   EventChartLoaded,
			Detail: fmt.Sprintf("%s: %d planets, %d aspects", source, len(m.mapping.Planets), len(m.aspects.Aspects)),
		})
	}
}

// SetParams rebuilds the spiral if the parameters changed and remaps.
func (m *Manager) SetParams(p spiral.Params) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p == m.params {
		return nil
	}
	g, err := m.cache.Get(p)
	if err != nil {
		return err
	}
	m.params = p
	m.geometry = g
	m.remap()
	return nil
}

// remap recomputes mapping and aspects. Caller holds the lock.
func (m *Manager) remap() {
	m.remaps++
	m.mapping = chart.Map(m.chart, m.geometry)

	var external []chart.AspectInput
	if m.chart != nil && !m.mapping.Fallback {
		external = m.chart.Aspects
	}
	m.aspects = m.resolver.Resolve(m.mapping.Planets, external)
	m.backdrop = spiral.Backdrop(astro.ZodiacStars(), m.mapping.Ascendant, spiral.BackdropRadius)

	// The placeholder shown before any chart is loaded is not worth
	// reporting.
	if m.chart == nil {
		return
	}

	if m.mapping.Fallback {
		m.log.Warn("chart unusable, showing placeholder layout: %v", m.mapping.FallbackReason)
		m.addEvent(Event{Type: EventFallbackLayout, Detail: m.mapping.FallbackReason.Error()})
	}
	for _, mm := range m.mapping.Mismatches {
		m.log.Warn("%s: upstream house %d, derived house %d", mm.Planet, mm.APIHouse, mm.DerivedHouse)
		m.addEvent(Event{
			Type:         EventHouseMismatch,
			Planet:       mm.Planet,
			APIHouse:     mm.APIHouse,
			DerivedHouse: mm.DerivedHouse,
		})
	}
	// Pairs among placeholder planets say nothing about the chart.
	if m.aspects.Unmatched > 0 && !m.mapping.Fallback {
		m.log.Debug("%d planet pairs matched no aspect", m.aspects.Unmatched)
		m.addEvent(Event{
			Type:   EventAspectsUnmatched,
			Detail: fmt.Sprintf("%d pairs", m.aspects.Unmatched),
		})
	}
	if m.aspects.Skipped > 0 {
		m.log.Warn("%d upstream aspects skipped", m.aspects.Skipped)
		m.addEvent(Event{
			Type:   EventAspectsSkipped,
			Detail: fmt.Sprintf("%d aspects", m.aspects.Skipped),
		})
	}

	m.metrics.recordMapping(len(m.mapping.Mismatches), m.aspects.Unmatched, m.mapping.Fallback)
}

func (m *Manager) addIssue(is chart.Issue) {
	e := Event{Planet: is.Name, Detail: is.Detail}
	switch is.Kind {
	case chart.IssueDroppedPlanet:
		e.Type = EventDroppedPlanet
	case chart.IssueHouseSignMismatch:
		e.Type = EventHouseSignMismatch
		e.Planet = ""
		e.Detail = is.Name + ": " + is.Detail
	case chart.IssueUnknownAPIHouse:
		e.Type = EventUnknownAPIHouse
	default:
		return
	}
	m.log.Warn("%s %s %s", e.Type, is.Name, is.Detail)
	m.addEvent(e)
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = m.now()
	}
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state. Geometry,
// Mapping and Backdrop are shared, never mutated after they are built.
type Snapshot struct {
	Params   spiral.Params
	Geometry *spiral.Geometry
	Chart    *chart.Chart
	Source   string
	LoadedAt time.Time
	Mapping  *chart.Mapping
	Aspects  []aspect.Aspect
	Backdrop []spiral.BackdropStar

	AspectsExternal bool
	Unmatched       int
	Skipped         int
	Remaps          int

	Events []Event
}

// HasChart reports whether a usable chart is loaded.
func (s Snapshot) HasChart() bool {
	return s.Chart != nil && s.Mapping != nil && !s.Mapping.Fallback
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	aspects := make([]aspect.Aspect, len(m.aspects.Aspects))
	copy(aspects, m.aspects.Aspects)

	return Snapshot{
		Params:          m.params,
		Geometry:        m.geometry,
		Chart:           m.chart,
		Source:          m.source,
		LoadedAt:        m.loadedAt,
		Mapping:         m.mapping,
		Aspects:         aspects,
		Backdrop:        m.backdrop,
		AspectsExternal: m.aspects.External,
		Unmatched:       m.aspects.Unmatched,
		Skipped:         m.aspects.Skipped,
		Remaps:          m.remaps,
		Events:          m.getEventsOrdered(),
	}
}

// Metrics returns the counters the manager reports to, possibly nil.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}
