package chart

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/litescript/ls-spiral/internal/astro"
	"github.com/litescript/ls-spiral/internal/spiral"
)

const (
	// NearCuspDegrees is the distance to the next cusp at or below which a
	// planet is flagged as sitting on a cusp.
	NearCuspDegrees = 5.0

	// DefaultHouseSize replaces a degenerate (zero-width) house span.
	DefaultHouseSize = 30.0

	// maxPlacementProgress keeps a planet strictly inside its layer so the
	// layer can be recovered from its t.
	maxPlacementProgress = 1 - 1e-9
)

// ErrNoPlanets marks a chart that has houses but nothing to place.
var ErrNoPlanets = errors.New("chart has no planets")

// MappedPlanet is a planet placed on the spiral.
type MappedPlanet struct {
	Name           string
	AbsoluteDegree float64
	Sign           astro.Sign
	DegreeInSign   float64

	// LayerIndex is always the geometrically derived house (0-based).
	LayerIndex    int
	APIHouseID    int  // house claimed upstream, 0 if none
	HouseMismatch bool // APIHouseID disagreed with LayerIndex

	Progress          float64 // position through the house, [0, 1]
	DegreesToNextCusp float64
	IsNearCusp        bool

	T        float64 // spiral parameter
	Point    spiral.Point
	Position mgl64.Vec3
}

// House returns the 1-based house number.
func (m MappedPlanet) House() int {
	return m.LayerIndex + 1
}

// Mismatch records an upstream house assignment that was overridden.
type Mismatch struct {
	Planet       string
	APIHouse     int
	DerivedHouse int
}

// Mapping is the mapper output. It is an immutable snapshot.
type Mapping struct {
	Planets    []MappedPlanet
	Occupancy  [][]string // planet names per layer, in input order
	Mismatches []Mismatch

	// Ascendant is the first house cusp, zero for the placeholder layout.
	Ascendant float64

	// Fallback is set when the chart could not be used and the planets come
	// from the seeded placeholder layout.
	Fallback       bool
	FallbackReason error
}

// Planet looks up a mapped planet by name.
func (m *Mapping) Planet(name string) (MappedPlanet, bool) {
	for _, p := range m.Planets {
		if p.Name == name {
			return p, true
		}
	}
	return MappedPlanet{}, false
}

// InLayer returns the planets in a layer, in input order.
func (m *Mapping) InLayer(layer int) []MappedPlanet {
	var out []MappedPlanet
	for _, p := range m.Planets {
		if p.LayerIndex == layer {
			out = append(out, p)
		}
	}
	return out
}

// ResolveHouse returns the 0-based house whose span [cusp[i], cusp[i+1])
// contains deg, handling spans that cross 0°.
func ResolveHouse(cusps [HouseCount]float64, deg float64) int {
	deg = astro.NormalizeDeg(deg)
	for i := 0; i < HouseCount; i++ {
		size := astro.ForwardArc(cusps[i], cusps[(i+1)%HouseCount])
		if astro.ForwardArc(cusps[i], deg) < size {
			return i
		}
	}

	// Cusps that are not in cyclic order leave gaps; fall back to the
	// house whose cusp was passed most recently.
	best, bestArc := 0, math.Inf(1)
	for i := 0; i < HouseCount; i++ {
		arc := astro.ForwardArc(cusps[i], deg)
		if arc < bestArc {
			best, bestArc = i, arc
		}
	}
	return best
}

// houseSize returns the wraparound-adjusted width of house i.
func houseSize(cusps [HouseCount]float64, i int) float64 {
	size := astro.ForwardArc(cusps[i], cusps[(i+1)%HouseCount])
	if size <= 0 {
		return DefaultHouseSize
	}
	return size
}

// Map places every planet of c on the spiral described by g. An unusable
// chart yields the deterministic fallback layout instead of an error.
func Map(c *Chart, g *spiral.Geometry) *Mapping {
	reason := usable(c)
	if reason != nil {
		m := mapValid(FallbackChart(FallbackSeed), g)
		m.Fallback = true
		m.FallbackReason = reason
		return m
	}
	return mapValid(c, g)
}

func usable(c *Chart) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Planets) == 0 {
		return ErrNoPlanets
	}
	return nil
}

func mapValid(c *Chart, g *spiral.Geometry) *Mapping {
	cusps := c.Cusps()
	m := &Mapping{
		Planets:   make([]MappedPlanet, 0, len(c.Planets)),
		Occupancy: make([][]string, g.Params.LayerCount),
		Ascendant: astro.NormalizeDeg(cusps[0]),
	}

	for _, p := range c.Planets {
		mp := placePlanet(cusps, p, g.Params)
		if mp.HouseMismatch {
			m.Mismatches = append(m.Mismatches, Mismatch{
				Planet:       mp.Name,
				APIHouse:     mp.APIHouseID,
				DerivedHouse: mp.House(),
			})
		}
		if mp.LayerIndex < len(m.Occupancy) {
			m.Occupancy[mp.LayerIndex] = append(m.Occupancy[mp.LayerIndex], mp.Name)
		}
		m.Planets = append(m.Planets, mp)
	}

	return m
}

func placePlanet(cusps [HouseCount]float64, p Planet, params spiral.Params) MappedPlanet {
	deg := astro.NormalizeDeg(p.AbsoluteDegree)
	layer := ResolveHouse(cusps, deg)
	size := houseSize(cusps, layer)

	fromCusp := astro.ForwardArc(cusps[layer], deg)
	progress := clamp01(fromCusp / size)
	toNext := size - fromCusp
	if toNext < 0 {
		toNext = 0
	}

	t := params.LayerT(layer, math.Min(progress, maxPlacementProgress))
	pt := params.At(t)

	return MappedPlanet{
		Name:              p.Name,
		AbsoluteDegree:    deg,
		Sign:              astro.SignOf(deg),
		DegreeInSign:      astro.DegreeInSign(deg),
		LayerIndex:        layer,
		APIHouseID:        p.APIHouseID,
		HouseMismatch:     p.APIHouseID != 0 && p.APIHouseID != layer+1,
		Progress:          progress,
		DegreesToNextCusp: toNext,
		IsNearCusp:        toNext <= NearCuspDegrees,
		T:                 t,
		Point:             pt,
		Position:          pt.Position(),
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
