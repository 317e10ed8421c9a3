// Package aspect classifies angular relationships between mapped bodies.
package aspect

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Type is an aspect kind.
type Type int

const (
	None Type = iota
	Conjunction
	Sextile
	Square
	Trine
	Opposition
)

func (t Type) String() string {
	switch t {
	case Conjunction:
		return "Conjunction"
	case Sextile:
		return "Sextile"
	case Square:
		return "Square"
	case Trine:
		return "Trine"
	case Opposition:
		return "Opposition"
	default:
		return "None"
	}
}

// Symbol returns the glyph used in terminal tables.
func (t Type) Symbol() string {
	switch t {
	case Conjunction:
		return "☌"
	case Sextile:
		return "⚹"
	case Square:
		return "□"
	case Trine:
		return "△"
	case Opposition:
		return "☍"
	default:
		return " "
	}
}

// ParseType matches an aspect name case-insensitively.
func ParseType(s string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conjunction":
		return Conjunction, true
	case "sextile":
		return Sextile, true
	case "square":
		return Square, true
	case "trine":
		return Trine, true
	case "opposition":
		return Opposition, true
	}
	return None, false
}

// Definition is one row of the aspect table.
type Definition struct {
	Type  Type
	Angle float64 // exact angle in degrees
	Orb   float64 // allowed deviation in degrees
	Color colorful.Color
}

// Table is an ordered list of definitions. Order is the tie-break: the first
// row whose orb contains a separation wins, even if a later row is closer.
type Table []Definition

// DefaultTable is the standard five major aspects.
var DefaultTable = Table{
	{Type: Conjunction, Angle: 0, Orb: 10, Color: colorful.Color{R: 0.96, G: 0.84, B: 0.43}},
	{Type: Sextile, Angle: 60, Orb: 6, Color: colorful.Color{R: 0.36, G: 0.68, B: 0.89}},
	{Type: Square, Angle: 90, Orb: 8, Color: colorful.Color{R: 0.91, G: 0.30, B: 0.24}},
	{Type: Trine, Angle: 120, Orb: 8, Color: colorful.Color{R: 0.35, G: 0.84, B: 0.55}},
	{Type: Opposition, Angle: 180, Orb: 10, Color: colorful.Color{R: 0.69, G: 0.48, B: 0.77}},
}

// Classify returns the first definition whose orb contains diff.
func (t Table) Classify(diff float64) (Definition, bool) {
	if math.IsNaN(diff) {
		return Definition{}, false
	}
	for _, d := range t {
		if math.Abs(diff-d.Angle) <= d.Orb {
			return d, true
		}
	}
	return Definition{}, false
}

// Lookup returns the definition for a type.
func (t Table) Lookup(typ Type) (Definition, bool) {
	for _, d := range t {
		if d.Type == typ {
			return d, true
		}
	}
	return Definition{}, false
}

// Aspect is a classified relationship between two bodies.
type Aspect struct {
	PlanetA   string
	PlanetB   string
	Type      Type
	AngleDiff float64
	Orb       float64 // deviation from the exact angle
	Color     colorful.Color
	External  bool // supplied upstream rather than computed
}

// Involves reports whether the aspect touches the named body.
func (a Aspect) Involves(name string) bool {
	return a.PlanetA == name || a.PlanetB == name
}
