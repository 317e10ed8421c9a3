package aspect

import (
	"github.com/litescript/ls-spiral/internal/astro"
	"github.com/litescript/ls-spiral/internal/chart"
)

// Result is the output of one resolve pass.
type Result struct {
	Aspects []Aspect

	// External is set when Aspects came from upstream data.
	External bool

	// Unmatched counts computed pairs with no table match.
	Unmatched int

	// Skipped counts upstream aspects dropped for an unknown type or body.
	Skipped int
}

// Resolver derives aspects from mapped positions.
type Resolver struct {
	Table Table
}

// NewResolver returns a resolver using DefaultTable.
func NewResolver() *Resolver {
	return &Resolver{Table: DefaultTable}
}

// Resolve prefers upstream aspects when at least one of them is usable and
// otherwise classifies every pair of planets by azimuthal separation.
func (r *Resolver) Resolve(planets []chart.MappedPlanet, external []chart.AspectInput) Result {
	if len(external) > 0 {
		res := r.fromExternal(planets, external)
		if len(res.Aspects) > 0 {
			return res
		}
		skipped := res.Skipped
		res = r.compute(planets)
		res.Skipped = skipped
		return res
	}
	return r.compute(planets)
}

func (r *Resolver) fromExternal(planets []chart.MappedPlanet, external []chart.AspectInput) Result {
	known := make(map[string]bool, len(planets))
	for _, p := range planets {
		known[p.Name] = true
	}

	res := Result{External: true}
	for _, in := range external {
		typ, ok := ParseType(in.Type)
		if !ok || !known[in.PlanetA] || !known[in.PlanetB] || in.PlanetA == in.PlanetB {
			res.Skipped++
			continue
		}
		def, ok := r.Table.Lookup(typ)
		if !ok {
			res.Skipped++
			continue
		}
		res.Aspects = append(res.Aspects, Aspect{
			PlanetA:   in.PlanetA,
			PlanetB:   in.PlanetB,
			Type:      typ,
			AngleDiff: in.Angle,
			Orb:       in.Orb,
			Color:     def.Color,
			External:  true,
		})
	}
	return res
}

func (r *Resolver) compute(planets []chart.MappedPlanet) Result {
	var res Result
	for i := 0; i < len(planets); i++ {
		for j := i + 1; j < len(planets); j++ {
			a, ok := r.Between(planets[i], planets[j])
			if !ok {
				res.Unmatched++
				continue
			}
			res.Aspects = append(res.Aspects, a)
		}
	}
	return res
}

// Between classifies a single pair by the azimuth of their spiral positions.
func (r *Resolver) Between(a, b chart.MappedPlanet) (Aspect, bool) {
	diff := astro.Separation(astro.AzimuthDeg(a.Position), astro.AzimuthDeg(b.Position))
	def, ok := r.Table.Classify(diff)
	if !ok {
		return Aspect{}, false
	}
	dev := diff - def.Angle
	if dev < 0 {
		dev = -dev
	}
	return Aspect{
		PlanetA:   a.Name,
		PlanetB:   b.Name,
		Type:      def.Type,
		AngleDiff: diff,
		Orb:       dev,
		Color:     def.Color,
	}, true
}
