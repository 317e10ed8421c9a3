package chart

import (
	"math/rand/v2"
)

// FallbackSeed seeds the placeholder layout so it is identical on every run.
const FallbackSeed uint64 = 0x5eed5b1a1

// DefaultBodies are the bodies shown before a chart is available.
var DefaultBodies = []string{
	"Sun", "Moon", "Mercury", "Venus", "Mars",
	"Jupiter", "Saturn", "Uranus", "Neptune", "Pluto",
}

// FallbackChart builds an equal-house chart (cusps every 30° from 0° Aries)
// with DefaultBodies scattered over a seeded shuffle of the houses.
func FallbackChart(seed uint64) *Chart {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	c := &Chart{Houses: make([]House, HouseCount)}
	for i := range c.Houses {
		cusp := float64(i) * 30
		c.Houses[i] = House{ID: i + 1, CuspDegree: cusp}
	}

	order := rng.Perm(HouseCount)
	for i, name := range DefaultBodies {
		house := order[i%HouseCount]
		// Keep clear of both cusps so the placeholder never reads as on-cusp.
		offset := 6 + rng.Float64()*18
		c.Planets = append(c.Planets, Planet{
			Name:           name,
			AbsoluteDegree: float64(house)*30 + offset,
		})
	}

	return c
}
