package aspect

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-spiral/internal/chart"
)

func at(name string, azimuthDeg float64) chart.MappedPlanet {
	rad := azimuthDeg * math.Pi / 180
	r := 4.0
	return chart.MappedPlanet{
		Name:     name,
		Position: mgl64.Vec3{math.Cos(rad) * r, 1.5, math.Sin(rad) * r},
	}
}

func TestClassify_DefaultTable(t *testing.T) {
	tests := []struct {
		diff float64
		want Type
	}{
		{0, Conjunction},
		{10, Conjunction},
		{10.01, None},
		{54, Sextile},
		{64, Sextile},
		{66.5, None},
		{82, Square},
		{98, Square},
		{112, Trine},
		{127.9, Trine},
		{150, None},
		{170, Opposition},
		{180, Opposition},
		{math.NaN(), None},
	}

	for _, tt := range tests {
		d, ok := DefaultTable.Classify(tt.diff)
		if tt.want == None {
			assert.False(t, ok, "diff %v", tt.diff)
			continue
		}
		require.True(t, ok, "diff %v", tt.diff)
		assert.Equal(t, tt.want, d.Type, "diff %v", tt.diff)
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// Both rows contain 90; Square is exact but Sextile is listed first.
	table := Table{
		{Type: Sextile, Angle: 60, Orb: 40},
		{Type: Square, Angle: 90, Orb: 8},
	}
	d, ok := table.Classify(90)
	require.True(t, ok)
	assert.Equal(t, Sextile, d.Type)

	// Reversing the order flips the answer.
	d, ok = Table{table[1], table[0]}.Classify(90)
	require.True(t, ok)
	assert.Equal(t, Square, d.Type)
}

func TestBetween_Trine(t *testing.T) {
	r := NewResolver()
	a, ok := r.Between(at("Sun", 10), at("Moon", 130))
	require.True(t, ok)
	assert.Equal(t, Trine, a.Type)
	assert.InDelta(t, 120, a.AngleDiff, 1e-9)
	assert.InDelta(t, 0, a.Orb, 1e-9)
	assert.Equal(t, DefaultTable[3].Color, a.Color)
}

func TestBetween_Wraparound(t *testing.T) {
	r := NewResolver()
	a, ok := r.Between(at("Sun", 355), at("Moon", 4))
	require.True(t, ok)
	assert.Equal(t, Conjunction, a.Type)
	assert.InDelta(t, 9, a.AngleDiff, 1e-9)
}

func TestBetween_SymmetricAndPure(t *testing.T) {
	r := NewResolver()
	for a := 0.0; a < 360; a += 13 {
		for b := 0.0; b < 360; b += 17 {
			ab, okAB := r.Between(at("A", a), at("B", b))
			ba, okBA := r.Between(at("B", b), at("A", a))
			again, okAgain := r.Between(at("A", a), at("B", b))

			assert.Equal(t, okAB, okBA, "%v/%v", a, b)
			assert.Equal(t, ab.Type, ba.Type, "%v/%v", a, b)
			assert.Equal(t, okAB, okAgain)
			assert.Equal(t, ab.Type, again.Type)
		}
	}
}

func TestResolve_Computed(t *testing.T) {
	r := NewResolver()
	planets := []chart.MappedPlanet{
		at("Sun", 10),
		at("Moon", 130),
		at("Mars", 190),
		at("Venus", 40),
	}

	res := r.Resolve(planets, nil)
	assert.False(t, res.External)

	types := make(map[[2]string]Type)
	for _, a := range res.Aspects {
		types[[2]string{a.PlanetA, a.PlanetB}] = a.Type
	}
	assert.Equal(t, Trine, types[[2]string{"Sun", "Moon"}])
	assert.Equal(t, Opposition, types[[2]string{"Sun", "Mars"}])
	assert.Equal(t, Sextile, types[[2]string{"Moon", "Mars"}])
	assert.Equal(t, Square, types[[2]string{"Moon", "Venus"}])
	// Sun-Venus 30°, Mars-Venus 150°.
	assert.Equal(t, 2, res.Unmatched)
	assert.Len(t, res.Aspects, 4)
}

func TestResolve_PrefersExternal(t *testing.T) {
	r := NewResolver()
	planets := []chart.MappedPlanet{at("Sun", 10), at("Moon", 130), at("Mars", 300)}
	external := []chart.AspectInput{
		{PlanetA: "Sun", PlanetB: "Mars", Type: "square", Angle: 88.5, Orb: 1.5},
		{PlanetA: "Sun", PlanetB: "Moon", Type: "quincunx", Angle: 150, Orb: 0},
		{PlanetA: "Sun", PlanetB: "Chiron", Type: "trine", Angle: 120, Orb: 0},
	}

	res := r.Resolve(planets, external)
	assert.True(t, res.External)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Aspects, 1)

	a := res.Aspects[0]
	assert.Equal(t, Square, a.Type)
	assert.Equal(t, 88.5, a.AngleDiff)
	assert.True(t, a.External)
	assert.True(t, a.Involves("Mars"))
	assert.False(t, a.Involves("Moon"))
}

func TestResolve_UnusableExternalFallsBackToComputed(t *testing.T) {
	r := NewResolver()
	planets := []chart.MappedPlanet{at("Sun", 10), at("Moon", 130)}
	external := []chart.AspectInput{{PlanetA: "Sun", PlanetB: "Moon", Type: "biquintile"}}

	res := r.Resolve(planets, external)
	assert.False(t, res.External)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Aspects, 1)
	assert.Equal(t, Trine, res.Aspects[0].Type)
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{Conjunction, Sextile, Square, Trine, Opposition} {
		got, ok := ParseType(" " + typ.String() + " ")
		require.True(t, ok)
		assert.Equal(t, typ, got)
		assert.NotEqual(t, " ", typ.Symbol())
	}
	_, ok := ParseType("semisextile")
	assert.False(t, ok)
	assert.Equal(t, "None", None.String())
}
