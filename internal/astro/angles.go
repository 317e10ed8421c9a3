// Package astro provides the angle and zodiac math shared by the spiral pipeline.
package astro

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeDeg wraps an angle into [0, 360).
// Non-finite input is returned unchanged so callers can detect it.
func NormalizeDeg(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return deg
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// math.Mod(-1e-15, 360) + 360 rounds to exactly 360.
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// ForwardArc returns the counter-clockwise distance from one ecliptic degree
// to another, in [0, 360).
func ForwardArc(from, to float64) float64 {
	return NormalizeDeg(to - from)
}

// Separation returns the shortest angular distance between two angles, in [0, 180].
func Separation(a, b float64) float64 {
	diff := math.Abs(NormalizeDeg(a) - NormalizeDeg(b))
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// AzimuthDeg returns the azimuth of a point about the vertical (Y) axis,
// measured as atan2(z, x) and normalized to [0, 360).
func AzimuthDeg(v mgl64.Vec3) float64 {
	return NormalizeDeg(RadToDeg(math.Atan2(v.Z(), v.X())))
}
