// Package spiral builds the parametric helix that carries the twelve house layers.
//
// A single scalar t in [0, 1] addresses every point of the spiral. The helix
// turns once per layer, widens linearly from StartRadius to EndRadius, and
// descends linearly from +Height/2 to -Height/2, so layer 0 sits smallest and
// topmost and the last layer sits largest and lowest.
package spiral

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidParams is returned by Build when the geometry constants are unusable.
var ErrInvalidParams = errors.New("invalid spiral parameters")

// waypointPhase is the angular lead of a layer's camera ahead of the ring
// point at the layer midpoint, giving a three-quarter view.
const waypointPhase = 0.6 * math.Pi

// Params holds the geometry constants.
type Params struct {
	LayerCount         int
	PointsPerLayer     int
	StartRadius        float64
	EndRadius          float64
	Height             float64
	CameraDistance     float64 // outward distance of a layer waypoint from the axis
	CameraHeightOffset float64 // vertical lift of a layer waypoint above its center
}

// DefaultParams returns the geometry used by the application.
func DefaultParams() Params {
	return Params{
		LayerCount:         12,
		PointsPerLayer:     100,
		StartRadius:        2.0,
		EndRadius:          6.0,
		Height:             24.0,
		CameraDistance:     11.0,
		CameraHeightOffset: 3.0,
	}
}

// Validate reports every problem with p.
func (p Params) Validate() error {
	var errs []error
	if p.LayerCount <= 0 {
		errs = append(errs, fmt.Errorf("%w: layer count %d must be positive", ErrInvalidParams, p.LayerCount))
	}
	if p.PointsPerLayer < 2 {
		errs = append(errs, fmt.Errorf("%w: points per layer %d must be at least 2", ErrInvalidParams, p.PointsPerLayer))
	}
	if !finitePositive(p.StartRadius) || !finitePositive(p.EndRadius) {
		errs = append(errs, fmt.Errorf("%w: radii %v/%v must be positive", ErrInvalidParams, p.StartRadius, p.EndRadius))
	} else if p.EndRadius < p.StartRadius {
		errs = append(errs, fmt.Errorf("%w: end radius %v below start radius %v", ErrInvalidParams, p.EndRadius, p.StartRadius))
	}
	if !finitePositive(p.Height) {
		errs = append(errs, fmt.Errorf("%w: height %v must be positive", ErrInvalidParams, p.Height))
	}
	if !finitePositive(p.CameraDistance) {
		errs = append(errs, fmt.Errorf("%w: camera distance %v must be positive", ErrInvalidParams, p.CameraDistance))
	}
	if math.IsNaN(p.CameraHeightOffset) || math.IsInf(p.CameraHeightOffset, 0) {
		errs = append(errs, fmt.Errorf("%w: camera height offset must be finite", ErrInvalidParams))
	}
	return errors.Join(errs...)
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Point is a spiral sample in cylindrical form.
type Point struct {
	Angle  float64 // radians, grows by 2π per layer
	Radius float64
	Height float64
}

// Position converts the point to world coordinates (Y up).
func (p Point) Position() mgl64.Vec3 {
	return mgl64.Vec3{
		math.Cos(p.Angle) * p.Radius,
		p.Height,
		math.Sin(p.Angle) * p.Radius,
	}
}

// Angle returns the helix angle at t: one full revolution per layer.
func (p Params) Angle(t float64) float64 {
	return t * 2 * math.Pi * float64(p.LayerCount)
}

// Radius returns the helix radius at t.
func (p Params) Radius(t float64) float64 {
	return p.StartRadius + t*(p.EndRadius-p.StartRadius)
}

// HeightAt returns the helix height at t.
func (p Params) HeightAt(t float64) float64 {
	return p.Height/2 - t*p.Height
}

// At samples the helix at t.
func (p Params) At(t float64) Point {
	return Point{
		Angle:  p.Angle(t),
		Radius: p.Radius(t),
		Height: p.HeightAt(t),
	}
}

// LayerT returns the t of a position inside a layer, where progress in [0, 1]
// runs from the layer's first point to the start of the next layer.
func (p Params) LayerT(layer int, progress float64) float64 {
	return (float64(layer) + progress) / float64(p.LayerCount)
}
