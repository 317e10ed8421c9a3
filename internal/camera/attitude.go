package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Upright is the spiral's default orientation.
var Upright = mgl64.QuatIdent()

// Flat lays the spiral on its back so it is viewed from above.
var Flat = mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0})

// attitudeSnap is the quaternion dot product above which the attitude is
// considered to have arrived.
const attitudeSnap = 1 - 1e-10

// Attitude eases the spiral's orientation between Upright and Flat. It is
// advanced independently of camera animations.
type Attitude struct {
	current mgl64.Quat
	target  mgl64.Quat
	step    float64
}

// NewAttitude starts upright. step is the per-frame slerp fraction at 60 Hz.
func NewAttitude(step float64) Attitude {
	return Attitude{current: Upright, target: Upright, step: step}
}

// SetFlat selects the target orientation.
func (a *Attitude) SetFlat(flat bool) {
	if flat {
		a.target = Flat
	} else {
		a.target = Upright
	}
}

// Current returns the live orientation.
func (a Attitude) Current() mgl64.Quat { return a.current }

// Target returns the orientation being approached.
func (a Attitude) Target() mgl64.Quat { return a.target }

// Settled reports whether the live orientation has reached the target.
func (a Attitude) Settled() bool {
	return a.current.Dot(a.target) >= attitudeSnap
}

// Advance slerps one step toward the target.
func (a *Attitude) Advance(dt float64) {
	if a.Settled() {
		a.current = a.target
		return
	}
	f := FrameFactor(a.step, dt)
	if f == 0 {
		return
	}
	a.current = mgl64.QuatSlerp(a.current, a.target, f).Normalize()
	if a.Settled() {
		a.current = a.target
	}
}
