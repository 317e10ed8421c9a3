package camera

import "math"

// referenceFPS is the frame rate speeds and damping factors are tuned for.
const referenceFPS = 60.0

// maxStep caps a single tick so a stalled render loop does not teleport the
// camera when it resumes.
const maxStep = 0.25

// Clamp01 clamps t to [0, 1]. NaN clamps to 0.
func Clamp01(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// EaseOutQuart decelerates to rest: 1 - (1-t)^4.
func EaseOutQuart(t float64) float64 {
	t = Clamp01(t)
	u := 1 - t
	return 1 - u*u*u*u
}

// EaseInOutQuint accelerates through the first half and decelerates through
// the second.
func EaseInOutQuint(t float64) float64 {
	t = Clamp01(t)
	if t < 0.5 {
		return 16 * t * t * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u*u*u/2
}

// Lerp interpolates a toward b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// DampedLerp moves current a fraction of the way to target. factor is
// clamped to [0, 1].
func DampedLerp(current, target, factor float64) float64 {
	return Lerp(current, target, Clamp01(factor))
}

// FrameFactor converts a per-frame damping factor at 60 Hz into the
// equivalent factor for a step of dt seconds, so convergence speed does not
// depend on the refresh rate. Invalid dt yields 0 (no movement).
func FrameFactor(factor, dt float64) float64 {
	frames := frames(dt)
	if frames == 0 {
		return 0
	}
	f := Clamp01(factor)
	return 1 - math.Pow(1-f, frames)
}

// frames returns dt expressed in 60 Hz frames, or 0 when dt is unusable.
func frames(dt float64) float64 {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return 0
	}
	if dt > maxStep {
		dt = maxStep
	}
	return dt * referenceFPS
}
