package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a camera placement.
type Pose struct {
	Position mgl64.Vec3
	LookAt   mgl64.Vec3
}

// Lerp interpolates both points toward q.
func (p Pose) Lerp(q Pose, t float64) Pose {
	return Pose{
		Position: lerpVec(p.Position, q.Position, t),
		LookAt:   lerpVec(p.LookAt, q.LookAt, t),
	}
}

// Damp moves p a fraction of the way toward target.
func (p Pose) Damp(target Pose, factor float64) Pose {
	return p.Lerp(target, Clamp01(factor))
}

// Distance returns the larger of the position and look-at distances.
func (p Pose) Distance(q Pose) float64 {
	return math.Max(p.Position.Sub(q.Position).Len(), p.LookAt.Sub(q.LookAt).Len())
}

// Rotate applies an attitude to both points.
func (p Pose) Rotate(q mgl64.Quat) Pose {
	return Pose{Position: q.Rotate(p.Position), LookAt: q.Rotate(p.LookAt)}
}

// Finite reports whether every component is a real number.
func (p Pose) Finite() bool {
	for _, v := range []mgl64.Vec3{p.Position, p.LookAt} {
		for _, c := range v {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return false
			}
		}
	}
	return true
}

// ViewMatrix returns the right-handed look-at matrix for the pose.
func (p Pose) ViewMatrix() mgl64.Mat4 {
	return mgl64.LookAtV(p.Position, p.LookAt, mgl64.Vec3{0, 1, 0})
}

func lerpVec(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
