// Package render draws the spiral scene offline and encodes it.
package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/litescript/ls-spiral/internal/camera"
)

const (
	nearPlane = 0.1
	farPlane  = 500.0
)

// Projector maps spiral-local points to pixel coordinates.
type Projector struct {
	mvp    mgl64.Mat4
	width  float64
	height float64
}

// NewProjector combines the spiral attitude, the camera pose and a
// perspective projection with the given vertical field of view in degrees.
// aspect scales pixel width against height, for terminal cells that are
// taller than they are wide.
func NewProjector(pose camera.Pose, attitude mgl64.Quat, width, height int, fovDeg, aspect float64) Projector {
	if aspect <= 0 {
		aspect = 1
	}
	ratio := float64(width) / float64(height) / aspect
	proj := mgl64.Perspective(mgl64.DegToRad(fovDeg), ratio, nearPlane, farPlane)
	view := pose.ViewMatrix()
	model := attitude.Mat4()
	return Projector{
		mvp:    proj.Mul4(view).Mul4(model),
		width:  float64(width),
		height: float64(height),
	}
}

// Project returns the pixel position of p and its clip-space depth. ok is
// false for points behind the camera or outside the depth range.
func (pr Projector) Project(p mgl64.Vec3) (x, y, depth float64, ok bool) {
	clip := pr.mvp.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= nearPlane || math.IsNaN(w) {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / w)
	if ndc.Z() < -1 || ndc.Z() > 1 {
		return 0, 0, 0, false
	}
	x = (ndc.X() + 1) / 2 * pr.width
	y = (1 - ndc.Y()) / 2 * pr.height
	return x, y, ndc.Z(), true
}

// Size returns the target size in pixels.
func (pr Projector) Size() (float64, float64) {
	return pr.width, pr.height
}
