// Package camera animates the camera between the spiral's layers and bodies.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/litescript/ls-spiral/internal/chart"
	"github.com/litescript/ls-spiral/internal/logging"
	"github.com/litescript/ls-spiral/internal/spiral"
)

// settleEpsilon is the distance below which the settling pose snaps to its
// final target.
const settleEpsilon = 1e-4

// minOrbitDistance keeps user zoom from passing through the look-at point.
const minOrbitDistance = 0.5

// Config holds choreographer tuning. Speeds are progress per frame at 60 Hz.
type Config struct {
	LayerSpeed    float64 // focusing a layer or body
	OverviewSpeed float64 // returning to the overview
	ZiplineSpeed  float64 // multi-layer moves
	Damping       float64 // per-frame fraction toward the eased target
	AttitudeStep  float64 // per-frame slerp fraction for flat/upright

	OverviewDistance float64
	OverviewHeight   float64
	BodyDistance     float64
	BodyHeightOffset float64

	OrbitSpeed float64 // radians per unit of Orbit azimuth input
}

// DefaultConfig returns the tuning used by the UI.
func DefaultConfig() Config {
	return Config{
		LayerSpeed:       0.025,
		OverviewSpeed:    0.018,
		ZiplineSpeed:     0.008,
		Damping:          0.16,
		AttitudeStep:     0.08,
		OverviewDistance: 34,
		OverviewHeight:   14,
		BodyDistance:     3.5,
		BodyHeightOffset: 1.2,
		OrbitSpeed:       1,
	}
}

// Animation is the in-flight camera move.
type Animation struct {
	Mode     Mode
	From     Focus
	To       Focus
	Start    Pose // live pose when the move began
	End      Pose
	Path     []Pose // zipline waypoints, first to last layer inclusive
	Layers   []int  // layer of each Path entry
	Progress float64
	Speed    float64
}

// Sample returns the ideal pose at the current progress.
func (a *Animation) Sample() Pose {
	if a.Mode != Zipline || len(a.Path) < 2 {
		return a.Start.Lerp(a.End, EaseOutQuart(a.Progress))
	}

	// Segment selection is eased, then motion inside the segment is eased
	// again with the same curve.
	eased := EaseInOutQuint(a.Progress)
	span := float64(len(a.Path) - 1)
	seg := int(math.Floor(eased * span))
	if seg >= len(a.Path)-1 {
		seg = len(a.Path) - 2
	}
	local := EaseInOutQuint(eased*span - float64(seg))
	onPath := a.Path[seg].Lerp(a.Path[seg+1], local)

	blend := math.Min(a.Progress*3, 1)
	return a.Start.Lerp(onPath, blend)
}

// Choreographer owns the live camera pose and at most one animation. It is
// not safe for concurrent use; one goroutine drives Tick and Request.
type Choreographer struct {
	cfg  Config
	geom *spiral.Geometry
	log  *logging.Logger

	bodies []chart.MappedPlanet

	pose     Pose
	focus    Focus
	flat     bool
	attitude Attitude

	anim     *Animation
	settling bool
	final    Pose

	// OnAnimationStart is called whenever a new animation replaces the
	// current one.
	OnAnimationStart func(Animation)
}

// New returns an idle choreographer framing the overview.
func New(geom *spiral.Geometry, cfg Config, log *logging.Logger) *Choreographer {
	if log == nil {
		log = logging.Discard()
	}
	c := &Choreographer{
		cfg:      cfg,
		geom:     geom,
		log:      log,
		focus:    Overview,
		attitude: NewAttitude(cfg.AttitudeStep),
	}
	c.pose = c.targetPose(Overview)
	c.final = c.pose
	return c
}

// Pose returns the live camera pose.
func (c *Choreographer) Pose() Pose { return c.pose }

// Focus returns the current focus target.
func (c *Choreographer) Focus() Focus { return c.focus }

// Flat reports whether the flat view is selected.
func (c *Choreographer) Flat() bool { return c.flat }

// Attitude returns the spiral's live orientation.
func (c *Choreographer) Attitude() mgl64.Quat { return c.attitude.Current() }

// AttitudeSettled reports whether the orientation has reached its target.
func (c *Choreographer) AttitudeSettled() bool { return c.attitude.Settled() }

// State reports whether an animation is in flight.
func (c *Choreographer) State() State {
	if c.anim != nil {
		return Animating
	}
	return Idle
}

// Animation returns a copy of the in-flight animation.
func (c *Choreographer) Animation() (Animation, bool) {
	if c.anim == nil {
		return Animation{}, false
	}
	a := *c.anim
	a.Path = append([]Pose(nil), c.anim.Path...)
	a.Layers = append([]int(nil), c.anim.Layers...)
	return a, true
}

// ControlsEnabled reports whether free orbit and zoom are allowed.
func (c *Choreographer) ControlsEnabled() bool { return c.anim == nil }

// Settling reports whether the pose is still converging after an animation.
func (c *Choreographer) Settling() bool { return c.settling }

// SetBodies replaces the planets that body focus can target.
func (c *Choreographer) SetBodies(planets []chart.MappedPlanet) {
	c.bodies = append(c.bodies[:0], planets...)
}

// Request applies a focus request. It returns true when an animation was
// started.
func (c *Choreographer) Request(r Request) bool {
	switch r.Kind {
	case RequestOverview:
		return c.SetFocus(Overview)
	case RequestLayer:
		return c.SetFocus(LayerFocus(r.Layer))
	case RequestBody:
		return c.SetFocus(BodyFocus(r.Layer, r.Body))
	case RequestToggleFlat:
		return c.SetFlat(!c.flat)
	}
	return false
}

// SetFocus retargets the camera. A focus equal to the current target is
// ignored.
func (c *Choreographer) SetFocus(f Focus) bool {
	f = c.resolve(f)
	if f == c.focus {
		return false
	}
	c.start(c.focus, f)
	return true
}

// SetFlat selects the flat or upright view. The camera follows the new
// orientation with a direct move while the attitude slerps on its own.
func (c *Choreographer) SetFlat(flat bool) bool {
	if flat == c.flat {
		return false
	}
	c.flat = flat
	c.attitude.SetFlat(flat)
	c.start(c.focus, c.focus)
	return true
}

// NextBody focuses the next planet in the focused layer.
func (c *Choreographer) NextBody() bool { return c.cycleBody(1) }

// PrevBody focuses the previous planet in the focused layer.
func (c *Choreographer) PrevBody() bool { return c.cycleBody(-1) }

func (c *Choreographer) cycleBody(dir int) bool {
	if c.focus.IsOverview() {
		return false
	}
	var names []string
	for _, p := range c.bodies {
		if p.LayerIndex == c.focus.Layer {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 {
		return false
	}

	idx := -1
	for i, n := range names {
		if n == c.focus.Body {
			idx = i
		}
	}
	switch {
	case idx < 0 && dir > 0:
		idx = 0
	case idx < 0:
		idx = len(names) - 1
	default:
		idx = (idx + dir + len(names)) % len(names)
	}
	return c.SetFocus(BodyFocus(c.focus.Layer, names[idx]))
}

// Orbit rotates the camera about its look-at point and zooms by dZoom
// (fraction of the current distance). It is rejected while animating.
func (c *Choreographer) Orbit(dAzimuth, dZoom float64) bool {
	if !c.ControlsEnabled() {
		return false
	}
	if math.IsNaN(dAzimuth) || math.IsNaN(dZoom) {
		return false
	}
	c.settling = false

	offset := c.pose.Position.Sub(c.pose.LookAt)
	rot := mgl64.QuatRotate(dAzimuth*c.cfg.OrbitSpeed, mgl64.Vec3{0, 1, 0})
	offset = rot.Rotate(offset)

	dist := offset.Len()
	if dist > 0 {
		scaled := math.Max(dist*(1+dZoom), minOrbitDistance)
		offset = offset.Mul(scaled / dist)
	}
	c.pose.Position = c.pose.LookAt.Add(offset)
	return true
}

// Tick advances the attitude, the animation and the damped pose by dt
// seconds and returns the live pose. NaN or negative dt moves nothing.
func (c *Choreographer) Tick(dt float64) Pose {
	c.attitude.Advance(dt)

	f := frames(dt)
	damp := FrameFactor(c.cfg.Damping, dt)

	switch {
	case c.anim != nil:
		step := c.anim.Speed * f
		if math.IsNaN(step) || step < 0 {
			step = 0
		}
		c.anim.Progress = Clamp01(c.anim.Progress + step)
		c.damp(c.anim.Sample(), damp)

		if c.anim.Progress >= 1 {
			c.log.Debug("animation %s %s -> %s complete", c.anim.Mode, c.anim.From, c.anim.To)
			c.final = c.anim.End
			c.anim = nil
			c.settling = true
		}

	case c.settling:
		c.damp(c.final, damp)
		if c.pose.Distance(c.final) < settleEpsilon {
			c.pose = c.final
			c.settling = false
		}
	}

	return c.pose
}

func (c *Choreographer) damp(target Pose, factor float64) {
	next := c.pose.Damp(target, factor)
	if next.Finite() {
		c.pose = next
	}
}

// resolve clamps layers and reconciles a body focus with the mapped planet.
// A known body always takes its mapped layer, whatever layer was requested.
func (c *Choreographer) resolve(f Focus) Focus {
	if f.Body != "" {
		p, ok := c.body(f.Body)
		if ok {
			if p.LayerIndex != f.Layer {
				c.log.Warn("body %s requested in house %d but mapped to house %d", f.Body, f.Layer+1, p.House())
			}
			return BodyFocus(p.LayerIndex, p.Name)
		}
		if f.IsOverview() {
			c.log.Warn("focus on unknown body %q, framing the overview", f.Body)
			return Overview
		}
		c.log.Warn("focus on unknown body %q, framing house %d", f.Body, f.Layer+1)
		f = LayerFocus(f.Layer)
	}
	if f.IsOverview() {
		return Overview
	}
	if n := c.geom.Params.LayerCount; f.Layer >= n {
		f.Layer = n - 1
	}
	return f
}

func (c *Choreographer) body(name string) (chart.MappedPlanet, bool) {
	for _, p := range c.bodies {
		if p.Name == name {
			return p, true
		}
	}
	return chart.MappedPlanet{}, false
}

func (c *Choreographer) start(from, to Focus) {
	a := &Animation{
		Mode:  Direct,
		From:  from,
		To:    to,
		Start: c.pose,
		End:   c.targetPose(to),
		Speed: c.cfg.LayerSpeed,
	}
	if to.IsOverview() {
		a.Speed = c.cfg.OverviewSpeed
	}

	if !from.IsOverview() && !to.IsOverview() && abs(to.Layer-from.Layer) > 1 {
		a.Mode = Zipline
		a.Speed = c.cfg.ZiplineSpeed
		dir := 1
		if to.Layer < from.Layer {
			dir = -1
		}
		for l := from.Layer; ; l += dir {
			a.Layers = append(a.Layers, l)
			a.Path = append(a.Path, c.layerPose(l))
			if l == to.Layer {
				break
			}
		}
		a.Path[len(a.Path)-1] = a.End
	}

	c.anim = a
	c.focus = to
	c.settling = false
	c.log.Debug("animation %s %s -> %s", a.Mode, from, to)
	if c.OnAnimationStart != nil {
		c.OnAnimationStart(*a)
	}
}

// targetPose is the resting pose for f under the target attitude.
func (c *Choreographer) targetPose(f Focus) Pose {
	q := c.attitude.Target()
	switch {
	case f.IsOverview():
		return Pose{
			Position: mgl64.Vec3{0, c.cfg.OverviewHeight, c.cfg.OverviewDistance},
		}.Rotate(q)
	case f.Body != "":
		if p, ok := c.body(f.Body); ok {
			return c.bodyPose(p.Position).Rotate(q)
		}
	}
	return c.layerPose(f.Layer)
}

func (c *Choreographer) layerPose(layer int) Pose {
	l, ok := c.geom.Layer(layer)
	if !ok {
		return c.pose
	}
	return Pose{
		Position: l.Waypoint.CameraPosition,
		LookAt:   l.Waypoint.Center,
	}.Rotate(c.attitude.Target())
}

// bodyPose looks at a planet from outside the spiral, slightly above it.
func (c *Choreographer) bodyPose(pos mgl64.Vec3) Pose {
	out := mgl64.Vec3{pos.X(), 0, pos.Z()}
	if out.Len() < 1e-9 {
		out = mgl64.Vec3{1, 0, 0}
	}
	out = out.Normalize()
	return Pose{
		Position: pos.Add(out.Mul(c.cfg.BodyDistance)).Add(mgl64.Vec3{0, c.cfg.BodyHeightOffset, 0}),
		LookAt:   pos,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
