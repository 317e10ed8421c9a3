package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-spiral/internal/chart"
	"github.com/litescript/ls-spiral/internal/spiral"
)

const frame = 1.0 / 60

func newTestChoreographer(t *testing.T, cfg Config) (*Choreographer, *spiral.Geometry) {
	t.Helper()
	g, err := spiral.Build(spiral.DefaultParams())
	require.NoError(t, err)
	return New(g, cfg, nil), g
}

// runToIdle ticks until the animation clears and returns the tick count.
func runToIdle(t *testing.T, c *Choreographer, dt float64, limit int) int {
	t.Helper()
	for i := 1; i <= limit; i++ {
		c.Tick(dt)
		if c.State() == Idle {
			return i
		}
	}
	t.Fatalf("animation did not finish within %d ticks", limit)
	return 0
}

func assertVecNear(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "got %v, want %v", got, want)
	}
}

func TestNew_IdleAtOverview(t *testing.T) {
	c, _ := newTestChoreographer(t, DefaultConfig())
	assert.Equal(t, Idle, c.State())
	assert.True(t, c.Focus().IsOverview())
	assert.True(t, c.ControlsEnabled())
	assert.Equal(t, mgl64.Vec3{0, 14, 34}, c.Pose().Position)
}

func TestAnimationTerminates(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name  string
		to    Focus
		speed float64
	}{
		{"layer", LayerFocus(0), cfg.LayerSpeed},
		{"far layer from overview", LayerFocus(11), cfg.LayerSpeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestChoreographer(t, cfg)
			require.True(t, c.SetFocus(tt.to))
			assert.False(t, c.ControlsEnabled())

			bound := int(math.Ceil(1/tt.speed)) + 1
			n := runToIdle(t, c, frame, bound)
			assert.LessOrEqual(t, n, bound)
			assert.True(t, c.ControlsEnabled())
		})
	}

	t.Run("zipline and back to overview", func(t *testing.T) {
		c, _ := newTestChoreographer(t, cfg)
		c.SetFocus(LayerFocus(0))
		runToIdle(t, c, frame, 100)

		c.SetFocus(LayerFocus(10))
		a, ok := c.Animation()
		require.True(t, ok)
		assert.Equal(t, Zipline, a.Mode)
		runToIdle(t, c, frame, int(math.Ceil(1/cfg.ZiplineSpeed))+1)

		c.SetFocus(Overview)
		runToIdle(t, c, frame, int(math.Ceil(1/cfg.OverviewSpeed))+1)
	})

	t.Run("frame rate independent duration", func(t *testing.T) {
		c, _ := newTestChoreographer(t, cfg)
		c.SetFocus(LayerFocus(3))
		n := runToIdle(t, c, 1.0/144, 1000)
		assert.InDelta(t, 1/cfg.LayerSpeed*144/60, float64(n), 2)
	})
}

func TestZeroSpeedStallsWithoutDiverging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LayerSpeed = 0
	c, _ := newTestChoreographer(t, cfg)

	c.SetFocus(LayerFocus(4))
	for i := 0; i < 500; i++ {
		c.Tick(frame)
	}
	a, ok := c.Animation()
	require.True(t, ok, "zero speed never completes")
	assert.Equal(t, 0.0, a.Progress)
	assert.True(t, c.Pose().Finite())
}

func TestInvalidDtDoesNotMove(t *testing.T) {
	c, _ := newTestChoreographer(t, DefaultConfig())
	c.SetFocus(LayerFocus(5))
	before := c.Pose()

	for _, dt := range []float64{math.NaN(), -0.5, 0, math.Inf(-1)} {
		after := c.Tick(dt)
		assert.Equal(t, before, after, "dt=%v", dt)
	}
	a, _ := c.Animation()
	assert.Equal(t, 0.0, a.Progress)
}

func TestZiplinePathCoversEveryLayer(t *testing.T) {
	c, g := newTestChoreographer(t, DefaultConfig())

	// House 3, then immediately house 9.
	require.True(t, c.SetFocus(LayerFocus(2)))
	assert.Equal(t, LayerFocus(2), c.Focus())
	c.Tick(frame)
	c.Tick(frame)
	require.True(t, c.SetFocus(LayerFocus(8)))
	assert.Equal(t, LayerFocus(8), c.Focus())
	assert.False(t, c.SetFocus(LayerFocus(8)), "re-requesting the focused house is ignored")

	a, ok := c.Animation()
	require.True(t, ok)
	assert.Equal(t, Zipline, a.Mode)
	assert.Equal(t, LayerFocus(2), a.From)
	assert.Equal(t, LayerFocus(8), a.To)
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8}, a.Layers)
	require.Len(t, a.Path, 7)
	for i, l := range a.Layers {
		assert.True(t, a.Path[i].Position.ApproxEqual(g.Layers[l].Waypoint.CameraPosition), "path[%d]", i)
		assert.True(t, a.Path[i].LookAt.ApproxEqual(g.Layers[l].Waypoint.Center), "path[%d]", i)
	}

	// Descending order when going back up.
	c.SetFocus(LayerFocus(5))
	c.SetFocus(LayerFocus(1))
	a, _ = c.Animation()
	assert.Equal(t, []int{5, 4, 3, 2, 1}, a.Layers)
}

func TestModeSelection(t *testing.T) {
	c, _ := newTestChoreographer(t, DefaultConfig())

	c.SetFocus(LayerFocus(6))
	a, _ := c.Animation()
	assert.Equal(t, Direct, a.Mode, "from overview")

	c.SetFocus(LayerFocus(7))
	a, _ = c.Animation()
	assert.Equal(t, Direct, a.Mode, "one hop")
	assert.Empty(t, a.Path)

	c.SetFocus(LayerFocus(9))
	a, _ = c.Animation()
	assert.Equal(t, Zipline, a.Mode, "two hops")

	c.SetFocus(Overview)
	a, _ = c.Animation()
	assert.Equal(t, Direct, a.Mode, "to overview")
	assert.Equal(t, DefaultConfig().OverviewSpeed, a.Speed)
}

func TestReturnToOverviewFromLayer(t *testing.T) {
	cfg := DefaultConfig()
	c, _ := newTestChoreographer(t, cfg)

	require.True(t, c.SetFocus(LayerFocus(4)))
	runToIdle(t, c, frame, 100)
	require.Equal(t, LayerFocus(4), c.Focus())

	require.True(t, c.SetFocus(Overview))
	assert.True(t, c.Focus().IsOverview())
	a, ok := c.Animation()
	require.True(t, ok)
	assert.Equal(t, LayerFocus(4), a.From)
	assert.Equal(t, Direct, a.Mode)
	assert.Equal(t, cfg.OverviewSpeed, a.Speed)
	assertVecNear(t, mgl64.Vec3{0, cfg.OverviewHeight, cfg.OverviewDistance}, a.End.Position)

	runToIdle(t, c, frame, int(math.Ceil(1/cfg.OverviewSpeed))+1)
	for i := 0; i < 1000 && c.Settling(); i++ {
		c.Tick(frame)
	}
	assert.Equal(t, a.End, c.Pose())
}

func TestFlatKeepsLayerFraming(t *testing.T) {
	c, g := newTestChoreographer(t, DefaultConfig())
	require.True(t, c.SetFocus(LayerFocus(3)))
	runToIdle(t, c, frame, 100)

	require.True(t, c.SetFlat(true))
	assert.Equal(t, LayerFocus(3), c.Focus())
	a, ok := c.Animation()
	require.True(t, ok)
	assert.Equal(t, LayerFocus(3), a.From)
	assert.Equal(t, LayerFocus(3), a.To)

	want := Pose{
		Position: g.Layers[3].Waypoint.CameraPosition,
		LookAt:   g.Layers[3].Waypoint.Center,
	}.Rotate(Flat)
	assertVecNear(t, want.Position, a.End.Position)
	assertVecNear(t, want.LookAt, a.End.LookAt)

	require.True(t, c.SetFlat(false))
	assert.Equal(t, LayerFocus(3), c.Focus())
}

func TestRetargetStartsFromLivePose(t *testing.T) {
	cfg := DefaultConfig()
	c, _ := newTestChoreographer(t, cfg)

	c.SetFocus(LayerFocus(1))
	for i := 0; i < 15; i++ {
		c.Tick(frame)
	}
	old, _ := c.Animation()
	live := c.Pose()
	require.NotEqual(t, old.End, live)

	require.True(t, c.SetFocus(LayerFocus(2)))
	a, _ := c.Animation()
	assert.Equal(t, live, a.Start, "start pose is sampled from the rendered pose")
	assert.Equal(t, 0.0, a.Progress)

	next := c.Tick(frame)
	moved := next.Distance(live)
	assert.LessOrEqual(t, moved, cfg.Damping*a.Start.Distance(a.End)+1e-9)
}

func TestSameFocusIgnored(t *testing.T) {
	c, _ := newTestChoreographer(t, DefaultConfig())
	assert.False(t, c.SetFocus(Overview))
	assert.True(t, c.SetFocus(LayerFocus(3)))
	assert.False(t, c.SetFocus(LayerFocus(3)))
	assert.False(t, c.Request(Request{Kind: RequestLayer, Layer: 3}))
}

func TestSettleAfterCompletion(t *testing.T) {
	c, g := newTestChoreographer(t, DefaultConfig())
	c.SetFocus(LayerFocus(4))
	runToIdle(t, c, frame, 100)

	assert.True(t, c.Settling())
	for i := 0; i < 1000 && c.Settling(); i++ {
		c.Tick(frame)
	}
	require.False(t, c.Settling())

	want := g.Layers[4].Waypoint
	assert.Equal(t, want.CameraPosition, c.Pose().Position)
	assert.Equal(t, want.Center, c.Pose().LookAt)
}

func TestOrbitOnlyWhenIdle(t *testing.T) {
	c, _ := newTestChoreographer(t, DefaultConfig())
	c.SetFocus(LayerFocus(0))
	assert.False(t, c.Orbit(0.3, 0))

	runToIdle(t, c, frame, 100)
	before := c.Pose()
	dist := before.Position.Sub(before.LookAt).Len()

	require.True(t, c.Orbit(math.Pi/2, 0))
	assert.False(t, c.Settling(), "user input ends settling")
	after := c.Pose()
	assert.Equal(t, before.LookAt, after.LookAt)
	assert.InDelta(t, dist, after.Position.Sub(after.LookAt).Len(), 1e-9)
	assert.InDelta(t, before.Position.Y(), after.Position.Y(), 1e-9)

	require.True(t, c.Orbit(0, -0.5))
	assert.InDelta(t, dist/2, c.Pose().Position.Sub(c.Pose().LookAt).Len(), 1e-9)

	require.True(t, c.Orbit(0, -10))
	assert.InDelta(t, minOrbitDistance, c.Pose().Position.Sub(c.Pose().LookAt).Len(), 1e-9)
}

func TestBodyFocus(t *testing.T) {
	cfg := DefaultConfig()
	c, _ := newTestChoreographer(t, cfg)

	sun := chart.MappedPlanet{Name: "Sun", LayerIndex: 2, Position: mgl64.Vec3{3, 4, 0}}
	moon := chart.MappedPlanet{Name: "Moon", LayerIndex: 2, Position: mgl64.Vec3{0, 3.5, -3}}
	mars := chart.MappedPlanet{Name: "Mars", LayerIndex: 7, Position: mgl64.Vec3{-5, -4, 0}}
	c.SetBodies([]chart.MappedPlanet{sun, moon, mars})

	require.True(t, c.SetFocus(BodyFocus(2, "Sun")))
	a, _ := c.Animation()
	assert.Equal(t, sun.Position, a.End.LookAt)
	assert.True(t, a.End.Position.ApproxEqual(mgl64.Vec3{3 + cfg.BodyDistance, 4 + cfg.BodyHeightOffset, 0}))

	// The mapped layer wins over the requested one.
	c.SetFocus(BodyFocus(0, "Mars"))
	assert.Equal(t, BodyFocus(7, "Mars"), c.Focus())

	// Unknown bodies degrade to the layer.
	c.SetFocus(BodyFocus(4, "Chiron"))
	assert.Equal(t, LayerFocus(4), c.Focus())

	// A body without a layer is looked up before anything else.
	require.True(t, c.SetFocus(BodyFocus(-1, "Sun")))
	assert.Equal(t, BodyFocus(2, "Sun"), c.Focus())
	a, _ = c.Animation()
	assert.Equal(t, sun.Position, a.End.LookAt)

	c.SetFocus(BodyFocus(-1, "Chiron"))
	assert.True(t, c.Focus().IsOverview())
}

func TestZiplineEndsAtBody(t *testing.T) {
	c, _ := newTestChoreographer(t, DefaultConfig())
	mars := chart.MappedPlanet{Name: "Mars", LayerIndex: 7, Position: mgl64.Vec3{-5, -4, 0}}
	c.SetBodies([]chart.MappedPlanet{mars})

	c.SetFocus(LayerFocus(2))
	c.SetFocus(BodyFocus(7, "Mars"))
	a, _ := c.Animation()
	require.Equal(t, Zipline, a.Mode)
	assert.Equal(t, a.End, a.Path[len(a.Path)-1])

	runToIdle(t, c, frame, 200)
	for i := 0; i < 1000 && c.Settling(); i++ {
		c.Tick(frame)
	}
	assert.Equal(t, mars.Position, c.Pose().LookAt)
}

func TestCycleBodies(t *testing.T) {
	c, _ := newTestChoreographer(t, DefaultConfig())
	c.SetBodies([]chart.MappedPlanet{
		{Name: "Sun", LayerIndex: 2, Position: mgl64.Vec3{3, 4, 0}},
		{Name: "Moon", LayerIndex: 2, Position: mgl64.Vec3{0, 3.5, -3}},
		{Name: "Mars", LayerIndex: 7, Position: mgl64.Vec3{-5, -4, 0}},
	})

	assert.False(t, c.NextBody(), "no layer focused")

	c.SetFocus(LayerFocus(2))
	require.True(t, c.NextBody())
	assert.Equal(t, "Sun", c.Focus().Body)
	require.True(t, c.NextBody())
	assert.Equal(t, "Moon", c.Focus().Body)
	require.True(t, c.NextBody())
	assert.Equal(t, "Sun", c.Focus().Body)
	require.True(t, c.PrevBody())
	assert.Equal(t, "Moon", c.Focus().Body)

	c.SetFocus(LayerFocus(5))
	assert.False(t, c.PrevBody(), "empty layer")
}

func TestFlatToggle(t *testing.T) {
	c, g := newTestChoreographer(t, DefaultConfig())
	c.SetFocus(LayerFocus(3))
	c.Tick(frame)

	require.True(t, c.Request(Request{Kind: RequestToggleFlat}))
	assert.True(t, c.Flat())
	assert.False(t, c.AttitudeSettled())

	a, _ := c.Animation()
	assert.Equal(t, Direct, a.Mode)
	want := Pose{
		Position: g.Layers[3].Waypoint.CameraPosition,
		LookAt:   g.Layers[3].Waypoint.Center,
	}.Rotate(Flat)
	assert.True(t, a.End.Position.ApproxEqual(want.Position))

	// A focus change mid-toggle does not disturb the attitude.
	for i := 0; i < 5; i++ {
		c.Tick(frame)
	}
	mid := c.Attitude()
	c.SetFocus(LayerFocus(4))
	assert.Equal(t, mid, c.Attitude())

	ticks := 0
	for ; ticks < 1000 && !c.AttitudeSettled(); ticks++ {
		c.Tick(frame)
	}
	assert.Less(t, ticks, 1000)
	assert.True(t, c.Attitude().ApproxEqualThreshold(Flat, 1e-6))

	assert.False(t, c.SetFlat(true))
	assert.True(t, c.SetFlat(false))
}

func TestAttitudeStepsAreGradual(t *testing.T) {
	a := NewAttitude(0.08)
	a.SetFlat(true)
	a.Advance(frame)
	assert.False(t, a.Settled())
	assert.Greater(t, a.Current().Dot(Flat), Upright.Dot(Flat))
	assert.Less(t, a.Current().Dot(Flat), attitudeSnap)

	prev := a.Current().Dot(Flat)
	for i := 0; i < 50; i++ {
		a.Advance(frame)
		d := a.Current().Dot(Flat)
		assert.GreaterOrEqual(t, d, prev-1e-12)
		prev = d
	}

	before := a.Current()
	a.Advance(math.NaN())
	assert.Equal(t, before, a.Current())
}

func TestRequestKinds(t *testing.T) {
	for k := RequestOverview; k <= RequestToggleFlat; k++ {
		got, ok := ParseRequestKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseRequestKind("spin")
	assert.False(t, ok)

	assert.Equal(t, "overview", Overview.String())
	assert.Equal(t, "house 3", LayerFocus(2).String())
	assert.Equal(t, "house 3/Sun", BodyFocus(2, "Sun").String())
}
