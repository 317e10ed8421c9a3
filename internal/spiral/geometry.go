package spiral

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Waypoint is the precomputed camera framing of one layer.
type Waypoint struct {
	Center         mgl64.Vec3 // look-at target on the world axis
	CameraPosition mgl64.Vec3
}

// Layer is one house of the spiral.
type Layer struct {
	Index        int
	Color        colorful.Color
	CenterT      float64
	CenterHeight float64
	Waypoint     Waypoint
}

// Hex returns the layer color as #rrggbb.
func (l Layer) Hex() string {
	return l.Color.Hex()
}

// Geometry is an immutable build of the spiral. Callers must not mutate it.
type Geometry struct {
	Params   Params
	Segments [][]mgl64.Vec3 // per-layer polyline, ordered by layer
	Layers   []Layer
}

// Build samples the spiral and computes per-layer metadata.
//
// Segment L holds the points i in [L*PointsPerLayer, (L+1)*PointsPerLayer]
// with t = i/total; the closing point is shared with the next segment so the
// rendered line stays continuous.
func Build(p Params) (*Geometry, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	total := p.LayerCount * p.PointsPerLayer
	g := &Geometry{
		Params:   p,
		Segments: make([][]mgl64.Vec3, p.LayerCount),
		Layers:   make([]Layer, p.LayerCount),
	}

	for layer := 0; layer < p.LayerCount; layer++ {
		start := layer * p.PointsPerLayer
		pts := make([]mgl64.Vec3, 0, p.PointsPerLayer+1)
		for i := start; i <= start+p.PointsPerLayer; i++ {
			t := float64(i) / float64(total)
			pts = append(pts, p.At(t).Position())
		}
		g.Segments[layer] = pts
		g.Layers[layer] = buildLayer(p, layer)
	}

	return g, nil
}

func buildLayer(p Params, layer int) Layer {
	t := (float64(layer) + 0.5) / float64(p.LayerCount)
	h := p.HeightAt(t)
	angle := p.Angle(t) + waypointPhase

	center := mgl64.Vec3{0, h, 0}
	offset := mgl64.Vec3{
		math.Cos(angle) * p.CameraDistance,
		p.CameraHeightOffset,
		math.Sin(angle) * p.CameraDistance,
	}

	return Layer{
		Index:        layer,
		Color:        LayerColor(layer, p.LayerCount),
		CenterT:      t,
		CenterHeight: h,
		Waypoint: Waypoint{
			Center:         center,
			CameraPosition: center.Add(offset),
		},
	}
}

// LayerColor spreads layer hues evenly around the color wheel.
func LayerColor(layer, count int) colorful.Color {
	if count <= 0 {
		count = 1
	}
	hue := math.Mod(float64(layer)*360/float64(count)+260, 360)
	return colorful.Hsv(hue, 0.55, 0.95)
}

const layerEpsilon = 1e-12

// LayerAt returns the layer containing t. t == 1 belongs to the last layer.
func (g *Geometry) LayerAt(t float64) int {
	n := g.Params.LayerCount
	if math.IsNaN(t) || t <= 0 {
		return 0
	}
	// Absorb rounding in t = (layer+progress)/n so a layer start maps back
	// to its own layer.
	idx := int(math.Floor(t*float64(n) + layerEpsilon))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// Layer returns layer i and whether it exists.
func (g *Geometry) Layer(i int) (Layer, bool) {
	if i < 0 || i >= len(g.Layers) {
		return Layer{}, false
	}
	return g.Layers[i], true
}

// PointCount returns the number of distinct samples on the spiral.
func (g *Geometry) PointCount() int {
	return g.Params.LayerCount*g.Params.PointsPerLayer + 1
}
