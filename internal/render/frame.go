package render

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/litescript/ls-spiral/internal/aspect"
	"github.com/litescript/ls-spiral/internal/camera"
	"github.com/litescript/ls-spiral/internal/chart"
	"github.com/litescript/ls-spiral/internal/spiral"
)

// Options controls output size and look.
type Options struct {
	Width       int
	Height      int
	Supersample int     // render at this multiple and scale down
	FOV         float64 // vertical, degrees
	Background  color.RGBA

	SpiralWidth float64 // pixels at output size
	AspectWidth float64
	PlanetSize  float64 // radius
	StarSize    float64 // radius of the brightest backdrop stars
}

// DefaultOptions returns a 960x720 frame on a dark background.
func DefaultOptions() Options {
	return Options{
		Width:       960,
		Height:      720,
		Supersample: 2,
		FOV:         50,
		Background:  color.RGBA{R: 10, G: 12, B: 24, A: 255},
		SpiralWidth: 2,
		AspectWidth: 1.2,
		PlanetSize:  5,
		StarSize:    1.6,
	}
}

// Scene is everything drawn in one frame.
type Scene struct {
	Geometry *spiral.Geometry
	Stars    []spiral.BackdropStar
	Planets  []chart.MappedPlanet
	Aspects  []aspect.Aspect
	Pose     camera.Pose
	Attitude mgl64.Quat
	Focus    camera.Focus
}

// Frame rasterizes the scene.
func Frame(s Scene, opt Options) *image.RGBA {
	ss := opt.Supersample
	if ss < 1 {
		ss = 1
	}
	w, h := opt.Width*ss, opt.Height*ss
	scale := float64(ss)

	if s.Attitude == (mgl64.Quat{}) {
		s.Attitude = mgl64.QuatIdent()
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(opt.Background), image.Point{}, draw.Src)

	pr := NewProjector(s.Pose, s.Attitude, w, h, opt.FOV, 1)
	batch := newLayer(w, h)

	drawStars(img, batch, pr, s.Stars, opt.StarSize*scale)

	if s.Geometry != nil {
		for i, seg := range s.Geometry.Segments {
			for j := 1; j < len(seg); j++ {
				x0, y0, _, ok0 := pr.Project(seg[j-1])
				x1, y1, _, ok1 := pr.Project(seg[j])
				if ok0 && ok1 {
					batch.line(x0, y0, x1, y1, opt.SpiralWidth*scale)
				}
			}
			alpha := 0.85
			if !s.Focus.IsOverview() && s.Focus.Layer != i {
				alpha = 0.35
			}
			batch.flush(img, withAlpha(layerColor(s.Geometry, i), alpha))
		}
	}

	positions := make(map[string]mgl64.Vec3, len(s.Planets))
	for _, p := range s.Planets {
		positions[p.Name] = p.Position
	}
	for _, a := range s.Aspects {
		pa, okA := positions[a.PlanetA]
		pb, okB := positions[a.PlanetB]
		if !okA || !okB {
			continue
		}
		x0, y0, _, ok0 := pr.Project(pa)
		x1, y1, _, ok1 := pr.Project(pb)
		if !ok0 || !ok1 {
			continue
		}
		batch.line(x0, y0, x1, y1, opt.AspectWidth*scale)
		batch.flush(img, withAlpha(a.Color, 0.6))
	}

	type marker struct {
		x, y, depth float64
		p           chart.MappedPlanet
	}
	var markers []marker
	for _, p := range s.Planets {
		x, y, d, ok := pr.Project(p.Position)
		if ok {
			markers = append(markers, marker{x, y, d, p})
		}
	}
	// Far to near.
	sort.SliceStable(markers, func(i, j int) bool { return markers[i].depth > markers[j].depth })

	for _, m := range markers {
		r := opt.PlanetSize * scale
		if m.p.Name == s.Focus.Body {
			r *= 1.6
		}
		base := colorful.Color{R: 1, G: 1, B: 1}
		if s.Geometry != nil {
			base = layerColor(s.Geometry, m.p.LayerIndex).BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.6).Clamped()
		}
		if m.p.IsNearCusp {
			batch.disk(m.x, m.y, r*1.5)
			batch.flush(img, withAlpha(base, 0.3))
		}
		batch.disk(m.x, m.y, r)
		batch.flush(img, withAlpha(base, 1))
	}

	return downsample(img, opt.Width, opt.Height)
}

// starTiers buckets the backdrop by magnitude so each tier is one flush.
var starTiers = []struct {
	maxMag float64
	size   float64
	alpha  float64
}{
	{1.5, 1, 0.9},
	{3, 0.7, 0.55},
	{math.Inf(1), 0.5, 0.3},
}

var starColor = colorful.Color{R: 0.82, G: 0.87, B: 1}

func drawStars(img *image.RGBA, batch *layer, pr Projector, stars []spiral.BackdropStar, size float64) {
	if size <= 0 {
		return
	}
	minMag := math.Inf(-1)
	for _, tier := range starTiers {
		for _, st := range stars {
			if st.Mag <= minMag || st.Mag > tier.maxMag {
				continue
			}
			if x, y, _, ok := pr.Project(st.Position); ok {
				batch.disk(x, y, size*tier.size)
			}
		}
		batch.flush(img, withAlpha(starColor, tier.alpha))
		minMag = tier.maxMag
	}
}

func layerColor(g *spiral.Geometry, i int) colorful.Color {
	if l, ok := g.Layer(i); ok {
		return l.Color
	}
	return colorful.Color{R: 1, G: 1, B: 1}
}

func withAlpha(c colorful.Color, a float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(a*255 + 0.5)}
}
