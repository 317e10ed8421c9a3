package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// bezierCircle is the control point distance for a quarter circle.
const bezierCircle = 0.5522847498

// layer batches filled shapes of one color into a single rasterizer pass.
// Every subpath is wound the same way, so overlaps accumulate rather than
// cancel.
type layer struct {
	z    *vector.Rasterizer
	used bool
}

func newLayer(w, h int) *layer {
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Over
	return &layer{z: z}
}

// line adds a thick segment as a quad.
func (l *layer) line(x0, y0, x1, y1, width float64) {
	dx, dy := x1-x0, y1-y0
	n := math.Hypot(dx, dy)
	if n < 1e-9 || math.IsNaN(n) {
		return
	}
	// Left normal scaled to half width.
	nx, ny := -dy/n*width/2, dx/n*width/2

	l.z.MoveTo(float32(x0+nx), float32(y0+ny))
	l.z.LineTo(float32(x1+nx), float32(y1+ny))
	l.z.LineTo(float32(x1-nx), float32(y1-ny))
	l.z.LineTo(float32(x0-nx), float32(y0-ny))
	l.z.ClosePath()
	l.used = true
}

// disk adds a filled circle made of four cubic arcs.
func (l *layer) disk(cx, cy, r float64) {
	if r <= 0 || math.IsNaN(cx) || math.IsNaN(cy) {
		return
	}
	k := r * bezierCircle
	f := func(v float64) float32 { return float32(v) }

	// Same winding as the line quads.
	l.z.MoveTo(f(cx+r), f(cy))
	l.z.CubeTo(f(cx+r), f(cy-k), f(cx+k), f(cy-r), f(cx), f(cy-r))
	l.z.CubeTo(f(cx-k), f(cy-r), f(cx-r), f(cy-k), f(cx-r), f(cy))
	l.z.CubeTo(f(cx-r), f(cy+k), f(cx-k), f(cy+r), f(cx), f(cy+r))
	l.z.CubeTo(f(cx+k), f(cy+r), f(cx+r), f(cy+k), f(cx+r), f(cy))
	l.z.ClosePath()
	l.used = true
}

// flush composites the batched shapes onto dst and clears the batch.
func (l *layer) flush(dst *image.RGBA, c color.Color) {
	if !l.used {
		return
	}
	b := dst.Bounds()
	l.z.Draw(dst, b, image.NewUniform(c), image.Point{})
	l.z.Reset(b.Dx(), b.Dy())
	l.z.DrawOp = draw.Over
	l.used = false
}

// downsample scales a supersampled frame to its output size.
func downsample(src *image.RGBA, w, h int) *image.RGBA {
	if src.Bounds().Dx() == w && src.Bounds().Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// RGBA is already premultiplied.
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
