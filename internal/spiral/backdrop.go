package spiral

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/litescript/ls-spiral/internal/astro"
)

// BackdropRadius is the distance of the star sphere from the spiral axis.
const BackdropRadius = 150.0

// BackdropStar is a catalog star placed on the sphere around the spiral.
type BackdropStar struct {
	Name     string
	Mag      float64
	Position mgl64.Vec3
}

// Backdrop places stars on a sphere of the given radius so that the
// ascendant lies at azimuth zero, where the first house starts, and
// ecliptic longitude increases in the direction the spiral winds.
// Ecliptic latitude becomes elevation above the XZ plane.
func Backdrop(stars []astro.Star, ascendant, radius float64) []BackdropStar {
	out := make([]BackdropStar, 0, len(stars))
	for _, s := range stars {
		lon, lat := s.Ecliptic()
		az := astro.DegToRad(astro.ForwardArc(ascendant, lon))
		el := astro.DegToRad(lat)
		out = append(out, BackdropStar{
			Name: s.Name,
			Mag:  s.Mag,
			Position: mgl64.Vec3{
				math.Cos(el) * math.Cos(az) * radius,
				math.Sin(el) * radius,
				math.Cos(el) * math.Sin(az) * radius,
			},
		})
	}
	return out
}
