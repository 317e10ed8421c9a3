package astro

import "math"

// Obliquity of the ecliptic at J2000, in degrees.
const Obliquity = 23.439291

// ZodiacBand is the ecliptic latitude, in degrees, within which a star
// counts as zodiacal.
const ZodiacBand = 12.0

// Star represents a cataloged star with position and brightness.
type Star struct {
	Name   string  // Common name (e.g., "Regulus", "Spica")
	RAdeg  float64 // Right Ascension in degrees (J2000)
	DecDeg float64 // Declination in degrees (J2000)
	Mag    float64 // Apparent visual magnitude (lower = brighter)
}

// Ecliptic converts the star's equatorial position to ecliptic longitude
// and latitude in degrees. Longitude is normalized to [0, 360).
func (s Star) Ecliptic() (lon, lat float64) {
	ra := DegToRad(s.RAdeg)
	dec := DegToRad(s.DecDeg)
	eps := DegToRad(Obliquity)

	sinLat := math.Sin(dec)*math.Cos(eps) - math.Cos(dec)*math.Sin(eps)*math.Sin(ra)
	lat = RadToDeg(math.Asin(sinLat))
	lon = RadToDeg(math.Atan2(math.Sin(ra)*math.Cos(eps)+math.Tan(dec)*math.Sin(eps), math.Cos(ra)))
	return NormalizeDeg(lon), lat
}

// ZodiacStars returns the bright stars within ZodiacBand of the
// ecliptic, ordered by ecliptic longitude. Coordinates are J2000.
// The returned slice is shared; callers must not modify it.
func ZodiacStars() []Star {
	return zodiacStars
}

// zodiacStars is grouped by the tropical sign each star falls in.
var zodiacStars = []Star{
	// Taurus
	{"Sheratan", 28.660, 20.808, 2.64},
	{"Hamal", 31.793, 23.463, 2.00},
	{"Alcyone", 56.871, 24.105, 2.87},

	// Gemini
	{"Aldebaran", 68.980, 16.509, 0.85},
	{"Hassaleh", 75.492, 33.166, 2.69},
	{"Elnath", 81.573, 28.608, 1.65},

	// Cancer
	{"Propus", 93.719, 22.506, 3.28},
	{"Tejat", 95.740, 22.513, 2.88},
	{"Alhena", 99.428, 16.399, 1.93},
	{"Mebsuta", 100.983, 25.131, 3.06},
	{"Wasat", 110.031, 21.982, 3.53},
	{"Castor", 113.650, 31.889, 1.58},
	{"Pollux", 116.329, 28.026, 1.14},
	{"Kappa Gem", 116.112, 24.398, 3.57},

	// Leo
	{"Asellus Borealis", 130.821, 21.469, 4.66},
	{"Asellus Australis", 131.171, 18.154, 3.94},
	{"Acubens", 134.622, 11.858, 4.25},
	{"Alterf", 139.711, 22.968, 4.31},
	{"Rasalas", 146.463, 26.007, 3.88},
	{"Algieba", 146.463, 19.842, 2.08},
	{"Subra", 148.191, 9.893, 3.52},
	{"Adhafera", 154.173, 23.417, 3.43},
	{"Regulus", 152.093, 11.967, 1.35},

	// Virgo
	{"Chertan", 168.560, 15.430, 3.33},
	{"Zavijava", 177.674, 1.765, 3.61},

	// Libra
	{"Zaniah", 184.976, -0.667, 3.89},
	{"Porrima", 190.415, -1.449, 2.74},
	{"Auva", 192.855, 3.397, 3.38},
	{"Heze", 203.673, -0.596, 3.37},
	{"Spica", 201.298, -11.161, 0.97},

	// Scorpio
	{"Syrma", 214.004, -6.001, 4.08},
	{"Khambalia", 218.877, -13.371, 4.66},
	{"Zubenelgenubi", 222.720, -16.042, 2.75},
	{"Zubeneschamali", 229.252, -9.383, 2.61},

	// Sagittarius
	{"Dschubba", 240.083, -22.622, 2.32},
	{"Acrab", 241.359, -19.805, 2.62},
	{"Antares", 247.352, -26.432, 0.96},
	{"Larawag", 254.655, -34.293, 2.29},
	{"Sabik", 257.595, -15.725, 2.43},

	// Capricorn
	{"Kaus Australis", 276.043, -34.384, 1.85},
	{"Nunki", 283.816, -26.297, 2.02},

	// Aquarius
	{"Aldhanab", 319.966, -16.127, 3.00},
	{"Sadalsuud", 322.890, -5.571, 2.91},

	// Pisces
	{"Sadalmelik", 331.446, -0.320, 2.96},
}
