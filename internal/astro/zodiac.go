package astro

import (
	"math"
	"strings"
)

// Sign is one of the twelve 30° zodiac signs, starting at 0° Aries.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

func (s Sign) String() string {
	if s < 0 || int(s) >= len(signNames) {
		return "Unknown"
	}
	return signNames[s]
}

// SignOf returns the zodiac sign containing an ecliptic degree.
func SignOf(deg float64) Sign {
	d := NormalizeDeg(deg)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return Aries
	}
	idx := int(d / 30)
	if idx > 11 {
		idx = 11
	}
	return Sign(idx)
}

// DegreeInSign returns the offset of deg within its sign, in [0, 30).
func DegreeInSign(deg float64) float64 {
	d := NormalizeDeg(deg)
	return d - float64(SignOf(d))*30
}

// ParseSign parses a sign name case-insensitively.
func ParseSign(name string) (Sign, bool) {
	name = strings.TrimSpace(name)
	for i, n := range signNames {
		if strings.EqualFold(n, name) {
			return Sign(i), true
		}
	}
	return 0, false
}
