package astro

import "strings"

var bodyGlyphs = map[string]rune{
	"sun":     '☉',
	"moon":    '☽',
	"mercury": '☿',
	"venus":   '♀',
	"mars":    '♂',
	"jupiter": '♃',
	"saturn":  '♄',
	"uranus":  '♅',
	"neptune": '♆',
	"pluto":   '♇',
	"chiron":  '⚷',
}

// BodyGlyph returns the astronomical symbol for a named body, or '●' for
// bodies without one. Names are matched case-insensitively.
func BodyGlyph(name string) rune {
	if g, ok := bodyGlyphs[strings.ToLower(strings.TrimSpace(name))]; ok {
		return g
	}
	return '●'
}
