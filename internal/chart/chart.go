// Package chart holds the natal chart input and maps it onto the spiral.
package chart

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/litescript/ls-spiral/internal/astro"
)

// HouseCount is the number of houses in a chart.
const HouseCount = 12

var (
	ErrNoHouses   = errors.New("chart has no houses")
	ErrHouseCount = errors.New("chart must have exactly 12 houses")
	ErrHouseID    = errors.New("house ids must be 1..12 without gaps")
	ErrCusp       = errors.New("house cusp degree is not finite")
)

// House is one chart house. Cusp degrees need not be monotonic: a house whose
// span crosses 0° Aries has a cusp greater than the next house's cusp.
type House struct {
	ID         int     `json:"id"`
	CuspDegree float64 `json:"cuspDegree"`
	Sign       string  `json:"sign,omitempty"`
}

// Planet is a body at an absolute ecliptic degree. APIHouseID is the house
// claimed by the upstream source, 0 when absent; it is never trusted.
type Planet struct {
	Name           string  `json:"name"`
	AbsoluteDegree float64 `json:"absoluteDegree"`
	APIHouseID     int     `json:"houseId,omitempty"`
}

// AspectInput is an aspect precomputed upstream.
type AspectInput struct {
	PlanetA string  `json:"planetA"`
	PlanetB string  `json:"planetB"`
	Type    string  `json:"type"`
	Angle   float64 `json:"angle"`
	Orb     float64 `json:"orb"`
}

// Chart is the validated input to the mapper.
type Chart struct {
	Houses  []House       `json:"houses"`
	Planets []Planet      `json:"planets"`
	Aspects []AspectInput `json:"aspects,omitempty"`
}

// Issue records a recoverable input problem found while normalizing.
type Issue struct {
	Kind   string
	Name   string
	Detail string
}

// IssueKind values.
const (
	IssueDroppedPlanet     = "dropped_planet"
	IssueHouseSignMismatch = "house_sign_mismatch"
	IssueUnknownAPIHouse   = "unknown_api_house"
)

// rawChart mirrors the wire format with pointers so missing fields can be
// told apart from zero values.
type rawChart struct {
	Houses []struct {
		ID         *int     `json:"id"`
		CuspDegree *float64 `json:"cuspDegree"`
		Sign       string   `json:"sign"`
	} `json:"houses"`
	Planets []struct {
		Name           string   `json:"name"`
		AbsoluteDegree *float64 `json:"absoluteDegree"`
		HouseID        *int     `json:"houseId"`
	} `json:"planets"`
	Aspects []AspectInput `json:"aspects"`
}

// Decode reads a chart from JSON and normalizes it. A decode error is
// returned as-is; structural problems are left for Validate.
func Decode(r io.Reader) (*Chart, []Issue, error) {
	var raw rawChart
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("decode chart: %w", err)
	}

	c := &Chart{}
	var issues []Issue

	for i, h := range raw.Houses {
		house := House{ID: i + 1, CuspDegree: math.NaN(), Sign: strings.TrimSpace(h.Sign)}
		if h.ID != nil {
			house.ID = *h.ID
		}
		if h.CuspDegree != nil {
			house.CuspDegree = *h.CuspDegree
		}
		c.Houses = append(c.Houses, house)
	}

	for i, p := range raw.Planets {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = fmt.Sprintf("body-%d", i+1)
		}
		if p.AbsoluteDegree == nil {
			issues = append(issues, Issue{Kind: IssueDroppedPlanet, Name: name, Detail: "missing absoluteDegree"})
			continue
		}
		planet := Planet{Name: name, AbsoluteDegree: *p.AbsoluteDegree}
		if p.HouseID != nil {
			planet.APIHouseID = *p.HouseID
		}
		c.Planets = append(c.Planets, planet)
	}

	c.Aspects = raw.Aspects

	issues = append(issues, c.Normalize()...)
	return c, issues, nil
}

// ReadFile decodes a chart file.
func ReadFile(path string) (*Chart, []Issue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open chart: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Normalize wraps degrees into [0, 360), sorts houses by id, and drops
// planets whose degree is not finite. It returns the problems it recovered.
func (c *Chart) Normalize() []Issue {
	var issues []Issue

	for i := range c.Houses {
		c.Houses[i].CuspDegree = astro.NormalizeDeg(c.Houses[i].CuspDegree)
	}
	sort.SliceStable(c.Houses, func(i, j int) bool {
		return c.Houses[i].ID < c.Houses[j].ID
	})

	kept := c.Planets[:0]
	for _, p := range c.Planets {
		if math.IsNaN(p.AbsoluteDegree) || math.IsInf(p.AbsoluteDegree, 0) {
			issues = append(issues, Issue{Kind: IssueDroppedPlanet, Name: p.Name, Detail: "absoluteDegree is not finite"})
			continue
		}
		p.AbsoluteDegree = astro.NormalizeDeg(p.AbsoluteDegree)
		if p.APIHouseID < 0 || p.APIHouseID > HouseCount {
			issues = append(issues, Issue{
				Kind:   IssueUnknownAPIHouse,
				Name:   p.Name,
				Detail: fmt.Sprintf("houseId %d ignored", p.APIHouseID),
			})
			p.APIHouseID = 0
		}
		kept = append(kept, p)
	}
	c.Planets = kept

	for _, h := range c.Houses {
		if h.Sign == "" || math.IsNaN(h.CuspDegree) {
			continue
		}
		declared, ok := astro.ParseSign(h.Sign)
		derived := astro.SignOf(h.CuspDegree)
		if !ok || declared != derived {
			issues = append(issues, Issue{
				Kind:   IssueHouseSignMismatch,
				Name:   fmt.Sprintf("house %d", h.ID),
				Detail: fmt.Sprintf("declared %q, cusp %.2f° is in %s", h.Sign, h.CuspDegree, derived),
			})
		}
	}

	return issues
}

// Validate reports whether the houses can drive the mapper.
func (c *Chart) Validate() error {
	if c == nil || len(c.Houses) == 0 {
		return ErrNoHouses
	}
	if len(c.Houses) != HouseCount {
		return fmt.Errorf("%w: got %d", ErrHouseCount, len(c.Houses))
	}

	var errs []error
	for i, h := range c.Houses {
		if h.ID != i+1 {
			errs = append(errs, fmt.Errorf("%w: position %d has id %d", ErrHouseID, i+1, h.ID))
		}
		if math.IsNaN(h.CuspDegree) || math.IsInf(h.CuspDegree, 0) {
			errs = append(errs, fmt.Errorf("%w: house %d", ErrCusp, h.ID))
		}
	}
	return errors.Join(errs...)
}

// Cusps returns the cusp degrees in house order. Call Validate first.
func (c *Chart) Cusps() [HouseCount]float64 {
	var cusps [HouseCount]float64
	for i := 0; i < HouseCount && i < len(c.Houses); i++ {
		cusps[i] = c.Houses[i].CuspDegree
	}
	return cusps
}
