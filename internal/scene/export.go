// Package scene converts state snapshots into the JSON scene description
// and the plain-text summaries used by headless mode.
package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/litescript/ls-spiral/internal/state"
)

// Export is the JSON-serializable representation of the scene. It doubles
// as the pose stream's "scene" message.
type Export struct {
	Type      string         `json:"type"`
	Source    string         `json:"source,omitempty"`
	LoadedAt  time.Time      `json:"loaded_at,omitempty"`
	Fallback  bool           `json:"fallback"`
	Layers    []LayerExport  `json:"layers"`
	Segments  [][][3]float64 `json:"segments"`
	Planets   []PlanetExport `json:"planets"`
	Aspects   []AspectExport `json:"aspects"`
	Unmatched int            `json:"unmatched_pairs"`
	Ascendant float64        `json:"ascendant"`
	Stars     []StarExport   `json:"stars,omitempty"`
}

// StarExport is a backdrop star.
type StarExport struct {
	Name     string     `json:"name"`
	Mag      float64    `json:"mag"`
	Position [3]float64 `json:"position"`
}

// LayerExport is one house layer.
type LayerExport struct {
	Index          int        `json:"index"`
	House          int        `json:"house"`
	Color          string     `json:"color"`
	CenterT        float64    `json:"center_t"`
	CenterHeight   float64    `json:"center_height"`
	CameraPosition [3]float64 `json:"camera_position"`
	LookAt         [3]float64 `json:"look_at"`
	Planets        []string   `json:"planets,omitempty"`
}

// PlanetExport is a mapped planet.
type PlanetExport struct {
	Name              string     `json:"name"`
	Degree            float64    `json:"degree"`
	Sign              string     `json:"sign"`
	DegreeInSign      float64    `json:"degree_in_sign"`
	House             int        `json:"house"`
	APIHouse          int        `json:"api_house,omitempty"`
	HouseMismatch     bool       `json:"house_mismatch,omitempty"`
	Progress          float64    `json:"progress"`
	DegreesToNextCusp float64    `json:"degrees_to_next_cusp"`
	NearCusp          bool       `json:"near_cusp"`
	T                 float64    `json:"t"`
	Position          [3]float64 `json:"position"`
}

// AspectExport is a classified pair.
type AspectExport struct {
	PlanetA  string  `json:"planet_a"`
	PlanetB  string  `json:"planet_b"`
	Type     string  `json:"type"`
	Angle    float64 `json:"angle"`
	Orb      float64 `json:"orb"`
	Color    string  `json:"color"`
	External bool    `json:"external,omitempty"`
}

// Vec converts a vector for JSON.
func Vec(v mgl64.Vec3) [3]float64 {
	return [3]float64{v[0], v[1], v[2]}
}

// Build converts a snapshot to an exportable scene.
func Build(snap state.Snapshot) *Export {
	export := &Export{
		Type:      "scene",
		Source:    snap.Source,
		LoadedAt:  snap.LoadedAt,
		Unmatched: snap.Unmatched,
	}

	if g := snap.Geometry; g != nil {
		for _, l := range g.Layers {
			le := LayerExport{
				Index:          l.Index,
				House:          l.Index + 1,
				Color:          l.Hex(),
				CenterT:        l.CenterT,
				CenterHeight:   l.CenterHeight,
				CameraPosition: Vec(l.Waypoint.CameraPosition),
				LookAt:         Vec(l.Waypoint.Center),
			}
			if m := snap.Mapping; m != nil && l.Index < len(m.Occupancy) {
				le.Planets = m.Occupancy[l.Index]
			}
			export.Layers = append(export.Layers, le)
		}
		for _, seg := range g.Segments {
			pts := make([][3]float64, len(seg))
			for i, p := range seg {
				pts[i] = Vec(p)
			}
			export.Segments = append(export.Segments, pts)
		}
	}

	if m := snap.Mapping; m != nil {
		export.Fallback = m.Fallback
		export.Ascendant = m.Ascendant
		for _, p := range m.Planets {
			export.Planets = append(export.Planets, PlanetExport{
				Name:              p.Name,
				Degree:            p.AbsoluteDegree,
				Sign:              p.Sign.String(),
				DegreeInSign:      p.DegreeInSign,
				House:             p.House(),
				APIHouse:          p.APIHouseID,
				HouseMismatch:     p.HouseMismatch,
				Progress:          p.Progress,
				DegreesToNextCusp: p.DegreesToNextCusp,
				NearCusp:          p.IsNearCusp,
				T:                 p.T,
				Position:          Vec(p.Position),
			})
		}
	}

	for _, st := range snap.Backdrop {
		export.Stars = append(export.Stars, StarExport{Name: st.Name, Mag: st.Mag, Position: Vec(st.Position)})
	}

	for _, a := range snap.Aspects {
		export.Aspects = append(export.Aspects, AspectExport{
			PlanetA:  a.PlanetA,
			PlanetB:  a.PlanetB,
			Type:     a.Type.String(),
			Angle:    a.AngleDiff,
			Orb:      a.Orb,
			Color:    a.Color.Hex(),
			External: a.External,
		})
	}

	return export
}

// WriteJSON writes the scene as JSON to the given writer.
func (e *Export) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// WriteSummaryTable writes a planet table and the aspect list.
func WriteSummaryTable(w io.Writer, snap state.Snapshot, timestamp time.Time) {
	fmt.Fprintf(w, "Chart @ %s", timestamp.Format(time.RFC3339))
	if snap.Source != "" {
		fmt.Fprintf(w, " (%s)", snap.Source)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("─", 78))

	if snap.Mapping == nil || len(snap.Mapping.Planets) == 0 {
		fmt.Fprintln(w, "No planets")
		return
	}
	if snap.Mapping.Fallback {
		fmt.Fprintln(w, "Placeholder layout (no usable chart)")
	}

	fmt.Fprintf(w, "%-10s %-8s %-12s %-5s %-8s %-8s %-5s\n",
		"Planet", "Degree", "Sign", "House", "Progress", "ToCusp", "Flags")
	fmt.Fprintln(w, strings.Repeat("─", 78))

	for _, p := range snap.Mapping.Planets {
		flags := ""
		if p.IsNearCusp {
			flags += "C"
		}
		if p.HouseMismatch {
			flags += "M"
		}
		fmt.Fprintf(w, "%-10s %7.2f° %-12s %5d %7.0f%% %7.2f° %-5s\n",
			truncateStr(p.Name, 10),
			p.AbsoluteDegree,
			fmt.Sprintf("%s %.0f°", truncateStr(p.Sign.String(), 7), p.DegreeInSign),
			p.House(),
			p.Progress*100,
			p.DegreesToNextCusp,
			flags,
		)
	}

	fmt.Fprintf(w, "\nAspects (%d)", len(snap.Aspects))
	if snap.AspectsExternal {
		fmt.Fprint(w, " from chart")
	}
	fmt.Fprintln(w)
	for _, a := range snap.Aspects {
		fmt.Fprintf(w, "  %s %-10s %-10s %-11s %6.2f° orb %.2f°\n",
			a.Type.Symbol(), truncateStr(a.PlanetA, 10), truncateStr(a.PlanetB, 10), a.Type, a.AngleDiff, a.Orb)
	}

	fmt.Fprintf(w, "\nTotal: %d planets, %d aspects, %d unmatched pairs\n",
		len(snap.Mapping.Planets), len(snap.Aspects), snap.Unmatched)
}

// WriteEvents writes the most recent diagnostic events.
func WriteEvents(w io.Writer, events []state.Event, limit int) {
	fmt.Fprintln(w, "Event Log")
	fmt.Fprintln(w, strings.Repeat("─", 78))
	if len(events) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	for _, e := range events {
		fmt.Fprintf(w, "%s %s %s\n", e.Timestamp.Format("15:04:05"), EventLabel(e.Type), DescribeEvent(e))
	}
}

// EventLabel returns a five-column tag for the event log.
func EventLabel(t state.EventType) string {
	switch t {
	case state.EventChartLoaded:
		return "●LOAD"
	case state.EventFallbackLayout:
		return "○FALL"
	case state.EventHouseMismatch:
		return "≠HOUS"
	case state.EventHouseSignMismatch:
		return "≠SIGN"
	case state.EventDroppedPlanet:
		return "×DROP"
	case state.EventUnknownAPIHouse:
		return "?HOUS"
	case state.EventAspectsUnmatched:
		return "·ASPX"
	case state.EventAspectsSkipped:
		return "×ASPX"
	default:
		return truncateStr(string(t), 5)
	}
}

// DescribeEvent returns the human-readable part of an event line.
func DescribeEvent(e state.Event) string {
	if e.Type == state.EventHouseMismatch {
		return fmt.Sprintf("%s: chart says house %d, cusps say %d", e.Planet, e.APIHouse, e.DerivedHouse)
	}
	if e.Planet != "" {
		return e.Planet + ": " + e.Detail
	}
	return e.Detail
}

func truncateStr(s string, maxLen int) string {
	if len([]rune(s)) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-2]) + ".."
}
