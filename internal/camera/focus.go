package camera

import "fmt"

// Focus is what the camera is framing. Layer is 0-based; a negative Layer
// is the overview. Body names a planet inside Layer.
type Focus struct {
	Layer int
	Body  string
}

// Overview frames the whole spiral.
var Overview = Focus{Layer: -1}

// LayerFocus frames one layer.
func LayerFocus(layer int) Focus {
	return Focus{Layer: layer}
}

// BodyFocus frames one planet in a layer.
func BodyFocus(layer int, body string) Focus {
	return Focus{Layer: layer, Body: body}
}

// IsOverview reports whether the focus is the overview.
func (f Focus) IsOverview() bool { return f.Layer < 0 }

func (f Focus) String() string {
	switch {
	case f.IsOverview():
		return "overview"
	case f.Body != "":
		return fmt.Sprintf("house %d/%s", f.Layer+1, f.Body)
	default:
		return fmt.Sprintf("house %d", f.Layer+1)
	}
}

// RequestKind selects what a Request does.
type RequestKind int

const (
	RequestOverview RequestKind = iota
	RequestLayer
	RequestBody
	RequestToggleFlat
)

func (k RequestKind) String() string {
	switch k {
	case RequestOverview:
		return "overview"
	case RequestLayer:
		return "layer"
	case RequestBody:
		return "body"
	case RequestToggleFlat:
		return "toggle_flat"
	default:
		return "unknown"
	}
}

// ParseRequestKind is the inverse of RequestKind.String.
func ParseRequestKind(s string) (RequestKind, bool) {
	for k := RequestOverview; k <= RequestToggleFlat; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Request is a focus change coming from the UI or a remote client.
type Request struct {
	Kind  RequestKind
	Layer int
	Body  string
}

// Mode is the kind of camera move.
type Mode int

const (
	Direct Mode = iota
	Zipline
)

func (m Mode) String() string {
	if m == Zipline {
		return "zipline"
	}
	return "direct"
}

// State is the choreographer state.
type State int

const (
	Idle State = iota
	Animating
)

func (s State) String() string {
	if s == Animating {
		return "animating"
	}
	return "idle"
}
