// Package posestream serves the spiral scene and a live camera pose over
// WebSocket. One loop goroutine owns the choreographer; clients only send
// focus requests.
package posestream

import (
	"fmt"

	"github.com/litescript/ls-spiral/internal/camera"
	"github.com/litescript/ls-spiral/internal/scene"
)

// Message types.
const (
	TypeScene = "scene"
	TypePose  = "pose"
	TypeFocus = "focus"
)

// PoseMessage is sent every frame.
type PoseMessage struct {
	Type      string     `json:"type"`
	Position  [3]float64 `json:"position"`
	LookAt    [3]float64 `json:"lookAt"`
	Attitude  [4]float64 `json:"attitude"` // w, x, y, z
	Animating bool       `json:"animating"`
	Mode      string     `json:"mode"`
	Focus     string     `json:"focus"`
	Flat      bool       `json:"flat"`
}

// FocusMessage is sent by clients. Kind is overview, layer, body or
// toggle_flat; Layer is 0-based.
type FocusMessage struct {
	Type  string `json:"type"`
	Kind  string `json:"kind"`
	Layer int    `json:"layer"`
	Body  string `json:"body,omitempty"`
}

// Request converts the message to a camera request.
func (m FocusMessage) Request() (camera.Request, error) {
	if m.Type != TypeFocus {
		return camera.Request{}, fmt.Errorf("unexpected message type %q", m.Type)
	}
	kind, ok := camera.ParseRequestKind(m.Kind)
	if !ok {
		return camera.Request{}, fmt.Errorf("unknown focus kind %q", m.Kind)
	}
	if (kind == camera.RequestLayer || kind == camera.RequestBody) && m.Layer < 0 {
		return camera.Request{}, fmt.Errorf("layer %d out of range", m.Layer)
	}
	return camera.Request{Kind: kind, Layer: m.Layer, Body: m.Body}, nil
}

func poseMessage(c *camera.Choreographer) PoseMessage {
	p := c.Pose()
	q := c.Attitude()
	msg := PoseMessage{
		Type:     TypePose,
		Position: scene.Vec(p.Position),
		LookAt:   scene.Vec(p.LookAt),
		Attitude: [4]float64{q.W, q.V[0], q.V[1], q.V[2]},
		Focus:    c.Focus().String(),
		Flat:     c.Flat(),
	}
	if a, ok := c.Animation(); ok {
		msg.Animating = true
		msg.Mode = a.Mode.String()
	}
	return msg
}
