// Package xr defines the platform-layer contract the interaction engine
// runs against: head and controller poses read every frame, and discrete
// controller events delivered between frames.
package xr

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MaxControllers is the number of controller slots a session tracks.
const MaxControllers = 2

// Handedness of a controller, reported asynchronously on connect.
type Handedness uint8

const (
	HandUnknown Handedness = iota
	HandLeft
	HandRight
)

// String returns a human-readable handedness name.
func (h Handedness) String() string {
	switch h {
	case HandLeft:
		return "left"
	case HandRight:
		return "right"
	default:
		return "unknown"
	}
}

// Pose is a world-space position and orientation.
type Pose struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
}

// EventType enumerates the discrete platform events.
type EventType int

const (
	EventNone EventType = iota
	EventSessionStart
	EventConnected
	EventDisconnected
	EventSelectStart
	EventSelectEnd
	EventSqueezeStart
	EventSqueezeEnd
)

// String returns a human-readable event name.
func (t EventType) String() string {
	switch t {
	case EventSessionStart:
		return "sessionstart"
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventSelectStart:
		return "selectstart"
	case EventSelectEnd:
		return "selectend"
	case EventSqueezeStart:
		return "squeezestart"
	case EventSqueezeEnd:
		return "squeezeend"
	default:
		return "none"
	}
}

// Event is one discrete platform event. Controller is the slot index the
// event belongs to; Hand is set on EventConnected only.
type Event struct {
	Type       EventType
	Controller int
	Hand       Handedness
}

// Platform supplies poses and events to the interaction engine. All calls
// happen on the frame loop's goroutine.
type Platform interface {
	// HeadPose returns the viewer head's world pose.
	HeadPose() Pose

	// ControllerPose returns a controller's live world pose. ok is false
	// while the slot is disconnected.
	ControllerPose(slot int) (pose Pose, ok bool)

	// PollEvents drains and returns the events that arrived since the
	// previous call, in arrival order.
	PollEvents() []Event

	// EndSession tears the XR session down, best effort.
	EndSession() error
}
