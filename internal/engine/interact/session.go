// Package interact owns the per-controller interaction state: drag and
// move sessions driven by platform events, and the per-frame update that
// applies controller motion to the model's transform hierarchy.
package interact

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/banyapon/vrmecanism/internal/engine/scene"
	"github.com/banyapon/vrmecanism/internal/xr"
)

// Controller mirrors one tracked controller slot: handedness and the live
// world pose read from the platform each frame.
type Controller struct {
	Slot        int
	Hand        xr.Handedness
	Connected   bool
	Position    mgl32.Vec3
	Orientation mgl32.Quat
}

// DragSession is the live state of one controller rotating one joint.
// Rotation is integrated from the controller's world-position displacement
// since the session started, applied on top of the captured start angles.
type DragSession struct {
	Controller    int
	Target        scene.NodeID
	StartPosition mgl32.Vec3 // controller position at session start
	StartRotX     float32    // target's local rotation X at session start
	StartRotY     float32    // target's local rotation Y at session start
	AllowYaw      bool       // Y-axis rotation, left controller only
}

// MoveSession is the live state of one controller translating the whole
// model root.
type MoveSession struct {
	Controller    int
	StartPosition mgl32.Vec3 // controller position at session start
	StartRootPos  mgl32.Vec3 // model root position at session start
}

// GizmoMode tells the renderer which visual to attach to the active target.
type GizmoMode uint8

const (
	GizmoNone GizmoMode = iota
	GizmoRotate
	GizmoMove
)

// String returns a human-readable gizmo mode name.
func (m GizmoMode) String() string {
	switch m {
	case GizmoRotate:
		return "rotate"
	case GizmoMove:
		return "move"
	default:
		return "none"
	}
}

// Gizmo is the currently-active interaction visual: a target node and the
// mode of the controller driving it.
type Gizmo struct {
	Target scene.NodeID
	Mode   GizmoMode
}

// Hover is per-controller passive feedback: what the controller's ray is
// pointing at this frame, without any session being active.
type Hover struct {
	Valid    bool
	Target   scene.NodeID // resolved joint, InvalidNode when none
	Distance float32      // ray length to the hit surface
}
