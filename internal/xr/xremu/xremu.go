// Package xremu emulates an XR runtime on the desktop. The mouse aims the
// active controller, mouse buttons map to the select and squeeze inputs, and
// keyboard shortcuts connect, disconnect, and switch controllers.
package xremu

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/banyapon/vrmecanism/internal/xr"
)

const (
	aimSensitivity = 0.003
	maxPitch       = 1.45
	minExtension   = 0.1
	maxExtension   = 0.8
	extensionStep  = 0.05
)

// shoulder anchor offsets per slot, relative to the head
var shoulderOffsets = [xr.MaxControllers]mgl32.Vec3{
	{-0.18, -0.25, 0},
	{0.18, -0.25, 0},
}

type emulatedController struct {
	connected bool
	hand      xr.Handedness
	yaw       float32
	pitch     float32
	extension float32
}

// Emulator implements xr.Platform using SDL input.
type Emulator struct {
	log    *zap.Logger
	head   xr.Pose
	ctrl   [xr.MaxControllers]emulatedController
	active int
	queue  []xr.Event
	ended  bool
}

// New creates an emulator with the head at standing height and both
// controllers disconnected.
func New(log *zap.Logger) *Emulator {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Emulator{
		log: log,
		head: xr.Pose{
			Position:    mgl32.Vec3{0, 1.6, 0},
			Orientation: mgl32.QuatIdent(),
		},
	}
	for i := range e.ctrl {
		e.ctrl[i].extension = 0.4
	}
	e.ctrl[0].hand = xr.HandLeft
	e.ctrl[1].hand = xr.HandRight
	return e
}

// HandleEvent processes one SDL event. Returns true if the event was
// consumed by the emulator.
func (e *Emulator) HandleEvent(ev sdl.Event) bool {
	switch ev := ev.(type) {
	case *sdl.MouseMotionEvent:
		e.aim(float32(ev.XRel), float32(ev.YRel))
		return true

	case *sdl.MouseButtonEvent:
		return e.button(ev)

	case *sdl.MouseWheelEvent:
		e.extend(float32(ev.Y) * extensionStep)
		return true

	case *sdl.KeyboardEvent:
		if ev.Type != sdl.KEYDOWN || ev.Repeat != 0 {
			return false
		}
		return e.key(ev.Keysym.Sym)
	}
	return false
}

func (e *Emulator) aim(dx, dy float32) {
	c := &e.ctrl[e.active]
	c.yaw -= dx * aimSensitivity
	c.pitch -= dy * aimSensitivity
	if c.pitch > maxPitch {
		c.pitch = maxPitch
	}
	if c.pitch < -maxPitch {
		c.pitch = -maxPitch
	}
}

func (e *Emulator) extend(delta float32) {
	c := &e.ctrl[e.active]
	c.extension += delta
	if c.extension < minExtension {
		c.extension = minExtension
	}
	if c.extension > maxExtension {
		c.extension = maxExtension
	}
}

func (e *Emulator) button(ev *sdl.MouseButtonEvent) bool {
	if !e.ctrl[e.active].connected {
		return false
	}

	var press, release xr.EventType
	switch ev.Button {
	case sdl.BUTTON_LEFT:
		press, release = xr.EventSelectStart, xr.EventSelectEnd
	case sdl.BUTTON_RIGHT:
		press, release = xr.EventSqueezeStart, xr.EventSqueezeEnd
	default:
		return false
	}

	t := release
	if ev.Type == sdl.MOUSEBUTTONDOWN {
		t = press
	}
	e.push(t, e.active)
	return true
}

func (e *Emulator) key(sym sdl.Keycode) bool {
	switch sym {
	case sdl.K_TAB:
		e.active = (e.active + 1) % xr.MaxControllers
		e.log.Debug("active controller switched", zap.Int("slot", e.active))
		return true

	case sdl.K_1, sdl.K_2:
		slot := 0
		if sym == sdl.K_2 {
			slot = 1
		}
		e.toggle(slot)
		return true

	case sdl.K_p:
		e.push(xr.EventSessionStart, e.active)
		return true
	}
	return false
}

func (e *Emulator) toggle(slot int) {
	c := &e.ctrl[slot]
	c.connected = !c.connected
	if c.connected {
		e.push(xr.EventConnected, slot)
		e.log.Info("controller connected",
			zap.Int("slot", slot),
			zap.Stringer("hand", c.hand),
		)
	} else {
		e.push(xr.EventDisconnected, slot)
		e.log.Info("controller disconnected", zap.Int("slot", slot))
	}
}

func (e *Emulator) push(t xr.EventType, slot int) {
	e.queue = append(e.queue, xr.Event{
		Type:       t,
		Controller: slot,
		Hand:       e.ctrl[slot].hand,
	})
}

// ActiveSlot returns the controller slot the mouse currently drives.
func (e *Emulator) ActiveSlot() int {
	return e.active
}

// HeadPose returns the emulated head pose.
func (e *Emulator) HeadPose() xr.Pose {
	return e.head
}

// ControllerPose returns the pose for the given slot. The second return
// is false while the controller is disconnected.
func (e *Emulator) ControllerPose(slot int) (xr.Pose, bool) {
	if slot < 0 || slot >= xr.MaxControllers {
		return xr.Pose{}, false
	}
	c := &e.ctrl[slot]
	if !c.connected {
		return xr.Pose{}, false
	}

	orientation := mgl32.QuatRotate(c.yaw, mgl32.Vec3{0, 1, 0}).
		Mul(mgl32.QuatRotate(c.pitch, mgl32.Vec3{1, 0, 0})).
		Normalize()

	// Hand position: shoulder anchor pushed along the aim direction.
	forward := orientation.Rotate(mgl32.Vec3{0, 0, -1})
	anchor := e.head.Position.Add(shoulderOffsets[slot])
	position := anchor.Add(forward.Mul(c.extension))

	return xr.Pose{Position: position, Orientation: orientation}, true
}

// PollEvents returns and clears all queued events.
func (e *Emulator) PollEvents() []xr.Event {
	if len(e.queue) == 0 {
		return nil
	}
	out := e.queue
	e.queue = nil
	return out
}

// EndSession marks the emulated session finished. Further input still
// works so a new session can begin.
func (e *Emulator) EndSession() error {
	e.ended = true
	e.log.Info("session ended")
	return nil
}

// Ended reports whether EndSession has been called.
func (e *Emulator) Ended() bool {
	return e.ended
}

// SetHeadYaw rotates the emulated head around the vertical axis.
func (e *Emulator) SetHeadYaw(yaw float32) {
	e.head.Orientation = mgl32.QuatRotate(yaw, mgl32.Vec3{0, 1, 0})
}
