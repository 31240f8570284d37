package interact

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/banyapon/vrmecanism/internal/engine/picking"
	"github.com/banyapon/vrmecanism/internal/engine/rig"
	"github.com/banyapon/vrmecanism/internal/engine/scene"
	"github.com/banyapon/vrmecanism/internal/xr"
)

// Tuning defaults, matching the feel of the reference hardware setup.
const (
	DefaultBoostFactor   = 6.5  // meters of hand travel to radians of joint rotation
	DefaultPlaceDistance = 1.0  // meters in front of the head
	DefaultPlaceDrop     = 0.35 // meters below head height
)

// DefaultRotationLimit clamps joint rotation short of a full half turn so
// a joint can never wrap past its start.
var DefaultRotationLimit = float32(0.95 * gomath.Pi)

// Config tunes the interaction engine.
type Config struct {
	BoostFactor   float32
	PlaceDistance float32
	PlaceDrop     float32
	RotationLimit float32
}

// DefaultConfig returns the default interaction tuning.
func DefaultConfig() Config {
	return Config{
		BoostFactor:   DefaultBoostFactor,
		PlaceDistance: DefaultPlaceDistance,
		PlaceDrop:     DefaultPlaceDrop,
		RotationLimit: DefaultRotationLimit,
	}
}

// Engine is the controller interaction and joint-resolution engine. It is
// single-threaded and frame-driven: Update runs once per rendered frame,
// draining platform events first so event handling and frame integration
// never interleave.
type Engine struct {
	cfg      Config
	platform xr.Platform
	log      *zap.Logger

	// Model state, rebuilt wholesale by SetModel.
	graph    *scene.Graph
	surfaces []scene.NodeID
	targets  rig.TargetSet

	controllers [xr.MaxControllers]Controller
	drags       [xr.MaxControllers]*DragSession
	moves       [xr.MaxControllers]*MoveSession
	hovers      [xr.MaxControllers]Hover

	placePending bool
}

// New creates an engine bound to a platform. A nil logger disables logging.
func New(cfg Config, platform xr.Platform, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{cfg: cfg, platform: platform, log: log}
	for i := range e.controllers {
		e.controllers[i].Slot = i
		e.controllers[i].Orientation = mgl32.QuatIdent()
	}
	return e
}

// SetModel installs a freshly loaded model and rebuilds all derived
// interaction state. Any active sessions on the previous model are
// discarded.
func (e *Engine) SetModel(g *scene.Graph) {
	e.clearSessions()
	e.graph = g
	e.surfaces = nil
	e.targets = nil
	if g == nil {
		return
	}
	g.UpdateWorld()
	e.surfaces = g.MeshNodes()
	e.targets = rig.ComputeTargets(g)
	e.log.Info("model installed",
		zap.Int("nodes", g.Len()),
		zap.Int("surfaces", len(e.surfaces)),
		zap.Int("targets", len(e.targets)))
}

// ClearModel drops the model and all interaction state.
func (e *Engine) ClearModel() {
	e.SetModel(nil)
}

// RequestPlacement asks for the model to be placed in front of the viewer
// on the next Update. If no model is loaded yet the request stays pending
// until one is.
func (e *Engine) RequestPlacement() {
	e.placePending = true
}

// Graph returns the installed model graph, or nil.
func (e *Engine) Graph() *scene.Graph {
	return e.graph
}

// Controller returns a snapshot of a controller slot.
func (e *Engine) Controller(slot int) Controller {
	return e.controllers[slot]
}

// Hover returns the passive feedback computed for a controller this frame.
func (e *Engine) Hover(slot int) Hover {
	return e.hovers[slot]
}

// ActiveGizmo reports the target and mode of the controller currently
// driving an interaction, preferring a drag over a move.
func (e *Engine) ActiveGizmo() (Gizmo, bool) {
	for _, d := range e.drags {
		if d != nil {
			return Gizmo{Target: d.Target, Mode: GizmoRotate}, true
		}
	}
	for _, m := range e.moves {
		if m != nil && e.graph != nil {
			return Gizmo{Target: e.graph.RootID(), Mode: GizmoMove}, true
		}
	}
	return Gizmo{}, false
}

// Update runs one frame tick in fixed order: refresh poses, drain events,
// apply pending placement, recompute hover feedback, integrate move
// sessions, integrate drag sessions, then refresh world transforms. The
// ordering is a correctness requirement.
func (e *Engine) Update() {
	for i := range e.controllers {
		if pose, ok := e.platform.ControllerPose(i); ok {
			e.controllers[i].Position = pose.Position
			e.controllers[i].Orientation = pose.Orientation
		}
	}

	for _, ev := range e.platform.PollEvents() {
		e.handleEvent(ev)
	}

	if e.placePending && e.graph != nil {
		e.placeInFront()
		e.placePending = false
	}

	e.updateHover()

	for _, m := range e.moves {
		if m == nil || e.graph == nil {
			continue
		}
		delta := e.controllers[m.Controller].Position.Sub(m.StartPosition)
		e.graph.Root().LocalPosition = m.StartRootPos.Add(delta)
	}

	for _, d := range e.drags {
		if d == nil || e.graph == nil {
			continue
		}
		delta := e.controllers[d.Controller].Position.Sub(d.StartPosition)
		node := e.graph.Node(d.Target)
		node.LocalRotation[0] = e.clampRotation(d.StartRotX + delta.Y()*e.cfg.BoostFactor)
		if d.AllowYaw {
			node.LocalRotation[1] = e.clampRotation(d.StartRotY + delta.X()*e.cfg.BoostFactor)
		}
	}

	if e.graph != nil {
		e.graph.UpdateWorld()
	}
}

func (e *Engine) handleEvent(ev xr.Event) {
	if ev.Type == xr.EventSessionStart {
		e.placePending = true
		return
	}
	if ev.Controller < 0 || ev.Controller >= xr.MaxControllers {
		return
	}
	c := &e.controllers[ev.Controller]

	switch ev.Type {
	case xr.EventConnected:
		c.Connected = true
		c.Hand = ev.Hand
		e.log.Info("controller connected",
			zap.Int("slot", c.Slot), zap.Stringer("hand", c.Hand))
	case xr.EventDisconnected:
		c.Connected = false
		c.Hand = xr.HandUnknown
		// A gesture cannot outlive its controller: cancel rather than
		// freezing the joint at its last integrated delta.
		e.drags[c.Slot] = nil
		e.moves[c.Slot] = nil
		e.hovers[c.Slot] = Hover{}
		e.log.Info("controller disconnected", zap.Int("slot", c.Slot))
	case xr.EventSelectStart:
		e.beginDrag(c)
	case xr.EventSelectEnd:
		e.drags[c.Slot] = nil
	case xr.EventSqueezeStart:
		e.beginMove(c)
	case xr.EventSqueezeEnd:
		e.moves[c.Slot] = nil
	}
}

// beginDrag starts a drag session if every guard passes: a model with
// surfaces and rotatable targets is loaded, the slot is idle, the ray
// hits, and the hit resolves to a joint. Failing any guard is a normal,
// silent outcome.
func (e *Engine) beginDrag(c *Controller) {
	if e.graph == nil || len(e.surfaces) == 0 || len(e.targets) == 0 {
		return
	}
	if !c.Connected || e.drags[c.Slot] != nil {
		return
	}

	ray := picking.FromPose(c.Position, c.Orientation)
	hit, ok := picking.PickNearest(e.graph, ray, e.surfaces)
	if !ok {
		return
	}
	target, ok := rig.Resolve(e.graph, hit, e.graph.RootID(), e.targets)
	if !ok {
		return
	}

	node := e.graph.Node(target)
	e.drags[c.Slot] = &DragSession{
		Controller:    c.Slot,
		Target:        target,
		StartPosition: c.Position,
		StartRotX:     node.LocalRotation.X(),
		StartRotY:     node.LocalRotation.Y(),
		AllowYaw:      c.Hand == xr.HandLeft,
	}
	e.log.Debug("drag started",
		zap.Int("slot", c.Slot),
		zap.String("target", node.Name),
		zap.Bool("yaw", c.Hand == xr.HandLeft))
}

// beginMove starts a move session; squeeze always succeeds once a model
// is loaded and the slot is idle.
func (e *Engine) beginMove(c *Controller) {
	if e.graph == nil || !c.Connected || e.moves[c.Slot] != nil {
		return
	}
	e.moves[c.Slot] = &MoveSession{
		Controller:    c.Slot,
		StartPosition: c.Position,
		StartRootPos:  e.graph.Root().LocalPosition,
	}
	e.log.Debug("move started", zap.Int("slot", c.Slot))
}

// placeInFront repositions the model root relative to the viewer head:
// one place-distance along the head's facing, dropped below eye height,
// with the root yawed to match the head's yaw only.
func (e *Engine) placeInFront() {
	head := e.platform.HeadPose()
	facing := head.Orientation.Rotate(mgl32.Vec3{0, 0, 1})

	root := e.graph.Root()
	root.LocalPosition = head.Position.
		Add(facing.Mul(e.cfg.PlaceDistance)).
		Add(mgl32.Vec3{0, -e.cfg.PlaceDrop, 0})

	yaw := float32(gomath.Atan2(float64(facing.X()), float64(facing.Z())))
	root.LocalRotation = mgl32.Vec3{0, yaw, 0}

	e.log.Info("model placed in front of viewer",
		zap.Float32("x", root.LocalPosition.X()),
		zap.Float32("y", root.LocalPosition.Y()),
		zap.Float32("z", root.LocalPosition.Z()))
}

// updateHover recomputes passive ray feedback for every connected
// controller. Pure query; never mutates the model.
func (e *Engine) updateHover() {
	for i := range e.controllers {
		c := &e.controllers[i]
		e.hovers[i] = Hover{}
		if !c.Connected || e.graph == nil || len(e.surfaces) == 0 {
			continue
		}
		ray := picking.FromPose(c.Position, c.Orientation)
		hit, ok := picking.PickNearest(e.graph, ray, e.surfaces)
		if !ok {
			continue
		}
		target, resolved := rig.Resolve(e.graph, hit, e.graph.RootID(), e.targets)
		if !resolved {
			target = scene.InvalidNode
		}
		e.hovers[i] = Hover{Valid: true, Target: target, Distance: hit.Distance}
	}
}

func (e *Engine) clampRotation(angle float32) float32 {
	limit := e.cfg.RotationLimit
	if angle > limit {
		return limit
	}
	if angle < -limit {
		return -limit
	}
	return angle
}

func (e *Engine) clearSessions() {
	for i := range e.drags {
		e.drags[i] = nil
		e.moves[i] = nil
		e.hovers[i] = Hover{}
	}
}
