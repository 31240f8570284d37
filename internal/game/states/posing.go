package states

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/banyapon/vrmecanism/internal/engine/interact"
	"github.com/banyapon/vrmecanism/internal/engine/render"
	"github.com/banyapon/vrmecanism/internal/engine/scene"
	"github.com/banyapon/vrmecanism/internal/xr"
)

// Keyboard camera speeds, per second.
const (
	orbitSpeed = 250.0
	panSpeed   = 120.0
	zoomSpeed  = 4.0
)

// PosingState runs the interaction engine against the loaded model and
// draws the posing viewport. Escape returns to model selection.
type PosingState struct {
	ctx *Context
}

// NewPosingState creates the posing state.
func NewPosingState(ctx *Context) *PosingState {
	return &PosingState{ctx: ctx}
}

// Enter frames the model in the viewport.
func (s *PosingState) Enter() error {
	if s.ctx.Window != nil {
		s.ctx.Window.SetTitle("vrmecanism - posing")
	}
	if g := s.ctx.Engine.Graph(); g != nil {
		if center, radius, ok := g.BoundingSphere(); ok {
			s.ctx.Camera.FitSphere(center, radius)
		}
	}
	s.ctx.Log.Info("posing entered")
	return nil
}

// Exit implements State.
func (s *PosingState) Exit() error {
	return nil
}

// Update ticks the interaction engine and the keyboard camera.
func (s *PosingState) Update(dt float64) error {
	s.ctx.Engine.Update()
	s.updateCamera(float32(dt))
	return nil
}

func (s *PosingState) updateCamera(dt float32) {
	keys := sdl.GetKeyboardState()
	cam := s.ctx.Camera

	if keys[sdl.SCANCODE_LEFT] != 0 {
		cam.HandleDrag(orbitSpeed*dt, 0)
	}
	if keys[sdl.SCANCODE_RIGHT] != 0 {
		cam.HandleDrag(-orbitSpeed*dt, 0)
	}
	if keys[sdl.SCANCODE_UP] != 0 {
		cam.HandleDrag(0, orbitSpeed*dt)
	}
	if keys[sdl.SCANCODE_DOWN] != 0 {
		cam.HandleDrag(0, -orbitSpeed*dt)
	}

	forward, right := float32(0), float32(0)
	if keys[sdl.SCANCODE_W] != 0 {
		forward += panSpeed * dt
	}
	if keys[sdl.SCANCODE_S] != 0 {
		forward -= panSpeed * dt
	}
	if keys[sdl.SCANCODE_D] != 0 {
		right += panSpeed * dt
	}
	if keys[sdl.SCANCODE_A] != 0 {
		right -= panSpeed * dt
	}
	if forward != 0 || right != 0 {
		cam.HandleMovement(forward, right, 0)
	}

	if keys[sdl.SCANCODE_Q] != 0 {
		cam.HandleZoom(zoomSpeed * dt)
	}
	if keys[sdl.SCANCODE_E] != 0 {
		cam.HandleZoom(-zoomSpeed * dt)
	}
}

// Render draws the model with interaction tints and the controller rays.
func (s *PosingState) Render() error {
	g := s.ctx.Engine.Graph()
	if g == nil {
		return nil
	}

	width, height := s.ctx.Window.GetDrawableSize()
	view := s.ctx.Camera.ViewMatrix()
	proj := s.ctx.Camera.ProjectionMatrix(width, height)

	s.ctx.Renderer.DrawGraph(g, view, proj, s.tints(g))

	for slot := 0; slot < xr.MaxControllers; slot++ {
		c := s.ctx.Engine.Controller(slot)
		if !c.Connected {
			continue
		}
		length := float32(2.0)
		color := render.TintNone
		if hover := s.ctx.Engine.Hover(slot); hover.Valid {
			length = hover.Distance
			color = render.TintHover
		}
		dir := c.Orientation.Rotate(mgl32.Vec3{0, 0, -1})
		s.ctx.Renderer.DrawRay(c.Position, dir, length, view, proj, color)
	}
	return nil
}

// tints maps mesh nodes to highlight colors from the current interaction
// state. An active gizmo wins over hover feedback.
func (s *PosingState) tints(g *scene.Graph) map[scene.NodeID]mgl32.Vec4 {
	tints := make(map[scene.NodeID]mgl32.Vec4)

	for slot := 0; slot < xr.MaxControllers; slot++ {
		if hover := s.ctx.Engine.Hover(slot); hover.Valid && hover.Target != scene.InvalidNode {
			for _, id := range meshDescendants(g, hover.Target) {
				tints[id] = render.TintHover
			}
		}
	}

	if gizmo, ok := s.ctx.Engine.ActiveGizmo(); ok {
		color := render.TintRotate
		if gizmo.Mode == interact.GizmoMove {
			color = render.TintMove
		}
		for _, id := range meshDescendants(g, gizmo.Target) {
			tints[id] = color
		}
	}

	return tints
}

// meshDescendants collects the mesh nodes in the subtree rooted at id,
// including id itself.
func meshDescendants(g *scene.Graph, id scene.NodeID) []scene.NodeID {
	var out []scene.NodeID
	var walk func(scene.NodeID)
	walk = func(nid scene.NodeID) {
		node := g.Node(nid)
		if node == nil {
			return
		}
		if node.Kind == scene.KindMesh {
			out = append(out, nid)
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(id)
	return out
}

// HandleInput returns to model selection on escape.
func (s *PosingState) HandleInput(event sdl.Event) error {
	key, ok := event.(*sdl.KeyboardEvent)
	if !ok || key.Type != sdl.KEYDOWN {
		return nil
	}

	if key.Keysym.Sym == sdl.K_ESCAPE {
		if err := s.ctx.Platform.EndSession(); err != nil {
			s.ctx.Log.Warn("end session failed", zap.Error(err))
		}
		s.ctx.Engine.ClearModel()
		s.ctx.Renderer.ReleaseGraph()
		s.ctx.Manager.Change(NewModelSelectState(s.ctx))
	}
	return nil
}
