package interact

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/banyapon/vrmecanism/internal/engine/scene"
	"github.com/banyapon/vrmecanism/internal/xr"
)

const eps = 1e-5

// fakePlatform is a scriptable xr.Platform for driving the engine in tests.
type fakePlatform struct {
	head      xr.Pose
	poses     [xr.MaxControllers]xr.Pose
	tracked   [xr.MaxControllers]bool
	queue     []xr.Event
	endCalls  int
	endResult error
}

func newFakePlatform() *fakePlatform {
	f := &fakePlatform{
		head: xr.Pose{Position: mgl32.Vec3{0, 1.6, 0}, Orientation: mgl32.QuatIdent()},
	}
	for i := range f.poses {
		f.poses[i].Orientation = mgl32.QuatIdent()
	}
	return f
}

func (f *fakePlatform) HeadPose() xr.Pose { return f.head }

func (f *fakePlatform) ControllerPose(slot int) (xr.Pose, bool) {
	return f.poses[slot], f.tracked[slot]
}

func (f *fakePlatform) PollEvents() []xr.Event {
	evs := f.queue
	f.queue = nil
	return evs
}

func (f *fakePlatform) EndSession() error {
	f.endCalls++
	return f.endResult
}

func (f *fakePlatform) push(ev xr.Event) {
	f.queue = append(f.queue, ev)
}

func (f *fakePlatform) connect(slot int, hand xr.Handedness, at mgl32.Vec3) {
	f.tracked[slot] = true
	f.poses[slot] = xr.Pose{Position: at, Orientation: mgl32.QuatIdent()}
	f.push(xr.Event{Type: xr.EventConnected, Controller: slot, Hand: hand})
}

// posableFixture builds root -> pelvis(bone) -> arm(bone) -> plate(mesh),
// with the plate a unit quad at the world origin facing +Z. The only
// rotatable target is the arm.
func posableFixture() *scene.Graph {
	g := scene.NewGraph()
	root := g.AddNode("root", scene.KindPlain, scene.InvalidNode)
	pelvis := g.AddNode("pelvis", scene.KindBone, root.ID)
	arm := g.AddNode("arm", scene.KindBone, pelvis.ID)
	plate := g.AddNode("plate", scene.KindMesh, arm.ID)
	plate.Mesh = &scene.Mesh{
		Positions: []mgl32.Vec3{
			{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0.5, 0.5, 0}, {-0.5, 0.5, 0},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
	return g
}

func newTestEngine(t *testing.T) (*Engine, *fakePlatform, *scene.Graph) {
	t.Helper()
	f := newFakePlatform()
	e := New(DefaultConfig(), f, nil)
	g := posableFixture()
	e.SetModel(g)
	return e, f, g
}

func armOf(g *scene.Graph) *scene.Node { return g.NodeByName("arm") }

func TestSelectStart_DragAndHandedness(t *testing.T) {
	e, f, g := newTestEngine(t)
	f.connect(0, xr.HandLeft, mgl32.Vec3{0, 0, 2})
	f.push(xr.Event{Type: xr.EventSelectStart, Controller: 0})
	e.Update()

	gizmo, ok := e.ActiveGizmo()
	if !ok || gizmo.Mode != GizmoRotate || gizmo.Target != armOf(g).ID {
		t.Fatalf("expected rotate gizmo on arm, got %+v ok=%v", gizmo, ok)
	}

	// Vertical hand travel drives rotation X, horizontal drives Y (left
	// hand only), both boosted.
	f.poses[0].Position = mgl32.Vec3{0.1, 0.2, 2}
	e.Update()

	arm := armOf(g)
	wantX := float32(0.2 * DefaultBoostFactor)
	wantY := float32(0.1 * DefaultBoostFactor)
	if math.Abs(float64(arm.LocalRotation.X()-wantX)) > eps {
		t.Errorf("rotation X: got %v, want %v", arm.LocalRotation.X(), wantX)
	}
	if math.Abs(float64(arm.LocalRotation.Y()-wantY)) > eps {
		t.Errorf("rotation Y: got %v, want %v", arm.LocalRotation.Y(), wantY)
	}
}

func TestSelectStart_RightHandHasNoYaw(t *testing.T) {
	e, f, g := newTestEngine(t)
	f.connect(1, xr.HandRight, mgl32.Vec3{0, 0, 2})
	f.push(xr.Event{Type: xr.EventSelectStart, Controller: 1})
	e.Update()

	f.poses[1].Position = mgl32.Vec3{0.3, 0.1, 2}
	e.Update()

	arm := armOf(g)
	if arm.LocalRotation.Y() != 0 {
		t.Errorf("right hand must not yaw the joint, got %v", arm.LocalRotation.Y())
	}
	if arm.LocalRotation.X() == 0 {
		t.Error("right hand should still pitch the joint")
	}
}

func TestSelectStart_SecondStartIsNoOp(t *testing.T) {
	e, f, g := newTestEngine(t)
	f.connect(0, xr.HandRight, mgl32.Vec3{0, 0, 2})
	f.push(xr.Event{Type: xr.EventSelectStart, Controller: 0})
	e.Update()

	// Move the hand, then fire another select-start without ending the
	// first: the original snapshot must keep driving the rotation.
	f.poses[0].Position = mgl32.Vec3{0, 0.1, 2}
	f.push(xr.Event{Type: xr.EventSelectStart, Controller: 0})
	e.Update()

	arm := armOf(g)
	wantX := float32(0.1 * DefaultBoostFactor)
	if math.Abs(float64(arm.LocalRotation.X()-wantX)) > eps {
		t.Errorf("rotation X: got %v, want %v (snapshot must not reset)", arm.LocalRotation.X(), wantX)
	}
}

func TestSelectStart_MissCreatesNothing(t *testing.T) {
	e, f, _ := newTestEngine(t)
	f.connect(0, xr.HandLeft, mgl32.Vec3{50, 0, 2}) // aimed past the model
	f.push(xr.Event{Type: xr.EventSelectStart, Controller: 0})
	e.Update()

	if _, ok := e.ActiveGizmo(); ok {
		t.Error("a missed ray must not start a drag")
	}
}

func TestSelectEnd_EndsDrag(t *testing.T) {
	e, f, g := newTestEngine(t)
	f.connect(0, xr.HandLeft, mgl32.Vec3{0, 0, 2})
	f.push(xr.Event{Type: xr.EventSelectStart, Controller: 0})
	e.Update()
	f.push(xr.Event{Type: xr.EventSelectEnd, Controller: 0})
	e.Update()

	if _, ok := e.ActiveGizmo(); ok {
		t.Fatal("drag should have ended")
	}

	// Hand motion after the end leaves the joint alone.
	before := armOf(g).LocalRotation
	f.poses[0].Position = mgl32.Vec3{1, 1, 2}
	e.Update()
	if armOf(g).LocalRotation != before {
		t.Error("joint moved after select-end")
	}
}

func TestRotation_ClampSaturates(t *testing.T) {
	e, f, g := newTestEngine(t)
	f.connect(0, xr.HandLeft, mgl32.Vec3{0, 0, 2})
	f.push(xr.Event{Type: xr.EventSelectStart, Controller: 0})
	e.Update()

	limit := DefaultRotationLimit

	f.poses[0].Position = mgl32.Vec3{0, 10, 2}
	e.Update()
	if got := armOf(g).LocalRotation.X(); got != limit {
		t.Errorf("rotation X should saturate at %v, got %v", limit, got)
	}

	f.poses[0].Position = mgl32.Vec3{0, -10, 2}
	e.Update()
	if got := armOf(g).LocalRotation.X(); got != -limit {
		t.Errorf("rotation X should saturate at %v, got %v", -limit, got)
	}
}

func TestSqueeze_MoveIntegration(t *testing.T) {
	e, f, g := newTestEngine(t)
	f.connect(0, xr.HandRight, mgl32.Vec3{0, 1, 1})
	f.push(xr.Event{Type: xr.EventSqueezeStart, Controller: 0})
	e.Update()

	gizmo, ok := e.ActiveGizmo()
	if !ok || gizmo.Mode != GizmoMove || gizmo.Target != g.RootID() {
		t.Fatalf("expected move gizmo on root, got %+v ok=%v", gizmo, ok)
	}

	start := g.Root().LocalPosition
	startRot := g.Root().LocalRotation
	delta := mgl32.Vec3{0.2, 0.3, -0.1}
	f.poses[0].Position = f.poses[0].Position.Add(delta)
	e.Update()

	if !g.Root().LocalPosition.ApproxEqualThreshold(start.Add(delta), eps) {
		t.Errorf("root position: got %v, want %v", g.Root().LocalPosition, start.Add(delta))
	}
	if g.Root().LocalRotation != startRot {
		t.Error("move track must not touch root orientation")
	}

	// After squeeze-end the root stops following the hand.
	f.push(xr.Event{Type: xr.EventSqueezeEnd, Controller: 0})
	e.Update()
	held := g.Root().LocalPosition
	f.poses[0].Position = f.poses[0].Position.Add(mgl32.Vec3{5, 0, 0})
	e.Update()
	if !g.Root().LocalPosition.ApproxEqualThreshold(held, eps) {
		t.Error("root moved after squeeze-end")
	}
}

func TestSqueeze_SecondStartIsNoOp(t *testing.T) {
	e, f, g := newTestEngine(t)
	f.connect(0, xr.HandRight, mgl32.Vec3{0, 0, 3})
	f.push(xr.Event{Type: xr.EventSqueezeStart, Controller: 0})
	e.Update()

	f.poses[0].Position = mgl32.Vec3{1, 0, 3}
	f.push(xr.Event{Type: xr.EventSqueezeStart, Controller: 0})
	e.Update()

	// Integration still references the first snapshot: root follows the
	// full displacement since the original squeeze.
	if got := g.Root().LocalPosition.X(); math.Abs(float64(got-1)) > eps {
		t.Errorf("root X: got %v, want 1 (snapshot must not reset)", got)
	}
}

func TestPlacement_InFrontOfViewer(t *testing.T) {
	e, f, g := newTestEngine(t)
	f.push(xr.Event{Type: xr.EventSessionStart})
	e.Update()

	want := mgl32.Vec3{0, 1.25, 1.0}
	if !g.Root().LocalPosition.ApproxEqualThreshold(want, eps) {
		t.Errorf("root position: got %v, want %v", g.Root().LocalPosition, want)
	}
	rot := g.Root().LocalRotation
	if rot.X() != 0 || rot.Z() != 0 {
		t.Errorf("placement must zero pitch/roll, got %v", rot)
	}

	// The flag is consumed: a later frame with a moved head changes nothing.
	f.head.Position = mgl32.Vec3{3, 1.6, 3}
	e.Update()
	if !g.Root().LocalPosition.ApproxEqualThreshold(want, eps) {
		t.Error("placement re-fired without a new session start")
	}
}

func TestPlacement_YawFollowsHead(t *testing.T) {
	e, f, g := newTestEngine(t)
	yaw := float32(math.Pi / 2)
	f.head.Orientation = mgl32.QuatRotate(yaw, mgl32.Vec3{0, 1, 0})
	f.push(xr.Event{Type: xr.EventSessionStart})
	e.Update()

	if got := g.Root().LocalRotation.Y(); math.Abs(float64(got-yaw)) > eps {
		t.Errorf("root yaw: got %v, want %v", got, yaw)
	}
}

func TestPlacement_WaitsForModel(t *testing.T) {
	f := newFakePlatform()
	e := New(DefaultConfig(), f, nil)
	f.push(xr.Event{Type: xr.EventSessionStart})
	e.Update() // no model yet: the request stays pending

	g := posableFixture()
	e.SetModel(g)
	e.Update()

	want := mgl32.Vec3{0, 1.25, 1.0}
	if !g.Root().LocalPosition.ApproxEqualThreshold(want, eps) {
		t.Errorf("pending placement should apply once the model loads, got %v", g.Root().LocalPosition)
	}
}

func TestUpdate_IdleIsIdempotent(t *testing.T) {
	e, f, g := newTestEngine(t)
	f.connect(0, xr.HandLeft, mgl32.Vec3{0, 0, 2})
	e.Update()

	type snapshot struct {
		pos, rot, scale mgl32.Vec3
	}
	var before []snapshot
	for i := 0; i < g.Len(); i++ {
		n := g.Node(scene.NodeID(i))
		before = append(before, snapshot{n.LocalPosition, n.LocalRotation, n.LocalScale})
	}

	e.Update()
	e.Update()

	for i := 0; i < g.Len(); i++ {
		n := g.Node(scene.NodeID(i))
		s := before[i]
		if n.LocalPosition != s.pos || n.LocalRotation != s.rot || n.LocalScale != s.scale {
			t.Errorf("node %s transform changed with no active sessions", n.Name)
		}
	}
}

func TestHover_PassiveFeedback(t *testing.T) {
	e, f, g := newTestEngine(t)
	f.connect(0, xr.HandLeft, mgl32.Vec3{0, 0, 2})
	e.Update()

	hover := e.Hover(0)
	if !hover.Valid {
		t.Fatal("expected hover feedback for a connected controller on target")
	}
	if hover.Target != armOf(g).ID {
		t.Errorf("hover target: got %d, want %d", hover.Target, armOf(g).ID)
	}
	if math.Abs(float64(hover.Distance-2)) > eps {
		t.Errorf("hover distance: got %v, want 2", hover.Distance)
	}

	f.poses[0].Position = mgl32.Vec3{50, 0, 2}
	e.Update()
	if e.Hover(0).Valid {
		t.Error("expected no hover once the ray misses")
	}
}

func TestDisconnect_CancelsSessions(t *testing.T) {
	e, f, g := newTestEngine(t)
	f.connect(0, xr.HandLeft, mgl32.Vec3{0, 0, 2})
	f.push(xr.Event{Type: xr.EventSelectStart, Controller: 0})
	f.push(xr.Event{Type: xr.EventSqueezeStart, Controller: 0})
	e.Update()

	f.tracked[0] = false
	f.push(xr.Event{Type: xr.EventDisconnected, Controller: 0})
	e.Update()

	if _, ok := e.ActiveGizmo(); ok {
		t.Fatal("disconnect must cancel the controller's sessions")
	}

	before := armOf(g).LocalRotation
	rootBefore := g.Root().LocalPosition
	f.poses[0].Position = mgl32.Vec3{2, 2, 2}
	e.Update()
	if armOf(g).LocalRotation != before || g.Root().LocalPosition != rootBefore {
		t.Error("model kept following a disconnected controller")
	}
}

func TestSetModel_ClearsInteractionState(t *testing.T) {
	e, f, _ := newTestEngine(t)
	f.connect(0, xr.HandLeft, mgl32.Vec3{0, 0, 2})
	f.push(xr.Event{Type: xr.EventSelectStart, Controller: 0})
	e.Update()
	if _, ok := e.ActiveGizmo(); !ok {
		t.Fatal("expected an active drag before the model switch")
	}

	e.SetModel(posableFixture())
	if _, ok := e.ActiveGizmo(); ok {
		t.Error("selecting a different model must clear all sessions")
	}

	e.ClearModel()
	e.Update() // must be a safe no-op without a model
	if e.Graph() != nil {
		t.Error("expected no model after ClearModel")
	}
}

func TestBothTracks_IndependentControllers(t *testing.T) {
	e, f, g := newTestEngine(t)
	f.connect(0, xr.HandLeft, mgl32.Vec3{0, 0, 2})
	f.connect(1, xr.HandRight, mgl32.Vec3{0.2, 0, 2})
	f.push(xr.Event{Type: xr.EventSelectStart, Controller: 0})
	f.push(xr.Event{Type: xr.EventSqueezeStart, Controller: 1})
	e.Update()

	// One controller rotates a joint while the other translates the root.
	f.poses[0].Position = mgl32.Vec3{0, 0.1, 2}
	f.poses[1].Position = mgl32.Vec3{0.2, 0, 1}
	e.Update()

	if got := armOf(g).LocalRotation.X(); math.Abs(float64(got-0.1*DefaultBoostFactor)) > eps {
		t.Errorf("drag track rotation: got %v", got)
	}
	if got := g.Root().LocalPosition.Z(); math.Abs(float64(got+1)) > eps {
		t.Errorf("move track translation: got %v, want -1", got)
	}
}
