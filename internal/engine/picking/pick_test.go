package picking

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/banyapon/vrmecanism/internal/engine/scene"
)

const eps = 1e-5

// quadMesh builds a unit quad in the XY plane at the given z, centered on
// the origin, facing +Z.
func quadMesh(z float32) *scene.Mesh {
	return &scene.Mesh{
		Positions: []mgl32.Vec3{
			{-0.5, -0.5, z}, {0.5, -0.5, z}, {0.5, 0.5, z}, {-0.5, 0.5, z},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

func TestFromPose_ForwardAxis(t *testing.T) {
	ray := FromPose(mgl32.Vec3{1, 2, 3}, mgl32.QuatIdent())
	if !ray.Origin.ApproxEqualThreshold(mgl32.Vec3{1, 2, 3}, eps) {
		t.Errorf("unexpected origin %v", ray.Origin)
	}
	if !ray.Direction.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, eps) {
		t.Errorf("identity pose should aim down -Z, got %v", ray.Direction)
	}

	yawed := FromPose(mgl32.Vec3{}, mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0}))
	if !yawed.Direction.ApproxEqualThreshold(mgl32.Vec3{-1, 0, 0}, eps) {
		t.Errorf("+90 deg yaw should aim down -X, got %v", yawed.Direction)
	}
}

func TestIntersectTriangle(t *testing.T) {
	a := mgl32.Vec3{-1, -1, 0}
	b := mgl32.Vec3{1, -1, 0}
	c := mgl32.Vec3{0, 1, 0}

	tests := []struct {
		name  string
		ray   Ray
		wantT float32
		hit   bool
	}{
		{
			name:  "front hit",
			ray:   Ray{Origin: mgl32.Vec3{0, 0, 2}, Direction: mgl32.Vec3{0, 0, -1}},
			wantT: 2,
			hit:   true,
		},
		{
			name:  "back face hit (two-sided)",
			ray:   Ray{Origin: mgl32.Vec3{0, 0, -3}, Direction: mgl32.Vec3{0, 0, 1}},
			wantT: 3,
			hit:   true,
		},
		{
			name: "miss to the side",
			ray:  Ray{Origin: mgl32.Vec3{5, 0, 2}, Direction: mgl32.Vec3{0, 0, -1}},
		},
		{
			name: "behind origin",
			ray:  Ray{Origin: mgl32.Vec3{0, 0, -2}, Direction: mgl32.Vec3{0, 0, -1}},
		},
		{
			name: "parallel to plane",
			ray:  Ray{Origin: mgl32.Vec3{0, -2, 0.5}, Direction: mgl32.Vec3{0, 1, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectTriangle(a, b, c)
			if hit != tt.hit {
				t.Fatalf("hit=%v, want %v", hit, tt.hit)
			}
			if hit && math.Abs(float64(got-tt.wantT)) > eps {
				t.Errorf("t=%v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestIntersectAABB(t *testing.T) {
	box := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}

	tests := []struct {
		name  string
		ray   Ray
		wantT float32
		hit   bool
	}{
		{
			name:  "straight in",
			ray:   Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}},
			wantT: 4,
			hit:   true,
		},
		{
			name:  "origin inside returns exit",
			ray:   Ray{Origin: mgl32.Vec3{0, 0, 0}, Direction: mgl32.Vec3{0, 0, -1}},
			wantT: 1,
			hit:   true,
		},
		{
			name: "miss",
			ray:  Ray{Origin: mgl32.Vec3{5, 5, 5}, Direction: mgl32.Vec3{0, 0, -1}},
		},
		{
			name: "behind",
			ray:  Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, 1}},
		},
		{
			name: "axis-parallel outside slab",
			ray:  Ray{Origin: mgl32.Vec3{3, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectAABB(box)
			if hit != tt.hit {
				t.Fatalf("hit=%v, want %v", hit, tt.hit)
			}
			if hit && math.Abs(float64(got-tt.wantT)) > eps {
				t.Errorf("t=%v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestPickNearest_EmptySurfaceList(t *testing.T) {
	g := scene.NewGraph()
	g.AddNode("root", scene.KindPlain, scene.InvalidNode)
	ray := Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}}

	if _, found := PickNearest(g, ray, nil); found {
		t.Error("expected no hit for an empty surface list")
	}
}

func TestPickNearest_NearestOfTwo(t *testing.T) {
	g := scene.NewGraph()
	root := g.AddNode("root", scene.KindPlain, scene.InvalidNode)
	near := g.AddNode("near", scene.KindMesh, root.ID)
	near.Mesh = quadMesh(2)
	far := g.AddNode("far", scene.KindMesh, root.ID)
	far.Mesh = quadMesh(-2)
	g.UpdateWorld()

	ray := Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	hit, found := PickNearest(g, ray, []scene.NodeID{near.ID, far.ID})
	if !found {
		t.Fatal("expected a hit")
	}
	if hit.Node != near.ID {
		t.Errorf("expected nearest surface %d, got %d", near.ID, hit.Node)
	}
	if math.Abs(float64(hit.Distance-3)) > eps {
		t.Errorf("distance: got %v, want 3", hit.Distance)
	}
	if !hit.Point.ApproxEqualThreshold(mgl32.Vec3{0, 0, 2}, eps) {
		t.Errorf("hit point: got %v", hit.Point)
	}
}

func TestPickNearest_NestedChildSurface(t *testing.T) {
	g := scene.NewGraph()
	root := g.AddNode("root", scene.KindPlain, scene.InvalidNode)
	outer := g.AddNode("outer", scene.KindMesh, root.ID)
	outer.Mesh = quadMesh(-4)
	inner := g.AddNode("inner", scene.KindMesh, outer.ID)
	inner.Mesh = quadMesh(0)
	inner.LocalPosition = mgl32.Vec3{0, 0, 1}
	g.UpdateWorld()

	// Only the outer surface is listed; the nested child must still be hit,
	// and it is the nearer of the two.
	ray := Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	hit, found := PickNearest(g, ray, []scene.NodeID{outer.ID})
	if !found {
		t.Fatal("expected a hit")
	}
	if hit.Node != inner.ID {
		t.Errorf("expected nested surface %d, got %d", inner.ID, hit.Node)
	}
	if math.Abs(float64(hit.Distance-4)) > eps {
		t.Errorf("distance: got %v, want 4", hit.Distance)
	}
}

func TestPickNearest_TransformedSurface(t *testing.T) {
	g := scene.NewGraph()
	root := g.AddNode("root", scene.KindPlain, scene.InvalidNode)
	root.LocalPosition = mgl32.Vec3{10, 0, 0}
	mesh := g.AddNode("mesh", scene.KindMesh, root.ID)
	mesh.Mesh = quadMesh(0)
	g.UpdateWorld()

	missed := Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	if _, found := PickNearest(g, missed, []scene.NodeID{mesh.ID}); found {
		t.Error("ray at origin should miss the translated surface")
	}

	aimed := Ray{Origin: mgl32.Vec3{10, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	hit, found := PickNearest(g, aimed, []scene.NodeID{mesh.ID})
	if !found {
		t.Fatal("expected a hit on the translated surface")
	}
	if !hit.Point.ApproxEqualThreshold(mgl32.Vec3{10, 0, 0}, eps) {
		t.Errorf("hit point: got %v", hit.Point)
	}
}
