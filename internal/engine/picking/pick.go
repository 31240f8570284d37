package picking

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/banyapon/vrmecanism/internal/engine/scene"
)

// Hit describes the nearest intersection of a pick ray with a surface.
type Hit struct {
	Node     scene.NodeID // the mesh node that was struck
	Point    mgl32.Vec3   // world-space hit point
	Distance float32      // distance along the ray
}

// PickNearest casts the ray against the given pickable surfaces and their
// nested child surfaces, returning the nearest intersection. Pure query;
// requires up-to-date world transforms. An empty surface list returns
// immediately with no hit.
func PickNearest(g *scene.Graph, ray Ray, surfaces []scene.NodeID) (Hit, bool) {
	if len(surfaces) == 0 {
		return Hit{}, false
	}

	best := Hit{Distance: float32(gomath.MaxFloat32)}
	found := false
	for _, id := range surfaces {
		pickSubtree(g, ray, id, &best, &found)
	}
	return best, found
}

// pickSubtree tests one node's mesh and recurses into its children, so a
// compound surface is searched as a whole.
func pickSubtree(g *scene.Graph, ray Ray, id scene.NodeID, best *Hit, found *bool) {
	node := g.Node(id)
	if node.Mesh != nil {
		pickMesh(ray, node, best, found)
	}
	for _, child := range node.Children {
		pickSubtree(g, ray, child, best, found)
	}
}

func pickMesh(ray Ray, node *scene.Node, best *Hit, found *bool) {
	mesh := node.Mesh
	if len(mesh.Indices) < 3 {
		return
	}

	// Broad phase: skip the per-triangle walk when the ray misses the
	// surface's world bounds entirely.
	world := make([]mgl32.Vec3, len(mesh.Positions))
	box := AABB{
		Min: mgl32.Vec3{gomath.MaxFloat32, gomath.MaxFloat32, gomath.MaxFloat32},
		Max: mgl32.Vec3{-gomath.MaxFloat32, -gomath.MaxFloat32, -gomath.MaxFloat32},
	}
	for i, p := range mesh.Positions {
		world[i] = node.WorldPoint(p)
		box.Extend(world[i])
	}
	if _, hit := ray.IntersectAABB(box); !hit {
		return
	}

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a := world[mesh.Indices[i]]
		b := world[mesh.Indices[i+1]]
		c := world[mesh.Indices[i+2]]
		t, hit := ray.IntersectTriangle(a, b, c)
		if hit && t < best.Distance {
			best.Node = node.ID
			best.Point = ray.At(t)
			best.Distance = t
			*found = true
		}
	}
}
