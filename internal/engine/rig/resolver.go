package rig

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/banyapon/vrmecanism/internal/engine/picking"
	"github.com/banyapon/vrmecanism/internal/engine/scene"
)

// Resolve maps a raw pick into the joint the drag should rotate, or
// reports that the hit has no eligible target. Pure function of its
// inputs; requires up-to-date world transforms.
//
// Resolution order:
//  1. Skinned surfaces pick the eligible bone nearest the hit point. A
//     single skinned surface spans many bones, so the raw hit geometry
//     does not map 1:1 onto a joint; proximity does.
//  2. First ancestor of the hit node (inclusive) below the model root
//     that is a member of the target set.
//  3. Structural fallback: the first non-mesh ancestor (skipping mesh
//     wrapper chains), accepted only if it is itself a member.
func Resolve(g *scene.Graph, hit picking.Hit, root scene.NodeID, targets TargetSet) (scene.NodeID, bool) {
	hitNode := g.Node(hit.Node)

	if hitNode.IsSkinned() {
		if bone, ok := nearestEligibleBone(g, hitNode.SkinBones, hit.Point, targets); ok {
			return bone, true
		}
	}

	for cur := hit.Node; cur != scene.InvalidNode && cur != root; cur = g.Node(cur).Parent {
		if targets.Contains(cur) {
			return cur, true
		}
	}

	for cur := hit.Node; cur != scene.InvalidNode && cur != root; cur = g.Node(cur).Parent {
		node := g.Node(cur)
		if node.Kind == scene.KindMesh {
			continue
		}
		if targets.Contains(cur) {
			return cur, true
		}
		break
	}

	return scene.InvalidNode, false
}

// nearestEligibleBone returns the target-set member among bones whose
// world position is closest (squared distance) to the hit point.
func nearestEligibleBone(g *scene.Graph, bones []scene.NodeID, point mgl32.Vec3, targets TargetSet) (scene.NodeID, bool) {
	best := scene.InvalidNode
	var bestDist float32
	for _, id := range bones {
		if !targets.Contains(id) {
			continue
		}
		d := g.Node(id).WorldPosition.Sub(point)
		dist := d.Dot(d)
		if best == scene.InvalidNode || dist < bestDist {
			best = id
			bestDist = dist
		}
	}
	return best, best != scene.InvalidNode
}
