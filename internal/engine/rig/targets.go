// Package rig decides which nodes of a model the user may rotate, and maps
// raw pick results onto those joints.
package rig

import (
	"github.com/banyapon/vrmecanism/internal/engine/scene"
)

// TargetSet is the set of node ids the interaction layer may rotate.
type TargetSet map[scene.NodeID]struct{}

// Contains reports set membership.
func (s TargetSet) Contains(id scene.NodeID) bool {
	_, ok := s[id]
	return ok
}

// ComputeTargets derives the rotatable joints of a model, once per load.
//
// Preferred rule: every bone whose parent is itself a bone. This keeps the
// skeleton root fixed while all articulated bones stay grabbable. When the
// model has no true bone hierarchy, fall back to the direct parents of
// mesh nodes, skipping mesh-to-mesh parents. The model root is never a
// target: the root is moved by the move track and the placement action
// only, never rotated by a drag.
func ComputeTargets(g *scene.Graph) TargetSet {
	targets := make(TargetSet)
	root := g.RootID()

	for _, id := range g.BoneNodes() {
		bone := g.Node(id)
		if bone.Parent == scene.InvalidNode || id == root {
			continue
		}
		if g.Node(bone.Parent).Kind == scene.KindBone {
			targets[id] = struct{}{}
		}
	}
	if len(targets) > 0 {
		return targets
	}

	for _, id := range g.MeshNodes() {
		mesh := g.Node(id)
		if mesh.Parent == scene.InvalidNode || mesh.Parent == root {
			continue
		}
		parent := g.Node(mesh.Parent)
		if parent.Kind == scene.KindMesh {
			continue
		}
		targets[mesh.Parent] = struct{}{}
	}
	return targets
}
