package assets

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/banyapon/vrmecanism/internal/engine/scene"
	"github.com/banyapon/vrmecanism/pkg/formats"
)

// BuildGraph converts a parsed rig document into a transform-node graph.
// Nodes are inserted parents-first regardless of document order; meshes
// referenced by multiple nodes are shared; skin bindings are resolved to
// node ids. World transforms are left for the caller to compute.
func BuildGraph(rig *formats.Rig) (*scene.Graph, error) {
	g := scene.NewGraph()

	meshes := make([]*scene.Mesh, len(rig.Meshes))
	for i := range rig.Meshes {
		meshes[i] = buildMesh(&rig.Meshes[i])
	}

	// Multi-pass insertion: a node goes in once its parent has an id.
	// The document validator guarantees a single root and known parents,
	// so any leftover after a fruitless pass means a parent cycle.
	ids := make(map[string]scene.NodeID, len(rig.Nodes))
	pending := make([]*formats.RigNode, 0, len(rig.Nodes))
	for i := range rig.Nodes {
		pending = append(pending, &rig.Nodes[i])
	}

	for len(pending) > 0 {
		progress := false
		remaining := pending[:0]
		for _, rn := range pending {
			parent := scene.InvalidNode
			if rn.Parent != "" {
				id, ok := ids[rn.Parent]
				if !ok {
					remaining = append(remaining, rn)
					continue
				}
				parent = id
			}

			node := g.AddNode(rn.Name, nodeKind(rn.Kind), parent)
			node.LocalPosition = mgl32.Vec3(rn.Translation)
			node.LocalRotation = mgl32.Vec3(rn.Rotation)
			node.LocalScale = mgl32.Vec3(rn.Scale)
			if rn.Mesh != nil {
				node.Mesh = meshes[*rn.Mesh]
			}
			ids[rn.Name] = node.ID
			progress = true
		}
		if !progress {
			return nil, fmt.Errorf("node hierarchy contains a parent cycle (%d nodes unplaced)", len(remaining))
		}
		pending = remaining
	}

	for i := range rig.Skins {
		skin := &rig.Skins[i]
		node := g.Node(ids[skin.MeshNode])
		bones := make([]scene.NodeID, len(skin.Bones))
		for j, name := range skin.Bones {
			bones[j] = ids[name]
		}
		node.SkinBones = bones
	}

	return g, nil
}

func buildMesh(rm *formats.RigMesh) *scene.Mesh {
	positions := make([]mgl32.Vec3, len(rm.Positions)/3)
	for i := range positions {
		positions[i] = mgl32.Vec3{
			rm.Positions[i*3],
			rm.Positions[i*3+1],
			rm.Positions[i*3+2],
		}
	}
	indices := make([]uint32, len(rm.Indices))
	copy(indices, rm.Indices)
	return &scene.Mesh{Positions: positions, Indices: indices}
}

func nodeKind(kind string) scene.Kind {
	switch kind {
	case formats.NodeKindMesh:
		return scene.KindMesh
	case formats.NodeKindBone:
		return scene.KindBone
	default:
		return scene.KindPlain
	}
}
