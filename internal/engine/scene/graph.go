package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Graph is an arena of transform nodes forming one model's hierarchy.
// Node ids are dense indices into the arena; the first node added with no
// parent becomes the root.
type Graph struct {
	nodes []Node
	root  NodeID
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{root: InvalidNode}
}

// AddNode appends a node to the arena and links it under parent.
// Pass InvalidNode as parent for the root; only one root is allowed.
func (g *Graph) AddNode(name string, kind Kind, parent NodeID) *Node {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{
		ID:            id,
		Name:          name,
		Kind:          kind,
		Parent:        parent,
		LocalScale:    mgl32.Vec3{1, 1, 1},
		WorldRotation: mgl32.QuatIdent(),
		WorldScale:    mgl32.Vec3{1, 1, 1},
	})
	if parent == InvalidNode {
		g.root = id
	} else {
		p := g.Node(parent)
		p.Children = append(p.Children, id)
	}
	return &g.nodes[id]
}

// Node returns the node with the given id. The pointer stays valid until
// the next AddNode call.
func (g *Graph) Node(id NodeID) *Node {
	return &g.nodes[id]
}

// Root returns the model root node, or nil for an empty graph.
func (g *Graph) Root() *Node {
	if g.root == InvalidNode {
		return nil
	}
	return &g.nodes[g.root]
}

// RootID returns the id of the model root.
func (g *Graph) RootID() NodeID {
	return g.root
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// NodeByName finds a node by name, or nil if absent.
func (g *Graph) NodeByName(name string) *Node {
	for i := range g.nodes {
		if g.nodes[i].Name == name {
			return &g.nodes[i]
		}
	}
	return nil
}

// MeshNodes returns the ids of all mesh nodes, in arena order.
func (g *Graph) MeshNodes() []NodeID {
	var ids []NodeID
	for i := range g.nodes {
		if g.nodes[i].Kind == KindMesh {
			ids = append(ids, g.nodes[i].ID)
		}
	}
	return ids
}

// BoneNodes returns the ids of all bone nodes, in arena order.
func (g *Graph) BoneNodes() []NodeID {
	var ids []NodeID
	for i := range g.nodes {
		if g.nodes[i].Kind == KindBone {
			ids = append(ids, g.nodes[i].ID)
		}
	}
	return ids
}

// UpdateWorld recomputes every node's world transform top-down from the
// root. Must run before any world-space query (picking, nearest-bone
// lookup, rendering) that follows a local-transform mutation.
func (g *Graph) UpdateWorld() {
	if g.root == InvalidNode {
		return
	}
	g.updateSubtree(g.root)
}

func (g *Graph) updateSubtree(id NodeID) {
	node := &g.nodes[id]

	if node.Parent == InvalidNode {
		node.WorldPosition = node.LocalPosition
		node.WorldRotation = node.LocalQuat()
		node.WorldScale = node.LocalScale
	} else {
		parent := &g.nodes[node.Parent]

		// WorldPos = ParentPos + ParentRot * (ParentScale * LocalPos)
		scaledLocal := mgl32.Vec3{
			node.LocalPosition.X() * parent.WorldScale.X(),
			node.LocalPosition.Y() * parent.WorldScale.Y(),
			node.LocalPosition.Z() * parent.WorldScale.Z(),
		}
		node.WorldPosition = parent.WorldPosition.Add(parent.WorldRotation.Rotate(scaledLocal))

		// WorldRot = ParentRot * LocalRot
		node.WorldRotation = parent.WorldRotation.Mul(node.LocalQuat()).Normalize()

		// WorldScale = ParentScale * LocalScale
		node.WorldScale = mgl32.Vec3{
			parent.WorldScale.X() * node.LocalScale.X(),
			parent.WorldScale.Y() * node.LocalScale.Y(),
			parent.WorldScale.Z() * node.LocalScale.Z(),
		}
	}

	for _, child := range node.Children {
		g.updateSubtree(child)
	}
}

// BoundingSphere returns a world-space sphere enclosing all mesh geometry,
// for camera auto-framing. Returns ok=false when the graph has no mesh
// vertices. Requires up-to-date world transforms.
func (g *Graph) BoundingSphere() (center mgl32.Vec3, radius float32, ok bool) {
	var (
		min, max mgl32.Vec3
		any      bool
	)
	for i := range g.nodes {
		node := &g.nodes[i]
		if node.Mesh == nil {
			continue
		}
		for _, p := range node.Mesh.Positions {
			w := node.WorldPoint(p)
			if !any {
				min, max = w, w
				any = true
				continue
			}
			for axis := 0; axis < 3; axis++ {
				if w[axis] < min[axis] {
					min[axis] = w[axis]
				}
				if w[axis] > max[axis] {
					max[axis] = w[axis]
				}
			}
		}
	}
	if !any {
		return mgl32.Vec3{}, 0, false
	}
	center = min.Add(max).Mul(0.5)
	radius = max.Sub(center).Len()
	return center, radius, true
}
