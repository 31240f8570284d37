// Package scene provides the transform-node hierarchy a loaded model lives in:
// an arena of nodes with owned child lists, non-owning parent references, and
// cached world transforms recomputed top-down before each frame's queries.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// NodeID identifies a node inside its Graph.
type NodeID int32

// InvalidNode is the null node reference (e.g. the root's parent).
const InvalidNode NodeID = -1

// Kind classifies a node for picking and joint resolution.
type Kind uint8

const (
	KindPlain Kind = iota // grouping/attachment node
	KindMesh              // carries triangle geometry
	KindBone              // skeletal node
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "node"
	case KindMesh:
		return "mesh"
	case KindBone:
		return "bone"
	default:
		return "unknown"
	}
}

// Mesh holds triangle geometry in node-local space.
type Mesh struct {
	Positions []mgl32.Vec3
	Indices   []uint32 // triangle list, 3 indices per face
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Node is one transform node in the hierarchy. Children are owned by the
// graph through the child-id list; Parent is a plain back-reference and
// never participates in ownership.
type Node struct {
	ID       NodeID
	Name     string
	Kind     Kind
	Parent   NodeID
	Children []NodeID

	// Local transform. Rotation is Euler XYZ in radians; joint drags write
	// the X and Y components directly.
	LocalPosition mgl32.Vec3
	LocalRotation mgl32.Vec3
	LocalScale    mgl32.Vec3

	// World transform, valid only after Graph.UpdateWorld.
	WorldPosition mgl32.Vec3
	WorldRotation mgl32.Quat
	WorldScale    mgl32.Vec3

	// Mesh geometry, mesh nodes only.
	Mesh *Mesh

	// Ordered bone ids influencing this mesh; nil for unskinned nodes.
	SkinBones []NodeID
}

// LocalQuat returns the node's local rotation as a quaternion.
func (n *Node) LocalQuat() mgl32.Quat {
	return mgl32.AnglesToQuat(n.LocalRotation.X(), n.LocalRotation.Y(), n.LocalRotation.Z(), mgl32.XYZ)
}

// IsSkinned reports whether this node is a mesh with bone influences.
func (n *Node) IsSkinned() bool {
	return n.Mesh != nil && len(n.SkinBones) > 0
}

// WorldMatrix returns the node's world transform as a 4x4 matrix.
// Valid only after Graph.UpdateWorld.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(n.WorldPosition.X(), n.WorldPosition.Y(), n.WorldPosition.Z())
	rotate := n.WorldRotation.Mat4()
	scale := mgl32.Scale3D(n.WorldScale.X(), n.WorldScale.Y(), n.WorldScale.Z())
	return translate.Mul4(rotate).Mul4(scale)
}

// WorldPoint transforms a node-local point into world space.
// Valid only after Graph.UpdateWorld.
func (n *Node) WorldPoint(local mgl32.Vec3) mgl32.Vec3 {
	scaled := mgl32.Vec3{
		local.X() * n.WorldScale.X(),
		local.Y() * n.WorldScale.Y(),
		local.Z() * n.WorldScale.Z(),
	}
	return n.WorldPosition.Add(n.WorldRotation.Rotate(scaled))
}
