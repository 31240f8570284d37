// Package formats implements parsers for the model file formats used by the poser.
package formats

import (
	"encoding/json"
	"fmt"
	"os"
)

// Node kinds recognized in a rig document.
const (
	NodeKindPlain = "node"
	NodeKindMesh  = "mesh"
	NodeKindBone  = "bone"
)

// RigNode is a single node of a rig document's hierarchy.
// Parent refers to another node by name; the root node has an empty parent.
type RigNode struct {
	Name        string     `json:"name"`
	Parent      string     `json:"parent,omitempty"`
	Kind        string     `json:"kind,omitempty"`
	Translation [3]float32 `json:"translation,omitempty"`
	Rotation    [3]float32 `json:"rotation,omitempty"` // Euler XYZ, radians
	Scale       [3]float32 `json:"scale,omitempty"`
	Mesh        *int       `json:"mesh,omitempty"` // index into Rig.Meshes, mesh nodes only
}

// RigMesh holds triangle geometry: a flat position array (xyz per vertex)
// and a triangle index list.
type RigMesh struct {
	Positions []float32 `json:"positions"`
	Indices   []uint32  `json:"indices"`
}

// RigSkin binds a mesh node to the ordered list of bones influencing it.
type RigSkin struct {
	MeshNode string   `json:"mesh_node"`
	Bones    []string `json:"bones"`
}

// Rig is a parsed rig document: a posable model with a node hierarchy,
// triangle meshes, and optional skin bindings.
type Rig struct {
	Name   string    `json:"name"`
	Nodes  []RigNode `json:"nodes"`
	Meshes []RigMesh `json:"meshes"`
	Skins  []RigSkin `json:"skins,omitempty"`
}

// ParseRig parses and validates a rig document from JSON data.
func ParseRig(data []byte) (*Rig, error) {
	var rig Rig
	if err := json.Unmarshal(data, &rig); err != nil {
		return nil, fmt.Errorf("decoding rig document: %w", err)
	}
	if err := rig.validate(); err != nil {
		return nil, fmt.Errorf("rig %q: %w", rig.Name, err)
	}
	return &rig, nil
}

// ParseRigFile parses a rig document from a file.
func ParseRigFile(path string) (*Rig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseRig(data)
}

func (rig *Rig) validate() error {
	if len(rig.Nodes) == 0 {
		return fmt.Errorf("no nodes")
	}

	byName := make(map[string]*RigNode, len(rig.Nodes))
	rootCount := 0
	for i := range rig.Nodes {
		node := &rig.Nodes[i]
		if node.Name == "" {
			return fmt.Errorf("node %d has no name", i)
		}
		if _, dup := byName[node.Name]; dup {
			return fmt.Errorf("duplicate node name %q", node.Name)
		}
		byName[node.Name] = node
		if node.Parent == "" {
			rootCount++
		}
		if node.Kind == "" {
			node.Kind = NodeKindPlain
		}
		switch node.Kind {
		case NodeKindPlain, NodeKindMesh, NodeKindBone:
		default:
			return fmt.Errorf("node %q: unknown kind %q", node.Name, node.Kind)
		}
		if node.Scale == ([3]float32{}) {
			node.Scale = [3]float32{1, 1, 1}
		}
	}
	if rootCount != 1 {
		return fmt.Errorf("expected exactly 1 root node, got %d", rootCount)
	}

	for i := range rig.Nodes {
		node := &rig.Nodes[i]
		if node.Parent != "" {
			if _, ok := byName[node.Parent]; !ok {
				return fmt.Errorf("node %q: unknown parent %q", node.Name, node.Parent)
			}
		}
		if node.Mesh != nil {
			if node.Kind != NodeKindMesh {
				return fmt.Errorf("node %q: mesh reference on non-mesh node", node.Name)
			}
			if *node.Mesh < 0 || *node.Mesh >= len(rig.Meshes) {
				return fmt.Errorf("node %q: mesh index %d out of range", node.Name, *node.Mesh)
			}
		} else if node.Kind == NodeKindMesh {
			return fmt.Errorf("node %q: mesh node without mesh reference", node.Name)
		}
	}

	for i := range rig.Meshes {
		mesh := &rig.Meshes[i]
		if len(mesh.Positions)%3 != 0 {
			return fmt.Errorf("mesh %d: position array length %d is not a multiple of 3", i, len(mesh.Positions))
		}
		if len(mesh.Indices)%3 != 0 {
			return fmt.Errorf("mesh %d: index count %d is not a multiple of 3", i, len(mesh.Indices))
		}
		vertexCount := uint32(len(mesh.Positions) / 3)
		for _, idx := range mesh.Indices {
			if idx >= vertexCount {
				return fmt.Errorf("mesh %d: index %d out of range (%d vertices)", i, idx, vertexCount)
			}
		}
	}

	for i := range rig.Skins {
		skin := &rig.Skins[i]
		meshNode, ok := byName[skin.MeshNode]
		if !ok {
			return fmt.Errorf("skin %d: unknown mesh node %q", i, skin.MeshNode)
		}
		if meshNode.Kind != NodeKindMesh {
			return fmt.Errorf("skin %d: node %q is not a mesh node", i, skin.MeshNode)
		}
		if len(skin.Bones) == 0 {
			return fmt.Errorf("skin %d: no bones", i)
		}
		for _, boneName := range skin.Bones {
			bone, ok := byName[boneName]
			if !ok {
				return fmt.Errorf("skin %d: unknown bone %q", i, boneName)
			}
			if bone.Kind != NodeKindBone {
				return fmt.Errorf("skin %d: node %q is not a bone", i, boneName)
			}
		}
	}

	return nil
}

// GetNodeByName finds a node by name, or nil if not found.
func (rig *Rig) GetNodeByName(name string) *RigNode {
	for i := range rig.Nodes {
		if rig.Nodes[i].Name == name {
			return &rig.Nodes[i]
		}
	}
	return nil
}

// GetRootNode returns the node with no parent.
func (rig *Rig) GetRootNode() *RigNode {
	for i := range rig.Nodes {
		if rig.Nodes[i].Parent == "" {
			return &rig.Nodes[i]
		}
	}
	return nil
}

// GetChildNodes returns all direct children of the named node.
func (rig *Rig) GetChildNodes(parentName string) []*RigNode {
	var children []*RigNode
	for i := range rig.Nodes {
		if rig.Nodes[i].Parent == parentName {
			children = append(children, &rig.Nodes[i])
		}
	}
	return children
}

// GetSkinForNode returns the skin binding for the named mesh node, or nil.
func (rig *Rig) GetSkinForNode(name string) *RigSkin {
	for i := range rig.Skins {
		if rig.Skins[i].MeshNode == name {
			return &rig.Skins[i]
		}
	}
	return nil
}
