// Package scenegraph holds the building model as a tree of named nodes.
// Leaf meshes carry geometry and their own material instances; node names
// double as area identifiers for picking, highlighting and camera focus.
package scenegraph

import (
	"sync/atomic"

	"github.com/Faultbox/floorview/pkg/math"
)

var lastNodeID atomic.Uint64

// Node is a node in the scene hierarchy.
type Node struct {
	Name string

	// Local transform relative to the parent.
	Position math.Vec3
	Rotation math.Quat // zero value means no rotation
	Scale    math.Vec3 // zero value means unit scale

	Geometry  *Geometry
	Materials []*Material

	id       uint64
	parent   *Node
	children []*Node
}

// NewNode creates an empty group node.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
		id:       lastNodeID.Add(1),
	}
}

// NewMesh creates a leaf mesh node with the given geometry and materials.
func NewMesh(name string, geom *Geometry, materials ...*Material) *Node {
	n := NewNode(name)
	n.Geometry = geom
	n.Materials = materials
	return n
}

// ID returns the process-unique node id.
func (n *Node) ID() uint64 {
	return n.id
}

// IsMesh reports whether the node is a renderable mesh.
func (n *Node) IsMesh() bool {
	return n.Geometry != nil && len(n.Materials) > 0
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the direct children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Add attaches children to n, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// Remove detaches child from n.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// LocalMatrix returns translation * rotation * scale.
func (n *Node) LocalMatrix() math.Mat4 {
	rot := n.Rotation
	if rot.IsZero() {
		rot = math.QuatIdentity()
	}
	scale := n.Scale
	if scale == (math.Vec3{}) {
		scale = math.Vec3{X: 1, Y: 1, Z: 1}
	}
	return math.Compose(n.Position, rot, scale)
}

// WorldMatrix returns the node transform in world space.
func (n *Node) WorldMatrix() math.Mat4 {
	if n.parent == nil {
		return n.LocalMatrix()
	}
	return n.parent.WorldMatrix().Mul(n.LocalMatrix())
}

// Traverse visits n and all descendants depth-first, parents before children.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// TraverseMeshes visits every mesh in the subtree in traversal order.
func (n *Node) TraverseMeshes(fn func(*Node)) {
	n.Traverse(func(node *Node) {
		if node.IsMesh() {
			fn(node)
		}
	})
}

// Clone deep-copies the subtree. Geometry is shared (it is never mutated);
// materials are copied so the clone can be highlighted independently.
func (n *Node) Clone() *Node {
	c := NewNode(n.Name)
	c.Position = n.Position
	c.Rotation = n.Rotation
	c.Scale = n.Scale
	c.Geometry = n.Geometry
	c.Materials = make([]*Material, len(n.Materials))
	for i, m := range n.Materials {
		c.Materials[i] = m.Clone()
	}
	for _, child := range n.children {
		c.Add(child.Clone())
	}
	return c
}
