package scenegraph

// BoundingBox returns the world-space box of every mesh vertex in the
// subtree rooted at n. The result is empty when the subtree has no geometry.
func BoundingBox(n *Node) Box {
	box := EmptyBox()
	n.Traverse(func(node *Node) {
		if node.Geometry == nil {
			return
		}
		world := node.WorldMatrix()
		for _, p := range node.Geometry.Positions {
			box = box.ExpandByPoint(world.TransformVec3(p))
		}
	})
	return box
}

// FindMesh returns the mesh named name in the subtree. When several meshes
// share the name, the last one in traversal order wins.
func FindMesh(root *Node, name string) *Node {
	if root == nil {
		return nil
	}
	var found *Node
	root.TraverseMeshes(func(n *Node) {
		if n.Name == name {
			found = n
		}
	})
	return found
}

// Meshes returns every mesh in the subtree in traversal order.
func Meshes(root *Node) []*Node {
	var out []*Node
	root.TraverseMeshes(func(n *Node) {
		out = append(out, n)
	})
	return out
}
