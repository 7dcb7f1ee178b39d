package scenegraph

import "github.com/Faultbox/floorview/pkg/math"

// Geometry is an indexed triangle list in the owning node's local space.
type Geometry struct {
	Positions []math.Vec3
	Indices   []uint32 // three per triangle; empty means Positions is a plain triangle list
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	if len(g.Indices) > 0 {
		return len(g.Indices) / 3
	}
	return len(g.Positions) / 3
}

// Triangle returns the local-space corners of triangle i.
func (g *Geometry) Triangle(i int) (a, b, c math.Vec3) {
	if len(g.Indices) > 0 {
		return g.Positions[g.Indices[i*3]], g.Positions[g.Indices[i*3+1]], g.Positions[g.Indices[i*3+2]]
	}
	return g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]
}

// LocalBounds returns the bounding box of the vertices in local space.
func (g *Geometry) LocalBounds() Box {
	b := EmptyBox()
	for _, p := range g.Positions {
		b = b.ExpandByPoint(p)
	}
	return b
}

// BoxGeometry builds a closed axis-aligned box between min and max.
// Corner order follows the wireframe layout: bottom face, then top face.
func BoxGeometry(min, max math.Vec3) *Geometry {
	positions := []math.Vec3{
		{X: min.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: min.Y, Z: max.Z},
		{X: min.X, Y: min.Y, Z: max.Z},
		{X: min.X, Y: max.Y, Z: min.Z},
		{X: max.X, Y: max.Y, Z: min.Z},
		{X: max.X, Y: max.Y, Z: max.Z},
		{X: min.X, Y: max.Y, Z: max.Z},
	}
	// Counter-clockwise when viewed from outside.
	indices := []uint32{
		0, 1, 2, 0, 2, 3, // bottom
		4, 6, 5, 4, 7, 6, // top
		0, 4, 5, 0, 5, 1, // -Z
		3, 2, 6, 3, 6, 7, // +Z
		0, 3, 7, 0, 7, 4, // -X
		1, 5, 6, 1, 6, 2, // +X
	}
	return &Geometry{Positions: positions, Indices: indices}
}
