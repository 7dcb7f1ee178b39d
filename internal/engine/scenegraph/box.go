package scenegraph

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/floorview/pkg/math"
)

// Box is an axis-aligned bounding box in world space.
type Box struct {
	Min math.Vec3
	Max math.Vec3
}

// EmptyBox returns a box that contains nothing; expanding it by a point
// yields a zero-size box at that point.
func EmptyBox() Box {
	inf := math32.Inf(1)
	return Box{
		Min: math.Vec3{X: inf, Y: inf, Z: inf},
		Max: math.Vec3{X: -inf, Y: -inf, Z: -inf},
	}
}

// IsEmpty reports whether the box contains no points.
func (b Box) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// ExpandByPoint grows the box to include p.
func (b Box) ExpandByPoint(p math.Vec3) Box {
	return Box{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(other Box) Box {
	if other.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return other
	}
	return Box{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Center returns the midpoint of the box.
func (b Box) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns max - min.
func (b Box) Size() math.Vec3 {
	if b.IsEmpty() {
		return math.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Transform returns the bounding box of b's eight corners under m.
func (b Box) Transform(m math.Mat4) Box {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBox()
	for i := 0; i < 8; i++ {
		corner := math.Vec3{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z}
		if i&1 != 0 {
			corner.X = b.Max.X
		}
		if i&2 != 0 {
			corner.Y = b.Max.Y
		}
		if i&4 != 0 {
			corner.Z = b.Max.Z
		}
		out = out.ExpandByPoint(m.TransformVec3(corner))
	}
	return out
}
