package scenegraph

import (
	"github.com/jinzhu/copier"
)

// Color is a linear RGB colour.
type Color [3]float32

// ColorFromHex converts 0xRRGGBB to a Color.
func ColorFromHex(hex uint32) Color {
	return Color{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
	}
}

// Material is the mutable surface state of a mesh.
type Material struct {
	Name              string
	Color             Color
	Opacity           float32
	Transparent       bool
	Emissive          Color
	EmissiveIntensity float32
}

// NewMaterial returns an opaque material of the given colour.
func NewMaterial(color Color) *Material {
	return &Material{Color: color, Opacity: 1}
}

// Clone returns an independent copy of m.
func (m *Material) Clone() *Material {
	var c Material
	if err := copier.CopyWithOption(&c, m, copier.Option{DeepCopy: true}); err != nil {
		// Material holds only plain values; a copier failure is a programming error.
		panic(err)
	}
	return &c
}

// IsolateMaterials replaces every material instance in the subtree with its
// own clone so that no two meshes share a mutable material. Loaders must call
// it before handing a scene to picking or highlighting.
func IsolateMaterials(root *Node) {
	root.Traverse(func(n *Node) {
		for i, m := range n.Materials {
			n.Materials[i] = m.Clone()
		}
	})
}
