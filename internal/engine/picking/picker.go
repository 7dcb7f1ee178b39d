package picking

import (
	"fmt"

	"github.com/Faultbox/floorview/internal/engine/scenegraph"
	"github.com/Faultbox/floorview/pkg/math"
)

// Camera supplies the combined view-projection matrix for an aspect ratio.
type Camera interface {
	ViewProjection(aspect float32) math.Mat4
}

// Hit is the nearest mesh under the pointer.
type Hit struct {
	// ID is the area identifier: the mesh name, or Area_<node id> for
	// unnamed meshes.
	ID       string
	Node     *scenegraph.Node
	Distance float32
}

// AreaID returns the identifier used for a mesh.
func AreaID(n *scenegraph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("Area_%d", n.ID())
}

// Pick casts a ray through the pixel (screenX, screenY) and returns the
// nearest mesh it hits under root. It does not modify the scene.
func Pick(screenX, screenY, viewportW, viewportH float32, cam Camera, root *scenegraph.Node) (Hit, bool) {
	if root == nil || viewportW <= 0 || viewportH <= 0 {
		return Hit{}, false
	}
	inv := cam.ViewProjection(viewportW / viewportH).Inverse()
	return Cast(ScreenToRay(screenX, screenY, viewportW, viewportH, inv), root)
}

// Cast returns the nearest mesh under root hit by r. On equal distances the
// mesh visited first wins.
func Cast(r Ray, root *scenegraph.Node) (Hit, bool) {
	var best Hit
	found := false

	root.TraverseMeshes(func(n *scenegraph.Node) {
		world := n.WorldMatrix()

		// Broad phase on the world-space bounds.
		if _, ok := r.IntersectBox(n.Geometry.LocalBounds().Transform(world)); !ok {
			return
		}

		g := n.Geometry
		for i := 0; i < g.TriangleCount(); i++ {
			a, b, c := g.Triangle(i)
			t, ok := r.IntersectTriangle(world.TransformVec3(a), world.TransformVec3(b), world.TransformVec3(c))
			if !ok {
				continue
			}
			if !found || t < best.Distance {
				best = Hit{ID: AreaID(n), Node: n, Distance: t}
				found = true
			}
		}
	})

	return best, found
}
