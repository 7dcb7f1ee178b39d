package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/floorview/pkg/math"
)

const triangleEpsilon = 1e-7

// IntersectTriangle returns the ray parameter at which r crosses triangle
// abc. Both faces are hit. Hits behind the origin are rejected.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (t float32, hit bool) {
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	pvec := r.Direction.Cross(edge2)
	det := edge1.Dot(pvec)
	if math32.Abs(det) < triangleEpsilon {
		return 0, false // parallel to the triangle plane
	}
	invDet := 1 / det

	tvec := r.Origin.Sub(a)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	qvec := tvec.Cross(edge1)
	v := r.Direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = edge2.Dot(qvec) * invDet
	if t < 0 {
		return 0, false
	}
	return t, true
}
