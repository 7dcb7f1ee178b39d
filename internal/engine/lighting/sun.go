// Package lighting describes the light the floor meshes are shaded with.
package lighting

import "github.com/Faultbox/floorview/pkg/math"

// Sun is a directional light plus a flat ambient term.
type Sun struct {
	Direction math.Vec3 // unit vector pointing towards the light
	Ambient   float32
}

// DefaultSun returns a light placed above and to the side of the floor at
// (10, 10, 5), with half-strength ambient.
func DefaultSun() Sun {
	return Sun{
		Direction: math.Vec3{X: 10, Y: 10, Z: 5}.Normalize(),
		Ambient:   0.5,
	}
}
