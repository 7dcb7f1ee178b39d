// Package camera provides orbit controls around a look-at target.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/floorview/pkg/math"
)

// Pose is the camera position and the point it looks at.
type Pose struct {
	Position math.Vec3
	Target   math.Vec3
}

// Distance returns the distance between the camera and its target.
func (p Pose) Distance() float32 {
	return p.Position.Distance(p.Target)
}

// Lerp interpolates both points of the pose.
func (p Pose) Lerp(to Pose, t float32) Pose {
	return Pose{
		Position: p.Position.Lerp(to.Position, t),
		Target:   p.Target.Lerp(to.Target, t),
	}
}

// Keeps the polar angle away from the poles where the orbit is undefined.
const polarEpsilon = 1e-6

var worldUp = math.Vec3{Y: 1}

// Controls orbits, pans and zooms a perspective camera around its target.
//
// Rotate, Pan and Zoom are user input: they call OnUserInput first so that a
// running camera animation can yield. SetPose is the programmatic path and
// bypasses the distance limits.
type Controls struct {
	FOV  float32 // vertical field of view, radians
	Near float32
	Far  float32

	MinDistance   float32
	MaxDistance   float32
	MinPolarAngle float32
	MaxPolarAngle float32

	RotateSpeed float32
	PanSpeed    float32
	ZoomSpeed   float32

	OnUserInput func()

	pose Pose
}

// NewControls creates controls with the default indoor-map limits.
func NewControls(pose Pose) *Controls {
	return &Controls{
		FOV:           50 * math32.Pi / 180,
		Near:          0.1,
		Far:           1000,
		MinDistance:   0.5,
		MaxDistance:   4,
		MinPolarAngle: 0,
		MaxPolarAngle: math32.Pi / 2,
		RotateSpeed:   0.5,
		PanSpeed:      0.8,
		ZoomSpeed:     0.8,
		pose:          pose,
	}
}

// Pose returns the current camera pose.
func (c *Controls) Pose() Pose {
	return c.pose
}

// SetPose moves the camera without applying user limits.
func (c *Controls) SetPose(p Pose) {
	c.pose = p
}

// Rotate orbits the camera around the target by a pointer drag of (dx, dy)
// pixels in a viewport of the given height.
func (c *Controls) Rotate(dx, dy, viewportH float32) {
	c.userInput()
	if viewportH <= 0 {
		return
	}
	radius, theta, phi := c.spherical()
	theta -= 2 * math32.Pi * dx / viewportH * c.RotateSpeed
	phi -= 2 * math32.Pi * dy / viewportH * c.RotateSpeed
	c.setSpherical(radius, theta, phi)
}

// Pan slides the camera and target across the ground plane so the scene
// follows a pointer drag of (dx, dy) pixels.
func (c *Controls) Pan(dx, dy, viewportH float32) {
	c.userInput()
	if viewportH <= 0 {
		return
	}
	_, theta, _ := c.spherical()

	// World units per pixel at the target depth.
	scale := 2 * c.pose.Distance() * math32.Tan(c.FOV/2) / viewportH

	right := math.Vec3{X: math32.Cos(theta), Z: -math32.Sin(theta)}
	forward := worldUp.Cross(right)

	offset := right.Scale(-dx * c.PanSpeed * scale).
		Add(forward.Scale(dy * c.PanSpeed * scale))
	c.pose.Position = c.pose.Position.Add(offset)
	c.pose.Target = c.pose.Target.Add(offset)
}

// Zoom dollies toward the target for positive steps (wheel away from the
// user) and away for negative steps.
func (c *Controls) Zoom(steps float32) {
	c.userInput()
	radius, theta, phi := c.spherical()
	radius *= math32.Pow(0.95, c.ZoomSpeed*steps)
	c.setSpherical(radius, theta, phi)
}

func (c *Controls) userInput() {
	if c.OnUserInput != nil {
		c.OnUserInput()
	}
}

// spherical returns the camera offset from the target as radius, azimuth
// around +Y and polar angle from +Y.
func (c *Controls) spherical() (radius, theta, phi float32) {
	offset := c.pose.Position.Sub(c.pose.Target)
	radius = offset.Length()
	if radius == 0 {
		return 0, 0, 0
	}
	theta = math32.Atan2(offset.X, offset.Z)
	phi = math32.Acos(math.Clamp(offset.Y/radius, -1, 1))
	return radius, theta, phi
}

func (c *Controls) setSpherical(radius, theta, phi float32) {
	phi = math.Clamp(phi, c.MinPolarAngle, c.MaxPolarAngle)
	phi = math.Clamp(phi, polarEpsilon, math32.Pi-polarEpsilon)
	radius = math.Clamp(radius, c.MinDistance, c.MaxDistance)

	sinPhi, cosPhi := math32.Sincos(phi)
	sinTheta, cosTheta := math32.Sincos(theta)
	offset := math.Vec3{
		X: radius * sinPhi * sinTheta,
		Y: radius * cosPhi,
		Z: radius * sinPhi * cosTheta,
	}
	c.pose.Position = c.pose.Target.Add(offset)
}

// ViewMatrix returns the view matrix for the current pose.
func (c *Controls) ViewMatrix() math.Mat4 {
	up := worldUp
	forward := c.pose.Target.Sub(c.pose.Position).Normalize()
	if forward.Cross(up).Length() < 1e-4 {
		// Looking straight down: keep -Z as screen up.
		up = math.Vec3{Z: -1}
	}
	return math.LookAt(c.pose.Position, c.pose.Target, up)
}

// Projection returns the perspective projection for the aspect ratio.
func (c *Controls) Projection(aspect float32) math.Mat4 {
	return math.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *Controls) ViewProjection(aspect float32) math.Mat4 {
	return c.Projection(aspect).Mul(c.ViewMatrix())
}
