// Package focus animates the camera onto a scene node.
package focus

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"

	"github.com/Faultbox/floorview/internal/engine/camera"
	"github.com/Faultbox/floorview/internal/engine/frame"
	"github.com/Faultbox/floorview/internal/engine/scenegraph"
	"github.com/Faultbox/floorview/pkg/math"
)

// DefaultDuration is the length of a focus animation.
const DefaultDuration = 1000 * time.Millisecond

// Height limits of the destination above the target centre.
const (
	minHeight = 0.5
	maxHeight = 8.0

	// The camera never dips below this height above its target.
	minClearance = 0.1
)

// Controls is the camera state the animator drives.
type Controls interface {
	Pose() camera.Pose
	SetPose(camera.Pose)
}

// Animator moves the camera to look down on a node. Only the latest Focus
// call animates; earlier animations stop at their next step.
type Animator struct {
	Duration   time.Duration
	OnComplete func(target *scenegraph.Node)

	sched   *frame.Scheduler
	log     *zap.Logger
	epoch   uint64
	pending frame.Handle
	active  bool
}

// New creates an animator driven by sched.
func New(sched *frame.Scheduler, log *zap.Logger) *Animator {
	return &Animator{
		Duration: DefaultDuration,
		sched:    sched,
		log:      log,
	}
}

// StandoffDistance returns the camera distance for an object whose largest
// dimension is maxDim. Small objects are framed tighter than large ones.
func StandoffDistance(maxDim float32) float32 {
	switch {
	case maxDim < 0.5:
		return math32.Max(maxDim*1.5, 0.8)
	case maxDim < 1.0:
		return math32.Max(maxDim*2, 1.2)
	case maxDim < 2.0:
		return math32.Max(maxDim*2.5, 2.0)
	default:
		return math32.Max(maxDim*3, 3.0)
	}
}

// Destination returns the top-down pose that frames box.
func Destination(box scenegraph.Box) camera.Pose {
	center := box.Center()
	distance := StandoffDistance(box.Size().MaxComponent())
	y := math.Clamp(center.Y+distance, center.Y+minHeight, center.Y+maxHeight)
	return camera.Pose{
		Position: math.Vec3{X: center.X, Y: y, Z: center.Z},
		Target:   center,
	}
}

// EasedProgress returns the cubic ease-out of elapsed/duration, clamped to 1.
func EasedProgress(elapsed, duration time.Duration) float32 {
	if duration <= 0 || elapsed >= duration {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	p := float32(elapsed) / float32(duration)
	return ease.OutCubic(p, 0, 1, 1)
}

// Focus starts animating controls onto target, superseding any running
// animation. A nil target, or one without geometry, leaves the camera alone.
func (a *Animator) Focus(target *scenegraph.Node, controls Controls) {
	if target == nil {
		a.log.Warn("focus target missing")
		return
	}
	box := scenegraph.BoundingBox(target)
	if box.IsEmpty() {
		a.log.Warn("focus target has no geometry", zap.String("area", target.Name))
		return
	}

	a.Cancel()
	epoch := a.epoch
	a.active = true

	start := controls.Pose()
	dest := Destination(box)
	began := a.sched.Now()

	a.log.Debug("focusing",
		zap.String("area", target.Name),
		zap.Float32("distance", StandoffDistance(box.Size().MaxComponent())))

	var step func(now time.Time)
	step = func(now time.Time) {
		if epoch != a.epoch {
			return
		}
		eased := EasedProgress(now.Sub(began), a.Duration)
		pose := start.Lerp(dest, eased)
		if pose.Position.Y < pose.Target.Y+minClearance {
			pose.Position.Y = pose.Target.Y + minClearance
		}
		controls.SetPose(pose)

		if now.Sub(began) < a.Duration {
			a.pending = a.sched.RequestFrame(step)
			return
		}
		a.active = false
		a.pending = frame.Handle{}
		if a.OnComplete != nil {
			a.OnComplete(target)
		}
	}
	step(began)
}

// Cancel stops the running animation, leaving the camera where it is.
func (a *Animator) Cancel() {
	a.epoch++
	a.pending.Cancel()
	a.pending = frame.Handle{}
	a.active = false
}

// Active reports whether an animation is running.
func (a *Animator) Active() bool {
	return a.active
}
