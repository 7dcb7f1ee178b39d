package input

import (
	"time"

	"github.com/Faultbox/floorview/internal/engine/frame"
	"github.com/Faultbox/floorview/pkg/math"
)

// Default gesture tuning.
const (
	DefaultDragThreshold = 5
	DefaultSettleDelay   = 100 * time.Millisecond
)

// Click is a pointer press and release that did not travel far enough to be
// a drag.
type Click struct {
	X, Y float32
}

// Classifier tells clicks apart from drags. A gesture becomes a drag as soon
// as the pointer moves more than Threshold pixels on either axis from where it
// went down, and stays a drag until the settle delay after release.
type Classifier struct {
	Threshold float32
	Settle    time.Duration

	sched    *frame.Scheduler
	tracking bool
	dragging bool
	start    math.Vec2
	settle   frame.Handle
}

// NewClassifier creates a classifier with the default threshold and settle delay.
func NewClassifier(sched *frame.Scheduler) *Classifier {
	return &Classifier{
		Threshold: DefaultDragThreshold,
		Settle:    DefaultSettleDelay,
		sched:     sched,
	}
}

// Down starts a gesture.
func (c *Classifier) Down(x, y float32) {
	c.settle.Cancel()
	c.settle = frame.Handle{}
	c.tracking = true
	c.dragging = false
	c.start = math.Vec2{X: x, Y: y}
}

// Move updates the gesture with the current pointer position.
func (c *Classifier) Move(x, y float32) {
	if !c.tracking || c.dragging {
		return
	}
	d := math.Vec2{X: x, Y: y}.Sub(c.start)
	if abs(d.X) > c.Threshold || abs(d.Y) > c.Threshold {
		c.dragging = true
	}
}

// Up ends the gesture. It returns a click at the release position unless the
// gesture was a drag. State is cleared after the settle delay.
func (c *Classifier) Up(x, y float32) (Click, bool) {
	isClick := !c.dragging
	c.settle.Cancel()
	c.settle = c.sched.After(c.Settle, c.reset)
	if !isClick {
		return Click{}, false
	}
	return Click{X: x, Y: y}, true
}

// Dragging reports whether the current gesture has crossed the threshold.
func (c *Classifier) Dragging() bool {
	return c.dragging
}

func (c *Classifier) reset() {
	c.tracking = false
	c.dragging = false
	c.start = math.Vec2{}
	c.settle = frame.Handle{}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
