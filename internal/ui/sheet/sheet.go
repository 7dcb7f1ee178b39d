// Package sheet implements the bottom panel that is dragged between snap
// heights and swiped down to dismiss.
package sheet

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/Faultbox/floorview/internal/engine/input"
	"github.com/Faultbox/floorview/pkg/math"
)

// DefaultCloseThreshold is how far, in pixels, a drag must travel downwards
// to dismiss the sheet.
const DefaultCloseThreshold = 100

// State is the sheet lifecycle state.
type State int

const (
	Closed State = iota
	Open
	Dragging
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Surface delivers pointer events while a drag is in progress.
type Surface interface {
	OnMove(fn func(input.Pointer)) input.Subscription
	OnEnd(fn func(input.Pointer)) input.Subscription
}

// Bounds are the resolved sheet heights in pixels. Initial zero means the
// sheet opens at Min.
type Bounds struct {
	Min     float32
	Initial float32
	Max     float32
}

// Controller is the sheet state machine. With GestureEnabled false the sheet
// is a fixed panel that only opens at Max and closes.
type Controller struct {
	GestureEnabled bool
	CloseThreshold float32

	OnClose         func()
	OnHeightChanged func(height float32)

	surface Surface
	bounds  Bounds
	state   State
	height  float32

	startY   float32
	currentY float32
	origin   float32
	subs     []input.Subscription
}

// New creates a closed sheet.
func New(bounds Bounds, surface Surface, gestureEnabled bool) *Controller {
	return &Controller{
		GestureEnabled: gestureEnabled,
		CloseThreshold: DefaultCloseThreshold,
		surface:        surface,
		bounds:         bounds,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Height returns the current height in pixels. It is zero while closed.
func (c *Controller) Height() float32 {
	if c.state == Closed {
		return 0
	}
	return c.height
}

// Bounds returns the configured heights.
func (c *Controller) Bounds() Bounds {
	return c.bounds
}

// SetBounds replaces the heights, for example after a viewport resize. An
// open sheet is clamped into the new range.
func (c *Controller) SetBounds(b Bounds) {
	c.bounds = b
	if c.state != Closed {
		c.setHeight(math.Clamp(c.height, b.Min, b.Max))
	}
}

func (c *Controller) initial() float32 {
	if c.bounds.Initial > 0 {
		return c.bounds.Initial
	}
	return c.bounds.Min
}

// Open shows the sheet at its initial height, or at Max in fixed mode.
// Opening an open sheet restores the initial height.
func (c *Controller) Open() {
	c.release()
	c.state = Open
	if c.GestureEnabled {
		c.setHeight(c.initial())
	} else {
		c.setHeight(c.bounds.Max)
	}
}

// Close hides the sheet from any state without calling OnClose.
func (c *Controller) Close() {
	c.release()
	c.state = Closed
}

// DragStart begins a drag at pointer y. It only has an effect on an open
// sheet with gestures enabled.
func (c *Controller) DragStart(y float32) bool {
	if !c.GestureEnabled || c.state != Open {
		return false
	}
	c.state = Dragging
	c.startY = y
	c.currentY = y
	c.origin = c.height

	if c.surface != nil {
		c.subs = append(c.subs,
			c.surface.OnMove(func(p input.Pointer) { c.DragMove(p.Y) }),
			c.surface.OnEnd(func(input.Pointer) { c.DragEnd() }),
		)
	}
	return true
}

// DragMove resizes the sheet so its top edge follows the pointer.
func (c *Controller) DragMove(y float32) {
	if c.state != Dragging {
		return
	}
	c.currentY = y
	c.setHeight(math.Clamp(c.origin-(y-c.startY), c.bounds.Min, c.bounds.Max))
}

// DragEnd finishes the drag: a long downward swipe dismisses the sheet and
// calls OnClose, anything else snaps to the nearest snap point.
func (c *Controller) DragEnd() {
	if c.state != Dragging {
		return
	}
	c.release()

	if c.currentY-c.startY > c.CloseThreshold {
		c.state = Closed
		if c.OnClose != nil {
			c.OnClose()
		}
		return
	}

	c.state = Open
	c.setHeight(Nearest(c.height, c.SnapPoints()))
}

// Interrupt abandons a drag in progress, leaving the sheet open at its last
// height. It is safe to call in any state.
func (c *Controller) Interrupt() {
	c.release()
	if c.state == Dragging {
		c.state = Open
	}
}

// SnapPoints returns min, initial and max in ascending order.
func (c *Controller) SnapPoints() []float32 {
	points := []float32{c.bounds.Min, c.initial(), c.bounds.Max}
	sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })
	return points
}

// Nearest returns the point closest to h. Ties go to the earlier point.
func Nearest(h float32, points []float32) float32 {
	if len(points) == 0 {
		return h
	}
	best := points[0]
	bestDiff := math32.Abs(h - best)
	for _, p := range points[1:] {
		if d := math32.Abs(h - p); d < bestDiff {
			best, bestDiff = p, d
		}
	}
	return best
}

// Listening reports whether drag listeners are attached.
func (c *Controller) Listening() bool {
	return len(c.subs) > 0
}

func (c *Controller) release() {
	for _, s := range c.subs {
		s.Remove()
	}
	c.subs = nil
}

func (c *Controller) setHeight(h float32) {
	c.height = h
	if c.OnHeightChanged != nil {
		c.OnHeightChanged(h)
	}
}
