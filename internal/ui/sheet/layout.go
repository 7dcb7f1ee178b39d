package sheet

// Handle geometry in pixels.
const (
	HandleWidth  = 40
	HandleHeight = 4
	HandleTop    = 12
)

// Rect is a pixel rectangle with the origin at the top-left of the window.
type Rect struct {
	X, Y, W, H float32
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// PanelRect returns the area covered by a sheet of the given height docked
// to the bottom of the viewport.
func PanelRect(height, viewportW, viewportH float32) Rect {
	return Rect{X: 0, Y: viewportH - height, W: viewportW, H: height}
}

// HandleRect returns the strip at the top of the panel that starts a drag.
func HandleRect(panel Rect) Rect {
	return Rect{X: panel.X, Y: panel.Y, W: panel.W, H: HandleTop*2 + HandleHeight}
}

// GripRect returns the visible grab bar inside the handle strip.
func GripRect(panel Rect) Rect {
	return Rect{
		X: panel.X + (panel.W-HandleWidth)/2,
		Y: panel.Y + HandleTop,
		W: HandleWidth,
		H: HandleHeight,
	}
}
