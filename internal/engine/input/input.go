// Package input turns SDL2 events into viewer events and classifies pointer
// gestures.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a translated event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
	EventTouchDown
	EventTouchMove
	EventTouchUp
)

// Mouse buttons.
const (
	ButtonLeft  = sdl.BUTTON_LEFT
	ButtonRight = sdl.BUTTON_RIGHT
)

// Event is a processed input event. Positions are window pixels.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	X, Y   float32
	DX, DY float32 // relative motion for moves, scroll amount for wheel
	Button uint8
	Finger int64
}

// Input polls SDL and buffers the translated events of one frame.
type Input struct {
	events []Event
	width  float32
	height float32
}

// New creates an input handler for a window of the given size.
func New(width, height int) *Input {
	return &Input{
		events: make([]Event, 0, 16),
		width:  float32(width),
		height: float32(height),
	}
}

// Update polls SDL events and converts them.
// Returns true if the application should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		ev, ok := i.Translate(event)
		if !ok {
			continue
		}
		i.events = append(i.events, ev)
		if ev.Type == EventQuit {
			return true
		}
	}
	return false
}

// Translate converts one SDL event. Mouse events that SDL synthesizes from
// touches are dropped so each touch is seen once.
func (i *Input) Translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.width, i.height = float32(e.Data1), float32(e.Data2)
			return Event{Type: EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)}, true
		}

	case *sdl.KeyboardEvent:
		switch e.Type {
		case sdl.KEYDOWN:
			return Event{Type: EventKeyDown, Key: e.Keysym.Scancode}, true
		case sdl.KEYUP:
			return Event{Type: EventKeyUp, Key: e.Keysym.Scancode}, true
		}

	case *sdl.MouseMotionEvent:
		if e.Which == sdl.TOUCH_MOUSEID {
			return Event{}, false
		}
		return Event{
			Type: EventMouseMove,
			X:    float32(e.X),
			Y:    float32(e.Y),
			DX:   float32(e.XRel),
			DY:   float32(e.YRel),
		}, true

	case *sdl.MouseButtonEvent:
		if e.Which == sdl.TOUCH_MOUSEID {
			return Event{}, false
		}
		t := EventMouseUp
		if e.Type == sdl.MOUSEBUTTONDOWN {
			t = EventMouseDown
		}
		return Event{Type: t, X: float32(e.X), Y: float32(e.Y), Button: e.Button}, true

	case *sdl.MouseWheelEvent:
		if e.Which == sdl.TOUCH_MOUSEID {
			return Event{}, false
		}
		dy := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			dy = -dy
		}
		return Event{Type: EventMouseWheel, DX: float32(e.X), DY: dy}, true

	case *sdl.TouchFingerEvent:
		// Finger coordinates are normalized to the window.
		ev := Event{
			X:      e.X * i.width,
			Y:      e.Y * i.height,
			DX:     e.DX * i.width,
			DY:     e.DY * i.height,
			Finger: int64(e.FingerID),
		}
		switch e.Type {
		case sdl.FINGERDOWN:
			ev.Type = EventTouchDown
		case sdl.FINGERMOTION:
			ev.Type = EventTouchMove
		case sdl.FINGERUP:
			ev.Type = EventTouchUp
		default:
			return Event{}, false
		}
		return ev, true
	}

	return Event{}, false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Size returns the last known window size.
func (i *Input) Size() (width, height float32) {
	return i.width, i.height
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
