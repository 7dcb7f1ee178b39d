package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/floorview/internal/engine/frame"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestClassifierClick(t *testing.T) {
	tests := []struct {
		name      string
		moves     [][2]float32
		wantClick bool
	}{
		{"no movement", nil, true},
		{"within threshold", [][2]float32{{103, 204}, {105, 195}}, true},
		{"exactly threshold", [][2]float32{{105, 205}}, true},
		{"x beyond threshold", [][2]float32{{106, 200}}, false},
		{"y beyond threshold", [][2]float32{{100, 194}}, false},
		{"moved away and back", [][2]float32{{120, 200}, {100, 200}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(frame.New(epoch))
			c.Down(100, 200)
			for _, m := range tt.moves {
				c.Move(m[0], m[1])
			}
			click, ok := c.Up(101, 201)
			assert.Equal(t, tt.wantClick, ok)
			if ok {
				assert.Equal(t, Click{X: 101, Y: 201}, click)
			}
		})
	}
}

func TestClassifierSettleClearsDrag(t *testing.T) {
	sched := frame.New(epoch)
	c := NewClassifier(sched)

	c.Down(0, 0)
	c.Move(50, 0)
	_, ok := c.Up(50, 0)
	require.False(t, ok)
	assert.True(t, c.Dragging())

	sched.Tick(epoch.Add(99 * time.Millisecond))
	assert.True(t, c.Dragging())

	sched.Tick(epoch.Add(100 * time.Millisecond))
	assert.False(t, c.Dragging())

	// Moves without a press are ignored after the gesture settled.
	c.Move(500, 500)
	assert.False(t, c.Dragging())
}

func TestClassifierDownCancelsPendingSettle(t *testing.T) {
	sched := frame.New(epoch)
	c := NewClassifier(sched)

	c.Down(0, 0)
	c.Up(0, 0)
	sched.Tick(epoch.Add(50 * time.Millisecond))

	c.Down(10, 10)
	c.Move(30, 10)
	sched.Tick(epoch.Add(200 * time.Millisecond))

	// The earlier settle must not wipe the drag in progress.
	assert.True(t, c.Dragging())
	_, ok := c.Up(30, 10)
	assert.False(t, ok)
}

func TestDispatcherRemove(t *testing.T) {
	d := NewDispatcher()
	var moves, ends int
	mv := d.OnMove(func(Pointer) { moves++ })
	var end Subscription
	end = d.OnEnd(func(Pointer) {
		ends++
		end.Remove()
	})
	require.Equal(t, 2, d.Len())

	d.Move(Pointer{X: 1})
	d.End(Pointer{})
	d.End(Pointer{})
	assert.Equal(t, 1, moves)
	assert.Equal(t, 1, ends)
	assert.Equal(t, 1, d.Len())

	mv.Remove()
	mv.Remove()
	d.Move(Pointer{})
	assert.Equal(t, 1, moves)
	assert.Zero(t, d.Len())
}

func TestDispatcherRemovedDuringDispatch(t *testing.T) {
	d := NewDispatcher()
	var second Subscription
	called := false
	d.OnMove(func(Pointer) { second.Remove() })
	second = d.OnMove(func(Pointer) { called = true })

	d.Move(Pointer{})
	assert.False(t, called)
}

func TestTranslateTouchScalesToWindow(t *testing.T) {
	in := New(800, 600)
	ev, ok := in.Translate(&sdl.TouchFingerEvent{Type: sdl.FINGERDOWN, FingerID: 3, X: 0.5, Y: 0.25})
	require.True(t, ok)
	assert.Equal(t, EventTouchDown, ev.Type)
	assert.Equal(t, int64(3), ev.Finger)
	assert.InDelta(t, 400, ev.X, 1e-4)
	assert.InDelta(t, 150, ev.Y, 1e-4)
}

func TestTranslateResizeUpdatesTouchScale(t *testing.T) {
	in := New(800, 600)
	_, ok := in.Translate(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESIZED, Data1: 400, Data2: 300})
	require.True(t, ok)

	ev, ok := in.Translate(&sdl.TouchFingerEvent{Type: sdl.FINGERMOTION, X: 1, Y: 1})
	require.True(t, ok)
	assert.Equal(t, EventTouchMove, ev.Type)
	assert.InDelta(t, 400, ev.X, 1e-4)
	assert.InDelta(t, 300, ev.Y, 1e-4)
}

func TestTranslateDropsSynthesizedMouse(t *testing.T) {
	in := New(800, 600)
	_, ok := in.Translate(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Which: sdl.TOUCH_MOUSEID})
	assert.False(t, ok)

	ev, ok := in.Translate(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: ButtonRight, X: 5, Y: 6})
	require.True(t, ok)
	assert.Equal(t, EventMouseDown, ev.Type)
	assert.Equal(t, uint8(ButtonRight), ev.Button)
}

func TestTranslateWheelFlipped(t *testing.T) {
	in := New(800, 600)
	ev, ok := in.Translate(&sdl.MouseWheelEvent{Y: 2, Direction: sdl.MOUSEWHEEL_FLIPPED})
	require.True(t, ok)
	assert.Equal(t, float32(-2), ev.DY)
}
