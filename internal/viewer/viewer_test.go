package viewer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/floorview/internal/config"
	"github.com/Faultbox/floorview/internal/engine/frame"
	"github.com/Faultbox/floorview/internal/engine/input"
	"github.com/Faultbox/floorview/internal/engine/scenegraph"
	"github.com/Faultbox/floorview/internal/poi"
	"github.com/Faultbox/floorview/internal/ui/sheet"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const floor1 = `name: Floor 1
areas:
  - name: Shop
    min: [-1, 0, -1]
    max: [1, 1, 1]
  - name: Cafe
    min: [3, 0, -1]
    max: [5, 1, 1]
    color: "#f59e0b"
`

const floor2 = `name: Floor 2
areas:
  - name: Lobby
    min: [-2, 0, -2]
    max: [2, 0.5, 2]
`

// Window centre of the default 1280x720 viewport; the default camera looks
// straight down on the origin.
const cx, cy = 640, 360

type fakeResolver struct {
	mu    sync.Mutex
	calls []string
	data  map[string]poi.POI
	err   error
}

func (f *fakeResolver) Resolve(_ context.Context, areaID string) (poi.POI, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, areaID)
	if f.err != nil {
		return poi.POI{}, f.err
	}
	p, ok := f.data[areaID]
	if !ok {
		return poi.POI{}, poi.ErrNotFound
	}
	return p, nil
}

func newResolver() *fakeResolver {
	return &fakeResolver{data: map[string]poi.POI{
		"Shop": {ID: "Shop", Name: "Gift Shop"},
		"Cafe": {ID: "Cafe", Name: "Cafe Info"},
	}}
}

func writeLayout(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Floors.Levels = []config.FloorConfig{
		{ID: "1", Name: "Floor 1", Layout: writeLayout(t, dir, "floor1.yaml", floor1)},
		{ID: "2", Name: "Floor 2", Layout: writeLayout(t, dir, "floor2.yaml", floor2)},
		{ID: "3", Name: "Broken", Layout: filepath.Join(dir, "missing.yaml")},
	}
	return cfg
}

func newViewer(t *testing.T, cfg *config.Config, res Resolver) *Viewer {
	t.Helper()
	v, err := New(cfg, frame.New(t0), res, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return v
}

// awaitLookup applies the next finished metadata lookup.
func awaitLookup(t *testing.T, v *Viewer) {
	t.Helper()
	select {
	case r := <-v.results:
		v.applyResolution(r)
	case <-time.After(2 * time.Second):
		t.Fatal("metadata lookup did not finish")
	}
}

func click(v *Viewer, button uint8, x, y float32) {
	v.HandleEvent(input.Event{Type: input.EventMouseDown, Button: button, X: x, Y: y})
	v.HandleEvent(input.Event{Type: input.EventMouseUp, Button: button, X: x, Y: y})
}

func touch(v *Viewer, finger int64, from, to float32, x float32) {
	v.HandleEvent(input.Event{Type: input.EventTouchDown, Finger: finger, X: x, Y: from})
	v.HandleEvent(input.Event{Type: input.EventTouchMove, Finger: finger, X: x, Y: to})
	v.HandleEvent(input.Event{Type: input.EventTouchUp, Finger: finger, X: x, Y: to})
}

func TestClickSelectsArea(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())

	var picked []string
	v.OnAreaPicked = func(id string) { picked = append(picked, id) }

	click(v, input.ButtonLeft, cx, cy)

	assert.Equal(t, []string{"Shop"}, picked)
	assert.Equal(t, "Shop", v.Selected())
	assert.True(t, v.Panel().Visible)
	assert.True(t, v.Panel().Loading)
	assert.Equal(t, sheet.Open, v.Sheet().State())
	assert.Equal(t, float32(200), v.Sheet().Height())

	awaitLookup(t, v)
	assert.False(t, v.Panel().Loading)
	assert.Equal(t, "Gift Shop", v.Panel().Title())
}

func TestHighlightFollowsSelection(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	click(v, input.ButtonLeft, cx, cy)
	v.Frame(t0)

	shop := scenegraph.FindMesh(v.Scene(), "Shop").Materials[0]
	cafe := scenegraph.FindMesh(v.Scene(), "Cafe").Materials[0]
	assert.Equal(t, float32(2), shop.EmissiveIntensity)
	assert.Equal(t, float32(1), shop.Opacity)
	assert.Equal(t, float32(0), cafe.EmissiveIntensity)
	assert.Equal(t, float32(0.5), cafe.Opacity)
}

func TestClickOnEmptySpaceKeepsSelection(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	click(v, input.ButtonLeft, cx, cy)
	click(v, input.ButtonLeft, 0, 0)
	assert.Equal(t, "Shop", v.Selected())
}

func TestDragDoesNotPick(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	before := v.Camera().Pose()

	v.HandleEvent(input.Event{Type: input.EventMouseDown, Button: input.ButtonLeft, X: cx, Y: cy})
	v.HandleEvent(input.Event{Type: input.EventMouseMove, X: cx + 20, Y: cy})
	v.HandleEvent(input.Event{Type: input.EventMouseUp, Button: input.ButtonLeft, X: cx + 20, Y: cy})

	assert.Empty(t, v.Selected())
	assert.NotEqual(t, before.Position, v.Camera().Pose().Position)
}

func TestRightClickDoesNotPick(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	click(v, input.ButtonRight, cx, cy)
	assert.Empty(t, v.Selected())
}

func TestTouchTapSelectsArea(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	touch(v, 3, cy, cy, cx)
	assert.Equal(t, "Shop", v.Selected())
}

func TestFocusCompletes(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	var focused []string
	v.OnFocusComplete = func(id string) { focused = append(focused, id) }

	click(v, input.ButtonLeft, cx, cy)
	v.Frame(t0.Add(500 * time.Millisecond))
	assert.Empty(t, focused)
	v.Frame(t0.Add(1100 * time.Millisecond))

	assert.Equal(t, []string{"Shop"}, focused)
	pose := v.Camera().Pose()
	assert.InDelta(t, 0.5, pose.Target.Y, 1e-4)
	assert.InDelta(t, 6.5, pose.Position.Y, 1e-4)
}

func TestUserInputCancelsFocus(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	completed := false
	v.OnFocusComplete = func(string) { completed = true }

	click(v, input.ButtonLeft, cx, cy)
	v.HandleEvent(input.Event{Type: input.EventMouseWheel, DY: 1})
	v.Frame(t0.Add(2 * time.Second))

	assert.False(t, completed)
	assert.False(t, v.animator.Active())
}

func TestFocusArea(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	assert.False(t, v.FocusArea("Nowhere"))
	assert.True(t, v.FocusArea("Cafe"))
	assert.Empty(t, v.Selected())

	v.Frame(t0.Add(time.Second))
	assert.InDelta(t, 4, v.Camera().Pose().Target.X, 1e-4)
}

func TestSelectAreaByName(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	assert.False(t, v.SelectArea("Nowhere"))
	assert.True(t, v.SelectArea("Cafe"))
	assert.Equal(t, "Cafe", v.Selected())
}

func TestNotFoundHidesPanel(t *testing.T) {
	res := newResolver()
	delete(res.data, "Shop")
	v := newViewer(t, testConfig(t), res)

	click(v, input.ButtonLeft, cx, cy)
	awaitLookup(t, v)

	assert.False(t, v.Panel().Visible)
	assert.Equal(t, sheet.Closed, v.Sheet().State())
	assert.Equal(t, "Shop", v.Selected())
}

func TestLookupFailureShowsPlaceholder(t *testing.T) {
	res := newResolver()
	res.err = &poi.APIError{Status: 500, Message: "boom"}
	v := newViewer(t, testConfig(t), res)

	click(v, input.ButtonLeft, cx, cy)
	awaitLookup(t, v)

	p := v.Panel()
	assert.True(t, p.Visible)
	assert.False(t, p.Loading)
	assert.Equal(t, poi.Placeholder("Shop"), p.Info)
	assert.NotEmpty(t, p.Message)

	v.DismissMessage()
	assert.Empty(t, v.Panel().Message)
	assert.True(t, v.Panel().Visible)
}

func TestStaleLookupDropped(t *testing.T) {
	res := newResolver()
	v := newViewer(t, testConfig(t), res)

	click(v, input.ButtonLeft, cx, cy)
	require.True(t, v.SelectArea("Cafe"))
	awaitLookup(t, v)
	awaitLookup(t, v)

	assert.Equal(t, "Cafe Info", v.Panel().Title())
	res.mu.Lock()
	assert.ElementsMatch(t, []string{"Shop", "Cafe"}, res.calls)
	res.mu.Unlock()
}

func TestPanelSwitchingState(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	click(v, input.ButtonLeft, cx, cy)
	assert.False(t, v.Panel().Switching)

	require.True(t, v.SelectArea("Cafe"))
	assert.True(t, v.Panel().Switching)

	v.Frame(t0.Add(300 * time.Millisecond))
	assert.False(t, v.Panel().Switching)
}

func TestWithoutResolverUsesPlaceholder(t *testing.T) {
	v := newViewer(t, testConfig(t), nil)
	click(v, input.ButtonLeft, cx, cy)

	p := v.Panel()
	assert.False(t, p.Loading)
	assert.Equal(t, poi.Placeholder("Shop"), p.Info)
}

func TestSheetSwipeClosesPanel(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	closed := 0
	v.OnSheetClose = func() { closed++ }

	click(v, input.ButtonLeft, cx, cy)
	awaitLookup(t, v)

	// Handle strip spans y 520..548 for a 200px sheet in a 720px window.
	touch(v, 1, 530, 700, cx)

	assert.Equal(t, 1, closed)
	assert.Equal(t, sheet.Closed, v.Sheet().State())
	assert.False(t, v.Panel().Visible)
	assert.Empty(t, v.Selected())
	assert.Zero(t, v.pointers.Len())
}

func TestCloseReleasesSheetDrag(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	click(v, input.ButtonLeft, cx, cy)
	awaitLookup(t, v)

	v.HandleEvent(input.Event{Type: input.EventTouchDown, Finger: 1, X: cx, Y: 530})
	require.Equal(t, sheet.Dragging, v.Sheet().State())
	require.NotZero(t, v.pointers.Len())

	v.Close()

	assert.Zero(t, v.pointers.Len())
	assert.Equal(t, sheet.Open, v.Sheet().State())
	assert.False(t, v.sheetActive)
}

func TestCaptionFollowsPanel(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	assert.Equal(t, "Floor 1", v.Caption())

	click(v, input.ButtonLeft, cx, cy)
	assert.Equal(t, "Floor 1", v.Caption())

	awaitLookup(t, v)
	assert.Equal(t, "Floor 1 - Gift Shop", v.Caption())

	touch(v, 1, 530, 700, cx)
	assert.Equal(t, "Floor 1", v.Caption())
}

func TestSheetSnapsBack(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	var heights []float32
	v.OnSheetHeightChanged = func(h float32) { heights = append(heights, h) }

	click(v, input.ButtonLeft, cx, cy)
	touch(v, 1, 530, 470, cx)

	require.GreaterOrEqual(t, len(heights), 3)
	assert.Equal(t, []float32{260, 200}, heights[len(heights)-2:])
	assert.Equal(t, sheet.Open, v.Sheet().State())
	assert.Equal(t, "Shop", v.Selected())
}

func TestTouchOnSheetBodyDoesNotPick(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	click(v, input.ButtonLeft, cx, cy)
	require.True(t, v.SelectArea("Cafe"))

	// Inside the panel, below the handle.
	touch(v, 2, 650, 650, cx)
	assert.Equal(t, "Cafe", v.Selected())
	assert.Equal(t, sheet.Open, v.Sheet().State())
}

func TestFixedSheetIgnoresDrag(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sheet.Gestures = false
	v := newViewer(t, cfg, newResolver())

	click(v, input.ButtonLeft, cx, cy)
	assert.InDelta(t, 504, v.Sheet().Height(), 1e-3)

	touch(v, 1, 720-504+10, 700, cx)
	assert.Equal(t, sheet.Open, v.Sheet().State())
	assert.Equal(t, "Shop", v.Selected())
}

func TestResizeResolvesSheetHeights(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	v.HandleEvent(input.Event{Type: input.EventWindowResize, Width: 1000, Height: 1000})

	w, h := v.Size()
	assert.Equal(t, float32(1000), w)
	assert.Equal(t, float32(1000), h)
	assert.InDelta(t, 700, v.Sheet().Bounds().Max, 1e-3)
}

func TestSwitchFloor(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	click(v, input.ButtonLeft, cx, cy)
	awaitLookup(t, v)

	require.NoError(t, v.SwitchFloor("2"))
	assert.Equal(t, "2", v.Floor().ID)
	assert.Empty(t, v.Selected())
	assert.False(t, v.Panel().Visible)
	assert.Equal(t, sheet.Closed, v.Sheet().State())
	assert.True(t, v.Transitioning())

	click(v, input.ButtonLeft, cx, cy)
	assert.Empty(t, v.Selected(), "picking is paused during the transition")

	v.Frame(t0.Add(time.Second))
	assert.False(t, v.Transitioning())

	click(v, input.ButtonLeft, cx, cy)
	assert.Equal(t, "Lobby", v.Selected())
}

func TestSwitchFloorErrors(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())

	assert.NoError(t, v.SwitchFloor("1"))
	assert.False(t, v.Transitioning())

	assert.Error(t, v.SwitchFloor("9"))
	assert.Error(t, v.SwitchFloor("3"))
	assert.Equal(t, "1", v.Floor().ID)
	assert.NotNil(t, scenegraph.FindMesh(v.Scene(), "Shop"))
}

func TestKeys(t *testing.T) {
	v := newViewer(t, testConfig(t), newResolver())
	click(v, input.ButtonLeft, cx, cy)

	v.HandleEvent(input.Event{Type: input.EventKeyDown, Key: sdl.SCANCODE_ESCAPE})
	assert.Empty(t, v.Selected())
	assert.False(t, v.Panel().Visible)

	v.HandleEvent(input.Event{Type: input.EventKeyDown, Key: sdl.SCANCODE_2})
	assert.Equal(t, "2", v.Floor().ID)
}

func TestReloadKeepsSelection(t *testing.T) {
	cfg := testConfig(t)
	v := newViewer(t, cfg, newResolver())
	click(v, input.ButtonLeft, cx, cy)

	writeLayout(t, filepath.Dir(cfg.Floors.Levels[0].Layout), "floor1.yaml", floor1+`  - name: Kiosk
    min: [-3, 0, 2]
    max: [-2, 1, 3]
`)
	require.NoError(t, v.Reload())
	assert.NotNil(t, scenegraph.FindMesh(v.Scene(), "Kiosk"))
	assert.Equal(t, "Shop", v.Selected())

	writeLayout(t, filepath.Dir(cfg.Floors.Levels[0].Layout), "floor1.yaml", "areas: [")
	assert.Error(t, v.Reload())
	assert.NotNil(t, scenegraph.FindMesh(v.Scene(), "Kiosk"))
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Highlight.Color = "green"
	_, err := New(cfg, frame.New(t0), nil, zap.NewNop())
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Floors.Levels = cfg.Floors.Levels[2:]
	_, err = New(cfg, frame.New(t0), nil, zap.NewNop())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
