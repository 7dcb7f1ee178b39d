// Package viewer wires picking, highlighting, camera focus and the info sheet
// into one interactive floor map driven by input events and frame ticks.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/floorview/internal/config"
	"github.com/Faultbox/floorview/internal/engine/camera"
	"github.com/Faultbox/floorview/internal/engine/focus"
	"github.com/Faultbox/floorview/internal/engine/frame"
	"github.com/Faultbox/floorview/internal/engine/highlight"
	"github.com/Faultbox/floorview/internal/engine/input"
	"github.com/Faultbox/floorview/internal/engine/picking"
	"github.com/Faultbox/floorview/internal/engine/scenegraph"
	"github.com/Faultbox/floorview/internal/poi"
	"github.com/Faultbox/floorview/internal/ui/sheet"
	"github.com/Faultbox/floorview/pkg/math"
)

// Pointer ids that are not touch fingers.
const (
	mousePointer int64 = -1

	// touchButton marks a pointer driven by a finger instead of a mouse button.
	touchButton uint8 = 0xff
)

// Resolver looks up area metadata. It is called off the frame goroutine.
type Resolver interface {
	Resolve(ctx context.Context, areaID string) (poi.POI, error)
}

// Viewer is the interactive floor map. All methods must be called from the
// frame goroutine.
type Viewer struct {
	OnAreaPicked         func(areaID string)
	OnFocusComplete      func(areaID string)
	OnSheetClose         func()
	OnSheetHeightChanged func(height float32)

	cfg      *config.Config
	log      *zap.Logger
	sched    *frame.Scheduler
	resolver Resolver
	timeout  time.Duration

	controls    *camera.Controls
	classifier  *input.Classifier
	highlighter *highlight.Controller
	animator    *focus.Animator
	pointers    *input.Dispatcher
	sheet       *sheet.Controller
	heights     sheet.Heights
	panel       Panel
	panelSwitch frame.Handle

	root     *scenegraph.Node
	selected string
	width    float32
	height   float32

	floorState

	// Pointer routing. A gesture belongs either to the sheet or to the scene.
	sheetActive  bool
	sheetPointer int64
	sceneActive  bool
	scenePointer int64
	sceneButton  uint8
	lastPointer  math.Vec2

	ctx     context.Context
	stop    context.CancelFunc
	results chan resolution
	seq     uint64
	cancel  context.CancelFunc
}

// New creates a viewer and loads the default floor.
func New(cfg *config.Config, sched *frame.Scheduler, resolver Resolver, log *zap.Logger) (*Viewer, error) {
	hl, err := highlightConfig(cfg.Highlight)
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		cfg:         cfg,
		log:         log,
		sched:       sched,
		resolver:    resolver,
		timeout:     cfg.API.Timeout,
		classifier:  input.NewClassifier(sched),
		highlighter: highlight.New(hl),
		animator:    focus.New(sched, log.Named("focus")),
		pointers:    input.NewDispatcher(),
		width:       float32(cfg.Window.Width),
		height:      float32(cfg.Window.Height),
		results:     make(chan resolution, 4),
	}
	v.ctx, v.stop = context.WithCancel(context.Background())

	v.classifier.Threshold = cfg.Interaction.DragThreshold
	v.classifier.Settle = cfg.Interaction.SettleDelay
	v.animator.Duration = cfg.Focus.Duration
	v.animator.OnComplete = v.focusComplete

	v.controls = newControls(cfg.Camera)
	v.controls.OnUserInput = v.animator.Cancel

	v.heights = sheet.Heights{
		Min:     cfg.Sheet.MinHeight,
		Initial: cfg.Sheet.InitialHeight,
		Max:     cfg.Sheet.MaxHeight,
	}
	bounds, err := v.heights.Resolve(v.height)
	if err != nil {
		return nil, fmt.Errorf("sheet heights: %w", err)
	}
	v.sheet = sheet.New(bounds, v.pointers, cfg.Sheet.Gestures)
	v.sheet.CloseThreshold = cfg.Sheet.CloseThreshold
	v.sheet.OnClose = v.sheetClosed
	v.sheet.OnHeightChanged = func(h float32) {
		if v.OnSheetHeightChanged != nil {
			v.OnSheetHeightChanged(h)
		}
	}

	if err := v.loadFloor(cfg.DefaultFloor()); err != nil {
		v.stop()
		return nil, err
	}
	return v, nil
}

func highlightConfig(c config.HighlightConfig) (highlight.Config, error) {
	rgb, err := config.ParseColor(c.Color)
	if err != nil {
		return highlight.Config{}, fmt.Errorf("highlight color: %w", err)
	}
	return highlight.Config{
		Step:      c.Step,
		Floor:     c.Floor,
		Ceiling:   c.Ceiling,
		Intensity: c.Intensity,
		Color:     scenegraph.ColorFromHex(rgb),
	}, nil
}

func newControls(c config.CameraConfig) *camera.Controls {
	ctrl := camera.NewControls(camera.Pose{
		Position: math.Vec3From(c.Position),
		Target:   math.Vec3From(c.Target),
	})
	ctrl.FOV = c.FOV * math32.Pi / 180
	ctrl.MinDistance = c.MinDistance
	ctrl.MaxDistance = c.MaxDistance
	ctrl.RotateSpeed = c.RotateSpeed
	ctrl.PanSpeed = c.PanSpeed
	ctrl.ZoomSpeed = c.ZoomSpeed
	return ctrl
}

// Close stops pending metadata lookups, any sheet drag in progress and the
// layout watcher. It is safe to call more than once.
func (v *Viewer) Close() {
	v.stop()
	v.animator.Cancel()
	v.sheet.Interrupt()
	v.sheetActive = false
	v.stopWatching()
}

// Scene returns the current scene root.
func (v *Viewer) Scene() *scenegraph.Node {
	return v.root
}

// Camera returns the camera controls.
func (v *Viewer) Camera() *camera.Controls {
	return v.controls
}

// Selected returns the selected area, or "" when nothing is selected.
func (v *Viewer) Selected() string {
	return v.selected
}

// Sheet returns the info sheet state machine.
func (v *Viewer) Sheet() *sheet.Controller {
	return v.sheet
}

// Size returns the viewport size in pixels.
func (v *Viewer) Size() (width, height float32) {
	return v.width, v.height
}

// Frame advances the viewer to now: it applies finished metadata lookups and
// layout reloads, runs due callbacks and recomputes the highlight.
func (v *Viewer) Frame(now time.Time) {
	v.drainResults()
	v.pollReload()
	v.sched.Tick(now)
	v.highlighter.Apply(v.root, v.selected)
}

// Resize updates the viewport and re-resolves the sheet heights.
func (v *Viewer) Resize(width, height float32) {
	v.width, v.height = width, height
	if v.sheetActive {
		v.sheet.Interrupt()
		v.sheetActive = false
	}
	bounds, err := v.heights.Resolve(height)
	if err != nil {
		v.log.Warn("keeping sheet heights", zap.Error(err))
		return
	}
	v.sheet.SetBounds(bounds)
}

// HandleEvent routes one input event.
func (v *Viewer) HandleEvent(ev input.Event) {
	switch ev.Type {
	case input.EventWindowResize:
		v.Resize(float32(ev.Width), float32(ev.Height))
	case input.EventMouseDown:
		v.pointerDown(mousePointer, ev.Button, ev.X, ev.Y)
	case input.EventMouseMove:
		v.pointerMove(mousePointer, ev.X, ev.Y)
	case input.EventMouseUp:
		v.pointerUp(mousePointer, ev.X, ev.Y)
	case input.EventMouseWheel:
		v.controls.Zoom(ev.DY)
	case input.EventTouchDown:
		v.pointerDown(ev.Finger, touchButton, ev.X, ev.Y)
	case input.EventTouchMove:
		v.pointerMove(ev.Finger, ev.X, ev.Y)
	case input.EventTouchUp:
		v.pointerUp(ev.Finger, ev.X, ev.Y)
	case input.EventKeyDown:
		v.handleKey(ev.Key)
	}
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	switch {
	case key == sdl.SCANCODE_ESCAPE:
		v.ClearSelection()
	case key >= sdl.SCANCODE_1 && key <= sdl.SCANCODE_9:
		i := int(key - sdl.SCANCODE_1)
		levels := v.cfg.Floors.Levels
		if i >= len(levels) {
			return
		}
		if err := v.SwitchFloor(levels[i].ID); err != nil {
			v.log.Warn("floor switch failed", zap.String("floor", levels[i].ID), zap.Error(err))
		}
	}
}

func (v *Viewer) pointerDown(id int64, button uint8, x, y float32) {
	if v.sheetActive || v.sceneActive {
		return
	}

	if h := v.sheet.Height(); h > 0 {
		body := sheet.PanelRect(h, v.width, v.height)
		if sheet.HandleRect(body).Contains(x, y) && v.sheet.DragStart(y) {
			v.sheetActive = true
			v.sheetPointer = id
			return
		}
		if body.Contains(x, y) {
			return
		}
	}

	if button != input.ButtonLeft && button != input.ButtonRight && button != touchButton {
		return
	}
	v.sceneActive = true
	v.scenePointer = id
	v.sceneButton = button
	v.lastPointer = math.Vec2{X: x, Y: y}
	v.classifier.Down(x, y)
}

func (v *Viewer) pointerMove(id int64, x, y float32) {
	if v.sheetActive && id == v.sheetPointer {
		v.pointers.Move(input.Pointer{ID: id, X: x, Y: y})
		return
	}
	if !v.sceneActive || id != v.scenePointer {
		return
	}

	dx, dy := x-v.lastPointer.X, y-v.lastPointer.Y
	v.lastPointer = math.Vec2{X: x, Y: y}
	v.classifier.Move(x, y)
	if dx == 0 && dy == 0 {
		return
	}

	// Left button pans; right button and one-finger touch orbit.
	switch v.sceneButton {
	case input.ButtonLeft:
		v.controls.Pan(dx, dy, v.height)
	default:
		v.controls.Rotate(dx, dy, v.height)
	}
}

func (v *Viewer) pointerUp(id int64, x, y float32) {
	if v.sheetActive && id == v.sheetPointer {
		v.sheetActive = false
		v.pointers.End(input.Pointer{ID: id, X: x, Y: y})
		return
	}
	if !v.sceneActive || id != v.scenePointer {
		return
	}
	v.sceneActive = false

	click, ok := v.classifier.Up(x, y)
	if ok && v.sceneButton != input.ButtonRight {
		v.Click(click.X, click.Y)
	}
}

// Click picks the area under a window position and selects it. Clicks on
// empty space and clicks during a floor transition are ignored.
func (v *Viewer) Click(x, y float32) {
	if v.transitioning {
		v.log.Debug("ignoring click during floor transition")
		return
	}
	hit, ok := picking.Pick(x, y, v.width, v.height, v.controls, v.root)
	if !ok {
		v.log.Debug("no area under pointer", zap.Float32("x", x), zap.Float32("y", y))
		return
	}
	v.log.Info("area picked",
		zap.String("area", hit.ID),
		zap.Float32("distance", hit.Distance),
	)
	v.selectArea(hit.Node, hit.ID)
}

// SelectArea selects an area by name as if it had been picked.
func (v *Viewer) SelectArea(name string) bool {
	n := scenegraph.FindMesh(v.root, name)
	if n == nil {
		v.log.Warn("area not found", zap.String("area", name))
		return false
	}
	v.selectArea(n, picking.AreaID(n))
	return true
}

func (v *Viewer) selectArea(n *scenegraph.Node, areaID string) {
	previous := v.selected
	v.selected = areaID
	if v.OnAreaPicked != nil {
		v.OnAreaPicked(areaID)
	}

	v.showPanel(areaID, previous)
	v.animator.Focus(n, v.controls)
	v.resolve(areaID)
}

// FocusArea moves the camera onto the named area without changing the
// selection. It reports whether the area exists.
func (v *Viewer) FocusArea(name string) bool {
	n := scenegraph.FindMesh(v.root, name)
	if n == nil {
		v.log.Warn("cannot focus missing area", zap.String("area", name))
		return false
	}
	v.animator.Focus(n, v.controls)
	return true
}

// ClearSelection deselects the area and hides the panel.
func (v *Viewer) ClearSelection() {
	v.selected = ""
	v.cancelResolve()
	v.hidePanel()
}

func (v *Viewer) focusComplete(n *scenegraph.Node) {
	id := picking.AreaID(n)
	v.log.Debug("focus complete", zap.String("area", id))
	if v.OnFocusComplete != nil {
		v.OnFocusComplete(id)
	}
}

func (v *Viewer) sheetClosed() {
	v.log.Debug("sheet dismissed", zap.String("area", v.selected))
	v.selected = ""
	v.cancelResolve()
	v.panel = Panel{}
	if v.OnSheetClose != nil {
		v.OnSheetClose()
	}
}
