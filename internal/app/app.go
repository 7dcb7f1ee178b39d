// Package app runs the floor viewer: window, render loop and input pump.
package app

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/floorview/internal/config"
	"github.com/Faultbox/floorview/internal/engine/debug"
	"github.com/Faultbox/floorview/internal/engine/frame"
	"github.com/Faultbox/floorview/internal/engine/input"
	"github.com/Faultbox/floorview/internal/engine/renderer"
	"github.com/Faultbox/floorview/internal/engine/scenegraph"
	"github.com/Faultbox/floorview/internal/engine/window"
	"github.com/Faultbox/floorview/internal/logger"
	"github.com/Faultbox/floorview/internal/poi"
	"github.com/Faultbox/floorview/internal/viewer"
)

// App is the running viewer instance.
type App struct {
	cfg      *config.Config
	log      *zap.Logger
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	sched    *frame.Scheduler
	viewer   *viewer.Viewer
	scene    *scenegraph.Node
	shots    *debug.Screenshots
	capture  bool
	title    string
}

// New creates the window, renderer and viewer.
func New(cfg *config.Config) (*App, error) {
	log := logger.Named("app")
	log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	a := &App{
		cfg:   cfg,
		log:   log,
		shots: debug.NewScreenshots(filepath.Join(config.ConfigDir(), "screenshots"), "floorview"),
	}

	// Create window (this also creates OpenGL context)
	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	}, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	bg, err := config.ParseColor(cfg.Window.Background)
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("window background: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	drawW, drawH := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:      drawW,
		Height:     drawH,
		Background: scenegraph.ColorFromHex(bg),
	}, logger.Named("renderer"))
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	winW, winH := a.window.Size()
	a.input = input.New(winW, winH)
	a.sched = frame.New(time.Now())

	client := poi.NewClient(cfg.API.BaseURL,
		poi.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		poi.WithToken(cfg.API.Token),
	)
	resolver := poi.NewResolver(client, logger.Named("poi"))

	a.viewer, err = viewer.New(cfg, a.sched, resolver, logger.Named("viewer"))
	if err != nil {
		a.renderer.Close()
		a.window.Close()
		return nil, fmt.Errorf("failed to create viewer: %w", err)
	}
	a.viewer.Resize(float32(winW), float32(winH))
	a.viewer.OnAreaPicked = func(id string) {
		a.log.Debug("area picked", zap.String("area", id))
	}
	a.viewer.OnSheetClose = func() {
		a.log.Debug("info sheet dismissed")
	}
	a.updateTitle()

	log.Info("viewer initialized successfully")
	return a, nil
}

// Run starts the main loop and returns when the window is closed.
func (a *App) Run() error {
	a.running = true

	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting main loop")

	for a.running {
		// 1. Process input
		if a.input.Update() {
			a.running = false
			break
		}
		for _, event := range a.input.Events() {
			switch {
			case event.Type == input.EventWindowResize:
				a.renderer.Resize(a.window.DrawableSize())
			case event.Type == input.EventKeyDown && event.Key == sdl.SCANCODE_F12:
				a.capture = true
				continue
			}
			a.viewer.HandleEvent(event)
		}

		// 2. Advance animations, lookups and timers
		a.viewer.Frame(time.Now())
		if root := a.viewer.Scene(); root != a.scene {
			a.renderer.Prune(root)
			a.scene = root
		}
		a.updateTitle()

		// 3. Render
		a.render()
		if a.capture {
			a.capture = false
			a.screenshot()
		}

		// 4. Present (swap buffers)
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close cleans up resources.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.viewer != nil {
		a.viewer.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

func (a *App) render() {
	w, h := a.viewer.Size()
	aspect := float32(1)
	if h > 0 {
		aspect = w / h
	}

	a.renderer.Begin()
	a.renderer.DrawScene(a.viewer.Scene(), a.viewer.Camera().ViewProjection(aspect))

	panel := a.viewer.Panel()
	a.renderer.DrawSheet(a.viewer.Sheet().Height(), w, h, panel.Loading || panel.Switching, panel.Message != "")
}

// screenshot saves the frame just rendered, before it is presented.
func (a *App) screenshot() {
	pixels, w, h := a.renderer.ReadPixels()
	label := a.viewer.Floor().ID
	if sel := a.viewer.Selected(); sel != "" {
		label += " " + sel
	}
	path, err := a.shots.Save(label, pixels, w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// updateTitle shows the floor and the resolved area in the window title.
func (a *App) updateTitle() {
	title := fmt.Sprintf("%s - %s", a.cfg.Window.Title, a.viewer.Caption())
	if title == a.title {
		return
	}
	a.title = title
	a.window.SetTitle(title)
}
