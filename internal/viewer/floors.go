package viewer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/floorview/internal/config"
	"github.com/Faultbox/floorview/internal/engine/frame"
	"github.com/Faultbox/floorview/internal/engine/scenegraph"
)

// floorState tracks the loaded floor and its layout watcher.
type floorState struct {
	floor         config.FloorConfig
	transitioning bool
	transition    frame.Handle
	watcher       *scenegraph.Watcher
}

// Floors returns the configured floors.
func (v *Viewer) Floors() []config.FloorConfig {
	return v.cfg.Floors.Levels
}

// Floor returns the floor on display.
func (v *Viewer) Floor() config.FloorConfig {
	return v.floor
}

// Transitioning reports whether a floor switch is still settling. Picking is
// ignored meanwhile.
func (v *Viewer) Transitioning() bool {
	return v.transitioning
}

// SwitchFloor shows another floor. The selection and panel are cleared and
// picking pauses for the configured transition time. On error the current
// floor stays on display.
func (v *Viewer) SwitchFloor(id string) error {
	if id == v.floor.ID {
		return nil
	}
	var next config.FloorConfig
	found := false
	for _, f := range v.cfg.Floors.Levels {
		if f.ID == id {
			next, found = f, true
			break
		}
	}
	if !found {
		return fmt.Errorf("unknown floor %q", id)
	}

	previous := v.floor
	if err := v.loadFloor(next); err != nil {
		return err
	}

	v.ClearSelection()
	v.animator.Cancel()
	v.transitioning = true
	v.transition.Cancel()
	v.transition = v.sched.After(v.cfg.Floors.Transition, func() {
		v.transitioning = false
		v.log.Debug("floor transition finished", zap.String("floor", v.floor.ID))
	})

	v.log.Info("floor switched",
		zap.String("from", previous.ID),
		zap.String("to", next.ID),
	)
	return nil
}

// Reload rebuilds the current floor from its layout file, keeping the
// selection. A broken layout leaves the old scene in place.
func (v *Viewer) Reload() error {
	root, err := scenegraph.LoadLayout(v.floor.Layout)
	if err != nil {
		return fmt.Errorf("reload floor %q: %w", v.floor.ID, err)
	}
	v.root = root
	v.log.Info("floor reloaded", zap.String("floor", v.floor.ID))
	return nil
}

func (v *Viewer) loadFloor(f config.FloorConfig) error {
	root, err := scenegraph.LoadLayout(f.Layout)
	if err != nil {
		return fmt.Errorf("load floor %q: %w", f.ID, err)
	}
	v.root = root
	v.floor = f
	v.watch(f.Layout)

	v.log.Info("floor loaded",
		zap.String("floor", f.ID),
		zap.String("name", f.Name),
		zap.Int("areas", len(scenegraph.Meshes(root))),
	)
	return nil
}

func (v *Viewer) watch(path string) {
	v.stopWatching()
	if !v.cfg.Floors.HotReload {
		return
	}
	w, err := scenegraph.NewWatcher(v.log.Named("watch"), path)
	if err != nil {
		v.log.Warn("layout hot reload disabled", zap.String("path", path), zap.Error(err))
		return
	}
	v.watcher = w
}

func (v *Viewer) stopWatching() {
	if v.watcher == nil {
		return
	}
	if err := v.watcher.Close(); err != nil {
		v.log.Debug("closing layout watcher", zap.Error(err))
	}
	v.watcher = nil
}

// pollReload applies at most one pending layout change per frame.
func (v *Viewer) pollReload() {
	if v.watcher == nil {
		return
	}
	select {
	case path := <-v.watcher.Changes():
		v.log.Debug("layout changed", zap.String("path", path))
		if err := v.Reload(); err != nil {
			v.log.Warn("layout reload failed", zap.Error(err))
		}
	default:
	}
}
