// Package highlight applies the per-frame selection look to scene materials.
package highlight

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/floorview/internal/engine/scenegraph"
)

// Config tunes the highlight effect.
type Config struct {
	Step      float32          // opacity change per frame
	Floor     float32          // lowest opacity of unselected meshes
	Ceiling   float32          // highest opacity of the selected mesh
	Intensity float32          // emissive intensity of the selected mesh
	Color     scenegraph.Color // emissive colour of the selected mesh
}

// DefaultConfig returns the standard green highlight.
func DefaultConfig() Config {
	return Config{
		Step:      0.5,
		Floor:     0.1,
		Ceiling:   1.0,
		Intensity: 2.0,
		Color:     scenegraph.ColorFromHex(0x00ff00),
	}
}

// Controller derives mesh material state from the selected area.
type Controller struct {
	cfg Config
}

// New creates a controller.
func New(cfg Config) *Controller {
	return &Controller{cfg: cfg}
}

// Apply updates every mesh under root for the current selection. It is
// called once per frame; an empty selection dims everything.
//
// Opacity moves by Step per call, so after a selection change meshes settle
// at Floor or Ceiling within a few frames and stay there.
func (c *Controller) Apply(root *scenegraph.Node, selected string) {
	if root == nil {
		return
	}

	root.TraverseMeshes(func(n *scenegraph.Node) {
		if selected != "" && n.Name == selected {
			return
		}
		for _, m := range n.Materials {
			m.Emissive = scenegraph.Color{}
			m.EmissiveIntensity = 0
			m.Opacity = math32.Max(m.Opacity-c.cfg.Step, c.cfg.Floor)
		}
	})

	if selected == "" {
		return
	}

	root.TraverseMeshes(func(n *scenegraph.Node) {
		if n.Name != selected {
			return
		}
		for _, m := range n.Materials {
			m.Emissive = c.cfg.Color
			m.EmissiveIntensity = c.cfg.Intensity
			m.Opacity = math32.Min(m.Opacity+c.cfg.Step, c.cfg.Ceiling)
		}
	})
}
