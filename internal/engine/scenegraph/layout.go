package scenegraph

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/floorview/pkg/math"
)

// Layout describes one floor of the building as named boxes.
type Layout struct {
	Name   string       `yaml:"name"`
	Groups []LayoutGroup `yaml:"groups"`
	Areas  []LayoutArea  `yaml:"areas"`
}

// LayoutGroup is a transformed container of areas.
type LayoutGroup struct {
	Name     string       `yaml:"name"`
	Position [3]float32   `yaml:"position"`
	Scale    [3]float32   `yaml:"scale"`
	Areas    []LayoutArea `yaml:"areas"`
}

// LayoutArea is a single point of interest volume.
type LayoutArea struct {
	Name        string     `yaml:"name"`
	Min         [3]float32 `yaml:"min"`
	Max         [3]float32 `yaml:"max"`
	Color       string     `yaml:"color"`
	Opacity     *float32   `yaml:"opacity"`
	Transparent bool       `yaml:"transparent"`
}

const defaultAreaColor = 0xd1d5db

// LoadLayout reads a YAML layout file and builds its scene.
func LoadLayout(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing layout %s: %w", path, err)
	}
	return l.Build()
}

// Build creates the scene graph for the layout. Every mesh gets its own
// material instance.
func (l Layout) Build() (*Node, error) {
	root := NewNode(l.Name)

	for _, g := range l.Groups {
		group := NewNode(g.Name)
		group.Position = math.Vec3From(g.Position)
		if g.Scale != [3]float32{} {
			group.Scale = math.Vec3From(g.Scale)
		}
		for _, a := range g.Areas {
			mesh, err := a.build()
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", g.Name, err)
			}
			group.Add(mesh)
		}
		root.Add(group)
	}

	for _, a := range l.Areas {
		mesh, err := a.build()
		if err != nil {
			return nil, err
		}
		root.Add(mesh)
	}

	IsolateMaterials(root)
	return root, nil
}

func (a LayoutArea) build() (*Node, error) {
	min := math.Vec3From(a.Min)
	max := math.Vec3From(a.Max)
	if max.X < min.X || max.Y < min.Y || max.Z < min.Z {
		return nil, fmt.Errorf("area %q: max %v below min %v", a.Name, a.Max, a.Min)
	}

	hex := uint32(defaultAreaColor)
	if a.Color != "" {
		v, err := parseHexColor(a.Color)
		if err != nil {
			return nil, fmt.Errorf("area %q: %w", a.Name, err)
		}
		hex = v
	}

	mat := NewMaterial(ColorFromHex(hex))
	mat.Name = a.Name
	mat.Transparent = a.Transparent
	if a.Opacity != nil {
		mat.Opacity = math.Clamp(*a.Opacity, 0, 1)
	}

	return NewMesh(a.Name, BoxGeometry(min, max), mat), nil
}

// parseHexColor accepts "#rrggbb", "0xrrggbb" or "rrggbb".
func parseHexColor(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return uint32(v), nil
}
