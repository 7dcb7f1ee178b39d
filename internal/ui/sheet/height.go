package sheet

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHeight resolves a CSS-style height such as "70vh" or "200px" against
// the viewport height. A bare number is taken as pixels.
func ParseHeight(value string, viewportH float32) (float32, error) {
	s := strings.TrimSpace(strings.ToLower(value))
	unit := float32(1)
	switch {
	case strings.HasSuffix(s, "vh"):
		s = strings.TrimSuffix(s, "vh")
		unit = viewportH / 100
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, fmt.Errorf("invalid height %q: %w", value, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid height %q: negative", value)
	}
	return float32(v) * unit, nil
}

// Heights are unresolved sheet heights as written in configuration.
type Heights struct {
	Min     string `yaml:"min"`
	Initial string `yaml:"initial"`
	Max     string `yaml:"max"`
}

// Resolve converts the heights to pixels for the viewport. An empty Initial
// leaves Bounds.Initial at zero.
func (h Heights) Resolve(viewportH float32) (Bounds, error) {
	var b Bounds
	var err error
	if b.Min, err = ParseHeight(h.Min, viewportH); err != nil {
		return Bounds{}, fmt.Errorf("min: %w", err)
	}
	if b.Max, err = ParseHeight(h.Max, viewportH); err != nil {
		return Bounds{}, fmt.Errorf("max: %w", err)
	}
	if h.Initial != "" {
		if b.Initial, err = ParseHeight(h.Initial, viewportH); err != nil {
			return Bounds{}, fmt.Errorf("initial: %w", err)
		}
	}
	if b.Max < b.Min {
		return Bounds{}, fmt.Errorf("max height %.0fpx below min %.0fpx", b.Max, b.Min)
	}
	return b, nil
}
