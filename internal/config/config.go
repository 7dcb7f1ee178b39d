// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds all viewer settings.
type Config struct {
	Window      WindowConfig      `yaml:"window"`
	Camera      CameraConfig      `yaml:"camera"`
	Interaction InteractionConfig `yaml:"interaction"`
	Highlight   HighlightConfig   `yaml:"highlight"`
	Focus       FocusConfig       `yaml:"focus"`
	Sheet       SheetConfig       `yaml:"sheet"`
	API         APIConfig         `yaml:"api"`
	Floors      FloorsConfig      `yaml:"floors"`
	Logging     LoggingConfig     `yaml:"logging"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width" env:"FLOORVIEW_WIDTH"`
	Height     int    `yaml:"height" env:"FLOORVIEW_HEIGHT"`
	Fullscreen bool   `yaml:"fullscreen" env:"FLOORVIEW_FULLSCREEN"`
	VSync      bool   `yaml:"vsync"`
	Background string `yaml:"background"`
}

// CameraConfig holds the initial pose and orbit limits.
type CameraConfig struct {
	Position    [3]float32 `yaml:"position"`
	Target      [3]float32 `yaml:"target"`
	FOV         float32    `yaml:"fov"` // degrees
	MinDistance float32    `yaml:"min_distance"`
	MaxDistance float32    `yaml:"max_distance"`
	RotateSpeed float32    `yaml:"rotate_speed"`
	PanSpeed    float32    `yaml:"pan_speed"`
	ZoomSpeed   float32    `yaml:"zoom_speed"`
}

// InteractionConfig holds pointer gesture tuning.
type InteractionConfig struct {
	DragThreshold float32       `yaml:"drag_threshold"`
	SettleDelay   time.Duration `yaml:"settle_delay"`
}

// HighlightConfig holds the selection look.
type HighlightConfig struct {
	Color     string  `yaml:"color"`
	Intensity float32 `yaml:"intensity"`
	Step      float32 `yaml:"step"`
	Floor     float32 `yaml:"floor"`
	Ceiling   float32 `yaml:"ceiling"`
}

// FocusConfig holds camera focus animation settings.
type FocusConfig struct {
	Duration time.Duration `yaml:"duration"`
}

// SheetConfig holds the info panel settings. Heights accept "px" and "vh".
type SheetConfig struct {
	Gestures       bool    `yaml:"gestures" env:"FLOORVIEW_SHEET_GESTURES"`
	MinHeight      string  `yaml:"min_height"`
	InitialHeight  string  `yaml:"initial_height"`
	MaxHeight      string  `yaml:"max_height"`
	CloseThreshold float32 `yaml:"close_threshold"`
}

// APIConfig holds the metadata API connection settings.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"FLOORVIEW_API_URL"`
	Timeout time.Duration `yaml:"timeout" env:"FLOORVIEW_API_TIMEOUT"`
	Token   string        `yaml:"token" env:"FLOORVIEW_API_TOKEN"`
}

// FloorsConfig lists the building floors.
type FloorsConfig struct {
	Default    string        `yaml:"default" env:"FLOORVIEW_FLOOR"`
	HotReload  bool          `yaml:"hot_reload"`
	Transition time.Duration `yaml:"transition"`
	Levels     []FloorConfig `yaml:"levels"`
}

// FloorConfig is one selectable floor.
type FloorConfig struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Layout string `yaml:"layout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" env:"FLOORVIEW_LOG_LEVEL"`
	LogFile string `yaml:"log_file" env:"FLOORVIEW_LOG_FILE"`
}

// TelemetryConfig holds trace export settings.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Floorview",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Background: "#b7b3b3",
		},
		Camera: CameraConfig{
			Position:    [3]float32{0, 8, 0},
			Target:      [3]float32{0, 0, 0},
			FOV:         50,
			MinDistance: 0.5,
			MaxDistance: 4,
			RotateSpeed: 0.5,
			PanSpeed:    0.8,
			ZoomSpeed:   0.8,
		},
		Interaction: InteractionConfig{
			DragThreshold: 5,
			SettleDelay:   100 * time.Millisecond,
		},
		Highlight: HighlightConfig{
			Color:     "#00ff00",
			Intensity: 2.0,
			Step:      0.5,
			Floor:     0.1,
			Ceiling:   1.0,
		},
		Focus: FocusConfig{
			Duration: time.Second,
		},
		Sheet: SheetConfig{
			Gestures:       true,
			MinHeight:      "200px",
			MaxHeight:      "70vh",
			CloseThreshold: 100,
		},
		API: APIConfig{
			BaseURL: "http://localhost:3000/api",
			Timeout: 10 * time.Second,
		},
		Floors: FloorsConfig{
			HotReload:  false,
			Transition: time.Second,
			Levels: []FloorConfig{
				{ID: "1", Name: "Floor 1", Layout: "floors/floor1.yaml"},
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the viewer cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Camera.MinDistance <= 0 || c.Camera.MaxDistance < c.Camera.MinDistance {
		errs = append(errs, fmt.Errorf("camera distance range [%g, %g] is invalid", c.Camera.MinDistance, c.Camera.MaxDistance))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera fov %g out of range", c.Camera.FOV))
	}
	if _, err := ParseColor(c.Highlight.Color); err != nil {
		errs = append(errs, fmt.Errorf("highlight color: %w", err))
	}
	if _, err := ParseColor(c.Window.Background); err != nil {
		errs = append(errs, fmt.Errorf("window background: %w", err))
	}
	if len(c.Floors.Levels) == 0 {
		errs = append(errs, errors.New("no floors configured"))
	}
	seen := make(map[string]bool)
	for i, f := range c.Floors.Levels {
		if f.ID == "" || f.Layout == "" {
			errs = append(errs, fmt.Errorf("floor %d needs an id and a layout", i))
			continue
		}
		if seen[f.ID] {
			errs = append(errs, fmt.Errorf("duplicate floor id %q", f.ID))
		}
		seen[f.ID] = true
	}
	if c.Floors.Default != "" && !seen[c.Floors.Default] {
		errs = append(errs, fmt.Errorf("default floor %q is not configured", c.Floors.Default))
	}
	return errors.Join(errs...)
}

// DefaultFloor returns the floor shown at startup: the configured default,
// or the first floor.
func (c *Config) DefaultFloor() FloorConfig {
	for _, f := range c.Floors.Levels {
		if f.ID == c.Floors.Default {
			return f
		}
	}
	if len(c.Floors.Levels) == 0 {
		return FloorConfig{}
	}
	return c.Floors.Levels[0]
}

// ParseColor parses "#rrggbb" or "0xrrggbb" into 0xRRGGBB.
func ParseColor(s string) (uint32, error) {
	h := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "#"), "0x")
	if len(h) != 6 {
		return 0, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid colour %q", s)
	}
	return uint32(v), nil
}
