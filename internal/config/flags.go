package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagAPI        = flag.String("api", "", "Metadata API base URL")
	flagFloor      = flag.String("floor", "", "Floor id to show at startup")
	flagLayout     = flag.String("layout", "", "Show a single layout file instead of the configured floors")
	flagWatch      = flag.Bool("watch", false, "Reload layout files when they change")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagNoGestures = flag.Bool("no-gestures", false, "Use a fixed info panel instead of the draggable sheet")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAPI != "" {
		cfg.API.BaseURL = *flagAPI
	}
	if *flagLayout != "" {
		cfg.Floors.Levels = []FloorConfig{{ID: "layout", Name: "Layout", Layout: *flagLayout}}
		cfg.Floors.Default = ""
	}
	if *flagFloor != "" {
		cfg.Floors.Default = *flagFloor
	}
	if *flagWatch {
		cfg.Floors.HotReload = true
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagNoGestures {
		cfg.Sheet.Gestures = false
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
}
