package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/pelletier/go-toml/v2"
)

// Config is the complete runtime configuration, one section per engine concern.
type Config struct {
	Engine   Engine   `toml:"engine"`
	Window   Window   `toml:"window"`
	Renderer Renderer `toml:"renderer"`
	Scene    Scene    `toml:"scene"`
	Logging  Logging  `toml:"logging"`
	Tracing  Tracing  `toml:"tracing"`
}

// Engine configures the engine loop.
type Engine struct {
	TickRate            int      `toml:"tick_rate"`
	RenderFrameLimit    int      `toml:"render_frame_limit"`
	Profiling           bool     `toml:"profiling"`
	PendingPollInterval Duration `toml:"pending_poll_interval"`
}

// Window configures the host window.
type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Renderer configures the GPU backend.
type Renderer struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode   string `toml:"present_mode"`
	MSAA          int    `toml:"msaa"`
	ForceFallback bool   `toml:"force_fallback"`
}

// Scene configures scene evaluation.
type Scene struct {
	ComputeWorkers     int        `toml:"compute_workers"`
	OctreeMaxCapacity  int        `toml:"octree_max_capacity"`
	OctreeMaxDepth     int        `toml:"octree_max_depth"`
	UseSelectionOctree bool       `toml:"use_selection_octree"`
	CollisionsEnabled  *bool      `toml:"collisions_enabled"`
	CollisionRetries   int        `toml:"collision_retries"`
	ClearColor         [4]float32 `toml:"clear_color"`
	AutoClear          *bool      `toml:"auto_clear"`
}

// Logging configures the logrus logger.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Tracing configures frame span export.
type Tracing struct {
	Enabled     bool    `toml:"enabled"`
	ServiceName string  `toml:"service_name"`
	SampleRatio float64 `toml:"sample_ratio"`
	Pretty      bool    `toml:"pretty"`
}

// Duration is a time.Duration that reads from a TOML string such as "150ms".
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", string(text), err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	yes := true
	return Config{
		Engine: Engine{
			TickRate:            60,
			PendingPollInterval: Duration(150 * time.Millisecond),
		},
		Window: Window{
			Title:  "oxy-scene",
			Width:  1280,
			Height: 720,
		},
		Renderer: Renderer{
			PresentMode: "vsync",
			MSAA:        1,
		},
		Scene: Scene{
			OctreeMaxCapacity: 64,
			OctreeMaxDepth:    2,
			CollisionsEnabled: &yes,
			CollisionRetries:  3,
			ClearColor:        [4]float32{0.2, 0.2, 0.3, 1},
			AutoClear:         &yes,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Tracing: Tracing{
			ServiceName: "oxy-scene",
			SampleRatio: 1,
		},
	}
}

// Load reads and parses a TOML file.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the parsed configuration with defaults applied
//   - error: if the file cannot be read or parsed
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML and fills zero fields from Default.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the parsed configuration with defaults applied
//   - error: if the document is malformed or a value is out of range
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports values no component can use.
func (c Config) Validate() error {
	switch c.Renderer.PresentMode {
	case "vsync", "uncapped":
	default:
		return fmt.Errorf("config: renderer.present_mode %q must be \"vsync\" or \"uncapped\"", c.Renderer.PresentMode)
	}
	if c.Renderer.MSAA != 1 && c.Renderer.MSAA != 4 {
		return fmt.Errorf("config: renderer.msaa %d must be 1 or 4", c.Renderer.MSAA)
	}
	if c.Engine.TickRate < 0 || c.Engine.RenderFrameLimit < 0 {
		return fmt.Errorf("config: engine rates must not be negative")
	}
	if c.Scene.CollisionRetries < 0 {
		return fmt.Errorf("config: scene.collision_retries must not be negative")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("config: tracing.sample_ratio %v must be within [0, 1]", c.Tracing.SampleRatio)
	}
	return nil
}

// CollisionsOn reports whether collisions are enabled.
func (s Scene) CollisionsOn() bool {
	return s.CollisionsEnabled == nil || *s.CollisionsEnabled
}

// AutoClearOn reports whether the color buffer is cleared before each camera render.
func (s Scene) AutoClearOn() bool {
	return s.AutoClear == nil || *s.AutoClear
}

func (c *Config) applyDefaults() {
	d := Default()

	c.Engine.TickRate = common.Coalesce(c.Engine.TickRate, d.Engine.TickRate)
	c.Engine.PendingPollInterval = common.Coalesce(c.Engine.PendingPollInterval, d.Engine.PendingPollInterval)

	c.Window.Title = common.Coalesce(c.Window.Title, d.Window.Title)
	c.Window.Width = common.Coalesce(c.Window.Width, d.Window.Width)
	c.Window.Height = common.Coalesce(c.Window.Height, d.Window.Height)

	c.Renderer.PresentMode = common.Coalesce(c.Renderer.PresentMode, d.Renderer.PresentMode)
	c.Renderer.MSAA = common.Coalesce(c.Renderer.MSAA, d.Renderer.MSAA)

	c.Scene.OctreeMaxCapacity = common.Coalesce(c.Scene.OctreeMaxCapacity, d.Scene.OctreeMaxCapacity)
	c.Scene.OctreeMaxDepth = common.Coalesce(c.Scene.OctreeMaxDepth, d.Scene.OctreeMaxDepth)
	c.Scene.CollisionRetries = common.Coalesce(c.Scene.CollisionRetries, d.Scene.CollisionRetries)
	c.Scene.ClearColor = common.Coalesce(c.Scene.ClearColor, d.Scene.ClearColor)
	c.Scene.CollisionsEnabled = common.Coalesce(c.Scene.CollisionsEnabled, d.Scene.CollisionsEnabled)
	c.Scene.AutoClear = common.Coalesce(c.Scene.AutoClear, d.Scene.AutoClear)

	c.Logging.Level = common.Coalesce(c.Logging.Level, d.Logging.Level)
	c.Logging.Format = common.Coalesce(c.Logging.Format, d.Logging.Format)

	c.Tracing.ServiceName = common.Coalesce(c.Tracing.ServiceName, d.Tracing.ServiceName)
	c.Tracing.SampleRatio = common.Coalesce(c.Tracing.SampleRatio, d.Tracing.SampleRatio)
}
