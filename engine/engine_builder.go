package engine

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
	"github.com/sirupsen/logrus"
)

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables periodic profiling output.
//
// Parameters:
//   - enabled: if true, enables profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in ticks per second. Values <= 0 select 60.
//
// Parameters:
//   - fps: target ticks per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickInterval(fps)
	}
}

// WithWindow sets the host window. Without one the engine runs headless.
//
// Parameters:
//   - w: a created Window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithBackend sets the backend frames are opened and presented through.
//
// Parameters:
//   - b: the render backend shared by the engine's scenes
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackend(b renderer.Backend) EngineBuilderOption {
	return func(e *engine) {
		e.backend = b
	}
}

// WithLogger sets the engine logger. Nil is ignored.
func WithLogger(log logrus.FieldLogger) EngineBuilderOption {
	return func(e *engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithMetrics records per-frame statistics into the given Prometheus collectors.
func WithMetrics(m *profiler.Metrics) EngineBuilderOption {
	return func(e *engine) {
		e.metrics = m
	}
}

// WithProfiler replaces the default profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

// WithScene registers a scene at the given z-index key during construction.
//
// Parameters:
//   - key: the z-index determining render order (lower renders first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		if s != nil {
			e.scenes[key] = s
		}
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap. Pass 0 to uncap.
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameLimit(fps)
	}
}

// WithConfig applies the engine section of a loaded configuration.
//
// Parameters:
//   - cfg: the engine configuration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Engine) EngineBuilderOption {
	return func(e *engine) {
		if cfg.TickRate > 0 {
			e.engineTickRate = tickInterval(float64(cfg.TickRate))
		}
		e.renderFrameLimit = frameLimit(float64(cfg.RenderFrameLimit))
		e.profilingEnabled = cfg.Profiling
	}
}
