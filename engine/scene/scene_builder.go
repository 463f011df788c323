package scene

import (
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/physics"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// SceneBuilderOption is a functional option for configuring a Scene.
type SceneBuilderOption func(*sceneImpl)

// WithLogger sets the logger used for scene diagnostics.
//
// Parameters:
//   - l: the logger (nil is ignored)
//
// Returns:
//   - SceneBuilderOption: a function that applies the logger option to a sceneImpl
func WithLogger(l logrus.FieldLogger) SceneBuilderOption {
	return func(s *sceneImpl) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTracer sets the tracer that records one span per frame and per camera.
//
// Parameters:
//   - t: the tracer (nil is ignored)
//
// Returns:
//   - SceneBuilderOption: a function that applies the tracer option to a sceneImpl
func WithTracer(t trace.Tracer) SceneBuilderOption {
	return func(s *sceneImpl) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock replaces the wall clock used for frame deltas and durations.
//
// Parameters:
//   - now: the clock function (nil is ignored)
//
// Returns:
//   - SceneBuilderOption: a function that applies the clock option to a sceneImpl
func WithClock(now func() time.Time) SceneBuilderOption {
	return func(s *sceneImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// WithComputeWorkers sets the worker count used for animatables and skeleton preparation.
//
// Parameters:
//   - n: the number of workers (values below 1 are ignored)
//
// Returns:
//   - SceneBuilderOption: a function that applies the worker count option to a sceneImpl
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *sceneImpl) {
		if n > 0 {
			s.computeWorkers = n
		}
	}
}

// WithPollInterval sets how often ExecuteWhenReady re-checks readiness.
//
// Parameters:
//   - d: the poll interval (values <= 0 are ignored)
//
// Returns:
//   - SceneBuilderOption: a function that applies the poll interval option to a sceneImpl
func WithPollInterval(d time.Duration) SceneBuilderOption {
	return func(s *sceneImpl) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithCollisionRetries sets the slide responses MoveWithCollisions computes before giving up.
//
// Parameters:
//   - n: the retry count (negative values are ignored)
//
// Returns:
//   - SceneBuilderOption: a function that applies the retry option to a sceneImpl
func WithCollisionRetries(n int) SceneBuilderOption {
	return func(s *sceneImpl) {
		if n >= 0 {
			s.collisionRetry = n
		}
	}
}

// WithFeatures replaces the feature toggles.
//
// Parameters:
//   - f: the feature toggles
//
// Returns:
//   - SceneBuilderOption: a function that applies the features option to a sceneImpl
func WithFeatures(f Features) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.features = f
	}
}

// WithClearColor sets the color the default framebuffer is cleared to.
func WithClearColor(c common.Color4) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.clearColor = c
	}
}

// WithAutoClearDepthStencil sets whether depth and stencil are cleared before a render group.
func WithAutoClearDepthStencil(groupID int, clear bool) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.autoClearGroups[renderer.ClampGroupID(groupID)] = clear
	}
}

// WithPhysics attaches a physics stepper.
func WithPhysics(p physics.Stepper) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.stepper = p
	}
}

// WithConfig applies the scene section of a loaded configuration.
//
// Parameters:
//   - cfg: the scene configuration
//
// Returns:
//   - SceneBuilderOption: a function that applies the configuration to a sceneImpl
func WithConfig(cfg config.Scene) SceneBuilderOption {
	return func(s *sceneImpl) {
		if cfg.CollisionsEnabled != nil {
			s.features.CollisionsEnabled = *cfg.CollisionsEnabled
		}
		if cfg.AutoClear != nil {
			s.features.AutoClear = *cfg.AutoClear
		}
		s.features.SelectionOctreeRequired = cfg.UseSelectionOctree
		if cfg.ClearColor != [4]float32{} {
			s.clearColor = common.Color4{R: cfg.ClearColor[0], G: cfg.ClearColor[1], B: cfg.ClearColor[2], A: cfg.ClearColor[3]}
		}
		if cfg.ComputeWorkers > 0 {
			s.computeWorkers = cfg.ComputeWorkers
		}
		if cfg.CollisionRetries > 0 {
			s.collisionRetry = cfg.CollisionRetries
		}
	}
}
