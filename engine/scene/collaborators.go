package scene

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendertarget"
	"github.com/go-gl/mathgl/mgl32"
)

// Disposable is anything that can be queued for end-of-frame disposal.
type Disposable interface {
	Dispose()
}

// Animatable is advanced once per frame before physics.
type Animatable interface {
	// Animate advances the animation.
	//
	// Parameters:
	//   - deltaMs: the unclamped frame delta in milliseconds
	Animate(deltaMs float32)
}

// AnimatableFunc adapts a function to Animatable.
type AnimatableFunc func(deltaMs float32)

// Animate calls f(deltaMs).
func (f AnimatableFunc) Animate(deltaMs float32) {
	f(deltaMs)
}

// ParticleSystem is a particle emitter simulated during evaluation and drawn inside its
// rendering group.
type ParticleSystem interface {
	Name() string

	// IsStarted reports whether the system is emitting.
	IsStarted() bool

	// Emitter returns the entity the system emits from, or nil for a positionless emitter.
	Emitter() entity.Entity

	// Animate steps the simulation.
	//
	// Parameters:
	//   - ratio: the frame animation ratio, 1 at 60 frames per second
	Animate(ratio float32)

	RenderingGroupID() int
	LayerMask() uint32

	// Render draws the system.
	//
	// Parameters:
	//   - cam: the camera being rendered
	//
	// Returns:
	//   - int: the number of particles drawn
	//   - error: a draw error
	Render(cam camera.Camera) (int, error)

	Dispose()
}

// SpriteManager draws a sprite batch inside its rendering group.
type SpriteManager interface {
	RenderingGroupID() int
	LayerMask() uint32
	Render(cam camera.Camera) error
	Dispose()
}

// Layer is a full-screen quad drawn with depth writes disabled, either behind or in front of
// the scene.
type Layer interface {
	IsBackground() bool
	Render(cam camera.Camera) error
	Dispose()
}

// LensFlareSystem draws flares after the main pass.
type LensFlareSystem interface {
	Render(cam camera.Camera) error
	Dispose()
}

// DepthRenderer owns a depth map rendered with the shadow maps.
type DepthRenderer interface {
	DepthMap() rendertarget.RenderTarget
	Dispose()
}

// PipelineManager updates post-process render pipelines once per frame before the cameras.
type PipelineManager interface {
	Update()
}

// PostProcessManager wraps each camera's main pass.
type PostProcessManager interface {
	// PrepareFrame runs after render targets and before the main pass.
	PrepareFrame(cam camera.Camera) error

	// FinalizeFrame runs after foreground layers.
	//
	// Parameters:
	//   - cam: the camera being rendered
	//   - intermediate: true when the camera never presents to the back buffer
	FinalizeFrame(cam camera.Camera, intermediate bool) error
}

// AudioListener follows the listening camera.
type AudioListener interface {
	// SetListener places the listener.
	//
	// Parameters:
	//   - position: the camera position
	//   - forward: the normalized view direction
	//   - up: the camera up vector
	SetListener(position, forward, up mgl32.Vec3)
}
