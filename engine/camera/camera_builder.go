package camera

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the camera's world-space position.
//
// Parameters:
//   - p: world-space position
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(p mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = p
	}
}

// WithTarget sets the camera's look-at point.
//
// Parameters:
//   - t: world-space target
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's target
func WithTarget(t mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = t
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - up: up vector
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithFov sets the camera's field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the near plane
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
//
// Parameters:
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: functional option to set the far plane
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}

// WithViewport sets the normalized viewport rectangle.
//
// Parameters:
//   - v: the viewport in [0, 1] surface coordinates
//
// Returns:
//   - CameraBuilderOption: functional option to set the viewport
func WithViewport(v common.Viewport) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.viewport = v
	}
}

// WithLayerMask sets the camera layer mask.
//
// Parameters:
//   - mask: the layer mask
//
// Returns:
//   - CameraBuilderOption: functional option to set the layer mask
func WithLayerMask(mask uint32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.layerMask = mask
	}
}

// WithIntermediate marks the camera as rendering into an intermediate target.
//
// Parameters:
//   - intermediate: true for intermediate cameras
//
// Returns:
//   - CameraBuilderOption: functional option to set the intermediate flag
func WithIntermediate(intermediate bool) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.intermediate = intermediate
	}
}
