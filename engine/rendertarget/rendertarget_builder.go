package rendertarget

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
)

// TextureBuilderOption is a functional option applied to a render target texture during NewTexture.
type TextureBuilderOption func(*textureImpl)

// WithCamera sets the camera the target renders with instead of the scene's active camera.
//
// Parameters:
//   - c: the camera to use
//
// Returns:
//   - TextureBuilderOption: option function to apply
func WithCamera(c camera.Camera) TextureBuilderOption {
	return func(t *textureImpl) {
		t.cam = c
	}
}

// WithRefreshRate sets how often the target renders: RefreshRateOnce, RefreshRateEveryFrame,
// or every n-th frame. Negative values are treated as RefreshRateOnce.
//
// Parameters:
//   - rate: the refresh rate
//
// Returns:
//   - TextureBuilderOption: option function to apply
func WithRefreshRate(rate int) TextureBuilderOption {
	return func(t *textureImpl) {
		if rate < 0 {
			rate = RefreshRateOnce
		}
		t.refresh = rate
	}
}

// WithRenderFunc sets the function that draws the target.
//
// Parameters:
//   - fn: the render function
//
// Returns:
//   - TextureBuilderOption: option function to apply
func WithRenderFunc(fn RenderFunc) TextureBuilderOption {
	return func(t *textureImpl) {
		t.renderFn = fn
	}
}

// WithEnabled sets whether the target participates in rendering.
//
// Parameters:
//   - enabled: true to enable (default)
//
// Returns:
//   - TextureBuilderOption: option function to apply
func WithEnabled(enabled bool) TextureBuilderOption {
	return func(t *textureImpl) {
		t.enabled = enabled
	}
}

// WithOnDispose registers a callback run once when the target is disposed.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - TextureBuilderOption: option function to apply
func WithOnDispose(fn func()) TextureBuilderOption {
	return func(t *textureImpl) {
		t.onDispose = fn
	}
}
