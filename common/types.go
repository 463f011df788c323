// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Viewport is a rectangle in normalized [0, 1] surface coordinates.
type Viewport struct {
	X      float32
	Y      float32
	Width  float32
	Height float32
}

// FullViewport covers the whole surface.
var FullViewport = Viewport{X: 0, Y: 0, Width: 1, Height: 1}

// ToPixels converts the normalized rectangle to pixel coordinates for a surface size.
//
// Parameters:
//   - surfaceWidth: the surface width in pixels
//   - surfaceHeight: the surface height in pixels
//
// Returns:
//   - x, y, w, h: the viewport in pixels
func (v Viewport) ToPixels(surfaceWidth, surfaceHeight int) (x, y, w, h float32) {
	sw, sh := float32(surfaceWidth), float32(surfaceHeight)
	return v.X * sw, v.Y * sh, v.Width * sw, v.Height * sh
}

// Color4 is a linear RGBA color.
type Color4 struct {
	R, G, B, A float32
}

// DefaultClearColor is the clear color used when a scene does not configure one.
var DefaultClearColor = Color4{R: 0.2, G: 0.2, B: 0.3, A: 1.0}
