package light

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(p mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = p
	}
}

// WithDirection is an option builder that sets the direction of the light.
// The direction is normalized before storing.
//
// Parameters:
//   - d: the direction
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(d mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = normalize(d)
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - c: the color as (r, g, b)
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(c mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = c
	}
}

// WithIntensity sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithRange sets the maximum attenuation distance for point and spot lights.
//
// Parameters:
//   - lightRange: the range value
//
// Returns:
//   - LightBuilderOption: a function that applies the range option to a lightImpl
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.lightRange = lightRange
	}
}

// WithSpotCone sets the inner and outer cone half-angles in degrees.
//
// Parameters:
//   - innerDeg: inner cone half-angle in degrees
//   - outerDeg: outer cone half-angle in degrees
//
// Returns:
//   - LightBuilderOption: a function that applies the cone option to a lightImpl
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.innerCone = cosDeg(innerDeg)
		l.outerCone = cosDeg(outerDeg)
	}
}

// WithEnabled sets whether the light is active for rendering.
//
// Parameters:
//   - enabled: true to enable
//
// Returns:
//   - LightBuilderOption: a function that applies the enabled option to a lightImpl
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

// normalize normalizes a vector. Returns a zero vector if the input has zero length.
func normalize(v mgl32.Vec3) mgl32.Vec3 {
	length := v.Len()
	if length == 0 {
		return mgl32.Vec3{}
	}
	return v.Mul(1.0 / length)
}

// cosDeg converts an angle in degrees to the cosine of that angle in radians.
func cosDeg(deg float32) float32 {
	return float32(math.Cos(float64(deg) * math.Pi / 180.0))
}
