package light

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun or moon.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to a configurable range.
	LightTypePoint

	// LightTypeSpot represents a light that emits in a cone from a position along a direction.
	LightTypeSpot
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.RWMutex

	id         string
	name       string
	lightType  LightType
	position   mgl32.Vec3
	direction  mgl32.Vec3
	color      mgl32.Vec3
	intensity  float32
	lightRange float32
	innerCone  float32 // stored as cos(angle in radians)
	outerCone  float32 // stored as cos(angle in radians)
	enabled    bool
	disposed   bool

	shadowGenerator ShadowGenerator
}

// Light defines the interface for a light source in the scene.
//
// Lights are scene-level entities. During a frame the scene only consults a light for its
// shadow generator: enabled lights with a shadow generator contribute their shadow map to the
// frame's render-target passes.
type Light interface {
	// ID returns the light's unique identifier.
	//
	// Returns:
	//   - string: the light ID
	ID() string

	// Name returns the light's display name.
	//
	// Returns:
	//   - string: the light name
	Name() string

	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional, point, or spot)
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for directional lights.
	//
	// Returns:
	//   - mgl32.Vec3: position
	Position() mgl32.Vec3

	// Direction returns the normalized direction of the light.
	// Meaningless for point lights.
	//
	// Returns:
	//   - mgl32.Vec3: normalized direction
	Direction() mgl32.Vec3

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Range returns the maximum attenuation distance for point and spot lights.
	//
	// Returns:
	//   - float32: the range value
	Range() float32

	// Cone returns the cosines of the inner and outer cone half-angles for spot lights.
	//
	// Returns:
	//   - inner, outer: cos(inner half-angle), cos(outer half-angle)
	Cone() (inner, outer float32)

	// Enabled returns whether this light is active for rendering.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// ShadowGenerator returns the light's shadow generator, or nil when it casts no shadows.
	//
	// Returns:
	//   - ShadowGenerator: the shadow generator or nil
	ShadowGenerator() ShadowGenerator

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - p: position
	SetPosition(p mgl32.Vec3)

	// SetDirection sets the direction of the light and normalizes it.
	//
	// Parameters:
	//   - d: direction (will be normalized)
	SetDirection(d mgl32.Vec3)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetShadowGenerator attaches or detaches (nil) a shadow generator.
	//
	// Parameters:
	//   - g: the shadow generator or nil
	SetShadowGenerator(g ShadowGenerator)

	// IsDisposed reports whether Dispose has run.
	//
	// Returns:
	//   - bool: true once disposed
	IsDisposed() bool

	// Dispose disables the light and disposes its shadow generator.
	Dispose()
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - name: the light name
//   - lightType: the kind of light to create (directional, point, or spot)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(name string, lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:         &sync.RWMutex{},
		id:         uuid.NewString(),
		name:       name,
		lightType:  lightType,
		direction:  mgl32.Vec3{0, -1, 0},
		color:      mgl32.Vec3{1, 1, 1},
		intensity:  1.0,
		lightRange: 10.0,
		innerCone:  cosDeg(15),
		outerCone:  cosDeg(30),
		enabled:    true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) ID() string {
	return l.id
}

func (l *lightImpl) Name() string {
	return l.name
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.direction
}

func (l *lightImpl) Color() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lightRange
}

func (l *lightImpl) Cone() (float32, float32) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.innerCone, l.outerCone
}

func (l *lightImpl) Enabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.enabled && !l.disposed
}

func (l *lightImpl) ShadowGenerator() ShadowGenerator {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.shadowGenerator
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = p
}

func (l *lightImpl) SetDirection(d mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.direction = normalize(d)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

func (l *lightImpl) SetShadowGenerator(g ShadowGenerator) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.shadowGenerator = g
}

func (l *lightImpl) IsDisposed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.disposed
}

func (l *lightImpl) Dispose() {
	l.mu.Lock()
	if l.disposed {
		l.mu.Unlock()
		return
	}
	l.disposed = true
	g := l.shadowGenerator
	l.shadowGenerator = nil
	l.mu.Unlock()

	if g != nil {
		g.Dispose()
	}
}
