package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/engine/rendertarget"
	"github.com/go-gl/mathgl/mgl32"
)

// ShadowMapResolution is the default width and height in texels of the shadow
// depth texture.
const ShadowMapResolution = 2048

// DefaultShadowHalfExtent is the default orthographic half-extent (in world units)
// used for the directional light shadow frustum.
const DefaultShadowHalfExtent float32 = 40.0

// DefaultShadowNear is the default near plane for the light's shadow projection.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the default far plane for the light's shadow projection.
const DefaultShadowFar float32 = 200.0

// DefaultShadowBias is the constant depth bias applied to shadow comparisons
// to reduce shadow acne artifacts.
const DefaultShadowBias float32 = 0.001

// ShadowGenerator renders the depth of a set of shadow casters from a light's point of view.
type ShadowGenerator interface {
	// Light returns the light the generator belongs to.
	//
	// Returns:
	//   - Light: the owning light
	Light() Light

	// ShadowMap returns the depth render target.
	//
	// Returns:
	//   - rendertarget.RenderTarget: the shadow map
	ShadowMap() rendertarget.RenderTarget

	// Bias returns the constant depth bias.
	//
	// Returns:
	//   - float32: the bias
	Bias() float32

	// AddShadowCaster adds an entity id to the caster list.
	//
	// Parameters:
	//   - id: the entity ID
	AddShadowCaster(id uint64)

	// RemoveShadowCaster removes an entity id from the caster list.
	//
	// Parameters:
	//   - id: the entity ID
	RemoveShadowCaster(id uint64)

	// ShadowCasters returns the caster entity ids in insertion order.
	//
	// Returns:
	//   - []uint64: the caster IDs
	ShadowCasters() []uint64

	// LightTransformMatrix returns the light's view-projection matrix centered on focus.
	// Directional lights use an orthographic projection of half-extent DefaultShadowHalfExtent;
	// point and spot lights use a 90 degree perspective projection.
	//
	// Parameters:
	//   - focus: the world point the shadow frustum is centered on
	//
	// Returns:
	//   - mgl32.Mat4: the light view-projection matrix
	LightTransformMatrix(focus mgl32.Vec3) mgl32.Mat4

	// Dispose disposes the shadow map.
	Dispose()
}

type shadowGeneratorImpl struct {
	mu *sync.Mutex

	light      Light
	shadowMap  rendertarget.RenderTarget
	bias       float32
	halfExtent float32
	casters    []uint64
}

var _ ShadowGenerator = &shadowGeneratorImpl{}

// NewShadowGenerator creates a shadow generator for l and attaches it to the light.
// The shadow map renders every frame through renderFn.
//
// Parameters:
//   - l: the light casting the shadows
//   - mapSize: the shadow map width and height in texels, ShadowMapResolution when <= 0
//   - renderFn: draws the casters into the shadow map (nil draws nothing)
//
// Returns:
//   - ShadowGenerator: the newly created generator
func NewShadowGenerator(l Light, mapSize int, renderFn rendertarget.RenderFunc) ShadowGenerator {
	if l == nil {
		panic("light: NewShadowGenerator requires a non-nil Light")
	}
	if mapSize <= 0 {
		mapSize = ShadowMapResolution
	}
	g := &shadowGeneratorImpl{
		mu:         &sync.Mutex{},
		light:      l,
		bias:       DefaultShadowBias,
		halfExtent: DefaultShadowHalfExtent,
	}
	g.shadowMap = rendertarget.NewTexture(l.Name()+"_shadow_map", mapSize, mapSize,
		rendertarget.WithRefreshRate(rendertarget.RefreshRateEveryFrame),
		rendertarget.WithRenderFunc(renderFn),
	)
	l.SetShadowGenerator(g)
	return g
}

func (g *shadowGeneratorImpl) Light() Light {
	return g.light
}

func (g *shadowGeneratorImpl) ShadowMap() rendertarget.RenderTarget {
	return g.shadowMap
}

func (g *shadowGeneratorImpl) Bias() float32 {
	return g.bias
}

func (g *shadowGeneratorImpl) AddShadowCaster(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.casters {
		if c == id {
			return
		}
	}
	g.casters = append(g.casters, id)
}

func (g *shadowGeneratorImpl) RemoveShadowCaster(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, c := range g.casters {
		if c == id {
			g.casters = append(g.casters[:i], g.casters[i+1:]...)
			return
		}
	}
}

func (g *shadowGeneratorImpl) ShadowCasters() []uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]uint64, len(g.casters))
	copy(out, g.casters)
	return out
}

func (g *shadowGeneratorImpl) LightTransformMatrix(focus mgl32.Vec3) mgl32.Mat4 {
	dir := g.light.Direction()
	up := mgl32.Vec3{0, 1, 0}
	if abs(dir.Dot(up)) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}

	if g.light.Type() == LightTypeDirectional {
		eye := focus.Sub(dir.Mul(DefaultShadowFar * 0.5))
		view := mgl32.LookAtV(eye, focus, up)
		e := g.halfExtent
		proj := mgl32.Ortho(-e, e, -e, e, DefaultShadowNear, DefaultShadowFar)
		return proj.Mul4(view)
	}

	eye := g.light.Position()
	target := eye.Add(dir)
	view := mgl32.LookAtV(eye, target, up)
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, DefaultShadowNear, g.light.Range())
	return proj.Mul4(view)
}

func (g *shadowGeneratorImpl) Dispose() {
	g.shadowMap.Dispose()
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
