package entity

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-scene/engine/rendertarget"
	"github.com/google/uuid"
)

// material is the implementation of the Material interface.
type material struct {
	mu *sync.RWMutex

	id          string
	name        string
	baseColor   [4]float32
	alphaTest   bool
	pipelineKey string
	ready       func(e Entity) bool
	targets     []rendertarget.RenderTarget
	subs        []Material
	disposed    atomic.Bool
}

// Material is the surface description a submesh draws with. The core only consumes readiness,
// the blending mode, and optional auxiliary render targets; shading is backend-defined.
type Material interface {
	// ID returns the process-unique material identifier.
	//
	// Returns:
	//   - string: the material ID
	ID() string

	// Name retrieves the material identifier given at construction.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the RGBA base color. An alpha below 1 enables blending.
	//
	// Returns:
	//   - [4]float32: the base color
	BaseColor() [4]float32

	// IsReady reports whether the material can draw the entity this frame.
	//
	// Parameters:
	//   - e: the entity about to draw
	//
	// Returns:
	//   - bool: true if ready
	IsReady(e Entity) bool

	// NeedAlphaBlending reports whether submeshes go to the transparent bucket.
	//
	// Returns:
	//   - bool: true if the material blends
	NeedAlphaBlending() bool

	// NeedAlphaTesting reports whether submeshes go to the alpha-test bucket.
	//
	// Returns:
	//   - bool: true if the material discards by alpha
	NeedAlphaTesting() bool

	// PipelineKey retrieves the key identifying the backend pipeline for this material.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// RenderTargetTextures returns auxiliary targets (mirrors, reflection targets) that must render before
	// the material is drawn. Collected once per frame per material.
	//
	// Returns:
	//   - []rendertarget.RenderTarget: the targets, possibly empty
	RenderTargetTextures() []rendertarget.RenderTarget

	// SubMaterial returns the material for a submesh material index. Single materials return
	// themselves.
	//
	// Parameters:
	//   - index: the submesh material index
	//
	// Returns:
	//   - Material: the resolved material, or nil if index is out of range
	SubMaterial(index int) Material

	// SetAlpha sets the base color alpha.
	//
	// Parameters:
	//   - alpha: the new alpha in [0, 1]
	SetAlpha(alpha float32)

	// AddRenderTarget appends an auxiliary render target.
	//
	// Parameters:
	//   - t: the target to add (nil and duplicates are ignored)
	AddRenderTarget(t rendertarget.RenderTarget)

	// IsDisposed reports whether Dispose was called.
	//
	// Returns:
	//   - bool: true if disposed
	IsDisposed() bool

	// Dispose releases the material. Disposed materials are never ready.
	Dispose()
}

var _ Material = &material{}

// NewMaterial creates a new Material configured with the provided options.
//
// Parameters:
//   - name: the material name
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(name string, options ...MaterialBuilderOption) Material {
	m := &material{
		mu:        &sync.RWMutex{},
		id:        uuid.NewString(),
		name:      name,
		baseColor: [4]float32{1, 1, 1, 1},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// NewMultiMaterial creates a Material that resolves submesh material indices to subs.
// The multi-material itself is opaque and ready when every sub-material is ready.
//
// Parameters:
//   - name: the material name
//   - subs: the sub-materials indexed by submesh material index
//
// Returns:
//   - Material: a new Material instance
func NewMultiMaterial(name string, subs ...Material) Material {
	m := NewMaterial(name).(*material)
	m.subs = subs
	return m
}

func (m *material) ID() string {
	return m.id
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.baseColor
}

func (m *material) IsReady(e Entity) bool {
	if m.disposed.Load() {
		return false
	}
	for _, sub := range m.subs {
		if sub != nil && !sub.IsReady(e) {
			return false
		}
	}
	if m.ready != nil {
		return m.ready(e)
	}
	return true
}

func (m *material) NeedAlphaBlending() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.baseColor[3] < 1
}

func (m *material) NeedAlphaTesting() bool {
	return m.alphaTest
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) RenderTargetTextures() []rendertarget.RenderTarget {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.targets
}

func (m *material) SubMaterial(index int) Material {
	if m.subs == nil {
		return m
	}
	if index < 0 || index >= len(m.subs) {
		return nil
	}
	return m.subs[index]
}

func (m *material) SetAlpha(alpha float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseColor[3] = alpha
}

func (m *material) AddRenderTarget(t rendertarget.RenderTarget) {
	if t == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.Contains(m.targets, t) {
		return
	}
	m.targets = append(m.targets, t)
}

func (m *material) IsDisposed() bool {
	return m.disposed.Load()
}

func (m *material) Dispose() {
	m.disposed.Store(true)
}
