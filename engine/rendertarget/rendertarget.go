package rendertarget

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/google/uuid"
)

const (
	// RefreshRateOnce renders the target a single time.
	RefreshRateOnce = 0

	// RefreshRateEveryFrame renders the target on every frame.
	RefreshRateEveryFrame = 1
)

// RenderFunc draws a target. It receives the render id assigned to this pass.
type RenderFunc func(t RenderTarget, renderID uint64) error

// RenderTarget is an offscreen pass drawn before the main camera pass:
// custom targets, shadow maps, depth maps, material reflection targets, procedural textures.
type RenderTarget interface {
	// ID returns the target's unique identifier.
	//
	// Returns:
	//   - string: the target ID
	ID() string

	// Name returns the target's display name.
	//
	// Returns:
	//   - string: the target name
	Name() string

	// Size returns the target dimensions in texels.
	//
	// Returns:
	//   - width, height: target size
	Size() (width, height int)

	// Camera returns the camera the target renders with, or nil to use the scene's active camera.
	//
	// Returns:
	//   - camera.Camera: the target camera or nil
	Camera() camera.Camera

	// IsEnabled reports whether the target participates in rendering.
	//
	// Returns:
	//   - bool: true if enabled
	IsEnabled() bool

	// ShouldRender advances the refresh counter and reports whether the target must be drawn
	// this frame. Call once per frame.
	//
	// Returns:
	//   - bool: true if the target is due
	ShouldRender() bool

	// Render draws the target.
	//
	// Parameters:
	//   - renderID: the scene render id for this pass
	//
	// Returns:
	//   - error: an error from the render function
	Render(renderID uint64) error

	// RenderCount returns how many times Render has run.
	//
	// Returns:
	//   - int: the render count
	RenderCount() int

	// LastRenderID returns the render id of the last Render call.
	//
	// Returns:
	//   - uint64: the last render id, 0 if never rendered
	LastRenderID() uint64

	// IsDisposed reports whether Dispose has run.
	//
	// Returns:
	//   - bool: true once disposed
	IsDisposed() bool

	// Dispose releases the target. Disposed targets never render.
	Dispose()
}

type textureImpl struct {
	mu *sync.Mutex

	id     string
	name   string
	width  int
	height int

	cam        camera.Camera
	renderFn   RenderFunc
	enabled    bool
	disposed   bool
	onDispose  func()
	refreshCtr int
	refresh    int

	renderCount  int
	lastRenderID uint64
}

var _ RenderTarget = &textureImpl{}

// NewTexture creates a render target texture. The default refresh rate is every frame.
//
// Parameters:
//   - name: the target name
//   - width, height: the target size in texels
//   - options: functional options to configure the texture
//
// Returns:
//   - RenderTarget: the newly created render target
func NewTexture(name string, width, height int, options ...TextureBuilderOption) RenderTarget {
	t := &textureImpl{
		mu:         &sync.Mutex{},
		id:         uuid.NewString(),
		name:       name,
		width:      width,
		height:     height,
		enabled:    true,
		refresh:    RefreshRateEveryFrame,
		refreshCtr: -1,
	}
	for _, option := range options {
		option(t)
	}
	return t
}

func (t *textureImpl) ID() string {
	return t.id
}

func (t *textureImpl) Name() string {
	return t.name
}

func (t *textureImpl) Size() (int, int) {
	return t.width, t.height
}

func (t *textureImpl) Camera() camera.Camera {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cam
}

func (t *textureImpl) IsEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// ShouldRender follows the refresh rate: the first call is always due; with a refresh rate of
// n > 0 the target is then due every n-th call; with RefreshRateOnce it is never due again.
func (t *textureImpl) ShouldRender() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.disposed || !t.enabled {
		return false
	}
	if t.refreshCtr == -1 {
		t.refreshCtr = 1
		return true
	}
	if t.refresh == RefreshRateOnce {
		return false
	}
	if t.refresh == t.refreshCtr {
		t.refreshCtr = 1
		return true
	}
	t.refreshCtr++
	return false
}

func (t *textureImpl) Render(renderID uint64) error {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return nil
	}
	fn := t.renderFn
	t.renderCount++
	t.lastRenderID = renderID
	t.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(t, renderID)
}

func (t *textureImpl) RenderCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.renderCount
}

func (t *textureImpl) LastRenderID() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastRenderID
}

func (t *textureImpl) IsDisposed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disposed
}

func (t *textureImpl) Dispose() {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return
	}
	t.disposed = true
	cb := t.onDispose
	t.mu.Unlock()

	if cb != nil {
		cb()
	}
}
