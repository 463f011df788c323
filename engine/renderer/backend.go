package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendertarget"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrFrameInFlight is returned by BeginFrame while the previous frame has not been presented.
var ErrFrameInFlight = errors.New("renderer: previous frame not yet presented")

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ParsePresentMode maps a config value to a PresentMode.
//
// Parameters:
//   - s: "vsync" or "uncapped"
//
// Returns:
//   - PresentMode: the parsed mode
//   - error: an error if s names no mode
func ParsePresentMode(s string) (PresentMode, error) {
	switch s {
	case "vsync", "":
		return PresentModeVSync, nil
	case "uncapped":
		return PresentModeUncapped, nil
	default:
		return PresentModeVSync, fmt.Errorf("renderer: unknown present mode %q", s)
	}
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// BlendMode selects the bucket a submesh renders in within its rendering group.
type BlendMode int

const (
	BlendOpaque BlendMode = iota
	BlendAlphaTest
	BlendAlpha
)

// String returns the mode name.
func (m BlendMode) String() string {
	switch m {
	case BlendOpaque:
		return "opaque"
	case BlendAlphaTest:
		return "alpha_test"
	case BlendAlpha:
		return "alpha_blend"
	default:
		return "unknown"
	}
}

// DrawItem is one draw submitted to a Backend: a submesh index range drawn once per world matrix.
type DrawItem struct {
	SubMesh  *entity.SubMesh
	Mesh     entity.Mesh
	Material entity.Material
	GroupID  int
	Mode     BlendMode

	// ViewProjection is the active camera transform for the pass.
	ViewProjection mgl32.Mat4

	// Worlds holds one world matrix per drawn copy; len(Worlds) is the instance count.
	Worlds []mgl32.Mat4
}

// InstanceCount returns the number of copies drawn.
func (d DrawItem) InstanceCount() int {
	return len(d.Worlds)
}

// Backend is the GPU-facing half of the renderer. The scene drives it through one frame:
// BeginFrame, any number of clears, target switches, and draws, then EndFrame and Present.
type Backend interface {
	// BeginFrame acquires the frame's default framebuffer.
	//
	// Returns:
	//   - error: ErrFrameInFlight if the previous frame was not presented, or an acquisition error
	BeginFrame() error

	// Clear clears the bound framebuffer.
	//
	// Parameters:
	//   - color: the clear color used when backBuffer is set
	//   - backBuffer: clear the color attachment
	//   - depth: clear the depth attachment
	//   - stencil: clear the stencil attachment
	Clear(color common.Color4, backBuffer, depth, stencil bool)

	// SetViewport sets the normalized viewport for subsequent draws.
	//
	// Parameters:
	//   - v: the viewport in [0, 1] surface coordinates
	SetViewport(v common.Viewport)

	// SetDepthWrite enables or disables depth writes for subsequent draws.
	//
	// Parameters:
	//   - enabled: true to write depth
	SetDepthWrite(enabled bool)

	// BindRenderTarget redirects subsequent clears and draws to an offscreen target.
	//
	// Parameters:
	//   - t: the render target to draw into
	//
	// Returns:
	//   - error: an error if the target's attachments could not be created
	BindRenderTarget(t rendertarget.RenderTarget) error

	// RestoreDefaultFramebuffer redirects subsequent clears and draws to the frame's surface.
	RestoreDefaultFramebuffer()

	// Draw encodes one draw.
	//
	// Parameters:
	//   - item: the draw to encode
	//
	// Returns:
	//   - error: an error if the draw could not be encoded
	Draw(item DrawItem) error

	// DrawBoundingBoxes encodes wireframe boxes for the bounding-box debug pass.
	//
	// Parameters:
	//   - viewProjection: the active camera transform
	//   - boxes: the boxes in world space
	//
	// Returns:
	//   - error: an error if the boxes could not be encoded
	DrawBoundingBoxes(viewProjection mgl32.Mat4, boxes []*common.BoundingBox) error

	// EndFrame submits the frame's commands.
	//
	// Returns:
	//   - error: an error if submission failed
	EndFrame() error

	// Present displays the frame and releases the default framebuffer.
	Present()

	// Resize reconfigures the default framebuffer.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	Resize(width, height int)

	// Size returns the default framebuffer size in pixels.
	Size() (int, int)
}
