package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendertarget"
	"github.com/go-gl/mathgl/mgl32"
)

// Op names a recorded backend call.
type Op string

const (
	OpBeginFrame    Op = "begin_frame"
	OpClear         Op = "clear"
	OpViewport      Op = "viewport"
	OpDepthWrite    Op = "depth_write"
	OpBindTarget    Op = "bind_target"
	OpRestore       Op = "restore_default_framebuffer"
	OpDraw          Op = "draw"
	OpBoundingBoxes Op = "bounding_boxes"
	OpEndFrame      Op = "end_frame"
	OpPresent       Op = "present"
	OpResize        Op = "resize"
)

// Call is one recorded backend call. Only the fields relevant to Op are set.
type Call struct {
	Op Op

	// Target is the bound render target name, empty for the default framebuffer.
	Target string

	Item     DrawItem
	Viewport common.Viewport
	Color    common.Color4

	ClearBackBuffer bool
	ClearDepth      bool
	ClearStencil    bool
	DepthWrite      bool
	Boxes           int
	Width, Height   int
}

// Headless is a Backend that draws nothing and records every call. It backs servers, tools,
// and tests that run a scene without a window.
type Headless struct {
	mu *sync.Mutex

	width, height int
	inFlight      bool
	target        rendertarget.RenderTarget
	calls         []Call

	// DrawErr, when set, is returned by every Draw.
	DrawErr error
}

var _ Backend = &Headless{}

// NewHeadless creates a recording backend with a default framebuffer of the given size.
//
// Parameters:
//   - width, height: the framebuffer size in pixels
//
// Returns:
//   - *Headless: the backend
func NewHeadless(width, height int) *Headless {
	return &Headless{
		mu:     &sync.Mutex{},
		width:  width,
		height: height,
	}
}

func (h *Headless) record(c Call) {
	if h.target != nil {
		c.Target = h.target.Name()
	}
	h.calls = append(h.calls, c)
}

func (h *Headless) BeginFrame() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inFlight {
		return ErrFrameInFlight
	}
	h.inFlight = true
	h.target = nil
	h.record(Call{Op: OpBeginFrame})
	return nil
}

func (h *Headless) Clear(color common.Color4, backBuffer, depth, stencil bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Call{Op: OpClear, Color: color, ClearBackBuffer: backBuffer, ClearDepth: depth, ClearStencil: stencil})
}

func (h *Headless) SetViewport(v common.Viewport) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Call{Op: OpViewport, Viewport: v})
}

func (h *Headless) SetDepthWrite(enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Call{Op: OpDepthWrite, DepthWrite: enabled})
}

func (h *Headless) BindRenderTarget(t rendertarget.RenderTarget) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.target = t
	w, ht := t.Size()
	h.record(Call{Op: OpBindTarget, Width: w, Height: ht})
	return nil
}

func (h *Headless) RestoreDefaultFramebuffer() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.target = nil
	h.record(Call{Op: OpRestore})
}

func (h *Headless) Draw(item DrawItem) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.DrawErr != nil {
		return h.DrawErr
	}
	h.record(Call{Op: OpDraw, Item: item})
	return nil
}

func (h *Headless) DrawBoundingBoxes(_ mgl32.Mat4, boxes []*common.BoundingBox) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Call{Op: OpBoundingBoxes, Boxes: len(boxes)})
	return nil
}

func (h *Headless) EndFrame() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.target = nil
	h.record(Call{Op: OpEndFrame})
	return nil
}

func (h *Headless) Present() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.inFlight {
		return
	}
	h.inFlight = false
	h.record(Call{Op: OpPresent})
}

func (h *Headless) Resize(width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.width, h.height = width, height
	h.record(Call{Op: OpResize, Width: width, Height: height})
}

func (h *Headless) Size() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

// Calls returns a copy of every recorded call.
func (h *Headless) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Call(nil), h.calls...)
}

// Draws returns the recorded draws in order.
func (h *Headless) Draws() []DrawItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []DrawItem
	for _, c := range h.calls {
		if c.Op == OpDraw {
			out = append(out, c.Item)
		}
	}
	return out
}

// Ops returns the recorded operation names in order.
func (h *Headless) Ops() []Op {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Op, len(h.calls))
	for i, c := range h.calls {
		out[i] = c.Op
	}
	return out
}

// Reset forgets every recorded call.
func (h *Headless) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = nil
}
