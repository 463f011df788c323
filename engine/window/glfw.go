package window

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Keys reported to the key callback.
const (
	KeyW     = Key(glfw.KeyW)
	KeyA     = Key(glfw.KeyA)
	KeyS     = Key(glfw.KeyS)
	KeyD     = Key(glfw.KeyD)
	KeySpace = Key(glfw.KeySpace)
	KeyB     = Key(glfw.KeyB)
	KeyO     = Key(glfw.KeyO)
	KeyP     = Key(glfw.KeyP)
)

// ErrClosed is returned by Close on a window that is already closed.
var ErrClosed = errors.New("window: closed")

type glfwWindow struct {
	mu     *sync.Mutex
	window *glfw.Window

	width, height int
	closeAsked    bool
	closed        bool

	onUpdate func()
	onResize func(width, height int)
	onKey    func(key Key, pressed bool)
	onScroll func(delta float32)
	onCursor func(x, y float32)
}

var _ Window = &glfwWindow{}

// newGLFWWindow creates the GLFW window without a client API; wgpu renders to it through a
// platform surface.
func newGLFWWindow(s settings) (*glfwWindow, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("window: initialize glfw: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(s.width, s.height, s.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window: create window: %w", err)
	}
	win.SetSizeLimits(s.minWidth, s.minHeight, s.maxWidth, s.maxHeight)

	w := &glfwWindow{mu: &sync.Mutex{}, window: win}
	// High-DPI framebuffers differ from the requested size.
	w.width, w.height = win.GetFramebufferSize()

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if s.escapeCloses && key == glfw.KeyEscape && action == glfw.Press {
			w.RequestClose()
			return
		}
		if action == glfw.Repeat {
			return
		}
		if cb := w.keyCallback(); cb != nil {
			cb(Key(key), action == glfw.Press)
		}
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		w.mu.Lock()
		cb := w.onScroll
		w.mu.Unlock()
		if cb != nil {
			cb(float32(yoff))
		}
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.mu.Lock()
		cb := w.onCursor
		w.mu.Unlock()
		if cb != nil {
			cb(float32(x), float32(y))
		}
	})

	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.mu.Lock()
		w.width, w.height = width, height
		cb := w.onResize
		w.mu.Unlock()
		if cb != nil && width > 0 && height > 0 {
			cb(width, height)
		}
	})

	return w, nil
}

func (w *glfwWindow) keyCallback() func(Key, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.onKey
}

func (w *glfwWindow) SetUpdateCallback(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onUpdate = callback
}

func (w *glfwWindow) SetResizeCallback(callback func(width, height int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onResize = callback
}

func (w *glfwWindow) SetKeyCallback(callback func(key Key, pressed bool)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onKey = callback
}

func (w *glfwWindow) SetScrollCallback(callback func(delta float32)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onScroll = callback
}

func (w *glfwWindow) SetCursorCallback(callback func(x, y float32)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onCursor = callback
}

func (w *glfwWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(w.window)
}

func (w *glfwWindow) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.closed && !w.closeAsked && !w.window.ShouldClose()
}

func (w *glfwWindow) ProcessMessages() {
	for w.IsRunning() {
		glfw.PollEvents()

		w.mu.Lock()
		cb := w.onUpdate
		w.mu.Unlock()
		if cb != nil {
			cb()
		}
		runtime.Gosched()
	}
}

func (w *glfwWindow) RequestClose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeAsked = true
	if !w.closed {
		glfw.PostEmptyEvent()
	}
}

func (w *glfwWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.closed = true
	w.window.SetShouldClose(true)
	w.window.Destroy()
	glfw.Terminate()
	return nil
}

func (w *glfwWindow) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

func (w *glfwWindow) Aspect() float32 {
	width, height := w.Size()
	return aspect(width, height)
}
