package window

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Key is a keyboard key code as reported by the platform layer.
type Key int

// Window hosts the surface a wgpu backend presents to and forwards input events.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyCallback sets the callback for key events.
	//
	// Parameters:
	//   - callback: function receiving the key and whether it is pressed
	SetKeyCallback(callback func(key Key, pressed bool))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical scroll delta (positive = up)
	SetScrollCallback(callback func(delta float32))

	// SetCursorCallback sets the callback for cursor movement.
	//
	// Parameters:
	//   - callback: function receiving the cursor position in pixels
	SetCursorCallback(callback func(x, y float32))

	// SurfaceDescriptor returns the platform surface descriptor for wgpu.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil once the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// ProcessMessages polls platform events until the window closes. It must run on the
	// goroutine that created the window.
	ProcessMessages()

	// RequestClose asks the message loop to exit. Safe from any goroutine.
	RequestClose()

	// Close destroys the window and releases the platform layer.
	//
	// Returns:
	//   - error: an error if the window was already closed
	Close() error

	// Size returns the framebuffer size in pixels.
	Size() (width, height int)

	// Aspect returns width / height of the framebuffer, 1 when the height is zero.
	Aspect() float32
}

// settings is the window configuration applied before the platform window is created.
type settings struct {
	title               string
	width, height       int
	minWidth, minHeight int
	maxWidth, maxHeight int
	escapeCloses        bool
}

func defaultSettings() settings {
	return settings{
		title:        "oxy-scene",
		width:        1280,
		height:       720,
		minWidth:     320,
		minHeight:    200,
		maxWidth:     -1,
		maxHeight:    -1,
		escapeCloses: true,
	}
}

// NewWindow creates and shows a platform window. The calling goroutine is locked to its OS
// thread and must later run ProcessMessages.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the window
//   - error: an error if the platform layer could not create it
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	s := defaultSettings()
	for _, opt := range options {
		opt(&s)
	}
	return newGLFWWindow(s)
}

func aspect(width, height int) float32 {
	if height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}
