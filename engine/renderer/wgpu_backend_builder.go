package renderer

// wgpuConfig collects pre-creation settings; the adapter request needs them before the backend exists.
type wgpuConfig struct {
	presentMode          PresentMode
	sampleCount          MSAASampleCount
	forceFallbackAdapter bool
}

// WGPUBackendOption is a functional option applied to the WebGPU backend during construction via NewWGPUBackend.
type WGPUBackendOption func(*wgpuConfig)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - WGPUBackendOption: a function that applies the present mode option
func WithPresentMode(mode PresentMode) WGPUBackendOption {
	return func(c *wgpuConfig) {
		c.presentMode = mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the default framebuffer.
// Offscreen render targets always use a single sample.
//
// Parameters:
//   - count: MSAAOff or MSAA4x
//
// Returns:
//   - WGPUBackendOption: a function that applies the MSAA option
func WithMSAA(count MSAASampleCount) WGPUBackendOption {
	return func(c *wgpuConfig) {
		if count == MSAA4x {
			c.sampleCount = MSAA4x
			return
		}
		c.sampleCount = MSAAOff
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - WGPUBackendOption: a function that applies the force software renderer option
func WithForceSoftwareRenderer(force bool) WGPUBackendOption {
	return func(c *wgpuConfig) {
		c.forceFallbackAdapter = force
	}
}
