package renderer

// DispatcherBuilderOption is a functional option applied to a RenderDispatcher during construction.
type DispatcherBuilderOption func(*dispatcherImpl)

// WithAutoClearDepthBetweenGroups sets whether depth and stencil are cleared before every
// non-empty rendering group after the first.
//
// Parameters:
//   - enabled: true to clear between groups (default)
//
// Returns:
//   - DispatcherBuilderOption: a function that applies the option to a dispatcher
func WithAutoClearDepthBetweenGroups(enabled bool) DispatcherBuilderOption {
	return func(d *dispatcherImpl) {
		for i := range d.autoClear {
			d.autoClear[i] = enabled
		}
	}
}
