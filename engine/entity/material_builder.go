package entity

import "github.com/Carmen-Shannon/oxy-scene/engine/rendertarget"

// MaterialBuilderOption is a functional option for configuring a Material during construction.
type MaterialBuilderOption func(*material)

// WithBaseColor sets the RGBA base color. An alpha below 1 makes the material transparent.
//
// Parameters:
//   - color: the RGBA base color
//
// Returns:
//   - MaterialBuilderOption: functional option to set the base color
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithAlphaTest routes submeshes to the alpha-test bucket.
//
// Parameters:
//   - enabled: true to discard fragments by alpha
//
// Returns:
//   - MaterialBuilderOption: functional option to set alpha testing
func WithAlphaTest(enabled bool) MaterialBuilderOption {
	return func(m *material) {
		m.alphaTest = enabled
	}
}

// WithPipelineKey sets the render pipeline key for this material.
//
// Parameters:
//   - key: the pipeline key to associate with this material
//
// Returns:
//   - MaterialBuilderOption: functional option to set the pipeline key
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}

// WithMaterialReadyFunc sets a readiness predicate, e.g. for textures still loading.
//
// Parameters:
//   - fn: returns true when the material can draw the entity
//
// Returns:
//   - MaterialBuilderOption: functional option to set the readiness predicate
func WithMaterialReadyFunc(fn func(e Entity) bool) MaterialBuilderOption {
	return func(m *material) {
		m.ready = fn
	}
}

// WithRenderTargets sets auxiliary render targets that render before the material draws.
//
// Parameters:
//   - targets: the targets
//
// Returns:
//   - MaterialBuilderOption: functional option to set the render targets
func WithRenderTargets(targets ...rendertarget.RenderTarget) MaterialBuilderOption {
	return func(m *material) {
		for _, t := range targets {
			if t != nil {
				m.targets = append(m.targets, t)
			}
		}
	}
}
