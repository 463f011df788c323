package entity

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshBuilderOption is a functional option for configuring a Mesh during construction.
type MeshBuilderOption func(*meshImpl)

// WithGeometry sets the vertex positions and triangle indices.
//
// Parameters:
//   - positions: the local vertex positions
//   - indices: the triangle list indices
//
// Returns:
//   - MeshBuilderOption: functional option to set the geometry
func WithGeometry(positions []mgl32.Vec3, indices []uint32) MeshBuilderOption {
	return func(m *meshImpl) {
		m.positions = positions
		m.indices = indices
	}
}

// WithPosition sets the local position.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - MeshBuilderOption: functional option to set the position
func WithPosition(p mgl32.Vec3) MeshBuilderOption {
	return func(m *meshImpl) {
		m.position = p
	}
}

// WithRotation sets the local Euler rotation in radians.
//
// Parameters:
//   - r: the rotation
//
// Returns:
//   - MeshBuilderOption: functional option to set the rotation
func WithRotation(r mgl32.Vec3) MeshBuilderOption {
	return func(m *meshImpl) {
		m.rotation = r
	}
}

// WithScaling sets the local scale.
//
// Parameters:
//   - s: the scale
//
// Returns:
//   - MeshBuilderOption: functional option to set the scale
func WithScaling(s mgl32.Vec3) MeshBuilderOption {
	return func(m *meshImpl) {
		m.scaling = s
	}
}

// WithParent attaches the mesh to a transform parent.
//
// Parameters:
//   - p: the parent
//
// Returns:
//   - MeshBuilderOption: functional option to set the parent
func WithParent(p Transformable) MeshBuilderOption {
	return func(m *meshImpl) {
		m.parent = p
	}
}

// WithMaterial sets the material.
//
// Parameters:
//   - mat: the material
//
// Returns:
//   - MeshBuilderOption: functional option to set the material
func WithMaterial(mat Material) MeshBuilderOption {
	return func(m *meshImpl) {
		m.material = mat
	}
}

// WithSkeleton makes the mesh skinned.
//
// Parameters:
//   - s: the skeleton
//
// Returns:
//   - MeshBuilderOption: functional option to set the skeleton
func WithSkeleton(s Skeleton) MeshBuilderOption {
	return func(m *meshImpl) {
		m.skeleton = s
	}
}

// WithEnabled sets whether the mesh takes part in the scene.
//
// Parameters:
//   - enabled: true to enable
//
// Returns:
//   - MeshBuilderOption: functional option to set the enabled state
func WithEnabled(enabled bool) MeshBuilderOption {
	return func(m *meshImpl) {
		m.enabled.Store(enabled)
	}
}

// WithVisible sets the visibility flag.
//
// Parameters:
//   - visible: true to draw the mesh
//
// Returns:
//   - MeshBuilderOption: functional option to set the visibility flag
func WithVisible(visible bool) MeshBuilderOption {
	return func(m *meshImpl) {
		m.visible = visible
	}
}

// WithVisibility sets the opacity factor, clamped to [0, 1].
//
// Parameters:
//   - v: the factor
//
// Returns:
//   - MeshBuilderOption: functional option to set the visibility factor
func WithVisibility(v float32) MeshBuilderOption {
	return func(m *meshImpl) {
		m.visibility = common.Clamp(v, 0, 1)
	}
}

// WithLayerMask sets the layer mask tested against the camera's.
//
// Parameters:
//   - mask: the layer mask
//
// Returns:
//   - MeshBuilderOption: functional option to set the layer mask
func WithLayerMask(mask uint32) MeshBuilderOption {
	return func(m *meshImpl) {
		m.layerMask = mask
	}
}

// WithRenderGroupID sets the rendering group.
//
// Parameters:
//   - id: the group id
//
// Returns:
//   - MeshBuilderOption: functional option to set the rendering group
func WithRenderGroupID(id int) MeshBuilderOption {
	return func(m *meshImpl) {
		m.renderGroupID = id
	}
}

// WithAlphaIndex sets the transparent sort priority; higher draws first.
//
// Parameters:
//   - index: the alpha index
//
// Returns:
//   - MeshBuilderOption: functional option to set the alpha index
func WithAlphaIndex(index int) MeshBuilderOption {
	return func(m *meshImpl) {
		m.alphaIndex = index
	}
}

// WithCullingStrategy sets the frustum test strategy.
//
// Parameters:
//   - s: the strategy
//
// Returns:
//   - MeshBuilderOption: functional option to set the culling strategy
func WithCullingStrategy(s common.CullingStrategy) MeshBuilderOption {
	return func(m *meshImpl) {
		m.cullingStrategy = s
	}
}

// WithCheckCollisions makes the mesh block collider movement.
//
// Parameters:
//   - check: true to block
//
// Returns:
//   - MeshBuilderOption: functional option to set collision checking
func WithCheckCollisions(check bool) MeshBuilderOption {
	return func(m *meshImpl) {
		m.checkCollisions = check
	}
}

// WithEllipsoid sets the collider radii used when the mesh moves.
//
// Parameters:
//   - radii: the ellipsoid radii
//
// Returns:
//   - MeshBuilderOption: functional option to set the ellipsoid
func WithEllipsoid(radii mgl32.Vec3) MeshBuilderOption {
	return func(m *meshImpl) {
		m.ellipsoid = radii
	}
}

// WithEllipsoidOffset sets the collider offset from the mesh position.
//
// Parameters:
//   - offset: the offset
//
// Returns:
//   - MeshBuilderOption: functional option to set the ellipsoid offset
func WithEllipsoidOffset(offset mgl32.Vec3) MeshBuilderOption {
	return func(m *meshImpl) {
		m.ellipsoidOffset = offset
	}
}

// WithPickable sets whether pick queries can hit the mesh.
//
// Parameters:
//   - pickable: true to allow picking
//
// Returns:
//   - MeshBuilderOption: functional option to set pickability
func WithPickable(pickable bool) MeshBuilderOption {
	return func(m *meshImpl) {
		m.pickable = pickable
	}
}

// WithReadyFunc sets a readiness predicate, e.g. for geometry streamed after construction.
//
// Parameters:
//   - fn: returns true when the mesh can draw
//
// Returns:
//   - MeshBuilderOption: functional option to set the readiness predicate
func WithReadyFunc(fn func() bool) MeshBuilderOption {
	return func(m *meshImpl) {
		m.ready = fn
	}
}

// WithDelayLoading marks the geometry as still loading.
//
// Parameters:
//   - loading: true while loading
//
// Returns:
//   - MeshBuilderOption: functional option to set the delay-load state
func WithDelayLoading(loading bool) MeshBuilderOption {
	return func(m *meshImpl) {
		m.delayLoading = loading
	}
}

// WithShowBoundingBox draws the mesh bounding box in the debug pass.
//
// Parameters:
//   - show: true to draw
//
// Returns:
//   - MeshBuilderOption: functional option to set the debug flag
func WithShowBoundingBox(show bool) MeshBuilderOption {
	return func(m *meshImpl) {
		m.showBoundingBox = show
	}
}

// WithAlwaysSelectAsActive skips the frustum test for the mesh.
//
// Parameters:
//   - always: true to skip the test
//
// Returns:
//   - MeshBuilderOption: functional option to skip the frustum test
func WithAlwaysSelectAsActive(always bool) MeshBuilderOption {
	return func(m *meshImpl) {
		m.alwaysSelectAsActive = always
	}
}
