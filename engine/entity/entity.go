// Package entity defines the drawable scene entities: meshes, instances, submeshes, and the
// material and skeleton contracts they consume.
package entity

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/collision"
	"github.com/Carmen-Shannon/oxy-scene/engine/observer"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultLayerMask matches every camera layer.
const DefaultLayerMask uint32 = 0x0FFFFFFF

// Transformable is anything with a local transform and a cached world matrix.
type Transformable interface {
	// Position returns the local position.
	Position() mgl32.Vec3

	// SetPosition sets the local position and invalidates the world matrix.
	SetPosition(p mgl32.Vec3)

	// Rotation returns the local Euler rotation in radians.
	Rotation() mgl32.Vec3

	// SetRotation sets the local Euler rotation and invalidates the world matrix.
	SetRotation(r mgl32.Vec3)

	// Scaling returns the local scale.
	Scaling() mgl32.Vec3

	// SetScaling sets the local scale and invalidates the world matrix.
	SetScaling(s mgl32.Vec3)

	// Parent returns the transform parent, or nil.
	Parent() Transformable

	// SetParent attaches the transform to a parent. A nil parent detaches it.
	SetParent(p Transformable)

	// ComputeWorldMatrix refreshes the world matrix when the transform or the parent changed.
	//
	// Parameters:
	//   - force: recompute even when nothing changed
	//
	// Returns:
	//   - mgl32.Mat4: the world matrix
	ComputeWorldMatrix(force bool) mgl32.Mat4

	// WorldMatrix returns the cached world matrix without recomputing it.
	WorldMatrix() mgl32.Mat4

	// AbsolutePosition returns the world-space translation.
	AbsolutePosition() mgl32.Vec3
}

// Boundable is anything with world-space bounding volumes.
type Boundable interface {
	// BoundingInfo returns the bounding volumes, updated by ComputeWorldMatrix.
	BoundingInfo() *common.BoundingInfo

	// CullingStrategy returns the frustum test strategy.
	CullingStrategy() common.CullingStrategy

	// SetCullingStrategy sets the frustum test strategy.
	SetCullingStrategy(s common.CullingStrategy)

	// IsInFrustum tests the bounding volumes with the entity's culling strategy.
	IsInFrustum(f *common.Frustum) bool
}

// Pickable is anything that can be hit by a pick query.
type Pickable interface {
	IsPickable() bool
	SetPickable(pickable bool)
}

// Renderable is anything the evaluator can activate and the dispatcher can draw.
type Renderable interface {
	// IsReady reports whether the entity can be drawn this frame.
	IsReady() bool

	// IsDelayLoading reports whether the entity's geometry is still loading.
	IsDelayLoading() bool

	IsEnabled() bool
	SetEnabled(enabled bool)
	IsVisible() bool
	SetVisible(visible bool)

	// Visibility is the opacity factor. Zero hides the entity.
	Visibility() float32
	SetVisibility(v float32)

	LayerMask() uint32
	SetLayerMask(mask uint32)

	// RenderGroupID returns the rendering group the submeshes are dispatched to.
	RenderGroupID() int

	// AlphaIndex orders transparent submeshes; higher values draw first.
	AlphaIndex() int

	// IsBlocked reports whether the evaluator must skip the entity entirely.
	IsBlocked() bool

	// AlwaysSelectAsActive skips the frustum test.
	AlwaysSelectAsActive() bool

	// TotalVertices returns the vertex count of the geometry.
	TotalVertices() int

	Material() Material
	Skeleton() Skeleton
	SubMeshes() []*SubMesh

	// SubMeshCandidates returns the submeshes to evaluate for a frustum, from the submesh octree
	// when rendering selection uses it.
	SubMeshCandidates(f *common.Frustum) []*SubMesh

	// LOD resolves the entity that renders in place of this one for a camera.
	// A nil result culls the entity at this distance.
	LOD(cam camera.Camera) Entity

	// PreActivate drops the previous frame's instance bookkeeping the first time it is called
	// for frameID.
	PreActivate(frameID uint64)

	// Activate stamps the entity with a render id and reports whether lod's submeshes must be
	// dispatched in this pass.
	//
	// Parameters:
	//   - renderID: the current render id
	//   - lod: the entity returned by LOD for this pass
	//
	// Returns:
	//   - bool: true the first time lod is activated for renderID
	Activate(renderID uint64, lod Entity) bool

	// RenderID returns the render id of the last activation.
	RenderID() uint64

	// RenderInstanceCount returns how many copies of this entity's geometry draw in the pass
	// stamped renderID: the entity itself when activated plus every registered instance.
	RenderInstanceCount(renderID uint64) int

	ShowBoundingBox() bool
	SetShowBoundingBox(show bool)
	ShowSubMeshesBoundingBox() bool
	SetShowSubMeshesBoundingBox(show bool)
}

// Entity is the capability set of a scene entity.
type Entity interface {
	Transformable
	Boundable
	Pickable
	Renderable
	collision.Collidable

	// ID returns the scene-assigned identifier, 0 until the entity is added to a scene.
	ID() uint64

	// SetID sets the scene-assigned identifier.
	SetID(id uint64)

	// UniqueID returns the process-unique identifier assigned at construction.
	UniqueID() string

	Name() string

	// SetCheckCollisions makes the entity block collider movement.
	SetCheckCollisions(check bool)

	// Ellipsoid returns the collider radii used when this entity moves.
	Ellipsoid() mgl32.Vec3

	// EllipsoidOffset returns the collider offset from the entity's position.
	EllipsoidOffset() mgl32.Vec3

	// OnCollide returns the listeners fired with the entity hit during MoveWithCollisions.
	OnCollide() *observer.Registry[Entity]

	// OnDispose returns the listeners fired once when the entity is disposed.
	OnDispose() *observer.Registry[Entity]

	// IntersectsEntity tests the bounding volumes of both entities after refreshing their
	// world matrices.
	//
	// Parameters:
	//   - other: the entity to test against
	//   - precise: use the oriented box test
	//
	// Returns:
	//   - bool: true if the volumes intersect
	IntersectsEntity(other Entity, precise bool) bool

	// RegisterAction adds an intersection trigger action.
	RegisterAction(a *IntersectionAction)

	// UnregisterAction removes an intersection trigger action.
	UnregisterAction(a *IntersectionAction)

	// IntersectionActions returns the registered trigger actions.
	IntersectionActions() []*IntersectionAction

	// HasIntersectionTriggers reports whether any Enter or Exit action is registered.
	HasIntersectionTriggers() bool

	// IsIntersectionInProgress reports whether other is in the in-progress set.
	IsIntersectionInProgress(other Entity) bool

	// AddIntersectionInProgress adds other to the in-progress set.
	AddIntersectionInProgress(other Entity)

	// RemoveIntersectionInProgress removes other from the in-progress set.
	RemoveIntersectionInProgress(other Entity)

	// IntersectionsInProgress returns the in-progress set in insertion order.
	IntersectionsInProgress() []Entity

	IsDisposed() bool

	// Dispose releases the entity and fires OnDispose. Later calls are no-ops.
	Dispose()
}
