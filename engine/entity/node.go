package entity

import (
	"slices"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/observer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// node is the state shared by every entity variant: transform, flags, bounds, collision
// settings, and intersection bookkeeping.
type node struct {
	self Entity

	id       uint64
	uniqueID string
	name     string

	enabled  atomic.Bool
	disposed atomic.Bool

	position mgl32.Vec3
	rotation mgl32.Vec3
	scaling  mgl32.Vec3
	parent   Transformable

	world       mgl32.Mat4
	parentWorld mgl32.Mat4
	dirty       bool
	computed    bool

	boundingInfo    *common.BoundingInfo
	cullingStrategy common.CullingStrategy

	visible              bool
	visibility           float32
	pickable             bool
	layerMask            uint32
	renderGroupID        int
	alphaIndex           int
	blocked              bool
	alwaysSelectAsActive bool
	showBoundingBox      bool
	showSubMeshesBox     bool

	checkCollisions bool
	ellipsoid       mgl32.Vec3
	ellipsoidOffset mgl32.Vec3

	renderID uint64

	actions    []*IntersectionAction
	inProgress []Entity

	onCollide *observer.Registry[Entity]
	onDispose *observer.Registry[Entity]
}

func (n *node) init(self Entity, name string) {
	n.self = self
	n.uniqueID = uuid.NewString()
	n.name = name
	n.scaling = mgl32.Vec3{1, 1, 1}
	n.world = mgl32.Ident4()
	n.dirty = true
	n.visible = true
	n.visibility = 1
	n.pickable = true
	n.layerMask = DefaultLayerMask
	n.ellipsoid = mgl32.Vec3{0.5, 1, 0.5}
	n.onCollide = &observer.Registry[Entity]{}
	n.onDispose = &observer.Registry[Entity]{}
	n.enabled.Store(true)
}

func (n *node) ID() uint64 {
	return n.id
}

func (n *node) SetID(id uint64) {
	n.id = id
}

func (n *node) UniqueID() string {
	return n.uniqueID
}

func (n *node) Name() string {
	return n.name
}

func (n *node) Position() mgl32.Vec3 {
	return n.position
}

func (n *node) SetPosition(p mgl32.Vec3) {
	n.position = p
	n.dirty = true
}

func (n *node) Rotation() mgl32.Vec3 {
	return n.rotation
}

func (n *node) SetRotation(r mgl32.Vec3) {
	n.rotation = r
	n.dirty = true
}

func (n *node) Scaling() mgl32.Vec3 {
	return n.scaling
}

func (n *node) SetScaling(s mgl32.Vec3) {
	n.scaling = s
	n.dirty = true
}

func (n *node) Parent() Transformable {
	return n.parent
}

func (n *node) SetParent(p Transformable) {
	n.parent = p
	n.dirty = true
}

// computeWorld returns the world matrix and whether it changed.
func (n *node) computeWorld(force bool) (mgl32.Mat4, bool) {
	var parentWorld mgl32.Mat4
	if n.parent != nil {
		parentWorld = n.parent.ComputeWorldMatrix(false)
		if parentWorld != n.parentWorld {
			n.dirty = true
		}
	}
	if !force && !n.dirty && n.computed {
		return n.world, false
	}

	local := common.BuildModelMatrix(n.position, n.rotation, n.scaling)
	if n.parent != nil {
		n.world = parentWorld.Mul4(local)
		n.parentWorld = parentWorld
	} else {
		n.world = local
	}
	n.dirty = false
	n.computed = true
	if n.boundingInfo != nil {
		n.boundingInfo.Update(n.world)
	}
	return n.world, true
}

func (n *node) WorldMatrix() mgl32.Mat4 {
	return n.world
}

func (n *node) AbsolutePosition() mgl32.Vec3 {
	return mgl32.Vec3{n.world[12], n.world[13], n.world[14]}
}

func (n *node) BoundingInfo() *common.BoundingInfo {
	return n.boundingInfo
}

func (n *node) CullingStrategy() common.CullingStrategy {
	return n.cullingStrategy
}

func (n *node) SetCullingStrategy(s common.CullingStrategy) {
	n.cullingStrategy = s
}

func (n *node) IsInFrustum(f *common.Frustum) bool {
	if n.boundingInfo == nil {
		return true
	}
	return n.boundingInfo.IsInFrustum(f, n.cullingStrategy)
}

func (n *node) IsPickable() bool {
	return n.pickable
}

func (n *node) SetPickable(pickable bool) {
	n.pickable = pickable
}

func (n *node) IsEnabled() bool {
	return n.enabled.Load() && !n.disposed.Load()
}

func (n *node) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

func (n *node) IsVisible() bool {
	return n.visible
}

func (n *node) SetVisible(visible bool) {
	n.visible = visible
}

func (n *node) Visibility() float32 {
	return n.visibility
}

func (n *node) SetVisibility(v float32) {
	n.visibility = common.Clamp(v, 0, 1)
}

func (n *node) LayerMask() uint32 {
	return n.layerMask
}

func (n *node) SetLayerMask(mask uint32) {
	n.layerMask = mask
}

func (n *node) RenderGroupID() int {
	return n.renderGroupID
}

func (n *node) AlphaIndex() int {
	return n.alphaIndex
}

func (n *node) IsBlocked() bool {
	return n.blocked
}

func (n *node) AlwaysSelectAsActive() bool {
	return n.alwaysSelectAsActive
}

func (n *node) RenderID() uint64 {
	return n.renderID
}

func (n *node) ShowBoundingBox() bool {
	return n.showBoundingBox
}

func (n *node) SetShowBoundingBox(show bool) {
	n.showBoundingBox = show
}

func (n *node) ShowSubMeshesBoundingBox() bool {
	return n.showSubMeshesBox
}

func (n *node) SetShowSubMeshesBoundingBox(show bool) {
	n.showSubMeshesBox = show
}

func (n *node) CheckCollisions() bool {
	return n.checkCollisions
}

func (n *node) SetCheckCollisions(check bool) {
	n.checkCollisions = check
}

func (n *node) Ellipsoid() mgl32.Vec3 {
	return n.ellipsoid
}

func (n *node) EllipsoidOffset() mgl32.Vec3 {
	return n.ellipsoidOffset
}

func (n *node) OnCollide() *observer.Registry[Entity] {
	return n.onCollide
}

func (n *node) OnDispose() *observer.Registry[Entity] {
	return n.onDispose
}

func (n *node) IntersectsEntity(other Entity, precise bool) bool {
	if other == nil {
		return false
	}
	n.self.ComputeWorldMatrix(false)
	other.ComputeWorldMatrix(false)
	a, b := n.boundingInfo, other.BoundingInfo()
	if a == nil || b == nil {
		return false
	}
	return a.Intersects(b, precise)
}

func (n *node) RegisterAction(a *IntersectionAction) {
	if a == nil || slices.Contains(n.actions, a) {
		return
	}
	n.actions = append(n.actions, a)
}

func (n *node) UnregisterAction(a *IntersectionAction) {
	n.actions = slices.DeleteFunc(n.actions, func(x *IntersectionAction) bool { return x == a })
}

func (n *node) IntersectionActions() []*IntersectionAction {
	return n.actions
}

func (n *node) HasIntersectionTriggers() bool {
	for _, a := range n.actions {
		if a.Trigger == TriggerOnIntersectionEnter || a.Trigger == TriggerOnIntersectionExit {
			return true
		}
	}
	return false
}

func (n *node) IsIntersectionInProgress(other Entity) bool {
	return slices.Contains(n.inProgress, other)
}

func (n *node) AddIntersectionInProgress(other Entity) {
	if !n.IsIntersectionInProgress(other) {
		n.inProgress = append(n.inProgress, other)
	}
}

func (n *node) RemoveIntersectionInProgress(other Entity) {
	n.inProgress = slices.DeleteFunc(n.inProgress, func(x Entity) bool { return x == other })
}

func (n *node) IntersectionsInProgress() []Entity {
	return n.inProgress
}

func (n *node) IsDisposed() bool {
	return n.disposed.Load()
}

// dispose marks the node disposed and reports whether this call did it.
func (n *node) dispose() bool {
	if !n.disposed.CompareAndSwap(false, true) {
		return false
	}
	n.actions = nil
	n.inProgress = nil
	n.onDispose.Notify(n.self)
	n.onDispose.Clear()
	n.onCollide.Clear()
	return true
}
